package shortcode

import (
	"errors"
	"math"
	"strings"
)

// Base62Alphabet orders digits before upper and lower case letters.
const Base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// ErrInvalidCode is returned by Decode for input it cannot map to an id.
var ErrInvalidCode = errors.New("short code: invalid code")

const base = uint64(len(Base62Alphabet))

// Encode converts id to its base-62 form. Zero encodes as "0".
func Encode(id uint64) string {
	if id == 0 {
		return Base62Alphabet[:1]
	}
	var buf [11]byte
	i := len(buf)
	for id > 0 {
		i--
		buf[i] = Base62Alphabet[id%base]
		id /= base
	}
	return string(buf[i:])
}

// Decode reverses Encode.
func Decode(code string) (uint64, error) {
	if code == "" {
		return 0, ErrInvalidCode
	}
	var id uint64
	for i := 0; i < len(code); i++ {
		digit := strings.IndexByte(Base62Alphabet, code[i])
		if digit < 0 {
			return 0, ErrInvalidCode
		}
		if id > (math.MaxUint64-uint64(digit))/base {
			return 0, ErrInvalidCode
		}
		id = id*base + uint64(digit)
	}
	return id, nil
}
