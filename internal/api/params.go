package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/service"
)

// uintParam parses a numeric path parameter. Malformed ids are reported as
// not found, the same as ids that do not exist.
func uintParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, service.ErrNotFound
	}
	return uint(id), nil
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, service.ErrNotFound
	}
	return id, nil
}

// intQuery returns a non-negative integer query value, or 0 when absent or malformed
func intQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// flagQuery reports whether a boolean-ish query flag is set
func flagQuery(c *gin.Context, name string) bool {
	switch c.Query(name) {
	case "1", "true", "True":
		return true
	}
	return false
}
