package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/types"
)

// responseRecorder is a custom ResponseWriter to capture status and body
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       string
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	if statusCode < 400 {
		r.ResponseWriter.WriteHeader(statusCode)
	}
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.statusCode >= 400 {
		r.body = strings.TrimSpace(string(b))
		// Do not write the original error body to the response
		return len(b), nil
	}
	return r.ResponseWriter.Write(b)
}

// ErrorHandler wraps plain net/http handlers so that panics and error
// statuses come back as JSON error bodies
func ErrorHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		defer func() {
			if err := recover(); err != nil {
				logging.Error().Interface("panic", err).Str("path", r.URL.Path).Msg("handler panicked")
				writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
			} else if rec.statusCode >= 400 {
				writeJSONError(w, rec.statusCode, rec.body)
			}
		}()

		next.ServeHTTP(rec, r)
	})
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: message})
}

// Recovery converts panics in gin handlers into a JSON 500
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logging.Ctx(c.Request.Context()).Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Msg("request panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Internal Server Error"})
	})
}
