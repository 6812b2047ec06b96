package router

import (
	"net/http"

	"github.com/dkeye/Meet/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

// statusOf maps an error kind to an HTTP status.
func statusOf(kind string) int {
	switch kind {
	case core.KindUnauthorized:
		return http.StatusUnauthorized
	case core.KindForbidden:
		return http.StatusForbidden
	case core.KindRoomNotFound:
		return http.StatusNotFound
	case core.KindBadRequest:
		return http.StatusBadRequest
	case core.KindConflict:
		return http.StatusConflict
	case core.KindRateLimited:
		return http.StatusTooManyRequests
	case core.KindDurableWriteFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func HandleServiceError(c *gin.Context, err error) {
	kind := core.ErrorKind(err)
	status := statusOf(kind)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("request failed")
	}
	if kind == core.KindInternal {
		ErrorResponse(c, status, "an unexpected error occurred")
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
}
