package router

import (
	"github.com/dkeye/Meet/internal/adapters/signal"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const identityKey = "identity"

// Auth resolves the bearer token (header, query or session) and stores the
// identity in the gin context.
func Auth(resolver core.IdentityResolver) gin.HandlerFunc {
	if resolver == nil {
		panic("identity resolver cannot be nil for Auth middleware")
	}
	return func(c *gin.Context) {
		token := signal.TokenFromRequest(c)
		id, err := resolver.ResolveIdentity(c.Request.Context(), token)
		if err != nil {
			log.Debug().Err(err).Str("module", "adapters.http").Msg("auth rejected")
			HandleServiceError(c, err)
			c.Abort()
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

func identityFrom(c *gin.Context) domain.Identity {
	id, _ := c.MustGet(identityKey).(domain.Identity)
	return id
}
