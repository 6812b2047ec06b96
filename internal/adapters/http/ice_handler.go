package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
)

// ICEHandler returns the STUN/TURN servers browsers should use.
func ICEHandler(cfg webrtc.Configuration) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": cfg.ICEServers})
	}
}
