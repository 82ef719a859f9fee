package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/shiftboard/internal/auth"
	"gorm.io/gorm"
)

type loginRequest struct {
	SapID    string `json:"sap_id"`
	Password string `json:"password"`
}

func handleLogin(authn *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if !bindJSON(c, &req) {
			return
		}
		p, err := authn.Authenticate(req.SapID, req.Password)
		if err != nil {
			writeError(c, err)
			return
		}
		token, err := authn.IssueToken(p)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"access_token": token,
			"token_type":   "bearer",
			"user":         p,
		})
	}
}

func handleMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, principal(c))
	}
}

// handleHealth reports whether the database answers a ping.
func handleHealth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
