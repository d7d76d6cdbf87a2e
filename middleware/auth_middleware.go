package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"oamour/api/utils"
)

// DetailsAuthRequired gates dashboard routes. The browser flow presents the
// derived-hash cookie set at login; scripts may instead send a bearer token
// issued by the login endpoint.
func DetailsAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookieValue, err := c.Cookie(utils.DetailsAuthCookie)
		if err == nil && utils.IsValidDetailsCookie(cookieValue) {
			c.Next()
			return
		}

		tokenString := c.GetHeader("Authorization")
		if len(tokenString) > 7 && tokenString[:7] == "Bearer " {
			tokenString = tokenString[7:]
		}
		if tokenString != "" {
			if _, err := utils.ValidateJWT(tokenString); err == nil {
				c.Next()
				return
			}
			log.Println("DetailsAuthRequired: invalid bearer token")
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
}
