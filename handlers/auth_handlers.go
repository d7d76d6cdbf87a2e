// api/handlers/auth_handlers.go
package handlers

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"oamour/api/models"
	"oamour/api/utils"
)

const detailsCookieMaxAge = int(30 * 24 * time.Hour / time.Second)

type AuthHandlers struct{}

func NewAuthHandlers() *AuthHandlers {
	return &AuthHandlers{}
}

// Login validates the dashboard password, sets the derived-hash cookie and
// hands back a bearer token for programmatic access.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password is required."})
		return
	}

	if !utils.CheckDetailsPassword(req.Password) {
		log.Println("Details login failed: password mismatch")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password."})
		return
	}

	token, err := utils.GenerateDetailsJWT()
	if err != nil {
		log.Printf("ERROR: Failed to generate details JWT: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		utils.DetailsAuthCookie,
		utils.ExpectedDetailsCookieValue(),
		detailsCookieMaxAge,
		"/",
		"",
		os.Getenv("GIN_MODE") == "release",
		true,
	)

	log.Println("Details login succeeded; auth cookie issued.")
	c.JSON(http.StatusOK, gin.H{"ok": true, "token": token})
}

// Logout clears the dashboard auth cookie.
func (h *AuthHandlers) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		utils.DetailsAuthCookie,
		"",
		-1,
		"/",
		"",
		os.Getenv("GIN_MODE") == "release",
		true,
	)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
