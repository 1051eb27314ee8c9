package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scenecast/scenecast-api/models"
	"gorm.io/gorm"
)

type Handler struct {
	DB *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db}
}

// GetCurrentUser returns the authenticated user's info
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID := c.GetUint("user_id")

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// Logout deletes the current session and clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	if sessionToken, err := c.Cookie("session_token"); err == nil && sessionToken != "" {
		h.DB.Where("session_token = ?", sessionToken).Delete(&models.Session{})
	}
	c.SetCookie("session_token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
