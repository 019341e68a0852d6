package handlers

import (
	"fmt"
	"net/http"
	"time"

	"go-pos-checkout/internal/settings"

	"github.com/gin-gonic/gin"
)

// --- GET: Cached settings (synchronous read, no DB hit) ---
func GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, SettingsCache.Current())
}

// --- PUT: Partial settings update. Numeric fields accept both 7 and "7";
// normalization happens once in the bind, subscribers get a change tick. ---
func UpdateSettings(c *gin.Context) {
	var input settings.UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	updated, err := SettingsCache.Update(input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// --- POST: Store logo upload ---
func UploadLogo(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	filename := fmt.Sprintf("logo_%d_%s", time.Now().Unix(), file.Filename)
	filepath := "./uploads/" + filename

	if err := c.SaveUploadedFile(file, filepath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	url := envOr("BASE_URL", "http://localhost:8080") + "/uploads/" + filename
	if err := SettingsCache.SetLogoURL(url); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logo uploaded", "url": url})
}
