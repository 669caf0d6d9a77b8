package media

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/plumeapp/plume/pkg/plume/auth"
)

// Handler handles image uploads for posts
type Handler struct {
	uploadDir string
}

// NewHandler creates a new media handler storing files under uploadDir
func NewHandler(uploadDir string) *Handler {
	return &Handler{uploadDir: uploadDir}
}

// UploadResponse carries the stored image path, suitable for the
// image field of a post
type UploadResponse struct {
	Image string `json:"image"`
}

// Upload stores an uploaded image under a random filename and returns
// its path relative to the media root
func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file required"})
		return
	}

	dir := filepath.Join(h.uploadDir, "posts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return
	}

	name := uuid.NewString() + filepath.Ext(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(dir, name)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return
	}

	c.JSON(http.StatusCreated, UploadResponse{
		Image: filepath.ToSlash(filepath.Join("posts", name)),
	})
}

// RegisterRoutes registers media routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/media", auth.AuthMiddleware(), h.Upload)
}
