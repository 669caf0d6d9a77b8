package profiles

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/plumeapp/plume/pkg/plume/auth"
	"github.com/plumeapp/plume/pkg/plume/models"
	"github.com/plumeapp/plume/pkg/plume/pagination"
	"github.com/plumeapp/plume/pkg/plume/posts"
	"gorm.io/gorm"
)

// Handler handles author profile requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new profiles handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// ProfileResponse is the author page: the author's posts newest first,
// their total post count, and flags relative to the requester.
type ProfileResponse struct {
	ID        uint                 `json:"id"`
	Username  string               `json:"username"`
	Posts     []posts.PostResponse `json:"posts"`
	PostCount int64                `json:"post_count"`
	Meta      pagination.Meta      `json:"meta"`
	Following bool                 `json:"following"`
	IsSelf    bool                 `json:"is_self"`
}

// Get returns an author's profile feed
func (h *Handler) Get(c *gin.Context) {
	var user models.User
	if err := h.db.Where("username = ?", c.Param("username")).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	page := pagination.FromQuery(c)

	var total int64
	if err := h.db.Model(&models.Post{}).Where("author_id = ?", user.ID).
		Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	var authorPosts []models.Post
	err := h.db.Preload("Author").Preload("Group").
		Where("author_id = ?", user.ID).
		Order("created_at DESC").
		Limit(page.PerPage).Offset(page.Offset()).
		Find(&authorPosts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	resp := ProfileResponse{
		ID:        user.ID,
		Username:  user.Username,
		Posts:     posts.ToResponses(authorPosts),
		PostCount: total,
		Meta:      pagination.NewMeta(page, total),
	}

	if userID, exists := auth.GetUserID(c); exists {
		resp.IsSelf = userID == user.ID
		if !resp.IsSelf {
			var count int64
			h.db.Model(&models.Follow{}).
				Where("follower_id = ? AND followed_id = ?", userID, user.ID).
				Count(&count)
			resp.Following = count > 0
		}
	}

	c.JSON(http.StatusOK, resp)
}

// RegisterRoutes registers profile routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/:username", auth.OptionalAuthMiddleware(), h.Get)
}
