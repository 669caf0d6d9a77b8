package follows

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/plumeapp/plume/pkg/plume/auth"
	"github.com/plumeapp/plume/pkg/plume/models"
	"github.com/plumeapp/plume/pkg/plume/pagination"
	"github.com/plumeapp/plume/pkg/plume/posts"
	"gorm.io/gorm"
)

// Handler handles follow relationships and the followed-authors feed
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new follows handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// FollowResponse reports the requester's relation to an author
type FollowResponse struct {
	Username  string `json:"username"`
	Following bool   `json:"following"`
}

// Follow makes the requester follow the named author. Following
// yourself is refused; following someone twice is a silent no-op.
func (h *Handler) Follow(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var target models.User
	if err := h.db.Where("username = ?", c.Param("username")).First(&target).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if target.ID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot follow yourself"})
		return
	}

	var existing models.Follow
	err := h.db.Where("follower_id = ? AND followed_id = ?", userID, target.ID).
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusOK, FollowResponse{Username: target.Username, Following: true})
		return
	}

	follow := models.Follow{
		FollowerID: userID,
		FollowedID: target.ID,
	}
	if err := h.db.Create(&follow).Error; err != nil {
		// The unique index turns a concurrent duplicate into an
		// insert error; the relation exists either way.
		c.JSON(http.StatusOK, FollowResponse{Username: target.Username, Following: true})
		return
	}

	c.JSON(http.StatusCreated, FollowResponse{Username: target.Username, Following: true})
}

// Unfollow removes the requester's follow of the named author.
// Deleting zero rows is not an error.
func (h *Handler) Unfollow(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var target models.User
	if err := h.db.Where("username = ?", c.Param("username")).First(&target).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	err := h.db.Where("follower_id = ? AND followed_id = ?", userID, target.ID).
		Delete(&models.Follow{}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow"})
		return
	}

	c.JSON(http.StatusOK, FollowResponse{Username: target.Username, Following: false})
}

// Feed returns posts by every author the requester follows, newest first
func (h *Handler) Feed(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	page := pagination.FromQuery(c)
	followedIDs := h.db.Model(&models.Follow{}).
		Select("followed_id").
		Where("follower_id = ?", userID)

	var total int64
	if err := h.db.Model(&models.Post{}).Where("author_id IN (?)", followedIDs).
		Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feed"})
		return
	}

	var feedPosts []models.Post
	err := h.db.Preload("Author").Preload("Group").
		Where("author_id IN (?)", followedIDs).
		Order("created_at DESC").
		Limit(page.PerPage).Offset(page.Offset()).
		Find(&feedPosts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feed"})
		return
	}

	c.JSON(http.StatusOK, posts.FeedResponse{
		Posts: posts.ToResponses(feedPosts),
		Meta:  pagination.NewMeta(page, total),
	})
}

// RegisterRoutes registers follow routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/feed", auth.AuthMiddleware(), h.Feed)
	rg.POST("/users/:username/follow", auth.AuthMiddleware(), h.Follow)
	rg.DELETE("/users/:username/follow", auth.AuthMiddleware(), h.Unfollow)
}
