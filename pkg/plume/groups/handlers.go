package groups

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/plumeapp/plume/pkg/plume/auth"
	"github.com/plumeapp/plume/pkg/plume/models"
	"github.com/plumeapp/plume/pkg/plume/pagination"
	"github.com/plumeapp/plume/pkg/plume/posts"
	"gorm.io/gorm"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Handler handles group-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new groups handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateGroupRequest represents the request to create a group
type CreateGroupRequest struct {
	Title       string `json:"title" binding:"required"`
	Slug        string `json:"slug" binding:"required,min=1,max=50"`
	Description string `json:"description"`
}

// GroupResponse represents a group in API responses
type GroupResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// GroupFeedResponse is the group page: the group and its posts
type GroupFeedResponse struct {
	Group GroupResponse        `json:"group"`
	Posts []posts.PostResponse `json:"posts"`
	Meta  pagination.Meta      `json:"meta"`
}

func groupToResponse(group models.Group) GroupResponse {
	return GroupResponse{
		ID:          group.ID,
		Title:       group.Title,
		Slug:        group.Slug,
		Description: group.Description,
	}
}

// Create creates a new group. The slug is immutable after creation.
func (h *Handler) Create(c *gin.Context) {
	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !slugRegex.MatchString(req.Slug) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Slug must contain only lowercase letters, numbers, hyphens, and underscores"})
		return
	}

	var existing models.Group
	if err := h.db.Where("slug = ?", req.Slug).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "This slug is already taken"})
		return
	}

	group := models.Group{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
	}

	if err := h.db.Create(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
		return
	}

	c.JSON(http.StatusCreated, groupToResponse(group))
}

// List returns all groups
func (h *Handler) List(c *gin.Context) {
	var groups []models.Group
	if err := h.db.Order("title").Find(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}

	responses := make([]GroupResponse, len(groups))
	for i, group := range groups {
		responses[i] = groupToResponse(group)
	}

	c.JSON(http.StatusOK, responses)
}

// Posts returns the group feed: the group's posts, newest first
func (h *Handler) Posts(c *gin.Context) {
	var group models.Group
	if err := h.db.Where("slug = ?", c.Param("slug")).First(&group).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	page := pagination.FromQuery(c)

	var total int64
	if err := h.db.Model(&models.Post{}).Where("group_id = ?", group.ID).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	var groupPosts []models.Post
	err := h.db.Preload("Author").Preload("Group").
		Where("group_id = ?", group.ID).
		Order("created_at DESC").
		Limit(page.PerPage).Offset(page.Offset()).
		Find(&groupPosts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	c.JSON(http.StatusOK, GroupFeedResponse{
		Group: groupToResponse(group),
		Posts: posts.ToResponses(groupPosts),
		Meta:  pagination.NewMeta(page, total),
	})
}

// Delete removes a group. Posts in the group survive with their group
// reference cleared.
func (h *Handler) Delete(c *gin.Context) {
	var group models.Group
	if err := h.db.Where("slug = ?", c.Param("slug")).First(&group).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("group_id = ?", group.ID).
			Update("group_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&group).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Group deleted"})
}

// RegisterRoutes registers group routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/groups", h.List)
	rg.POST("/groups", auth.AuthMiddleware(), h.Create)
	rg.GET("/groups/:slug/posts", h.Posts)
	rg.DELETE("/groups/:slug", auth.AuthMiddleware(), h.Delete)
}
