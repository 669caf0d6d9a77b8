package posts

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/plumeapp/plume/pkg/plume/auth"
	"github.com/plumeapp/plume/pkg/plume/cache"
	"github.com/plumeapp/plume/pkg/plume/models"
	"github.com/plumeapp/plume/pkg/plume/pagination"
	"gorm.io/gorm"
)

// Handler handles post-related requests
type Handler struct {
	db       *gorm.DB
	cache    cache.Cache
	indexTTL time.Duration
}

// NewHandler creates a new posts handler. indexTTL controls how long
// the rendered global feed is served from cache; zero disables caching.
func NewHandler(db *gorm.DB, c cache.Cache, indexTTL time.Duration) *Handler {
	return &Handler{db: db, cache: c, indexTTL: indexTTL}
}

// CreatePostRequest represents the request to create a post
type CreatePostRequest struct {
	Text    string `json:"text" binding:"required"`
	GroupID *uint  `json:"group_id"`
	Image   string `json:"image"`
}

// UpdatePostRequest represents the request to edit a post
type UpdatePostRequest struct {
	Text    string `json:"text" binding:"required"`
	GroupID *uint  `json:"group_id"`
	Image   string `json:"image"`
}

// PostResponse represents a post in API responses
type PostResponse struct {
	ID       uint   `json:"id"`
	Text     string `json:"text"`
	PubDate  string `json:"pub_date"`
	Image    string `json:"image,omitempty"`
	AuthorID uint   `json:"author_id"`
	Author   string `json:"author"`
	Group    string `json:"group,omitempty"`
}

// CommentResponse represents a comment in API responses
type CommentResponse struct {
	ID       uint   `json:"id"`
	Text     string `json:"text"`
	Created  string `json:"created"`
	AuthorID uint   `json:"author_id"`
	Author   string `json:"author"`
}

// FeedResponse is the envelope for paginated post lists
type FeedResponse struct {
	Posts []PostResponse  `json:"posts"`
	Meta  pagination.Meta `json:"meta"`
}

// PostDetailResponse is the post view: the post, its full comment
// thread newest-first, and the requester-relative author flags.
type PostDetailResponse struct {
	Post            PostResponse      `json:"post"`
	Comments        []CommentResponse `json:"comments"`
	AuthorPostCount int64             `json:"author_post_count"`
	Following       bool              `json:"following"`
	IsSelf          bool              `json:"is_self"`
}

// ToResponse converts a post model to its API shape. The Author and
// Group associations must be preloaded.
func ToResponse(post models.Post) PostResponse {
	resp := PostResponse{
		ID:       post.ID,
		Text:     post.Text,
		PubDate:  post.CreatedAt.Format(time.RFC3339),
		Image:    post.Image,
		AuthorID: post.AuthorID,
		Author:   post.Author.Username,
	}
	if post.Group != nil {
		resp.Group = post.Group.Slug
	}
	return resp
}

// ToResponses converts a slice of post models
func ToResponses(posts []models.Post) []PostResponse {
	responses := make([]PostResponse, len(posts))
	for i, post := range posts {
		responses[i] = ToResponse(post)
	}
	return responses
}

func commentToResponse(comment models.Comment) CommentResponse {
	return CommentResponse{
		ID:       comment.ID,
		Text:     comment.Text,
		Created:  comment.CreatedAt.Format(time.RFC3339),
		AuthorID: comment.AuthorID,
		Author:   comment.Author.Username,
	}
}

// Index returns the global feed: all posts, newest first, in pages of
// ten. The rendered page is cached for indexTTL, so posts created
// within the window do not appear until it elapses.
func (h *Handler) Index(c *gin.Context) {
	page := pagination.FromQuery(c)
	cacheKey := fmt.Sprintf("index_page:%d", page.Number)

	if h.indexTTL > 0 {
		if data, err := h.cache.Get(c.Request.Context(), cacheKey); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", data)
			return
		}
	}

	var total int64
	if err := h.db.Model(&models.Post{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	var posts []models.Post
	err := h.db.Preload("Author").Preload("Group").
		Order("created_at DESC").
		Limit(page.PerPage).Offset(page.Offset()).
		Find(&posts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	resp := FeedResponse{
		Posts: ToResponses(posts),
		Meta:  pagination.NewMeta(page, total),
	}

	if h.indexTTL > 0 {
		if data, err := json.Marshal(resp); err == nil {
			h.cache.Set(c.Request.Context(), cacheKey, data, h.indexTTL)
			c.Data(http.StatusOK, "application/json; charset=utf-8", data)
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}

// Create creates a new post authored by the requester
func (h *Handler) Create(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text must not be empty"})
		return
	}

	if req.GroupID != nil {
		var group models.Group
		if err := h.db.First(&group, *req.GroupID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Group not found"})
			return
		}
	}

	post := models.Post{
		Text:     req.Text,
		Image:    req.Image,
		AuthorID: userID,
		GroupID:  req.GroupID,
	}

	if err := h.db.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	if err := h.db.Preload("Author").Preload("Group").First(&post, post.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, ToResponse(post))
}

// Get returns one post with its comment thread
func (h *Handler) Get(c *gin.Context) {
	post, ok := h.findPost(c)
	if !ok {
		return
	}

	var comments []models.Comment
	err := h.db.Preload("Author").
		Where("post_id = ?", post.ID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	commentResponses := make([]CommentResponse, len(comments))
	for i, comment := range comments {
		commentResponses[i] = commentToResponse(comment)
	}

	detail := PostDetailResponse{
		Post:            ToResponse(*post),
		Comments:        commentResponses,
		AuthorPostCount: h.authorPostCount(post.AuthorID),
	}

	if userID, exists := auth.GetUserID(c); exists {
		detail.IsSelf = userID == post.AuthorID
		detail.Following = h.isFollowing(userID, post.AuthorID)
	}

	c.JSON(http.StatusOK, detail)
}

// Update edits a post's mutable fields. A requester who is not the
// author gets the unchanged post back with no error surfaced, matching
// the silent-refusal policy of the edit view. The publication date is
// never altered.
func (h *Handler) Update(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	post, ok := h.findPost(c)
	if !ok {
		return
	}

	if post.AuthorID != userID {
		// Silent refusal: non-authors are bounced back to the post.
		c.JSON(http.StatusOK, ToResponse(*post))
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text must not be empty"})
		return
	}

	if req.GroupID != nil {
		var group models.Group
		if err := h.db.First(&group, *req.GroupID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Group not found"})
			return
		}
	}

	updates := map[string]interface{}{
		"text":     req.Text,
		"group_id": req.GroupID,
		"image":    req.Image,
	}
	if err := h.db.Model(post).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	if err := h.db.Preload("Author").Preload("Group").First(post, post.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	c.JSON(http.StatusOK, ToResponse(*post))
}

// Delete removes a post and its comments
func (h *Handler) Delete(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	post, ok := h.findPost(c)
	if !ok {
		return
	}

	if post.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can delete a post"})
		return
	}

	// Comments go with the post
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(post).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// findPost resolves the (username, post_id) pair from the path,
// writing the error response itself when the pair resolves to nothing.
func (h *Handler) findPost(c *gin.Context) (*models.Post, bool) {
	username := c.Param("username")
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return nil, false
	}

	var user models.User
	if err := h.db.Where("username = ?", username).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return nil, false
	}

	var post models.Post
	err = h.db.Preload("Author").Preload("Group").
		Where("id = ? AND author_id = ?", postID, user.ID).
		First(&post).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return nil, false
	}

	return &post, true
}

func (h *Handler) authorPostCount(authorID uint) int64 {
	var count int64
	h.db.Model(&models.Post{}).Where("author_id = ?", authorID).Count(&count)
	return count
}

func (h *Handler) isFollowing(followerID, followedID uint) bool {
	var count int64
	h.db.Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count)
	return count > 0
}

// RegisterRoutes registers post routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/posts", auth.OptionalAuthMiddleware(), h.Index)
	rg.POST("/posts", auth.AuthMiddleware(), h.Create)
	rg.GET("/users/:username/posts/:post_id", auth.OptionalAuthMiddleware(), h.Get)
	rg.PUT("/users/:username/posts/:post_id", auth.AuthMiddleware(), h.Update)
	rg.DELETE("/users/:username/posts/:post_id", auth.AuthMiddleware(), h.Delete)
}
