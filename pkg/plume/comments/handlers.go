package comments

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/plumeapp/plume/pkg/plume/auth"
	"github.com/plumeapp/plume/pkg/plume/models"
	"gorm.io/gorm"
)

// Handler handles comment-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new comments handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// AddCommentRequest represents the request to add a comment.
// Text is deliberately unbound: an empty comment is not an error here,
// it is silently dropped and the thread returned as-is. This mirrors
// the add-comment policy, which differs from post validation on purpose.
type AddCommentRequest struct {
	Text string `json:"text"`
}

// CommentResponse represents a comment in API responses
type CommentResponse struct {
	ID       uint   `json:"id"`
	Text     string `json:"text"`
	Created  string `json:"created"`
	AuthorID uint   `json:"author_id"`
	Author   string `json:"author"`
}

// ThreadResponse is the comment thread of one post, newest first
type ThreadResponse struct {
	PostID   uint              `json:"post_id"`
	Comments []CommentResponse `json:"comments"`
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

// Add attaches a comment to a post and returns the refreshed thread.
// Whether the comment text validated or not, the response is the
// thread; an empty comment simply never appears in it.
func (h *Handler) Add(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	post, ok := h.findPost(c)
	if !ok {
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if strings.TrimSpace(req.Text) != "" {
		comment := models.Comment{
			Text:     req.Text,
			PostID:   post.ID,
			AuthorID: userID,
		}
		if err := h.db.Create(&comment).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
			return
		}
	}

	h.respondThread(c, post.ID)
}

func (h *Handler) respondThread(c *gin.Context, postID uint) {
	var comments []models.Comment
	err := h.db.Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	responses := make([]CommentResponse, len(comments))
	for i, comment := range comments {
		responses[i] = commentToResponse(comment)
	}

	c.JSON(http.StatusOK, ThreadResponse{
		PostID:   postID,
		Comments: responses,
	})
}

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
	if err := h.db.Where("id = ? AND author_id = ?", postID, user.ID).First(&post).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return nil, false
	}

	return &post, true
}

// RegisterRoutes registers comment routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/users/:username/posts/:post_id/comments", auth.AuthMiddleware(), h.Add)
}
