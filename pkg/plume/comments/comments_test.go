package comments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/plumeapp/plume/pkg/plume/auth"
	"github.com/plumeapp/plume/pkg/plume/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	models.AutoMigrate(db)
	return db
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db)
	handler.RegisterRoutes(r.Group("/api"))
	return r
}

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	user := models.User{Username: username, Email: username + "@example.com", PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func getAuthHeader(user models.User) string {
	token, _ := auth.GenerateToken(user.ID, user.Username)
	return "Bearer " + token
}

func postComment(router *gin.Engine, url, authHeader, text string) *httptest.ResponseRecorder {
	jsonBody, _ := json.Marshal(AddCommentRequest{Text: text})
	req, _ := http.NewRequest("POST", url, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestAddComment(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	author := createTestUser(t, db, "sarah")
	commenter := createTestUser(t, db, "kyle")
	post := models.Post{Text: "hello", AuthorID: author.ID}
	db.Create(&post)

	url := fmt.Sprintf("/api/users/sarah/posts/%d/comments", post.ID)
	resp := postComment(router, url, getAuthHeader(commenter), "nice post")

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var thread ThreadResponse
	json.Unmarshal(resp.Body.Bytes(), &thread)
	if len(thread.Comments) != 1 {
		t.Fatalf("Expected 1 comment, got %d", len(thread.Comments))
	}
	if thread.Comments[0].Author != "kyle" {
		t.Errorf("Expected comment author 'kyle', got %s", thread.Comments[0].Author)
	}
}

func TestAddCommentUnauthenticated(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	author := createTestUser(t, db, "sarah")
	post := models.Post{Text: "hello", AuthorID: author.ID}
	db.Create(&post)

	url := fmt.Sprintf("/api/users/sarah/posts/%d/comments", post.ID)
	resp := postComment(router, url, "", "drive-by comment")

	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.Code)
	}

	var count int64
	db.Model(&models.Comment{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no comment rows, got %d", count)
	}
}

func TestAddCommentEmptyTextSilentlyDropped(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	author := createTestUser(t, db, "sarah")
	post := models.Post{Text: "hello", AuthorID: author.ID}
	db.Create(&post)

	url := fmt.Sprintf("/api/users/sarah/posts/%d/comments", post.ID)
	resp := postComment(router, url, getAuthHeader(author), "   ")

	// No validation error is surfaced; the thread comes back as-is
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var thread ThreadResponse
	json.Unmarshal(resp.Body.Bytes(), &thread)
	if len(thread.Comments) != 0 {
		t.Errorf("Expected empty thread, got %d comments", len(thread.Comments))
	}

	var count int64
	db.Model(&models.Comment{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no comment rows, got %d", count)
	}
}

func TestAddCommentUnknownPost(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "sarah")

	resp := postComment(router, "/api/users/sarah/posts/999/comments", getAuthHeader(user), "hello?")
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}
