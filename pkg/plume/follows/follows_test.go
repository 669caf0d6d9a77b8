package follows

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/plumeapp/plume/pkg/plume/auth"
	"github.com/plumeapp/plume/pkg/plume/models"
	"github.com/plumeapp/plume/pkg/plume/posts"
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

func do(router *gin.Engine, method, path, authHeader string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func followCount(db *gorm.DB) int64 {
	var count int64
	db.Model(&models.Follow{}).Count(&count)
	return count
}

func TestFollowUnfollowRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	follower := createTestUser(t, db, "follower")
	createTestUser(t, db, "author")

	before := followCount(db)

	resp := do(router, "POST", "/api/users/author/follow", getAuthHeader(follower))
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if followCount(db) != before+1 {
		t.Error("Expected follow count to grow by 1")
	}

	resp = do(router, "DELETE", "/api/users/author/follow", getAuthHeader(follower))
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	if followCount(db) != before {
		t.Error("Expected follow count to return to its pre-follow value")
	}
}

func TestFollowTwiceIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	follower := createTestUser(t, db, "follower")
	createTestUser(t, db, "author")

	do(router, "POST", "/api/users/author/follow", getAuthHeader(follower))
	resp := do(router, "POST", "/api/users/author/follow", getAuthHeader(follower))

	if resp.Code != http.StatusOK {
		t.Errorf("Expected status 200 for a repeat follow, got %d", resp.Code)
	}
	if followCount(db) != 1 {
		t.Errorf("Expected 1 follow row, got %d", followCount(db))
	}
}

func TestUnfollowIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	follower := createTestUser(t, db, "follower")
	createTestUser(t, db, "author")

	// Never followed: deleting zero rows is not an error
	resp := do(router, "DELETE", "/api/users/author/follow", getAuthHeader(follower))
	if resp.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.Code)
	}
}

func TestSelfFollowRefused(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "narcissus")

	resp := do(router, "POST", "/api/users/narcissus/follow", getAuthHeader(user))
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.Code)
	}
	if followCount(db) != 0 {
		t.Error("Expected no follow row for a self-follow")
	}
}

func TestFollowUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "follower")

	resp := do(router, "POST", "/api/users/nobody/follow", getAuthHeader(user))
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestFollowRequiresAuth(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	createTestUser(t, db, "author")

	resp := do(router, "POST", "/api/users/author/follow", "")
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.Code)
	}
}

func TestFeed(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	reader := createTestUser(t, db, "reader")
	followed := createTestUser(t, db, "followed")
	stranger := createTestUser(t, db, "stranger")

	db.Create(&models.Follow{FollowerID: reader.ID, FollowedID: followed.ID})

	base := time.Now().Add(-time.Hour)
	db.Create(&models.Post{Text: "from followed", AuthorID: followed.ID, CreatedAt: base})
	db.Create(&models.Post{Text: "from followed later", AuthorID: followed.ID, CreatedAt: base.Add(time.Minute)})
	db.Create(&models.Post{Text: "from stranger", AuthorID: stranger.ID, CreatedAt: base.Add(2 * time.Minute)})

	resp := do(router, "GET", "/api/feed", getAuthHeader(reader))
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var feed posts.FeedResponse
	json.Unmarshal(resp.Body.Bytes(), &feed)
	if len(feed.Posts) != 2 {
		t.Fatalf("Expected 2 posts in the feed, got %d", len(feed.Posts))
	}
	if feed.Posts[0].Text != "from followed later" {
		t.Errorf("Expected newest followed post first, got %q", feed.Posts[0].Text)
	}
	for _, p := range feed.Posts {
		if p.Author == "stranger" {
			t.Error("Expected only followed authors in the feed")
		}
	}
}

func TestFeedRequiresAuth(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	resp := do(router, "GET", "/api/feed", "")
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.Code)
	}
}

func TestFeedEmptyWithoutFollows(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	reader := createTestUser(t, db, "reader")
	author := createTestUser(t, db, "author")
	db.Create(&models.Post{Text: "unseen", AuthorID: author.ID})

	resp := do(router, "GET", "/api/feed", getAuthHeader(reader))
	var feed posts.FeedResponse
	json.Unmarshal(resp.Body.Bytes(), &feed)
	if len(feed.Posts) != 0 {
		t.Errorf("Expected empty feed, got %d posts", len(feed.Posts))
	}
}
