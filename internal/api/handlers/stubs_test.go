package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erindhoxha/mern-stack-site/internal/models"
	"github.com/erindhoxha/mern-stack-site/internal/providers/github"
	"github.com/erindhoxha/mern-stack-site/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testUserID = "64b7f0c2a1b2c3d4e5f60718"

// asUser stands in for the auth middleware.
func asUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id != "" {
			c.Set("user_id", id)
		}
		c.Next()
	}
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch v := body.(type) {
	case nil:
	case string:
		buf.WriteString(v)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(v))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) APIError {
	t.Helper()
	var out APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

type authStub struct {
	register func(ctx context.Context, in services.RegisterInput) (string, error)
	login    func(ctx context.Context, email, password string) (string, error)
	me       func(ctx context.Context, userID string) (*models.User, error)
}

func (s *authStub) Register(ctx context.Context, in services.RegisterInput) (string, error) {
	return s.register(ctx, in)
}

func (s *authStub) Login(ctx context.Context, email, password string) (string, error) {
	return s.login(ctx, email, password)
}

func (s *authStub) Me(ctx context.Context, userID string) (*models.User, error) {
	return s.me(ctx, userID)
}

type accountStub struct {
	del      func(ctx context.Context, userID string) error
	activity func(ctx context.Context, userID string, limit int) ([]models.AuditEvent, error)
}

func (s *accountStub) Delete(ctx context.Context, userID string) error { return s.del(ctx, userID) }

func (s *accountStub) Activity(ctx context.Context, userID string, limit int) ([]models.AuditEvent, error) {
	return s.activity(ctx, userID, limit)
}

type profileStub struct {
	me               func(ctx context.Context, userID string) (*models.ProfileView, error)
	upsert           func(ctx context.Context, userID string, f models.ProfileFields) (*models.Profile, error)
	list             func(ctx context.Context) ([]models.ProfileView, error)
	getByUser        func(ctx context.Context, userID string) (*models.ProfileView, error)
	addExperience    func(ctx context.Context, userID string, e models.Experience) (*models.Profile, error)
	removeExperience func(ctx context.Context, userID, expID string) (*models.Profile, error)
	addEducation     func(ctx context.Context, userID string, e models.Education) (*models.Profile, error)
	removeEducation  func(ctx context.Context, userID, eduID string) (*models.Profile, error)
}

func (s *profileStub) Me(ctx context.Context, userID string) (*models.ProfileView, error) {
	return s.me(ctx, userID)
}

func (s *profileStub) Upsert(ctx context.Context, userID string, f models.ProfileFields) (*models.Profile, error) {
	return s.upsert(ctx, userID, f)
}

func (s *profileStub) List(ctx context.Context) ([]models.ProfileView, error) { return s.list(ctx) }

func (s *profileStub) GetByUser(ctx context.Context, userID string) (*models.ProfileView, error) {
	return s.getByUser(ctx, userID)
}

func (s *profileStub) AddExperience(ctx context.Context, userID string, e models.Experience) (*models.Profile, error) {
	return s.addExperience(ctx, userID, e)
}

func (s *profileStub) RemoveExperience(ctx context.Context, userID, expID string) (*models.Profile, error) {
	return s.removeExperience(ctx, userID, expID)
}

func (s *profileStub) AddEducation(ctx context.Context, userID string, e models.Education) (*models.Profile, error) {
	return s.addEducation(ctx, userID, e)
}

func (s *profileStub) RemoveEducation(ctx context.Context, userID, eduID string) (*models.Profile, error) {
	return s.removeEducation(ctx, userID, eduID)
}

type postStub struct {
	create        func(ctx context.Context, userID, text string) (*models.Post, error)
	list          func(ctx context.Context) ([]models.Post, error)
	get           func(ctx context.Context, postID string) (*models.Post, error)
	del           func(ctx context.Context, userID, postID string) error
	toggleLike    func(ctx context.Context, userID, postID string) (*services.LikeResult, error)
	addComment    func(ctx context.Context, userID, postID, text string) ([]models.Comment, error)
	removeComment func(ctx context.Context, userID, postID, commentID string) ([]models.Comment, error)
}

func (s *postStub) Create(ctx context.Context, userID, text string) (*models.Post, error) {
	return s.create(ctx, userID, text)
}

func (s *postStub) List(ctx context.Context) ([]models.Post, error) { return s.list(ctx) }

func (s *postStub) Get(ctx context.Context, postID string) (*models.Post, error) {
	return s.get(ctx, postID)
}

func (s *postStub) Delete(ctx context.Context, userID, postID string) error {
	return s.del(ctx, userID, postID)
}

func (s *postStub) ToggleLike(ctx context.Context, userID, postID string) (*services.LikeResult, error) {
	return s.toggleLike(ctx, userID, postID)
}

func (s *postStub) AddComment(ctx context.Context, userID, postID, text string) ([]models.Comment, error) {
	return s.addComment(ctx, userID, postID, text)
}

func (s *postStub) RemoveComment(ctx context.Context, userID, postID, commentID string) ([]models.Comment, error) {
	return s.removeComment(ctx, userID, postID, commentID)
}

type githubStub struct {
	repos func(ctx context.Context, username string) ([]github.Repo, error)
}

func (s *githubStub) Repos(ctx context.Context, username string) ([]github.Repo, error) {
	return s.repos(ctx, username)
}
