package services

import (
	"context"
	"sync"

	"github.com/erindhoxha/mern-stack-site/internal/models"
	"github.com/erindhoxha/mern-stack-site/internal/providers/github"
	"github.com/erindhoxha/mern-stack-site/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userRepoStub struct {
	CreateFn     func(ctx context.Context, u *models.User) error
	GetByIDFn    func(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*models.User, error)
	SummariesFn  func(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error)
	DeleteFn     func(ctx context.Context, id primitive.ObjectID) error
}

func (s *userRepoStub) Create(ctx context.Context, u *models.User) error {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, u)
	}
	u.ID = primitive.NewObjectID()
	return nil
}

func (s *userRepoStub) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	return nil, utils.ErrNotFound
}

func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.GetByEmailFn != nil {
		return s.GetByEmailFn(ctx, email)
	}
	return nil, utils.ErrNotFound
}

func (s *userRepoStub) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	if s.SummariesFn != nil {
		return s.SummariesFn(ctx, ids)
	}
	return map[primitive.ObjectID]models.UserSummary{}, nil
}

func (s *userRepoStub) Delete(ctx context.Context, id primitive.ObjectID) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, id)
	}
	return nil
}

type profileRepoStub struct {
	UpsertFn         func(ctx context.Context, userID primitive.ObjectID, set map[string]any) (*models.Profile, error)
	GetByUserFn      func(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error)
	ListFn           func(ctx context.Context) ([]models.Profile, error)
	PushExperienceFn func(ctx context.Context, userID primitive.ObjectID, e models.Experience) (*models.Profile, error)
	PullExperienceFn func(ctx context.Context, userID, expID primitive.ObjectID) (*models.Profile, error)
	PushEducationFn  func(ctx context.Context, userID primitive.ObjectID, e models.Education) (*models.Profile, error)
	PullEducationFn  func(ctx context.Context, userID, eduID primitive.ObjectID) (*models.Profile, error)
	DeleteByUserFn   func(ctx context.Context, userID primitive.ObjectID) error
}

func (s *profileRepoStub) Upsert(ctx context.Context, userID primitive.ObjectID, set map[string]any) (*models.Profile, error) {
	return s.UpsertFn(ctx, userID, set)
}

func (s *profileRepoStub) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	if s.GetByUserFn != nil {
		return s.GetByUserFn(ctx, userID)
	}
	return nil, utils.ErrNotFound
}

func (s *profileRepoStub) List(ctx context.Context) ([]models.Profile, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx)
	}
	return []models.Profile{}, nil
}

func (s *profileRepoStub) PushExperience(ctx context.Context, userID primitive.ObjectID, e models.Experience) (*models.Profile, error) {
	return s.PushExperienceFn(ctx, userID, e)
}

func (s *profileRepoStub) PullExperience(ctx context.Context, userID, expID primitive.ObjectID) (*models.Profile, error) {
	return s.PullExperienceFn(ctx, userID, expID)
}

func (s *profileRepoStub) PushEducation(ctx context.Context, userID primitive.ObjectID, e models.Education) (*models.Profile, error) {
	return s.PushEducationFn(ctx, userID, e)
}

func (s *profileRepoStub) PullEducation(ctx context.Context, userID, eduID primitive.ObjectID) (*models.Profile, error) {
	return s.PullEducationFn(ctx, userID, eduID)
}

func (s *profileRepoStub) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	if s.DeleteByUserFn != nil {
		return s.DeleteByUserFn(ctx, userID)
	}
	return nil
}

type postRepoStub struct {
	CreateFn           func(ctx context.Context, p *models.Post) error
	ListFn             func(ctx context.Context) ([]models.Post, error)
	GetByIDFn          func(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	DeleteOwnedFn      func(ctx context.Context, id, owner primitive.ObjectID) (bool, error)
	LikeFn             func(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error)
	UnlikeFn           func(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error)
	PushCommentFn      func(ctx context.Context, postID primitive.ObjectID, c models.Comment) (*models.Post, error)
	PullCommentFn      func(ctx context.Context, postID, commentID, owner primitive.ObjectID) (*models.Post, error)
	DeleteByUserFn     func(ctx context.Context, userID primitive.ObjectID) (int64, error)
	PullUserActivityFn func(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

func (s *postRepoStub) Create(ctx context.Context, p *models.Post) error {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, p)
	}
	p.ID = primitive.NewObjectID()
	return nil
}

func (s *postRepoStub) List(ctx context.Context) ([]models.Post, error) { return s.ListFn(ctx) }

func (s *postRepoStub) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	return nil, utils.ErrNotFound
}

func (s *postRepoStub) DeleteOwned(ctx context.Context, id, owner primitive.ObjectID) (bool, error) {
	return s.DeleteOwnedFn(ctx, id, owner)
}

func (s *postRepoStub) Like(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	return s.LikeFn(ctx, postID, userID)
}

func (s *postRepoStub) Unlike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	return s.UnlikeFn(ctx, postID, userID)
}

func (s *postRepoStub) PushComment(ctx context.Context, postID primitive.ObjectID, c models.Comment) (*models.Post, error) {
	return s.PushCommentFn(ctx, postID, c)
}

func (s *postRepoStub) PullComment(ctx context.Context, postID, commentID, owner primitive.ObjectID) (*models.Post, error) {
	return s.PullCommentFn(ctx, postID, commentID, owner)
}

func (s *postRepoStub) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	if s.DeleteByUserFn != nil {
		return s.DeleteByUserFn(ctx, userID)
	}
	return 0, nil
}

func (s *postRepoStub) PullUserActivity(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	if s.PullUserActivityFn != nil {
		return s.PullUserActivityFn(ctx, userID)
	}
	return 0, nil
}

type auditRepoStub struct {
	ListByUserFn func(ctx context.Context, userID string, limit int) ([]models.AuditEvent, error)
}

func (s *auditRepoStub) InsertMany(context.Context, []models.AuditEvent) error { return nil }
func (s *auditRepoStub) ListByUser(ctx context.Context, userID string, limit int) ([]models.AuditEvent, error) {
	return s.ListByUserFn(ctx, userID, limit)
}

type recorderSpy struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (r *recorderSpy) Record(_ context.Context, e AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *recorderSpy) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

type publisherSpy struct {
	mu     sync.Mutex
	events []models.PostEvent
}

func (p *publisherSpy) Publish(_ context.Context, ev models.PostEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *publisherSpy) types() []models.PostEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.PostEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type githubStub struct {
	calls   int
	ReposFn func(ctx context.Context, username string) ([]github.Repo, error)
}

func (g *githubStub) Repos(ctx context.Context, username string) ([]github.Repo, error) {
	g.calls++
	return g.ReposFn(ctx, username)
}

// tokenStub issues "tok-<id>" and never fails.
type tokenStub struct{}

func (tokenStub) Issue(userID string) (string, error) { return "tok-" + userID, nil }
func (tokenStub) Verify(token string) (string, error) {
	return "", utils.E(utils.CodeUnauthorized, "tokenStub.Verify", "Token is not valid", nil)
}
