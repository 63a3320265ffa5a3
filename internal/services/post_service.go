package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/erindhoxha/mern-stack-site/internal/models"
	mongorepo "github.com/erindhoxha/mern-stack-site/internal/repositories/mongo"
	"github.com/erindhoxha/mern-stack-site/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	postNotFoundMsg    = "Post not found"
	commentNotFoundMsg = "Comment does not exist"
	notAuthorizedMsg   = "User not authorized"
)

type LikeResult struct {
	Liked bool          `json:"liked"`
	Likes []models.Like `json:"likes"`
}

type PostService interface {
	Create(ctx context.Context, userID, text string) (*models.Post, error)
	List(ctx context.Context) ([]models.Post, error)
	Get(ctx context.Context, postID string) (*models.Post, error)
	Delete(ctx context.Context, userID, postID string) error
	ToggleLike(ctx context.Context, userID, postID string) (*LikeResult, error)
	AddComment(ctx context.Context, userID, postID, text string) ([]models.Comment, error)
	RemoveComment(ctx context.Context, userID, postID, commentID string) ([]models.Comment, error)
}

type postService struct {
	posts  mongorepo.PostRepository
	users  mongorepo.UserRepository
	events EventPublisher
	audit  AuditRecorder
}

func NewPostService(posts mongorepo.PostRepository, users mongorepo.UserRepository, events EventPublisher, audit AuditRecorder) PostService {
	if events == nil {
		events = NopEventPublisher{}
	}
	if audit == nil {
		audit = NopAuditRecorder{}
	}
	return &postService{posts: posts, users: users, events: events, audit: audit}
}

// author loads the caller so name and avatar can be copied onto new content.
func (s *postService) author(ctx context.Context, op, userID string) (*models.User, error) {
	uid, err := identityID(op, userID)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "User not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load author", err)
	}
	return u, nil
}

func (s *postService) Create(ctx context.Context, userID, text string) (*models.Post, error) {
	const op = "PostService.Create"

	u, err := s.author(ctx, op, userID)
	if err != nil {
		return nil, err
	}

	p := &models.Post{
		User:   u.ID,
		Text:   strings.TrimSpace(text),
		Name:   u.Name,
		Avatar: u.Avatar,
		Date:   time.Now().UTC(),
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create post", err)
	}

	s.events.Publish(ctx, postEvent(models.EventPostCreated, p, userID))
	return p, nil
}

func (s *postService) List(ctx context.Context) ([]models.Post, error) {
	const op = "PostService.List"

	out, err := s.posts.List(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list posts", err)
	}
	return out, nil
}

func (s *postService) Get(ctx context.Context, postID string) (*models.Post, error) {
	const op = "PostService.Get"

	pid, err := resourceID(op, postID, postNotFoundMsg)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, op, pid)
}

func (s *postService) load(ctx context.Context, op string, pid primitive.ObjectID) (*models.Post, error) {
	p, err := s.posts.GetByID(ctx, pid)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, postNotFoundMsg, err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get post", err)
	}
	return p, nil
}

func (s *postService) Delete(ctx context.Context, userID, postID string) error {
	const op = "PostService.Delete"

	uid, err := identityID(op, userID)
	if err != nil {
		return err
	}
	pid, err := resourceID(op, postID, postNotFoundMsg)
	if err != nil {
		return err
	}

	p, err := s.load(ctx, op, pid)
	if err != nil {
		return err
	}
	if Authorize(userID, p.User.Hex(), CapabilityDelete) != Allowed {
		return utils.E(utils.CodeUnauthorized, op, notAuthorizedMsg, nil)
	}

	deleted, err := s.posts.DeleteOwned(ctx, pid, uid)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to delete post", err)
	}
	if !deleted {
		return utils.E(utils.CodeNotFound, op, postNotFoundMsg, nil)
	}

	s.events.Publish(ctx, postEvent(models.EventPostDeleted, p, userID))
	s.audit.Record(ctx, AuditEntry{
		UserID:     userID,
		Action:     models.AuditPostDelete,
		Resource:   "post",
		ResourceID: postID,
	})
	return nil
}

// ToggleLike picks the direction from the current state, then applies it with a
// conditional update. If a concurrent toggle wins in between, the state is re-read
// and the opposite direction is tried.
func (s *postService) ToggleLike(ctx context.Context, userID, postID string) (*LikeResult, error) {
	const op = "PostService.ToggleLike"
	const attempts = 3

	uid, err := identityID(op, userID)
	if err != nil {
		return nil, err
	}
	pid, err := resourceID(op, postID, postNotFoundMsg)
	if err != nil {
		return nil, err
	}

	for i := 0; i < attempts; i++ {
		p, err := s.load(ctx, op, pid)
		if err != nil {
			return nil, err
		}

		liked := !p.LikedBy(uid)
		var updated *models.Post
		if liked {
			updated, err = s.posts.Like(ctx, pid, uid)
		} else {
			updated, err = s.posts.Unlike(ctx, pid, uid)
		}
		if errors.Is(err, utils.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to update likes", err)
		}

		typ := models.EventPostUnliked
		if liked {
			typ = models.EventPostLiked
		}
		s.events.Publish(ctx, postEvent(typ, updated, userID))

		likes := updated.Likes
		if likes == nil {
			likes = []models.Like{}
		}
		return &LikeResult{Liked: liked, Likes: likes}, nil
	}
	return nil, utils.E(utils.CodeInternal, op, "like state kept changing", nil)
}

func (s *postService) AddComment(ctx context.Context, userID, postID, text string) ([]models.Comment, error) {
	const op = "PostService.AddComment"

	pid, err := resourceID(op, postID, postNotFoundMsg)
	if err != nil {
		return nil, err
	}
	u, err := s.author(ctx, op, userID)
	if err != nil {
		return nil, err
	}

	c := models.Comment{
		ID:     primitive.NewObjectID(),
		User:   u.ID,
		Text:   strings.TrimSpace(text),
		Name:   u.Name,
		Avatar: u.Avatar,
		Date:   time.Now().UTC(),
	}
	p, err := s.posts.PushComment(ctx, pid, c)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, postNotFoundMsg, err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to add comment", err)
	}

	ev := postEvent(models.EventCommentAdded, p, userID)
	ev.CommentID = c.ID.Hex()
	s.events.Publish(ctx, ev)
	return p.Comments, nil
}

func (s *postService) RemoveComment(ctx context.Context, userID, postID, commentID string) ([]models.Comment, error) {
	const op = "PostService.RemoveComment"

	uid, err := identityID(op, userID)
	if err != nil {
		return nil, err
	}
	pid, err := resourceID(op, postID, postNotFoundMsg)
	if err != nil {
		return nil, err
	}
	cid, err := resourceID(op, commentID, commentNotFoundMsg)
	if err != nil {
		return nil, err
	}

	p, err := s.load(ctx, op, pid)
	if err != nil {
		return nil, err
	}
	c, ok := p.FindComment(cid)
	if !ok {
		return nil, utils.E(utils.CodeNotFound, op, commentNotFoundMsg, nil)
	}
	if Authorize(userID, c.User.Hex(), CapabilityDelete) != Allowed {
		return nil, utils.E(utils.CodeUnauthorized, op, notAuthorizedMsg, nil)
	}

	updated, err := s.posts.PullComment(ctx, pid, cid, uid)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, commentNotFoundMsg, err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to remove comment", err)
	}

	ev := postEvent(models.EventCommentRemoved, updated, userID)
	ev.CommentID = commentID
	s.events.Publish(ctx, ev)

	comments := updated.Comments
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}
