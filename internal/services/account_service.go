package services

import (
	"context"
	"errors"

	"github.com/erindhoxha/mern-stack-site/internal/models"
	mongorepo "github.com/erindhoxha/mern-stack-site/internal/repositories/mongo"
	pgrepo "github.com/erindhoxha/mern-stack-site/internal/repositories/postgres"
	"github.com/erindhoxha/mern-stack-site/internal/utils"
)

type AccountService interface {
	Delete(ctx context.Context, userID string) error
	Activity(ctx context.Context, userID string, limit int) ([]models.AuditEvent, error)
}

type accountService struct {
	users    mongorepo.UserRepository
	profiles mongorepo.ProfileRepository
	posts    mongorepo.PostRepository
	audits   pgrepo.AuditRepository
	audit    AuditRecorder
}

// NewAccountService accepts a nil audits repository when Postgres is not configured.
func NewAccountService(
	users mongorepo.UserRepository,
	profiles mongorepo.ProfileRepository,
	posts mongorepo.PostRepository,
	audits pgrepo.AuditRepository,
	audit AuditRecorder,
) AccountService {
	if audit == nil {
		audit = NopAuditRecorder{}
	}
	return &accountService{users: users, profiles: profiles, posts: posts, audits: audits, audit: audit}
}

// Delete removes the user's posts, their likes and comments on other posts,
// the profile and finally the user. The user goes last so a failed run can be
// retried with the same token.
func (s *accountService) Delete(ctx context.Context, userID string) error {
	const op = "AccountService.Delete"

	uid, err := identityID(op, userID)
	if err != nil {
		return err
	}

	posts, err := s.posts.DeleteByUser(ctx, uid)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to delete posts", err)
	}
	touched, err := s.posts.PullUserActivity(ctx, uid)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to remove likes and comments", err)
	}
	if err := s.profiles.DeleteByUser(ctx, uid); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to delete profile", err)
	}
	if err := s.users.Delete(ctx, uid); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "User not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete user", err)
	}

	s.audit.Record(ctx, AuditEntry{
		UserID:     userID,
		Action:     models.AuditAccountDelete,
		Resource:   "user",
		ResourceID: userID,
		Metadata: map[string]any{
			"posts_deleted":  posts,
			"posts_modified": touched,
		},
	})
	return nil
}

func (s *accountService) Activity(ctx context.Context, userID string, limit int) ([]models.AuditEvent, error) {
	const op = "AccountService.Activity"

	if s.audits == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "Activity log is not enabled", nil)
	}
	if _, err := identityID(op, userID); err != nil {
		return nil, err
	}

	rows, err := s.audits.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list activity", err)
	}
	return rows, nil
}
