package services

import (
	"context"
	"errors"
	"sort"

	"github.com/erindhoxha/mern-stack-site/internal/models"
	mongorepo "github.com/erindhoxha/mern-stack-site/internal/repositories/mongo"
	"github.com/erindhoxha/mern-stack-site/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const noProfileMsg = "There is no profile for this user"

type ProfileService interface {
	Me(ctx context.Context, userID string) (*models.ProfileView, error)
	Upsert(ctx context.Context, userID string, fields models.ProfileFields) (*models.Profile, error)
	List(ctx context.Context) ([]models.ProfileView, error)
	GetByUser(ctx context.Context, userID string) (*models.ProfileView, error)

	AddExperience(ctx context.Context, userID string, e models.Experience) (*models.Profile, error)
	RemoveExperience(ctx context.Context, userID, expID string) (*models.Profile, error)
	AddEducation(ctx context.Context, userID string, e models.Education) (*models.Profile, error)
	RemoveEducation(ctx context.Context, userID, eduID string) (*models.Profile, error)
}

type profileService struct {
	profiles mongorepo.ProfileRepository
	users    mongorepo.UserRepository
	audit    AuditRecorder
}

func NewProfileService(profiles mongorepo.ProfileRepository, users mongorepo.UserRepository, audit AuditRecorder) ProfileService {
	if audit == nil {
		audit = NopAuditRecorder{}
	}
	return &profileService{profiles: profiles, users: users, audit: audit}
}

func (s *profileService) Me(ctx context.Context, userID string) (*models.ProfileView, error) {
	const op = "ProfileService.Me"

	uid, err := identityID(op, userID)
	if err != nil {
		return nil, err
	}
	return s.viewByUser(ctx, op, uid)
}

func (s *profileService) GetByUser(ctx context.Context, userID string) (*models.ProfileView, error) {
	const op = "ProfileService.GetByUser"

	uid, err := resourceID(op, userID, noProfileMsg)
	if err != nil {
		return nil, err
	}
	return s.viewByUser(ctx, op, uid)
}

func (s *profileService) viewByUser(ctx context.Context, op string, uid primitive.ObjectID) (*models.ProfileView, error) {
	p, err := s.profiles.GetByUser(ctx, uid)
	if err != nil {
		return nil, s.mapErr(op, err, "failed to get profile")
	}

	views, err := s.populate(ctx, []models.Profile{*p})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to resolve profile owner", err)
	}
	return &views[0], nil
}

func (s *profileService) List(ctx context.Context) ([]models.ProfileView, error) {
	const op = "ProfileService.List"

	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list profiles", err)
	}

	views, err := s.populate(ctx, profiles)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to resolve profile owners", err)
	}
	return views, nil
}

// populate attaches each owner's name and avatar. Owners that no longer exist keep only their id.
func (s *profileService) populate(ctx context.Context, profiles []models.Profile) ([]models.ProfileView, error) {
	seen := make(map[primitive.ObjectID]struct{}, len(profiles))
	ids := make([]primitive.ObjectID, 0, len(profiles))
	for _, p := range profiles {
		if _, ok := seen[p.User]; ok {
			continue
		}
		seen[p.User] = struct{}{}
		ids = append(ids, p.User)
	}

	summaries, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.ProfileView, 0, len(profiles))
	for _, p := range profiles {
		u, ok := summaries[p.User]
		if !ok {
			u = models.UserSummary{ID: p.User}
		}
		views = append(views, models.NewProfileView(p, u))
	}
	return views, nil
}

func (s *profileService) Upsert(ctx context.Context, userID string, fields models.ProfileFields) (*models.Profile, error) {
	const op = "ProfileService.Upsert"

	uid, err := identityID(op, userID)
	if err != nil {
		return nil, err
	}

	set := fields.Set()
	p, err := s.profiles.Upsert(ctx, uid, set)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save profile", err)
	}

	changed := make([]string, 0, len(set))
	for k := range set {
		changed = append(changed, k)
	}
	sort.Strings(changed)
	s.audit.Record(ctx, AuditEntry{
		UserID:     userID,
		Action:     models.AuditProfileUpsert,
		Resource:   "profile",
		ResourceID: p.ID.Hex(),
		Fields:     changed,
	})
	return p, nil
}

func (s *profileService) AddExperience(ctx context.Context, userID string, e models.Experience) (*models.Profile, error) {
	const op = "ProfileService.AddExperience"

	uid, err := identityID(op, userID)
	if err != nil {
		return nil, err
	}

	e.ID = primitive.NewObjectID()
	e.Normalize()
	p, err := s.profiles.PushExperience(ctx, uid, e)
	if err != nil {
		return nil, s.mapErr(op, err, "failed to add experience")
	}
	return p, nil
}

func (s *profileService) RemoveExperience(ctx context.Context, userID, expID string) (*models.Profile, error) {
	const op = "ProfileService.RemoveExperience"

	uid, err := identityID(op, userID)
	if err != nil {
		return nil, err
	}

	// a malformed id matches nothing, which is the same no-op as an unknown id
	eid, _ := primitive.ObjectIDFromHex(expID)
	p, err := s.profiles.PullExperience(ctx, uid, eid)
	if err != nil {
		return nil, s.mapErr(op, err, "failed to remove experience")
	}
	return p, nil
}

func (s *profileService) AddEducation(ctx context.Context, userID string, e models.Education) (*models.Profile, error) {
	const op = "ProfileService.AddEducation"

	uid, err := identityID(op, userID)
	if err != nil {
		return nil, err
	}

	e.ID = primitive.NewObjectID()
	e.Normalize()
	p, err := s.profiles.PushEducation(ctx, uid, e)
	if err != nil {
		return nil, s.mapErr(op, err, "failed to add education")
	}
	return p, nil
}

func (s *profileService) RemoveEducation(ctx context.Context, userID, eduID string) (*models.Profile, error) {
	const op = "ProfileService.RemoveEducation"

	uid, err := identityID(op, userID)
	if err != nil {
		return nil, err
	}

	eid, _ := primitive.ObjectIDFromHex(eduID)
	p, err := s.profiles.PullEducation(ctx, uid, eid)
	if err != nil {
		return nil, s.mapErr(op, err, "failed to remove education")
	}
	return p, nil
}

func (s *profileService) mapErr(op string, err error, internalMsg string) error {
	if errors.Is(err, utils.ErrNotFound) {
		return utils.E(utils.CodeNotFound, op, noProfileMsg, err)
	}
	return utils.E(utils.CodeInternal, op, internalMsg, err)
}
