package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/erindhoxha/mern-stack-site/internal/models"
	"github.com/erindhoxha/mern-stack-site/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProfileRepository interface {
	Upsert(ctx context.Context, userID primitive.ObjectID, set map[string]any) (*models.Profile, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	PushExperience(ctx context.Context, userID primitive.ObjectID, e models.Experience) (*models.Profile, error)
	PullExperience(ctx context.Context, userID, expID primitive.ObjectID) (*models.Profile, error)
	PushEducation(ctx context.Context, userID primitive.ObjectID, e models.Education) (*models.Profile, error)
	PullEducation(ctx context.Context, userID, eduID primitive.ObjectID) (*models.Profile, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

type profileRepo struct {
	col *mongo.Collection
}

func NewProfileRepo(db *mongo.Database) ProfileRepository {
	return &profileRepo{col: db.Collection("profiles")}
}

// Upsert creates or updates the single profile owned by userID. Two concurrent first
// writes both try to insert; the loser hits the unique index on user and is retried
// once as a plain update.
func (r *profileRepo) Upsert(ctx context.Context, userID primitive.ObjectID, set map[string]any) (*models.Profile, error) {
	update := bson.M{
		"$setOnInsert": bson.M{
			"user":       userID,
			"date":       time.Now().UTC(),
			"experience": bson.A{},
			"education":  bson.A{},
		},
	}
	if len(set) > 0 {
		update["$set"] = set
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	p, err := r.modify(ctx, bson.M{"user": userID}, update, opts)
	if !mongo.IsDuplicateKeyError(err) {
		return p, err
	}

	delete(update, "$setOnInsert")
	if len(set) == 0 {
		return r.GetByUser(ctx, userID)
	}
	return r.modify(ctx, bson.M{"user": userID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
}

func (r *profileRepo) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	var p models.Profile
	err := r.col.FindOne(ctx, bson.M{"user": userID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) List(ctx context.Context) ([]models.Profile, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Profile{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *profileRepo) PushExperience(ctx context.Context, userID primitive.ObjectID, e models.Experience) (*models.Profile, error) {
	return r.pushFront(ctx, userID, "experience", e)
}

func (r *profileRepo) PullExperience(ctx context.Context, userID, expID primitive.ObjectID) (*models.Profile, error) {
	return r.pull(ctx, userID, "experience", expID)
}

func (r *profileRepo) PushEducation(ctx context.Context, userID primitive.ObjectID, e models.Education) (*models.Profile, error) {
	return r.pushFront(ctx, userID, "education", e)
}

func (r *profileRepo) PullEducation(ctx context.Context, userID, eduID primitive.ObjectID) (*models.Profile, error) {
	return r.pull(ctx, userID, "education", eduID)
}

func (r *profileRepo) pushFront(ctx context.Context, userID primitive.ObjectID, field string, item any) (*models.Profile, error) {
	update := bson.M{"$push": bson.M{field: bson.M{"$each": bson.A{item}, "$position": 0}}}
	return r.modify(ctx, bson.M{"user": userID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
}

// pull is a no-op on the list when itemID is absent; the profile is still returned.
func (r *profileRepo) pull(ctx context.Context, userID primitive.ObjectID, field string, itemID primitive.ObjectID) (*models.Profile, error) {
	update := bson.M{"$pull": bson.M{field: bson.M{"_id": itemID}}}
	return r.modify(ctx, bson.M{"user": userID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
}

func (r *profileRepo) modify(ctx context.Context, filter, update bson.M, opts *options.FindOneAndUpdateOptions) (*models.Profile, error) {
	var p models.Profile
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"user": userID})
	return err
}
