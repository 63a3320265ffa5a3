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

type PostRepository interface {
	Create(ctx context.Context, p *models.Post) error
	List(ctx context.Context) ([]models.Post, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	DeleteOwned(ctx context.Context, id, owner primitive.ObjectID) (bool, error)

	// Like and Unlike return ErrNotFound when the post is missing or the
	// like state already matches.
	Like(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error)
	Unlike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error)

	PushComment(ctx context.Context, postID primitive.ObjectID, c models.Comment) (*models.Post, error)
	PullComment(ctx context.Context, postID, commentID, owner primitive.ObjectID) (*models.Post, error)

	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	PullUserActivity(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type postRepo struct {
	col *mongo.Collection
}

func NewPostRepo(db *mongo.Database) PostRepository {
	return &postRepo{col: db.Collection("posts")}
}

func (r *postRepo) Create(ctx context.Context, p *models.Post) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	if p.Likes == nil {
		p.Likes = []models.Like{}
	}
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}
	_, err := r.col.InsertOne(ctx, p)
	return err
}

func (r *postRepo) List(ctx context.Context) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Post{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepo) DeleteOwned(ctx context.Context, id, owner primitive.ObjectID) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "user": owner})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *postRepo) Like(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	filter := bson.M{"_id": postID, "likes.user": bson.M{"$ne": userID}}
	update := bson.M{"$push": bson.M{"likes": bson.M{
		"$each":     bson.A{models.Like{User: userID}},
		"$position": 0,
	}}}
	return r.modify(ctx, filter, update)
}

func (r *postRepo) Unlike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	filter := bson.M{"_id": postID, "likes.user": userID}
	update := bson.M{"$pull": bson.M{"likes": bson.M{"user": userID}}}
	return r.modify(ctx, filter, update)
}

func (r *postRepo) PushComment(ctx context.Context, postID primitive.ObjectID, c models.Comment) (*models.Post, error) {
	update := bson.M{"$push": bson.M{"comments": bson.M{
		"$each":     bson.A{c},
		"$position": 0,
	}}}
	return r.modify(ctx, bson.M{"_id": postID}, update)
}

// PullComment only matches when the comment exists and belongs to owner.
func (r *postRepo) PullComment(ctx context.Context, postID, commentID, owner primitive.ObjectID) (*models.Post, error) {
	filter := bson.M{
		"_id":      postID,
		"comments": bson.M{"$elemMatch": bson.M{"_id": commentID, "user": owner}},
	}
	update := bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID, "user": owner}}}
	return r.modify(ctx, filter, update)
}

func (r *postRepo) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"user": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// PullUserActivity strips the user's likes and comments from every other post.
func (r *postRepo) PullUserActivity(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"likes.user": userID},
		bson.M{"comments.user": userID},
	}}
	update := bson.M{"$pull": bson.M{
		"likes":    bson.M{"user": userID},
		"comments": bson.M{"user": userID},
	}}
	res, err := r.col.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *postRepo) modify(ctx context.Context, filter, update bson.M) (*models.Post, error) {
	var p models.Post
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
