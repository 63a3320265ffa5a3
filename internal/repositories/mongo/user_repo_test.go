package mongo

import (
	"context"
	"testing"

	"github.com/erindhoxha/mern-stack-site/internal/models"
	"github.com/erindhoxha/mern-stack-site/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestUserRepo_Create(t *testing.T) {
	mt := newMock(t)

	mt.Run("assigns id and date", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewUserRepo(mt.DB)

		u := &models.User{Name: "Ada", Email: "ada@example.com", Password: "hash"}
		require.NoError(mt, repo.Create(context.Background(), u))
		assert.False(mt, u.ID.IsZero())
		assert.False(mt, u.Date.IsZero())
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: devconnector.users index: uniq_email",
		}))
		repo := NewUserRepo(mt.DB)

		err := repo.Create(context.Background(), &models.User{Email: "ada@example.com"})
		assert.ErrorIs(mt, err, utils.ErrConflict)
	})
}

func TestUserRepo_GetByEmail(t *testing.T) {
	mt := newMock(t)

	mt.Run("found", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		doc := toDoc(mt, models.User{ID: id, Name: "Ada", Email: "ada@example.com", Password: "hash"})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "devconnector.users", mtest.FirstBatch, doc))

		u, err := NewUserRepo(mt.DB).GetByEmail(context.Background(), "ada@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, id, u.ID)
		assert.Equal(mt, "hash", u.Password)
	})

	mt.Run("missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "devconnector.users", mtest.FirstBatch))

		_, err := NewUserRepo(mt.DB).GetByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(mt, err, utils.ErrNotFound)
	})
}

func TestUserRepo_Summaries(t *testing.T) {
	mt := newMock(t)

	mt.Run("maps by id", func(mt *mtest.T) {
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "devconnector.users", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: a}, {Key: "name", Value: "Ada"}, {Key: "avatar", Value: "//a"}},
			bson.D{{Key: "_id", Value: b}, {Key: "name", Value: "Bob"}, {Key: "avatar", Value: "//b"}},
		))

		got, err := NewUserRepo(mt.DB).Summaries(context.Background(), []primitive.ObjectID{a, b})
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "Ada", got[a].Name)
		assert.Equal(mt, "//b", got[b].Avatar)
	})

	mt.Run("no ids skips the query", func(mt *mtest.T) {
		got, err := NewUserRepo(mt.DB).Summaries(context.Background(), nil)
		require.NoError(mt, err)
		assert.Empty(mt, got)
	})
}

func TestUserRepo_Delete(t *testing.T) {
	mt := newMock(t)

	mt.Run("deleted", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		assert.NoError(mt, NewUserRepo(mt.DB).Delete(context.Background(), primitive.NewObjectID()))
	})

	mt.Run("missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		err := NewUserRepo(mt.DB).Delete(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, utils.ErrNotFound)
	})
}
