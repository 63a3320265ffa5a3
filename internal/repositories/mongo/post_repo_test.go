package mongo

import (
	"context"
	"errors"
	"testing"

	"github.com/erindhoxha/mern-stack-site/internal/models"
	"github.com/erindhoxha/mern-stack-site/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestPostRepo_Create(t *testing.T) {
	mt := newMock(t)

	mt.Run("fills defaults", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		p := &models.Post{User: primitive.NewObjectID(), Text: "hello"}

		require.NoError(mt, NewPostRepo(mt.DB).Create(context.Background(), p))
		assert.False(mt, p.ID.IsZero())
		assert.NotNil(mt, p.Likes)
		assert.NotNil(mt, p.Comments)
	})
}

func TestPostRepo_List(t *testing.T) {
	mt := newMock(t)

	mt.Run("decodes in store order", func(mt *mtest.T) {
		newer := models.Post{ID: primitive.NewObjectID(), Text: "newer"}
		older := models.Post{ID: primitive.NewObjectID(), Text: "older"}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "devconnector.posts", mtest.FirstBatch, toDoc(mt, newer), toDoc(mt, older)))

		got, err := NewPostRepo(mt.DB).List(context.Background())
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "newer", got[0].Text)
	})

	mt.Run("store failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad", Name: "BadValue"}))
		_, err := NewPostRepo(mt.DB).List(context.Background())
		require.Error(mt, err)
		assert.False(mt, errors.Is(err, utils.ErrNotFound))
	})
}

func TestPostRepo_GetByID(t *testing.T) {
	mt := newMock(t)

	mt.Run("missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "devconnector.posts", mtest.FirstBatch))
		_, err := NewPostRepo(mt.DB).GetByID(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, utils.ErrNotFound)
	})
}

func TestPostRepo_DeleteOwned(t *testing.T) {
	mt := newMock(t)

	mt.Run("owner match", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		ok, err := NewPostRepo(mt.DB).DeleteOwned(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
		require.NoError(mt, err)
		assert.True(mt, ok)
	})

	mt.Run("no match", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		ok, err := NewPostRepo(mt.DB).DeleteOwned(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
		require.NoError(mt, err)
		assert.False(mt, ok)
	})
}

func TestPostRepo_LikeUnlike(t *testing.T) {
	mt := newMock(t)
	pid, uid := primitive.NewObjectID(), primitive.NewObjectID()

	mt.Run("like", func(mt *mtest.T) {
		stored := models.Post{ID: pid, Likes: []models.Like{{User: uid}}}
		mt.AddMockResponses(findAndModifyReply(toDoc(mt, stored)))

		p, err := NewPostRepo(mt.DB).Like(context.Background(), pid, uid)
		require.NoError(mt, err)
		assert.True(mt, p.LikedBy(uid))
	})

	mt.Run("like when already liked", func(mt *mtest.T) {
		mt.AddMockResponses(noMatchReply())
		_, err := NewPostRepo(mt.DB).Like(context.Background(), pid, uid)
		assert.ErrorIs(mt, err, utils.ErrNotFound)
	})

	mt.Run("unlike", func(mt *mtest.T) {
		stored := models.Post{ID: pid, Likes: []models.Like{}}
		mt.AddMockResponses(findAndModifyReply(toDoc(mt, stored)))

		p, err := NewPostRepo(mt.DB).Unlike(context.Background(), pid, uid)
		require.NoError(mt, err)
		assert.False(mt, p.LikedBy(uid))
	})
}

func TestPostRepo_Comments(t *testing.T) {
	mt := newMock(t)
	pid, uid := primitive.NewObjectID(), primitive.NewObjectID()

	mt.Run("push", func(mt *mtest.T) {
		c := models.Comment{ID: primitive.NewObjectID(), User: uid, Text: "nice"}
		stored := models.Post{ID: pid, Comments: []models.Comment{c}}
		mt.AddMockResponses(findAndModifyReply(toDoc(mt, stored)))

		p, err := NewPostRepo(mt.DB).PushComment(context.Background(), pid, c)
		require.NoError(mt, err)
		_, ok := p.FindComment(c.ID)
		assert.True(mt, ok)
	})

	mt.Run("pull by non-owner matches nothing", func(mt *mtest.T) {
		mt.AddMockResponses(noMatchReply())
		_, err := NewPostRepo(mt.DB).PullComment(context.Background(), pid, primitive.NewObjectID(), uid)
		assert.ErrorIs(mt, err, utils.ErrNotFound)
	})
}

func TestPostRepo_UserCleanup(t *testing.T) {
	mt := newMock(t)
	uid := primitive.NewObjectID()

	mt.Run("delete by user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}))
		n, err := NewPostRepo(mt.DB).DeleteByUser(context.Background(), uid)
		require.NoError(mt, err)
		assert.EqualValues(mt, 3, n)
	})

	mt.Run("pull activity", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 2},
			bson.E{Key: "nModified", Value: 2},
		))
		n, err := NewPostRepo(mt.DB).PullUserActivity(context.Background(), uid)
		require.NoError(mt, err)
		assert.EqualValues(mt, 2, n)
	})
}
