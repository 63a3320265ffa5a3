package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/erindhoxha/mern-stack-site/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const PostEventsChannel = "posts:events"

// EventPublisher fans post activity out to stream subscribers. Best effort.
type EventPublisher interface {
	Publish(ctx context.Context, ev models.PostEvent)
}

type NopEventPublisher struct{}

func (NopEventPublisher) Publish(context.Context, models.PostEvent) {}

type redisEventPublisher struct {
	rdb     *redis.Client
	channel string
	log     *logrus.Logger
}

func NewRedisEventPublisher(rdb *redis.Client, log *logrus.Logger) EventPublisher {
	return &redisEventPublisher{rdb: rdb, channel: PostEventsChannel, log: log}
}

func (p *redisEventPublisher) Publish(ctx context.Context, ev models.PostEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := p.rdb.Publish(ctx, p.channel, b).Err(); err != nil {
		p.log.WithError(err).WithField("type", ev.Type).Warn("post event publish failed")
	}
}

func postEvent(typ models.PostEventType, p *models.Post, userID string) models.PostEvent {
	return models.PostEvent{
		Type:     typ,
		PostID:   p.ID.Hex(),
		UserID:   userID,
		Likes:    len(p.Likes),
		Comments: len(p.Comments),
		At:       time.Now().UTC(),
	}
}
