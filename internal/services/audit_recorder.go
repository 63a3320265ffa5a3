package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const AuditStream = "audit:stream"

type AuditEntry struct {
	UserID     string
	Action     string
	Resource   string
	ResourceID string
	Fields     []string
	Metadata   map[string]any
}

// AuditRecorder is best effort: failures are logged, never returned to the request.
type AuditRecorder interface {
	Record(ctx context.Context, e AuditEntry)
}

type NopAuditRecorder struct{}

func (NopAuditRecorder) Record(context.Context, AuditEntry) {}

type streamAuditRecorder struct {
	rdb    *redis.Client
	stream string
	maxLen int64
	log    *logrus.Logger
}

func NewStreamAuditRecorder(rdb *redis.Client, log *logrus.Logger) AuditRecorder {
	return &streamAuditRecorder{rdb: rdb, stream: AuditStream, maxLen: 100000, log: log}
}

func (r *streamAuditRecorder) Record(ctx context.Context, e AuditEntry) {
	md := []byte("{}")
	if len(e.Metadata) > 0 {
		if b, err := json.Marshal(e.Metadata); err == nil {
			md = b
		}
	}

	err := r.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		MaxLen: r.maxLen,
		Approx: true,
		Values: map[string]any{
			"user_id":     e.UserID,
			"action":      e.Action,
			"resource":    e.Resource,
			"resource_id": e.ResourceID,
			"fields":      strings.Join(e.Fields, ","),
			"metadata":    string(md),
			"at":          time.Now().UTC().Format(time.RFC3339Nano),
		},
	}).Err()
	if err != nil {
		r.log.WithError(err).WithFields(logrus.Fields{
			"action":  e.Action,
			"user_id": e.UserID,
		}).Warn("audit record failed")
	}
}
