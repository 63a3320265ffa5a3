package workers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/erindhoxha/mern-stack-site/internal/models"
	pgrepo "github.com/erindhoxha/mern-stack-site/internal/repositories/postgres"
	"github.com/erindhoxha/mern-stack-site/internal/services"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// AuditWorkerPool drains the audit stream into Postgres. A batch is acked only
// after it is stored; a failed batch stays in the consumer's pending list and
// is read again on its next poll.
type AuditWorkerPool struct {
	Redis      *redis.Client
	Audits     pgrepo.AuditRepository
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
	BatchSize      int64
	Block          time.Duration
}

func (p *AuditWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Audits == nil {
		return errors.New("AuditWorkerPool missing dependency: Redis/Audits must be set")
	}
	p.defaults()

	err := p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	p.Logger.WithFields(logrus.Fields{
		"stream":  p.Stream,
		"workers": p.NumWorkers,
	}).Info("audit workers started")
	return nil
}

func (p *AuditWorkerPool) defaults() {
	if p.Stream == "" {
		p.Stream = services.AuditStream
	}
	if p.Group == "" {
		p.Group = "audit-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 2
	}
	if p.BatchSize <= 0 {
		p.BatchSize = 50
	}
	if p.Block == 0 {
		p.Block = 5 * time.Second
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}
}

func (p *AuditWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if _, err := p.poll(ctx, consumer, p.Block); err != nil {
			if ctx.Err() != nil {
				return
			}
			p.Logger.WithError(err).WithField("consumer", consumer).Warn("audit poll failed")
			time.Sleep(500 * time.Millisecond)
		}
	}
}

// poll stores one batch and returns the number of events stored. Entries this
// consumer already read but failed to store are retried before new ones.
func (p *AuditWorkerPool) poll(ctx context.Context, consumer string, block time.Duration) (int, error) {
	n, retried, err := p.read(ctx, consumer, "0", -1)
	if err != nil || retried > 0 {
		return n, err
	}
	n, _, err = p.read(ctx, consumer, ">", block)
	return n, err
}

// read fetches from the group starting at id and stores what it gets. It
// returns the events stored and the entries read.
func (p *AuditWorkerPool) read(ctx context.Context, consumer, id string, block time.Duration) (int, int, error) {
	res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    p.Group,
		Consumer: consumer,
		Streams:  []string{p.Stream, id},
		Count:    p.BatchSize,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}

	stored, seen := 0, 0
	for _, stream := range res {
		seen += len(stream.Messages)
		n, err := p.store(ctx, stream.Messages)
		if err != nil {
			return stored, seen, err
		}
		stored += n
	}
	return stored, seen, nil
}

func (p *AuditWorkerPool) store(ctx context.Context, msgs []redis.XMessage) (int, error) {
	if len(msgs) == 0 {
		return 0, nil
	}

	events := make([]models.AuditEvent, 0, len(msgs))
	ids := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		ids = append(ids, msg.ID)
		ev, ok := decodeAuditMessage(msg)
		if !ok {
			// malformed entries are acked and dropped
			p.Logger.WithField("redis_id", msg.ID).Warn("dropping malformed audit message")
			continue
		}
		events = append(events, ev)
	}

	if err := p.Audits.InsertMany(ctx, events); err != nil {
		return 0, err
	}
	if err := p.Redis.XAck(ctx, p.Stream, p.Group, ids...).Err(); err != nil {
		p.Logger.WithError(err).Warn("audit ack failed")
	}
	return len(events), nil
}

func decodeAuditMessage(msg redis.XMessage) (models.AuditEvent, bool) {
	getStr := func(k string) string {
		v, ok := msg.Values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	action := getStr("action")
	if action == "" {
		return models.AuditEvent{}, false
	}

	at, err := time.Parse(time.RFC3339Nano, getStr("at"))
	if err != nil {
		at = time.Now().UTC()
	}

	var fields pq.StringArray
	if f := getStr("fields"); f != "" {
		fields = strings.Split(f, ",")
	}

	md := getStr("metadata")
	if md == "" || !json.Valid([]byte(md)) {
		md = "{}"
	}

	return models.AuditEvent{
		ID:         uuid.NewString(),
		UserID:     getStr("user_id"),
		Action:     action,
		Resource:   getStr("resource"),
		ResourceID: getStr("resource_id"),
		Fields:     fields,
		Metadata:   datatypes.JSON(md),
		CreatedAt:  at,
	}, true
}
