package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/teamboardhq/teamboard/backend/internal/config"
	"github.com/teamboardhq/teamboard/backend/pkg/logger"
)

const (
	TaskTypeInvitationMail = "mail:invitation"
)

// InvitationMailTask carries everything the mail worker needs to render
// and deliver an invitation email.
type InvitationMailTask struct {
	InvitationID string `json:"invitation_id"`
	ProjectID    uint   `json:"project_id"`
	ProjectName  string `json:"project_name"`
	Email        string `json:"email"`
	InviterName  string `json:"inviter_name"`
}

// MailQueue defines the interface for invitation mail delivery.
type MailQueue interface {
	// Enqueue adds a mail task to the queue
	Enqueue(task *InvitationMailTask) error
	// IsAsync returns true if the queue processes tasks asynchronously
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

var (
	globalMailQueue MailQueue
	mailQueueOnce   sync.Once
)

// InitMailQueue initializes the global mail queue based on config:
// Redis-backed when enabled, in-process fallback otherwise.
func InitMailQueue(cfg *config.Config) MailQueue {
	mailQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncMailQueue(&cfg.Redis)
			if err != nil {
				logger.Infof("[MailQueue] Redis unavailable, falling back to sync mode: %v", err)
				globalMailQueue = NewSyncMailQueue()
			} else {
				logger.Infof("[MailQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalMailQueue = queue
			}
		} else {
			logger.Infof("[MailQueue] Sync queue initialized (Redis disabled)")
			globalMailQueue = NewSyncMailQueue()
		}
	})
	return globalMailQueue
}

// GetMailQueue returns the global mail queue instance.
func GetMailQueue() MailQueue {
	return globalMailQueue
}

// AsyncMailQueue implements MailQueue using asynq (Redis-based).
type AsyncMailQueue struct {
	client *asynq.Client
}

func NewAsyncMailQueue(cfg *config.RedisConfig) (*AsyncMailQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Verify the Redis connection before committing to async mode
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncMailQueue{client: client}, nil
}

func (q *AsyncMailQueue) Enqueue(task *InvitationMailTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeInvitationMail, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Infof("[MailQueue] Task enqueued: id=%s, queue=%s", info.ID, info.Queue)
	return nil
}

func (q *AsyncMailQueue) IsAsync() bool {
	return true
}

func (q *AsyncMailQueue) Close() error {
	return q.client.Close()
}

// SyncMailQueue implements MailQueue with in-process delivery (no Redis).
type SyncMailQueue struct {
	processor func(context.Context, *InvitationMailTask) error
}

func NewSyncMailQueue() *SyncMailQueue {
	return &SyncMailQueue{}
}

// SetProcessor sets the function that delivers mail tasks.
func (q *SyncMailQueue) SetProcessor(processor func(context.Context, *InvitationMailTask) error) {
	q.processor = processor
}

// Enqueue delivers the task in a goroutine so the invite request does
// not block on SMTP.
func (q *SyncMailQueue) Enqueue(task *InvitationMailTask) error {
	if q.processor == nil {
		logger.Infof("[SyncMailQueue] Warning: no processor set, task will be dropped")
		return nil
	}

	go func() {
		ctx := context.Background()
		if err := q.processor(ctx, task); err != nil {
			logger.Infof("[SyncMailQueue] Task processing failed: %v", err)
		}
	}()

	return nil
}

func (q *SyncMailQueue) IsAsync() bool {
	return false
}

func (q *SyncMailQueue) Close() error {
	return nil
}
