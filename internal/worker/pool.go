package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/richland-auto/inventory-api/internal/infrastructure/mail"
	"github.com/richland-auto/inventory-api/pkg/logger"
)

const (
	dlqPrefix   = "dlq:"
	maxAttempts = 3

	alertSubject = "[Inventory System] Low Stock Alert"
)

// DLQEntry wraps a job that exhausted its retries, parked for manual
// inspection under dlq:jobs:alerts.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // ISO 8601
	Attempts      int             `json:"attempts"`
}

// AlertPool consumes the alert queue and sends the emails.
type AlertPool struct {
	rdb        *redis.Client
	mailer     *mail.Mailer
	recipients []string
	log        *logger.Logger
}

// NewAlertPool builds the pool.
func NewAlertPool(rdb *redis.Client, mailer *mail.Mailer, recipients []string, log *logger.Logger) *AlertPool {
	return &AlertPool{rdb: rdb, mailer: mailer, recipients: recipients, log: log}
}

// Start launches numWorkers goroutines consuming the alert queue. They run
// until ctx is cancelled.
func (p *AlertPool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.runWorker(ctx, i)
	}
	p.log.Info().Int("workers", numWorkers).Msg("alert worker pool started")
}

func (p *AlertPool) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			p.log.Info().Int("worker", id).Msg("alert worker shutting down")
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, QueueAlerts).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			p.processJob(ctx, result[1])
		}
	}
}

func (p *AlertPool) processJob(ctx context.Context, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		p.log.Error().Err(err).Msg("unmarshal alert job")
		return
	}

	switch job.Type {
	case jobTypeLowStock:
		if err := p.sendLowStockAlert(job.Payload); err != nil {
			p.retryOrBury(ctx, job, err)
		}
	default:
		p.log.Warn().Str("type", job.Type).Msg("unknown alert job type")
	}
}

func (p *AlertPool) sendLowStockAlert(payload json.RawMessage) error {
	var alert LowStockAlert
	if err := json.Unmarshal(payload, &alert); err != nil {
		return fmt.Errorf("unmarshal low stock payload: %w", err)
	}

	if err := p.mailer.Send(p.recipients, alertSubject, lowStockBody(alert)); err != nil {
		return fmt.Errorf("send low stock alert for %s: %w", alert.SKU, err)
	}
	p.log.Info().Str("sku", alert.SKU).Int64("quantity", alert.Quantity).Msg("low stock alert sent")
	return nil
}

func lowStockBody(a LowStockAlert) string {
	return fmt.Sprintf(
		"Stock for %s (%s) has fallen to or below its reorder level.\n\n"+
			"  On hand:       %d\n"+
			"  Reorder level: %d\n\n"+
			"Please restock soon.\n",
		a.Name, a.SKU, a.Quantity, a.ReorderLevel,
	)
}

// retryOrBury requeues a failed job until maxAttempts, then parks it in the
// dead letter queue.
func (p *AlertPool) retryOrBury(ctx context.Context, job Job, cause error) {
	job.Attempts++
	if job.Attempts < maxAttempts {
		if encoded, err := json.Marshal(job); err == nil {
			if err := p.rdb.LPush(ctx, QueueAlerts, encoded).Err(); err == nil {
				p.log.Warn().Err(cause).Int("attempts", job.Attempts).Msg("alert send failed, requeued")
				return
			}
		}
	}

	entry := DLQEntry{
		OriginalQueue: QueueAlerts,
		JobType:       job.Type,
		Payload:       job.Payload,
		Reason:        cause.Error(),
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      job.Attempts,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		p.log.Error().Err(err).Msg("dlq: marshal entry")
		return
	}
	if err := p.rdb.LPush(ctx, dlqPrefix+QueueAlerts, data).Err(); err != nil {
		p.log.Error().Err(err).Msg("dlq: push entry")
		return
	}
	p.log.Warn().Err(cause).Int("attempts", job.Attempts).Msg("alert job moved to dead letter queue")
}
