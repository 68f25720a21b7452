// Package worker runs the async low-stock alert pipeline. The ledger
// enqueues a notification into Redis after a stock-out commit leaves a
// product at or below its reorder level; a small worker pool consumes the
// queue and emails the configured recipients. A request never waits on SMTP.
package worker

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/richland-auto/inventory-api/internal/application/ledger"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/pkg/logger"
)

const (
	// QueueAlerts is the Redis list the dispatcher pushes to and the pool
	// pops from.
	QueueAlerts = "jobs:alerts"

	jobTypeLowStock = "low_stock"
)

// Job is the generic envelope for queued tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// LowStockAlert is the payload for a low stock notification.
type LowStockAlert struct {
	ProductID    string `json:"product_id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Quantity     int64  `json:"quantity"`
	ReorderLevel int64  `json:"reorder_level"`
}

// Ensure Dispatcher satisfies the ledger's notification port.
var _ ledger.AlertNotifier = (*Dispatcher)(nil)

// Dispatcher enqueues alert jobs into Redis. Failures are logged and
// swallowed: a lost alert never fails the stock movement that caused it.
type Dispatcher struct {
	rdb *redis.Client
	log *logger.Logger
}

// NewDispatcher builds the dispatcher.
func NewDispatcher(rdb *redis.Client, log *logger.Logger) *Dispatcher {
	return &Dispatcher{rdb: rdb, log: log}
}

// NotifyLowStock pushes a low stock job for the product.
func (d *Dispatcher) NotifyLowStock(ctx context.Context, product *entity.Product) {
	payload, err := json.Marshal(LowStockAlert{
		ProductID:    product.ID,
		SKU:          product.SKU,
		Name:         product.Name,
		Quantity:     product.Quantity,
		ReorderLevel: product.ReorderLevel,
	})
	if err != nil {
		d.log.Error().Err(err).Str("sku", product.SKU).Msg("marshal low stock alert")
		return
	}

	encoded, err := json.Marshal(Job{Type: jobTypeLowStock, Payload: payload})
	if err != nil {
		d.log.Error().Err(err).Str("sku", product.SKU).Msg("marshal alert job")
		return
	}

	if err := d.rdb.LPush(ctx, QueueAlerts, encoded).Err(); err != nil {
		d.log.Error().Err(err).Str("sku", product.SKU).Msg("enqueue low stock alert")
		return
	}
	d.log.Debug().Str("sku", product.SKU).Int64("quantity", product.Quantity).Msg("low stock alert queued")
}
