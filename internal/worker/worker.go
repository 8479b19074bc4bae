package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"pos-service/internal/broker"
	"pos-service/internal/export"
	"pos-service/internal/models"
	"pos-service/internal/util"

	"go.uber.org/zap"
)

// ReceiptWorker consumes SaleRecorded events and writes one text receipt per
// sale into a directory.
type ReceiptWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	dir          string
	storeName    string
	logger       *zap.Logger
}

// NewReceiptWorker creates a new receipt worker
func NewReceiptWorker(consumer *broker.Consumer, dir, storeName string) *ReceiptWorker {
	w := &ReceiptWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		dir:          dir,
		storeName:    storeName,
		logger:       util.GetLogger(),
	}
	w.eventHandler.OnSaleRecorded(w.WriteReceipt)
	return w
}

// Start consumes until ctx is cancelled
func (w *ReceiptWorker) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create receipt dir: %w", err)
	}
	w.logger.Info("Starting receipt worker", zap.String("dir", w.dir))
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *ReceiptWorker) Stop() error {
	w.logger.Info("Stopping receipt worker")
	return w.consumer.Close()
}

// ReceiptPath is where the receipt of saleID is written.
func (w *ReceiptWorker) ReceiptPath(saleID int64) string {
	return filepath.Join(w.dir, fmt.Sprintf("sale-%d.txt", saleID))
}

// WriteReceipt renders the event to a file. Redelivered events overwrite the
// same file.
func (w *ReceiptWorker) WriteReceipt(_ context.Context, event *models.SaleRecordedEvent) error {
	path := w.ReceiptPath(event.SaleID)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create receipt: %w", err)
	}

	if err := export.RenderReceipt(f, export.ReceiptFromEvent(w.storeName, event)); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to render receipt: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move receipt into place: %w", err)
	}

	util.ReceiptsWrittenTotal.Inc()
	w.logger.Info("Receipt written",
		zap.Int64("sale_id", event.SaleID),
		zap.String("path", path))
	return nil
}
