package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/adocavo/adocavo-api/internal/models"
	"github.com/adocavo/adocavo-api/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestLogWorker batches request logs into the database off the request
// path. Constructed in main and stopped on shutdown; not a package global.
type RequestLogWorker struct {
	repo    *repository.RequestLogRepository
	logger  *slog.Logger
	entries chan models.RequestLog
	done    chan struct{}
}

func NewRequestLogWorker(repo *repository.RequestLogRepository, logger *slog.Logger, bufferSize int) *RequestLogWorker {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	w := &RequestLogWorker{
		repo:    repo,
		logger:  logger,
		entries: make(chan models.RequestLog, bufferSize),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *RequestLogWorker) run() {
	const batchSize = 100

	batch := make([]models.RequestLog, 0, batchSize)
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := w.repo.CreateBatch(ctx, batch); err != nil {
			w.logger.Error("failed to insert request logs", "count", len(batch), "error", err)
		}
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-w.entries:
			batch = append(batch, entry)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-w.done:
			flush()
			return
		}
	}
}

// Stop flushes pending entries and terminates the worker.
func (w *RequestLogWorker) Stop() {
	close(w.done)
}

// Middleware records every request. The channel send never blocks; under
// backpressure entries are dropped in favor of serving traffic.
func (w *RequestLogWorker) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		var userID *uuid.UUID
		if idStr := c.GetString(ContextUserID); idStr != "" {
			if id, err := uuid.Parse(idStr); err == nil {
				userID = &id
			}
		}

		entry := models.RequestLog{
			Timestamp:      start,
			RequestID:      c.GetString(ContextRequestID),
			UserID:         userID,
			Method:         c.Request.Method,
			Path:           c.Request.URL.Path,
			StatusCode:     c.Writer.Status(),
			ResponseTimeMs: int(time.Since(start).Milliseconds()),
			IPAddress:      c.ClientIP(),
			UserAgent:      c.Request.UserAgent(),
		}

		select {
		case w.entries <- entry:
		default:
			w.logger.Warn("request log buffer full, dropping entry")
		}
	}
}
