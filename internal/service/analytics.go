package service

import (
	"context"
	"time"

	"github.com/adocavo/adocavo-api/internal/repository"
	"golang.org/x/sync/errgroup"
)

type AnalyticsService struct {
	repository *repository.RequestLogRepository
}

func NewAnalyticsService(repo *repository.RequestLogRepository) *AnalyticsService {
	return &AnalyticsService{repository: repo}
}

// Holds analytics summary data
type AnalyticsSummary struct {
	TotalRequests   int64                    `json:"total_requests"`
	AvgResponseTime float64                  `json:"avg_response_time_ms"`
	ErrorRate       float64                  `json:"error_rate"`
	RateLimitedRate float64                  `json:"rate_limited_rate"`
	TopEndpoints    []map[string]interface{} `json:"top_endpoints"`
}

// Retrieves analytics summary for a time range
func (s *AnalyticsService) GetSummary(ctx context.Context, from, to time.Time) (*AnalyticsSummary, error) {
	summary := &AnalyticsSummary{}

	totalRequests, err := s.repository.CountByTimeRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary.TotalRequests = totalRequests

	if totalRequests == 0 {
		return summary, nil
	}

	// Independent aggregates; fan out
	var avgResponseTime float64
	var clientErrors, serverErrors, rateLimited int64
	var topEndpoints []map[string]interface{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		avgResponseTime, err = s.repository.GetAverageResponseTime(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		clientErrors, err = s.repository.CountByStatusCodeRange(gctx, 400, 499, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		serverErrors, err = s.repository.CountByStatusCodeRange(gctx, 500, 599, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		rateLimited, err = s.repository.CountByStatusCodeRange(gctx, 429, 429, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		topEndpoints, err = s.repository.GetTopEndpoints(gctx, from, to, 10)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary.AvgResponseTime = avgResponseTime
	summary.ErrorRate = (float64(clientErrors+serverErrors) / float64(totalRequests)) * 100
	summary.RateLimitedRate = (float64(rateLimited) / float64(totalRequests)) * 100
	summary.TopEndpoints = topEndpoints

	return summary, nil
}

// Deletes logs older than specified retention period
func (s *AnalyticsService) CleanupOldLogs(ctx context.Context, retentionDays int) (int64, error) {
	cutOffDate := time.Now().AddDate(0, 0, -retentionDays)
	return s.repository.DeleteOldLogs(ctx, cutOffDate)
}
