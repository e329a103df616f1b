// Package service keeps the dashboard state served over HTTP.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/naka-gawa/reporanger-dashboard/internal/domain"
)

// Builder builds a dashboard from one fetch. usecase.Aggregator satisfies it.
type Builder interface {
	Aggregate(ctx context.Context, owner, repo string, limit int) (*domain.Dashboard, error)
}

// Logger interface for logging operations.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Target is the repository the dashboard reports on.
type Target struct {
	Owner string
	Repo  string
	Limit int
}

// DashboardService holds the most recently built dashboard.
//
// Refreshes are not de-duplicated: concurrent refreshes each fetch,
// and whichever completes last wins.
type DashboardService struct {
	builder Builder
	target  Target
	logger  Logger

	mu      sync.RWMutex
	current domain.Dashboard
	loaded  bool
}

// NewDashboardService creates a service with an empty dashboard.
func NewDashboardService(builder Builder, target Target, logger Logger) *DashboardService {
	return &DashboardService{
		builder: builder,
		target:  target,
		logger:  logger,
		current: emptyDashboard(target),
	}
}

func emptyDashboard(target Target) domain.Dashboard {
	return domain.Dashboard{
		Repository: target.Owner + "/" + target.Repo,
		Categories: []domain.ChartSlice{},
		Priorities: []domain.ChartSlice{},
		Recent:     []domain.Issue{},
		Reports:    []domain.Issue{},
	}
}

// Refresh fetches once and replaces the dashboard on success.
// On failure the error is logged and returned, and the previous dashboard is kept.
// Either way the service counts as loaded afterwards.
func (s *DashboardService) Refresh(ctx context.Context) error {
	dashboard, err := s.builder.Aggregate(ctx, s.target.Owner, s.target.Repo, s.target.Limit)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	if err != nil {
		s.logger.Printf("Error fetching issues: %v", err)
		return err
	}
	s.current = *dashboard
	return nil
}

// Current returns the latest dashboard and whether a fetch has completed yet.
func (s *DashboardService) Current() (domain.Dashboard, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.loaded
}

// Run refreshes once, then every interval until ctx is done.
// A non-positive interval disables periodic refreshes.
// Fetch errors are logged, never returned.
func (s *DashboardService) Run(ctx context.Context, interval time.Duration) error {
	_ = s.Refresh(ctx)

	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	s.logger.Printf("Refreshing dashboard every %v", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_ = s.Refresh(ctx)
		}
	}
}
