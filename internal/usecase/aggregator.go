// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"log"
	"time"

	"github.com/naka-gawa/reporanger-dashboard/internal/domain"
	"github.com/naka-gawa/reporanger-dashboard/internal/gateway"
)

// Aggregator is the use case for building the dashboard.
// It orchestrates fetching issues and deriving every view from them.
type Aggregator struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
	now     func() time.Time
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, logger *log.Logger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
}

// Aggregate fetches the issues of owner/repo once and builds the dashboard from them.
// Nothing is retried; a fetch error is returned as is.
func (a *Aggregator) Aggregate(ctx context.Context, owner, repo string, limit int) (*domain.Dashboard, error) {
	a.logger.Println("Usecase: Starting issue aggregation...")

	issues, err := a.fetcher.FetchIssues(ctx, owner, repo, limit)
	if err != nil {
		return nil, err
	}
	a.logger.Printf("Usecase: Fetched %d issues.", len(issues))

	dashboard := Build(owner+"/"+repo, issues, a.now())

	a.logger.Println("Usecase: Aggregation complete.")
	return dashboard, nil
}

// Build derives the full dashboard from an already fetched list of issues.
func Build(repository string, issues []domain.Issue, now time.Time) *domain.Dashboard {
	stats := CalculateStats(issues)
	return &domain.Dashboard{
		Repository: repository,
		Stats:      stats,
		Categories: CategoryData(stats),
		Priorities: PriorityData(stats),
		Recent:     RecentIssues(issues),
		Reports:    Reports(issues),
		Activity:   Summarize(issues, now),
		FetchedAt:  now,
	}
}
