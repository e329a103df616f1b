package usecase

import "github.com/naka-gawa/reporanger-dashboard/internal/domain"

// Caps on the dashboard lists.
const (
	RecentIssuesLimit = 5
	ReportsLimit      = 3
)

// labelCounters maps a label name to the counter it increments.
var labelCounters = map[string]func(s *domain.Stats) *int{
	domain.LabelBug:            func(s *domain.Stats) *int { return &s.Bugs },
	domain.LabelEnhancement:    func(s *domain.Stats) *int { return &s.Features },
	domain.LabelDocumentation:  func(s *domain.Stats) *int { return &s.Docs },
	domain.LabelQuestion:       func(s *domain.Stats) *int { return &s.Questions },
	domain.LabelPriorityHigh:   func(s *domain.Stats) *int { return &s.HighPriority },
	domain.LabelPriorityMedium: func(s *domain.Stats) *int { return &s.MediumPriority },
	domain.LabelPriorityLow:    func(s *domain.Stats) *int { return &s.LowPriority },
}

// Chart colours, keyed by series.
const (
	colorBug           = "#ef4444"
	colorEnhancement   = "#3b82f6"
	colorDocumentation = "#8b5cf6"
	colorQuestion      = "#10b981"
	colorHigh          = "#dc2626"
	colorMedium        = "#f59e0b"
	colorLow           = "#10b981"
)

// CalculateStats counts the known labels across issues.
// Every matching label occurrence counts, so an issue can bump several counters.
// Unknown labels are ignored.
func CalculateStats(issues []domain.Issue) domain.Stats {
	stats := domain.Stats{Total: len(issues)}
	for _, issue := range issues {
		for _, name := range issue.Labels {
			if counter, ok := labelCounters[name]; ok {
				*counter(&stats)++
			}
		}
	}
	return stats
}

// RecentIssues returns the first issues that are not reports.
func RecentIssues(issues []domain.Issue) []domain.Issue {
	return filterIssues(issues, RecentIssuesLimit, func(i domain.Issue) bool {
		return !i.HasLabel(domain.LabelReport)
	})
}

// Reports returns the first weekly intelligence reports.
func Reports(issues []domain.Issue) []domain.Issue {
	return filterIssues(issues, ReportsLimit, func(i domain.Issue) bool {
		return i.HasLabel(domain.LabelReport)
	})
}

func filterIssues(issues []domain.Issue, limit int, keep func(domain.Issue) bool) []domain.Issue {
	out := make([]domain.Issue, 0, limit)
	for _, issue := range issues {
		if len(out) == limit {
			break
		}
		if keep(issue) {
			out = append(out, issue)
		}
	}
	return out
}

// CategoryData returns the category pie series without empty categories.
func CategoryData(s domain.Stats) []domain.ChartSlice {
	return nonZero([]domain.ChartSlice{
		{Name: "Bugs", Value: s.Bugs, Color: colorBug},
		{Name: "Features", Value: s.Features, Color: colorEnhancement},
		{Name: "Docs", Value: s.Docs, Color: colorDocumentation},
		{Name: "Questions", Value: s.Questions, Color: colorQuestion},
	})
}

// PriorityData returns the priority bar series without empty priorities.
func PriorityData(s domain.Stats) []domain.ChartSlice {
	return nonZero([]domain.ChartSlice{
		{Name: "High", Value: s.HighPriority, Color: colorHigh},
		{Name: "Medium", Value: s.MediumPriority, Color: colorMedium},
		{Name: "Low", Value: s.LowPriority, Color: colorLow},
	})
}

func nonZero(slices []domain.ChartSlice) []domain.ChartSlice {
	out := make([]domain.ChartSlice, 0, len(slices))
	for _, s := range slices {
		if s.Value > 0 {
			out = append(out, s)
		}
	}
	return out
}
