package usecase

import (
	"time"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/reporanger-dashboard/internal/domain"
)

// Summarize computes lifecycle and discussion figures for issues as of now.
// An empty input yields a zero Activity.
func Summarize(issues []domain.Issue, now time.Time) domain.Activity {
	var activity domain.Activity
	if len(issues) == 0 {
		return activity
	}

	comments := make(stats.Float64Data, 0, len(issues))
	var ages stats.Float64Data
	for _, issue := range issues {
		comments = append(comments, float64(issue.Comments))
		switch issue.State {
		case "closed":
			activity.Closed++
		default:
			activity.Open++
			ages = append(ages, now.Sub(issue.CreatedAt).Hours())
		}
	}

	// stats only fails on empty input.
	activity.MeanComments, _ = comments.Mean()
	activity.MedianComments, _ = comments.Median()
	if len(ages) > 0 {
		activity.MedianAgeHours, _ = ages.Median()
	}
	return activity
}
