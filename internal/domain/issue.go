// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// Label names the triage workflow attaches to issues.
const (
	LabelBug            = "bug"
	LabelEnhancement    = "enhancement"
	LabelDocumentation  = "documentation"
	LabelQuestion       = "question"
	LabelPriorityHigh   = "priority: high"
	LabelPriorityMedium = "priority: medium"
	LabelPriorityLow    = "priority: low"

	// LabelReport marks the weekly intelligence reports generated by the workflow.
	LabelReport = "report"
)

// Issue is a GitHub issue as returned by the API.
// Only the fields the dashboard reads are kept.
type Issue struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	Labels    []string  `json:"labels"`
	CreatedAt time.Time `json:"created_at"`
	HTMLURL   string    `json:"html_url"`
	Comments  int       `json:"comments"`
}

// HasLabel reports whether the issue carries a label with exactly this name.
func (i Issue) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if l == name {
			return true
		}
	}
	return false
}
