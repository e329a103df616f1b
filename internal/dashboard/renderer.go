package dashboard

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/naka-gawa/reporanger-dashboard/internal/domain"
)

// DefaultWebhookPath is where the external workflow receives GitHub issue events.
// It is shown on the explainer page only.
const DefaultWebhookPath = "POST /api/v1/executions/webhook/dev/repo-ranger-listener"

// maxListLabels is how many labels a recent issue shows.
const maxListLabels = 3

//go:embed templates/*.html
var templateFS embed.FS

// Renderer handles rendering responses to HTTP clients.
type Renderer interface {
	RenderDashboard(w io.Writer, d domain.Dashboard) error
	RenderLoading(w io.Writer) error
	RenderHowItWorks(w io.Writer) error
	RenderJSON(w io.Writer, v interface{}) error
	RenderHealth(w io.Writer) error
}

type headData struct {
	Title   string
	Refresh bool
}

var templateFuncs = template.FuncMap{
	"page": func(title string, refresh bool) headData {
		return headData{Title: title, Refresh: refresh}
	},
	"ago": func(t time.Time) string {
		return humanize.Time(t)
	},
	"firstLabels": func(labels []string) []string {
		if len(labels) > maxListLabels {
			return labels[:maxListLabels]
		}
		return labels
	},
}

var pages = map[string]*template.Template{
	"dashboard.html":    parsePage("dashboard.html"),
	"loading.html":      parsePage("loading.html"),
	"how_it_works.html": parsePage("how_it_works.html"),
}

func parsePage(name string) *template.Template {
	return template.Must(template.New(name).Funcs(templateFuncs).
		ParseFS(templateFS, "templates/layout.html", "templates/"+name))
}

// statCard is one of the headline counters.
type statCard struct {
	Label string
	Value int
	Color string
}

type dashboardView struct {
	Repository string
	Cards      []statCard
	Pie        []PieSegment
	Bars       []Bar
	Recent     []domain.Issue
	Reports    []domain.Issue
	Activity   domain.Activity
}

type workflowStep struct {
	Title   string
	Summary string
	Code    string
	Points  []string
}

type howItWorksView struct {
	Steps []workflowStep
}

// HTMLRenderer implements Renderer with embedded html/template pages.
type HTMLRenderer struct {
	webhookPath string
}

// NewHTMLRenderer creates a new HTML renderer.
// webhookPath is displayed on the explainer page; empty means DefaultWebhookPath.
func NewHTMLRenderer(webhookPath string) *HTMLRenderer {
	if webhookPath == "" {
		webhookPath = DefaultWebhookPath
	}
	return &HTMLRenderer{webhookPath: webhookPath}
}

func (r *HTMLRenderer) RenderDashboard(w io.Writer, d domain.Dashboard) error {
	view := dashboardView{
		Repository: d.Repository,
		Cards: []statCard{
			{Label: "Total Issues", Value: d.Stats.Total, Color: "blue"},
			{Label: "High Priority", Value: d.Stats.HighPriority, Color: "red"},
			{Label: "Bugs Detected", Value: d.Stats.Bugs, Color: "purple"},
			{Label: "Questions Answered", Value: d.Stats.Questions, Color: "green"},
		},
		Pie:      pieSegments(d.Categories),
		Bars:     bars(d.Priorities),
		Recent:   d.Recent,
		Reports:  d.Reports,
		Activity: d.Activity,
	}
	return execute(w, "dashboard.html", view)
}

func (r *HTMLRenderer) RenderLoading(w io.Writer) error {
	return execute(w, "loading.html", nil)
}

func (r *HTMLRenderer) RenderHowItWorks(w io.Writer) error {
	view := howItWorksView{Steps: []workflowStep{
		{
			Title:   "1. Issue Created",
			Summary: "When a user creates an issue in your GitHub repository, a webhook immediately triggers RepoRanger's workflow.",
			Code:    r.webhookPath,
		},
		{
			Title:   "2. AI Analysis",
			Summary: "Groq's Llama 3.3 70B model analyzes the issue content and provides:",
			Points: []string{
				"Category: bug, feature, documentation, or question",
				"Priority: high, medium, or low urgency",
				"Affected Files: likely code locations",
				"Duplicate Detection: similar existing issues",
				"Next Steps: suggested actions",
			},
		},
		{
			Title:   "3. Automated Actions",
			Summary: "RepoRanger takes immediate action:",
			Points: []string{
				"Posts Comment: adds a detailed analysis comment with context and suggestions",
				"Adds Labels: automatically tags with category and priority labels",
			},
		},
		{
			Title:   "4. Weekly Intelligence",
			Summary: "Every Monday at 9 AM, RepoRanger generates a strategic report:",
			Points: []string{
				"Analyzes all issues from the past week",
				"Identifies trends and patterns",
				"Highlights critical issues needing attention",
				"Provides strategic recommendations",
			},
		},
	}}
	return execute(w, "how_it_works.html", view)
}

func (r *HTMLRenderer) RenderJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *HTMLRenderer) RenderHealth(w io.Writer) error {
	_, err := w.Write([]byte(`{"status":"ok"}`))
	return err
}

// execute renders a page fully before writing it, so a template error never leaves half a page behind.
func execute(w io.Writer, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := pages[name].ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
