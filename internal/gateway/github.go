// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v84/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/reporanger-dashboard/internal/domain"
)

// Supported backends for fetching issues.
const (
	APIREST    = "rest"
	APIGraphQL = "graphql"
)

// DefaultBaseURL is the public GitHub REST endpoint.
const DefaultBaseURL = "https://api.github.com/"

// mediaType is the JSON media type requested from the REST API.
const mediaType = "application/vnd.github+json"

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	// FetchIssues returns up to limit issues of owner/repo, open and closed,
	// in the order the API returns them.
	FetchIssues(ctx context.Context, owner, repo string, limit int) ([]domain.Issue, error)
}

// Options configures how the gateway talks to GitHub.
type Options struct {
	// BaseURL is the REST API root. Empty means DefaultBaseURL.
	BaseURL string
	// Token is optional for REST and required for GraphQL.
	Token string
	// API selects the backend, APIREST or APIGraphQL. Empty means APIREST.
	API string
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	api           string
	logger        *log.Logger
}

// issuesQuery fetches the newest issues of a repository with the fields the dashboard reads.
type issuesQuery struct {
	Repository struct {
		Issues struct {
			Nodes []struct {
				Number    int
				Title     string
				State     string
				URL       string
				CreatedAt githubv4.DateTime
				Comments  struct {
					TotalCount int
				}
				Labels struct {
					Nodes []struct {
						Name string
					}
				} `graphql:"labels(first: 20)"`
			}
		} `graphql:"issues(first: $first, orderBy: {field: CREATED_AT, direction: DESC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// mediaTypeTransport sets the Accept header on every outgoing request.
type mediaTypeTransport struct {
	base http.RoundTripper
}

func (t *mediaTypeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("Accept", mediaType)
	return t.base.RoundTrip(r)
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// Requests are unauthenticated unless opts.Token is set.
func NewGitHubGateway(opts Options, logger *log.Logger) (Fetcher, error) {
	api := opts.API
	if api == "" {
		api = APIREST
	}
	if api != APIREST && api != APIGraphQL {
		return nil, fmt.Errorf("unsupported api %q", api)
	}
	if api == APIGraphQL && opts.Token == "" {
		return nil, errors.New("the graphql api requires a GitHub token")
	}

	// A zero sleep limit turns the waiter into a detector: a secondary rate
	// limit is logged and handed back to the caller, never slept on and retried.
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil,
		github_ratelimit.WithSingleSleepLimit(0, func(cbCtx *github_ratelimit.CallbackContext) {
			logger.Printf("Secondary rate limit hit for %s (resets at %v), not retrying.",
				cbCtx.Request.URL.Path, cbCtx.SleepUntil)
		}))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	var transport http.RoundTripper = rateLimitWaiter
	if opts.Token != "" {
		transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}),
		}
	}
	httpClient := &http.Client{Transport: transport}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	restClient, err := newRESTClient(httpClient, baseURL)
	if err != nil {
		return nil, err
	}

	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: githubv4.NewEnterpriseClient(graphqlURL(baseURL), httpClient),
		api:           api,
		logger:        logger,
	}, nil
}

// newRESTClient builds a go-github client rooted at baseURL that asks for the GitHub JSON media type.
func newRESTClient(httpClient *http.Client, baseURL string) (*github.Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url %q: %w", baseURL, err)
	}

	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	client := github.NewClient(&http.Client{
		Transport: &mediaTypeTransport{base: base},
		Timeout:   httpClient.Timeout,
	})
	client.BaseURL = u
	return client, nil
}

// graphqlURL derives the GraphQL endpoint from a REST base URL.
// GitHub Enterprise serves REST under /api/v3 and GraphQL under /api/graphql.
func graphqlURL(baseURL string) string {
	root := strings.TrimSuffix(baseURL, "/")
	root = strings.TrimSuffix(root, "/v3")
	return root + "/graphql"
}

func (g *GitHubGateway) FetchIssues(ctx context.Context, owner, repo string, limit int) ([]domain.Issue, error) {
	if g.api == APIGraphQL {
		return g.fetchIssuesGraphQL(ctx, owner, repo, limit)
	}
	return g.fetchIssuesREST(ctx, owner, repo, limit)
}

func (g *GitHubGateway) fetchIssuesREST(ctx context.Context, owner, repo string, limit int) ([]domain.Issue, error) {
	g.logger.Printf("Fetching issues of %s/%s using REST API...", owner, repo)
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: limit},
	}
	ghIssues, _, err := g.restClient.Issues.ListByRepo(ctx, owner, repo, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues with REST API: %w", err)
	}

	issues := make([]domain.Issue, 0, len(ghIssues))
	for _, ghIssue := range ghIssues {
		labels := make([]string, 0, len(ghIssue.Labels))
		for _, l := range ghIssue.Labels {
			labels = append(labels, l.GetName())
		}
		issues = append(issues, domain.Issue{
			Number:    ghIssue.GetNumber(),
			Title:     ghIssue.GetTitle(),
			State:     ghIssue.GetState(),
			Labels:    labels,
			CreatedAt: ghIssue.GetCreatedAt().Time,
			HTMLURL:   ghIssue.GetHTMLURL(),
			Comments:  ghIssue.GetComments(),
		})
	}
	g.logger.Printf("Completed fetching %d issues.", len(issues))
	return issues, nil
}

func (g *GitHubGateway) fetchIssuesGraphQL(ctx context.Context, owner, repo string, limit int) ([]domain.Issue, error) {
	g.logger.Printf("Fetching issues of %s/%s using GraphQL API...", owner, repo)
	variables := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(repo),
		"first": githubv4.Int(limit),
	}

	var q issuesQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for issues: %w", err)
	}

	nodes := q.Repository.Issues.Nodes
	issues := make([]domain.Issue, 0, len(nodes))
	for _, n := range nodes {
		labels := make([]string, 0, len(n.Labels.Nodes))
		for _, l := range n.Labels.Nodes {
			labels = append(labels, l.Name)
		}
		issues = append(issues, domain.Issue{
			Number:    n.Number,
			Title:     n.Title,
			State:     strings.ToLower(n.State), // GraphQL uses OPEN/CLOSED.
			Labels:    labels,
			CreatedAt: n.CreatedAt.Time,
			HTMLURL:   n.URL,
			Comments:  n.Comments.TotalCount,
		})
	}
	g.logger.Printf("Completed fetching %d issues.", len(issues))
	return issues, nil
}
