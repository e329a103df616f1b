package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/reporanger-dashboard/internal/domain"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, api string, handler http.Handler) (*GitHubGateway, *httptest.Server) {
	server := httptest.NewServer(handler)

	restClient, err := newRESTClient(server.Client(), server.URL)
	require.NoError(t, err)

	gateway := &GitHubGateway{
		restClient:    restClient,
		graphqlClient: githubv4.NewEnterpriseClient(server.URL, server.Client()),
		api:           api,
		logger:        log.New(io.Discard, "", 0),
	}

	return gateway, server
}

func TestGitHubGateway_FetchIssues_REST(t *testing.T) {
	testCases := []struct {
		name           string
		handlerFunc    func(w http.ResponseWriter, r *http.Request)
		expected       []domain.Issue
		expectError    bool
		expectedErrMsg string
	}{
		{
			name: "happy path - converts issues in API order",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, `[
					{"number": 7, "title": "Crash on start", "state": "open", "labels": [{"name": "bug"}, {"name": "priority: high"}],
					 "created_at": "2024-05-02T10:00:00Z", "html_url": "https://github.com/o/r/issues/7", "comments": 3},
					{"number": 6, "title": "Weekly report", "state": "closed", "labels": [{"name": "report"}],
					 "created_at": "2024-05-01T09:00:00Z", "html_url": "https://github.com/o/r/issues/6", "comments": 0}
				]`)
			},
			expected: []domain.Issue{
				{
					Number: 7, Title: "Crash on start", State: "open", Labels: []string{"bug", "priority: high"},
					CreatedAt: time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC), HTMLURL: "https://github.com/o/r/issues/7", Comments: 3,
				},
				{
					Number: 6, Title: "Weekly report", State: "closed", Labels: []string{"report"},
					CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), HTMLURL: "https://github.com/o/r/issues/6", Comments: 0,
				},
			},
		},
		{
			name: "empty repository",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, `[]`)
			},
			expected: []domain.Issue{},
		},
		{
			name: "error case - GitHub API returns an error",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message": "Internal Server Error"}`)
			},
			expectError:    true,
			expectedErrMsg: "failed to list issues with REST API",
		},
		{
			name: "error case - repository not found",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"message": "Not Found"}`)
			},
			expectError:    true,
			expectedErrMsg: "failed to list issues with REST API",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gateway, server := setupTestGateway(t, APIREST, http.HandlerFunc(tc.handlerFunc))
			defer server.Close()

			issues, err := gateway.FetchIssues(context.Background(), "any-owner", "any-repo", 50)
			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, issues)
			}
		})
	}
}

func TestGitHubGateway_FetchIssues_RESTRequest(t *testing.T) {
	var gotPath, gotState, gotPerPage, gotAccept, gotAuth string
	handler := func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotState = r.URL.Query().Get("state")
		gotPerPage = r.URL.Query().Get("per_page")
		gotAccept = r.Header.Get("Accept")
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `[]`)
	}
	gateway, server := setupTestGateway(t, APIREST, http.HandlerFunc(handler))
	defer server.Close()

	_, err := gateway.FetchIssues(context.Background(), "Geff115", "repo-ranger", 50)
	require.NoError(t, err)

	assert.Equal(t, "/repos/Geff115/repo-ranger/issues", gotPath)
	assert.Equal(t, "all", gotState)
	assert.Equal(t, "50", gotPerPage)
	assert.Equal(t, "application/vnd.github+json", gotAccept)
	assert.Empty(t, gotAuth, "no credentials are sent without a token")
}

func TestGitHubGateway_FetchIssues_GraphQL(t *testing.T) {
	testCases := []struct {
		name           string
		responseBody   string
		expected       []domain.Issue
		expectError    bool
		expectedErrMsg string
	}{
		{
			name: "happy path",
			responseBody: `{"data":{"repository":{"issues":{"nodes":[
				{"number":3,"title":"Docs typo","state":"OPEN","url":"https://github.com/o/r/issues/3",
				 "createdAt":"2024-05-03T08:00:00Z","comments":{"totalCount":1},"labels":{"nodes":[{"name":"documentation"}]}}
			]}}}}`,
			expected: []domain.Issue{
				{
					Number: 3, Title: "Docs typo", State: "open", Labels: []string{"documentation"},
					CreatedAt: time.Date(2024, 5, 3, 8, 0, 0, 0, time.UTC), HTMLURL: "https://github.com/o/r/issues/3", Comments: 1,
				},
			},
		},
		{
			name:           "error case",
			responseBody:   `{"errors":[{"message":"Could not resolve to a Repository"}]}`,
			expectError:    true,
			expectedErrMsg: "failed to execute GraphQL query",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				assert.Contains(t, string(body), "repository(owner: $owner, name: $name)")
				assert.Contains(t, string(body), `"owner":"any-owner"`)

				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, tc.responseBody)
			}
			gateway, server := setupTestGateway(t, APIGraphQL, http.HandlerFunc(handler))
			defer server.Close()

			issues, err := gateway.FetchIssues(context.Background(), "any-owner", "any-repo", 50)
			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, issues)
			}
		})
	}
}

func TestNewGitHubGateway(t *testing.T) {
	logger := log.New(io.Discard, "", 0)

	_, err := NewGitHubGateway(Options{}, logger)
	assert.NoError(t, err, "unauthenticated REST access is allowed")

	_, err = NewGitHubGateway(Options{API: APIGraphQL}, logger)
	assert.ErrorContains(t, err, "requires a GitHub token")

	_, err = NewGitHubGateway(Options{API: "soap"}, logger)
	assert.ErrorContains(t, err, "unsupported api")

	_, err = NewGitHubGateway(Options{API: APIGraphQL, Token: "t"}, logger)
	assert.NoError(t, err)
}

func TestGraphqlURL(t *testing.T) {
	assert.Equal(t, "https://api.github.com/graphql", graphqlURL(DefaultBaseURL))
	assert.Equal(t, "https://ghe.example.com/api/graphql", graphqlURL("https://ghe.example.com/api"))
	assert.Equal(t, "https://ghe.example.com/api/graphql", graphqlURL("https://ghe.example.com/api/v3/"))
	assert.Equal(t, "https://ghe.example.com/api/graphql", graphqlURL("https://ghe.example.com/api/v3"))
}

// TestNewGitHubGateway_Transport runs requests through the transport chain the constructor builds.
func TestNewGitHubGateway_Transport(t *testing.T) {
	testCases := []struct {
		name         string
		token        string
		expectedAuth string
	}{
		{name: "unauthenticated", token: "", expectedAuth: ""},
		{name: "with token", token: "tok", expectedAuth: "Bearer tok"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var gotAuth, gotAccept string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				gotAccept = r.Header.Get("Accept")
				fmt.Fprint(w, `[]`)
			}))
			defer server.Close()

			fetcher, err := NewGitHubGateway(Options{BaseURL: server.URL, Token: tc.token}, log.New(io.Discard, "", 0))
			require.NoError(t, err)

			_, err = fetcher.FetchIssues(context.Background(), "any-owner", "any-repo", 50)
			require.NoError(t, err)

			assert.Equal(t, tc.expectedAuth, gotAuth)
			assert.Equal(t, "application/vnd.github+json", gotAccept)
		})
	}
}

func TestNewGitHubGateway_SecondaryRateLimitIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message": "You have exceeded a secondary rate limit. Please wait a few minutes before you try again.",
				"documentation_url": "https://docs.github.com/rest/overview/rate-limits-for-the-rest-api#about-secondary-rate-limits"}`)
			return
		}
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	var logs bytes.Buffer
	fetcher, err := NewGitHubGateway(Options{BaseURL: server.URL}, log.New(&logs, "", 0))
	require.NoError(t, err)

	issues, err := fetcher.FetchIssues(context.Background(), "any-owner", "any-repo", 50)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list issues with REST API")
	assert.Nil(t, issues)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Contains(t, logs.String(), "Secondary rate limit hit for /repos/any-owner/any-repo/issues")
}
