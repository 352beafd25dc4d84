package server

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/tidwall/gjson"

	"github.com/diogo/agui/internal/logger"
)

// Environment variables that enable the github responder
const (
	EnvGitHubToken = "GITHUB_TOKEN"
	EnvGitHubOwner = "GITHUB_OWNER"
	EnvGitHubRepo  = "GITHUB_REPO"
)

// DefaultGitHubAPI is the REST API root
const DefaultGitHubAPI = "https://api.github.com"

const (
	githubTimeoutSeconds = 30
	githubMaxBody        = 8 << 20
	dateLayout           = "2006-01-02"
)

var (
	isoDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	shaPattern     = regexp.MustCompile(`\b[0-9a-f]{7,40}\b`)
)

// GitHubDoer is the subset of tls_client.HttpClient the responder needs
type GitHubDoer interface {
	Do(req *fhttp.Request) (*fhttp.Response, error)
}

// Summarizer turns a prompt into prose. ClaudeResponder.Summarize fits.
type Summarizer func(ctx context.Context, prompt string) (string, error)

// GitHubResponder answers questions about one repository: commit counts,
// single commits, the latest commits, merged pull requests, open pull
// requests and open bugs. Anything else falls through the chain.
type GitHubResponder struct {
	owner     string
	repo      string
	token     string
	baseURL   string
	client    GitHubDoer
	now       func() time.Time
	summarize Summarizer
}

// GitHubOption configures a GitHubResponder
type GitHubOption func(*GitHubResponder)

// WithGitHubBaseURL points the responder at another API root, mainly for tests
func WithGitHubBaseURL(baseURL string) GitHubOption {
	return func(g *GitHubResponder) {
		g.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithGitHubHTTPClient replaces the TLS client
func WithGitHubHTTPClient(doer GitHubDoer) GitHubOption {
	return func(g *GitHubResponder) {
		g.client = doer
	}
}

// WithGitHubClock replaces time.Now when resolving date ranges
func WithGitHubClock(now func() time.Time) GitHubOption {
	return func(g *GitHubResponder) {
		g.now = now
	}
}

// WithSummarizer lets merged pull requests be summarized instead of listed
func WithSummarizer(fn Summarizer) GitHubOption {
	return func(g *GitHubResponder) {
		g.summarize = fn
	}
}

// NewGitHubResponder creates a responder for owner/repo authenticated with token
func NewGitHubResponder(token, owner, repo string, opts ...GitHubOption) (*GitHubResponder, error) {
	g := &GitHubResponder{
		owner:   owner,
		repo:    repo,
		token:   token,
		baseURL: DefaultGitHubAPI,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.client == nil {
		client, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(),
			tls_client.WithTimeoutSeconds(githubTimeoutSeconds),
			tls_client.WithClientProfile(profiles.Chrome_120),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create GitHub client: %w", err)
		}
		g.client = client
	}
	return g, nil
}

func (g *GitHubResponder) Name() string { return "github" }

// Repository returns owner/repo
func (g *GitHubResponder) Repository() string { return g.owner + "/" + g.repo }

func (g *GitHubResponder) Respond(ctx context.Context, text string) (string, bool, error) {
	lowered := strings.ToLower(strings.TrimSpace(text))

	var (
		reply string
		err   error
	)
	switch {
	case strings.Contains(lowered, "commit") &&
		(strings.Contains(lowered, "yesterday") || strings.Contains(lowered, "last") || isoDatePattern.MatchString(lowered)):
		from, to := dateRange(lowered, g.now())
		reply, err = g.commitCount(ctx, from, to)
	case shaPattern.MatchString(lowered):
		reply, err = g.commit(ctx, shaPattern.FindString(lowered))
	case strings.Contains(lowered, "latest commit") || strings.Contains(lowered, "recent commit"):
		reply, err = g.latestCommits(ctx)
	case strings.Contains(lowered, "deploy") || strings.Contains(lowered, "release") || strings.Contains(lowered, "feature"):
		from, to := dateRange(lowered, g.now())
		reply, err = g.mergedPullRequests(ctx, text, from, to)
	case strings.Contains(lowered, "open pull"):
		reply, err = g.openPullRequests(ctx)
	case strings.Contains(lowered, "bug") && (strings.Contains(lowered, "how many") || strings.Contains(lowered, "count")):
		reply, err = g.openBugs(ctx)
	default:
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return reply, true, nil
}

func (g *GitHubResponder) commitCount(ctx context.Context, from, to time.Time) (string, error) {
	fromDay, toDay := from.Format(dateLayout), to.Format(dateLayout)
	status, body, err := g.get(ctx, g.repoPath("/commits"), url.Values{
		"since":    {fromDay + "T00:00:00Z"},
		"until":    {toDay + "T23:59:59Z"},
		"per_page": {"100"},
	})
	if err != nil {
		return "", err
	}
	if status != fhttp.StatusOK {
		return fmt.Sprintf("Error fetching commits: GitHub API error: %d", status), nil
	}
	count := len(gjson.ParseBytes(body).Array())
	return fmt.Sprintf("There were **%d** commits between **%s** and **%s** in the `%s` repository.",
		count, fromDay, toDay, g.repo), nil
}

func (g *GitHubResponder) commit(ctx context.Context, sha string) (string, error) {
	status, body, err := g.get(ctx, g.repoPath("/commits/"+sha), nil)
	if err != nil {
		return "", err
	}
	if status != fhttp.StatusOK {
		return fmt.Sprintf("Could not find commit `%s`.", sha), nil
	}
	commit := gjson.GetBytes(body, "commit")
	return fmt.Sprintf("Commit `%s` by **%s** on %s:\n> %s", sha,
		stringOr(commit.Get("author.name"), "Unknown"),
		stringOr(commit.Get("author.date"), "Unknown"),
		stringOr(commit.Get("message"), "No commit message")), nil
}

func (g *GitHubResponder) latestCommits(ctx context.Context) (string, error) {
	status, body, err := g.get(ctx, g.repoPath("/commits"), url.Values{"per_page": {"5"}})
	if err != nil {
		return "", err
	}
	if status != fhttp.StatusOK {
		return fmt.Sprintf("GitHub API error: %d", status), nil
	}

	commits := gjson.ParseBytes(body).Array()
	if len(commits) == 0 {
		return "No commits found.", nil
	}

	entries := make([]string, 0, len(commits))
	for i, c := range commits {
		message, _, _ := strings.Cut(c.Get("commit.message").String(), "\n")
		entries = append(entries, fmt.Sprintf("%d. %s\n   • Commit: `%s`\n   • Author: %s\n   • Date: %s",
			i+1, message,
			prefix(c.Get("sha").String(), 7),
			c.Get("commit.author.name").String(),
			prefix(c.Get("commit.author.date").String(), 10)))
	}
	return fmt.Sprintf("Latest Commits in `%s`:\n\n%s", g.repo, strings.Join(entries, "\n\n")), nil
}

func (g *GitHubResponder) mergedPullRequests(ctx context.Context, question string, from, to time.Time) (string, error) {
	fromDay, toDay := from.Format(dateLayout), to.Format(dateLayout)
	status, body, err := g.get(ctx, g.repoPath("/pulls"), url.Values{
		"state":    {"closed"},
		"per_page": {"100"},
	})
	if err != nil {
		return "", err
	}

	var lines []string
	if status == fhttp.StatusOK {
		for _, pr := range gjson.ParseBytes(body).Array() {
			merged := prefix(pr.Get("merged_at").String(), 10)
			if merged == "" || merged < fromDay || merged > toDay {
				continue
			}
			lines = append(lines, fmt.Sprintf("- PR #%d: %s by %s",
				pr.Get("number").Int(), pr.Get("title").String(), pr.Get("user.login").String()))
		}
	}
	if len(lines) == 0 {
		return fmt.Sprintf("No deployments found between **%s** and **%s** in the `%s` repository.",
			fromDay, toDay, g.repo), nil
	}

	list := strings.Join(lines, "\n")
	if g.summarize == nil {
		return fmt.Sprintf("Pull requests merged between **%s** and **%s** in the `%s` repository:\n\n%s",
			fromDay, toDay, g.repo, list), nil
	}
	prompt := fmt.Sprintf("The user asked: %s\n\nBetween %s and %s, the following pull requests were merged:\n\n%s\n\nSummarize from user perspective.",
		question, fromDay, toDay, list)
	return g.summarize(ctx, prompt)
}

func (g *GitHubResponder) openPullRequests(ctx context.Context) (string, error) {
	status, body, err := g.get(ctx, g.repoPath("/pulls"), url.Values{
		"state":    {"open"},
		"per_page": {"50"},
	})
	if err != nil {
		return "", err
	}

	var lines []string
	if status == fhttp.StatusOK {
		for _, pr := range gjson.ParseBytes(body).Array() {
			lines = append(lines, fmt.Sprintf("- #%d by %s on %s",
				pr.Get("number").Int(), pr.Get("user.login").String(), prefix(pr.Get("created_at").String(), 10)))
		}
	}
	if len(lines) == 0 {
		return "No open pull requests.", nil
	}
	return "Open pull requests:\n" + strings.Join(lines, "\n"), nil
}

func (g *GitHubResponder) openBugs(ctx context.Context) (string, error) {
	q := fmt.Sprintf("repo:%s/%s is:issue is:open label:bug", g.owner, g.repo)
	status, body, err := g.get(ctx, "/search/issues", url.Values{"q": {q}})
	if err != nil {
		return "", err
	}
	if status != fhttp.StatusOK {
		return fmt.Sprintf("Error: GitHub API error: %d", status), nil
	}
	return fmt.Sprintf("There are **%d** open bugs in `%s`.", gjson.GetBytes(body, "total_count").Int(), g.repo), nil
}

func (g *GitHubResponder) repoPath(suffix string) string {
	return "/repos/" + url.PathEscape(g.owner) + "/" + url.PathEscape(g.repo) + suffix
}

// get returns the status and body of a completed request. Only transport
// failures are errors; status handling is left to each intent.
func (g *GitHubResponder) get(ctx context.Context, path string, query url.Values) (int, []byte, error) {
	target := g.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, target, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create GitHub request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("GitHub request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, githubMaxBody))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read GitHub response: %w", err)
	}
	logger.Debug("github request", "path", path, "status", resp.StatusCode, "bytes", len(body))
	return resp.StatusCode, body, nil
}

// dateRange resolves the days a question is about. Explicit dates win,
// then a few relative phrases; the default is the last seven days.
func dateRange(lowered string, now time.Time) (time.Time, time.Time) {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	var days []time.Time
	for _, s := range isoDatePattern.FindAllString(lowered, 2) {
		if d, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
			days = append(days, d)
		}
	}
	switch len(days) {
	case 1:
		return days[0], days[0]
	case 2:
		if days[1].Before(days[0]) {
			return days[1], days[0]
		}
		return days[0], days[1]
	}

	switch {
	case strings.Contains(lowered, "last year"):
		y := today.Year() - 1
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc), time.Date(y, time.December, 31, 0, 0, 0, 0, loc)
	case strings.Contains(lowered, "this year"):
		y := today.Year()
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc), time.Date(y, time.December, 31, 0, 0, 0, 0, loc)
	case strings.Contains(lowered, "last month"):
		return today.AddDate(0, -1, 0), today
	case strings.Contains(lowered, "yesterday"):
		d := today.AddDate(0, 0, -1)
		return d, d
	case strings.Contains(lowered, "today"):
		return today, today
	}
	return today.AddDate(0, 0, -7), today
}

func stringOr(r gjson.Result, fallback string) string {
	if !r.Exists() || r.Type == gjson.Null {
		return fallback
	}
	return r.String()
}

func prefix(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
