// Package ghissue wraps the GitHub CLI (gh) for Hone's issue-approval
// workflow: listing "hone"-labelled issues with their reactions,
// creating and closing issues, and committing approved changes.
package ghissue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Issue is one "hone"-labelled GitHub issue together with the
// reactions collected against it.
type Issue struct {
	Number     int
	Title      string
	Body       string
	CreatedAt  time.Time
	ThumbsUp   []string
	ThumbsDown []string
}

// Client wraps gh CLI invocations scoped to a single repository.
type Client struct {
	RepoSlug string // "<owner>/<repo>"
	Timeout  time.Duration
}

// NewClient builds a Client for repoSlug ("owner/repo"). A zero
// Timeout defaults to 60s, matching the teacher's GitHub client.
func NewClient(repoSlug string) *Client {
	return &Client{RepoSlug: repoSlug, Timeout: 60 * time.Second}
}

func (c *Client) timeout() time.Duration {
	if c.Timeout == 0 {
		return 60 * time.Second
	}
	return c.Timeout
}

// run executes gh with args and returns trimmed stdout. Non-zero exit
// is fatal (VcsHostCallFailure), carrying stderr for diagnosis.
func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, "gh", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("gh %s: %s: %w", strings.Join(args, " "), strings.TrimSpace(stderr.String()), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// repoArgs returns the "--repo <slug>" pair when RepoSlug is set, or
// nil to let gh infer the repository from the current directory's git
// remote — the command surface (§6) has no --repo flag, so a bare
// `hone iterate ... --mode github` run always takes this path.
func (c *Client) repoArgs() []string {
	if c.RepoSlug == "" {
		return nil
	}
	return []string{"--repo", c.RepoSlug}
}

// OwnerLogin returns the authenticated repo owner's login.
func (c *Client) OwnerLogin(ctx context.Context) (string, error) {
	args := append([]string{"repo", "view"}, c.repoArgs()...)
	args = append(args, "--json", "owner", "--jq", ".owner.login")
	return c.run(ctx, args...)
}

// NameWithOwner returns "<owner>/<repo>" for the configured repo.
func (c *Client) NameWithOwner(ctx context.Context) (string, error) {
	args := append([]string{"repo", "view"}, c.repoArgs()...)
	args = append(args, "--json", "nameWithOwner", "--jq", ".nameWithOwner")
	return c.run(ctx, args...)
}

// EnsureHoneLabel idempotently creates the "hone" label. Failures
// (including already-exists) are silently ignored per §6.
func (c *Client) EnsureHoneLabel(ctx context.Context) {
	args := append([]string{"label", "create", "hone"}, c.repoArgs()...)
	args = append(args, "--description", "Hone improvement proposal", "--color", "0e8a16")
	_, _ = c.run(ctx, args...)
}

type issueWire struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListOpenIssues returns every open "hone"-labelled issue, without
// reactions populated — call FetchReactions per issue.
func (c *Client) ListOpenIssues(ctx context.Context) ([]Issue, error) {
	args := append([]string{"issue", "list"}, c.repoArgs()...)
	args = append(args, "--label", "hone", "--state", "open",
		"--json", "number,title,body,createdAt", "--limit", "100")
	out, err := c.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}

	var wire []issueWire
	if err := json.Unmarshal([]byte(out), &wire); err != nil {
		return nil, fmt.Errorf("ghissue: parsing issue list: %w", err)
	}

	issues := make([]Issue, len(wire))
	for i, w := range wire {
		issues[i] = Issue{Number: w.Number, Title: w.Title, Body: w.Body, CreatedAt: w.CreatedAt}
	}
	return issues, nil
}

type reactionLine struct {
	User    string `json:"user"`
	Content string `json:"content"`
}

// FetchReactions populates ThumbsUp/ThumbsDown for issue number n. A
// VcsHostCallFailure here is non-fatal: it returns empty lists rather
// than an error, per §7's reaction-fetch exception.
func (c *Client) FetchReactions(ctx context.Context, n int) ([]string, []string) {
	slug := c.RepoSlug
	if slug == "" {
		resolved, err := c.NameWithOwner(ctx)
		if err != nil {
			return nil, nil
		}
		slug = resolved
	}
	out, err := c.run(ctx, "api", fmt.Sprintf("repos/%s/issues/%d/reactions", slug, n),
		"--jq", `.[] | {user:.user.login, content:.content}`)
	if err != nil {
		return nil, nil
	}
	return parseReactions(out)
}

// parseReactions decodes the newline-delimited {user,content} JSON gh
// emits, bucketing by reaction content.
func parseReactions(out string) ([]string, []string) {
	var up, down []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var r reactionLine
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			continue
		}
		switch r.Content {
		case "+1":
			up = append(up, r.User)
		case "-1":
			down = append(down, r.User)
		}
	}
	return up, down
}

// CreateIssue opens a new "hone"-labelled issue and returns its
// number, parsed from the created issue's URL.
func (c *Client) CreateIssue(ctx context.Context, title, body string) (int, error) {
	args := append([]string{"issue", "create"}, c.repoArgs()...)
	args = append(args, "--title", title, "--body", body, "--label", "hone")
	out, err := c.run(ctx, args...)
	if err != nil {
		return 0, err
	}
	return parseIssueNumber(out)
}

// CloseIssue closes issue n with the given comment.
func (c *Client) CloseIssue(ctx context.Context, n int, comment string) error {
	args := append([]string{"issue", "close", strconv.Itoa(n)}, c.repoArgs()...)
	args = append(args, "--comment", comment)
	_, err := c.run(ctx, args...)
	return err
}

// parseIssueNumber extracts the trailing integer from a gh-issued
// ".../issues/<N>" URL.
func parseIssueNumber(output string) (int, error) {
	idx := strings.LastIndex(output, "/issues/")
	if idx < 0 {
		return 0, fmt.Errorf("ghissue: could not parse issue number from %q", output)
	}
	n, err := strconv.Atoi(strings.TrimSpace(output[idx+len("/issues/"):]))
	if err != nil {
		return 0, fmt.Errorf("ghissue: could not parse issue number from %q", output)
	}
	return n, nil
}

// CommitAll stages every change, commits with message, and returns the
// resulting commit hash. Any non-zero exit is fatal (GitFailure).
func (c *Client) CommitAll(ctx context.Context, workDir, message string) (string, error) {
	if err := runGit(ctx, workDir, "add", "-A"); err != nil {
		return "", err
	}
	if err := runGit(ctx, workDir, "commit", "-m", message); err != nil {
		return "", err
	}
	hash, err := runGitOutput(ctx, workDir, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return hash, nil
}

func runGit(ctx context.Context, dir string, args ...string) error {
	_, err := runGitOutput(ctx, dir, args...)
	return err
}

func runGitOutput(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), strings.TrimSpace(stderr.String()), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
