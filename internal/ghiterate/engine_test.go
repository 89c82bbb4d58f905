package ghiterate

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/svetzal/hone/internal/audit"
	"github.com/svetzal/hone/internal/charter"
	"github.com/svetzal/hone/internal/gate"
	"github.com/svetzal/hone/internal/ghissue"
)

type fakeIssues struct {
	owner      string
	issues     []ghissue.Issue
	thumbsUp   map[int][]string
	thumbsDown map[int][]string
	closed     map[int]string
	created    []string
	commitHash string
	labelCalls int
}

func (f *fakeIssues) OwnerLogin(ctx context.Context) (string, error) { return f.owner, nil }
func (f *fakeIssues) ListOpenIssues(ctx context.Context) ([]ghissue.Issue, error) {
	return f.issues, nil
}
func (f *fakeIssues) FetchReactions(ctx context.Context, n int) ([]string, []string) {
	return f.thumbsUp[n], f.thumbsDown[n]
}
func (f *fakeIssues) CreateIssue(ctx context.Context, title, body string) (int, error) {
	f.created = append(f.created, body)
	return 100 + len(f.created), nil
}
func (f *fakeIssues) CloseIssue(ctx context.Context, n int, comment string) error {
	if f.closed == nil {
		f.closed = map[int]string{}
	}
	f.closed[n] = comment
	return nil
}
func (f *fakeIssues) CommitAll(ctx context.Context, workDir, message string) (string, error) {
	return f.commitHash, nil
}
func (f *fakeIssues) EnsureHoneLabel(ctx context.Context) { f.labelCalls++ }

type scriptedReadOnly struct {
	assessResponse string
	nameResponse   string
	planResponse   string
	triageResponse string
	calls          int
}

func (s *scriptedReadOnly) Invoke(ctx context.Context, agent, model, prompt string) (string, error) {
	s.calls++
	switch {
	case strings.HasPrefix(prompt, "You are a skeptical"):
		return s.triageResponse, nil
	case strings.HasPrefix(prompt, "Assess"):
		return s.assessResponse, nil
	case strings.HasPrefix(prompt, "Output ONLY"):
		return s.nameResponse, nil
	case strings.HasPrefix(prompt, "Based on"):
		return s.planResponse, nil
	}
	return "", nil
}

type scriptedWrite struct {
	execResponse string
	calls        int
}

func (s *scriptedWrite) Invoke(ctx context.Context, agent, model, prompt string) (string, error) {
	s.calls++
	return s.execResponse, nil
}

type passCharter struct{}

func (passCharter) Check(projectDir string) (charter.Result, error) {
	return charter.Result{Passed: true}, nil
}

type failCharter struct{}

func (failCharter) Check(projectDir string) (charter.Result, error) {
	return charter.Result{Passed: false}, nil
}

type emptyGates struct{}

func (emptyGates) Resolve(ctx context.Context, projectDir, agentText string) ([]gate.Definition, error) {
	return nil, nil
}

type fakeGates struct{ definitions []gate.Definition }

func (f fakeGates) Resolve(ctx context.Context, projectDir, agentText string) ([]gate.Definition, error) {
	return f.definitions, nil
}

type noopRunner struct{}

func (noopRunner) Run(ctx context.Context, projectDir string, gates []gate.Definition) gate.RunResult {
	return gate.RunResult{AllPassed: true, RequiredPassed: true}
}

func TestRunGitHubHappyPath(t *testing.T) {
	proposal := ghissue.Proposal{
		Name: "fix-it", Assessment: "assessment text", Plan: "plan text",
		Agent: "reviewer", Severity: 4, Principle: "SRP",
	}
	issue := ghissue.Issue{
		Number: 10, Title: "fix-it", Body: ghissue.EncodeBody(proposal),
		CreatedAt: time.Now(),
	}
	issues := &fakeIssues{
		owner:      "octocat",
		issues:     []ghissue.Issue{issue},
		thumbsUp:   map[int][]string{10: {"octocat"}},
		thumbsDown: map[int][]string{},
		commitHash: "abc123",
	}

	dir := t.TempDir()
	eng := &Engine{
		Issues:            issues,
		ReadOnlyAssistant: &scriptedReadOnly{},
		WriteAssistant:    &scriptedWrite{execResponse: "did the work"},
		Charter:           passCharter{},
		Gates:             emptyGates{},
		Runner:            noopRunner{},
		Audit:             audit.Sink{},
		Now:               func() int64 { return 1700000000000 },
	}

	result, err := eng.Run(context.Background(), Options{
		ProjectDir: dir, AuditDir: "audit", Proposals: 0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Closed) != 0 {
		t.Errorf("expected phase 1 to close nothing, got %v", result.Closed)
	}
	if len(result.Executed) != 1 {
		t.Fatalf("expected 1 executed outcome, got %d", len(result.Executed))
	}
	outcome := result.Executed[0]
	if !outcome.Success || outcome.CommitHash != "abc123" {
		t.Errorf("expected successful execution with commit abc123, got %+v", outcome)
	}
	if comment, ok := issues.closed[10]; !ok || !strings.Contains(comment, "Completed successfully") {
		t.Errorf("expected completion comment on issue 10, got %q", comment)
	}
	if len(result.Proposed) != 0 {
		t.Errorf("expected phase 3 to create no issues with proposals=0, got %v", result.Proposed)
	}
}

func TestRunSkipsUndecodableApprovedIssue(t *testing.T) {
	issue := ghissue.Issue{Number: 7, Title: "mystery", Body: "not a hone body", CreatedAt: time.Now()}
	issues := &fakeIssues{
		owner:      "octocat",
		issues:     []ghissue.Issue{issue},
		thumbsUp:   map[int][]string{7: {"octocat"}},
		thumbsDown: map[int][]string{},
	}

	eng := &Engine{
		Issues:            issues,
		ReadOnlyAssistant: &scriptedReadOnly{},
		WriteAssistant:    &scriptedWrite{},
		Charter:           passCharter{},
		Gates:             emptyGates{},
		Runner:            noopRunner{},
		Audit:             audit.Sink{},
	}

	result, err := eng.Run(context.Background(), Options{ProjectDir: t.TempDir(), AuditDir: "audit"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Executed) != 0 {
		t.Errorf("expected no recorded outcome for an undecodable issue, got %v", result.Executed)
	}
	if _, closed := issues.closed[7]; closed {
		t.Error("expected the undecodable issue to be left open, not closed")
	}
}

func TestRunClosesThumbsDownIssues(t *testing.T) {
	issue := ghissue.Issue{Number: 5, Title: "rejected", Body: "anything", CreatedAt: time.Now()}
	issues := &fakeIssues{
		owner:      "octocat",
		issues:     []ghissue.Issue{issue},
		thumbsUp:   map[int][]string{},
		thumbsDown: map[int][]string{5: {"octocat"}},
	}

	eng := &Engine{
		Issues:            issues,
		ReadOnlyAssistant: &scriptedReadOnly{},
		WriteAssistant:    &scriptedWrite{},
		Charter:           passCharter{},
		Gates:             emptyGates{},
		Runner:            noopRunner{},
		Audit:             audit.Sink{},
	}

	result, err := eng.Run(context.Background(), Options{ProjectDir: t.TempDir(), AuditDir: "audit"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Closed) != 1 || result.Closed[0] != 5 {
		t.Errorf("expected issue 5 closed, got %v", result.Closed)
	}
	if len(result.Executed) != 0 {
		t.Errorf("expected no executions, got %v", result.Executed)
	}
	comment := issues.closed[5]
	if !strings.Contains(comment, "rejected by product owner") {
		t.Errorf("unexpected close comment: %q", comment)
	}
}

func TestRunProposesAndSkipsTriageRejections(t *testing.T) {
	issues := &fakeIssues{owner: "octocat"}
	readOnly := &scriptedReadOnly{
		assessResponse: `{"severity":1,"principle":"DRY","category":"duplication"}`,
		nameResponse:   "low-sev-fix",
		triageResponse: "",
	}

	eng := &Engine{
		Issues:            issues,
		ReadOnlyAssistant: readOnly,
		WriteAssistant:    &scriptedWrite{},
		Charter:           passCharter{},
		Gates:             emptyGates{},
		Runner:            noopRunner{},
		Audit:             audit.Sink{},
	}

	result, err := eng.Run(context.Background(), Options{
		ProjectDir: t.TempDir(), AuditDir: "audit", Proposals: 1, SeverityThreshold: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SkippedTriage != 1 {
		t.Errorf("expected 1 skipped-triage proposal, got %d", result.SkippedTriage)
	}
	if len(result.Proposed) != 0 {
		t.Errorf("expected no issues created on triage rejection, got %v", result.Proposed)
	}
	if len(issues.created) != 0 {
		t.Errorf("expected CreateIssue never called, got %d calls", len(issues.created))
	}
}

func TestRunCreatesIssueOnAcceptedProposal(t *testing.T) {
	issues := &fakeIssues{owner: "octocat"}
	readOnly := &scriptedReadOnly{
		assessResponse: "The project has high coupling between modules.",
		nameResponse:   "reduce-coupling",
		planResponse:   "Introduce an interface boundary.",
	}

	eng := &Engine{
		Issues:            issues,
		ReadOnlyAssistant: readOnly,
		WriteAssistant:    &scriptedWrite{},
		Charter:           passCharter{},
		Gates:             emptyGates{},
		Runner:            noopRunner{},
		Audit:             audit.Sink{},
	}

	result, err := eng.Run(context.Background(), Options{
		ProjectDir: t.TempDir(), AuditDir: "audit", Proposals: 1, SkipTriage: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Proposed) != 1 {
		t.Fatalf("expected 1 proposed issue, got %d", len(result.Proposed))
	}
	if len(issues.created) != 1 {
		t.Fatalf("expected CreateIssue called once, got %d", len(issues.created))
	}
	if issues.labelCalls == 0 {
		t.Error("expected EnsureHoneLabel to be called before creating an issue")
	}
	decoded := ghissue.DecodeBody(issues.created[0])
	if decoded == nil || decoded.Name != "reduce-coupling" {
		t.Errorf("expected decodable body with name reduce-coupling, got %+v", decoded)
	}
}

func TestRunFailsOverallWhenCharterCheckFails(t *testing.T) {
	issues := &fakeIssues{owner: "octocat"}

	eng := &Engine{
		Issues:            issues,
		ReadOnlyAssistant: &scriptedReadOnly{},
		WriteAssistant:    &scriptedWrite{},
		Charter:           failCharter{},
		Gates:             emptyGates{},
		Runner:            noopRunner{},
		Audit:             audit.Sink{},
	}

	result, err := eng.Run(context.Background(), Options{
		ProjectDir: t.TempDir(), AuditDir: "audit", Proposals: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success {
		t.Error("expected Success=false when the charter check fails")
	}
	if len(result.Proposed) != 0 || len(issues.created) != 0 {
		t.Errorf("expected phase 3 to be skipped entirely on charter failure, got proposed=%v created=%d",
			result.Proposed, len(issues.created))
	}
}

func TestRunFailsOverallWhenAnApprovedIssueFailsExecution(t *testing.T) {
	proposal := ghissue.Proposal{
		Name: "fix-it", Assessment: "assessment text", Plan: "plan text",
		Agent: "reviewer", Severity: 4, Principle: "SRP",
	}
	issue := ghissue.Issue{
		Number: 11, Title: "fix-it", Body: ghissue.EncodeBody(proposal),
		CreatedAt: time.Now(),
	}
	issues := &fakeIssues{
		owner:      "octocat",
		issues:     []ghissue.Issue{issue},
		thumbsUp:   map[int][]string{11: {"octocat"}},
		thumbsDown: map[int][]string{},
	}

	failingRunner := gate.RunResult{AllPassed: false, RequiredPassed: false}

	eng := &Engine{
		Issues:            issues,
		ReadOnlyAssistant: &scriptedReadOnly{},
		WriteAssistant:    &scriptedWrite{execResponse: "did the work"},
		Charter:           passCharter{},
		Gates:             fakeGates{definitions: []gate.Definition{{Name: "test", Command: "go test ./...", Required: true}}},
		Runner:            stubRunner{result: failingRunner},
		Audit:             audit.Sink{},
	}

	result, err := eng.Run(context.Background(), Options{ProjectDir: t.TempDir(), AuditDir: "audit", MaxRetries: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success {
		t.Error("expected Success=false when an approved issue fails required gates")
	}
}

type stubRunner struct{ result gate.RunResult }

func (s stubRunner) Run(ctx context.Context, projectDir string, gates []gate.Definition) gate.RunResult {
	return s.result
}
