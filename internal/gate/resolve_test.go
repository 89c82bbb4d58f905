package gate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

type fakeCaller struct {
	response string
	err      error
	called   bool
}

func (f *fakeCaller) Invoke(ctx context.Context, agent, model, prompt string) (string, error) {
	f.called = true
	return f.response, f.err
}

func TestResolvePrefersOverrideFileOverAssistant(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, ".hone-gates.json"),
		[]byte(`{"gates":[{"name":"test","command":"npm test"}]}`), 0o644)

	caller := &fakeCaller{}
	r := &Resolver{Caller: caller}
	defs, err := r.Resolve(context.Background(), dir, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if caller.called {
		t.Error("assistant must not be called when override file exists")
	}
	if len(defs) != 1 || defs[0].Name != "test" || !defs[0].Required {
		t.Errorf("defs = %+v", defs)
	}
}

func TestResolveHonorsExplicitRequiredFalse(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, ".hone-gates.json"),
		[]byte(`{"gates":[{"name":"lint","command":"npm run lint","required":false}]}`), 0o644)

	r := &Resolver{}
	defs, _ := r.Resolve(context.Background(), dir, "")
	if len(defs) != 1 || defs[0].Required {
		t.Errorf("expected required=false to be honored, got %+v", defs)
	}
}

func TestResolveFallsThroughOnMalformedOverride(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, ".hone-gates.json"), []byte(`not json`), 0o644)

	caller := &fakeCaller{response: `[{"name":"test","command":"go test ./...","required":true}]`}
	r := &Resolver{Caller: caller}
	defs, err := r.Resolve(context.Background(), dir, "agent text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !caller.called {
		t.Error("expected fallthrough to assistant extraction")
	}
	if len(defs) != 1 || defs[0].Name != "test" {
		t.Errorf("defs = %+v", defs)
	}
}

func TestResolveEmptyWhenNoOverrideAndNoCaller(t *testing.T) {
	dir := t.TempDir()
	r := &Resolver{}
	defs, err := r.Resolve(context.Background(), dir, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(defs) != 0 {
		t.Errorf("expected empty gate list, got %+v", defs)
	}
}

func TestResolveFiltersEntriesLackingNameAndCommand(t *testing.T) {
	caller := &fakeCaller{response: `[{"name":"","command":"","required":true},{"name":"test","command":"go test","required":true}]`}
	r := &Resolver{Caller: caller}
	defs, err := r.Resolve(context.Background(), t.TempDir(), "agent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(defs) != 1 {
		t.Errorf("expected entries lacking both name and command to be filtered, got %+v", defs)
	}
}
