package procrun

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestRunCapturesStdoutAndExitCode(t *testing.T) {
	res, err := Run(context.Background(), []string{"sh", "-c", "echo hello; exit 0"}, "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "hello" {
		t.Errorf("stdout = %q, want %q", res.Stdout, "hello")
	}
	if res.ExitCode == nil || *res.ExitCode != 0 {
		t.Errorf("exitCode = %v, want 0", res.ExitCode)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	res, err := Run(context.Background(), []string{"sh", "-c", "echo oops 1>&2; exit 3"}, "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode == nil || *res.ExitCode != 3 {
		t.Errorf("exitCode = %v, want 3", res.ExitCode)
	}
	if strings.TrimSpace(res.Stderr) != "oops" {
		t.Errorf("stderr = %q, want %q", res.Stderr, "oops")
	}
}

func TestRunTimeoutKillsProcess(t *testing.T) {
	res, err := Run(context.Background(), []string{"sh", "-c", "sleep 5"}, "", 20*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != nil {
		t.Errorf("exitCode = %v, want nil after timeout kill", *res.ExitCode)
	}
}

func TestRunEmptyArgvErrors(t *testing.T) {
	if _, err := Run(context.Background(), nil, "", 0); err == nil {
		t.Error("expected error for empty argv")
	}
}
