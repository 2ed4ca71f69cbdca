package doctor

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/treykane/wg-manager/internal/appconfig"
)

func stubEnv(t *testing.T, root bool) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	origElevated, origWgctrl := elevated, wgctrlStatus
	t.Cleanup(func() {
		elevated = origElevated
		wgctrlStatus = origWgctrl
	})
	elevated = func() bool { return root }
	wgctrlStatus = func() error { return nil }
}

func fakeBinary(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wg-quick")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func hasCheck(report Report, check string) bool {
	for _, issue := range report.Issues {
		if issue.Check == check {
			return true
		}
	}
	return false
}

func TestRunHealthyEnvironment(t *testing.T) {
	stubEnv(t, true)
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "wg0.conf"), []byte("[Interface]\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := appconfig.Default()
	cfg.WireGuard.ConfigDir = dir
	cfg.WireGuard.QuickBinary = fakeBinary(t)

	report, err := Run(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Issues) != 0 {
		t.Fatalf("expected no issues, got %+v", report.Issues)
	}
}

func TestRunReportsEveryProblem(t *testing.T) {
	stubEnv(t, false)
	wgctrlStatus = func() error { return errors.New("netlink unavailable") }
	cfg := appconfig.Default()
	cfg.WireGuard.ConfigDir = filepath.Join(t.TempDir(), "missing")
	cfg.WireGuard.QuickBinary = filepath.Join(t.TempDir(), "no-such-wg-quick")

	report, err := Run(cfg)
	if err != nil {
		t.Fatal(err)
	}
	for _, check := range []string{"wg-quick-binary", "privilege", "config-dir", "wgctrl"} {
		if !hasCheck(report, check) {
			t.Fatalf("expected %s issue, got %+v", check, report.Issues)
		}
	}
	if report.Issues[0].Severity != SeverityHigh {
		t.Fatalf("expected high severity first, got %+v", report.Issues[0])
	}
	last := report.Issues[len(report.Issues)-1]
	if last.Severity != SeverityLow {
		t.Fatalf("expected low severity last, got %+v", last)
	}
}

func TestRunJSONShapeDeterministic(t *testing.T) {
	stubEnv(t, true)
	cfg := appconfig.Default()
	cfg.WireGuard.ConfigDir = t.TempDir()
	cfg.WireGuard.QuickBinary = fakeBinary(t)

	report, err := Run(cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(report)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	if _, ok := decoded["issues"]; !ok {
		t.Fatalf("expected issues key in json output: %s", string(b))
	}
	if !hasCheck(report, "config-dir") {
		t.Fatalf("expected empty config dir to be reported, got %+v", report.Issues)
	}
}
