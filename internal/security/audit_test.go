package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunLocalAudit_CleanTree(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	wg := filepath.Join(t.TempDir(), "wireguard")
	if err := os.Mkdir(wg, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(wg, "wg0.conf"), []byte("[Interface]\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	report, err := RunLocalAudit(wg)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Findings) != 0 {
		t.Fatalf("expected no findings, got %+v", report.Findings)
	}
}

func TestRunLocalAudit_FindsReadableKeys(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	wg := filepath.Join(t.TempDir(), "wireguard")
	if err := os.Mkdir(wg, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(wg, 0o755); err != nil {
		t.Fatal(err)
	}
	conf := filepath.Join(wg, "wg0.conf")
	if err := os.WriteFile(conf, []byte("[Interface]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(conf, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(wg, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := RunLocalAudit(wg)
	if err != nil {
		t.Fatal(err)
	}
	if !report.HasHigh() {
		t.Fatalf("expected high severity findings, got %+v", report.Findings)
	}
	targets := map[string]bool{}
	for _, f := range report.Findings {
		targets[f.Target] = true
	}
	if !targets[wg] || !targets[conf] {
		t.Fatalf("expected dir and conf findings, got %+v", report.Findings)
	}
	if targets[filepath.Join(wg, "notes.txt")] {
		t.Fatal("non-.conf files should not be audited")
	}
}

func TestRunLocalAudit_MissingDirIsQuiet(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	report, err := RunLocalAudit(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Findings) != 0 {
		t.Fatalf("expected no findings, got %+v", report.Findings)
	}
}
