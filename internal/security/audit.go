// Package security audits the file permissions that protect WireGuard
// private keys and wg-manager's own state.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/treykane/wg-manager/internal/appconfig"
	"github.com/treykane/wg-manager/internal/util"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Finding struct {
	Severity       Severity `json:"severity"`
	Target         string   `json:"target"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
}

type AuditReport struct {
	Findings []Finding `json:"findings"`
}

func (r AuditReport) HasHigh() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

// RunLocalAudit inspects the WireGuard configuration directory wgDir and the
// wg-manager state directory.
func RunLocalAudit(wgDir string) (AuditReport, error) {
	var findings []Finding

	// Tunnel configurations hold private keys, so loose modes are high.
	checkPathPerm(&findings, wgDir, 0o700, false, SeverityHigh)
	if entries, err := os.ReadDir(wgDir); err == nil {
		for _, e := range entries {
			if !strings.HasSuffix(e.Name(), util.ConfigExt) {
				continue
			}
			checkPathPerm(&findings, filepath.Join(wgDir, e.Name()), 0o600, true, SeverityHigh)
		}
	}

	cfgDir, err := appconfig.ConfigDir()
	if err == nil {
		checkPathPerm(&findings, cfgDir, 0o700, false, SeverityMedium)
		for _, name := range []string{"config.yaml", "events.jsonl", "history.json", "bundles.yaml", "wg-manager.log"} {
			checkPathPerm(&findings, filepath.Join(cfgDir, name), 0o600, true, SeverityMedium)
		}
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Severity != findings[j].Severity {
			return severityRank(findings[i].Severity) > severityRank(findings[j].Severity)
		}
		if findings[i].Target != findings[j].Target {
			return findings[i].Target < findings[j].Target
		}
		return findings[i].Message < findings[j].Message
	})
	return AuditReport{Findings: findings}, nil
}

func severityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

func checkPathPerm(findings *[]Finding, path string, max os.FileMode, isFile bool, sev Severity) {
	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		*findings = append(*findings, Finding{
			Severity:       SeverityLow,
			Target:         path,
			Message:        fmt.Sprintf("unable to inspect permissions: %v", err),
			Recommendation: "verify path and permissions manually",
		})
		return
	}
	mode := st.Mode().Perm()
	if mode&^max != 0 {
		kind := "directory"
		if isFile {
			kind = "file"
		}
		*findings = append(*findings, Finding{
			Severity:       sev,
			Target:         path,
			Message:        fmt.Sprintf("%s permissions are too broad (%#o)", kind, mode),
			Recommendation: fmt.Sprintf("chmod %#o %s", max, path),
		})
	}
}
