package doctor

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/treykane/wg-manager/internal/appconfig"
	"github.com/treykane/wg-manager/internal/privilege"
	"github.com/treykane/wg-manager/internal/security"
	"github.com/treykane/wg-manager/internal/store"
	"github.com/treykane/wg-manager/internal/tunnel"
	"github.com/treykane/wg-manager/internal/util"
	"github.com/treykane/wg-manager/internal/wgquick"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Issue struct {
	Severity       Severity `json:"severity"`
	Check          string   `json:"check"`
	Target         string   `json:"target"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
}

type Report struct {
	Issues []Issue `json:"issues"`
}

var (
	elevated     = privilege.Elevated
	wgctrlStatus = func() error {
		in := tunnel.NewInspector()
		defer in.Close()
		return in.Err()
	}
)

// Run executes local diagnostics for wg-manager operations.
func Run(cfg appconfig.Config) (Report, error) {
	issues := []Issue{}

	client := wgquick.New(cfg.WireGuard.QuickBinary)
	if err := client.EnsureBinary(); err != nil {
		issues = append(issues, Issue{
			Severity:       SeverityHigh,
			Check:          "wg-quick-binary",
			Target:         client.Binary(),
			Message:        err.Error(),
			Recommendation: "install wireguard-tools or set wireguard.quick_binary in config.yaml",
		})
	}

	if !elevated() {
		issues = append(issues, Issue{
			Severity:       SeverityHigh,
			Check:          "privilege",
			Target:         fmt.Sprintf("uid=%d", os.Geteuid()),
			Message:        "not running as root; the dashboard only shows a notice",
			Recommendation: util.PrivilegeNotice,
		})
	}

	dir := cfg.WireGuard.ConfigDir
	if _, err := os.ReadDir(dir); err != nil {
		sev, rec := SeverityHigh, "check the directory permissions or run with sudo"
		if errors.Is(err, os.ErrNotExist) {
			sev, rec = SeverityMedium, "create it with `install -d -m 0700 "+dir+"` or set wireguard.config_dir"
		}
		issues = append(issues, Issue{
			Severity:       sev,
			Check:          "config-dir",
			Target:         dir,
			Message:        err.Error(),
			Recommendation: rec,
		})
	} else if len(store.New(dir).List()) == 0 {
		issues = append(issues, Issue{
			Severity:       SeverityLow,
			Check:          "config-dir",
			Target:         dir,
			Message:        "no tunnel configurations found",
			Recommendation: "create one from the dashboard or copy a <name>.conf into the directory",
		})
	}

	if err := wgctrlStatus(); err != nil {
		issues = append(issues, Issue{
			Severity:       SeverityLow,
			Check:          "wgctrl",
			Target:         "netlink",
			Message:        err.Error(),
			Recommendation: "live status is unavailable; up/down still work through wg-quick",
		})
	}

	if audit, err := security.RunLocalAudit(dir); err == nil {
		for _, f := range audit.Findings {
			sev := SeverityLow
			if f.Severity == security.SeverityMedium {
				sev = SeverityMedium
			}
			if f.Severity == security.SeverityHigh {
				sev = SeverityHigh
			}
			issues = append(issues, Issue{
				Severity:       sev,
				Check:          "security-audit",
				Target:         f.Target,
				Message:        f.Message,
				Recommendation: f.Recommendation,
			})
		}
	}

	sort.Slice(issues, func(i, j int) bool {
		ri := severityRank(issues[i].Severity)
		rj := severityRank(issues[j].Severity)
		if ri != rj {
			return ri > rj
		}
		if issues[i].Check != issues[j].Check {
			return issues[i].Check < issues[j].Check
		}
		if issues[i].Target != issues[j].Target {
			return issues[i].Target < issues[j].Target
		}
		return issues[i].Message < issues[j].Message
	})
	return Report{Issues: issues}, nil
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
