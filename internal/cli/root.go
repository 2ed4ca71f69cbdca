// Package cli provides the command-line interface for wg-manager.
package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/treykane/wg-manager/internal/appconfig"
	"github.com/treykane/wg-manager/internal/bundle"
	"github.com/treykane/wg-manager/internal/doctor"
	"github.com/treykane/wg-manager/internal/events"
	"github.com/treykane/wg-manager/internal/history"
	"github.com/treykane/wg-manager/internal/logging"
	"github.com/treykane/wg-manager/internal/model"
	"github.com/treykane/wg-manager/internal/privilege"
	"github.com/treykane/wg-manager/internal/store"
	"github.com/treykane/wg-manager/internal/tunnel"
	"github.com/treykane/wg-manager/internal/ui"
	"github.com/treykane/wg-manager/internal/util"
	"github.com/treykane/wg-manager/internal/wgquick"
)

type options struct {
	configDir string
	verbose   bool

	cfg      appconfig.Config
	store    *store.Store
	client   *wgquick.Client
	ctrl     *tunnel.Controller
	closeLog func() error
}

// setup loads config.yaml, applies flag overrides and installs the file logger.
func (o *options) setup() error {
	cfg, err := appconfig.Load()
	if err != nil {
		return err
	}
	if strings.TrimSpace(o.configDir) != "" {
		cfg.WireGuard.ConfigDir = o.configDir
	}
	o.cfg = cfg

	level := logging.ParseLevel(cfg.Log.Level)
	if o.verbose {
		level = slog.LevelDebug
	}
	if path, err := appconfig.LogFilePath(); err == nil {
		closeFn, err := logging.Setup(path, level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
		} else {
			o.closeLog = closeFn
		}
	}

	o.store = store.New(cfg.WireGuard.ConfigDir)
	o.client = wgquick.New(cfg.WireGuard.QuickBinary)
	o.ctrl = tunnel.NewController(o.client)
	slog.Debug("wg-manager starting", "config_dir", cfg.WireGuard.ConfigDir, "quick_binary", cfg.WireGuard.QuickBinary)
	return nil
}

func (o *options) close() {
	if o.closeLog != nil {
		_ = o.closeLog()
		o.closeLog = nil
	}
}

// Execute builds the command tree, runs it and closes the log file, also
// when a command fails.
func Execute() error {
	root, opts := newRoot()
	return execute(root, opts)
}

func execute(root *cobra.Command, opts *options) error {
	defer opts.close()
	return root.Execute()
}

// newRoot creates the root cobra command and the options its commands share.
func newRoot() (*cobra.Command, *options) {
	opts := &options{}
	root := &cobra.Command{
		Use:           util.AppName,
		Short:         "WireGuard tunnel configuration manager",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configDir, "config-dir", "", "WireGuard configuration directory (default from config.yaml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "write debug output to the log file")

	root.AddCommand(newListCmd(opts))
	root.AddCommand(newShowCmd(opts))
	root.AddCommand(newUpDownCmd(opts, model.ActionUp))
	root.AddCommand(newUpDownCmd(opts, model.ActionDown))
	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newEventsCmd(opts))
	root.AddCommand(newDoctorCmd(opts))
	root.AddCommand(newBundleCmd(opts))
	return root, opts
}

func runDashboard(opts *options) error {
	if err := opts.client.EnsureBinary(); err != nil {
		slog.Warn("wg-quick not found; start and stop will fail", "error", err)
	}
	inspector := tunnel.NewInspector()
	defer inspector.Close()
	return ui.Run(ui.Options{
		Config:     opts.cfg,
		Store:      opts.store,
		Controller: opts.ctrl,
		Status:     inspector,
		Privileged: privilege.Elevated(),
	})
}

type listItem struct {
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	LastUsed *time.Time `json:"last_used,omitempty"`
}

func newListCmd(opts *options) *cobra.Command {
	var recent, jsonOut bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tunnel configurations in the WireGuard directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := opts.store.List()
			sort.Strings(names)
			lastUsed, err := history.LastUsed()
			if err != nil {
				slog.Warn("failed to load tunnel history", "error", err)
			}
			if recent {
				names = history.SortRecent(names, lastUsed)
			}
			items := make([]listItem, 0, len(names))
			for _, n := range names {
				item := listItem{Name: n, Path: opts.store.Path(n)}
				if t, ok := lastUsed[n]; ok {
					item.LastUsed = &t
				}
				items = append(items, item)
			}
			if jsonOut {
				return writeJSON(items)
			}
			fmt.Printf("%-20s %-40s %s\n", "NAME", "PATH", "LAST UP")
			for _, it := range items {
				fmt.Printf("%-20s %-40s %s\n", it.Name, it.Path, formatTime(it.LastUsed))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&recent, "recent", false, "sort by most recently brought up")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a tunnel configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := store.ValidateName(name); err != nil {
				return err
			}
			text, status := opts.store.Lookup(name)
			switch status {
			case store.Found:
				fmt.Print(text)
				if text != "" && !strings.HasSuffix(text, "\n") {
					fmt.Println()
				}
				return nil
			case store.NotFound:
				return fmt.Errorf("tunnel not found: %s", name)
			default:
				return fmt.Errorf("cannot read %s (try sudo)", opts.store.Path(name))
			}
		},
	}
}

func newUpDownCmd(opts *options, action model.Action) *cobra.Command {
	short := "Bring a tunnel up with wg-quick"
	if action == model.ActionDown {
		short = "Bring a tunnel down with wg-quick"
	}
	return &cobra.Command{
		Use:   string(action) + " <name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := store.ValidateName(name); err != nil {
				return err
			}
			if !opts.store.Contains(name) {
				return fmt.Errorf("tunnel not found: %s", name)
			}
			out := opts.ctrl.Do(cmd.Context(), action, name)
			fmt.Println(out.Message)
			if !out.Succeeded() {
				return fmt.Errorf("wg-quick %s %s: %s", action, name, out.Result)
			}
			return nil
		},
	}
}

func newStatusCmd(opts *options) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "status [name...]",
		Short: "Show live interface status",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = opts.store.List()
				sort.Strings(names)
			}
			inspector := tunnel.NewInspector()
			defer inspector.Close()
			sn := inspector.Snapshot(names)
			if jsonOut {
				return writeJSON(sn)
			}
			printStatus(sn)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func printStatus(sn []model.TunnelStatus) {
	fmt.Printf("%-16s %-8s %-6s %-6s %-22s %-20s %-10s %-10s\n", "NAME", "STATE", "PORT", "PEERS", "ENDPOINT", "HANDSHAKE", "RX", "TX")
	for _, st := range sn {
		port := "-"
		if st.ListenPort > 0 {
			port = fmt.Sprint(st.ListenPort)
		}
		var hs *time.Time
		if !st.LastHandshake.IsZero() {
			hs = &st.LastHandshake
		}
		fmt.Printf("%-16s %-8s %-6s %-6d %-22s %-20s %-10d %-10d\n", st.Name, st.State, port, st.Peers, util.EmptyDash(st.Endpoint), formatTime(hs), st.RxBytes, st.TxBytes)
	}
}

func newEventsCmd(opts *options) *cobra.Command {
	var (
		name    string
		limit   int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the up/down outcome journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			evts, err := events.NewStore().Read(events.Query{Name: name, Limit: limit})
			if err != nil {
				return err
			}
			if evts == nil {
				evts = []events.Event{}
			}
			if jsonOut {
				return writeJSON(evts)
			}
			fmt.Printf("%-20s %-16s %-6s %-12s %s\n", "TIME", "NAME", "ACTION", "RESULT", "MESSAGE")
			for _, e := range evts {
				ts := e.Timestamp.Local()
				fmt.Printf("%-20s %-16s %-6s %-12s %s\n", ts.Format("2006-01-02 15:04:05"), util.EmptyDash(e.Name), e.Action, e.Result, e.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "only events for this tunnel")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of events (newest kept)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func newDoctorCmd(opts *options) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the local environment for common problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := doctor.Run(opts.cfg)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(report)
			}
			if len(report.Issues) == 0 {
				fmt.Println("no issues found")
				return nil
			}
			for _, issue := range report.Issues {
				fmt.Printf("[%s] %s %s: %s\n", strings.ToUpper(string(issue.Severity)), issue.Check, issue.Target, issue.Message)
				fmt.Printf("       -> %s\n", issue.Recommendation)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func newBundleCmd(opts *options) *cobra.Command {
	root := &cobra.Command{Use: "bundle", Short: "Manage named groups of tunnels"}

	var tunnels []string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create or replace a bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := bundle.Open()
			if err != nil {
				return err
			}
			b, err := file.Put(args[0], tunnels)
			if err != nil {
				return err
			}
			for _, name := range b.Missing(opts.store) {
				fmt.Fprintf(os.Stderr, "warning: tunnel not found: %s\n", name)
			}
			fmt.Printf("saved bundle %s (%d tunnels)\n", b.Name, len(b.Tunnels))
			return nil
		},
	}
	create.Flags().StringArrayVar(&tunnels, "tunnel", nil, "tunnel name (repeatable, kept in order)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List bundles",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := bundle.Open()
			if err != nil {
				return err
			}
			all, err := file.List()
			if err != nil {
				return err
			}
			fmt.Printf("%-20s %s\n", "BUNDLE", "TUNNELS")
			for _, b := range all {
				fmt.Printf("%-20s %s\n", b.Name, strings.Join(b.Tunnels, ", "))
			}
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := bundle.Open()
			if err != nil {
				return err
			}
			if err := file.Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted bundle %s\n", args[0])
			return nil
		},
	}

	root.AddCommand(create, list, del, newBundleRunCmd(opts, model.ActionUp), newBundleRunCmd(opts, model.ActionDown))
	return root
}

func newBundleRunCmd(opts *options, action model.Action) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " <name>",
		Short: fmt.Sprintf("Run wg-quick %s for every tunnel in a bundle", action),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := bundle.Open()
			if err != nil {
				return err
			}
			b, err := file.Get(args[0])
			if err != nil {
				return err
			}
			sum := bundle.Run(cmd.Context(), b, action, opts.store, opts.ctrl.Do)
			for _, o := range sum.Outcomes {
				fmt.Println(o.Message)
			}
			fmt.Println(sum.String())
			return nil
		},
	}
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return util.EmptyDash("")
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
