// Package wgquick runs the system wg-quick binary to bring WireGuard
// interfaces up and down.
//
// This package does NOT configure interfaces itself. It shells out to
// wg-quick, which means it inherits everything wg-quick does from the
// configuration file (addresses, routes, DNS, PostUp hooks) without
// reimplementing any of that logic.
//
// Security note: the tunnel name is passed via exec.Command's argv (never
// through a shell), so names containing shell metacharacters cannot inject
// commands.
package wgquick

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/treykane/wg-manager/internal/model"
	"github.com/treykane/wg-manager/internal/util"
)

// Result is what one wg-quick run reports back.
//
// Fields:
//   - Exited: true when the process ran and returned an exit status, whether
//     zero or not. False means the command could not be executed at all.
//   - ExitCode: the process exit status when Exited is true.
//   - Output: combined stdout and stderr. wg-quick prints the ip/wg commands it
//     runs and any error text here; callers log it but do not show it.
type Result struct {
	Exited   bool
	ExitCode int
	Output   []byte
}

// Success reports a zero exit status.
func (r Result) Success() bool {
	return r.Exited && r.ExitCode == 0
}

// Client launches wg-quick processes.
//
// Client is stateless and safe for concurrent use: each call creates an
// independent exec.Cmd, so several up/down requests may run at once.
type Client struct {
	binary string
}

// New creates a client for the given wg-quick binary. An empty binary
// falls back to "wg-quick" resolved through PATH.
func New(binary string) *Client {
	if binary == "" {
		binary = util.DefaultQuickBinary
	}
	return &Client{binary: binary}
}

// Binary returns the configured wg-quick path or name.
func (c *Client) Binary() string { return c.binary }

// EnsureBinary checks that the configured wg-quick binary can be resolved.
//
// This is used by the doctor command to give a clear message early, instead
// of every start/stop failing with "Fail to execute ... command!".
func (c *Client) EnsureBinary() error {
	if _, err := exec.LookPath(c.binary); err != nil {
		return fmt.Errorf("%s binary not found in PATH", c.binary)
	}
	return nil
}

// BuildArgs constructs the wg-quick argument vector for an action without
// starting a process.
//
// Example output: ["up", "wg0"]
func (c *Client) BuildArgs(action model.Action, name string) []string {
	return []string{string(action), name}
}

// Run executes wg-quick for action and name and waits for it to exit.
//
// The ctx parameter is passed to exec.CommandContext; cancelling it kills the
// process. The TUI passes context.Background() (no timeout), the CLI passes
// the command context so Ctrl+C interrupts it.
//
// The returned error is non-nil only when the process could not be run or
// waited on. A non-zero exit is reported through Result, not as an error.
func (c *Client) Run(ctx context.Context, action model.Action, name string) (Result, error) {
	cmd := exec.CommandContext(ctx, c.binary, c.BuildArgs(action, name)...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.Stdin = nil

	err := cmd.Run()
	if err == nil {
		return Result{Exited: true, Output: out.Bytes()}, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Result{Exited: true, ExitCode: exitErr.ExitCode(), Output: out.Bytes()}, nil
	}
	return Result{Output: out.Bytes()}, err
}
