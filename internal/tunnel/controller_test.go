// Package tunnel tests verify that wg-quick results are folded into the fixed
// outcome messages, journaled, and recorded in the usage history.
//
// These tests use a fakeRunner implementation of the Runner interface so no
// wg-quick process (and no root) is needed. All tests isolate the journal and
// history files by setting XDG_CONFIG_HOME to a temporary directory.
package tunnel

import (
	"context"
	"errors"
	"os/exec"
	"sync"
	"testing"

	"github.com/treykane/wg-manager/internal/events"
	"github.com/treykane/wg-manager/internal/history"
	"github.com/treykane/wg-manager/internal/model"
	"github.com/treykane/wg-manager/internal/wgquick"
)

// fakeRunner returns a canned result and records every call.
type fakeRunner struct {
	mu    sync.Mutex
	res   wgquick.Result
	err   error
	calls []string
}

func (f *fakeRunner) Run(ctx context.Context, action model.Action, name string) (wgquick.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, string(action)+" "+name)
	return f.res, f.err
}

func TestControllerMessages(t *testing.T) {
	tests := []struct {
		name   string
		runner *fakeRunner
		action model.Action
		want   string
		result model.Result
	}{
		{"up success", &fakeRunner{res: wgquick.Result{Exited: true}}, model.ActionUp, "Started wireguard on interface wg0!", model.ResultSucceeded},
		{"up non-zero", &fakeRunner{res: wgquick.Result{Exited: true, ExitCode: 1}}, model.ActionUp, "Fail to start wireguard on interface wg0!", model.ResultFailed},
		{"up exec error", &fakeRunner{err: exec.ErrNotFound}, model.ActionUp, "Fail to execute start command!", model.ResultExecFailed},
		{"down success", &fakeRunner{res: wgquick.Result{Exited: true}}, model.ActionDown, "Stopped wireguard on interface wg0!", model.ResultSucceeded},
		{"down non-zero", &fakeRunner{res: wgquick.Result{Exited: true, ExitCode: 2}}, model.ActionDown, "Fail to stop wireguard on interface wg0!", model.ResultFailed},
		{"down exec error", &fakeRunner{err: errors.New("fork failed")}, model.ActionDown, "Fail to execute stop command!", model.ResultExecFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CONFIG_HOME", t.TempDir())
			c := NewController(tt.runner)
			out := c.Do(context.Background(), tt.action, "wg0")
			if out.Message != tt.want {
				t.Fatalf("message: want %q, got %q", tt.want, out.Message)
			}
			if out.Result != tt.result {
				t.Fatalf("result: want %s, got %s", tt.result, out.Result)
			}
			if len(tt.runner.calls) != 1 || tt.runner.calls[0] != string(tt.action)+" wg0" {
				t.Fatalf("unexpected runner calls: %v", tt.runner.calls)
			}
		})
	}
}

func TestControllerJournalsOutcomes(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	c := NewController(&fakeRunner{res: wgquick.Result{Exited: true}})
	c.BringUp(context.Background(), "home")
	c.BringDown(context.Background(), "home")

	evts, err := events.NewStore().Read(events.Query{Name: "home"})
	if err != nil {
		t.Fatal(err)
	}
	if len(evts) != 2 {
		t.Fatalf("expected 2 events, got %+v", evts)
	}
	if evts[0].Action != model.ActionUp || evts[1].Action != model.ActionDown {
		t.Fatalf("unexpected event order: %+v", evts)
	}
}

func TestControllerTouchesHistoryOnlyOnSuccessfulUp(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	NewController(&fakeRunner{res: wgquick.Result{Exited: true, ExitCode: 1}}).BringUp(context.Background(), "broken")
	NewController(&fakeRunner{res: wgquick.Result{Exited: true}}).BringDown(context.Background(), "stopped")
	NewController(&fakeRunner{res: wgquick.Result{Exited: true}}).BringUp(context.Background(), "home")

	used, err := history.LastUsed()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := used["broken"]; ok {
		t.Fatal("failed bring-up should not be recorded")
	}
	if _, ok := used["stopped"]; ok {
		t.Fatal("bring-down should not be recorded")
	}
	if used["home"].IsZero() {
		t.Fatalf("expected home in history, got %+v", used)
	}
}

// failingJournal makes sure journal errors never change the outcome.
type failingJournal struct{}

func (failingJournal) Append(events.Event) error { return errors.New("disk full") }

func TestControllerIgnoresJournalErrors(t *testing.T) {
	c := &Controller{runner: &fakeRunner{res: wgquick.Result{Exited: true}}, journal: failingJournal{}}
	out := c.BringUp(context.Background(), "wg0")
	if !out.Succeeded() {
		t.Fatalf("journal failure changed outcome: %+v", out)
	}
}

func TestControllerAllowsConcurrentRequests(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	r := &fakeRunner{res: wgquick.Result{Exited: true}}
	c := NewController(r)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.BringUp(context.Background(), "wg0")
		}()
	}
	wg.Wait()
	if len(r.calls) != 4 {
		t.Fatalf("expected every request to run, got %d", len(r.calls))
	}
}
