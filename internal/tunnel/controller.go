// Package tunnel brings WireGuard tunnels up and down and reports their live state.
package tunnel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/treykane/wg-manager/internal/events"
	"github.com/treykane/wg-manager/internal/history"
	"github.com/treykane/wg-manager/internal/model"
	"github.com/treykane/wg-manager/internal/wgquick"
)

// Runner abstracts wg-quick process execution for testing.
type Runner interface {
	Run(ctx context.Context, action model.Action, name string) (wgquick.Result, error)
}

// Journal records outcomes. *events.Store satisfies it.
type Journal interface {
	Append(evt events.Event) error
}

// Controller turns up/down requests into outcome messages.
//
// It holds no per-tunnel state: two requests for the same name may run
// concurrently and each reports its own outcome. The real tunnel state is
// owned by the kernel and wg-quick.
type Controller struct {
	runner  Runner
	journal Journal
	touch   func(name string) error
}

// NewController creates a controller that journals to the default events
// store and records successful bring-ups in the usage history.
func NewController(runner Runner) *Controller {
	return &Controller{
		runner:  runner,
		journal: events.NewStore(),
		touch:   history.Touch,
	}
}

// BringUp runs `wg-quick up name`.
func (c *Controller) BringUp(ctx context.Context, name string) model.Outcome {
	return c.Do(ctx, model.ActionUp, name)
}

// BringDown runs `wg-quick down name`.
func (c *Controller) BringDown(ctx context.Context, name string) model.Outcome {
	return c.Do(ctx, model.ActionDown, name)
}

// Do runs wg-quick for action and always returns an outcome; failures are
// folded into the outcome message rather than returned as errors.
func (c *Controller) Do(ctx context.Context, action model.Action, name string) model.Outcome {
	res, err := c.runner.Run(ctx, action, name)
	out := model.Outcome{Name: name, Action: action}
	switch {
	case err != nil:
		out.Result = model.ResultExecFailed
		slog.Debug("wg-quick could not be executed", "action", action, "name", name, "error", err)
	case res.Success():
		out.Result = model.ResultSucceeded
	default:
		out.Result = model.ResultFailed
		slog.Debug("wg-quick exited non-zero", "action", action, "name", name, "code", res.ExitCode, "output", string(res.Output))
	}
	out.Message = Message(action, out.Result, name)
	c.record(out)
	return out
}

func (c *Controller) record(out model.Outcome) {
	if c.journal != nil {
		if err := c.journal.Append(events.FromOutcome(out)); err != nil {
			slog.Warn("failed to journal tunnel outcome", "name", out.Name, "error", err)
		}
	}
	if c.touch != nil && out.Action == model.ActionUp && out.Succeeded() {
		if err := c.touch(out.Name); err != nil {
			slog.Warn("failed to record tunnel history", "name", out.Name, "error", err)
		}
	}
}

// Message renders the fixed outcome text shown in the console.
func Message(action model.Action, result model.Result, name string) string {
	verb, past := "start", "Started"
	if action == model.ActionDown {
		verb, past = "stop", "Stopped"
	}
	switch result {
	case model.ResultSucceeded:
		return fmt.Sprintf("%s wireguard on interface %s!", past, name)
	case model.ResultFailed:
		return fmt.Sprintf("Fail to %s wireguard on interface %s!", verb, name)
	default:
		return fmt.Sprintf("Fail to execute %s command!", verb)
	}
}
