package bundle

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/treykane/wg-manager/internal/model"
)

// DoFunc runs one wg-quick action. (*tunnel.Controller).Do satisfies it.
type DoFunc func(ctx context.Context, action model.Action, name string) model.Outcome

// Summary collects the outcomes of one bundle run.
type Summary struct {
	Bundle   string          `json:"bundle"`
	Action   model.Action    `json:"action"`
	Outcomes []model.Outcome `json:"outcomes"`
}

// Failed returns the names whose action did not succeed.
func (s Summary) Failed() []string {
	var out []string
	for _, o := range s.Outcomes {
		if !o.Succeeded() {
			out = append(out, o.Name)
		}
	}
	return out
}

// String renders the one-line summary printed after a run.
func (s Summary) String() string {
	failed := s.Failed()
	line := fmt.Sprintf("bundle %s summary: %d/%d %s succeeded", s.Bundle, len(s.Outcomes)-len(failed), len(s.Outcomes), s.Action)
	if len(failed) > 0 {
		line += "; failed: " + strings.Join(failed, ", ")
	}
	return line
}

// Run applies action to every tunnel in b. Tunnels come up in listed order
// and go down in reverse. A tunnel with no configuration in c is reported as
// failed without running wg-quick, and a failure does not stop the rest.
func Run(ctx context.Context, b Bundle, action model.Action, c Catalog, do DoFunc) Summary {
	tunnels := slices.Clone(b.Tunnels)
	if action == model.ActionDown {
		slices.Reverse(tunnels)
	}
	sum := Summary{Bundle: b.Name, Action: action}
	for _, name := range tunnels {
		if ctx.Err() != nil {
			break
		}
		if !c.Contains(name) {
			sum.Outcomes = append(sum.Outcomes, model.Outcome{
				Name:    name,
				Action:  action,
				Result:  model.ResultFailed,
				Message: "tunnel not found: " + name,
			})
			continue
		}
		sum.Outcomes = append(sum.Outcomes, do(ctx, action, name))
	}
	return sum
}
