package sync

import (
	"context"
	"fmt"
	"sort"
	"time"

	"aegis/internal/shared/logger"
)

// Engine computes and applies the minimal diff between a user's desired
// group set and the groups their remote account actually holds. There is
// exactly one engine; per-service behavior lives entirely in the Adapter.
type Engine struct {
	logger logger.Interface
}

func NewEngine(log logger.Interface) *Engine {
	return &Engine{logger: log.Named("reconcile")}
}

// Reconcile fetches the remote group set and applies desired-minus-remote
// adds and remote-minus-desired removes. Comparison happens on sanitized
// names to avoid churn against services with restricted character sets.
// Each add/remove is independent: a failure is recorded in the outcome and
// the rest of the diff still runs. A fetch failure aborts the run and is
// returned tagged with its failure kind.
func (e *Engine) Reconcile(ctx context.Context, adapter Adapter, remoteID string, desired []string) (*Outcome, error) {
	outcome := &Outcome{
		Service:   adapter.Name(),
		RemoteID:  remoteID,
		StartedAt: time.Now().UTC(),
	}

	want := make(map[string]struct{}, len(desired))
	for _, name := range desired {
		sanitized := adapter.SanitizeGroupName(name)
		if sanitized == "" {
			return nil, Validation(fmt.Errorf("group name %q sanitizes to empty for service %s", name, adapter.Name()))
		}
		want[sanitized] = struct{}{}
	}

	remote, err := adapter.FetchGroups(ctx, remoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote groups: %w", err)
	}
	have := make(map[string]struct{}, len(remote))
	for _, name := range remote {
		have[adapter.SanitizeGroupName(name)] = struct{}{}
	}

	var toAdd, toRemove, unchanged []string
	for name := range want {
		if _, ok := have[name]; ok {
			unchanged = append(unchanged, name)
		} else {
			toAdd = append(toAdd, name)
		}
	}
	for name := range have {
		if _, ok := want[name]; !ok {
			toRemove = append(toRemove, name)
		}
	}
	sort.Strings(toAdd)
	sort.Strings(toRemove)
	sort.Strings(unchanged)

	for _, name := range unchanged {
		outcome.Results = append(outcome.Results, GroupResult{Group: name, Action: ActionUnchanged})
	}

	for _, name := range toAdd {
		if err := e.addToGroup(ctx, adapter, remoteID, name); err != nil {
			outcome.Results = append(outcome.Results, GroupResult{Group: name, Action: ActionFailed, Error: err.Error()})
			e.logger.Warnw("group add failed",
				"service", adapter.Name(),
				"remote_id", remoteID,
				"group", name,
				"error", err,
			)
			continue
		}
		outcome.Results = append(outcome.Results, GroupResult{Group: name, Action: ActionAdded})
	}

	for _, name := range toRemove {
		if err := adapter.RemoveFromGroup(ctx, remoteID, name); err != nil {
			outcome.Results = append(outcome.Results, GroupResult{Group: name, Action: ActionFailed, Error: err.Error()})
			e.logger.Warnw("group remove failed",
				"service", adapter.Name(),
				"remote_id", remoteID,
				"group", name,
				"error", err,
			)
			continue
		}
		outcome.Results = append(outcome.Results, GroupResult{Group: name, Action: ActionRemoved})
	}

	outcome.FinishedAt = time.Now().UTC()

	if !outcome.Empty() {
		e.logger.Infow("reconciliation applied",
			"service", adapter.Name(),
			"remote_id", remoteID,
			"added", outcome.Added(),
			"removed", outcome.Removed(),
			"failed", outcome.Failed(),
		)
	}

	return outcome, nil
}

// addToGroup creates the remote group if needed, then adds the account. A
// creation failure aborts only this group's add.
func (e *Engine) addToGroup(ctx context.Context, adapter Adapter, remoteID, name string) error {
	if err := adapter.EnsureGroup(ctx, name); err != nil {
		return fmt.Errorf("failed to ensure group exists: %w", err)
	}
	if err := adapter.AddToGroup(ctx, remoteID, name); err != nil {
		return fmt.Errorf("failed to add to group: %w", err)
	}
	return nil
}
