package sync

import "time"

// Action is what the engine did (or failed to do) for one group.
type Action string

const (
	ActionAdded     Action = "added"
	ActionRemoved   Action = "removed"
	ActionUnchanged Action = "unchanged"
	ActionFailed    Action = "failed"
)

// GroupResult reports the outcome for a single group within one
// reconciliation. Error is set only for ActionFailed.
type GroupResult struct {
	Group  string `json:"group"`
	Action Action `json:"action"`
	Error  string `json:"error,omitempty"`
}

// Outcome is the full result of one reconciliation run. Individual add and
// remove operations are independent: some may fail while others succeed.
type Outcome struct {
	Service    string        `json:"service"`
	RemoteID   string        `json:"remote_id"`
	Results    []GroupResult `json:"results"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

func (o *Outcome) count(a Action) int {
	n := 0
	for _, r := range o.Results {
		if r.Action == a {
			n++
		}
	}
	return n
}

func (o *Outcome) Added() int     { return o.count(ActionAdded) }
func (o *Outcome) Removed() int   { return o.count(ActionRemoved) }
func (o *Outcome) Unchanged() int { return o.count(ActionUnchanged) }
func (o *Outcome) Failed() int    { return o.count(ActionFailed) }

// HasFailures reports whether any individual operation failed.
func (o *Outcome) HasFailures() bool { return o.Failed() > 0 }

// Empty reports a no-op reconciliation: nothing was added, removed or
// failed. Reconciling twice in a row with no intervening change must yield
// an empty outcome the second time.
func (o *Outcome) Empty() bool {
	return o.Added() == 0 && o.Removed() == 0 && o.Failed() == 0
}
