// Package syncstatus defines the per-record sync flag shared by every
// transactional entity. Records are written locally as Pending, flipped to
// Synced by the sync orchestrator once they are durably reflected remotely,
// and to Failed when a push was attempted and rejected. Any local edit
// resets the record to Pending.
package syncstatus

// Status is the tri-state sync flag carried by sales and expenses.
type Status string

const (
	Pending Status = "pending"
	Synced  Status = "synced"
	Failed  Status = "failed"
)

// IsSynced reports whether the record needs no further push.
func (s Status) IsSynced() bool { return s == Synced }
