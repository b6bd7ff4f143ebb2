package core

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Operation names recorded in the operation log.
type Operation string

const (
	OpCreate                Operation = "create"
	OpUpdate                Operation = "update"
	OpDelete                Operation = "delete"
	OpSubmit                Operation = "submit"
	OpRebuildHeaders        Operation = "rebuildHeaders"
	OpSyncDataFromForms     Operation = "syncDataFromForms"
	OpRecalculateAttendance Operation = "recalculateAttendance"
)

// Severity of an operation log entry.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// OperationEntry is one row of the operation log.
type OperationEntry struct {
	RunID     string
	Operation Operation
	Target    string
	Args      any
	Result    string
}

// determineSeverity returns the severity for an operation.
func determineSeverity(op Operation) Severity {
	switch op {
	case OpDelete:
		return SeverityHigh
	case OpRecalculateAttendance, OpSyncDataFromForms:
		return SeverityMedium
	case OpRebuildHeaders:
		return SeverityCritical
	default:
		return SeverityLow
	}
}

// NewRunID returns a fresh run id. A batch operation writes one entry per
// table it touched, all under the same run id; single-record operations get
// a run id of their own.
func NewRunID() string {
	return uuid.NewString()
}

// logOperation appends an entry to the operation log table when it is
// registered. Failures are logged and never fail the operation itself.
func (s *Service) logOperation(ctx context.Context, sess *Session, entry OperationEntry) {
	if _, ok := Get(TableOperationLog); !ok {
		return
	}
	if entry.RunID == "" {
		entry.RunID = NewRunID()
	}

	t, err := sess.Table(ctx, TableOperationLog)
	if err == nil {
		_, err = t.Create(ctx, Record{
			"id":        int64(-1),
			"date":      UnsetDate,
			"runId":     entry.RunID,
			"operation": string(entry.Operation),
			"severity":  string(determineSeverity(entry.Operation)),
			"target":    entry.Target,
			"args":      entry.Args,
			"result":    entry.Result,
			"ipAddress": IPAddressFromContext(ctx),
		})
	}
	if err != nil {
		slog.Warn("operation log write failed",
			"operation", entry.Operation,
			"target", entry.Target,
			"error", err,
		)
	}
}
