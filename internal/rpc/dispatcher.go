// Package rpc routes client calls of the form [target, verb, args...] to the
// core service and wraps every outcome in an Envelope.
//
// The target is either a registered table name or the literal "command". A
// table target takes one of the table verbs; "command" takes one of the batch
// operations. Errors and panics raised anywhere below Handle are caught here
// and reported in the envelope, never propagated to the caller.
package rpc

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/JonMunkholm/tutoradmin/internal/core"
	"github.com/JonMunkholm/tutoradmin/internal/logging"
)

//go:generate mockgen -source=dispatcher.go -destination=mock_service.go -package=rpc

// Service is the part of core.Service the dispatcher drives.
type Service interface {
	RetrieveAll(ctx context.Context, table string) (core.RecordCollection, error)
	RetrieveMultiple(ctx context.Context, tables []string) (map[string]core.RecordCollection, error)
	Create(ctx context.Context, table string, rec core.Record) (core.Record, error)
	Update(ctx context.Context, table string, rec core.Record) error
	Delete(ctx context.Context, table string, id int64) error
	Submit(ctx context.Context, form string, rec core.Record) (core.Record, error)
	RebuildHeaders(ctx context.Context, table string) error
	SyncDataFromForms(ctx context.Context) (core.SyncResult, error)
	RecalculateAttendance(ctx context.Context) (core.AttendanceResult, error)
	GenerateSchedule(ctx context.Context) ([]core.ScheduleSlot, error)
}

var _ Service = (*core.Service)(nil)

// Envelope is the reply to every call.
type Envelope struct {
	Error   bool   `json:"error"`
	Val     any    `json:"val"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// CommandTarget selects the batch operations instead of a table.
const CommandTarget = "command"

// Batch operation names.
const (
	CmdSyncDataFromForms     = "syncDataFromForms"
	CmdRecalculateAttendance = "recalculateAttendance"
	CmdGenerateSchedule      = "generateSchedule"
	CmdRetrieveMultiple      = "retrieveMultiple"
)

// Table verbs.
const (
	VerbRetrieveAll    = "retrieveAll"
	VerbCreate         = "create"
	VerbUpdate         = "update"
	VerbDelete         = "delete"
	VerbSubmit         = "submit"
	VerbRebuildHeaders = "rebuildHeaders"
)

// Dispatcher resolves call paths against a Service.
type Dispatcher struct {
	svc Service
}

// New creates a Dispatcher.
func New(svc Service) *Dispatcher {
	return &Dispatcher{svc: svc}
}

// Handle runs one call. It never panics and never returns a Go error; any
// failure comes back as an envelope with Error set and the cause's text in
// Message.
func (d *Dispatcher) Handle(ctx context.Context, path []any) (env Envelope) {
	start := time.Now()
	target, verb := labels(path)

	defer func() {
		if p := recover(); p != nil {
			env = failure(fmt.Errorf("panic in %s.%s: %v", target, verb, p))
		}

		outcome := "ok"
		if env.Error {
			outcome = "error"
			logging.WithFields(ctx, "target", target, "verb", verb).
				Warn("rpc call failed", "error", env.Message, "code", env.Code)
		}
		core.RPCRequests.WithLabelValues(target, verb, outcome).Inc()
		core.RPCDuration.WithLabelValues(target).Observe(time.Since(start).Seconds())
	}()

	val, err := d.dispatch(ctx, path)
	if err != nil {
		return failure(err)
	}
	return Envelope{Val: val}
}

func (d *Dispatcher) dispatch(ctx context.Context, path []any) (any, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("empty call path: %w", core.ErrBadArgument)
	}
	target, ok := path[0].(string)
	if !ok {
		return nil, fmt.Errorf("call target %v is not a name: %w", path[0], core.ErrBadArgument)
	}
	if len(path) < 2 {
		return nil, fmt.Errorf("call on %s names no operation: %w", target, core.ErrUnknownCommand)
	}
	verb, ok := path[1].(string)
	if !ok {
		return nil, fmt.Errorf("operation %v is not a name: %w", path[1], core.ErrUnknownCommand)
	}
	args := path[2:]

	if target == CommandTarget {
		return d.command(ctx, verb, args)
	}
	if _, err := core.Lookup(target); err != nil {
		return nil, err
	}
	return d.tableVerb(ctx, target, verb, args)
}

func (d *Dispatcher) command(ctx context.Context, name string, args []any) (any, error) {
	switch name {
	case CmdSyncDataFromForms:
		return d.svc.SyncDataFromForms(ctx)
	case CmdRecalculateAttendance:
		return d.svc.RecalculateAttendance(ctx)
	case CmdGenerateSchedule:
		return d.svc.GenerateSchedule(ctx)
	case CmdRetrieveMultiple:
		names, err := stringList(args)
		if err != nil {
			return nil, err
		}
		return d.svc.RetrieveMultiple(ctx, names)
	default:
		return nil, fmt.Errorf("command %q: %w", name, core.ErrUnknownCommand)
	}
}

func (d *Dispatcher) tableVerb(ctx context.Context, table, verb string, args []any) (any, error) {
	switch verb {
	case VerbRetrieveAll:
		return d.svc.RetrieveAll(ctx, table)
	case VerbCreate:
		rec, err := recordArg(args)
		if err != nil {
			return nil, err
		}
		return d.svc.Create(ctx, table, rec)
	case VerbUpdate:
		rec, err := recordArg(args)
		if err != nil {
			return nil, err
		}
		return nil, d.svc.Update(ctx, table, rec)
	case VerbDelete:
		id, err := idArg(args)
		if err != nil {
			return nil, err
		}
		return nil, d.svc.Delete(ctx, table, id)
	case VerbSubmit:
		rec, err := recordArg(args)
		if err != nil {
			return nil, err
		}
		return d.svc.Submit(ctx, table, rec)
	case VerbRebuildHeaders:
		return nil, d.svc.RebuildHeaders(ctx, table)
	default:
		return nil, fmt.Errorf("%s.%s: %w", table, verb, core.ErrUnknownCommand)
	}
}

func failure(err error) Envelope {
	return Envelope{
		Error:   true,
		Message: err.Error(),
		Code:    core.MapError(err).Code,
	}
}

// labels picks metric labels for a path. Unregistered targets collapse to
// "unknown" so client typos cannot grow the label set.
func labels(path []any) (target, verb string) {
	target, verb = "unknown", "unknown"
	if len(path) > 0 {
		if s, ok := path[0].(string); ok {
			if _, known := core.Get(s); known || s == CommandTarget {
				target = s
			}
		}
	}
	if len(path) > 1 && target != "unknown" {
		if s, ok := path[1].(string); ok && knownVerb(s) {
			verb = s
		}
	}
	return target, verb
}

func knownVerb(s string) bool {
	switch s {
	case CmdSyncDataFromForms, CmdRecalculateAttendance, CmdGenerateSchedule, CmdRetrieveMultiple,
		VerbRetrieveAll, VerbCreate, VerbUpdate, VerbDelete, VerbSubmit, VerbRebuildHeaders:
		return true
	}
	return false
}

func recordArg(args []any) (core.Record, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("want one record argument, got %d: %w", len(args), core.ErrBadArgument)
	}
	switch v := args[0].(type) {
	case core.Record:
		return v, nil
	case map[string]any:
		return core.Record(v), nil
	default:
		return nil, fmt.Errorf("record argument is %T: %w", args[0], core.ErrBadArgument)
	}
}

func idArg(args []any) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("want one id argument, got %d: %w", len(args), core.ErrBadArgument)
	}
	switch v := args[0].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || v < 0 {
			return 0, fmt.Errorf("id %v is not a whole number: %w", v, core.ErrBadArgument)
		}
		return int64(v), nil
	default:
		return 0, fmt.Errorf("id argument is %T: %w", args[0], core.ErrBadArgument)
	}
}

// stringList accepts either a single list argument or the names spread as
// separate arguments.
func stringList(args []any) ([]string, error) {
	if len(args) == 1 {
		switch v := args[0].(type) {
		case []string:
			return v, nil
		case []any:
			args = v
		}
	}
	names := make([]string, 0, len(args))
	for _, a := range args {
		s, ok := a.(string)
		if !ok {
			return nil, fmt.Errorf("table name %v is not a string: %w", a, core.ErrBadArgument)
		}
		names = append(names, s)
	}
	return names, nil
}
