// Package core provides the record engine and batch operations of the
// tutoring office backend.
//
// The package is independent of any transport. The RPC dispatcher, the web
// server and the CLI all drive it through [Service].
//
// # Architecture
//
//   - Field Codec: [Field.Parse] and [Field.Serialize] convert between stored
//     cells and typed values.
//   - Table Registry: schemas are registered at init time with [Register]
//     and looked up with [Lookup].
//   - Record Table: [Table] maps a sheet of rows to records keyed by id
//     (entities) or submission date (forms).
//   - ID Generator: [IDGenerator] issues strictly increasing millisecond ids.
//   - Form Sync: [SyncForm] imports new form submissions into entity tables.
//   - Attendance: [Reconciler] folds the attendance log and day statuses into
//     per-student attendance maps.
//
// # Table Registry
//
//	core.Register(core.TableInfo{
//	    Name: "matchings",
//	    Fields: []core.Field{
//	        {Name: "id", Type: core.FieldNumber},
//	        {Name: "date", Type: core.FieldDate},
//	        {Name: "learner", Type: core.FieldNumber},
//	        {Name: "tutor", Type: core.FieldNumber},
//	    },
//	})
//
// # Concurrency
//
// Every table operation reads the whole sheet, mutates it and writes it back
// without isolation. [Service] holds a [WriteGate] around each call so only
// one request or job touches the store at a time.
//
// # Error Handling
//
// Failures wrap package sentinels such as [ErrNotFound] in an [Error] and can
// be tested with errors.Is. [MapError] turns them into coded user messages.
package core
