package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Options configures a Service. Zero values pick sensible defaults.
type Options struct {
	Now       func() time.Time // Clock for ids and date stamps (default: time.Now)
	Location  *time.Location   // Zone attendance days are rounded in (default: time.Local)
	WriteWait time.Duration    // Longest wait for the write gate (default: 30s)
}

// Service composes the table engine and the batch operations over one store.
// Every public method runs under the write gate.
type Service struct {
	store      RowStore
	ids        *IDGenerator
	now        func() time.Time
	reconciler *Reconciler
	gate       *WriteGate
}

// NewService creates a new Service instance.
func NewService(store RowStore, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:      store,
		ids:        NewIDGenerator(opts.Now),
		now:        opts.Now,
		reconciler: NewReconciler(opts.Location),
		gate:       NewWriteGate(opts.WriteWait),
	}
}

// Gate returns the write gate, for shutdown draining and status.
func (s *Service) Gate() *WriteGate {
	return s.gate
}

// withSession runs fn holding the write gate with a fresh table cache.
func (s *Service) withSession(ctx context.Context, op string, fn func(*Session) error) error {
	if err := s.gate.Acquire(ctx, op); err != nil {
		return err
	}
	defer s.gate.Release()
	return fn(NewSession(s.store, s.ids, s.now))
}

// InitSheets writes the header row of every registered table whose sheet is
// empty. Returns the number of sheets initialised.
func (s *Service) InitSheets(ctx context.Context) (int, error) {
	initialised := 0
	err := s.withSession(ctx, "initSheets", func(sess *Session) error {
		for _, info := range All() {
			n, err := s.store.GetColumnCount(ctx, info.Sheet)
			if err != nil {
				return fmt.Errorf("table %s: column count: %w", info.Name, err)
			}
			if n > 0 {
				continue
			}
			if err := NewTable(info, s.store, s.ids, s.now).RebuildHeaders(ctx); err != nil {
				return err
			}
			initialised++
		}
		return nil
	})
	return initialised, err
}

// RetrieveAll returns every record of a table.
func (s *Service) RetrieveAll(ctx context.Context, table string) (RecordCollection, error) {
	var out RecordCollection
	err := s.withSession(ctx, "retrieveAll", func(sess *Session) error {
		t, err := sess.Table(ctx, table)
		if err != nil {
			return err
		}
		out, err = t.RetrieveAll(ctx)
		return err
	})
	return out, err
}

// RetrieveMultiple returns the records of several tables keyed by table name.
func (s *Service) RetrieveMultiple(ctx context.Context, tables []string) (map[string]RecordCollection, error) {
	out := make(map[string]RecordCollection, len(tables))
	err := s.withSession(ctx, "retrieveMultiple", func(sess *Session) error {
		for _, name := range tables {
			t, err := sess.Table(ctx, name)
			if err != nil {
				return err
			}
			recs, err := t.RetrieveAll(ctx)
			if err != nil {
				return err
			}
			out[name] = recs
		}
		return nil
	})
	return out, err
}

// Create validates and appends a record to an entity table.
func (s *Service) Create(ctx context.Context, table string, rec Record) (Record, error) {
	var out Record
	err := s.withSession(ctx, string(OpCreate), func(sess *Session) error {
		t, err := sess.Table(ctx, table)
		if err != nil {
			return err
		}
		if err := ValidateRecord(t.Info(), rec).Err(); err != nil {
			return err
		}
		out, err = t.Create(ctx, rec)
		if err != nil {
			return err
		}
		s.logOperation(ctx, sess, OperationEntry{
			Operation: OpCreate,
			Target:    table,
			Args:      out,
			Result:    "id " + Key(out.ID()),
		})
		return nil
	})
	return out, err
}

// Update validates and rewrites a record of an entity table.
func (s *Service) Update(ctx context.Context, table string, rec Record) error {
	return s.withSession(ctx, string(OpUpdate), func(sess *Session) error {
		t, err := sess.Table(ctx, table)
		if err != nil {
			return err
		}
		if err := ValidateRecord(t.Info(), rec).Err(); err != nil {
			return err
		}
		if err := t.Update(ctx, rec); err != nil {
			return err
		}
		s.logOperation(ctx, sess, OperationEntry{
			Operation: OpUpdate,
			Target:    table,
			Args:      rec,
			Result:    "id " + Key(rec.ID()),
		})
		return nil
	})
}

// Delete removes a record from an entity table.
func (s *Service) Delete(ctx context.Context, table string, id int64) error {
	return s.withSession(ctx, string(OpDelete), func(sess *Session) error {
		t, err := sess.Table(ctx, table)
		if err != nil {
			return err
		}
		if err := t.Delete(ctx, id); err != nil {
			return err
		}
		s.logOperation(ctx, sess, OperationEntry{
			Operation: OpDelete,
			Target:    table,
			Args:      map[string]any{"id": id},
			Result:    "deleted",
		})
		return nil
	})
}

// Submit appends a submission to a form table.
func (s *Service) Submit(ctx context.Context, form string, rec Record) (Record, error) {
	var out Record
	err := s.withSession(ctx, string(OpSubmit), func(sess *Session) error {
		t, err := sess.Table(ctx, form)
		if err != nil {
			return err
		}
		if err := ValidateRecord(t.Info(), rec).Err(); err != nil {
			return err
		}
		out, err = t.Submit(ctx, rec)
		if err != nil {
			return err
		}
		s.logOperation(ctx, sess, OperationEntry{
			Operation: OpSubmit,
			Target:    form,
			Args:      out,
			Result:    "date " + Key(out.Date()),
		})
		return nil
	})
	return out, err
}

// RebuildHeaders rewrites the header row of a table. It skips the column
// count check so it can repair a drifted sheet.
func (s *Service) RebuildHeaders(ctx context.Context, table string) error {
	return s.withSession(ctx, string(OpRebuildHeaders), func(sess *Session) error {
		info, err := Lookup(table)
		if err != nil {
			return err
		}
		if err := NewTable(info, s.store, s.ids, s.now).RebuildHeaders(ctx); err != nil {
			return err
		}
		slog.Warn("table headers rebuilt", "table", table)
		s.logOperation(ctx, sess, OperationEntry{Operation: OpRebuildHeaders, Target: table, Result: "ok"})
		return nil
	})
}

// SyncResult counts the records created per form.
type SyncResult struct {
	Created map[string]int `json:"created"`
	Total   int            `json:"total"`
}

// SyncDataFromForms imports new submissions from every form table.
// Tutor registrations are synced before attendance forms so that a new
// tutor's attendance resolves in the same run.
func (s *Service) SyncDataFromForms(ctx context.Context) (SyncResult, error) {
	result := SyncResult{Created: make(map[string]int)}
	start := time.Now()

	err := s.withSession(ctx, string(OpSyncDataFromForms), func(sess *Session) error {
		plan := []struct {
			form, target string
			transform    func() (Transform, error)
		}{
			{TableRequestForm, TableRequestSubmissions, static(requestSubmissionFromForm)},
			{TableSpecialRequestForm, TableRequestSubmissions, static(specialRequestFromForm)},
			{TableTutorRegistrationForm, TableTutors, static(tutorFromRegistration)},
			{TableAttendanceForm, TableAttendanceLog, func() (Transform, error) {
				tutors, learners, err := s.loadStudents(ctx, sess)
				if err != nil {
					return nil, err
				}
				return attendanceLogFromForm(tutors, learners), nil
			}},
		}

		runID := NewRunID()
		for _, step := range plan {
			form, err := sess.Table(ctx, step.form)
			if err != nil {
				return err
			}
			target, err := sess.Table(ctx, step.target)
			if err != nil {
				return err
			}
			transform, err := step.transform()
			if err != nil {
				return err
			}
			n, err := SyncForm(ctx, form, target, transform)
			result.Created[step.form] += n
			result.Total += n
			if err != nil {
				return err
			}
			if n > 0 {
				s.logOperation(ctx, sess, OperationEntry{
					RunID:     runID,
					Operation: OpSyncDataFromForms,
					Target:    step.form,
					Args:      map[string]any{"into": step.target},
					Result:    fmt.Sprintf("%d created", n),
				})
			}
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	slog.Info("form sync completed",
		"created", result.Total,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func static(t Transform) func() (Transform, error) {
	return func() (Transform, error) { return t, nil }
}

func (s *Service) loadStudents(ctx context.Context, sess *Session) (RecordCollection, RecordCollection, error) {
	tutors, err := retrieve(ctx, sess, TableTutors)
	if err != nil {
		return nil, nil, err
	}
	learners, err := retrieve(ctx, sess, TableLearners)
	if err != nil {
		return nil, nil, err
	}
	return tutors, learners, nil
}

func retrieve(ctx context.Context, sess *Session, name string) (RecordCollection, error) {
	t, err := sess.Table(ctx, name)
	if err != nil {
		return nil, err
	}
	return t.RetrieveAll(ctx)
}

// RecalculateAttendance reconciles attendance and writes back every changed
// tutor, learner and day record.
func (s *Service) RecalculateAttendance(ctx context.Context) (AttendanceResult, error) {
	var result AttendanceResult
	start := time.Now()

	err := s.withSession(ctx, string(OpRecalculateAttendance), func(sess *Session) error {
		var in AttendanceInput
		var err error
		if in.Tutors, in.Learners, err = s.loadStudents(ctx, sess); err != nil {
			return err
		}
		if in.Matchings, err = retrieve(ctx, sess, TableMatchings); err != nil {
			return err
		}
		if in.Log, err = retrieve(ctx, sess, TableAttendanceLog); err != nil {
			return err
		}
		if in.Days, err = retrieve(ctx, sess, TableAttendanceDays); err != nil {
			return err
		}

		result, err = s.reconciler.Reconcile(in)
		if err != nil {
			return err
		}

		// Students before days: a day is only settled once its effects are stored.
		writes := []struct {
			table string
			recs  []Record
		}{
			{TableTutors, result.Tutors},
			{TableLearners, result.Learners},
			{TableAttendanceDays, result.Days},
		}
		runID := NewRunID()
		for _, w := range writes {
			if len(w.recs) == 0 {
				continue
			}
			t, err := sess.Table(ctx, w.table)
			if err != nil {
				return err
			}
			if err := t.UpdateAll(ctx, w.recs); err != nil {
				return err
			}
			s.logOperation(ctx, sess, OperationEntry{
				RunID:     runID,
				Operation: OpRecalculateAttendance,
				Target:    w.table,
				Args:      map[string]any{"daysProcessed": result.DaysProcessed},
				Result:    fmt.Sprintf("%d records rewritten", len(w.recs)),
			})
		}
		return nil
	})
	if err != nil {
		return AttendanceResult{}, err
	}

	attendanceChanges.Add(float64(result.Changes))
	slog.Info("attendance recalculated",
		"changes", result.Changes,
		"days_processed", result.DaysProcessed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// GenerateSchedule lays out the current matchings and drop-in tutors by mod.
func (s *Service) GenerateSchedule(ctx context.Context) ([]ScheduleSlot, error) {
	var slots []ScheduleSlot
	err := s.withSession(ctx, "generateSchedule", func(sess *Session) error {
		tutors, learners, err := s.loadStudents(ctx, sess)
		if err != nil {
			return err
		}
		matchings, err := retrieve(ctx, sess, TableMatchings)
		if err != nil {
			return err
		}
		slots, err = BuildSchedule(tutors, learners, matchings)
		return err
	})
	return slots, err
}
