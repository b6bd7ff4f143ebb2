package core

// attendance.go derives tutor and learner attendance histories from the
// attendance log and the attendance day calendar.
//
// A run has three passes:
//  1. Apply every valid log entry: add a "<mod> <minutes>" item when the
//     student has none for that mod on that day. Reset-flagged entries go
//     after all others and remove the auto-generated 0-minute item, never
//     one backed by a submitted entry.
//  2. Index the mods each tutor is expected at (drop-in mods and matchings).
//  3. Process the days marked doit (synthesize absences) or doreset (strip
//     synthesized absences) and flip them to isdone / isreset.
//
// Settled days are never revisited and log entries are applied by existence,
// so running twice over unchanged inputs changes nothing the second time.

import (
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
)

// AttendanceInput is the state a reconciliation run reads.
type AttendanceInput struct {
	Tutors    RecordCollection
	Learners  RecordCollection
	Matchings RecordCollection
	Log       RecordCollection
	Days      RecordCollection
}

// AttendanceResult holds the records a run changed.
type AttendanceResult struct {
	Changes       int      `json:"changes"`
	DaysProcessed int      `json:"daysProcessed"`
	Tutors        []Record `json:"-"`
	Learners      []Record `json:"-"`
	Days          []Record `json:"-"`
}

// Reconciler computes attendance changes. It performs no I/O.
type Reconciler struct {
	loc *time.Location
}

// NewReconciler creates a Reconciler that rounds days to midnight in loc.
// A nil loc uses time.Local.
func NewReconciler(loc *time.Location) *Reconciler {
	if loc == nil {
		loc = time.Local
	}
	return &Reconciler{loc: loc}
}

// Midnight rounds an epoch-ms timestamp down to local midnight.
func (r *Reconciler) Midnight(ms int64) int64 {
	t := time.UnixMilli(ms).In(r.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, r.loc).UnixMilli()
}

type student struct {
	rec   Record
	att   AttendanceMap
	dirty bool
}

type slotKey struct {
	student int64
	learner bool
	day     int64
	mod     int
}

// expectation is a mod a tutor should attend, with the learner matched there.
type expectation struct {
	learner NullID
	matched bool
}

type reconcileRun struct {
	r        *Reconciler
	tutors   map[int64]*student
	learners map[int64]*student
	covered  map[slotKey]bool // tutor slots settled by a reset-flagged entry
	logged   map[slotKey]bool // slots backed by a submitted entry
	changes  int
}

// Reconcile applies the log and day calendar to the student histories.
func (r *Reconciler) Reconcile(in AttendanceInput) (AttendanceResult, error) {
	run := &reconcileRun{
		r:       r,
		covered: make(map[slotKey]bool),
		logged:  make(map[slotKey]bool),
	}

	var err error
	if run.tutors, err = loadStudents(TableTutors, in.Tutors); err != nil {
		return AttendanceResult{}, err
	}
	if run.learners, err = loadStudents(TableLearners, in.Learners); err != nil {
		return AttendanceResult{}, err
	}

	entries := sortedByDate(in.Log)
	isReset := func(e Record, _ int) bool { return e.Bool("markForReset") }
	ordered := append(lo.Reject(entries, isReset), lo.Filter(entries, isReset)...)
	for _, entry := range ordered {
		if err := run.applyLogEntry(entry); err != nil {
			return AttendanceResult{}, err
		}
	}

	expected, err := run.expectedMods(in.Matchings)
	if err != nil {
		return AttendanceResult{}, err
	}

	var result AttendanceResult
	for _, day := range sortedByDate(in.Days) {
		settled, err := run.processDay(day, expected)
		if err != nil {
			return AttendanceResult{}, err
		}
		if settled != nil {
			result.Days = append(result.Days, settled)
			result.DaysProcessed++
		}
	}

	result.Changes = run.changes
	result.Tutors = dirtyRecords(run.tutors)
	result.Learners = dirtyRecords(run.learners)
	return result, nil
}

func loadStudents(table string, recs RecordCollection) (map[int64]*student, error) {
	out := make(map[int64]*student, len(recs))
	for _, rec := range recs {
		att, err := AttendanceFromJSON(rec["attendance"])
		if err != nil {
			return nil, newError(ErrConsistencyViolation, "%s %d attendance: %v", table, rec.ID(), err)
		}
		out[rec.ID()] = &student{rec: rec, att: att}
	}
	return out, nil
}

// dayOf returns the local-midnight key of a record's attendance date.
func (run *reconcileRun) dayOf(rec Record) int64 {
	ms := rec.Int("dateOfAttendance")
	if ms == UnsetDate {
		ms = rec.Date()
	}
	return run.r.Midnight(ms)
}

func (run *reconcileRun) applyLogEntry(entry Record) error {
	if strings.TrimSpace(entry.Str("validity")) != "" {
		return nil
	}

	mod := int(entry.Int("mod"))
	if _, err := ModString(mod); err != nil {
		return newError(ErrConsistencyViolation, "attendance log entry %d: %v", entry.ID(), err)
	}
	day := run.dayOf(entry)
	reset := entry.Bool("markForReset")

	sides := []struct {
		ref     NullID
		pool    map[int64]*student
		minutes int64
		kind    string
	}{
		{entry.Ref("tutor"), run.tutors, entry.Int("minutesForTutor"), "tutor"},
		{entry.Ref("learner"), run.learners, entry.Int("minutesForLearner"), "learner"},
	}

	for _, side := range sides {
		if !side.ref.Valid {
			continue
		}
		st, ok := side.pool[side.ref.ID]
		if !ok {
			return newError(ErrConsistencyViolation, "attendance log entry %d references unknown %s %d",
				entry.ID(), side.kind, side.ref.ID)
		}
		key := slotKey{student: side.ref.ID, learner: side.kind == "learner", day: day, mod: mod}

		if reset {
			if side.kind == "tutor" {
				run.covered[key] = true
			}
			if run.logged[key] {
				continue
			}
			if st.att.RemoveAbsence(day, mod) {
				st.dirty = true
				run.changes++
			}
			continue
		}

		run.logged[key] = true
		if st.att.Has(day, mod) {
			continue
		}
		minutes := side.minutes
		if minutes < 0 {
			minutes = 0
		}
		st.att.Add(day, AttendanceEntry{Mod: mod, Minutes: int(minutes)})
		st.dirty = true
		run.changes++
	}
	return nil
}

// expectedMods indexes, per tutor, each mod they should attend and the
// learner expected there.
func (run *reconcileRun) expectedMods(matchings RecordCollection) (map[int64]map[int]expectation, error) {
	out := make(map[int64]map[int]expectation, len(run.tutors))

	for id, t := range run.tutors {
		mods := make(map[int]expectation)
		for _, mod := range modsFromJSON(t.rec["dropInMods"]) {
			mods[mod] = expectation{}
		}
		out[id] = mods
	}

	for _, m := range sortedByID(matchings) {
		tutor := m.Ref("tutor")
		if !tutor.Valid {
			continue
		}
		mods, ok := out[tutor.ID]
		if !ok {
			return nil, newError(ErrConsistencyViolation, "matching %d references unknown tutor %d", m.ID(), tutor.ID)
		}
		learner := m.Ref("learner")
		if learner.Valid {
			if _, ok := run.learners[learner.ID]; !ok {
				return nil, newError(ErrConsistencyViolation, "matching %d references unknown learner %d", m.ID(), learner.ID)
			}
		}
		mod := int(m.Int("mod"))
		if _, err := ModString(mod); err != nil {
			return nil, newError(ErrConsistencyViolation, "matching %d: %v", m.ID(), err)
		}
		if prev, ok := mods[mod]; ok && prev.matched {
			return nil, newError(ErrConsistencyViolation, "tutor %d is matched twice on mod %d", tutor.ID, mod)
		}
		mods[mod] = expectation{learner: learner, matched: true}
	}
	return out, nil
}

// processDay handles one calendar day and returns the settled record, or nil
// when the day needed no processing.
func (run *reconcileRun) processDay(day Record, expected map[int64]map[int]expectation) (Record, error) {
	status := strings.ToLower(strings.TrimSpace(day.Str("status")))
	switch status {
	case DayIgnore, DayIsDone, DayIsReset:
		return nil, nil
	case DayDoIt, DayDoReset:
	default:
		return nil, newError(ErrUnknownDayStatus, "attendance day %d has status %q", day.ID(), day.Str("status"))
	}

	letter := strings.ToLower(strings.TrimSpace(day.Str("abDay")))
	var isB bool
	switch {
	case strings.HasPrefix(letter, "a"):
	case strings.HasPrefix(letter, "b"):
		isB = true
	default:
		return nil, newError(ErrUnrecognizedDayLetter, "attendance day %d has letter %q", day.ID(), day.Str("abDay"))
	}

	midnight := run.dayOf(day)
	settled := day.Clone()

	if status == DayDoIt {
		run.synthesizeAbsences(midnight, isB, expected)
		settled["status"] = DayIsDone
	} else {
		run.stripAbsences(midnight)
		settled["status"] = DayIsReset
	}
	return settled, nil
}

func (run *reconcileRun) synthesizeAbsences(day int64, isB bool, expected map[int64]map[int]expectation) {
	for _, tutorID := range sortedKeys(run.tutors) {
		tutor := run.tutors[tutorID]
		mods := expected[tutorID]
		for _, mod := range sortedKeys(mods) {
			if IsBDayMod(mod) != isB {
				continue
			}
			key := slotKey{student: tutorID, day: day, mod: mod}
			if run.covered[key] || tutor.att.Has(day, mod) {
				continue
			}
			tutor.att.Add(day, AttendanceEntry{Mod: mod, Minutes: AbsentMinutes})
			tutor.dirty = true
			run.changes++

			exp := mods[mod]
			if !exp.learner.Valid {
				continue
			}
			learner := run.learners[exp.learner.ID]
			if learner == nil || learner.att.Has(day, mod) {
				continue
			}
			learner.att.Add(day, AttendanceEntry{Mod: mod, Minutes: ExcusedMinutes})
			learner.dirty = true
			run.changes++
		}
	}
}

func (run *reconcileRun) stripAbsences(day int64) {
	for _, tutorID := range sortedKeys(run.tutors) {
		tutor := run.tutors[tutorID]
		removed := tutor.att.StripAbsences(day, func(mod int) bool {
			return run.logged[slotKey{student: tutorID, day: day, mod: mod}]
		})
		if removed > 0 {
			tutor.dirty = true
			run.changes += removed
		}
	}
}

func dirtyRecords(students map[int64]*student) []Record {
	var out []Record
	for _, id := range sortedKeys(students) {
		st := students[id]
		if !st.dirty {
			continue
		}
		rec := st.rec.Clone()
		rec["attendance"] = st.att.JSON()
		out = append(out, rec)
	}
	return out
}

// modsFromJSON reads a JSON list of mod slots stored as numbers or "5A" strings.
func modsFromJSON(v any) []int {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []int
	for _, item := range items {
		switch m := item.(type) {
		case float64:
			if _, err := ModString(int(m)); err == nil {
				out = append(out, int(m))
			}
		case string:
			if mod, err := ParseMod(m); err == nil {
				out = append(out, mod)
			}
		}
	}
	return out
}

func sortedKeys[K int | int64, V any](m map[K]V) []K {
	keys := lo.Keys(m)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedByID(recs RecordCollection) []Record {
	out := lo.Values(recs)
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func sortedByDate(recs RecordCollection) []Record {
	out := lo.Values(recs)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date() != out[j].Date() {
			return out[i].Date() < out[j].Date()
		}
		return out[i].ID() < out[j].ID()
	})
	return out
}
