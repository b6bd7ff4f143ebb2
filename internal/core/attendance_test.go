package core

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

// Monday 2 Sep 2024 is an A day, Tuesday 3 Sep a B day.
var (
	aDay = time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC).UnixMilli()
	bDay = time.Date(2024, 9, 3, 0, 0, 0, 0, time.UTC).UnixMilli()
)

func collection(recs ...Record) RecordCollection {
	out := make(RecordCollection, len(recs))
	for _, r := range recs {
		out[Key(r.ID())] = r
	}
	return out
}

func tutorRec(id int64, dropIn ...float64) Record {
	mods := make([]any, len(dropIn))
	for i, m := range dropIn {
		mods[i] = m
	}
	return Record{"id": float64(id), "date": int64(1), "friendlyFullName": "Tutor " + Key(id), "dropInMods": mods, "attendance": nil}
}

func learnerRec(id int64) Record {
	return Record{"id": float64(id), "date": int64(1), "friendlyFullName": "Learner " + Key(id), "attendance": nil}
}

func matchingRec(id, tutor, learner int64, mod int) Record {
	return Record{"id": float64(id), "date": int64(1), "tutor": float64(tutor), "learner": float64(learner), "mod": float64(mod)}
}

func dayRec(id int64, day int64, letter, status string) Record {
	return Record{"id": float64(id), "date": int64(1), "dateOfAttendance": day, "abDay": letter, "status": status}
}

func logRec(id int64, day int64, mod int, tutor, learner int64, tMin, lMin float64, reset bool) Record {
	return Record{
		"id": float64(id), "date": id, "dateOfAttendance": day, "validity": "",
		"mod": float64(mod), "tutor": float64(tutor), "learner": float64(learner),
		"minutesForTutor": tMin, "minutesForLearner": lMin, "markForReset": reset,
	}
}

func attendanceOf(t *testing.T, recs []Record, id int64) AttendanceMap {
	t.Helper()
	for _, r := range recs {
		if r.ID() == id {
			m, err := AttendanceFromJSON(r["attendance"])
			if err != nil {
				t.Fatalf("AttendanceFromJSON: %v", err)
			}
			return m
		}
	}
	return nil
}

// feedBack folds a result into the input, the way the service persists it.
func feedBack(in AttendanceInput, res AttendanceResult) AttendanceInput {
	for _, r := range res.Tutors {
		in.Tutors[Key(r.ID())] = r
	}
	for _, r := range res.Learners {
		in.Learners[Key(r.ID())] = r
	}
	for _, r := range res.Days {
		in.Days[Key(r.ID())] = r
	}
	return in
}

func TestReconcile_LogEntries(t *testing.T) {
	in := AttendanceInput{
		Tutors:    collection(tutorRec(1)),
		Learners:  collection(learnerRec(2)),
		Matchings: collection(),
		Log: collection(
			logRec(10, aDay+9*3600e3, 3, 1, 2, 40, 35, false),
			// Already recorded for this slot: ignored.
			logRec(11, aDay+10*3600e3, 3, 1, -1, 5, -1, false),
		),
		Days: collection(),
	}
	invalid := logRec(12, aDay, 4, 1, -1, 30, -1, false)
	invalid["validity"] = "student id 99 not found"
	in.Log[Key(12)] = invalid

	res, err := NewReconciler(time.UTC).Reconcile(in)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if res.Changes != 2 {
		t.Errorf("Changes = %d, want 2", res.Changes)
	}

	tutor := attendanceOf(t, res.Tutors, 1)
	if want := (AttendanceMap{aDay: {{Mod: 3, Minutes: 40}}}); !reflect.DeepEqual(tutor, want) {
		t.Errorf("tutor attendance = %v, want %v", tutor, want)
	}
	learner := attendanceOf(t, res.Learners, 2)
	if want := (AttendanceMap{aDay: {{Mod: 3, Minutes: 35}}}); !reflect.DeepEqual(learner, want) {
		t.Errorf("learner attendance = %v, want %v", learner, want)
	}
}

func TestReconcile_DoItSynthesizesAbsences(t *testing.T) {
	in := AttendanceInput{
		Tutors:    collection(tutorRec(1, 2, 12), tutorRec(3)),
		Learners:  collection(learnerRec(2)),
		Matchings: collection(matchingRec(20, 3, 2, 5), matchingRec(21, 3, 2, 15)),
		Log:       collection(logRec(10, aDay, 2, 1, -1, 50, -1, false)),
		Days:      collection(dayRec(30, aDay, "A", DayDoIt)),
	}

	res, err := NewReconciler(time.UTC).Reconcile(in)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	// Tutor 1 logged mod 2; mod 12 is a B mod.
	if got := attendanceOf(t, res.Tutors, 1); !reflect.DeepEqual(got, AttendanceMap{aDay: {{Mod: 2, Minutes: 50}}}) {
		t.Errorf("tutor 1 attendance = %v", got)
	}
	// Tutor 3 missed matched mod 5; the learner is excused.
	if got := attendanceOf(t, res.Tutors, 3); !reflect.DeepEqual(got, AttendanceMap{aDay: {{Mod: 5, Minutes: AbsentMinutes}}}) {
		t.Errorf("tutor 3 attendance = %v", got)
	}
	if got := attendanceOf(t, res.Learners, 2); !reflect.DeepEqual(got, AttendanceMap{aDay: {{Mod: 5, Minutes: ExcusedMinutes}}}) {
		t.Errorf("learner attendance = %v", got)
	}

	if len(res.Days) != 1 || res.Days[0].Str("status") != DayIsDone {
		t.Errorf("days = %v, want one day flipped to isdone", res.Days)
	}
	if res.DaysProcessed != 1 {
		t.Errorf("DaysProcessed = %d, want 1", res.DaysProcessed)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	tests := []struct {
		name string
		in   func() AttendanceInput
	}{
		{
			name: "log and doit days",
			in: func() AttendanceInput {
				return AttendanceInput{
					Tutors:    collection(tutorRec(1, 1, 11)),
					Learners:  collection(learnerRec(2)),
					Matchings: collection(matchingRec(20, 1, 2, 4)),
					Log:       collection(logRec(10, bDay, 11, 1, -1, 45, -1, false)),
					Days: collection(
						dayRec(30, aDay, "a", DayDoIt),
						dayRec(31, bDay, "B day", DayDoIt),
					),
				}
			},
		},
		{
			name: "reset entry on a logged zero-minute slot",
			in: func() AttendanceInput {
				return AttendanceInput{
					Tutors:    collection(tutorRec(1, 3)),
					Learners:  collection(learnerRec(2)),
					Matchings: collection(),
					Log: collection(
						logRec(10, aDay, 3, 1, 2, 0, 0, false),
						logRec(11, aDay, 3, 1, 2, 0, 0, true),
					),
					Days: collection(),
				}
			},
		},
		{
			name: "reset entries with doit and doreset days",
			in: func() AttendanceInput {
				tutor := tutorRec(1, 3, 13)
				tutor["attendance"] = AttendanceMap{bDay: {{Mod: 13, Minutes: AbsentMinutes}}}.JSON()
				return AttendanceInput{
					Tutors:    collection(tutor, tutorRec(3, 2)),
					Learners:  collection(learnerRec(2)),
					Matchings: collection(matchingRec(20, 3, 2, 5)),
					Log: collection(
						logRec(10, aDay, 3, 1, -1, 0, -1, false),
						// Logged before the plain entry it would otherwise undo.
						logRec(9, aDay, 3, 1, -1, 0, -1, true),
						logRec(11, aDay, 2, 3, -1, 0, -1, true),
					),
					Days: collection(
						dayRec(30, aDay, "A", DayDoIt),
						dayRec(31, bDay, "B", DayDoReset),
					),
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReconciler(time.UTC)
			in := tt.in()

			first, err := r.Reconcile(in)
			if err != nil {
				t.Fatalf("first Reconcile: %v", err)
			}
			if first.Changes == 0 {
				t.Fatal("first run changed nothing")
			}
			in = feedBack(in, first)

			for run := 2; run <= 3; run++ {
				res, err := r.Reconcile(in)
				if err != nil {
					t.Fatalf("Reconcile run %d: %v", run, err)
				}
				if res.Changes != 0 || len(res.Tutors)+len(res.Learners)+len(res.Days) != 0 {
					t.Errorf("run %d changed %d values: %+v", run, res.Changes, res)
				}
				in = feedBack(in, res)
			}
		})
	}
}

func TestReconcile_ResetKeepsLoggedAbsence(t *testing.T) {
	in := AttendanceInput{
		Tutors:    collection(tutorRec(1)),
		Learners:  collection(),
		Matchings: collection(),
		Log: collection(
			logRec(10, aDay, 3, 1, -1, 0, -1, false),
			logRec(11, aDay, 3, 1, -1, 0, -1, true),
		),
		Days: collection(),
	}

	res, err := NewReconciler(time.UTC).Reconcile(in)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if res.Changes != 1 {
		t.Errorf("Changes = %d, want 1", res.Changes)
	}
	want := AttendanceMap{aDay: {{Mod: 3, Minutes: AbsentMinutes}}}
	if got := attendanceOf(t, res.Tutors, 1); !reflect.DeepEqual(got, want) {
		t.Errorf("tutor attendance = %v, want %v", got, want)
	}
}

func TestReconcile_DoReset(t *testing.T) {
	tutor := tutorRec(1, 1, 2)
	tutor["attendance"] = AttendanceMap{aDay: {
		{Mod: 1, Minutes: AbsentMinutes},
		{Mod: 2, Minutes: AbsentMinutes},
		{Mod: 3, Minutes: 40},
	}}.JSON()

	in := AttendanceInput{
		Tutors:    collection(tutor),
		Learners:  collection(),
		Matchings: collection(),
		// A genuine zero-minute submission for mod 2 survives the reset.
		Log:  collection(logRec(10, aDay, 2, 1, -1, 0, -1, false)),
		Days: collection(dayRec(30, aDay, "A", DayDoReset)),
	}

	res, err := NewReconciler(time.UTC).Reconcile(in)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	want := AttendanceMap{aDay: {{Mod: 2, Minutes: 0}, {Mod: 3, Minutes: 40}}}
	if got := attendanceOf(t, res.Tutors, 1); !reflect.DeepEqual(got, want) {
		t.Errorf("tutor attendance = %v, want %v", got, want)
	}
	if res.Days[0].Str("status") != DayIsReset {
		t.Errorf("day status = %q, want isreset", res.Days[0].Str("status"))
	}
}

func TestReconcile_ResetEntryCoversSlot(t *testing.T) {
	tutor := tutorRec(1, 6)
	tutor["attendance"] = AttendanceMap{bDay: {{Mod: 6, Minutes: AbsentMinutes}}}.JSON()

	in := AttendanceInput{
		Tutors:    collection(tutor),
		Learners:  collection(),
		Matchings: collection(),
		Log: collection(
			logRec(10, bDay, 6, 1, -1, 0, -1, true),
			logRec(11, aDay, 6, 1, -1, 0, -1, true),
		),
		Days: collection(dayRec(30, aDay, "A", DayDoIt)),
	}

	res, err := NewReconciler(time.UTC).Reconcile(in)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	// The bDay absence is removed; doit on aDay does not recreate mod 6.
	if got := attendanceOf(t, res.Tutors, 1); len(got) != 0 {
		t.Errorf("tutor attendance = %v, want empty", got)
	}
}

func TestReconcile_Errors(t *testing.T) {
	base := func() AttendanceInput {
		return AttendanceInput{
			Tutors:    collection(tutorRec(1)),
			Learners:  collection(learnerRec(2)),
			Matchings: collection(),
			Log:       collection(),
			Days:      collection(),
		}
	}

	tests := []struct {
		name   string
		mutate func(*AttendanceInput)
		want   error
	}{
		{"unknown day status", func(in *AttendanceInput) {
			in.Days = collection(dayRec(30, aDay, "A", "maybe"))
		}, ErrUnknownDayStatus},
		{"unrecognized letter", func(in *AttendanceInput) {
			in.Days = collection(dayRec(30, aDay, "C", DayDoIt))
		}, ErrUnrecognizedDayLetter},
		{"double matching", func(in *AttendanceInput) {
			in.Matchings = collection(matchingRec(20, 1, 2, 4), matchingRec(21, 1, 2, 4))
		}, ErrConsistencyViolation},
		{"matching unknown learner", func(in *AttendanceInput) {
			in.Matchings = collection(matchingRec(20, 1, 99, 4))
		}, ErrConsistencyViolation},
		{"matching unknown tutor", func(in *AttendanceInput) {
			in.Matchings = collection(matchingRec(20, 99, 2, 4))
		}, ErrConsistencyViolation},
		{"log entry unknown tutor", func(in *AttendanceInput) {
			in.Log = collection(logRec(10, aDay, 3, 99, -1, 30, -1, false))
		}, ErrConsistencyViolation},
		{"log entry bad mod", func(in *AttendanceInput) {
			in.Log = collection(logRec(10, aDay, 25, 1, -1, 30, -1, false))
		}, ErrConsistencyViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base()
			tt.mutate(&in)
			if _, err := NewReconciler(time.UTC).Reconcile(in); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReconcile_SettledDaysSkipped(t *testing.T) {
	in := AttendanceInput{
		Tutors:    collection(tutorRec(1, 1)),
		Learners:  collection(),
		Matchings: collection(),
		Log:       collection(),
		Days: collection(
			dayRec(30, aDay, "A", DayIsDone),
			dayRec(31, aDay, "A", DayIgnore),
			dayRec(32, aDay, "garbage", DayIsReset),
		),
	}
	res, err := NewReconciler(time.UTC).Reconcile(in)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if res.Changes != 0 || res.DaysProcessed != 0 {
		t.Errorf("settled days were processed: %+v", res)
	}
}

func TestAttendanceMapJSONRoundTrip(t *testing.T) {
	m := AttendanceMap{aDay: {{Mod: 1, Minutes: 0}, {Mod: 4, Minutes: 45}}, bDay: {{Mod: 12, Minutes: 1}}}
	back, err := AttendanceFromJSON(m.JSON())
	if err != nil {
		t.Fatalf("AttendanceFromJSON: %v", err)
	}
	if !reflect.DeepEqual(back, m) {
		t.Errorf("round trip = %v, want %v", back, m)
	}
	if days := back.Days(); !reflect.DeepEqual(days, []int64{aDay, bDay}) {
		t.Errorf("Days() = %v", days)
	}
}
