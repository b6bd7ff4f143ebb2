package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"
)

// Transform maps a form submission onto the shape of a target table.
type Transform func(form Record) (Record, error)

// SyncForm copies form submissions whose date is not yet present in target.
// Existing target records are never changed; running it again after a
// successful run creates nothing. Returns the number of records created.
func SyncForm(ctx context.Context, form, target *Table, transform Transform) (int, error) {
	submissions, err := form.RetrieveAll(ctx)
	if err != nil {
		return 0, err
	}
	existing, err := target.RetrieveAll(ctx)
	if err != nil {
		return 0, err
	}

	synced := lo.SliceToMap(lo.Values(existing), func(r Record) (int64, struct{}) {
		return r.Date(), struct{}{}
	})

	created := 0
	for _, sub := range sortedByDate(submissions) {
		date := sub.Date()
		if date == UnsetDate {
			slog.Warn("form sync: submission without date skipped", "form", form.Name())
			continue
		}
		if _, ok := synced[date]; ok {
			continue
		}

		rec, err := transform(sub)
		if err != nil {
			return created, fmt.Errorf("sync %s -> %s, submission %d: %w", form.Name(), target.Name(), date, err)
		}
		rec["id"] = int64(-1)
		rec["date"] = date

		if _, err := target.Create(ctx, rec); err != nil {
			return created, fmt.Errorf("sync %s -> %s: %w", form.Name(), target.Name(), err)
		}
		synced[date] = struct{}{}
		created++
	}

	formSyncCreated.WithLabelValues(form.Name()).Add(float64(created))
	return created, nil
}

// requestSubmissionFromForm maps a request form onto requestSubmissions.
func requestSubmissionFromForm(f Record) (Record, error) {
	mods, invalid := ParseModList(f.Str("mods"))
	friendly := firstNonEmpty(f.Str("friendlyName"), f.Str("firstName"))
	return Record{
		"friendlyFullName": joinName(friendly, f.Str("lastName")),
		"friendlyName":     friendly,
		"firstName":        f.Str("firstName"),
		"lastName":         f.Str("lastName"),
		"grade":            f["grade"],
		"studentId":        f["studentId"],
		"email":            f.Str("email"),
		"phone":            f.Str("phone"),
		"contactPref":      f.Str("contactPref"),
		"mods":             modList(mods),
		"subject":          f.Str("subject"),
		"isSpecial":        false,
		"annotation":       invalidModsNote(invalid),
		"status":           "unchecked",
	}, nil
}

// specialRequestFromForm maps a teacher's special request onto requestSubmissions.
func specialRequestFromForm(f Record) (Record, error) {
	mods, invalid := ParseModList(f.Str("mods"))
	notes := []string{}
	if room := f.Str("room"); room != "" {
		notes = append(notes, "room: "+room)
	}
	if students := f.Str("studentNames"); students != "" {
		notes = append(notes, "students: "+students)
	}
	if note := invalidModsNote(invalid); note != "" {
		notes = append(notes, note)
	}
	return Record{
		"friendlyFullName": f.Str("teacherName"),
		"friendlyName":     f.Str("teacherName"),
		"email":            f.Str("teacherEmail"),
		"mods":             modList(mods),
		"subject":          f.Str("subject"),
		"isSpecial":        true,
		"annotation":       strings.Join(notes, "; "),
		"status":           "unchecked",
	}, nil
}

// tutorFromRegistration maps a tutor registration form onto tutors.
func tutorFromRegistration(f Record) (Record, error) {
	mods, _ := ParseModList(f.Str("mods"))
	pref, _ := ParseModList(f.Str("modsPref"))
	dropIn, _ := ParseModList(f.Str("dropInMods"))
	friendly := firstNonEmpty(f.Str("friendlyName"), f.Str("firstName"))
	return Record{
		"friendlyFullName": joinName(friendly, f.Str("lastName")),
		"friendlyName":     friendly,
		"firstName":        f.Str("firstName"),
		"lastName":         f.Str("lastName"),
		"grade":            f["grade"],
		"studentId":        f["studentId"],
		"email":            f.Str("email"),
		"phone":            f.Str("phone"),
		"contactPref":      f.Str("contactPref"),
		"mods":             modList(mods),
		"modsPref":         modList(pref),
		"dropInMods":       modList(dropIn),
		"subjectList":      f.Str("subjectList"),
		"attendance":       map[string]any{},
	}, nil
}

// attendanceLogFromForm resolves the submitting student and records why the
// submission is invalid, if it is.
func attendanceLogFromForm(tutors, learners RecordCollection) Transform {
	tutorsBySID := lo.GroupBy(lo.Values(tutors), func(r Record) int64 { return r.Int("studentId") })
	learnersBySID := lo.GroupBy(lo.Values(learners), func(r Record) int64 { return r.Int("studentId") })

	return func(f Record) (Record, error) {
		sid := f.Int("studentId")
		mod := f.Int("mod")
		minutes := f.Int("minutesPresent")

		tutor, learner := NullID{}, NullID{}
		var validity string

		ts, ls := tutorsBySID[sid], learnersBySID[sid]
		switch {
		case len(ts)+len(ls) == 0:
			validity = fmt.Sprintf("student id %d not found", sid)
		case len(ts)+len(ls) > 1:
			validity = fmt.Sprintf("student id %d is ambiguous", sid)
		case len(ts) == 1:
			tutor = NullIDFrom(ts[0].ID())
		default:
			learner = NullIDFrom(ls[0].ID())
		}
		if _, err := ModString(int(mod)); err != nil && validity == "" {
			validity = fmt.Sprintf("invalid mod %d", mod)
		}

		day := f.Int("dateOfAttendance")
		if day == UnsetDate {
			day = f.Date()
		}

		return Record{
			"dateOfAttendance":  day,
			"validity":          validity,
			"mod":               mod,
			"tutor":             tutor.Stored(),
			"learner":           learner.Stored(),
			"minutesForTutor":   lo.Ternary(tutor.Valid, minutes, -1),
			"minutesForLearner": lo.Ternary(learner.Valid, minutes, -1),
			"markForReset":      f.Bool("markForReset"),
		}, nil
	}
}

func modList(mods []int) []any {
	return lo.Map(mods, func(m int, _ int) any { return m })
}

func invalidModsNote(invalid []string) string {
	if len(invalid) == 0 {
		return ""
	}
	return "unrecognized mods: " + strings.Join(invalid, ", ")
}

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
