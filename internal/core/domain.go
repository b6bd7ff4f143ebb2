package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Table names used by the batch operations.
const (
	TableTutors                = "tutors"
	TableLearners              = "learners"
	TableRequests              = "requests"
	TableRequestSubmissions    = "requestSubmissions"
	TableBookings              = "bookings"
	TableMatchings             = "matchings"
	TableAttendanceLog         = "attendanceLog"
	TableAttendanceDays        = "attendanceDays"
	TableRequestForm           = "requestForm"
	TableSpecialRequestForm    = "specialRequestForm"
	TableAttendanceForm        = "attendanceForm"
	TableTutorRegistrationForm = "tutorRegistrationForm"
	TableOperationLog          = "operationLog"
)

// Attendance day statuses.
const (
	DayIgnore  = "ignore"
	DayDoIt    = "doit"
	DayIsDone  = "isdone"
	DayDoReset = "doreset"
	DayIsReset = "isreset"
)

// DayStatuses lists every valid attendance day status.
var DayStatuses = []string{DayIgnore, DayDoIt, DayIsDone, DayDoReset, DayIsReset}

// Minutes credited to synthesized entries.
const (
	AbsentMinutes  = 0
	ExcusedMinutes = 1
)

// AttendanceEntry is one "<mod> <minutes>" item of an attendance history.
type AttendanceEntry struct {
	Mod     int
	Minutes int
}

func (e AttendanceEntry) String() string {
	return fmt.Sprintf("%d %d", e.Mod, e.Minutes)
}

// ParseAttendanceEntry parses the stored "<mod> <minutes>" form.
func ParseAttendanceEntry(s string) (AttendanceEntry, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return AttendanceEntry{}, newError(ErrParse, "attendance entry %q", s)
	}
	mod, err := strconv.Atoi(parts[0])
	if err != nil {
		return AttendanceEntry{}, newError(ErrParse, "attendance entry %q: mod", s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return AttendanceEntry{}, newError(ErrParse, "attendance entry %q: minutes", s)
	}
	return AttendanceEntry{Mod: mod, Minutes: minutes}, nil
}

// AttendanceMap is a per-day attendance history keyed by local-midnight epoch ms.
type AttendanceMap map[int64][]AttendanceEntry

// AttendanceFromJSON decodes the value held in an attendance JSON field.
// A nil value is an empty history.
func AttendanceFromJSON(v any) (AttendanceMap, error) {
	out := make(AttendanceMap)
	if v == nil {
		return out, nil
	}
	days, ok := v.(map[string]any)
	if !ok {
		return nil, newError(ErrTypeMismatch, "attendance must be an object, got %T", v)
	}
	for key, raw := range days {
		day, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, newError(ErrParse, "attendance day key %q", key)
		}
		items, ok := raw.([]any)
		if !ok {
			return nil, newError(ErrTypeMismatch, "attendance day %s must be a list", key)
		}
		entries := make([]AttendanceEntry, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, newError(ErrTypeMismatch, "attendance day %s holds %T", key, item)
			}
			e, err := ParseAttendanceEntry(s)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
		out[day] = entries
	}
	return out, nil
}

// JSON returns the map in the shape stored in the attendance field.
func (m AttendanceMap) JSON() map[string]any {
	out := make(map[string]any, len(m))
	for day, entries := range m {
		items := make([]any, len(entries))
		for i, e := range entries {
			items[i] = e.String()
		}
		out[strconv.FormatInt(day, 10)] = items
	}
	return out
}

// Has reports whether any entry exists for mod on day.
func (m AttendanceMap) Has(day int64, mod int) bool {
	for _, e := range m[day] {
		if e.Mod == mod {
			return true
		}
	}
	return false
}

// Add appends an entry for day.
func (m AttendanceMap) Add(day int64, e AttendanceEntry) {
	m[day] = append(m[day], e)
}

// RemoveAbsence drops the 0-minute entry for mod on day. Reports whether one was removed.
func (m AttendanceMap) RemoveAbsence(day int64, mod int) bool {
	entries := m[day]
	for i, e := range entries {
		if e.Mod == mod && e.Minutes == AbsentMinutes {
			m.set(day, append(entries[:i:i], entries[i+1:]...))
			return true
		}
	}
	return false
}

// StripAbsences drops the 0-minute entries on day, except for mods where keep
// returns true, and returns how many were removed. A nil keep strips them all.
func (m AttendanceMap) StripAbsences(day int64, keep func(mod int) bool) int {
	entries := m[day]
	kept := make([]AttendanceEntry, 0, len(entries))
	for _, e := range entries {
		if e.Minutes != AbsentMinutes || (keep != nil && keep(e.Mod)) {
			kept = append(kept, e)
		}
	}
	removed := len(entries) - len(kept)
	if removed > 0 {
		m.set(day, kept)
	}
	return removed
}

func (m AttendanceMap) set(day int64, entries []AttendanceEntry) {
	if len(entries) == 0 {
		delete(m, day)
		return
	}
	m[day] = entries
}

// Days returns the days present in the map in ascending order.
func (m AttendanceMap) Days() []int64 {
	days := make([]int64, 0, len(m))
	for d := range m {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}
