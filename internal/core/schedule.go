package core

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// ScheduleEntry is one tutor's assignment in a mod slot.
type ScheduleEntry struct {
	TutorID     int64  `json:"tutorId"`
	Tutor       string `json:"tutor"`
	LearnerID   int64  `json:"learnerId"` // -1 for drop-in
	Learner     string `json:"learner,omitempty"`
	Subject     string `json:"subject,omitempty"`
	SpecialRoom string `json:"specialRoom,omitempty"`
	DropIn      bool   `json:"dropIn"`
}

// ScheduleSlot lists the assignments of one mod slot.
type ScheduleSlot struct {
	Mod     int             `json:"mod"`
	Label   string          `json:"label"`
	Entries []ScheduleEntry `json:"entries"`
}

// BuildSchedule lays out matchings and drop-in tutors across mods 1-20.
// Every slot is present, empty or not. Entries are ordered by tutor name.
func BuildSchedule(tutors, learners, matchings RecordCollection) ([]ScheduleSlot, error) {
	slots := make([]ScheduleSlot, 0, MaxMod)
	byMod := make(map[int][]ScheduleEntry, MaxMod)

	for _, t := range sortedByID(tutors) {
		for _, mod := range modsFromJSON(t["dropInMods"]) {
			byMod[mod] = append(byMod[mod], ScheduleEntry{
				TutorID:   t.ID(),
				Tutor:     displayName(t),
				LearnerID: -1,
				DropIn:    true,
			})
		}
	}

	for _, m := range sortedByID(matchings) {
		mod := int(m.Int("mod"))
		if _, err := ModString(mod); err != nil {
			return nil, newError(ErrConsistencyViolation, "matching %d: %v", m.ID(), err)
		}
		tutor, ok := tutors[Key(m.Int("tutor"))]
		if !ok {
			return nil, newError(ErrConsistencyViolation, "matching %d references unknown tutor %d", m.ID(), m.Int("tutor"))
		}
		entry := ScheduleEntry{
			TutorID:     tutor.ID(),
			Tutor:       displayName(tutor),
			LearnerID:   m.Ref("learner").Stored(),
			Subject:     m.Str("subject"),
			SpecialRoom: m.Str("specialRoom"),
		}
		if learner, ok := learners[Key(m.Int("learner"))]; ok {
			entry.Learner = displayName(learner)
		}
		// A matching replaces the tutor's drop-in entry for the same mod.
		byMod[mod] = lo.Reject(byMod[mod], func(e ScheduleEntry, _ int) bool {
			return e.DropIn && e.TutorID == entry.TutorID
		})
		byMod[mod] = append(byMod[mod], entry)
	}

	for mod := MinMod; mod <= MaxMod; mod++ {
		label, _ := ModString(mod)
		entries := byMod[mod]
		sort.SliceStable(entries, func(i, j int) bool {
			return strings.ToLower(entries[i].Tutor) < strings.ToLower(entries[j].Tutor)
		})
		if entries == nil {
			entries = []ScheduleEntry{}
		}
		slots = append(slots, ScheduleSlot{Mod: mod, Label: label, Entries: entries})
	}
	return slots, nil
}

func displayName(r Record) string {
	if name := r.Str("friendlyFullName"); name != "" {
		return name
	}
	return joinName(r.Str("firstName"), r.Str("lastName"))
}
