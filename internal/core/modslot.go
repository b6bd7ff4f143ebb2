package core

import (
	"strconv"
	"strings"
)

// Mod slots 1-10 are the A-day periods, 11-20 the B-day periods.
const (
	MinMod     = 1
	MaxMod     = 20
	modsPerDay = 10
)

// ModString formats a mod slot for display: 5 -> "5A", 11 -> "1B".
func ModString(mod int) (string, error) {
	if mod < MinMod || mod > MaxMod {
		return "", newError(ErrInvalidModSlot, "mod %d is outside %d-%d", mod, MinMod, MaxMod)
	}
	if mod > modsPerDay {
		return strconv.Itoa(mod-modsPerDay) + "B", nil
	}
	return strconv.Itoa(mod) + "A", nil
}

// ParseMod accepts "5A", "1b", or a bare slot number "13".
func ParseMod(s string) (int, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, newError(ErrInvalidModSlot, "empty mod")
	}

	offset, lettered := 0, false
	switch s[len(s)-1] {
	case 'A':
		s, lettered = s[:len(s)-1], true
	case 'B':
		s, lettered = s[:len(s)-1], true
		offset = modsPerDay
	}

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, newError(ErrInvalidModSlot, "mod %q", s)
	}
	if lettered && (n < 1 || n > modsPerDay) {
		return 0, newError(ErrInvalidModSlot, "mod %q", s)
	}
	if n+offset < MinMod || n+offset > MaxMod {
		return 0, newError(ErrInvalidModSlot, "mod %d is outside %d-%d", n+offset, MinMod, MaxMod)
	}
	return n + offset, nil
}

// ParseModList splits a free-text list such as "1A, 3B; 12" into slots.
// Tokens that are not mods are returned separately.
func ParseModList(s string) (mods []int, invalid []string) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\t'
	})
	for _, f := range fields {
		m, err := ParseMod(f)
		if err != nil {
			invalid = append(invalid, f)
			continue
		}
		mods = append(mods, m)
	}
	return mods, invalid
}

// IsBDayMod reports whether a slot belongs to the B half.
func IsBDayMod(mod int) bool {
	return mod > modsPerDay
}
