package core

import (
	"strings"
	"time"
)

// Meses holds the Portuguese three-letter month abbreviations used as the
// canonical period keys on every record.
var Meses = []string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

var mesIndex = func() map[string]int {
	m := make(map[string]int, len(Meses))
	for i, abbr := range Meses {
		m[abbr] = i + 1
	}
	return m
}()

// MesFromTime returns the abbreviation for t's month.
func MesFromTime(t time.Time) string {
	return Meses[int(t.Month())-1]
}

// MesNumber maps an abbreviation to its 1-based month number, or 0 when the
// abbreviation is unknown.
func MesNumber(mes string) int {
	return mesIndex[NormalizeMes(mes)]
}

// NormalizeMes lowercases and strips the trailing dot some locales emit
// ("nov." and "nov" are the same period).
func NormalizeMes(mes string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(mes)), ".")
}

// ValidMes reports whether mes is one of the twelve abbreviations.
func ValidMes(mes string) bool {
	_, ok := mesIndex[NormalizeMes(mes)]
	return ok
}
