// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for recurrence dueness checking.
// Each frequency type (semanal, mensal, anual) has its own strategy that
// encapsulates the logic for determining if a template is due.

package services

import (
	"fmt"
	"time"
)

// DuenessChecker is the strategy interface for checking if a recurring
// template is due. The anchor is the template's original date; dia, when
// non-zero, overrides the anchor's day of month.
type DuenessChecker interface {
	// IsDue returns true if the template should be materialized based on
	// the last execution time and the current time.
	IsDue(lastExecution, now, anchor time.Time, dia int) bool
}

// SemanalChecker implements DuenessChecker for weekly templates.
type SemanalChecker struct{}

// IsDue returns true if 7 or more days have passed since last execution.
func (SemanalChecker) IsDue(lastExecution, now, _ time.Time, _ int) bool {
	if lastExecution.IsZero() {
		return true
	}
	daysSince := now.Sub(lastExecution).Hours() / 24
	return daysSince >= 7
}

// MensalChecker implements DuenessChecker for monthly templates.
type MensalChecker struct{}

// IsDue returns true if we're in a new month and have reached the target day.
func (MensalChecker) IsDue(lastExecution, now, anchor time.Time, dia int) bool {
	if lastExecution.IsZero() {
		return true
	}

	// Already processed this month?
	if lastExecution.Year() == now.Year() && lastExecution.Month() == now.Month() {
		return false
	}

	targetDay := dia
	if targetDay == 0 {
		targetDay = anchor.Day()
	}
	return now.Day() >= clampToMonth(targetDay, now)
}

// AnualChecker implements DuenessChecker for yearly templates.
type AnualChecker struct{}

// IsDue returns true if we're in a new year and have reached the anchor's
// month and day.
func (AnualChecker) IsDue(lastExecution, now, anchor time.Time, dia int) bool {
	if lastExecution.IsZero() {
		return true
	}

	// Already processed this year?
	if lastExecution.Year() == now.Year() {
		return false
	}

	targetMonth := int(anchor.Month())
	targetDay := dia
	if targetDay == 0 {
		targetDay = anchor.Day()
	}

	if int(now.Month()) < targetMonth {
		return false
	}
	if int(now.Month()) == targetMonth {
		return now.Day() >= clampToMonth(targetDay, now)
	}

	// We're past the target month
	return true
}

// clampToMonth caps a target day at the last day of now's month, so a
// template anchored on the 31st still fires in February.
func clampToMonth(targetDay int, now time.Time) int {
	lastDayOfMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if targetDay > lastDayOfMonth {
		return lastDayOfMonth
	}
	return targetDay
}

// duenessStrategies maps recurrence types to their corresponding checkers.
var duenessStrategies = map[string]DuenessChecker{
	"semanal": SemanalChecker{},
	"mensal":  MensalChecker{},
	"anual":   AnualChecker{},
}

// GetDuenessChecker returns the appropriate dueness checker for a recurrence
// type. Returns an error if the type is not supported.
func GetDuenessChecker(tipo string) (DuenessChecker, error) {
	checker, ok := duenessStrategies[tipo]
	if !ok {
		return nil, fmt.Errorf("unknown recurrence type: %s", tipo)
	}
	return checker, nil
}

// RegisterDuenessChecker allows registering custom dueness checkers for new
// frequency types.
func RegisterDuenessChecker(tipo string, checker DuenessChecker) {
	duenessStrategies[tipo] = checker
}
