// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package recommend

import "time"

// ScopeWindow resolves a scope to its current half-open [from, until)
// window in the configured local timezone. A zero until means unbounded.
func (s *Service) ScopeWindow(scope Scope) (time.Time, time.Time) {
	return s.scopeWindow(scope, s.now())
}

// scopeWindow resolves a scope to its half-open [from, until) window in the
// configured local timezone. A zero until means unbounded.
func (s *Service) scopeWindow(scope Scope, now time.Time) (time.Time, time.Time) {
	local := now.In(s.loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)

	switch scope {
	case ScopeToday:
		return midnight, midnight.AddDate(0, 0, 1)
	case ScopeWeekend:
		return midnight, nextMonday(midnight)
	default:
		return now, time.Time{}
	}
}

// nextMonday returns the upcoming Monday midnight strictly after the given
// midnight, so a Monday input yields the following week.
func nextMonday(midnight time.Time) time.Time {
	days := (8 - int(midnight.Weekday())) % 7
	if days == 0 {
		days = 7
	}
	return midnight.AddDate(0, 0, days)
}
