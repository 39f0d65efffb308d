// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package recommend

import "errors"

// ErrUpstream marks a failure to fetch required signal from storage.
// Callers wrap it with the failing operation so the cause stays
// distinguishable from scoring or validation errors.
var ErrUpstream = errors.New("upstream data fetch failed")

// ErrInvalidOptions marks request options that fail validation.
var ErrInvalidOptions = errors.New("invalid recommendation options")
