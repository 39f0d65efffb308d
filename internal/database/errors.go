// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package database

import "errors"

// ErrNotFound marks a lookup for a row that does not exist.
var ErrNotFound = errors.New("not found")
