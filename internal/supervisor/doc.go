// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

// Package supervisor builds the suture supervision tree that runs the
// Pulse process: a root supervisor with a data layer (cache sweeper,
// taste profile refresher) and an API layer (HTTP server). Failures in
// one layer restart independently of the other.
package supervisor
