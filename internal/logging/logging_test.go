// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	logger := Logger()
	logger.Info().Str("key", "value").Msg("hello")
	out := buf.String()
	assert.Contains(t, out, `"key":"value"`)
	assert.Contains(t, out, `"message":"hello"`)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		"debug":    zerolog.DebugLevel,
		"info":     zerolog.InfoLevel,
		"warn":     zerolog.WarnLevel,
		"WARNING":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"disabled": zerolog.Disabled,
		"bogus":    zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Output: &buf})
	defer Init(DefaultConfig())

	logger := WithComponent("cache")
	logger.Info().Msg("swept")
	assert.Contains(t, buf.String(), `"component":"cache"`)
}

func TestRequestIDPropagation(t *testing.T) {
	ctx := ContextWithNewRequestID(context.Background())
	id := RequestIDFromContext(ctx)
	require.NotEmpty(t, id)

	var buf bytes.Buffer
	ctx = ContextWithLogger(ctx, zerolog.New(&buf))
	logger := Ctx(ctx)
	logger.Info().Msg("tracked")
	assert.Contains(t, buf.String(), id)
}

func TestRequestIDAbsent(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&SlogHandler{logger: zerolog.New(&buf)})

	logger.Info("service started", "service", "http-server", "attempt", int64(2))
	out := buf.String()
	assert.Contains(t, out, `"service":"http-server"`)
	assert.Contains(t, out, `"attempt":2`)
	assert.Contains(t, out, `"message":"service started"`)
}

func TestSlogAdapterGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&SlogHandler{logger: zerolog.New(&buf)})

	logger.WithGroup("supervisor").Warn("restarting", "name", "cache-sweep")
	assert.Contains(t, buf.String(), `"supervisor.name":"cache-sweep"`)
}
