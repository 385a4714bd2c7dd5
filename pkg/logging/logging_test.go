package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_ReturnsStoredLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info").With("service", "storefront")
	ctx := IntoContext(context.Background(), l)

	FromContext(ctx).Info("checkout_success", "order_id", "INV-1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "checkout_success", rec["msg"])
	assert.Equal(t, "storefront", rec["service"])
	assert.Equal(t, "INV-1", rec["order_id"])
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	t.Parallel()

	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestNewWithWriter_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level   string
		debugOn bool
		infoOn  bool
		warnOn  bool
	}{
		{level: "debug", debugOn: true, infoOn: true, warnOn: true},
		{level: "", debugOn: false, infoOn: true, warnOn: true},
		{level: "WARN", debugOn: false, infoOn: false, warnOn: true},
		{level: "error", debugOn: false, infoOn: false, warnOn: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.level, func(t *testing.T) {
			t.Parallel()

			l := NewWithWriter(&bytes.Buffer{}, tt.level)
			ctx := context.Background()
			assert.Equal(t, tt.debugOn, l.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.infoOn, l.Enabled(ctx, slog.LevelInfo))
			assert.Equal(t, tt.warnOn, l.Enabled(ctx, slog.LevelWarn))
		})
	}
}
