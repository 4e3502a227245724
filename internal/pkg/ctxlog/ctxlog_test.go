package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext_Default(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithLogger(context.Background(), base)
	ctx = With(ctx, "request_id", "abc")
	ctx = With(ctx, "feed", "market")

	FromContext(ctx).Info("mounted")

	out := buf.String()
	assert.Contains(t, out, "request_id=abc")
	assert.Contains(t, out, "feed=market")
	assert.Contains(t, out, "msg=mounted")
}
