package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, log.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, log.InfoLevel, ParseLevel("chatty"))
	assert.Equal(t, log.InfoLevel, ParseLevel(""))
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, log.InfoLevel)

	ctx := WithLogger(context.Background(), l)
	FromContext(ctx).Info("tile cached", "key", "17/1/2")
	assert.Contains(t, buf.String(), "tile cached")
	assert.Contains(t, buf.String(), "17/1/2")
}

func TestFromContextWithoutLogger(t *testing.T) {
	l := FromContext(context.Background())
	assert.NotNil(t, l)
	l.Error("dropped")
	assert.NotNil(t, OrDiscard(nil))
}
