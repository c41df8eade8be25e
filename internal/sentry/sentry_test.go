package sentry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_DSN(t *testing.T) {
	t.Parallel()
	cfg := Config{Token: "abc", Host: "errors.betterstack.com"}
	assert.Equal(t, "https://abc@errors.betterstack.com/1", cfg.DSN())
}

func TestInitialize_EmptyToken(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Initialize(Config{}))
}

func TestInitialize_MissingHost(t *testing.T) {
	t.Parallel()
	assert.Error(t, Initialize(Config{Token: "test-token"}))
}

func TestInitialize_ValidConfig(t *testing.T) {
	// Sentry keeps global state; not parallel.
	err := Initialize(Config{
		Token:       "test-token",
		Host:        "errors.betterstack.com",
		Environment: "test",
		ServerName:  "library-assistant",
	})
	assert.NoError(t, err)
	assert.True(t, IsEnabled())

	assert.NotPanics(t, func() {
		CaptureException(context.Background(), errors.New("boom"))
		CaptureException(context.Background(), nil)
	})
	Flush(100 * time.Millisecond)
}
