package server

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/server/config"
	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	c := &config.Config{}
	c.LoadDefaults()
	c.HTTPAddr = "127.0.0.1:0"
	c.MetadataBackend = config.MetadataBadger
	c.BadgerDir = filepath.Join(dir, "meta")
	c.BlobBackend = config.BlobLocal
	c.LocalRoot = filepath.Join(dir, "blobs")
	c.LogLevel = "error"
	return c
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), localConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestNewApp_UnknownBackends(t *testing.T) {
	c := localConfig(t)
	c.MetadataBackend = "mongo"
	_, err := NewApp(context.Background(), c)
	assert.Error(t, err)

	c = localConfig(t)
	c.BlobBackend = "ftp"
	_, err = NewApp(context.Background(), c)
	assert.Error(t, err)
}

func TestNewLogger_FileSink(t *testing.T) {
	c := localConfig(t)

	l, err := NewLogger(c)
	require.NoError(t, err)
	assert.IsType(t, &logging.SlogLogger{}, l)

	c.LogFile = filepath.Join(t.TempDir(), "server.log")
	l, err = NewLogger(c)
	require.NoError(t, err)
	assert.IsType(t, &logging.ZapLogger{}, l)
}

type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) PingContext(context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestPingWithRetry(t *testing.T) {
	ctx := context.Background()
	backoff := func() retry.Backoff { return retry.WithMaxRetries(3, retry.NewConstant(time.Millisecond)) }

	p := &flakyPinger{failures: 2}
	require.NoError(t, pingWithRetry(ctx, p, logging.Nop(), backoff()))
	assert.Equal(t, 3, p.calls)

	p = &flakyPinger{failures: 10}
	assert.Error(t, pingWithRetry(ctx, p, logging.Nop(), backoff()))
	assert.Equal(t, 4, p.calls)
}
