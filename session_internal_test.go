package prismscene

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopTarget struct{}

func (nopTarget) Render(*Scene, *Camera) error { return nil }
func (nopTarget) SetSize(int, int)             {}

func TestMissingFontDegrades(t *testing.T) {
	var logs bytes.Buffer
	cfg := DefaultConfig()
	cfg.Seed = 3
	cfg.Label.Font = t.TempDir() + "/helvetiker_regular.typeface.ttf"
	cfg.Logger = slog.New(slog.NewTextHandler(&logs, nil))
	s, err := NewSession(context.Background(), cfg, nopTarget{})
	require.NoError(t, err)
	require.NotNil(t, s.label)
	select {
	case <-s.label.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("label task did not resolve")
	}
	s.Frame(time.Now())
	assert.Nil(t, s.label, "resolved task is dropped")
	assert.Nil(t, s.Scene.Label)
	assert.Contains(t, logs.String(), "label unavailable")
	s.Frame(time.Now())
	assert.Equal(t, uint64(2), s.Frames())
}

func TestStopCancelsLabel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 4
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := NewSession(context.Background(), cfg, nopTarget{})
	require.NoError(t, err)
	s.Stop()
	select {
	case <-s.label.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("label task did not resolve after Stop")
	}
	assert.True(t, s.Stopped())
}

func TestWrapAngle(t *testing.T) {
	assert.InDelta(t, 0.5, wrapAngle(0.5), 1e-6)
	assert.InDelta(t, 0.5, wrapAngle(twoPi+0.5), 1e-5)
	assert.InDelta(t, twoPi-0.5, wrapAngle(-0.5), 1e-5)
}
