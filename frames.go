package prismscene

import (
	"context"
	"fmt"
	"time"
)

// MaxFPS is the highest frame rate a [TickerFrames] accepts.
const MaxFPS = 1000

// TickerFrames is a [FrameSource] paced by a ticker, for hosts without a display.
type TickerFrames struct {
	ticker *time.Ticker
	limit  int
	n      int
}

// NewTickerFrames delivers fps frames per second. If limit is positive
// NextFrame returns [ErrClosed] after limit frames. Call Stop to release the ticker.
func NewTickerFrames(fps, limit int) (*TickerFrames, error) {
	if fps <= 0 || fps > MaxFPS {
		return nil, fmt.Errorf("fps %d out of range (0,%d]", fps, MaxFPS)
	}
	return &TickerFrames{
		ticker: time.NewTicker(time.Second / time.Duration(fps)),
		limit:  limit,
	}, nil
}

func (tf *TickerFrames) NextFrame(ctx context.Context) (time.Time, error) {
	if tf.limit > 0 && tf.n >= tf.limit {
		return time.Time{}, ErrClosed
	}
	select {
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	case now := <-tf.ticker.C:
		tf.n++
		return now, nil
	}
}

// Stop releases the underlying ticker.
func (tf *TickerFrames) Stop() {
	tf.ticker.Stop()
}
