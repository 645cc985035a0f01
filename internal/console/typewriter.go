package console

import (
	"context"
	"time"
)

// Typewriter reveals text a few characters at a time. It is cosmetic: the
// last frame it emits is always the complete text.
type Typewriter struct {
	Step     int
	Interval time.Duration
	Timeout  time.Duration
}

// DefaultTypewriter reveals 3 characters every 20ms and gives up after 10s.
var DefaultTypewriter = Typewriter{Step: 3, Interval: 20 * time.Millisecond, Timeout: 10 * time.Second}

// Reveal calls emit with growing prefixes of text. Cancelling ctx or hitting
// the timeout jumps straight to the full text.
func (t Typewriter) Reveal(ctx context.Context, text string, emit func(string)) {
	runes := []rune(text)
	step := t.Step
	if step <= 0 {
		step = DefaultTypewriter.Step
	}
	if t.Interval <= 0 || len(runes) <= step {
		emit(text)
		return
	}
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = DefaultTypewriter.Timeout
	}

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	shown := 0
	for {
		select {
		case <-ctx.Done():
			emit(text)
			return
		case <-deadline.C:
			emit(text)
			return
		case <-ticker.C:
			shown += step
			if shown >= len(runes) {
				emit(text)
				return
			}
			emit(string(runes[:shown]))
		}
	}
}
