package console

import (
	"context"
	"testing"
	"time"
)

func TestTypewriterRevealsInSteps(t *testing.T) {
	var frames []string
	Typewriter{Step: 3, Interval: time.Millisecond, Timeout: time.Second}.
		Reveal(context.Background(), "abcdefgh", func(s string) { frames = append(frames, s) })

	want := []string{"abc", "abcdef", "abcdefgh"}
	if len(frames) != len(want) {
		t.Fatalf("frames = %q, want %q", frames, want)
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Fatalf("frame %d = %q, want %q", i, frames[i], want[i])
		}
	}
}

func TestTypewriterTimeoutEndsOnFullText(t *testing.T) {
	var last string
	Typewriter{Step: 1, Interval: time.Hour, Timeout: 5 * time.Millisecond}.
		Reveal(context.Background(), "a long enhanced prompt", func(s string) { last = s })
	if last != "a long enhanced prompt" {
		t.Fatalf("last frame = %q", last)
	}
}

func TestTypewriterCanceledEndsOnFullText(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var frames []string
	Typewriter{Step: 1, Interval: time.Hour, Timeout: time.Hour}.
		Reveal(ctx, "hello world", func(s string) { frames = append(frames, s) })
	if len(frames) != 1 || frames[0] != "hello world" {
		t.Fatalf("frames = %q", frames)
	}
}

func TestTypewriterKeepsRunesWhole(t *testing.T) {
	var frames []string
	Typewriter{Step: 1, Interval: time.Millisecond, Timeout: time.Second}.
		Reveal(context.Background(), "日本語", func(s string) { frames = append(frames, s) })
	want := []string{"日", "日本", "日本語"}
	for i := range want {
		if frames[i] != want[i] {
			t.Fatalf("frame %d = %q, want %q", i, frames[i], want[i])
		}
	}
}

func TestDefaultTypewriter(t *testing.T) {
	if DefaultTypewriter.Step != 3 || DefaultTypewriter.Interval != 20*time.Millisecond || DefaultTypewriter.Timeout != 10*time.Second {
		t.Fatalf("DefaultTypewriter = %+v", DefaultTypewriter)
	}
}
