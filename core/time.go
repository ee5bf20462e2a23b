// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"time"
)

// DefaultEventPollDelay is used when no delay is configured.
const DefaultEventPollDelay = 10

// NewTime creates a new time service
func NewTime(cfg TimeConfiguration) *Time {
	var interval time.Duration
	if cfg.FramesPerSecond == 0 {
		interval = time.Nanosecond
	} else {
		interval = time.Second / (time.Duration)(cfg.FramesPerSecond)
	}

	delay := cfg.EventPollDelay
	if delay <= 0 {
		delay = DefaultEventPollDelay
	}

	return &Time{
		fps:            cfg.FramesPerSecond,
		fpsTicker:      time.NewTicker(interval),
		eventPollDelay: delay,
		eventTicker:    time.NewTicker(time.Duration(delay) * time.Millisecond),
		start:          time.Now(),
	}
}

// Time contains all the time services and tickers
type Time struct {
	fps       int
	fpsTicker *time.Ticker

	eventPollDelay int
	eventTicker    *time.Ticker

	start  time.Time
	frames uint64
}

// Fps gets the set frames per second
func (t *Time) Fps() int {
	return t.fps
}

// FpsTicker gets the initialized fps ticker
func (t *Time) FpsTicker() *time.Ticker {
	return t.fpsTicker
}

// EventPollDelay gets the delay between event polls
func (t *Time) EventPollDelay() time.Duration {
	return time.Duration(t.eventPollDelay) * time.Millisecond
}

// EventTicker gets the initialized event ticker for the event loop
func (t *Time) EventTicker() *time.Ticker {
	return t.eventTicker
}

// Frame counts a finished frame and returns how many have passed.
func (t *Time) Frame() uint64 {
	t.frames++
	return t.frames
}

// Elapsed returns the time since the service was created.
func (t *Time) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Stop stops the tickers.
func (t *Time) Stop() {
	t.fpsTicker.Stop()
	t.eventTicker.Stop()
}
