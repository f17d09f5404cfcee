// Package display owns the physical panel: it serializes hardware access,
// keeps a shown frame up for a configured hold time and blanks the panel
// when idle.
package display

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"
)

// ErrUnavailable reports a hardware or link failure while driving the panel.
var ErrUnavailable = errors.New("display unavailable")

// Screen abstracts the panel driver.
type Screen interface {
	Draw(image.Image) error
	Power(on bool) error
	Backlight(on bool) error
	Bounds() image.Rectangle
	Halt() error
}

// Worker is the single owner of a Screen. Show may be called from any
// goroutine; all hardware access is serialized behind the worker's lock.
type Worker struct {
	holdFor time.Duration

	mu      sync.Mutex // guards screen, lit and shownAt
	screen  Screen
	lit     bool
	shownAt time.Time

	idle *time.Timer
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

// NewWorker starts the blanking loop around screen. Each shown frame stays
// visible for holdFor, then the panel powers down until the next frame.
func NewWorker(screen Screen, holdFor time.Duration) *Worker {
	w := &Worker{
		holdFor: holdFor,
		screen:  screen,
		idle:    time.NewTimer(holdFor),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	w.idle.Stop()
	go w.loop()
	return w
}

// Show powers the panel, draws img and arms the idle timer. Errors from the
// hardware link are reported as ErrUnavailable; nothing is retried.
func (w *Worker) Show(img image.Image) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.lit {
		if err := w.screen.Power(true); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if err := w.screen.Backlight(true); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		w.lit = true
	}
	if err := w.screen.Draw(img); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	w.shownAt = time.Now()
	w.idle.Reset(w.holdFor)
	return nil
}

// Clear draws a black frame. The panel blanks after the usual hold time.
func (w *Worker) Clear() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	black := image.NewRGBA(w.screen.Bounds())
	if err := w.screen.Draw(black); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	w.lit = true
	w.shownAt = time.Now()
	w.idle.Reset(w.holdFor)
	return nil
}

// Close stops the blanking loop and shuts the panel down. Safe to call more
// than once.
func (w *Worker) Close() error {
	w.once.Do(func() {
		close(w.quit)
	})
	<-w.done
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lit {
		_ = w.screen.Backlight(false)
		_ = w.screen.Power(false)
		w.lit = false
	}
	return w.screen.Halt()
}

func (w *Worker) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.idle.C:
			w.blankIfIdle()
		case <-w.quit:
			w.idle.Stop()
			return
		}
	}
}

// blankIfIdle powers the panel down once the current frame's hold time has
// elapsed. A frame shown between the timer firing and this lock acquisition
// still owes its full hold time, so a stale expiry re-arms the timer for the
// remainder instead of blanking. Power-down failures are ignored; the next
// Show reports them if the link is really gone.
func (w *Worker) blankIfIdle() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.lit {
		return
	}
	if rest := w.holdFor - time.Since(w.shownAt); rest > 0 {
		w.idle.Reset(rest)
		return
	}
	_ = w.screen.Backlight(false)
	_ = w.screen.Power(false)
	w.lit = false
}
