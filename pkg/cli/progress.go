package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter reports progress for long-running operations.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
	Error(err error)
}

// SimpleProgress is a single-line text progress bar. It is safe for
// concurrent use and ignores updates that would move it backwards, since
// cells finish out of order.
type SimpleProgress struct {
	mu       sync.Mutex
	total    int64
	current  int64
	lastPct  int
	started  time.Time
	writer   io.Writer
	finished bool
}

// NewProgressReporter creates a new progress reporter that writes to w.
// If w is nil, it defaults to os.Stderr so stdout stays clean for reports.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	return &SimpleProgress{
		writer:  w,
		lastPct: -1,
	}
}

// Start initializes the progress reporter with the total number of items.
func (p *SimpleProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.lastPct = -1
	p.finished = false
	p.started = time.Now()

	p.render()
}

// Update moves the bar to current. The bar is only redrawn when the whole
// percentage changes.
func (p *SimpleProgress) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if current <= p.current || p.finished {
		return
	}
	p.current = current
	p.render()
}

// Finish marks the progress as complete.
func (p *SimpleProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finished {
		return
	}
	p.finished = true
	p.current = p.total
	p.lastPct = -1
	p.render()
	fmt.Fprintln(p.writer)
}

// Error reports an error during progress.
func (p *SimpleProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.finished = true
	fmt.Fprintf(p.writer, "\n✗ Error: %v\n", err)
}

// Callback adapts the reporter to the pipeline progress hook, which
// reports finished cells out of the total cell count. The hook is called
// from concurrent workers, so counts may arrive out of order; only counts
// above the highest one seen reach the reporter.
func Callback(p ProgressReporter) func(done, total int) {
	var (
		mu      sync.Mutex
		started bool
		highest int
	)
	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()

		if !started {
			started = true
			p.Start(int64(total))
		}
		if done <= highest {
			return
		}
		highest = done
		p.Update(int64(done))
	}
}

func (p *SimpleProgress) render() {
	if p.total == 0 {
		return
	}

	percent := float64(p.current) / float64(p.total) * 100
	if int(percent) == p.lastPct {
		return
	}
	p.lastPct = int(percent)

	barWidth := 40
	filled := int(float64(barWidth) * percent / 100)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	elapsed := time.Since(p.started)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.current) / elapsed.Seconds()
	}

	fmt.Fprintf(p.writer, "\rValidating: [%s] %.1f%% (%d/%d cells) %.1f cells/s",
		bar, percent, p.current, p.total, rate)
}
