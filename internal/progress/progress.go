// Package progress models the synthetic analysis timeline shown while a
// request is in flight. The timeline is pure bookkeeping: callers own the
// clock and ask for a snapshot at a given elapsed duration, so there is no
// timer to leak and stale updates are trivially discarded.
package progress

import (
	"fmt"
	"time"
)

// DefaultPhases are the narrative stages surfaced while an analysis runs.
// They are cosmetic; the backend reports nothing until it finishes.
var DefaultPhases = []string{
	"Analyzing company data...",
	"Processing market insights...",
	"Evaluating competitive landscape...",
	"Generating strategic recommendations...",
	"Finalizing comprehensive report...",
}

const (
	// DefaultTotal is the advertised analysis duration.
	DefaultTotal = 7 * time.Minute

	// TickInterval is how often the display refreshes.
	TickInterval = time.Second
)

// Snapshot is the displayable state of the timeline at one instant.
type Snapshot struct {
	Phase      string
	Percentage float64
	Remaining  time.Duration
}

// Timeline divides a total duration into equal phases.
type Timeline struct {
	Phases []string
	Total  time.Duration
}

// NewTimeline returns a timeline with the default phases and duration.
func NewTimeline() Timeline {
	return Timeline{Phases: DefaultPhases, Total: DefaultTotal}
}

// At reports the snapshot for the given elapsed duration. ok is false once
// elapsed reaches the total, which tells the caller to stop ticking even if
// the request itself has not settled.
func (tl Timeline) At(elapsed time.Duration) (Snapshot, bool) {
	if len(tl.Phases) == 0 || tl.Total <= 0 {
		return Snapshot{}, false
	}
	if elapsed < 0 {
		elapsed = 0
	}

	pct := float64(elapsed) / float64(tl.Total) * 100
	if pct > 100 {
		pct = 100
	}

	phaseLen := tl.Total / time.Duration(len(tl.Phases))
	idx := int(elapsed / phaseLen)
	if idx > len(tl.Phases)-1 {
		idx = len(tl.Phases) - 1
	}

	remaining := tl.Total - elapsed
	if remaining < 0 {
		remaining = 0
	}

	return Snapshot{
		Phase:      tl.Phases[idx],
		Percentage: pct,
		Remaining:  remaining,
	}, elapsed < tl.Total
}

// FormatRemaining renders a duration as M:SS for the countdown badge.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
