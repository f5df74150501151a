// Package interval partitions the harvestable history into weekly windows.
package interval

import (
	"fmt"
	"iter"
	"slices"
	"time"
)

// TimestampLayout is the format the scraper expects for --since/--until
const TimestampLayout = "2006-01-02 15:04:05"

// Week is the width of every window except possibly the last one
const Week = 7 * 24 * time.Hour

// Epoch is the first instant covered by a plan
var Epoch = time.Date(2011, time.January, 1, 0, 0, 0, 0, time.UTC)

// Window is a half-open time span [Start, End)
type Window struct {
	Start time.Time
	End   time.Time
}

// Since formats the window start for the scraper
func (w Window) Since() string { return w.Start.Format(TimestampLayout) }

// Until formats the window end for the scraper
func (w Window) Until() string { return w.End.Format(TimestampLayout) }

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Since(), w.Until())
}

// EndOfDay returns the exclusive end of the UTC day containing now
func EndOfDay(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}

// Plan yields one window per week from Epoch through the end of the day
// containing now. The last window is clipped at EndOfDay(now), so the windows
// are contiguous and together cover exactly [Epoch, EndOfDay(now)). Each call
// derives a fresh sequence; nothing is cached between calls.
func Plan(now time.Time) iter.Seq[Window] {
	end := EndOfDay(now)
	return func(yield func(Window) bool) {
		for start := Epoch; start.Before(end); start = start.Add(Week) {
			w := Window{Start: start, End: start.Add(Week)}
			if w.End.After(end) {
				w.End = end
			}
			if !yield(w) {
				return
			}
		}
	}
}

// Windows collects Plan(now) into a slice
func Windows(now time.Time) []Window {
	return slices.Collect(Plan(now))
}

// Count returns the number of windows Plan(now) yields without materializing
// them
func Count(now time.Time) int {
	end := EndOfDay(now)
	if !end.After(Epoch) {
		return 0
	}
	elapsed := end.Sub(Epoch)
	n := int(elapsed / Week)
	if elapsed%Week != 0 {
		n++
	}
	return n
}
