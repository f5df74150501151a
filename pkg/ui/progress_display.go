package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"twharvest/pkg/handle"
	"twharvest/pkg/progress"
)

const barWidth = 20

// ProgressDisplay renders a single, rewritten progress line per account scan
type ProgressDisplay struct {
	mu        sync.Mutex
	current   handle.Handle
	startTime time.Time
	active    bool
}

// NewProgressDisplay creates a new progress display
func NewProgressDisplay() *ProgressDisplay {
	return &ProgressDisplay{}
}

// Update redraws the line for h. It matches harvest.ProgressFunc.
func (p *ProgressDisplay) Update(h handle.Handle, u progress.Update) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if h != p.current || !p.active {
		if p.active {
			printf(false, "\n")
		}
		p.current = h
		p.startTime = time.Now()
		p.active = true
	}

	printf(false, "\r%s\r%s", strings.Repeat(" ", 100), ProgressLine(h, u, time.Since(p.startTime)))

	if u.Current >= u.Total {
		printf(false, "\n")
		p.active = false
	}
}

// Finish terminates a line left open by an interrupted scan
func (p *ProgressDisplay) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		printf(false, "\n")
		p.active = false
	}
}

// ProgressLine formats one progress line
func ProgressLine(h handle.Handle, u progress.Update, elapsed time.Duration) string {
	filled := 0
	if u.Total > 0 {
		filled = min(u.Current*barWidth/u.Total, barWidth)
	}
	bar := strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)

	return fmt.Sprintf("%s [%s] %d/%d windows • %.0f%% • %s",
		Cyan(string(h)),
		bar,
		u.Current,
		u.Total,
		u.Percent,
		FormatDuration(elapsed),
	)
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
