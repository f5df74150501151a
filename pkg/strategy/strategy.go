// Package strategy decides per account between a one-shot profile dump and a
// windowed interval scan.
package strategy

import (
	"context"
	"fmt"
	"strings"

	"twharvest/pkg/handle"
	"twharvest/pkg/logger"
)

// Mode is the configured strategy selection
type Mode int

const (
	Auto Mode = iota
	Interval
	Profile
)

// ParseMode reads a configured mode name. The empty string means Auto.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "interval":
		return Interval, nil
	case "profile":
		return Profile, nil
	default:
		return Auto, fmt.Errorf("unknown strategy %q", s)
	}
}

func (m Mode) String() string {
	switch m {
	case Interval:
		return "interval"
	case Profile:
		return "profile"
	default:
		return "auto"
	}
}

// Strategy is the resolved fetch plan for one account
type Strategy int

const (
	// StrategyInterval scans weekly windows
	StrategyInterval Strategy = iota
	// StrategyProfile dumps the whole profile in one scraper run
	StrategyProfile
)

func (s Strategy) String() string {
	if s == StrategyProfile {
		return "profile"
	}
	return "interval"
}

// DefaultThreshold is the largest post count still fetched in one run
const DefaultThreshold = 3100

// Counter estimates an account's post count
type Counter interface {
	PostCount(ctx context.Context, h handle.Handle) (int, error)
}

// Selector resolves modes into strategies
type Selector struct {
	counter   Counter
	threshold int
	logger    logger.Logger
}

// NewSelector creates a selector probing through counter in Auto mode. A nil
// counter makes Auto always choose StrategyInterval.
func NewSelector(counter Counter, threshold int, log logger.Logger) *Selector {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Selector{
		counter:   counter,
		threshold: threshold,
		logger:    log,
	}
}

// Select returns the strategy for h. Interval and Profile modes are returned
// unchanged. Auto probes the account once and picks StrategyProfile when the
// count is at most the threshold; any probe failure falls back to
// StrategyInterval and is only logged.
func (s *Selector) Select(ctx context.Context, h handle.Handle, mode Mode) Strategy {
	switch mode {
	case Interval:
		return StrategyInterval
	case Profile:
		return StrategyProfile
	}

	if s.counter == nil {
		return StrategyInterval
	}

	count, err := s.counter.PostCount(ctx, h)
	if err != nil {
		s.logger.WithError(err).WarnWithFields("Post count probe failed, using interval strategy", map[string]interface{}{
			"handle": string(h),
		})
		return StrategyInterval
	}

	chosen := StrategyInterval
	if count <= s.threshold {
		chosen = StrategyProfile
	}

	s.logger.InfoWithFields("Strategy selected", map[string]interface{}{
		"handle":    string(h),
		"posts":     count,
		"threshold": s.threshold,
		"strategy":  chosen.String(),
	})
	return chosen
}
