package ui

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/adelmans/zev/internal/history"
)

const (
	// HistoryShowLimit is how many entries the history menu lists before "Show more"
	HistoryShowLimit = 5

	showMoreOption = "Show more"
)

// SelectHistory lists past queries, most recent first, and opens the option
// menu for the one the user picks.
func (s *Selector) SelectHistory(ctx context.Context, entries []history.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintln(s.Out, "No command history found")
		return nil
	}

	recent := make([]history.Entry, len(entries))
	for i, e := range entries {
		recent[len(entries)-1-i] = e
	}

	if !s.Interactive {
		for i, e := range recent {
			fmt.Fprintf(s.Out, "%d. %s\n", i+1, historyLabel(e))
		}
		return nil
	}

	limit := HistoryShowLimit
	for {
		shown := recent
		truncated := len(recent) > limit
		if truncated {
			shown = recent[:limit]
		}

		labels := make([]string, 0, len(shown)+2)
		for _, e := range shown {
			labels = append(labels, historyLabel(e))
		}
		if truncated {
			labels = append(labels, showMoreOption)
		}
		labels = append(labels, cancelOption)

		idx, err := s.Menu("Select from history:", labels)
		if err != nil {
			if IsInterrupt(err) {
				return nil
			}
			return fmt.Errorf("failed to get selection: %w", err)
		}

		switch {
		case idx >= 0 && idx < len(shown):
			return s.SelectOption(ctx, &shown[idx].Response)
		case truncated && idx == len(shown):
			limit = len(recent)
		default:
			return nil
		}
	}
}

func historyLabel(e history.Entry) string {
	if e.CreatedAt.IsZero() {
		return e.Query
	}
	return fmt.Sprintf("%s (%s)", e.Query, humanize.Time(e.CreatedAt))
}
