package sweep

import (
	"time"

	"github.com/sw33tLie/curaudit/pkg/curation"
)

// WindowStats describes one pagination sweep.
type WindowStats struct {
	CreatedAtStart time.Time
	Pages          int
	Events         int
}

// Aggregate holds the running totals of a whole run.
type Aggregate struct {
	Start        time.Time
	ActionCounts curation.Tally
	// Blocked lists blocked events in discovery order.
	Blocked       []curation.Event
	EventsFetched int
	Pages         int
	Windows       []WindowStats
}

func NewAggregate(start time.Time) *Aggregate {
	return &Aggregate{Start: start, ActionCounts: curation.Tally{}}
}

// Merge folds the classification of one page into the totals.
func (a *Aggregate) Merge(c curation.Classification) {
	a.ActionCounts.Merge(c.ActionCounts)
	a.Blocked = append(a.Blocked, c.Blocked...)
	a.EventsFetched += c.Filtered.Meta.ResultCount
	a.Pages++

	if n := len(a.Windows); n > 0 {
		a.Windows[n-1].Pages++
		a.Windows[n-1].Events += c.Filtered.Meta.ResultCount
	}
}

func (a *Aggregate) beginWindow(createdAtStart time.Time) {
	a.Windows = append(a.Windows, WindowStats{CreatedAtStart: createdAtStart})
}
