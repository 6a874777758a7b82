package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sw33tLie/curaudit/pkg/curation"
	"golang.org/x/time/rate"
)

const (
	Day = 24 * time.Hour

	DefaultSpan = 30 * Day
	DefaultStep = 7 * Day
)

var ErrOffsetNotAdvancing = errors.New("pagination offset did not advance")

// Logger abstracts logging so callers can plug logrus or anything with the same methods.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// PageFetcher retrieves one page of audit events.
type PageFetcher interface {
	FetchPage(ctx context.Context, q curation.PageQuery) (curation.Page, error)
}

// Progress is reported before a page request.
type Progress struct {
	CreatedAtStart time.Time
	EventsFetched  int
	Offset         int
}

// Walker sweeps the audit log from Now()-Span up to Now() in sub-windows of Step.
// Every sub-window only sets a lower bound, so later sweeps see the events of the
// earlier ones again.
type Walker struct {
	Fetcher  PageFetcher
	Span     time.Duration // defaults to 30 days if zero
	Step     time.Duration // defaults to 7 days if zero
	PageSize int           // defaults to curation.DefaultPageSize if <= 0

	Now        func() time.Time // optional
	OnProgress func(Progress)   // optional; called at most once per second
	Log        Logger           // optional
}

// Run drives all sub-windows to exhaustion. The first error aborts the run and
// no partial aggregate is returned.
func (w *Walker) Run(ctx context.Context) (*Aggregate, error) {
	if w.Fetcher == nil {
		return nil, errors.New("walker has no page fetcher")
	}
	span, step := w.Span, w.Step
	if span == 0 {
		span = DefaultSpan
	}
	if step == 0 {
		step = DefaultStep
	}
	if span < 0 || step < 0 {
		return nil, fmt.Errorf("span (%s) and step (%s) must be positive", span, step)
	}
	log := w.Log
	if log == nil {
		log = nopLogger{}
	}
	now := w.Now
	if now == nil {
		now = time.Now
	}
	progress := rate.Sometimes{First: 1, Interval: time.Second}

	start := now().UTC().Truncate(time.Second)
	agg := NewAggregate(start)

	for curr := start.Add(-span); curr.Before(start); curr = curr.Add(step) {
		agg.beginWindow(curr)
		log.Debugf("Sweeping audit events created after %s", curation.FormatCursor(curr))

		offset := 0
		for {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if w.OnProgress != nil {
				p := Progress{CreatedAtStart: curr, EventsFetched: agg.EventsFetched, Offset: offset}
				progress.Do(func() { w.OnProgress(p) })
			}

			page, err := w.Fetcher.FetchPage(ctx, curation.PageQuery{
				CreatedAtStart: curr,
				Offset:         offset,
				PageSize:       w.PageSize,
			})
			if err != nil {
				return nil, err
			}

			agg.Merge(curation.Classify(page))

			if !page.HasNext() {
				break
			}
			if page.Meta.NextOffset <= offset {
				return nil, fmt.Errorf("%w: next_offset %d after offset %d", ErrOffsetNotAdvancing, page.Meta.NextOffset, offset)
			}
			offset = page.Meta.NextOffset
		}

		last := agg.Windows[len(agg.Windows)-1]
		log.Debugf("Window %s done: %d pages, %d events", curation.FormatCursor(curr), last.Pages, last.Events)
	}

	return agg, nil
}
