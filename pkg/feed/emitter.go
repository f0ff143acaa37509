package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/bidfeed/pkg/domain"
)

//go:generate moq -out mocks/collector.go -pkg mocks -skip-ensure -fmt goimports . Collector
//go:generate moq -out mocks/output.go -pkg mocks -skip-ensure -fmt goimports . Output

// Collector provides the items of a run
type Collector interface {
	Collect(ctx context.Context, now time.Time) ([]domain.Item, error)
}

// Output persists a rendered feed
type Output interface {
	Write(ctx context.Context, data []byte) error
	Exists() bool
}

// Outcome is the terminal state of a run
type Outcome string

// run outcomes
const (
	OutcomeItems   Outcome = "items"   // feed with entries
	OutcomeEmpty   Outcome = "empty"   // nothing found, placeholder feed
	OutcomeFailure Outcome = "failure" // collection failed, placeholder feed
)

// Report describes a completed run
type Report struct {
	Outcome   Outcome
	Items     int
	StartedAt time.Time
	Duration  time.Duration
	Err       error // collection error for OutcomeFailure
	Kept      bool  // cancelled run, the previous feed file was left in place
}

// Settings define the fixed feed metadata
type Settings struct {
	Title              string
	Link               string
	SelfLink           string
	Description        string
	EmptyDescription   string
	FailureDescription string
	Language           string
	Pretty             bool
	KeepOnCancel       bool // don't replace an existing feed with the failure placeholder if the run was cancelled
}

// Emitter runs the collector and always writes a valid feed, a placeholder one
// if there is nothing to publish or the collection failed
type Emitter struct {
	collector Collector
	output    Output
	generator *Generator
	settings  Settings
	now       func() time.Time
}

// NewEmitter makes an emitter
func NewEmitter(collector Collector, output Output, settings Settings) *Emitter {
	return &Emitter{
		collector: collector,
		output:    output,
		generator: NewGenerator("bidfeed"),
		settings:  settings,
		now:       time.Now,
	}
}

// Emit collects items and writes the feed. The returned error is set only if
// the feed could not be rendered or written.
func (e *Emitter) Emit(ctx context.Context) (Report, error) {
	started := e.now()
	report := Report{StartedAt: started}

	doc := Document{
		Title:     e.settings.Title,
		Link:      e.settings.Link,
		SelfLink:  e.settings.SelfLink,
		Language:  e.settings.Language,
		BuildTime: started,
	}

	items, err := e.collect(ctx, started)
	switch {
	case err != nil:
		lgr.Printf("[ERROR] failed to collect items: %v", err)
		report.Outcome, report.Err = OutcomeFailure, err
		doc.Description = e.settings.FailureDescription
	case len(items) == 0:
		lgr.Printf("[WARN] no items found")
		report.Outcome = OutcomeEmpty
		doc.Description = e.settings.EmptyDescription
	default:
		lgr.Printf("[INFO] collected %d items", len(items))
		report.Outcome, report.Items = OutcomeItems, len(items)
		doc.Description = e.settings.Description
		doc.Items = items
	}

	if e.settings.KeepOnCancel && errors.Is(report.Err, context.Canceled) && e.output.Exists() {
		report.Kept, report.Duration = true, e.now().Sub(started)
		lgr.Printf("[INFO] run cancelled, previous feed kept")
		return report, nil
	}

	data, err := e.generator.Generate(doc, e.settings.Pretty)
	if err != nil {
		report.Duration = e.now().Sub(started)
		return report, fmt.Errorf("generate feed: %w", err)
	}
	if _, err := Verify(data); err != nil {
		lgr.Printf("[WARN] generated feed failed verification: %v", err)
	}

	// the feed is written even if the run was cancelled
	if err := e.output.Write(context.WithoutCancel(ctx), data); err != nil {
		report.Duration = e.now().Sub(started)
		return report, fmt.Errorf("write feed: %w", err)
	}

	report.Duration = e.now().Sub(started)
	lgr.Printf("[INFO] feed written, outcome %s, %d items in %v", report.Outcome, report.Items, report.Duration)
	return report, nil
}

// collect calls the collector, a panic is turned into an error
func (e *Emitter) collect(ctx context.Context, now time.Time) (items []domain.Item, err error) {
	defer func() {
		if r := recover(); r != nil {
			items, err = nil, fmt.Errorf("collector panic: %v", r)
		}
	}()
	return e.collector.Collect(ctx, now)
}
