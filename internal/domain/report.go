package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Report is the output of one exercise run. Either section may be nil when
// its input was not configured.
type Report struct {
	ID          string           `json:"id" yaml:"id"`
	GeneratedAt time.Time        `json:"generated_at" yaml:"generated_at"`
	Smoothing   *SmoothingReport `json:"smoothing,omitempty" yaml:"smoothing,omitempty"`
	Wind        *WindReport      `json:"wind,omitempty" yaml:"wind,omitempty"`
}

// SmoothingReport describes an image and what repeated smoothing did to it.
type SmoothingReport struct {
	Source   string        `json:"source" yaml:"source"`
	Rows     int           `json:"rows" yaml:"rows"`
	Cols     int           `json:"cols" yaml:"cols"`
	Channels int           `json:"channels" yaml:"channels"`
	Original Stats         `json:"original" yaml:"original"`
	Passes   []PassSummary `json:"passes" yaml:"passes"`
}

// PassSummary is the result of refiltering n times. Smoothed and Difference
// are nil once the image has been exhausted.
type PassSummary struct {
	Iterations int    `json:"iterations" yaml:"iterations"`
	Rows       int    `json:"rows" yaml:"rows"`
	Cols       int    `json:"cols" yaml:"cols"`
	Exhausted  bool   `json:"exhausted" yaml:"exhausted"`
	Smoothed   *Stats `json:"smoothed,omitempty" yaml:"smoothed,omitempty"`
	Difference *Stats `json:"difference,omitempty" yaml:"difference,omitempty"`
}

// LocationStats pairs a station with its statistics.
type LocationStats struct {
	Location string `json:"location" yaml:"location"`
	Column   int    `json:"column" yaml:"column"`
	Stats    `yaml:",inline"`
}

// LocationMean pairs a station with a mean speed.
type LocationMean struct {
	Location string  `json:"location" yaml:"location"`
	Mean     float64 `json:"mean" yaml:"mean"`
}

// WindReport collects the wind statistics exercise.
type WindReport struct {
	Source     string          `json:"source" yaml:"source"`
	Days       int             `json:"days" yaml:"days"`
	FirstDate  time.Time       `json:"first_date" yaml:"first_date"`
	LastDate   time.Time       `json:"last_date" yaml:"last_date"`
	Overall    Stats           `json:"overall" yaml:"overall"`
	ByLocation []LocationStats `json:"by_location" yaml:"by_location"`
	// WindiestDays counts how often each location had the day's top reading.
	WindiestDays map[string]int `json:"windiest_days" yaml:"windiest_days"`
	Peak         PeakReading    `json:"peak" yaml:"peak"`
	January      []LocationMean `json:"january_means,omitempty" yaml:"january_means,omitempty"`
	Monthly      []PeriodMean   `json:"monthly_means" yaml:"monthly_means"`
	Weekly       []Stats        `json:"weekly" yaml:"weekly"`
}

// ReportWeeks is how many leading weeks the wind report summarises.
const ReportWeeks = 52

// NewReport stamps an empty report with a fresh ID and the current time.
func NewReport() Report {
	return Report{
		ID:          uuid.NewString(),
		GeneratedAt: clock.Now().UTC(),
	}
}

// BuildWindReport runs every wind statistics reduction over t.
func BuildWindReport(source string, t *WindTable) *WindReport {
	r := &WindReport{
		Source:       source,
		Days:         t.Len(),
		FirstDate:    t.records[0].Date,
		LastDate:     t.records[t.Len()-1].Date,
		Overall:      t.Overall(),
		WindiestDays: make(map[string]int, LocationCount),
		Peak:         t.Peak(),
		Monthly:      t.MonthlyMeans(),
		Weekly:       t.WeeklyStats(ReportWeeks),
	}

	for j, s := range t.ByLocation() {
		r.ByLocation = append(r.ByLocation, LocationStats{Location: Locations[j], Column: Column(j), Stats: s})
	}
	for _, loc := range t.WindiestLocationByDay() {
		r.WindiestDays[Locations[loc]]++
	}
	// A dataset without January rows simply has no January section.
	if means, err := t.MonthMeans(time.January); err == nil {
		for j, m := range means {
			r.January = append(r.January, LocationMean{Location: Locations[j], Mean: m})
		}
	}
	return r
}

// SummarizePass describes the result of refiltering original n times.
func SummarizePass(original, smoothed Image, n int) (PassSummary, error) {
	p := PassSummary{
		Iterations: n,
		Rows:       smoothed.Rows(),
		Cols:       smoothed.Cols(),
		Exhausted:  smoothed.Empty(),
	}
	if p.Exhausted {
		return p, nil
	}

	s, err := smoothed.Describe()
	if err != nil {
		return PassSummary{}, err
	}
	p.Smoothed = &s

	diff, err := DifferenceImage(smoothed, original, n)
	if err != nil {
		return PassSummary{}, err
	}
	d, err := diff.Describe()
	if err != nil {
		return PassSummary{}, err
	}
	p.Difference = &d
	return p, nil
}

// OutputEvent is the serialized form of a report handed to a sink.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// SerializeReport encodes a report as JSON keyed by its ID.
func SerializeReport(r Report) (OutputEvent, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize report: %w", err)
	}

	sections := "none"
	switch {
	case r.Smoothing != nil && r.Wind != nil:
		sections = "smoothing,wind"
	case r.Smoothing != nil:
		sections = "smoothing"
	case r.Wind != nil:
		sections = "wind"
	}

	return OutputEvent{
		Key:   []byte(r.ID),
		Value: data,
		Headers: map[string]string{
			"sections":     sections,
			"generated_at": r.GeneratedAt.Format(time.RFC3339),
		},
	}, nil
}
