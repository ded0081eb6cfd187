package domain

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DaysPerWeek is the block length used by WeeklyStats.
const DaysPerWeek = 7

// Stats summarises a set of readings. Std is the population standard
// deviation (divides by n).
type Stats struct {
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
	Mean float64 `json:"mean" yaml:"mean"`
	Std  float64 `json:"std" yaml:"std"`
}

// describe requires a non-empty slice.
func describe(x []float64) Stats {
	mean, std := stat.PopMeanStdDev(x, nil)
	return Stats{
		Min:  floats.Min(x),
		Max:  floats.Max(x),
		Mean: mean,
		Std:  std,
	}
}

// PeakReading locates the single greatest reading in the table.
type PeakReading struct {
	Date     time.Time `json:"date" yaml:"date"`
	Row      int       `json:"row" yaml:"row"`
	Location string    `json:"location" yaml:"location"`
	Column   int       `json:"column" yaml:"column"`
	Speed    float64   `json:"speed" yaml:"speed"`
}

// PeriodMean is the mean over all locations for one calendar month.
type PeriodMean struct {
	Year  int        `json:"year" yaml:"year"`
	Month time.Month `json:"month" yaml:"month"`
	Days  int        `json:"days" yaml:"days"`
	Mean  float64    `json:"mean" yaml:"mean"`
}

// Overall summarises every reading across all locations and days.
func (t *WindTable) Overall() Stats {
	return describe(t.speeds.RawMatrix().Data)
}

// ByLocation reduces over days, one Stats per location.
func (t *WindTable) ByLocation() []Stats {
	out := make([]Stats, LocationCount)
	col := make([]float64, t.Len())
	for j := range out {
		mat.Col(col, j, t.speeds)
		out[j] = describe(col)
	}
	return out
}

// ByDay reduces over locations, one Stats per day.
func (t *WindTable) ByDay() []Stats {
	out := make([]Stats, t.Len())
	for i := range out {
		out[i] = describe(t.speeds.RawRowView(i))
	}
	return out
}

// WindiestLocationByDay returns, for each day, the index of the location
// with the highest reading. Ties go to the first location.
func (t *WindTable) WindiestLocationByDay() []int {
	out := make([]int, t.Len())
	for i := range out {
		out[i] = floats.MaxIdx(t.speeds.RawRowView(i))
	}
	return out
}

// Peak finds the greatest reading, scanning day by day then location by
// location and keeping the first maximum.
func (t *WindTable) Peak() PeakReading {
	data := t.speeds.RawMatrix().Data
	k := floats.MaxIdx(data)
	row, loc := k/LocationCount, k%LocationCount
	return PeakReading{
		Date:     t.records[row].Date,
		Row:      row,
		Location: Locations[loc],
		Column:   Column(loc),
		Speed:    data[k],
	}
}

// MonthMeans returns the per-location mean over every day that falls in
// the given calendar month, across all years.
func (t *WindTable) MonthMeans(month time.Month) ([]float64, error) {
	var rows []int
	for i, rec := range t.records {
		if rec.Date.Month() == month {
			rows = append(rows, i)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("month %s: %w", month, ErrNoData)
	}

	sums := make([]float64, LocationCount)
	for _, i := range rows {
		floats.Add(sums, t.speeds.RawRowView(i))
	}
	floats.Scale(1/float64(len(rows)), sums)
	return sums, nil
}

// MonthlyMeans returns the mean across all locations for every distinct
// year-month, in the order the months first appear. January 1961 and
// January 1962 are different months.
func (t *WindTable) MonthlyMeans() []PeriodMean {
	type key struct {
		year  int
		month time.Month
	}
	index := make(map[key]int)
	var out []PeriodMean
	var sums []float64

	for i, rec := range t.records {
		k := key{rec.Date.Year(), rec.Date.Month()}
		pos, ok := index[k]
		if !ok {
			pos = len(out)
			index[k] = pos
			out = append(out, PeriodMean{Year: k.year, Month: k.month})
			sums = append(sums, 0)
		}
		sums[pos] += floats.Sum(t.speeds.RawRowView(i))
		out[pos].Days++
	}
	for i := range out {
		out[i].Mean = sums[i] / float64(out[i].Days*LocationCount)
	}
	return out
}

// WeeklyStats summarises consecutive 7-day blocks across all locations,
// starting with the first row. At most weeks blocks are returned and only
// complete weeks are included.
func (t *WindTable) WeeklyStats(weeks int) []Stats {
	n := min(max(weeks, 0), t.Len()/DaysPerWeek)
	out := make([]Stats, n)
	data := t.speeds.RawMatrix().Data
	span := DaysPerWeek * LocationCount
	for w := range out {
		out[w] = describe(data[w*span : (w+1)*span])
	}
	return out
}
