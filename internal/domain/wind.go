package domain

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"
)

const (
	// DateColumns is the number of leading date columns (year, month, day).
	DateColumns = 3

	// LocationCount is the number of measuring stations per row.
	LocationCount = 12
)

// Locations names the stations in column order.
var Locations = [LocationCount]string{
	"RPT", "VAL", "ROS", "KIL", "SHA", "BIR", "DUB", "CLA", "MUL", "CLO", "BEL", "MAL",
}

// ErrNoData is returned when a wind file contains no rows.
var ErrNoData = errors.New("no wind data rows")

// WindRecord is one day of readings.
type WindRecord struct {
	Date   time.Time
	Speeds [LocationCount]float64
}

// WindTable is a parsed wind dataset: one row per day, one column per
// location. It is never empty.
type WindTable struct {
	records []WindRecord
	speeds  *mat.Dense
}

// Column maps a location index to its column in the raw 15-column table.
func Column(loc int) int { return loc + DateColumns }

// ParseWindData reads whitespace-delimited rows of
// "YY MM DD s1 ... s12". Two-digit years are in the 1900s.
func ParseWindData(r io.Reader) (*WindTable, error) {
	var records []WindRecord

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		rec, err := parseWindLine(fields)
		if err != nil {
			return nil, fmt.Errorf("wind data line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read wind data: %w", err)
	}

	return NewWindTable(records)
}

// NewWindTable builds a table from already-parsed records.
func NewWindTable(records []WindRecord) (*WindTable, error) {
	if len(records) == 0 {
		return nil, ErrNoData
	}
	data := make([]float64, 0, len(records)*LocationCount)
	for _, rec := range records {
		data = append(data, rec.Speeds[:]...)
	}
	return &WindTable{
		records: records,
		speeds:  mat.NewDense(len(records), LocationCount, data),
	}, nil
}

func parseWindLine(fields []string) (WindRecord, error) {
	if len(fields) != DateColumns+LocationCount {
		return WindRecord{}, fmt.Errorf("got %d columns, want %d", len(fields), DateColumns+LocationCount)
	}

	var ymd [DateColumns]int
	for i := range ymd {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return WindRecord{}, fmt.Errorf("date column %d: %w", i+1, err)
		}
		ymd[i] = v
	}
	year := ymd[0]
	if year < 100 {
		year += 1900
	}
	date := time.Date(year, time.Month(ymd[1]), ymd[2], 0, 0, 0, 0, time.UTC)
	if date.Month() != time.Month(ymd[1]) || date.Day() != ymd[2] {
		return WindRecord{}, fmt.Errorf("invalid date %s-%s-%s", fields[0], fields[1], fields[2])
	}

	rec := WindRecord{Date: date}
	for i := range rec.Speeds {
		v, err := strconv.ParseFloat(fields[DateColumns+i], 64)
		if err != nil {
			return WindRecord{}, fmt.Errorf("location %s: %w", Locations[i], err)
		}
		rec.Speeds[i] = v
	}
	return rec, nil
}

// Len is the number of days.
func (t *WindTable) Len() int { return len(t.records) }

// Records returns the parsed rows.
func (t *WindTable) Records() []WindRecord { return t.records }

// Speeds returns the day × location matrix. It must not be modified.
func (t *WindTable) Speeds() mat.Matrix { return t.speeds }

// Dates returns the date of every row.
func (t *WindTable) Dates() []time.Time {
	out := make([]time.Time, len(t.records))
	for i, rec := range t.records {
		out[i] = rec.Date
	}
	return out
}
