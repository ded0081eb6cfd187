package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReport_UsesClock(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC))
	SetClock(fakeClock)
	t.Cleanup(func() {
		SetClock(nil)
	})

	r := NewReport()
	assert.Equal(t, fakeClock.Now(), r.GeneratedAt)
	_, err := uuid.Parse(r.ID)
	require.NoError(t, err)
	assert.NotEqual(t, r.ID, NewReport().ID)
}

func TestBuildWindReport(t *testing.T) {
	table := mustParseWind(t, sampleWind)

	r := BuildWindReport("wind.data", table)

	assert.Equal(t, "wind.data", r.Source)
	assert.Equal(t, 3, r.Days)
	assert.Equal(t, time.Date(1961, time.January, 1, 0, 0, 0, 0, time.UTC), r.FirstDate)
	assert.Equal(t, time.Date(1961, time.January, 3, 0, 0, 0, 0, time.UTC), r.LastDate)
	assert.Equal(t, table.Overall(), r.Overall)
	require.Len(t, r.ByLocation, LocationCount)
	assert.Equal(t, "MAL", r.ByLocation[11].Location)
	assert.Equal(t, 14, r.ByLocation[11].Column)
	assert.Equal(t, map[string]int{"BEL": 2, "RPT": 1}, r.WindiestDays)
	assert.Equal(t, "BEL", r.Peak.Location)
	require.Len(t, r.January, LocationCount)
	assert.InDelta(t, table.ByLocation()[0].Mean, r.January[0].Mean, 1e-9)
	require.Len(t, r.Monthly, 1)
	assert.Empty(t, r.Weekly)
}

func TestSummarizePass(t *testing.T) {
	img := Image{Channels: []Grid{ramp(t, 6, 6)}}

	p, err := SummarizePass(img, RefilterImage(img, 1), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Iterations)
	assert.Equal(t, 4, p.Rows)
	assert.False(t, p.Exhausted)
	require.NotNil(t, p.Smoothed)
	assert.InDelta(t, 7.0, p.Smoothed.Min, 1e-9)
	require.NotNil(t, p.Difference)
	assert.InDelta(t, 0.0, p.Difference.Max, 1e-9)

	p, err = SummarizePass(img, RefilterImage(img, 3), 3)
	require.NoError(t, err)
	assert.True(t, p.Exhausted)
	assert.Nil(t, p.Smoothed)
	assert.Nil(t, p.Difference)
}

func TestSerializeReport(t *testing.T) {
	table := mustParseWind(t, sampleWind)
	r := Report{
		ID:          "report-1",
		GeneratedAt: time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC),
		Wind:        BuildWindReport("wind.data", table),
	}

	out, err := SerializeReport(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("report-1"), out.Key)
	assert.Equal(t, "wind", out.Headers["sections"])
	assert.Equal(t, "2024-04-27T06:00:00Z", out.Headers["generated_at"])
	assert.Contains(t, string(out.Value), `"location":"RPT"`)
	assert.NotContains(t, string(out.Value), `"smoothing"`)

	var roundtrip Report
	require.NoError(t, json.Unmarshal(out.Value, &roundtrip))

	type summary struct {
		ID       string
		Days     int
		Overall  Stats
		PeakDate time.Time
	}
	expected := summary{ID: r.ID, Days: r.Wind.Days, Overall: r.Wind.Overall, PeakDate: r.Wind.Peak.Date}
	actual := summary{ID: roundtrip.ID, Days: roundtrip.Wind.Days, Overall: roundtrip.Wind.Overall, PeakDate: roundtrip.Wind.Peak.Date}
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Fatalf("roundtrip mismatch (-want +got):\n%s", diff)
	}

	out, err = SerializeReport(Report{ID: "empty"})
	require.NoError(t, err)
	assert.Equal(t, "none", out.Headers["sections"])
}
