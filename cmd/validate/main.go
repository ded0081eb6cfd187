// Command validate performs integrity checks on the exercise inputs: the
// wind table's layout and calendar, the wind statistics against an
// independent recomputation, and the image against both stencil
// implementations.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -wind data/mock/wind.data \
//	  -image data/mock/gradient.png
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/stencil-lab/internal/domain"
)

const tolerance = 1e-9

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	windPath := flag.String("wind", "", "path to a wind data file")
	imagePath := flag.String("image", "", "path to a PNG or JPEG image")
	passes := flag.Int("passes", 5, "refilter passes to check against the image")
	flag.Parse()

	if *windPath == "" && *imagePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*windPath, *imagePath, *passes); code != 0 {
		os.Exit(code)
	}
}

func run(windPath, imagePath string, passes int) int {
	fmt.Println("=== Stencil Lab Input Validation ===")
	fmt.Println()

	var phases []*phase

	if windPath != "" {
		lines, err := loadLines(windPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: read wind data: %v\n", err)
			return 1
		}
		layout := validateWindLayout(lines)
		phases = append(phases, layout)

		// Statistics need a parseable table; skip them when the layout failed.
		if layout.passed() {
			f, err := os.Open(windPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "FATAL: open wind data: %v\n", err)
				return 1
			}
			table, err := domain.ParseWindData(f)
			f.Close()
			if err != nil {
				fmt.Fprintf(os.Stderr, "FATAL: parse wind data: %v\n", err)
				return 1
			}
			phases = append(phases, validateWindCalendar(table), validateWindStats(table))
			fmt.Printf("Wind: %d days, %s to %s\n", table.Len(),
				table.Records()[0].Date.Format(time.DateOnly),
				table.Records()[table.Len()-1].Date.Format(time.DateOnly))
		}
	}

	if imagePath != "" {
		f, err := os.Open(imagePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: open image: %v\n", err)
			return 1
		}
		img, err := domain.DecodeImage(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: decode image: %v\n", err)
			return 1
		}
		phases = append(phases, validateStencil(img, passes))
		fmt.Printf("Image: %dx%d, %d channels\n", img.Rows(), img.Cols(), len(img.Channels))
	}

	// ── Report results ──
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

type line struct {
	num    int
	fields []string
}

func loadLines(path string) ([]line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []line
	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		lines = append(lines, line{num: n, fields: fields})
	}
	return lines, sc.Err()
}

// ── Phase 1: Wind Layout ──
// Every line has three date columns and one non-negative reading per location.

func validateWindLayout(lines []line) *phase {
	p := &phase{name: "Phase 1: Wind Layout (columns)"}
	want := domain.DateColumns + domain.LocationCount

	if len(lines) == 0 {
		p.errorf("no data lines")
		return p
	}
	for _, l := range lines {
		if len(l.fields) != want {
			p.errorf("line %d: %d columns, want %d", l.num, len(l.fields), want)
			continue
		}
		for j, s := range l.fields[domain.DateColumns:] {
			v, err := strconv.ParseFloat(s, 64)
			switch {
			case err != nil:
				p.errorf("line %d: %s reading %q is not a number", l.num, domain.Locations[j], s)
			case math.IsNaN(v) || math.IsInf(v, 0):
				p.errorf("line %d: %s reading %q is not finite", l.num, domain.Locations[j], s)
			case v < 0:
				p.errorf("line %d: %s reading %g is negative", l.num, domain.Locations[j], v)
			}
		}
	}
	return p
}

// ── Phase 2: Wind Calendar ──
// Rows are consecutive days with no gaps or repeats.

func validateWindCalendar(table *domain.WindTable) *phase {
	p := &phase{name: "Phase 2: Wind Calendar (daily rows)"}
	dates := table.Dates()
	for i := 1; i < len(dates); i++ {
		if want := dates[i-1].AddDate(0, 0, 1); !dates[i].Equal(want) {
			p.errorf("row %d: date %s follows %s, want %s", i,
				dates[i].Format(time.DateOnly), dates[i-1].Format(time.DateOnly), want.Format(time.DateOnly))
		}
	}
	return p
}

// ── Phase 3: Wind Statistics ──
// Reductions agree with a plain recomputation over the records.

func validateWindStats(table *domain.WindTable) *phase {
	p := &phase{name: "Phase 3: Wind Statistics (recomputed)"}
	records := table.Records()

	var sum float64
	lo, hi := math.Inf(1), math.Inf(-1)
	var colSums [domain.LocationCount]float64
	for _, r := range records {
		for j, v := range r.Speeds {
			sum += v
			colSums[j] += v
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	count := float64(len(records) * domain.LocationCount)

	overall := table.Overall()
	checkClose(p, "overall mean", overall.Mean, sum/count)
	checkClose(p, "overall min", overall.Min, lo)
	checkClose(p, "overall max", overall.Max, hi)

	for j, s := range table.ByLocation() {
		checkClose(p, domain.Locations[j]+" mean", s.Mean, colSums[j]/float64(len(records)))
	}

	peak := table.Peak()
	checkClose(p, "peak speed", peak.Speed, hi)
	if got := records[peak.Row].Speeds[peak.Column-domain.DateColumns]; got != peak.Speed {
		p.errorf("peak points at %g, reports %g", got, peak.Speed)
	}

	windiest := table.WindiestLocationByDay()
	for i, loc := range windiest {
		for j, v := range records[i].Speeds {
			if v > records[i].Speeds[loc] || (v == records[i].Speeds[loc] && j < loc) {
				p.errorf("row %d: windiest location %s, but %s reads %g", i, domain.Locations[loc], domain.Locations[j], v)
				break
			}
		}
	}

	if got, want := len(table.WeeklyStats(len(records))), len(records)/domain.DaysPerWeek; got != want {
		p.errorf("complete weeks: got %d, want %d", got, want)
	}
	return p
}

// ── Phase 4: Stencil ──
// The vectorised and per-pixel stencils agree, and every pass trims one
// pixel from each border.

func validateStencil(img domain.Image, passes int) *phase {
	p := &phase{name: "Phase 4: Stencil (smoothing)"}

	for c, ch := range img.Channels {
		fast, slow := domain.Smooth(ch), domain.SmoothLoop(ch)
		if fast.Rows != slow.Rows || fast.Cols != slow.Cols {
			p.errorf("channel %d: shapes differ: %dx%d vs %dx%d", c, fast.Rows, fast.Cols, slow.Rows, slow.Cols)
			continue
		}
		a, b := fast.Values(), slow.Values()
		for k := range a {
			if math.Abs(a[k]-b[k]) > tolerance {
				p.errorf("channel %d: element %d differs: %g vs %g", c, k, a[k], b[k])
				break
			}
		}
	}

	for n := 0; n <= passes; n++ {
		out := domain.RefilterImage(img, n)
		wantRows, wantCols := max(img.Rows()-2*n, 0), max(img.Cols()-2*n, 0)
		if out.Rows() != wantRows || out.Cols() != wantCols {
			p.errorf("pass %d: shape %dx%d, want %dx%d", n, out.Rows(), out.Cols(), wantRows, wantCols)
			continue
		}
		if out.Empty() {
			continue
		}
		if _, err := domain.DifferenceImage(out, img, n); err != nil {
			p.errorf("pass %d: difference: %v", n, err)
		}
	}
	return p
}

// ── Helpers ──

func checkClose(p *phase, what string, got, want float64) {
	if math.Abs(got-want) > tolerance*math.Max(1, math.Abs(want)) {
		p.errorf("%s: got %g, want %g", what, got, want)
	}
}
