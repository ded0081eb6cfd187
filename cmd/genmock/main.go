// Command genmock writes deterministic fixtures for local runs and tests: a
// synthetic wind.data table in the 15-column whitespace layout and a small
// RGB test image. Both are parsed back through the domain package so the
// fixtures are guaranteed to load.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -wind-out data/mock/wind.data \
//	  -image-out data/mock/gradient.png \
//	  -days 730
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/stencil-lab/internal/domain"
	"github.com/jonboulle/clockwork"
)

var (
	firstDay = time.Date(1961, time.January, 1, 0, 0, 0, 0, time.UTC)

	// summaryTime stamps the printed summary so reruns produce identical output.
	summaryTime = time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)
)

// baseline mean speed in knots for each location, roughly west to east.
var baseline = [domain.LocationCount]float64{
	12.4, 10.6, 11.7, 6.3, 10.5, 7.1, 9.8, 8.5, 8.5, 8.7, 13.1, 15.6,
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	windOut := flag.String("wind-out", "", "output path for the wind table")
	imageOut := flag.String("image-out", "", "output path for the PNG test image")
	days := flag.Int("days", 730, "number of daily rows to generate")
	width := flag.Int("width", 96, "image width in pixels")
	height := flag.Int("height", 64, "image height in pixels")
	seed := flag.Uint64("seed", 1961, "random seed")
	flag.Parse()

	if *windOut == "" || *imageOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -wind-out, -image-out")
	}
	if *days <= 0 || *width <= 0 || *height <= 0 {
		return fmt.Errorf("-days, -width and -height must be positive")
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))

	wind := generateWind(rng, *days)
	table, err := domain.ParseWindData(bytes.NewReader(wind))
	if err != nil {
		return fmt.Errorf("generated wind data does not parse: %w", err)
	}
	if err := writeFile(*windOut, wind); err != nil {
		return fmt.Errorf("writing wind table: %w", err)
	}
	log.Printf("wrote wind table: %s (%d days)", *windOut, table.Len())

	var buf bytes.Buffer
	if err := png.Encode(&buf, generateImage(rng, *width, *height)); err != nil {
		return fmt.Errorf("encode image: %w", err)
	}
	img, err := domain.DecodeImage(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return fmt.Errorf("generated image does not decode: %w", err)
	}
	if err := writeFile(*imageOut, buf.Bytes()); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}
	log.Printf("wrote image: %s (%dx%d, %d channels)", *imageOut, img.Rows(), img.Cols(), len(img.Channels))

	return printSummary(os.Stdout, filepath.Base(*windOut), table)
}

// generateWind emits one row per day with a seasonal cycle, a shared daily
// weather factor and per-location noise. Readings are clamped at zero.
func generateWind(rng *rand.Rand, days int) []byte {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	for d := range days {
		date := firstDay.AddDate(0, 0, d)
		season := 1 + 0.3*math.Cos(2*math.Pi*float64(date.YearDay()-15)/365.25)
		weather := 1 + 0.25*rng.NormFloat64()

		fmt.Fprintf(w, "%2d %2d %2d", date.Year()%100, int(date.Month()), date.Day())
		for loc := range domain.LocationCount {
			v := baseline[loc] * season * weather * (1 + 0.15*rng.NormFloat64())
			fmt.Fprintf(w, " %5.2f", max(v, 0))
		}
		w.WriteByte('\n') //nolint:errcheck // bytes.Buffer writes do not fail
	}
	w.Flush() //nolint:errcheck // bytes.Buffer writes do not fail
	return buf.Bytes()
}

// generateImage draws a diagonal gradient with a bright disc and salt noise,
// which gives the smoothing exercise visible edges to blur.
func generateImage(rng *rand.Rand, width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	cx, cy := float64(width)/2, float64(height)/2
	radius := float64(min(width, height)) / 4
	for y := range height {
		for x := range width {
			g := uint8(255 * (x + y) / (width + height))
			c := color.RGBA{R: g, G: 255 - g, B: uint8(255 * y / height), A: 255}
			if math.Hypot(float64(x)-cx, float64(y)-cy) < radius {
				c = color.RGBA{R: 250, G: 250, B: 210, A: 255}
			}
			if rng.IntN(50) == 0 {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func printSummary(w io.Writer, source string, table *domain.WindTable) error {
	domain.SetClock(clockwork.NewFakeClockAt(summaryTime))
	defer domain.SetClock(nil)

	report := domain.NewReport()
	report.Wind = domain.BuildWindReport(source, table)

	data, err := json.MarshalIndent(struct {
		GeneratedAt time.Time          `json:"generated_at"`
		Overall     domain.Stats       `json:"overall"`
		Peak        domain.PeakReading `json:"peak"`
		Weeks       int                `json:"complete_weeks"`
	}{report.GeneratedAt, report.Wind.Overall, report.Wind.Peak, len(report.Wind.Weekly)}, "", "  ")
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "\n=== Stats for updating test assertions ===")
	fmt.Fprintln(w, string(data))
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
