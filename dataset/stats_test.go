// stats_test.go - Unit Tests fuer die Scan-Kennzahlen
package dataset

import (
	"math"
	"testing"

	"github.com/trainset/trainset/caption"
)

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// TestComputeStats testet die Kennzahlen eines kleinen Scans
func TestComputeStats(t *testing.T) {
	freq := caption.NewTagFrequency()
	freq.Add("train", "himmel, wolke", ",")
	freq.Add("train", "himmel", ",")

	scan := &DatasetScan{
		Entries: []ImageEntry{
			{Width: 100, Height: 100, NumRepeats: 1},
			{Width: 200, Height: 100, NumRepeats: 3},
		},
		Buckets:         [][2]int{{64, 64}, {128, 64}},
		TagFrequency:    freq,
		MissingCaptions: 1,
	}

	s := ComputeStats(scan)

	if s.Images != 2 || s.Repeated != 4 {
		t.Errorf("Images/Repeated = %d/%d, want 2/4", s.Images, s.Repeated)
	}
	if s.MissingCaptions != 1 {
		t.Errorf("MissingCaptions = %d", s.MissingCaptions)
	}
	if s.Buckets != 2 {
		t.Errorf("Buckets = %d", s.Buckets)
	}
	if s.DistinctTags != 2 {
		t.Errorf("DistinctTags = %d, want 2", s.DistinctTags)
	}

	// Seitenverhaeltnisse 1.0 und 2.0
	approx(t, "AspectMean", s.AspectMean, 1.5)
	approx(t, "AspectStdDev", s.AspectStdDev, math.Sqrt(0.5))

	// Flaechen 10000 und 20000, empirische Quantile
	approx(t, "P25", s.AreaQuantiles[0], 10000)
	approx(t, "P50", s.AreaQuantiles[1], 10000)
	approx(t, "P75", s.AreaQuantiles[2], 20000)
}

// TestComputeStatsLeer testet den leeren Scan
func TestComputeStatsLeer(t *testing.T) {
	s := ComputeStats(&DatasetScan{TagFrequency: caption.NewTagFrequency()})
	if s.Images != 0 || s.Repeated != 0 || s.AspectMean != 0 {
		t.Errorf("Got %+v, erwartete Nullwerte", s)
	}
}

// TestComputeStatsEinzelbild testet die Streuung bei nur einem Bild
func TestComputeStatsEinzelbild(t *testing.T) {
	scan := &DatasetScan{
		Entries:      []ImageEntry{{Width: 512, Height: 256, NumRepeats: 1}},
		TagFrequency: caption.NewTagFrequency(),
	}
	s := ComputeStats(scan)
	approx(t, "AspectMean", s.AspectMean, 2.0)
	if s.AspectStdDev != 0 {
		t.Errorf("AspectStdDev = %v, want 0", s.AspectStdDev)
	}
}
