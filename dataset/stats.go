// stats.go - Kennzahlen ueber gescannte Datensaetze
package dataset

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Stats fasst einen Datensatz-Scan numerisch zusammen.
type Stats struct {
	Images          int
	Repeated        int
	MissingCaptions int
	Buckets         int
	DistinctTags    int
	AspectMean      float64
	AspectStdDev    float64
	AreaQuantiles   [3]float64 // P25, P50, P75 der Pixelflaeche
}

// ComputeStats berechnet die Kennzahlen eines Scans.
func ComputeStats(scan *DatasetScan) Stats {
	s := Stats{
		Images:          scan.ImageCount(),
		Repeated:        scan.RepeatedCount(),
		MissingCaptions: scan.MissingCaptions,
		Buckets:         len(scan.Buckets),
	}
	for _, group := range scan.TagFrequency.Groups() {
		s.DistinctTags += len(scan.TagFrequency.Tags(group))
	}
	if len(scan.Entries) == 0 {
		return s
	}

	aspects := make([]float64, 0, len(scan.Entries))
	areas := make([]float64, 0, len(scan.Entries))
	for _, e := range scan.Entries {
		if e.Height > 0 {
			aspects = append(aspects, float64(e.Width)/float64(e.Height))
		}
		areas = append(areas, float64(e.Width)*float64(e.Height))
	}

	if len(aspects) > 0 {
		s.AspectMean = stat.Mean(aspects, nil)
	}
	if len(aspects) > 1 {
		s.AspectStdDev = stat.StdDev(aspects, nil)
	}

	sort.Float64s(areas)
	for i, p := range []float64{0.25, 0.5, 0.75} {
		s.AreaQuantiles[i] = stat.Quantile(p, stat.Empirical, areas, nil)
	}
	return s
}
