// bucket.go - Aufloesungs-Buckets fuer Aspect-Ratio-Training
//
// Bilder werden dem Bucket mit dem naechstliegenden Seitenverhaeltnis
// zugeordnet, damit ein Batch einheitliche Abmessungen hat. Ohne
// Hochskalierung (bucket_no_upscale) entstehen die Buckets dynamisch
// aus den auf die Schrittweite gerundeten Bildgroessen.
package dataset

import (
	"math"
	"sort"
)

// MakeBucketResolutions erzeugt die Bucket-Aufloesungen fuer die
// maximale Flaeche von maxReso. Jede Kante ist durch steps teilbar und
// liegt in [minSize, maxSize]; zu jedem Paar (w, h) ist auch (h, w)
// enthalten, dazu das groesste Quadrat. Das Ergebnis ist sortiert.
func MakeBucketResolutions(maxReso [2]int, minSize, maxSize, steps int) [][2]int {
	maxArea := maxReso[0] * maxReso[1]
	seen := make(map[[2]int]bool)

	square := int(math.Sqrt(float64(maxArea))) / steps * steps
	seen[[2]int{square, square}] = true

	for width := minSize; width <= maxSize; width += steps {
		height := maxArea / width / steps * steps
		if height > maxSize {
			height = maxSize
		}
		if height >= minSize {
			seen[[2]int{width, height}] = true
			seen[[2]int{height, width}] = true
		}
	}

	resos := make([][2]int, 0, len(seen))
	for reso := range seen {
		resos = append(resos, reso)
	}
	sort.Slice(resos, func(i, j int) bool {
		if resos[i][0] != resos[j][0] {
			return resos[i][0] < resos[j][0]
		}
		return resos[i][1] < resos[j][1]
	})
	return resos
}

// BucketManager ordnet Bildgroessen einem Bucket zu.
type BucketManager struct {
	NoUpscale bool
	MaxArea   int
	Steps     int

	resos [][2]int
	index map[[2]int]int
}

// NewBucketManager erstellt einen Manager fuer die Datensatz-Aufloesung.
// Mit noUpscale beginnt die Bucket-Menge leer und waechst pro Bild.
func NewBucketManager(maxReso [2]int, minSize, maxSize, steps int, noUpscale bool) *BucketManager {
	b := &BucketManager{
		NoUpscale: noUpscale,
		MaxArea:   maxReso[0] * maxReso[1],
		Steps:     steps,
		index:     make(map[[2]int]int),
	}
	if !noUpscale {
		b.resos = MakeBucketResolutions(maxReso, minSize, maxSize, steps)
		for i, reso := range b.resos {
			b.index[reso] = i
		}
	}
	return b
}

// Resos gibt die bekannten Buckets zurueck; bei noUpscale sortiert nach
// dem Entstehen.
func (b *BucketManager) Resos() [][2]int {
	return b.resos
}

// Select waehlt den Bucket fuer ein Bild und gibt zusaetzlich die
// Zielgroesse zurueck, auf die das Bild vor dem Zuschnitt skaliert wird.
func (b *BucketManager) Select(width, height int) (reso [2]int, resized [2]int) {
	if b.NoUpscale {
		return b.selectDynamic(width, height)
	}
	return b.selectPredefined(width, height)
}

// selectPredefined sucht den Bucket mit minimalem Fehler im
// Seitenverhaeltnis.
func (b *BucketManager) selectPredefined(width, height int) ([2]int, [2]int) {
	ar := float64(width) / float64(height)

	best := 0
	bestErr := math.Inf(1)
	for i, reso := range b.resos {
		e := math.Abs(float64(reso[0])/float64(reso[1]) - ar)
		if e < bestErr {
			bestErr = e
			best = i
		}
	}
	reso := b.resos[best]

	// Skalieren auf die kuerzere passende Kante
	var scale float64
	if ar > float64(reso[0])/float64(reso[1]) {
		scale = float64(reso[1]) / float64(height)
	} else {
		scale = float64(reso[0]) / float64(width)
	}
	resized := [2]int{
		int(float64(width)*scale + 0.5),
		int(float64(height)*scale + 0.5),
	}
	return reso, resized
}

// selectDynamic verkleinert zu grosse Bilder auf die maximale Flaeche
// und leitet den Bucket aus der gerundeten Groesse ab.
func (b *BucketManager) selectDynamic(width, height int) ([2]int, [2]int) {
	ar := float64(width) / float64(height)
	resized := [2]int{width, height}

	if width*height > b.MaxArea {
		rw := math.Sqrt(float64(b.MaxArea) * ar)
		rh := float64(b.MaxArea) / rw

		// Zwei Rundungswege; der mit dem kleineren Fehler im
		// Seitenverhaeltnis gewinnt.
		widthRounded := b.roundToSteps(rw)
		arWidth := float64(widthRounded) / float64(b.roundToSteps(float64(widthRounded)/ar))
		heightRounded := b.roundToSteps(rh)
		arHeight := float64(b.roundToSteps(float64(heightRounded)*ar)) / float64(heightRounded)

		if math.Abs(arWidth-ar) < math.Abs(arHeight-ar) {
			resized = [2]int{widthRounded, int(float64(widthRounded)/ar + 0.5)}
		} else {
			resized = [2]int{int(float64(heightRounded)*ar + 0.5), heightRounded}
		}
	}

	reso := [2]int{
		resized[0] - resized[0]%b.Steps,
		resized[1] - resized[1]%b.Steps,
	}
	if _, ok := b.index[reso]; !ok {
		b.index[reso] = len(b.resos)
		b.resos = append(b.resos, reso)
	}
	return reso, resized
}

// roundToSteps rundet kaufmaennisch und dann auf die Schrittweite ab.
func (b *BucketManager) roundToSteps(x float64) int {
	return int(x+0.5) / b.Steps * b.Steps
}
