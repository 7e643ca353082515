// modelspec.go - modelspec.*-Schluessel des Austauschformats
package metadata

import (
	"fmt"
	"time"
)

// SpecVersion ist die geschriebene Version des Austauschformats.
const SpecVersion = "1.0.0"

// Schluessel des Austauschformats.
const (
	KeySpecVersion    = "modelspec.sai_model_spec"
	KeyArchitecture   = "modelspec.architecture"
	KeyImplementation = "modelspec.implementation"
	KeyTitle          = "modelspec.title"
	KeyDate           = "modelspec.date"
	KeySpecResolution = "modelspec.resolution"
	KeyPredictionType = "modelspec.prediction_type"
)

const specDateFormat = "2006-01-02T15:04:05"

// ModelSpec beschreibt ein Modell im Austauschformat. Architektur-
// Strings haben die Form "<basis>/<adapter>", etwa
// "stable-diffusion-xl-v1-base/lora".
type ModelSpec struct {
	Architecture   string
	Implementation string
	Title          string
	Date           time.Time
	Resolution     [2]int
	PredictionType string
}

// Metadata rendert den Block; die Versions-Kennung wird immer gesetzt.
func (s *ModelSpec) Metadata() map[string]string {
	md := map[string]string{KeySpecVersion: SpecVersion}
	set := func(key, value string) {
		if value != "" {
			md[key] = value
		}
	}

	set(KeyArchitecture, s.Architecture)
	set(KeyImplementation, s.Implementation)
	set(KeyTitle, s.Title)
	if !s.Date.IsZero() {
		md[KeyDate] = s.Date.Format(specDateFormat)
	}
	if s.Resolution != [2]int{} {
		md[KeySpecResolution] = fmt.Sprintf("%dx%d", s.Resolution[0], s.Resolution[1])
	}
	set(KeyPredictionType, s.PredictionType)
	return md
}

// ParseModelSpec liest den Block; der zweite Rueckgabewert meldet, ob
// die Versions-Kennung vorhanden war.
func ParseModelSpec(md map[string]string) (*ModelSpec, bool) {
	if _, ok := md[KeySpecVersion]; !ok {
		return nil, false
	}

	s := &ModelSpec{
		Architecture:   md[KeyArchitecture],
		Implementation: md[KeyImplementation],
		Title:          md[KeyTitle],
		PredictionType: md[KeyPredictionType],
	}
	if t, err := time.Parse(specDateFormat, md[KeyDate]); err == nil {
		s.Date = t
	}
	if reso, ok := ParseResolution(md[KeySpecResolution]); ok {
		s.Resolution = reso
	}
	return s, true
}
