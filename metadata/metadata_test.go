// metadata_test.go - Unit Tests fuer die ss_*-Metadaten
package metadata

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/trainset/trainset/caption"
)

// TestMetadataRoundtrip testet Rendern und Zuruecklesen eines Laufs
func TestMetadataRoundtrip(t *testing.T) {
	seed := int64(1234)
	freq := caption.NewTagFrequency()
	freq.AddTag("haupt", "himmel")
	freq.AddTag("haupt", "wolke")
	freq.AddTag("haupt", "himmel")

	run := &TrainingRun{
		SessionID:           "T-100",
		StartedAt:           time.Unix(1756100000, 0),
		OutputName:          "lauf",
		BaseModelName:       "flux1-dev",
		BaseModelVersion:    "flux1",
		BaseModelHash:       "deadbeef",
		BaseModelLegacyHash: "ef012345",
		Resolution:          [2]int{512, 768},
		Seed:                &seed,
		NumTrainImages:      40,
		NumRegImages:        5,
		NetworkModule:       "networks.lora",
		NetworkDim:          16,
		NetworkAlpha:        8,
		NetworkArgs:         map[string]string{"dropout": "0.1"},
		Datasets: []DatasetSummary{
			{Name: "haupt", ImageCount: 20, RepeatCount: 2, Resolution: [2]int{512, 768}, NumBuckets: 3},
		},
		TagFrequency: freq,
	}

	got := Parse(run.Metadata())

	if got.TagFrequency == nil {
		t.Fatal("TagFrequency fehlt nach dem Roundtrip")
	}
	if n := got.TagFrequency.Count("haupt", "himmel"); n != 2 {
		t.Errorf("Count(himmel) = %d, want 2", n)
	}
	if diff := cmp.Diff([]string{"himmel", "wolke"}, got.TagFrequency.Tags("haupt")); diff != "" {
		t.Errorf("Tags (-want +got):\n%s", diff)
	}

	run.TagFrequency, got.TagFrequency = nil, nil
	if diff := cmp.Diff(run, got); diff != "" {
		t.Errorf("TrainingRun (-want +got):\n%s", diff)
	}
}

// TestMetadataWerte testet die gerenderten String-Formen
func TestMetadataWerte(t *testing.T) {
	seed := int64(42)
	freq := caption.NewTagFrequency()
	freq.AddTag("s", "zebra")
	freq.AddTag("s", "affe")

	run := &TrainingRun{
		Resolution:   [2]int{1024, 1024},
		Seed:         &seed,
		NetworkAlpha: 0.5,
		TagFrequency: freq,
	}
	md := run.Metadata()

	want := map[string]string{
		KeyResolution:   "1024x1024",
		KeySeed:         "42",
		KeyNetworkAlpha: "0.5",
		KeyTagFrequency: `{"s":{"zebra":1,"affe":1}}`,
	}
	if diff := cmp.Diff(want, md); diff != "" {
		t.Errorf("Metadata (-want +got):\n%s", diff)
	}
}

// TestMetadataLeer testet, dass leere Felder ausgelassen werden
func TestMetadataLeer(t *testing.T) {
	if md := (&TrainingRun{}).Metadata(); len(md) != 0 {
		t.Errorf("Metadata = %v, want leer", md)
	}
}

// TestParseTolerant testet das Ueberspringen unlesbarer Werte
func TestParseTolerant(t *testing.T) {
	got := Parse(map[string]string{
		KeySeed:         "kein-int",
		KeyResolution:   "krumm",
		KeyNetworkDim:   "",
		KeyTagFrequency: "{kaputt",
		KeyDatasets:     "[{",
		KeyOutputName:   "lauf",
	})

	if got.Seed != nil {
		t.Errorf("Seed = %v, want nil", *got.Seed)
	}
	if got.Resolution != [2]int{} {
		t.Errorf("Resolution = %v, want leer", got.Resolution)
	}
	if got.TagFrequency != nil {
		t.Error("TagFrequency sollte bei kaputtem JSON nil sein")
	}
	if got.Datasets != nil {
		t.Error("Datasets sollten bei kaputtem JSON nil sein")
	}
	if got.OutputName != "lauf" {
		t.Errorf("OutputName = %q", got.OutputName)
	}
}

// TestNewTrainingRun testet Session-ID und Startzeit
func TestNewTrainingRun(t *testing.T) {
	run := NewTrainingRun("lauf")
	if _, err := uuid.Parse(run.SessionID); err != nil {
		t.Errorf("SessionID %q ist keine UUID: %v", run.SessionID, err)
	}
	if run.StartedAt.IsZero() {
		t.Error("StartedAt ist nicht gesetzt")
	}
	if run.OutputName != "lauf" {
		t.Errorf("OutputName = %q", run.OutputName)
	}
}

// TestParseResolution testet die verbreiteten Schreibweisen
func TestParseResolution(t *testing.T) {
	tests := []struct {
		in     string
		want   [2]int
		wantOK bool
	}{
		{"512x512", [2]int{512, 512}, true},
		{"512x768", [2]int{512, 768}, true},
		{"(512, 768)", [2]int{512, 768}, true},
		{"512,768", [2]int{512, 768}, true},
		{"768", [2]int{768, 768}, true},
		{" 640 x 384 ", [2]int{640, 384}, true},
		{"", [2]int{}, false},
		{"0x512", [2]int{}, false},
		{"ax5", [2]int{}, false},
		{"1,2,3", [2]int{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseResolution(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseResolution(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

// TestMinimum testet das Strippen auf die Minimal-Schluessel
func TestMinimum(t *testing.T) {
	md := map[string]string{
		KeyNetworkModule: "networks.lora",
		KeyNetworkDim:    "16",
		KeySessionID:     "T-100",
		KeyTagFrequency:  "{}",
		KeyTitle:         "mein modell",
		KeySpecVersion:   SpecVersion,
	}

	want := map[string]string{
		KeyNetworkModule: "networks.lora",
		KeyNetworkDim:    "16",
		KeyTitle:         "mein modell",
		KeySpecVersion:   SpecVersion,
	}
	if diff := cmp.Diff(want, Minimum(md)); diff != "" {
		t.Errorf("Minimum (-want +got):\n%s", diff)
	}
}
