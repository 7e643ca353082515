// cmd_test.go - Unit Tests fuer die CLI-Hilfsfunktionen
package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainset/trainset/caption"
	"github.com/trainset/trainset/dataset"
	"github.com/trainset/trainset/envconfig"
)

// TestFormatRate testet die Prozent-Formatierung
func TestFormatRate(t *testing.T) {
	assert.Equal(t, "0%", formatRate(0))
	assert.Equal(t, "5%", formatRate(0.05))
	assert.Equal(t, "12.5%", formatRate(0.125))
	assert.Equal(t, "100%", formatRate(1))
}

// TestInferBlocks testet die Blockzahl-Ermittlung aus Tensor-Namen
func TestInferBlocks(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  int
	}{
		{
			name:  "Punktindizes",
			names: []string{"layers.0.attention.w1.weight", "layers.19.attention.w1.weight"},
			want:  20,
		},
		{
			name:  "gemischte Indizes",
			names: []string{"blocks.3.mlp.weight", "blocks.12.mlp.weight", "final_layer.weight"},
			want:  13,
		},
		{
			name:  "keine Indizes",
			names: []string{"lora_unet_mid_block_attentions_0", "alpha"},
			want:  1,
		},
		{
			name:  "leer",
			names: nil,
			want:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inferBlocks(tt.names))
		})
	}
}

// TestCaptionRows testet die Tabellenzeilen der Caption-Einstellungen
func TestCaptionRows(t *testing.T) {
	// Aufgeloeste Voreinstellungen erzeugen keine Zeilen
	assert.Empty(t, captionRows(caption.Params{Separator: caption.DefaultSeparator, TokenWarmupMin: 1}))

	rows := captionRows(caption.Params{
		Prefix:         "masterpiece",
		Separator:      caption.DefaultSeparator,
		Shuffle:        true,
		KeepTokens:     2,
		TagDropoutRate: 0.1,
		TokenWarmupMin: 1,
	})
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"", "caption prefix", "masterpiece"}, rows[0])
	assert.Equal(t, []string{"", "shuffle", "yes"}, rows[1])
	assert.Equal(t, []string{"", "keep tokens", "2"}, rows[2])
	assert.Equal(t, []string{"", "tag dropout", "10%"}, rows[3])
}

// TestCaptionRowsReplacements testet die Anzeige der Ersetzungen
func TestCaptionRowsReplacements(t *testing.T) {
	rows := captionRows(caption.Params{
		Separator: caption.DefaultSeparator,
		Replacements: []caption.Replacement{
			{From: "girl", To: []string{"woman"}},
			{From: "sky", To: []string{"day", "night"}},
		},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, "replacements", rows[0][1])
	assert.Equal(t, `"girl" -> woman, "sky" -> day | night`, rows[0][2])
}

// TestStatsRows testet die Tabellenzeilen der Scan-Kennzahlen
func TestStatsRows(t *testing.T) {
	rows := statsRows(dataset.Stats{
		Images:        2,
		Repeated:      20,
		DistinctTags:  5,
		Buckets:       3,
		AspectMean:    1,
		AreaQuantiles: [3]float64{262144, 262144, 262144},
	})

	flat := map[string]string{}
	for _, row := range rows {
		require.Len(t, row, 3)
		flat[row[1]] = row[2]
	}

	assert.Equal(t, "2", flat["images"])
	assert.Equal(t, "20", flat["with repeats"])
	assert.Equal(t, "5", flat["distinct tags"])
	assert.Equal(t, "3", flat["buckets"])
	assert.Equal(t, "1.00 +/- 0.00", flat["aspect ratio"])
	assert.Equal(t, "262K / 262K / 262K px", flat["area p25/p50/p75"])
	assert.NotContains(t, flat, "missing captions")
}

// TestNewSampleRNG testet die Reproduzierbarkeit der Zufallsquelle
func TestNewSampleRNG(t *testing.T) {
	a := newSampleRNG(7)
	b := newSampleRNG(7)
	for range 5 {
		assert.Equal(t, a.Int63(), b.Int63())
	}

	require.NotNil(t, newSampleRNG(-1))
}

// TestShowResolved testet die Anzeige einer aufgeloesten Konfiguration
func TestShowResolved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[general]
shuffle_caption = true
keep_tokens = 1

[[datasets]]
resolution = 512
enable_bucket = true

[[datasets.subsets]]
image_dir = "/data/chars"
num_repeats = 10
`), 0o644))

	cfg, err := dataset.Load(path)
	require.NoError(t, err)
	resolved, err := cfg.Resolve()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, showResolved(resolved, &buf))

	out := buf.String()
	assert.Contains(t, out, "Dataset 1")
	assert.Contains(t, out, "512x512")
	assert.Contains(t, out, "256-1024 px, steps of 64")
	assert.Contains(t, out, "Subset chars (/data/chars)")
	assert.Contains(t, out, "shuffle")
	assert.Contains(t, out, "keep tokens")
	assert.Contains(t, out, "OK: 1 datasets, 1 subsets")
}

// TestAppendEnvDocs testet die Umgebungsvariablen-Dokumentation
func TestAppendEnvDocs(t *testing.T) {
	cmd := &cobra.Command{Use: "probe"}
	appendEnvDocs(cmd, []envconfig.EnvVar{
		{Name: "TRAINSET_DEBUG", Description: "Show debug information"},
	})

	tmpl := cmd.UsageTemplate()
	assert.Contains(t, tmpl, "Environment Variables:")
	assert.Contains(t, tmpl, "TRAINSET_DEBUG")

	// Ohne Variablen bleibt das Template unveraendert
	plain := &cobra.Command{Use: "probe"}
	before := plain.UsageTemplate()
	appendEnvDocs(plain, nil)
	assert.Equal(t, before, plain.UsageTemplate())
}

// TestNewCLI testet die registrierten Commands
func TestNewCLI(t *testing.T) {
	root := NewCLI()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{"config", "captions", "dataset", "lora", "model", "version"} {
		assert.Contains(t, names, want)
	}
}
