// convert_test.go - Unit Tests fuer die Schluessel-Konvertierung
package lora

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestApply testet die Anwendung der eingebauten Tabelle
func TestApply(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		numBlocks int
		want      string
		wantOK    bool
	}{
		{
			name:   "exakte Regel",
			key:    "x_embedder.weight",
			want:   "patch_embedder.proj.weight",
			wantOK: true,
		},
		{
			name:      "Block-Muster",
			key:       "layers.3.attention_norm1.weight",
			numBlocks: 4,
			want:      "transformer_blocks.3.norm1.weight",
			wantOK:    true,
		},
		{
			name:      "zweistelliger Block-Index",
			key:       "layers.11.feed_forward.w1.weight",
			numBlocks: 12,
			want:      "transformer_blocks.11.ff.net.0.proj.weight",
			wantOK:    true,
		},
		{
			name:      "Block-Index ausserhalb",
			key:       "layers.3.attention_norm1.weight",
			numBlocks: 2,
			want:      "layers.3.attention_norm1.weight",
			wantOK:    false,
		},
		{
			name:      "Praefix bleibt erhalten",
			key:       "model.layers.0.feed_forward.w2.weight",
			numBlocks: 1,
			want:      "model.transformer_blocks.0.ff.net.2.weight",
			wantOK:    true,
		},
		{
			name:   "unbekannter Schluessel",
			key:    "unbekannt.weight",
			want:   "unbekannt.weight",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AlphaVLLMToDiffusers.Apply(tt.key, tt.numBlocks)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Apply(%q) = %q, %v, want %q, %v", tt.key, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// TestInvert testet den Rundlauf ueber die umgekehrte Tabelle
func TestInvert(t *testing.T) {
	keys := []string{
		"x_embedder.weight",
		"layers.3.attention_norm1.weight",
		"noise_refiner.1.attention.qkv.weight",
		"t_embedder.mlp.2.bias",
	}
	inv := AlphaVLLMToDiffusers.Invert()
	for _, key := range keys {
		converted, ok := AlphaVLLMToDiffusers.Apply(key, 4)
		if !ok {
			t.Fatalf("Apply(%q) hat nicht gepasst", key)
		}
		back, ok := inv.Apply(converted, 4)
		if !ok || back != key {
			t.Errorf("Rundlauf %q -> %q -> %q, ok %v", key, converted, back, ok)
		}
	}
}

// TestConvert testet die Konvertierung einer Schluesselliste
func TestConvert(t *testing.T) {
	keys := []string{
		"cap_embedder.0.weight",
		"layers.0.feed_forward.w3.weight",
		"unbekannt.weight",
	}
	want := map[string]string{
		"cap_embedder.0.weight":           "time_caption_embed.caption_embedder.0.weight",
		"layers.0.feed_forward.w3.weight": "transformer_blocks.0.ff.net.4.weight",
		"unbekannt.weight":                "unbekannt.weight",
	}
	got := AlphaVLLMToDiffusers.Convert(keys, 2)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Convert (-want +got):\n%s", diff)
	}
}
