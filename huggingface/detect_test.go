// detect_test.go - Unit Tests fuer Basis-Modell-Erkennung
//
// Testet DetectDirectory, DetectCheckpoint und ParseModelIndex.
//
// Autor: Agent 4 - Phase 10
// Datum: 2026-02-01
package huggingface

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/trainset/trainset/safetensors"
)

// writePipeline legt ein Pipeline-Verzeichnis mit den gegebenen
// JSON-Dateien an
func writePipeline(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Verzeichnis erstellen fehlgeschlagen: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Datei schreiben fehlgeschlagen: %v", err)
		}
	}
	return dir
}

// namedTensor erzeugt einen F32-Tensor mit passender Datenlaenge
func namedTensor(name string, shape ...uint64) safetensors.Tensor {
	n := uint64(1)
	for _, s := range shape {
		n *= s
	}
	return safetensors.Tensor{
		Name:  name,
		DType: safetensors.DTypeF32,
		Shape: shape,
		Data:  make([]byte, n*4),
	}
}

// writeCheckpoint schreibt eine Checkpoint-Datei mit den Tensoren
func writeCheckpoint(t *testing.T, tensors []safetensors.Tensor) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.safetensors")
	if err := safetensors.WriteFile(path, tensors, nil); err != nil {
		t.Fatalf("Checkpoint schreiben fehlgeschlagen: %v", err)
	}
	return path
}

// TestDetectDirectory testet die Erkennung von Diffusers-Pipelines
func TestDetectDirectory(t *testing.T) {
	tests := []struct {
		name       string
		files      map[string]string
		family     string
		resolution [2]int
		source     string
		wantErr    error
	}{
		{
			name: "SDXL am Klassennamen",
			files: map[string]string{
				"model_index.json": `{"_class_name": "StableDiffusionXLPipeline", "_diffusers_version": "0.19.0", "unet": ["diffusers", "UNet2DConditionModel"]}`,
			},
			family:     FamilySDXL,
			resolution: [2]int{1024, 1024},
			source:     "model_index",
		},
		{
			name: "SD1 ueber UNet-Config",
			files: map[string]string{
				"model_index.json": `{"_class_name": "StableDiffusionPipeline", "unet": ["diffusers", "UNet2DConditionModel"]}`,
				"unet/config.json": `{"_class_name": "UNet2DConditionModel", "cross_attention_dim": 768, "sample_size": 64, "in_channels": 4}`,
			},
			family:     FamilySD1,
			resolution: [2]int{512, 512},
			source:     "model_index",
		},
		{
			name: "SD2 ohne model_index",
			files: map[string]string{
				"unet/config.json": `{"cross_attention_dim": 1024, "sample_size": 96}`,
			},
			family:     FamilySD2,
			resolution: [2]int{768, 768},
			source:     "unet_config",
		},
		{
			name: "SDXL ueber addition_embed_type",
			files: map[string]string{
				"unet/config.json": `{"cross_attention_dim": 2048, "addition_embed_type": "text_time", "sample_size": 128}`,
			},
			family:     FamilySDXL,
			resolution: [2]int{1024, 1024},
			source:     "unet_config",
		},
		{
			name: "Cascade ignoriert sample_size",
			files: map[string]string{
				"model_index.json":  `{"_class_name": "StableCascadePriorPipeline", "prior": ["diffusers", "StableCascadeUNet"]}`,
				"prior/config.json": `{"_class_name": "StableCascadeUNet", "sample_size": 24}`,
			},
			family:     FamilyCascadeC,
			resolution: [2]int{1024, 1024},
			source:     "model_index",
		},
		{
			name: "Wuerstchen-Klassenname",
			files: map[string]string{
				"model_index.json": `{"_class_name": "WuerstchenCombinedPipeline", "prior": ["diffusers", "WuerstchenPrior"]}`,
			},
			family:     FamilyCascadeC,
			resolution: [2]int{1024, 1024},
			source:     "model_index",
		},
		{
			name: "Text-Encoder-Fallback ohne UNet",
			files: map[string]string{
				"model_index.json":         `{"_class_name": "StableDiffusionPipeline", "text_encoder": ["transformers", "CLIPTextModel"]}`,
				"text_encoder/config.json": `{"architectures": ["CLIPTextModel"], "hidden_size": 1024}`,
			},
			family:     FamilySD2,
			resolution: [2]int{768, 768},
			source:     "text_encoder",
		},
		{
			name:    "Leeres Verzeichnis",
			files:   map[string]string{},
			wantErr: ErrComponentNotFound,
		},
		{
			name: "Unbekannte Pipeline-Klasse",
			files: map[string]string{
				"model_index.json": `{"_class_name": "FluxPipeline", "transformer": ["diffusers", "FluxTransformer2DModel"]}`,
			},
			wantErr: ErrUnknownFamily,
		},
		{
			name: "Unbekannte Cross-Attention-Dimension",
			files: map[string]string{
				"unet/config.json": `{"cross_attention_dim": 4096, "sample_size": 128}`,
			},
			wantErr: ErrUnknownFamily,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writePipeline(t, tt.files)
			detection, err := DetectDirectory(dir)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Fehler = %v, erwartet %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectDirectory fehlgeschlagen: %v", err)
			}
			if detection.Family != tt.family {
				t.Errorf("Family = %q, erwartet %q", detection.Family, tt.family)
			}
			if detection.Resolution != tt.resolution {
				t.Errorf("Resolution = %v, erwartet %v", detection.Resolution, tt.resolution)
			}
			if detection.Source != tt.source {
				t.Errorf("Source = %q, erwartet %q", detection.Source, tt.source)
			}
		})
	}
}

// TestDetectCheckpoint testet den Fingerprint einzelner Checkpoints
func TestDetectCheckpoint(t *testing.T) {
	tests := []struct {
		name    string
		tensors []safetensors.Tensor
		family  string
		wantErr error
	}{
		{
			name: "SDXL Checkpoint",
			tensors: []safetensors.Tensor{
				namedTensor("conditioner.embedders.0.transformer.text_model.embeddings.position_embedding.weight", 77, 768),
				namedTensor("first_stage_model.decoder.conv_in.bias", 512),
			},
			family: FamilySDXL,
		},
		{
			name: "SD2 Checkpoint",
			tensors: []safetensors.Tensor{
				namedTensor("cond_stage_model.model.transformer.resblocks.0.attn.in_proj_bias", 3072),
			},
			family: FamilySD2,
		},
		{
			name: "SD1 Checkpoint",
			tensors: []safetensors.Tensor{
				namedTensor("cond_stage_model.transformer.text_model.embeddings.token_embedding.weight", 49408, 16),
			},
			family: FamilySD1,
		},
		{
			name: "Cascade Stage C",
			tensors: []safetensors.Tensor{
				namedTensor("clip_txt_pooled_mapper.weight", 1536, 1280),
			},
			family: FamilyCascadeC,
		},
		{
			name: "Diffusers-UNet im XL-Layout",
			tensors: []safetensors.Tensor{
				namedTensor("add_embedding.linear_1.weight", 1280, 2816),
			},
			family: FamilySDXL,
		},
		{
			name: "Diffusers-UNet SD1 ueber Context-Dim",
			tensors: []safetensors.Tensor{
				namedTensor("down_blocks.0.attentions.0.transformer_blocks.0.attn2.to_k.weight", 320, 768),
			},
			family: FamilySD1,
		},
		{
			name: "Diffusers-UNet SD2 ueber Context-Dim",
			tensors: []safetensors.Tensor{
				namedTensor("down_blocks.0.attentions.0.transformer_blocks.0.attn2.to_k.weight", 320, 1024),
			},
			family: FamilySD2,
		},
		{
			name: "Unbekannte Tensor-Namen",
			tensors: []safetensors.Tensor{
				namedTensor("transformer.layers.0.mlp.weight", 8, 8),
			},
			wantErr: ErrUnknownFamily,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCheckpoint(t, tt.tensors)
			detection, err := DetectCheckpoint(path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Fehler = %v, erwartet %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectCheckpoint fehlgeschlagen: %v", err)
			}
			if detection.Family != tt.family {
				t.Errorf("Family = %q, erwartet %q", detection.Family, tt.family)
			}
			if detection.Source != "fingerprint" {
				t.Errorf("Source = %q, erwartet fingerprint", detection.Source)
			}
			if detection.Resolution != FamilyResolution(tt.family) {
				t.Errorf("Resolution = %v, erwartet %v", detection.Resolution, FamilyResolution(tt.family))
			}
		})
	}
}

// TestDetectModel testet das Dispatching nach Pfad-Typ
func TestDetectModel(t *testing.T) {
	// Verzeichnis wird als Pipeline behandelt
	dir := writePipeline(t, map[string]string{
		"unet/config.json": `{"cross_attention_dim": 768, "sample_size": 64}`,
	})
	detection, err := DetectModel(dir)
	if err != nil {
		t.Fatalf("DetectModel auf Verzeichnis fehlgeschlagen: %v", err)
	}
	if detection.Family != FamilySD1 {
		t.Errorf("Family = %q, erwartet %q", detection.Family, FamilySD1)
	}

	// Safetensors-Datei wird als Checkpoint behandelt
	path := writeCheckpoint(t, []safetensors.Tensor{
		namedTensor("cond_stage_model.model.transformer.resblocks.0.attn.in_proj_bias", 3072),
	})
	detection, err = DetectModel(path)
	if err != nil {
		t.Fatalf("DetectModel auf Checkpoint fehlgeschlagen: %v", err)
	}
	if detection.Family != FamilySD2 {
		t.Errorf("Family = %q, erwartet %q", detection.Family, FamilySD2)
	}

	// Andere Dateiendungen werden abgelehnt
	ckpt := filepath.Join(t.TempDir(), "model.ckpt")
	if err := os.WriteFile(ckpt, []byte("dummy"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := DetectModel(ckpt); !errors.Is(err, ErrUnsupportedExt) {
		t.Errorf("Erwartete ErrUnsupportedExt, erhalten %v", err)
	}

	// Nicht existierender Pfad
	if _, err := DetectModel(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Erwartete Fehler fuer fehlenden Pfad")
	}
}

// TestParseModelIndex testet das Parsen von model_index.json
func TestParseModelIndex(t *testing.T) {
	t.Run("Vollstaendiger Index", func(t *testing.T) {
		data := `{
			"_class_name": "StableDiffusionXLPipeline",
			"_diffusers_version": "0.19.0",
			"force_zeros_for_empty_prompt": true,
			"unet": ["diffusers", "UNet2DConditionModel"],
			"vae": ["diffusers", "AutoencoderKL"],
			"text_encoder": ["transformers", "CLIPTextModel"]
		}`
		index, err := ParseModelIndex([]byte(data))
		if err != nil {
			t.Fatalf("ParseModelIndex fehlgeschlagen: %v", err)
		}
		if index.ClassName != "StableDiffusionXLPipeline" {
			t.Errorf("ClassName = %q, erwartet StableDiffusionXLPipeline", index.ClassName)
		}
		if index.DiffusersVersion != "0.19.0" {
			t.Errorf("DiffusersVersion = %q, erwartet 0.19.0", index.DiffusersVersion)
		}
		if len(index.Components) != 3 {
			t.Fatalf("Erwartet 3 Komponenten, erhalten %d: %v", len(index.Components), index.Components)
		}
		if index.Components["unet"] != [2]string{"diffusers", "UNet2DConditionModel"} {
			t.Errorf("unet-Komponente = %v", index.Components["unet"])
		}
		// Bool-Eintraege sind keine Komponenten
		if _, ok := index.Components["force_zeros_for_empty_prompt"]; ok {
			t.Error("Nicht-Komponenten-Eintrag wurde als Komponente geparst")
		}
	})

	t.Run("Nur Komponenten ohne Klassenname", func(t *testing.T) {
		index, err := ParseModelIndex([]byte(`{"unet": ["diffusers", "UNet2DConditionModel"]}`))
		if err != nil {
			t.Fatalf("ParseModelIndex fehlgeschlagen: %v", err)
		}
		if index.ClassName != "" {
			t.Errorf("ClassName = %q, erwartet leer", index.ClassName)
		}
	})

	t.Run("Leeres Objekt", func(t *testing.T) {
		if _, err := ParseModelIndex([]byte(`{}`)); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Erwartete ErrInvalidConfig, erhalten %v", err)
		}
	})

	t.Run("Ungueltiges JSON", func(t *testing.T) {
		if _, err := ParseModelIndex([]byte(`{"_class_name": `)); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Erwartete ErrInvalidConfig, erhalten %v", err)
		}
	})
}
