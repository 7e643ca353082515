// detect.go - Basis-Modell-Erkennung aus Pipeline-Verzeichnissen und
// Checkpoint-Dateien
//
// Erkennt die Modell-Familie anhand von model_index.json, der
// UNet-Konfiguration oder der Tensor-Schluessel einer Checkpoint-Datei.
//
// Autor: Agent 2 - Phase 9
// Datum: 2026-02-01
package huggingface

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/trainset/trainset/safetensors"
)

// Fehler-Definitionen
var (
	ErrIndexNotFound  = errors.New("model_index.json nicht gefunden")
	ErrInvalidConfig  = errors.New("ungueltige config-struktur")
	ErrUnknownFamily  = errors.New("modell-familie nicht erkannt")
	ErrUnsupportedExt = errors.New("nicht unterstuetzte dateiendung")
)

// DetectModel erkennt die Modell-Familie eines lokalen Pfads.
// Verzeichnisse werden als Diffusers-Pipelines gelesen, einzelne
// .safetensors-Dateien ueber ihre Tensor-Schluessel.
func DetectModel(path string) (*Detection, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, &HuggingFaceError{Op: "detect", Err: err}
	}
	if stat.IsDir() {
		return DetectDirectory(path)
	}
	if strings.EqualFold(filepath.Ext(path), ".safetensors") {
		return DetectCheckpoint(path)
	}
	return nil, &HuggingFaceError{Op: "detect", Err: fmt.Errorf("%w: %s", ErrUnsupportedExt, filepath.Ext(path))}
}

// DetectDirectory erkennt die Familie einer Diffusers-Pipeline.
// Reihenfolge: model_index.json, dann die UNet-Konfiguration.
func DetectDirectory(dirPath string) (*Detection, error) {
	index, err := readModelIndex(dirPath)
	if err != nil && !errors.Is(err, ErrIndexNotFound) {
		return nil, err
	}

	var className string
	if index != nil {
		className = index.ClassName
		if family := familyFromClassName(className); family != "" && family != FamilySD1 {
			// XL und Cascade sind am Klassennamen eindeutig
			return &Detection{
				Family:     family,
				Resolution: directoryResolution(dirPath, family),
				Source:     "model_index",
				ClassName:  className,
			}, nil
		}
	}

	unet, err := readUNetConfig(dirPath)
	if err != nil {
		if index == nil {
			return nil, err
		}
		// Ohne UNet-Config entscheidet die Breite des Text-Encoders
		if te, teErr := readTextEncoderConfig(dirPath); teErr == nil {
			if family := TextEncoderFamily(te); family != "" {
				return &Detection{
					Family:     family,
					Resolution: FamilyResolution(family),
					Source:     "text_encoder",
					ClassName:  className,
				}, nil
			}
		}
		return nil, &HuggingFaceError{Op: "detect", Err: fmt.Errorf("%w: %s", ErrUnknownFamily, className)}
	}

	family := familyFromUNet(unet)
	if family == "" {
		return nil, &HuggingFaceError{Op: "detect", Err: fmt.Errorf("%w: cross_attention_dim %d", ErrUnknownFamily, unet.CrossAttentionDim)}
	}
	source := "unet_config"
	if index != nil {
		source = "model_index"
	}
	return &Detection{
		Family:     family,
		Resolution: unetResolution(unet, family),
		Source:     source,
		ClassName:  className,
	}, nil
}

// DetectCheckpoint erkennt die Familie einer einzelnen Checkpoint-Datei
// anhand charakteristischer Tensor-Schluessel.
func DetectCheckpoint(path string) (*Detection, error) {
	f, err := safetensors.Open(path)
	if err != nil {
		return nil, &HuggingFaceError{Op: "detect", Err: err}
	}
	defer f.Close()

	names := f.Names()
	hasPrefix := func(prefix string) bool {
		for _, name := range names {
			if strings.HasPrefix(name, prefix) {
				return true
			}
		}
		return false
	}

	var family string
	switch {
	case hasPrefix("conditioner.embedders."):
		family = FamilySDXL
	case hasPrefix("cond_stage_model.model.transformer.resblocks."):
		family = FamilySD2
	case hasPrefix("cond_stage_model.transformer.text_model."):
		family = FamilySD1
	case hasPrefix("clip_txt_pooled_mapper.") || hasPrefix("clip_txt_mapper."):
		family = FamilyCascadeC
	case hasPrefix("add_embedding.linear_1."):
		// Diffusers-UNet im XL-Layout
		family = FamilySDXL
	default:
		family = familyFromContextDim(f)
	}

	if family == "" {
		return nil, &HuggingFaceError{Op: "detect", Err: ErrUnknownFamily}
	}
	return &Detection{
		Family:     family,
		Resolution: FamilyResolution(family),
		Source:     "fingerprint",
	}, nil
}

// familyFromContextDim unterscheidet SD1 und SD2 an der zweiten
// Dimension einer Cross-Attention-Projektion des Diffusers-UNet.
func familyFromContextDim(f *safetensors.File) string {
	info, ok := f.Tensor("down_blocks.0.attentions.0.transformer_blocks.0.attn2.to_k.weight")
	if !ok || len(info.Shape) != 2 {
		return ""
	}
	switch info.Shape[1] {
	case CrossAttentionDimSD1:
		return FamilySD1
	case CrossAttentionDimSD2:
		return FamilySD2
	case CrossAttentionDimSDXL:
		return FamilySDXL
	}
	return ""
}

// familyFromClassName konvertiert den Pipeline-Klassennamen in eine
// Familie. SD1 und SD2 teilen sich den Klassennamen und brauchen
// zusaetzlich die UNet-Konfiguration.
func familyFromClassName(className string) string {
	lower := strings.ToLower(className)
	switch {
	case strings.Contains(lower, "stablediffusionxl"):
		return FamilySDXL
	// Stable Cascade ist die Wuerstchen-Architektur, diffusers nutzt
	// beide Klassennamen.
	case containsAny(lower, "stablecascade", "wuerstchen"):
		return FamilyCascadeC
	case strings.Contains(lower, "stablediffusion"):
		return FamilySD1 // vorlaeufig, sd1 vs sd2 entscheidet das UNet
	}
	return ""
}

// familyFromUNet leitet die Familie aus der UNet-Konfiguration ab.
func familyFromUNet(unet *UNetConfig) string {
	if unet.AdditionEmbedType == "text_time" {
		return FamilySDXL
	}
	switch unet.CrossAttentionDim {
	case CrossAttentionDimSD1:
		return FamilySD1
	case CrossAttentionDimSD2:
		return FamilySD2
	case CrossAttentionDimSDXL:
		return FamilySDXL
	}
	return ""
}

// unetResolution leitet die native Aufloesung aus sample_size ab,
// Familie-Default wenn nicht gesetzt.
func unetResolution(unet *UNetConfig, family string) [2]int {
	if unet != nil && unet.SampleSize > 0 && family != FamilyCascadeC {
		side := unet.SampleSize * LatentScaleFactor
		return [2]int{side, side}
	}
	return FamilyResolution(family)
}

// directoryResolution versucht die Aufloesung aus der UNet-Konfiguration,
// sonst Familie-Default.
func directoryResolution(dirPath, family string) [2]int {
	if unet, err := readUNetConfig(dirPath); err == nil {
		return unetResolution(unet, family)
	}
	return FamilyResolution(family)
}

// readModelIndex liest model_index.json aus einem Pipeline-Verzeichnis.
func readModelIndex(dirPath string) (*ModelIndex, error) {
	data, err := os.ReadFile(filepath.Join(dirPath, "model_index.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &HuggingFaceError{Op: "detect", Err: ErrIndexNotFound}
		}
		return nil, &HuggingFaceError{Op: "detect", Err: fmt.Errorf("lesen: %w", err)}
	}
	return ParseModelIndex(data)
}

// ParseModelIndex parst die rohen JSON-Bytes einer model_index.json.
func ParseModelIndex(data []byte) (*ModelIndex, error) {
	var index ModelIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, &HuggingFaceError{Op: "parse", Err: fmt.Errorf("%w: %v", ErrInvalidConfig, err)}
	}
	if index.ClassName == "" && len(index.Components) == 0 {
		return nil, &HuggingFaceError{Op: "parse", Err: ErrInvalidConfig}
	}
	return &index, nil
}

// containsAny prueft ob str mindestens einen der Substrings enthaelt.
func containsAny(str string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(str, sub) {
			return true
		}
	}
	return false
}
