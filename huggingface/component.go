// component.go - Parser fuer Komponenten-Configs einer Pipeline
//
// Extrahiert erkennungsrelevante Felder aus den config.json Dateien
// der UNet- und Text-Encoder-Komponenten.
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
)

// Fehler
var (
	ErrComponentNotFound = errors.New("komponenten-config nicht gefunden")
	ErrInvalidComponent  = errors.New("ungueltige komponenten-config")
)

// Kandidaten-Pfade der UNet-Config relativ zum Pipeline-Verzeichnis.
// "prior" ist die entsprechende Komponente der Cascade-Pipelines,
// "config.json" deckt Verzeichnisse ab, die selbst die Komponente sind.
var unetConfigPaths = []string{
	"unet/config.json",
	"prior/config.json",
	"config.json",
}

// ParseUNetConfig parst JSON-Bytes einer UNet-config.json.
func ParseUNetConfig(data []byte) (*UNetConfig, error) {
	var config UNetConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, &HuggingFaceError{Op: "parse_unet", Err: fmt.Errorf("%w: %v", ErrInvalidComponent, err)}
	}
	if config.CrossAttentionDim == 0 && config.AdditionEmbedType == "" && config.SampleSize == 0 {
		return nil, &HuggingFaceError{Op: "parse_unet", Err: ErrInvalidComponent}
	}
	return &config, nil
}

// LoadUNetConfig laedt und parst eine UNet-config.json.
func LoadUNetConfig(path string) (*UNetConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &HuggingFaceError{Op: "load_unet", Err: ErrComponentNotFound}
		}
		return nil, &HuggingFaceError{Op: "load_unet", Err: fmt.Errorf("lesen: %w", err)}
	}
	return ParseUNetConfig(data)
}

// readUNetConfig sucht die UNet-Config in den Kandidaten-Pfaden eines
// Pipeline-Verzeichnisses.
func readUNetConfig(dirPath string) (*UNetConfig, error) {
	var lastErr error
	for _, rel := range unetConfigPaths {
		config, err := LoadUNetConfig(filepath.Join(dirPath, rel))
		if err == nil {
			return config, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// ParseTextEncoderConfig parst JSON-Bytes einer Text-Encoder-config.json.
func ParseTextEncoderConfig(data []byte) (*TextEncoderConfig, error) {
	var config TextEncoderConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, &HuggingFaceError{Op: "parse_text_encoder", Err: fmt.Errorf("%w: %v", ErrInvalidComponent, err)}
	}
	if config.HiddenSize == 0 && len(config.Architectures) == 0 {
		return nil, &HuggingFaceError{Op: "parse_text_encoder", Err: ErrInvalidComponent}
	}
	return &config, nil
}

// readTextEncoderConfig liest die Text-Encoder-Config einer Pipeline.
func readTextEncoderConfig(dirPath string) (*TextEncoderConfig, error) {
	data, err := os.ReadFile(filepath.Join(dirPath, "text_encoder", "config.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &HuggingFaceError{Op: "load_text_encoder", Err: ErrComponentNotFound}
		}
		return nil, &HuggingFaceError{Op: "load_text_encoder", Err: fmt.Errorf("lesen: %w", err)}
	}
	return ParseTextEncoderConfig(data)
}

// TextEncoderFamily leitet die Familie aus der Encoder-Breite ab.
// 768 ist der CLIP-L der SD1-Reihe, 1024 der OpenCLIP-H der SD2-Reihe.
func TextEncoderFamily(config *TextEncoderConfig) string {
	if config == nil {
		return ""
	}
	switch config.HiddenSize {
	case 768:
		return FamilySD1
	case 1024:
		return FamilySD2
	}
	return ""
}
