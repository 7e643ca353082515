// types.go - Typen fuer Modell-Erkennung und Config-Parsing
//
// Enthaelt Typen fuer:
// - model_index.json Parsing (ModelIndex)
// - Komponenten-Configs (UNetConfig, TextEncoderConfig)
// - Bekannte Basis-Modelle Registry (KnownModel)
// - Erkennungs-Ergebnis (Detection)
//
// Autor: Agent 2 - Phase 9
// Datum: 2026-02-01
package huggingface

import "encoding/json"

// =============================================================================
// KONSTANTEN - MODELL-FAMILIEN
// =============================================================================

// Erkannte Basis-Modell-Familien
const (
	FamilySD1      = "sd1"
	FamilySD2      = "sd2"
	FamilySDXL     = "sdxl"
	FamilyCascadeC = "cascade-stage-c"
	FamilyUnknown  = "unknown"
)

// Standard-Aufloesungen je Familie
var familyResolutions = map[string][2]int{
	FamilySD1:      {512, 512},
	FamilySD2:      {768, 768},
	FamilySDXL:     {1024, 1024},
	FamilyCascadeC: {1024, 1024},
}

// FamilyResolution gibt die native Aufloesung einer Familie zurueck.
func FamilyResolution(family string) [2]int {
	if reso, ok := familyResolutions[family]; ok {
		return reso
	}
	return [2]int{512, 512}
}

// Cross-Attention-Dimensionen der UNet-Konfiguration je Familie
const (
	CrossAttentionDimSD1  = 768
	CrossAttentionDimSD2  = 1024
	CrossAttentionDimSDXL = 2048
)

// Der Latent-Raum ist um diesen Faktor kleiner als das Bild.
const LatentScaleFactor = 8

// =============================================================================
// MODEL-INDEX PARSING
// =============================================================================

// ModelIndex enthaelt die Pipeline-Beschreibung aus model_index.json.
// Komponenten-Eintraege haben die Form "unet": ["diffusers", "UNet..."];
// Schluessel mit "_"-Prefix sind Metadaten.
type ModelIndex struct {
	ClassName        string
	DiffusersVersion string
	Components       map[string][2]string
}

// UnmarshalJSON trennt Metadaten-Schluessel von Komponenten-Paaren.
// Eintraege mit anderem Aufbau werden uebersprungen.
func (m *ModelIndex) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	m.Components = make(map[string][2]string)
	for key, value := range raw {
		switch key {
		case "_class_name":
			json.Unmarshal(value, &m.ClassName)
			continue
		case "_diffusers_version":
			json.Unmarshal(value, &m.DiffusersVersion)
			continue
		}
		if len(key) > 0 && key[0] == '_' {
			continue
		}
		var pair [2]string
		if err := json.Unmarshal(value, &pair); err == nil {
			m.Components[key] = pair
		}
	}
	return nil
}

// =============================================================================
// KOMPONENTEN-CONFIGS
// =============================================================================

// UNetConfig enthaelt die erkennungsrelevanten Felder aus der
// config.json der UNet-Komponente.
type UNetConfig struct {
	ClassName         string `json:"_class_name,omitempty"`
	CrossAttentionDim int    `json:"cross_attention_dim,omitempty"`
	SampleSize        int    `json:"sample_size,omitempty"`
	InChannels        int    `json:"in_channels,omitempty"`
	AdditionEmbedType string `json:"addition_embed_type,omitempty"`
}

// TextEncoderConfig enthaelt die erkennungsrelevanten Felder aus der
// config.json des Text-Encoders.
type TextEncoderConfig struct {
	Architectures []string `json:"architectures,omitempty"`
	HiddenSize    int      `json:"hidden_size,omitempty"`
	ProjectionDim int      `json:"projection_dim,omitempty"`
}

// =============================================================================
// ERKENNUNGS-ERGEBNIS
// =============================================================================

// Detection ist das Ergebnis der Basis-Modell-Erkennung.
type Detection struct {
	Family     string // sd1, sd2, sdxl, cascade-stage-c
	Resolution [2]int // native Trainings-Aufloesung
	Source     string // model_index, unet_config, fingerprint, known_id
	ClassName  string // Pipeline-Klasse, falls bekannt
}

// =============================================================================
// BEKANNTE MODELLE
// =============================================================================

// KnownModel definiert ein bekanntes Basis-Modell auf dem Hub
// mit Familie und Metadaten fuer die Erkennung ohne Dateizugriff.
type KnownModel struct {
	// Identifikation
	Pattern string // Glob-Pattern fuer Model-ID (z.B. "stabilityai/stable-diffusion-xl-base-*")
	Family  string // Familie (sd1, sd2, sdxl, cascade-stage-c)

	// Metadaten
	Architecture string // Architektur-String des Austauschformats
	Description  string // Kurzbeschreibung
	Resolution   [2]int // native Aufloesung
}

// =============================================================================
// ERROR TYPEN
// =============================================================================

// HuggingFaceError repraesentiert einen Fehler bei HF-Operationen
type HuggingFaceError struct {
	Op      string // Operation (detect, fetch, resolve)
	ModelID string // Betroffenes Modell
	Err     error  // Urspruenglicher Fehler
}

// Error implementiert das error Interface
func (e *HuggingFaceError) Error() string {
	if e.ModelID != "" {
		return "huggingface " + e.Op + " [" + e.ModelID + "]: " + e.Err.Error()
	}
	return "huggingface " + e.Op + ": " + e.Err.Error()
}

// Unwrap ermoeglicht errors.Is/As
func (e *HuggingFaceError) Unwrap() error {
	return e.Err
}
