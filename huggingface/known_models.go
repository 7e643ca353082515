// known_models.go - Registry bekannter Basis-Modelle
//
// Definiert bekannte Diffusions-Basis-Modelle auf dem Hub, damit die
// Familie ohne Dateizugriff aus der Model-ID bestimmt werden kann.
//
// Autor: Agent 2 - Phase 9
// Datum: 2026-02-01
package huggingface

import (
	"path/filepath"
	"strings"
)

// Architektur-Strings des Austauschformats je Familie
const (
	ArchSD1         = "stable-diffusion-v1"
	ArchSD2Base     = "stable-diffusion-v2-512"
	ArchSD2V        = "stable-diffusion-v2-768-v"
	ArchSDXLBase    = "stable-diffusion-xl-v1-base"
	ArchSDXLRefiner = "stable-diffusion-xl-v1-refiner"
	ArchCascadeC    = "stable-cascade-stage-c"
)

// FamilyArchitecture gibt den Architektur-String einer Familie
// zurueck, passend zur Default-Aufloesung der Familie.
func FamilyArchitecture(family string) string {
	switch family {
	case FamilySD1:
		return ArchSD1
	case FamilySD2:
		return ArchSD2V
	case FamilySDXL:
		return ArchSDXLBase
	case FamilyCascadeC:
		return ArchCascadeC
	}
	return ""
}

// KnownModels enthaelt alle bekannten Basis-Modelle
var KnownModels = map[string]KnownModel{
	// SD 1.x
	"runwayml/stable-diffusion-v1-5": newKnownModel("runwayml/stable-diffusion-v1-5",
		FamilySD1, ArchSD1, 512, "Stable Diffusion 1.5"),
	"CompVis/stable-diffusion-v1-*": newKnownModel("CompVis/stable-diffusion-v1-*",
		FamilySD1, ArchSD1, 512, "Stable Diffusion 1.x (CompVis)"),

	// SD 2.x - Base-Varianten sind 512er epsilon-Modelle
	"stabilityai/stable-diffusion-2-base": newKnownModel("stabilityai/stable-diffusion-2-base",
		FamilySD2, ArchSD2Base, 512, "Stable Diffusion 2.0 Base"),
	"stabilityai/stable-diffusion-2-1-base": newKnownModel("stabilityai/stable-diffusion-2-1-base",
		FamilySD2, ArchSD2Base, 512, "Stable Diffusion 2.1 Base"),
	"stabilityai/stable-diffusion-2*": newKnownModel("stabilityai/stable-diffusion-2*",
		FamilySD2, ArchSD2V, 768, "Stable Diffusion 2.x (768, v-prediction)"),

	// SDXL
	"stabilityai/stable-diffusion-xl-base-*": newKnownModel("stabilityai/stable-diffusion-xl-base-*",
		FamilySDXL, ArchSDXLBase, 1024, "Stable Diffusion XL Base"),
	"stabilityai/stable-diffusion-xl-refiner-*": newKnownModel("stabilityai/stable-diffusion-xl-refiner-*",
		FamilySDXL, ArchSDXLRefiner, 1024, "Stable Diffusion XL Refiner"),
	"stabilityai/sdxl-turbo": newKnownModel("stabilityai/sdxl-turbo",
		FamilySDXL, ArchSDXLBase, 512, "SDXL Turbo (Adversarial Distillation)"),

	// Stable Cascade
	"stabilityai/stable-cascade-prior": newKnownModel("stabilityai/stable-cascade-prior",
		FamilyCascadeC, ArchCascadeC, 1024, "Stable Cascade Stage C (Prior)"),
	"stabilityai/stable-cascade*": newKnownModel("stabilityai/stable-cascade*",
		FamilyCascadeC, ArchCascadeC, 1024, "Stable Cascade"),
}

func newKnownModel(pattern, family, arch string, side int, desc string) KnownModel {
	return KnownModel{
		Pattern:      pattern,
		Family:       family,
		Architecture: arch,
		Description:  desc,
		Resolution:   [2]int{side, side},
	}
}

// LookupKnownModel sucht ein bekanntes Modell anhand der Model-ID.
// Exakte Eintraege haben Vorrang vor Glob-Patterns.
func LookupKnownModel(modelID string) (*KnownModel, bool) {
	if model, ok := KnownModels[modelID]; ok {
		return &model, true
	}
	for pattern, model := range KnownModels {
		if matchPattern(pattern, modelID) {
			return &model, true
		}
	}
	return nil, false
}

// IsKnownModel prueft ob eine Model-ID bekannt ist
func IsKnownModel(modelID string) bool {
	_, found := LookupKnownModel(modelID)
	return found
}

// GetModelsByFamily gibt alle bekannten Modelle einer Familie zurueck
func GetModelsByFamily(family string) []KnownModel {
	var models []KnownModel
	for _, m := range KnownModels {
		if m.Family == family {
			models = append(models, m)
		}
	}
	return models
}

// GetAllKnownPatterns gibt alle registrierten Model-Patterns zurueck
func GetAllKnownPatterns() []string {
	patterns := make([]string, 0, len(KnownModels))
	for p := range KnownModels {
		patterns = append(patterns, p)
	}
	return patterns
}

// SupportedFamilies gibt alle erkennbaren Familien zurueck
func SupportedFamilies() []string {
	return []string{FamilySD1, FamilySD2, FamilySDXL, FamilyCascadeC}
}

// matchPattern prueft ob eine Model-ID einem Glob-Pattern entspricht
func matchPattern(pattern, modelID string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == modelID
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(modelID, strings.TrimSuffix(pattern, "*"))
	}
	parts := strings.Split(pattern, "*")
	if len(parts) == 2 {
		return strings.HasPrefix(modelID, parts[0]) && strings.HasSuffix(modelID, parts[1])
	}
	matched, _ := filepath.Match(pattern, modelID)
	return matched
}
