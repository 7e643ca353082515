// Package metadata - Trainings-Metadaten fuer gespeicherte Modelle
//
// Dieses Modul enthaelt die ss_*-Metadaten:
// - TrainingRun: Beschreibung eines Trainingslaufs
// - Metadata / Parse: Rendern nach und Lesen aus einem String-Paar-Block
// - Minimum: Gekuerzter Schluesselsatz fuer gestrippte Modelle
//
// Alle Werte stehen als Strings im __metadata__-Block einer
// Safetensors-Datei. Parse ist tolerant: fehlende Schluessel bleiben
// leer, unlesbare Werte werden uebersprungen.
package metadata

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trainset/trainset/caption"
)

// Metadaten-Schluessel eines Trainingslaufs.
const (
	KeySessionID        = "ss_session_id"
	KeyStartedAt        = "ss_training_started_at"
	KeyOutputName       = "ss_output_name"
	KeyBaseModelVersion = "ss_base_model_version"
	KeyBaseModelName    = "ss_sd_model_name"
	KeyBaseModelHash    = "ss_new_sd_model_hash"
	KeyBaseLegacyHash   = "ss_sd_model_hash"
	KeyResolution       = "ss_resolution"
	KeySeed             = "ss_seed"
	KeyNumTrainImages   = "ss_num_train_images"
	KeyNumRegImages     = "ss_num_reg_images"
	KeyTagFrequency     = "ss_tag_frequency"
	KeyDatasets         = "ss_datasets"
	KeyNetworkModule    = "ss_network_module"
	KeyNetworkDim       = "ss_network_dim"
	KeyNetworkAlpha     = "ss_network_alpha"
	KeyNetworkArgs      = "ss_network_args"
)

// MinimumKeys sind die Schluessel, die beim Strippen der Metadaten
// erhalten bleiben.
var MinimumKeys = []string{
	KeyBaseModelVersion,
	KeyNetworkModule,
	KeyNetworkDim,
	KeyNetworkAlpha,
	KeyNetworkArgs,
}

// TrainingRun beschreibt einen Trainingslauf. Leere Felder werden beim
// Rendern ausgelassen.
type TrainingRun struct {
	SessionID           string
	StartedAt           time.Time
	OutputName          string
	BaseModelName       string
	BaseModelVersion    string
	BaseModelHash       string
	BaseModelLegacyHash string
	Resolution          [2]int
	Seed                *int64
	NumTrainImages      int
	NumRegImages        int
	NetworkModule       string
	NetworkDim          int
	NetworkAlpha        float64
	NetworkArgs         map[string]string
	Datasets            []DatasetSummary
	TagFrequency        *caption.TagFrequency
}

// DatasetSummary fasst ein Dataset des Laufs zusammen.
type DatasetSummary struct {
	Name        string `json:"name"`
	ImageCount  int    `json:"image_count"`
	RepeatCount int    `json:"repeat_count"`
	Resolution  [2]int `json:"resolution"`
	NumBuckets  int    `json:"num_buckets,omitempty"`
}

// NewTrainingRun erstellt einen Lauf mit frischer Session-ID und
// Startzeit.
func NewTrainingRun(outputName string) *TrainingRun {
	return &TrainingRun{
		SessionID:  uuid.NewString(),
		StartedAt:  time.Now(),
		OutputName: outputName,
	}
}

// Metadata rendert den Lauf als ss_*-Block.
func (r *TrainingRun) Metadata() map[string]string {
	md := make(map[string]string)
	set := func(key, value string) {
		if value != "" {
			md[key] = value
		}
	}

	set(KeySessionID, r.SessionID)
	if !r.StartedAt.IsZero() {
		md[KeyStartedAt] = strconv.FormatInt(r.StartedAt.Unix(), 10)
	}
	set(KeyOutputName, r.OutputName)
	set(KeyBaseModelName, r.BaseModelName)
	set(KeyBaseModelVersion, r.BaseModelVersion)
	set(KeyBaseModelHash, r.BaseModelHash)
	set(KeyBaseLegacyHash, r.BaseModelLegacyHash)
	if r.Resolution != [2]int{} {
		md[KeyResolution] = fmt.Sprintf("%dx%d", r.Resolution[0], r.Resolution[1])
	}
	if r.Seed != nil {
		md[KeySeed] = strconv.FormatInt(*r.Seed, 10)
	}
	if r.NumTrainImages > 0 {
		md[KeyNumTrainImages] = strconv.Itoa(r.NumTrainImages)
	}
	if r.NumRegImages > 0 {
		md[KeyNumRegImages] = strconv.Itoa(r.NumRegImages)
	}
	set(KeyNetworkModule, r.NetworkModule)
	if r.NetworkDim > 0 {
		md[KeyNetworkDim] = strconv.Itoa(r.NetworkDim)
	}
	if r.NetworkAlpha > 0 {
		md[KeyNetworkAlpha] = strconv.FormatFloat(r.NetworkAlpha, 'g', -1, 64)
	}
	if len(r.NetworkArgs) > 0 {
		if b, err := json.Marshal(r.NetworkArgs); err == nil {
			md[KeyNetworkArgs] = string(b)
		}
	}
	if len(r.Datasets) > 0 {
		if b, err := json.Marshal(r.Datasets); err == nil {
			md[KeyDatasets] = string(b)
		}
	}
	if r.TagFrequency != nil {
		if b, err := json.Marshal(r.TagFrequency); err == nil {
			md[KeyTagFrequency] = string(b)
		}
	}
	return md
}

// Parse liest einen Lauf aus einem Metadaten-Block. Fehlende
// Schluessel bleiben leer, unlesbare Werte werden uebersprungen.
func Parse(md map[string]string) *TrainingRun {
	r := &TrainingRun{
		SessionID:           md[KeySessionID],
		OutputName:          md[KeyOutputName],
		BaseModelName:       md[KeyBaseModelName],
		BaseModelVersion:    md[KeyBaseModelVersion],
		BaseModelHash:       md[KeyBaseModelHash],
		BaseModelLegacyHash: md[KeyBaseLegacyHash],
		NetworkModule:       md[KeyNetworkModule],
	}

	if v, err := strconv.ParseFloat(md[KeyStartedAt], 64); err == nil {
		r.StartedAt = time.Unix(int64(v), 0)
	}
	if reso, ok := ParseResolution(md[KeyResolution]); ok {
		r.Resolution = reso
	}
	if v, err := strconv.ParseInt(md[KeySeed], 10, 64); err == nil {
		r.Seed = &v
	}
	if v, err := strconv.Atoi(md[KeyNumTrainImages]); err == nil {
		r.NumTrainImages = v
	}
	if v, err := strconv.Atoi(md[KeyNumRegImages]); err == nil {
		r.NumRegImages = v
	}
	if v, err := strconv.Atoi(md[KeyNetworkDim]); err == nil {
		r.NetworkDim = v
	}
	if v, err := strconv.ParseFloat(md[KeyNetworkAlpha], 64); err == nil {
		r.NetworkAlpha = v
	}
	if raw := md[KeyNetworkArgs]; raw != "" {
		var args map[string]string
		if err := json.Unmarshal([]byte(raw), &args); err == nil {
			r.NetworkArgs = args
		}
	}
	if raw := md[KeyDatasets]; raw != "" {
		var ds []DatasetSummary
		if err := json.Unmarshal([]byte(raw), &ds); err == nil {
			r.Datasets = ds
		}
	}
	if raw := md[KeyTagFrequency]; raw != "" {
		freq := caption.NewTagFrequency()
		if err := json.Unmarshal([]byte(raw), freq); err == nil {
			r.TagFrequency = freq
		}
	}
	return r
}

// ParseResolution liest eine Aufloesung aus den verbreiteten
// Schreibweisen "512x768", "(512, 768)", "512,768" oder "512"
// (quadratisch).
func ParseResolution(s string) ([2]int, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	if s == "" {
		return [2]int{}, false
	}

	sep := ","
	if strings.Contains(s, "x") {
		sep = "x"
	}
	parts := strings.Split(s, sep)
	if len(parts) > 2 {
		return [2]int{}, false
	}

	var reso [2]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v <= 0 {
			return [2]int{}, false
		}
		reso[i] = v
	}
	if len(parts) == 1 {
		reso[1] = reso[0]
	}
	return reso, true
}

// Minimum filtert einen Metadaten-Block auf die Minimal-Schluessel.
// modelspec.*-Schluessel bleiben immer erhalten.
func Minimum(md map[string]string) map[string]string {
	out := make(map[string]string)
	for _, key := range MinimumKeys {
		if v, ok := md[key]; ok {
			out[key] = v
		}
	}
	for key, v := range md {
		if strings.HasPrefix(key, "modelspec.") {
			out[key] = v
		}
	}
	return out
}
