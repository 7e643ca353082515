// config.go - TOML-Konfiguration fuer Trainings-Datensaetze
//
// Dieses Modul enthaelt:
// - das Konfigurations-Schema ([general], [[datasets]], [[datasets.subsets]])
// - Load/Parse mit strikter Schluessel-Pruefung
// - Tippfehler-Vorschlaege ueber Editier-Distanz
//
// Optionale Felder sind Zeiger, damit sich gesetzte von fehlenden Werten
// unterscheiden lassen; die Vererbung general -> dataset -> subset loest
// resolve.go auf.
package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/pelletier/go-toml/v2"
)

// Fehler-Definitionen
var (
	ErrUnknownKey        = errors.New("unbekannter Schluessel")
	ErrNoDatasets        = errors.New("keine Datensaetze definiert")
	ErrNoSubsets         = errors.New("keine Subsets definiert")
	ErrNoImageDir        = errors.New("image_dir fehlt")
	ErrInvalidResolution = errors.New("ungueltige Aufloesung")
	ErrBucketRange       = errors.New("ungueltige Bucket-Grenzen")
)

// ConfigError traegt Datei- und Schluessel-Kontext eines
// Konfigurationsfehlers.
type ConfigError struct {
	File string
	Key  string
	Hint string
	Err  error
}

func (e *ConfigError) Error() string {
	var sb strings.Builder
	sb.WriteString("konfiguration")
	if e.File != "" {
		sb.WriteString(" " + e.File)
	}
	if e.Key != "" {
		sb.WriteString(": " + e.Key)
	}
	sb.WriteString(": " + e.Err.Error())
	if e.Hint != "" {
		sb.WriteString(" (" + e.Hint + ")")
	}
	return sb.String()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// SubsetOptions sind die vererbbaren Caption-Einstellungen. Jede Ebene
// darf jeden Wert setzen; die naechstgelegene gewinnt.
type SubsetOptions struct {
	CaptionExtension    *string  `toml:"caption_extension"`
	CaptionPrefix       *string  `toml:"caption_prefix"`
	CaptionSuffix       *string  `toml:"caption_suffix"`
	CaptionSeparator    *string  `toml:"caption_separator"`
	KeepTokens          *int     `toml:"keep_tokens"`
	KeepTokensSeparator *string  `toml:"keep_tokens_separator"`
	SecondarySeparator  *string  `toml:"secondary_separator"`
	EnableWildcard      *bool    `toml:"enable_wildcard"`
	ShuffleCaption      *bool    `toml:"shuffle_caption"`
	CaptionDropoutRate  *float64 `toml:"caption_dropout_rate"`
	DropoutEveryNEpochs *int     `toml:"caption_dropout_every_n_epochs"`
	TagDropoutRate      *float64 `toml:"caption_tag_dropout_rate"`
	TokenWarmupMin      *int     `toml:"token_warmup_min"`
	TokenWarmupStep     *float64 `toml:"token_warmup_step"`
	NumRepeats          *int     `toml:"num_repeats"`
	FlipAug             *bool    `toml:"flip_aug"`
	ColorAug            *bool    `toml:"color_aug"`
	RandomCrop          *bool    `toml:"random_crop"`
	CleanCaption        *bool    `toml:"clean_caption"`
}

// DatasetOptions sind die Einstellungen auf Datensatz-Ebene.
type DatasetOptions struct {
	Resolution      any   `toml:"resolution"` // Zahl oder [Breite, Hoehe]
	BatchSize       *int  `toml:"batch_size"`
	EnableBucket    *bool `toml:"enable_bucket"`
	MinBucketReso   *int  `toml:"min_bucket_reso"`
	MaxBucketReso   *int  `toml:"max_bucket_reso"`
	BucketResoSteps *int  `toml:"bucket_reso_steps"`
	BucketNoUpscale *bool `toml:"bucket_no_upscale"`
}

// General buendelt Voreinstellungen fuer alle Datensaetze und Subsets.
type General struct {
	DatasetOptions
	SubsetOptions
}

// Subset beschreibt ein Bildverzeichnis mit Caption-Einstellungen.
type Subset struct {
	ImageDir    string  `toml:"image_dir"`
	ClassTokens *string `toml:"class_tokens"` // Fallback-Caption ohne Sidecar-Datei
	IsReg       *bool   `toml:"is_reg"`
	SubsetOptions
}

// Dataset beschreibt einen Datensatz aus mehreren Subsets. Auf dieser
// Ebene gesetzte Subset-Optionen gelten als Vorgabe fuer alle Subsets.
type Dataset struct {
	DatasetOptions
	SubsetOptions
	Subsets []Subset `toml:"subsets"`
}

// Config ist das Wurzel-Schema der Datensatz-Konfiguration.
type Config struct {
	General  General   `toml:"general"`
	Datasets []Dataset `toml:"datasets"`
}

// knownKeys sind alle gueltigen Schluessel, Basis der
// Tippfehler-Vorschlaege.
var knownKeys = []string{
	"general", "datasets", "subsets",
	"caption_extension", "caption_prefix", "caption_suffix", "caption_separator",
	"keep_tokens", "keep_tokens_separator", "secondary_separator",
	"enable_wildcard", "shuffle_caption",
	"caption_dropout_rate", "caption_dropout_every_n_epochs", "caption_tag_dropout_rate",
	"token_warmup_min", "token_warmup_step",
	"num_repeats", "flip_aug", "color_aug", "random_crop", "clean_caption",
	"resolution", "batch_size", "enable_bucket",
	"min_bucket_reso", "max_bucket_reso", "bucket_reso_steps", "bucket_no_upscale",
	"image_dir", "class_tokens", "is_reg",
}

// Load liest und parst eine Konfigurationsdatei.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{File: path, Err: err}
	}
	cfg, err := Parse(data)
	if err != nil {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			cerr.File = path
			return nil, cerr
		}
		return nil, &ConfigError{File: path, Err: err}
	}
	return cfg, nil
}

// Parse dekodiert TOML-Daten strikt: unbekannte Schluessel sind Fehler
// und erhalten einen Vorschlag fuer den naechstliegenden bekannten
// Schluessel.
func Parse(data []byte) (*Config, error) {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		var missing *toml.StrictMissingError
		if errors.As(err, &missing) && len(missing.Errors) > 0 {
			key := strings.Join(missing.Errors[0].Key(), ".")
			return nil, &ConfigError{Key: key, Hint: suggestKey(key), Err: ErrUnknownKey}
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, &ConfigError{Err: fmt.Errorf("zeile %d, spalte %d: %w", row, col, err)}
		}
		return nil, err
	}
	return &cfg, nil
}

// suggestKey sucht den bekannten Schluessel mit der kleinsten
// Editier-Distanz. Bei zu grossem Abstand gibt es keinen Vorschlag.
func suggestKey(key string) string {
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		key = key[i+1:]
	}
	best := ""
	score := math.MaxInt
	for _, known := range knownKeys {
		if d := levenshtein.ComputeDistance(key, known); d < score {
			score = d
			best = known
		}
	}
	if score <= 3 {
		return fmt.Sprintf("meintest du %q?", best)
	}
	return ""
}
