// resolve.go - Aufloesung der Konfigurations-Vererbung
//
// Macht aus dem dreistufigen Schema (general -> dataset -> subset)
// konkrete, vollstaendig belegte Werte und prueft dabei alle
// Wertebereiche. Nach dem Aufloesen ist die Konfiguration unveraenderlich.
package dataset

import (
	"fmt"
	"path/filepath"

	"github.com/trainset/trainset/caption"
)

// Voreinstellungen, wo keine Ebene einen Wert setzt.
const (
	DefaultCaptionExtension = ".caption"
	DefaultNumRepeats       = 1
	DefaultTokenWarmupMin   = 1
	DefaultBatchSize        = 1
	DefaultMinBucketReso    = 256
	DefaultMaxBucketReso    = 1024
	DefaultBucketResoSteps  = 64
)

// ResolvedSubset ist ein Subset mit aufgeloesten Einstellungen.
type ResolvedSubset struct {
	ImageDir         string
	Name             string // Verzeichnisname, Gruppe fuer Tag-Haeufigkeiten
	CaptionExtension string
	ClassTokens      string
	IsReg            bool
	NumRepeats       int
	FlipAug          bool
	ColorAug         bool
	RandomCrop       bool
	CleanCaption     bool
	Caption          caption.Params
}

// ResolvedDataset ist ein Datensatz mit aufgeloesten Einstellungen.
type ResolvedDataset struct {
	Resolution      [2]int
	BatchSize       int
	EnableBucket    bool
	MinBucketReso   int
	MaxBucketReso   int
	BucketResoSteps int
	BucketNoUpscale bool
	Subsets         []ResolvedSubset
}

// Resolve loest Vererbung und Voreinstellungen auf und validiert die
// Konfiguration. Bereichsfehler werden vor jeder Verarbeitung gemeldet.
func (c *Config) Resolve() ([]ResolvedDataset, error) {
	if len(c.Datasets) == 0 {
		return nil, &ConfigError{Err: ErrNoDatasets}
	}

	out := make([]ResolvedDataset, 0, len(c.Datasets))
	for i, d := range c.Datasets {
		key := fmt.Sprintf("datasets[%d]", i)
		rd, err := c.resolveDataset(d, key)
		if err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, nil
}

// Validate prueft die Konfiguration ohne das Ergebnis zu behalten.
func (c *Config) Validate() error {
	_, err := c.Resolve()
	return err
}

func (c *Config) resolveDataset(d Dataset, key string) (ResolvedDataset, error) {
	g := c.General

	rd := ResolvedDataset{
		BatchSize:       firstSet(DefaultBatchSize, d.BatchSize, g.BatchSize),
		EnableBucket:    firstSet(false, d.EnableBucket, g.EnableBucket),
		MinBucketReso:   firstSet(DefaultMinBucketReso, d.MinBucketReso, g.MinBucketReso),
		MaxBucketReso:   firstSet(DefaultMaxBucketReso, d.MaxBucketReso, g.MaxBucketReso),
		BucketResoSteps: firstSet(DefaultBucketResoSteps, d.BucketResoSteps, g.BucketResoSteps),
		BucketNoUpscale: firstSet(false, d.BucketNoUpscale, g.BucketNoUpscale),
	}

	resoValue := d.Resolution
	if resoValue == nil {
		resoValue = g.Resolution
	}
	reso, err := parseResolution(resoValue)
	if err != nil {
		return ResolvedDataset{}, &ConfigError{Key: key + ".resolution", Err: err}
	}
	rd.Resolution = reso

	if rd.BucketResoSteps <= 0 {
		return ResolvedDataset{}, &ConfigError{Key: key + ".bucket_reso_steps", Err: ErrBucketRange}
	}
	if rd.EnableBucket {
		if rd.MinBucketReso > rd.MaxBucketReso {
			return ResolvedDataset{}, &ConfigError{
				Key:  key,
				Hint: fmt.Sprintf("min_bucket_reso %d > max_bucket_reso %d", rd.MinBucketReso, rd.MaxBucketReso),
				Err:  ErrBucketRange,
			}
		}
		if rd.MinBucketReso%rd.BucketResoSteps != 0 || rd.MaxBucketReso%rd.BucketResoSteps != 0 {
			return ResolvedDataset{}, &ConfigError{
				Key:  key,
				Hint: fmt.Sprintf("Bucket-Grenzen muessen durch bucket_reso_steps %d teilbar sein", rd.BucketResoSteps),
				Err:  ErrBucketRange,
			}
		}
	}

	if len(d.Subsets) == 0 {
		return ResolvedDataset{}, &ConfigError{Key: key, Err: ErrNoSubsets}
	}
	rd.Subsets = make([]ResolvedSubset, 0, len(d.Subsets))
	for j, s := range d.Subsets {
		rs, err := resolveSubset(s, d.SubsetOptions, g.SubsetOptions, fmt.Sprintf("%s.subsets[%d]", key, j))
		if err != nil {
			return ResolvedDataset{}, err
		}
		rd.Subsets = append(rd.Subsets, rs)
	}
	return rd, nil
}

func resolveSubset(s Subset, d, g SubsetOptions, key string) (ResolvedSubset, error) {
	if s.ImageDir == "" {
		return ResolvedSubset{}, &ConfigError{Key: key, Err: ErrNoImageDir}
	}

	rs := ResolvedSubset{
		ImageDir:         s.ImageDir,
		Name:             filepath.Base(filepath.Clean(s.ImageDir)),
		CaptionExtension: firstSet(DefaultCaptionExtension, s.CaptionExtension, d.CaptionExtension, g.CaptionExtension),
		ClassTokens:      firstSet("", s.ClassTokens),
		IsReg:            firstSet(false, s.IsReg),
		NumRepeats:       firstSet(DefaultNumRepeats, s.NumRepeats, d.NumRepeats, g.NumRepeats),
		FlipAug:          firstSet(false, s.FlipAug, d.FlipAug, g.FlipAug),
		ColorAug:         firstSet(false, s.ColorAug, d.ColorAug, g.ColorAug),
		RandomCrop:       firstSet(false, s.RandomCrop, d.RandomCrop, g.RandomCrop),
		CleanCaption:     firstSet(false, s.CleanCaption, d.CleanCaption, g.CleanCaption),
		Caption: caption.Params{
			Prefix:              firstSet("", s.CaptionPrefix, d.CaptionPrefix, g.CaptionPrefix),
			Suffix:              firstSet("", s.CaptionSuffix, d.CaptionSuffix, g.CaptionSuffix),
			Separator:           firstSet(caption.DefaultSeparator, s.CaptionSeparator, d.CaptionSeparator, g.CaptionSeparator),
			KeepTokens:          firstSet(0, s.KeepTokens, d.KeepTokens, g.KeepTokens),
			KeepTokensSeparator: firstSet("", s.KeepTokensSeparator, d.KeepTokensSeparator, g.KeepTokensSeparator),
			SecondarySeparator:  firstSet("", s.SecondarySeparator, d.SecondarySeparator, g.SecondarySeparator),
			EnableWildcard:      firstSet(false, s.EnableWildcard, d.EnableWildcard, g.EnableWildcard),
			Shuffle:             firstSet(false, s.ShuffleCaption, d.ShuffleCaption, g.ShuffleCaption),
			CaptionDropoutRate:  firstSet(0, s.CaptionDropoutRate, d.CaptionDropoutRate, g.CaptionDropoutRate),
			DropoutEveryNEpochs: firstSet(0, s.DropoutEveryNEpochs, d.DropoutEveryNEpochs, g.DropoutEveryNEpochs),
			TagDropoutRate:      firstSet(0, s.TagDropoutRate, d.TagDropoutRate, g.TagDropoutRate),
			TokenWarmupMin:      firstSet(DefaultTokenWarmupMin, s.TokenWarmupMin, d.TokenWarmupMin, g.TokenWarmupMin),
			TokenWarmupStep:     firstSet(0, s.TokenWarmupStep, d.TokenWarmupStep, g.TokenWarmupStep),
		},
	}

	if s.NumRepeats != nil && *s.NumRepeats < 1 {
		return ResolvedSubset{}, &ConfigError{Key: key + ".num_repeats", Err: fmt.Errorf("%d: muss >= 1 sein", *s.NumRepeats)}
	}
	if err := rs.Caption.Validate(); err != nil {
		return ResolvedSubset{}, &ConfigError{Key: key, Err: err}
	}
	return rs, nil
}

// firstSet gibt den ersten gesetzten Wert zurueck, sonst den Fallback.
// Die Argumente stehen in der Reihenfolge subset, dataset, general.
func firstSet[T any](fallback T, vals ...*T) T {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return fallback
}

// parseResolution akzeptiert eine Zahl (quadratisch) oder ein Paar
// [Breite, Hoehe].
func parseResolution(v any) ([2]int, error) {
	switch x := v.(type) {
	case nil:
		return [2]int{}, fmt.Errorf("fehlt: %w", ErrInvalidResolution)
	case int64:
		return squareResolution(int(x))
	case float64:
		if x != float64(int(x)) {
			return [2]int{}, fmt.Errorf("%v ist keine ganze Zahl: %w", x, ErrInvalidResolution)
		}
		return squareResolution(int(x))
	case []any:
		if len(x) != 2 {
			return [2]int{}, fmt.Errorf("erwartet [Breite, Hoehe]: %w", ErrInvalidResolution)
		}
		var reso [2]int
		for i, e := range x {
			n, err := parseResolution(e)
			if err != nil {
				return [2]int{}, err
			}
			reso[i] = n[0]
		}
		return reso, nil
	default:
		return [2]int{}, fmt.Errorf("typ %T: %w", v, ErrInvalidResolution)
	}
}

func squareResolution(n int) ([2]int, error) {
	if n <= 0 {
		return [2]int{}, fmt.Errorf("%d: %w", n, ErrInvalidResolution)
	}
	return [2]int{n, n}, nil
}
