// caption.go - Caption-Transformation fuer Trainings-Datensaetze
//
// Verarbeitet rohe Captions in die endgueltige Trainings-Form. Die
// Verarbeitungsreihenfolge ist fest: Prefix/Suffix anfuegen, Wildcards
// aufloesen, Keep-Regionen abtrennen, Mitte mischen/ausduennen,
// Sekundaer-Gruppen rendern, Ersetzungen anwenden.
//
// Hauptfunktionen: New, Processor.Process, Params.Validate
package caption

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// Fehler-Definitionen
var (
	ErrNilRand        = errors.New("kein Zufallsgenerator uebergeben")
	ErrRateOutOfRange = errors.New("Rate ausserhalb [0,1]")
	ErrNegativeValue  = errors.New("negativer Wert")
)

// DefaultSeparator trennt Tags innerhalb einer Caption.
const DefaultSeparator = ","

// Replacement ist eine literale Ersetzung, die als letzter Schritt auf die
// fertige Caption angewendet wird (Textual-Inversion Token-Mapping).
// Leeres From ersetzt die gesamte Caption; bei mehreren To-Werten wird
// zufaellig gewaehlt.
type Replacement struct {
	From string
	To   []string
}

// Params buendelt die Transformations-Einstellungen eines Subsets.
// Die Feldnamen folgen den Schluesseln der Datensatz-Konfiguration.
type Params struct {
	Prefix              string  // caption_prefix
	Suffix              string  // caption_suffix
	Separator           string  // caption_separator, leer = ","
	KeepTokensSeparator string  // keep_tokens_separator, z.B. "|||"
	SecondarySeparator  string  // secondary_separator, z.B. ";;;"
	KeepTokens          int     // keep_tokens, nur ohne KeepTokensSeparator wirksam
	EnableWildcard      bool    // {a|b|c} Syntax aufloesen
	Shuffle             bool    // shuffle_caption
	CaptionDropoutRate  float64 // Wahrscheinlichkeit, die gesamte Caption zu verwerfen
	DropoutEveryNEpochs int     // Caption in jeder n-ten Epoche verwerfen
	TagDropoutRate      float64 // Wahrscheinlichkeit pro Tag (Bernoulli, unabhaengig)
	TokenWarmupMin      int     // Mindestzahl Tags waehrend des Warmups
	TokenWarmupStep     float64 // Warmup-Schritte; <1 = Anteil an MaxSteps

	Replacements []Replacement
}

// Validate prueft die Wertebereiche. Raten muessen in [0,1] liegen,
// Zaehlwerte duerfen nicht negativ sein.
func (p Params) Validate() error {
	rates := []struct {
		name string
		v    float64
	}{
		{"caption_dropout_rate", p.CaptionDropoutRate},
		{"caption_tag_dropout_rate", p.TagDropoutRate},
	}
	for _, r := range rates {
		if r.v < 0 || r.v > 1 {
			return fmt.Errorf("%s = %v: %w", r.name, r.v, ErrRateOutOfRange)
		}
	}
	counts := []struct {
		name string
		v    int
	}{
		{"keep_tokens", p.KeepTokens},
		{"caption_dropout_every_n_epochs", p.DropoutEveryNEpochs},
		{"token_warmup_min", p.TokenWarmupMin},
	}
	for _, c := range counts {
		if c.v < 0 {
			return fmt.Errorf("%s = %d: %w", c.name, c.v, ErrNegativeValue)
		}
	}
	if p.TokenWarmupStep < 0 {
		return fmt.Errorf("token_warmup_step = %v: %w", p.TokenWarmupStep, ErrNegativeValue)
	}
	return nil
}

// separator gibt den wirksamen Tag-Separator zurueck.
func (p Params) separator() string {
	if p.Separator == "" {
		return DefaultSeparator
	}
	return p.Separator
}

// Position beschreibt den Trainingsfortschritt fuer schritt- und
// epochenabhaengige Transformationen. Epoch ist 1-basiert.
type Position struct {
	Epoch    int
	Step     int
	MaxSteps int
}

// Processor wendet die Transformation auf einzelne Captions an. Er haelt
// keinen Zustand ausser dem uebergebenen Zufallsgenerator; jede Caption
// wird unabhaengig verarbeitet.
type Processor struct {
	params Params
	rng    *rand.Rand
}

// New erstellt einen Processor. Der Zufallsgenerator muss explizit
// uebergeben werden, damit Transformationen reproduzierbar bleiben.
func New(params Params, rng *rand.Rand) (*Processor, error) {
	if rng == nil {
		return nil, ErrNilRand
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Processor{params: params, rng: rng}, nil
}

// Process transformiert eine rohe Caption in ihre Trainings-Form.
// Eine per Dropout verworfene Caption wird als leerer String geliefert.
func (p *Processor) Process(caption string, pos Position) string {
	sep := p.params.separator()

	if p.params.Prefix != "" {
		caption = p.params.Prefix + " " + caption
	}
	if p.params.Suffix != "" {
		caption = caption + " " + p.params.Suffix
	}

	if p.dropWholeCaption(pos) {
		return ""
	}

	caption = p.resolveWildcards(caption)

	// Aufteilen und Mischen nur, wenn eine der Operationen aktiv ist;
	// sonst bleibt die Caption woertlich erhalten.
	if p.params.Shuffle || p.params.TagDropoutRate > 0 || p.params.TokenWarmupStep > 0 {
		units := splitUnits(caption, sep, p.params)
		units = truncateWarmup(units, p.params.TokenWarmupMin, p.params.TokenWarmupStep, pos)
		units = p.shuffleDrop(units)
		caption = renderUnits(units, sep)
	} else if p.params.SecondarySeparator != "" {
		caption = strings.ReplaceAll(caption, p.params.SecondarySeparator, sep)
	}

	return p.applyReplacements(caption)
}

// dropWholeCaption entscheidet, ob die gesamte Caption verworfen wird.
func (p *Processor) dropWholeCaption(pos Position) bool {
	if p.params.CaptionDropoutRate > 0 && p.rng.Float64() < p.params.CaptionDropoutRate {
		return true
	}
	n := p.params.DropoutEveryNEpochs
	return n > 0 && pos.Epoch%n == 0
}

// applyReplacements wendet die Ersetzungstabelle in Reihenfolge an.
func (p *Processor) applyReplacements(caption string) string {
	for _, r := range p.params.Replacements {
		if len(r.To) == 0 {
			continue
		}
		to := r.To[0]
		if len(r.To) > 1 {
			to = r.To[p.rng.Intn(len(r.To))]
		}
		if r.From == "" {
			caption = to
			continue
		}
		caption = strings.ReplaceAll(caption, r.From, to)
	}
	return caption
}
