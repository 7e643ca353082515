// caption_test.go - Unit Tests fuer die Caption-Transformation
//
// Testet Pipeline-Reihenfolge, Keep-Regionen, Sekundaer-Gruppen,
// Dropout-Verhalten und die Parameter-Validierung.
package caption

import (
	"errors"
	"math/rand"
	"sort"
	"strings"
	"testing"
)

func newProcessor(t *testing.T, params Params, seed int64) *Processor {
	t.Helper()
	p, err := New(params, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

// TestProcessIdentity testet den Durchlauf ohne aktive Operationen
func TestProcessIdentity(t *testing.T) {
	p := newProcessor(t, Params{}, 1)
	got := p.Process("a, b, c", Position{Epoch: 1})
	if got != "a, b, c" {
		t.Errorf("Got %q, want %q", got, "a, b, c")
	}
}

// TestPrefixSuffix testet das Anfuegen von Prefix und Suffix
func TestPrefixSuffix(t *testing.T) {
	tests := []struct {
		name, prefix, suffix, caption, want string
	}{
		{"Nur Prefix", "masterpiece", "", "a, b", "masterpiece a, b"},
		{"Nur Suffix", "", "best quality", "a, b", "a, b best quality"},
		{"Beides", "pre", "suf", "tag", "pre tag suf"},
		{"Ohne", "", "", "tag", "tag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProcessor(t, Params{Prefix: tt.prefix, Suffix: tt.suffix}, 1)
			if got := p.Process(tt.caption, Position{Epoch: 1}); got != tt.want {
				t.Errorf("Got %q, want %q", got, tt.want)
			}
		})
	}
}

// TestKeepRegions testet, dass Kopf und Schwanz beim Mischen fest bleiben
func TestKeepRegions(t *testing.T) {
	params := Params{KeepTokensSeparator: "|||", Shuffle: true}
	for seed := int64(0); seed < 50; seed++ {
		p := newProcessor(t, params, seed)
		got := p.Process("A ||| B1, B2, B3 ||| C", Position{Epoch: 1})
		if !strings.HasPrefix(got, "A, ") {
			t.Fatalf("Seed %d: Kopf nicht fest: %q", seed, got)
		}
		if !strings.HasSuffix(got, ", C") {
			t.Fatalf("Seed %d: Schwanz nicht fest: %q", seed, got)
		}
		middle := strings.TrimSuffix(strings.TrimPrefix(got, "A, "), ", C")
		tags := strings.Split(middle, ", ")
		sort.Strings(tags)
		if strings.Join(tags, " ") != "B1 B2 B3" {
			t.Fatalf("Seed %d: Mitte veraendert: %q", seed, got)
		}
	}
}

// TestKeepRegionsEinSeparator testet den Fall mit nur einem Separator
func TestKeepRegionsEinSeparator(t *testing.T) {
	params := Params{KeepTokensSeparator: "|||", Shuffle: true}
	for seed := int64(0); seed < 20; seed++ {
		p := newProcessor(t, params, seed)
		got := p.Process("A ||| B1, B2", Position{Epoch: 1})
		if !strings.HasPrefix(got, "A, ") {
			t.Fatalf("Seed %d: Kopf nicht fest: %q", seed, got)
		}
	}
}

// TestKeepTokensZaehler testet keep_tokens ohne Separator
func TestKeepTokensZaehler(t *testing.T) {
	params := Params{KeepTokens: 2, Shuffle: true}
	for seed := int64(0); seed < 30; seed++ {
		p := newProcessor(t, params, seed)
		got := p.Process("k1, k2, f1, f2, f3", Position{Epoch: 1})
		if !strings.HasPrefix(got, "k1, k2") {
			t.Fatalf("Seed %d: feste Tags verschoben: %q", seed, got)
		}
	}
}

// TestSecondaryGroups testet die Atomizitaet von Sekundaer-Gruppen
func TestSecondaryGroups(t *testing.T) {
	params := Params{SecondarySeparator: ";;;", Shuffle: true}
	for seed := int64(0); seed < 50; seed++ {
		p := newProcessor(t, params, seed)
		got := p.Process("a, sky;;;cloud;;;day, b", Position{Epoch: 1})
		if !strings.Contains(got, "sky,cloud,day") {
			t.Fatalf("Seed %d: Gruppe aufgetrennt: %q", seed, got)
		}
	}
}

// TestSecondaryOhneShuffle testet das Rendern ohne aktives Mischen
func TestSecondaryOhneShuffle(t *testing.T) {
	p := newProcessor(t, Params{SecondarySeparator: ";;;"}, 1)
	got := p.Process("a, sky;;;cloud;;;day, b", Position{Epoch: 1})
	if got != "a, sky,cloud,day, b" {
		t.Errorf("Got %q", got)
	}
}

// TestTagDropout testet die Bernoulli-Ausduennung der Mitte
func TestTagDropout(t *testing.T) {
	t.Run("Rate 1 leert die Mitte", func(t *testing.T) {
		p := newProcessor(t, Params{TagDropoutRate: 1}, 7)
		if got := p.Process("a, b, c", Position{Epoch: 1}); got != "" {
			t.Errorf("Got %q, want leer", got)
		}
	})
	t.Run("Rate 1 laesst Keep-Regionen stehen", func(t *testing.T) {
		p := newProcessor(t, Params{TagDropoutRate: 1, KeepTokensSeparator: "|||"}, 7)
		if got := p.Process("A ||| b, c ||| D", Position{Epoch: 1}); got != "A, D" {
			t.Errorf("Got %q, want %q", got, "A, D")
		}
	})
	t.Run("Rate 0 verwirft nie", func(t *testing.T) {
		for seed := int64(0); seed < 50; seed++ {
			p := newProcessor(t, Params{TagDropoutRate: 0, Shuffle: true}, seed)
			got := p.Process("a, b, c, d", Position{Epoch: 1})
			tags := strings.Split(got, ", ")
			sort.Strings(tags)
			if strings.Join(tags, " ") != "a b c d" {
				t.Fatalf("Seed %d: Tags verworfen: %q", seed, got)
			}
		}
	})
}

// TestWholeCaptionDropout testet das Verwerfen der gesamten Caption
func TestWholeCaptionDropout(t *testing.T) {
	t.Run("Rate 1", func(t *testing.T) {
		p := newProcessor(t, Params{CaptionDropoutRate: 1, Prefix: "pre"}, 3)
		if got := p.Process("a, b", Position{Epoch: 1}); got != "" {
			t.Errorf("Got %q, want leer", got)
		}
	})
	t.Run("Jede zweite Epoche", func(t *testing.T) {
		p := newProcessor(t, Params{DropoutEveryNEpochs: 2}, 3)
		if got := p.Process("a, b", Position{Epoch: 2}); got != "" {
			t.Errorf("Epoche 2: Got %q, want leer", got)
		}
		if got := p.Process("a, b", Position{Epoch: 3}); got != "a, b" {
			t.Errorf("Epoche 3: Got %q, want %q", got, "a, b")
		}
	})
}

// TestTokenWarmup testet die schrittabhaengige Kuerzung der Mitte
func TestTokenWarmup(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
		step float64
		want string
	}{
		{"Schritt 0", Position{Epoch: 1, Step: 0}, 10, "t1"},
		{"Schritt 5", Position{Epoch: 1, Step: 5}, 10, "t1, t2, t3"},
		{"Nach Warmup", Position{Epoch: 1, Step: 10}, 10, "t1, t2, t3, t4, t5"},
		{"Anteilig", Position{Epoch: 1, Step: 5, MaxSteps: 20}, 0.5, "t1, t2, t3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProcessor(t, Params{TokenWarmupMin: 1, TokenWarmupStep: tt.step}, 1)
			if got := p.Process("t1, t2, t3, t4, t5", tt.pos); got != tt.want {
				t.Errorf("Got %q, want %q", got, tt.want)
			}
		})
	}
}

// TestReplacements testet die Ersetzungstabelle
func TestReplacements(t *testing.T) {
	tests := []struct {
		name    string
		repl    []Replacement
		caption string
		want    string
	}{
		{"Literal", []Replacement{{From: "sks", To: []string{"person"}}}, "sks, smiling", "person, smiling"},
		{"Gesamte Caption", []Replacement{{From: "", To: []string{"neu"}}}, "alt, tags", "neu"},
		{"Reihenfolge", []Replacement{{From: "a", To: []string{"b"}}, {From: "b", To: []string{"c"}}}, "a", "c"},
		{"Leeres To", []Replacement{{From: "a", To: nil}}, "a", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProcessor(t, Params{Replacements: tt.repl}, 1)
			if got := p.Process(tt.caption, Position{Epoch: 1}); got != tt.want {
				t.Errorf("Got %q, want %q", got, tt.want)
			}
		})
	}
}

// TestOhneShuffleBleibtWoertlich testet, dass der Keep-Separator ohne
// aktive Misch-Operationen im Text stehen bleibt
func TestOhneShuffleBleibtWoertlich(t *testing.T) {
	p := newProcessor(t, Params{KeepTokensSeparator: "|||"}, 1)
	got := p.Process("A ||| B ||| C", Position{Epoch: 1})
	if got != "A ||| B ||| C" {
		t.Errorf("Got %q", got)
	}
}

// TestValidate testet die Bereichspruefung der Parameter
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr error
	}{
		{"Gueltig", Params{TagDropoutRate: 0.5}, nil},
		{"Rate zu gross", Params{TagDropoutRate: 1.5}, ErrRateOutOfRange},
		{"Rate negativ", Params{CaptionDropoutRate: -0.1}, ErrRateOutOfRange},
		{"KeepTokens negativ", Params{KeepTokens: -1}, ErrNegativeValue},
		{"Warmup negativ", Params{TokenWarmupStep: -2}, ErrNegativeValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Unerwarteter Fehler: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestNewNilRand testet die Ablehnung eines fehlenden Zufallsgenerators
func TestNewNilRand(t *testing.T) {
	if _, err := New(Params{}, nil); !errors.Is(err, ErrNilRand) {
		t.Errorf("Got %v, want ErrNilRand", err)
	}
}

// TestMehrzeiler testet die Zeilenwahl bei mehrzeiligen Captions
func TestMehrzeiler(t *testing.T) {
	t.Run("Ohne Wildcard erste Zeile", func(t *testing.T) {
		p := newProcessor(t, Params{}, 1)
		if got := p.Process("zeile1\nzeile2", Position{Epoch: 1}); got != "zeile1" {
			t.Errorf("Got %q", got)
		}
	})
	t.Run("Mit Wildcard zufaellige Zeile", func(t *testing.T) {
		seen := map[string]bool{}
		for seed := int64(0); seed < 40; seed++ {
			p := newProcessor(t, Params{EnableWildcard: true}, seed)
			got := p.Process("zeile1\nzeile2", Position{Epoch: 1})
			if got != "zeile1" && got != "zeile2" {
				t.Fatalf("Seed %d: unerwartete Zeile %q", seed, got)
			}
			seen[got] = true
		}
		if len(seen) != 2 {
			t.Errorf("Nur eine Zeile gewaehlt: %v", seen)
		}
	})
}
