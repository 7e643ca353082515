// cmd_utils.go - Gemeinsame Hilfsfunktionen
// Hauptfunktionen: newSampleRNG
package cmd

import (
	"math/rand"
	"time"
)

// newSampleRNG - Erstellt die Zufallsquelle fuer Vorschau und REPL.
// Negative Seeds werden durch die aktuelle Zeit ersetzt.
func newSampleRNG(seed int64) *rand.Rand {
	if seed < 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
