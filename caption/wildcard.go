// wildcard.go - Aufloesung der {a|b|c} Wildcard-Syntax
//
// Doppelte Klammern {{ und }} stehen fuer literale Klammern. Unbalancierte
// Klammern werden tolerant als Literal behandelt, nie als Fehler.
package caption

import (
	"math/rand"
	"regexp"
	"strings"
)

// wildcardPattern greift die innerste geschlossene Gruppe.
var wildcardPattern = regexp.MustCompile(`\{([^}]+)\}`)

// resolveWildcards behandelt Mehrzeiler und expandiert Wildcards.
// Ohne Wildcard-Modus zaehlt nur die erste Zeile; mit Wildcard-Modus
// wird eine Zeile zufaellig gewaehlt.
func (p *Processor) resolveWildcards(caption string) string {
	if !p.params.EnableWildcard {
		if i := strings.IndexByte(caption, '\n'); i >= 0 {
			caption = caption[:i]
		}
		return caption
	}
	if strings.Contains(caption, "\n") {
		lines := strings.Split(caption, "\n")
		caption = lines[p.rng.Intn(len(lines))]
	}
	return ResolveWildcards(caption, p.rng)
}

// ResolveWildcards ersetzt jede {alt1|alt2|...} Gruppe durch eine
// gleichverteilt gewaehlte Alternative. Escapte Klammern {{ und }}
// werden als einzelne literale Klammern ausgegeben.
func ResolveWildcards(caption string, rng *rand.Rand) string {
	if !strings.ContainsAny(caption, "{}") {
		return caption
	}

	open, closing := escapePlaceholders(caption)
	caption = strings.ReplaceAll(caption, "{{", open)
	caption = strings.ReplaceAll(caption, "}}", closing)

	caption = wildcardPattern.ReplaceAllStringFunc(caption, func(group string) string {
		alts := strings.Split(group[1:len(group)-1], "|")
		return alts[rng.Intn(len(alts))]
	})

	caption = strings.ReplaceAll(caption, open, "{")
	return strings.ReplaceAll(caption, closing, "}")
}

// escapePlaceholders liefert Platzhalter fuer escapte Klammern. Die
// Platzhalter wachsen, bis sie im Text nicht vorkommen.
func escapePlaceholders(caption string) (string, string) {
	open, closing := "⦅", "⦆"
	for strings.Contains(caption, open) || strings.Contains(caption, closing) {
		open += "⦅"
		closing += "⦆"
	}
	return open, closing
}
