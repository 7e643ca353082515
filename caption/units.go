// units.go - Atomare Einheiten einer Caption
//
// Dieses Modul enthaelt:
// - Unit: ein Tag, eine Sekundaer-Gruppe oder ein Keep-Region-Tag
// - splitUnits: Zerlegung einer Caption in Keep-Regionen und Einheiten
// - renderUnits: Zusammenbau der endgueltigen Caption
//
// Gruppen- und Keep-Grenzen stehen fest, bevor gemischt oder ausgeduennt
// wird. Eine Gruppe wird nie aufgetrennt; Keep-Einheiten behalten ihre
// Position und werden nie verworfen.
package caption

import "strings"

// UnitKind unterscheidet die Einheiten-Varianten.
type UnitKind int

const (
	UnitTag   UnitKind = iota // einzelnes Tag
	UnitGroup                 // durch Sekundaer-Separator gebundene Gruppe
	UnitKept                  // Tag aus einer Keep-Region, exempt
)

// Unit ist die kleinste unteilbare Einheit beim Mischen und Ausduennen.
// Parts hat genau einen Eintrag, ausser bei Sekundaer-Gruppen.
type Unit struct {
	Kind  UnitKind
	Parts []string
}

// Render gibt die Einheit als Text aus. Gruppen-Teile werden mit dem
// Separator ohne Leerzeichen verbunden.
func (u Unit) Render(sep string) string {
	if len(u.Parts) == 1 {
		return u.Parts[0]
	}
	return strings.Join(u.Parts, sep)
}

// splitUnits zerlegt die Caption in eine Einheiten-Folge. Der
// Keep-Separator trennt an den ersten beiden Vorkommen Kopf und Schwanz
// ab; ohne Separator markiert KeepTokens die ersten n Tags als Keep.
func splitUnits(caption, sep string, params Params) []Unit {
	keepSep := params.KeepTokensSeparator
	if keepSep != "" && strings.Contains(caption, keepSep) {
		head, rest, _ := strings.Cut(caption, keepSep)
		middle, tail, hasTail := strings.Cut(rest, keepSep)

		units := tokenizeRegion(head, sep, params.SecondarySeparator, true)
		units = append(units, tokenizeRegion(middle, sep, params.SecondarySeparator, false)...)
		if hasTail {
			units = append(units, tokenizeRegion(tail, sep, params.SecondarySeparator, true)...)
		}
		return units
	}

	units := tokenizeRegion(caption, sep, params.SecondarySeparator, false)
	for i := 0; i < params.KeepTokens && i < len(units); i++ {
		units[i].Kind = UnitKept
	}
	return units
}

// tokenizeRegion zerlegt einen Regions-Text in Einheiten. Tags werden
// getrimmt, leere Tags verworfen. Ein Tag mit Sekundaer-Separator wird
// zur Gruppe; die Gruppen-Teile bleiben ungetrimmt.
func tokenizeRegion(region, sep, secondary string, kept bool) []Unit {
	var units []Unit
	for _, tag := range strings.Split(region, sep) {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		u := Unit{Kind: UnitTag, Parts: []string{tag}}
		if secondary != "" && strings.Contains(tag, secondary) {
			u = Unit{Kind: UnitGroup, Parts: strings.Split(tag, secondary)}
		}
		if kept {
			u.Kind = UnitKept
		}
		units = append(units, u)
	}
	return units
}

// renderUnits verbindet die Einheiten mit Separator und Leerzeichen.
func renderUnits(units []Unit, sep string) string {
	parts := make([]string, len(units))
	for i, u := range units {
		parts[i] = u.Render(sep)
	}
	return strings.Join(parts, sep+" ")
}
