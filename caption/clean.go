// MODUL: clean
// ZWECK: Regelbasierte Normalisierung von Captions und Tags
// INPUT: Caption-String oder Tag-Liste
// OUTPUT: normalisierter String bzw. deduplizierte Tag-Liste
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: dlclark/regexp2 (Look-Arounds)
// HINWEISE: Emoticon-Tags wie ^_^ oder >_< behalten ihre Unterstriche

package caption

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Cleaner haelt die kompilierten Normalisierungs-Regeln.
type Cleaner struct {
	repeatedSep    *regexp2.Regexp // mehrfache Separatoren
	spaceBeforeSep *regexp2.Regexp // Leerraum vor dem Separator
	missingSpace   *regexp2.Regexp // fehlendes Leerzeichen nach dem Separator
	spaceRuns      *regexp2.Regexp // Leerzeichen-Laeufe
}

// NewCleaner kompiliert den Standard-Regelsatz.
func NewCleaner() *Cleaner {
	return &Cleaner{
		repeatedSep:    regexp2.MustCompile(`(?:,[ \t]*){2,}`, regexp2.None),
		spaceBeforeSep: regexp2.MustCompile(`[ \t]+(?=,)`, regexp2.None),
		missingSpace:   regexp2.MustCompile(`(?<=\S),(?=\S)`, regexp2.None),
		spaceRuns:      regexp2.MustCompile(`[ \t]{2,}`, regexp2.None),
	}
}

// Clean normalisiert Separator-Setzung und Leerraum einer Caption.
func (c *Cleaner) Clean(caption string) string {
	caption = rewrite(c.repeatedSep, caption, ", ")
	caption = rewrite(c.spaceBeforeSep, caption, "")
	caption = rewrite(c.missingSpace, caption, ", ")
	caption = rewrite(c.spaceRuns, caption, " ")
	return strings.Trim(caption, " \t,")
}

// CleanTag normalisiert ein einzelnes Tag. Unterstriche werden zu
// Leerzeichen; Tags bis drei Zeichen bleiben unveraendert, damit
// Emoticons erhalten bleiben.
func (c *Cleaner) CleanTag(tag string) string {
	tag = strings.TrimSpace(tag)
	if utf8.RuneCountInString(tag) > 3 {
		tag = strings.ReplaceAll(tag, "_", " ")
	}
	return tag
}

// CleanTags normalisiert eine Tag-Liste und entfernt exakte Duplikate.
// Das erste Vorkommen bleibt erhalten.
func (c *Cleaner) CleanTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = c.CleanTag(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// rewrite wendet eine Regel an; bei Fehlern bleibt der Text unveraendert.
func rewrite(re *regexp2.Regexp, input, repl string) string {
	out, err := re.Replace(input, repl, -1, -1)
	if err != nil {
		return input
	}
	return out
}

var defaultCleaner = sync.OnceValue(NewCleaner)

// Clean normalisiert eine Caption mit dem Standard-Regelsatz.
func Clean(caption string) string {
	return defaultCleaner().Clean(caption)
}
