// frequency.go - Tag-Haeufigkeiten pro Subset
//
// Zaehlt Tag-Vorkommen gruppiert nach Subset-Verzeichnis. Die
// Reihenfolge des ersten Auftretens bleibt erhalten und wird auch bei
// der JSON-Serialisierung beibehalten.
package caption

import (
	"encoding/json"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// TagFrequency sammelt Tag-Zaehler je Gruppe in Einfuege-Reihenfolge.
type TagFrequency struct {
	groups *orderedmap.OrderedMap[string, *orderedmap.OrderedMap[string, int]]
}

// NewTagFrequency erstellt einen leeren Zaehler.
func NewTagFrequency() *TagFrequency {
	return &TagFrequency{
		groups: orderedmap.New[string, *orderedmap.OrderedMap[string, int]](),
	}
}

// Add zerlegt die Caption am Separator und zaehlt jedes Tag fuer die
// Gruppe. Tags werden getrimmt und kleingeschrieben; leerer Separator
// bedeutet ",".
func (f *TagFrequency) Add(group, caption, sep string) {
	if sep == "" {
		sep = DefaultSeparator
	}
	for _, tag := range strings.Split(caption, sep) {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		f.AddTag(group, strings.ToLower(tag))
	}
}

// AddTag erhoeht den Zaehler eines einzelnen Tags.
func (f *TagFrequency) AddTag(group, tag string) {
	counts, ok := f.groups.Get(group)
	if !ok {
		counts = orderedmap.New[string, int]()
		f.groups.Set(group, counts)
	}
	n, _ := counts.Get(tag)
	counts.Set(tag, n+1)
}

// Count gibt den Zaehler eines Tags zurueck, 0 wenn unbekannt.
func (f *TagFrequency) Count(group, tag string) int {
	counts, ok := f.groups.Get(group)
	if !ok {
		return 0
	}
	n, _ := counts.Get(tag)
	return n
}

// Groups listet die Gruppen in Einfuege-Reihenfolge.
func (f *TagFrequency) Groups() []string {
	out := make([]string, 0, f.groups.Len())
	for pair := f.groups.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Tags listet die Tags einer Gruppe in Einfuege-Reihenfolge.
func (f *TagFrequency) Tags(group string) []string {
	counts, ok := f.groups.Get(group)
	if !ok {
		return nil
	}
	out := make([]string, 0, counts.Len())
	for pair := counts.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// MarshalJSON serialisiert die Zaehler unter Erhalt der Reihenfolge.
func (f *TagFrequency) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.groups)
}

// UnmarshalJSON liest serialisierte Zaehler zurueck.
func (f *TagFrequency) UnmarshalJSON(data []byte) error {
	if f.groups == nil {
		f.groups = orderedmap.New[string, *orderedmap.OrderedMap[string, int]]()
	}
	return json.Unmarshal(data, f.groups)
}
