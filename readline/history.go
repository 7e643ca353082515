// history.go - Eingabe-History mit Datei-Persistenz
//
// Dieses Modul enthaelt:
// - History: Ringpuffer ueber die letzten Eingabezeilen
// - NewHistory: Laedt die History aus ~/.trainset/history
// - Add/Prev/Next: Navigation und Pflege der Eintraege

package readline

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/emirpasic/gods/v2/lists/arraylist"
)

// History haelt die letzten Eingabezeilen und persistiert sie
type History struct {
	Buf      *arraylist.List[string]
	Autosave bool
	Pos      int
	Limit    int
	Filename string
	Enabled  bool
}

// NewHistory erstellt eine History und laedt vorhandene Eintraege
func NewHistory() (*History, error) {
	h := &History{
		Buf:      arraylist.New[string](),
		Limit:    100,
		Autosave: true,
		Enabled:  true,
	}

	if err := h.Init(); err != nil {
		return nil, err
	}

	return h, nil
}

// Init setzt den Dateipfad und laedt vorhandene Eintraege.
// Eine fehlende Datei ist kein Fehler.
func (h *History) Init() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	path := filepath.Join(home, ".trainset", "history")
	h.Filename = path

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}

		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		// Beim Laden direkt anhaengen, sonst wuerde Add die Datei
		// pro Zeile neu schreiben
		h.Buf.Add(line)
	}

	h.Compact()
	h.Pos = h.Size()
	return nil
}

// Add haengt eine Zeile an, direkte Wiederholungen werden verworfen
func (h *History) Add(s string) {
	if !h.Enabled {
		return
	}

	if latest, _ := h.Buf.Get(h.Buf.Size() - 1); latest == s {
		h.Pos = h.Size()
		return
	}

	h.Buf.Add(s)
	h.Compact()
	h.Pos = h.Size()
	if h.Autosave {
		_ = h.Save()
	}
}

// Compact kuerzt die History auf Limit Eintraege
func (h *History) Compact() {
	s := h.Buf.Size()
	if h.Limit > 0 && s > h.Limit {
		for range s - h.Limit {
			h.Buf.Remove(0)
		}
	}
}

// Clear verwirft alle Eintraege
func (h *History) Clear() {
	h.Buf.Clear()
	h.Pos = 0
}

// Prev liefert den vorherigen Eintrag
func (h *History) Prev() string {
	if h.Pos > 0 {
		h.Pos -= 1
	}
	line, _ := h.Buf.Get(h.Pos)
	return line
}

// Next liefert den naechsten Eintrag, hinter dem Ende die leere Zeile
func (h *History) Next() string {
	if h.Pos < h.Buf.Size() {
		h.Pos += 1
		line, _ := h.Buf.Get(h.Pos)
		return line
	}
	return ""
}

// Size liefert die Anzahl der Eintraege
func (h *History) Size() int {
	return h.Buf.Size()
}

// Save schreibt alle Eintraege atomar in die History-Datei
func (h *History) Save() error {
	if h.Filename == "" {
		return nil
	}

	var buf bytes.Buffer
	for cnt := range h.Size() {
		line, _ := h.Buf.Get(cnt)
		buf.WriteString(line + "\n")
	}

	if err := os.MkdirAll(filepath.Dir(h.Filename), 0o755); err != nil {
		return err
	}

	tmp := h.Filename + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, h.Filename)
}
