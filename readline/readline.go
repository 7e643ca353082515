// Package readline - Einzeilige interaktive Eingabe
//
// Dieses Paket implementiert eine readline-artige Eingabe fuer den
// interaktiven Caption-Editor: History, Cursor-Bewegung, Wort-Sprunege
// und Raw-Mode-Terminalsteuerung. Die Eingabe ist bewusst einzeilig,
// Captions sind eine Zeile aus Tags.
//
// Hauptkomponenten:
// - Prompt: Eingabeaufforderung und Platzhalter
// - Instance: Hauptinstanz fuer readline-Operationen
// - New: Konstruktor fuer neue Readline-Instanzen
// - Readline: Hauptmethode zum Lesen einer Zeile

package readline

import (
	"fmt"
	"io"
	"os"
)

// Prompt definiert Eingabeaufforderung und Platzhalter
type Prompt struct {
	Prompt      string
	Placeholder string
}

// prompt gibt den Prompt-String zurueck
func (p *Prompt) prompt() string {
	return p.Prompt
}

// placeholder gibt den Platzhalter fuer leere Eingaben zurueck
func (p *Prompt) placeholder() string {
	return p.Placeholder
}

// Instance buendelt Terminal, History und Prompt fuer die Eingabe
type Instance struct {
	Prompt   *Prompt
	Terminal *Terminal
	History  *History
	Pasting  bool

	prefill string
}

// New erstellt eine neue Readline-Instanz mit dem angegebenen Prompt
func New(prompt Prompt) (*Instance, error) {
	term, err := NewTerminal()
	if err != nil {
		return nil, err
	}

	history, err := NewHistory()
	if err != nil {
		return nil, err
	}

	return &Instance{
		Prompt:   &prompt,
		Terminal: term,
		History:  history,
	}, nil
}

// Prefill belegt die naechste Readline-Eingabe mit Text vor, der
// Cursor steht dann am Zeilenende. Der Caption-Editor nutzt das, um
// vorhandene Captions zur Bearbeitung anzubieten.
func (i *Instance) Prefill(s string) {
	i.prefill = s
}

// Readline liest eine Zeile vom Terminal mit Unterstuetzung fuer
// History-Navigation und Cursor-Bewegung. Ctrl-C liefert
// ErrInterrupt, Ctrl-D auf leerer Zeile io.EOF.
func (i *Instance) Readline() (string, error) {
	if !i.Terminal.rawmode {
		fd := os.Stdin.Fd()
		termios, err := SetRawMode(fd)
		if err != nil {
			return "", err
		}
		i.Terminal.rawmode = true
		i.Terminal.termios = termios
	}

	fmt.Print(i.Prompt.prompt())

	defer func() {
		fd := os.Stdin.Fd()
		//nolint:errcheck
		UnsetRawMode(fd, i.Terminal.termios)
		i.Terminal.rawmode = false
	}()

	buf, err := NewBuffer(i.Prompt)
	if err != nil {
		return "", err
	}

	if i.prefill != "" {
		buf.Replace([]rune(i.prefill))
		i.prefill = ""
	}

	var esc bool
	var escex bool
	var metaDel bool
	var currentLineBuf []rune

	for {
		// Platzhalter nur auf leerer Zeile und nicht beim Einfuegen
		if buf.IsEmpty() && !i.Pasting {
			if ph := i.Prompt.placeholder(); len(ph) > 0 {
				fmt.Print(ColorGrey + ph + CursorLeftN(len(ph)) + ColorDefault)
			}
		}

		r, err := i.Terminal.Read()

		if buf.IsEmpty() {
			fmt.Print(ClearToEOL)
		}

		if err != nil {
			return "", io.EOF
		}

		// Escape-Sequenzen verarbeiten
		if escex {
			shouldContinue, err := i.processEscapeEx(r, buf, &currentLineBuf, &escex, &metaDel)
			if err != nil {
				return "", err
			}
			if shouldContinue {
				continue
			}
		} else if esc {
			if i.processEscape(r, buf, &esc, &escex) {
				continue
			}
		}

		// Normale Zeichen verarbeiten
		output, done, err := i.processCharacter(r, buf, &currentLineBuf, &esc, &metaDel)
		if done {
			return output, err
		}
	}
}

// HistoryEnable aktiviert die History-Funktionalitaet
func (i *Instance) HistoryEnable() {
	i.History.Enabled = true
}

// HistoryDisable deaktiviert die History-Funktionalitaet
func (i *Instance) HistoryDisable() {
	i.History.Enabled = false
}

// historyPrev navigiert zum vorherigen History-Eintrag
func (i *Instance) historyPrev(buf *Buffer, currentLineBuf *[]rune) {
	if i.History.Pos > 0 {
		if i.History.Pos == i.History.Size() {
			*currentLineBuf = []rune(buf.String())
		}
		buf.Replace([]rune(i.History.Prev()))
	}
}

// historyNext navigiert zum naechsten History-Eintrag
func (i *Instance) historyNext(buf *Buffer, currentLineBuf *[]rune) {
	if i.History.Pos < i.History.Size() {
		buf.Replace([]rune(i.History.Next()))
		if i.History.Pos == i.History.Size() {
			buf.Replace(*currentLineBuf)
		}
	}
}
