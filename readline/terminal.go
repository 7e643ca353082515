// terminal.go - Terminal-Ein-/Ausgabe im Raw-Mode
//
// Dieses Modul enthaelt:
// - Terminal: Struktur fuer Terminal-I/O mit gepuffertem Reader
// - NewTerminal: Konstruktor, prueft ob Raw-Mode moeglich ist
// - Read: Liest einzelne Runen vom Terminal

package readline

import (
	"bufio"
	"os"
)

// Terminal verwaltet die Terminal-Ein-/Ausgabe im Raw-Mode
type Terminal struct {
	reader  *bufio.Reader
	rawmode bool
	termios any
}

// NewTerminal erstellt eine Terminal-Instanz. Der Raw-Mode wird
// einmal probeweise gesetzt, damit Aufrufer auf Pipes frueh auf
// nicht-interaktive Verarbeitung ausweichen koennen.
func NewTerminal() (*Terminal, error) {
	fd := os.Stdin.Fd()
	termios, err := SetRawMode(fd)
	if err != nil {
		return nil, err
	}
	if err := UnsetRawMode(fd, termios); err != nil {
		return nil, err
	}

	t := &Terminal{
		reader: bufio.NewReader(os.Stdin),
	}

	return t, nil
}

// Read liest eine einzelne Rune vom Terminal
func (t *Terminal) Read() (rune, error) {
	r, _, err := t.reader.ReadRune()
	if err != nil {
		return 0, err
	}
	return r, nil
}
