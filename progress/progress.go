// progress.go - Terminal-Fortschrittsanzeige
//
// Dieses Modul enthaelt:
// - State: Interface fuer renderbare Fortschritts-Elemente
// - Progress: Sammelt Elemente und rendert sie zyklisch neu
//
// Weitere Elemente sind ausgelagert:
// - spinner.go: Spinner fuer unbestimmte Dauer
// - bar.go: Byte-basierter Fortschrittsbalken
// - stepbar.go: Schritt-basierter Fortschrittsbalken
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// State ist ein renderbares Fortschritts-Element
type State interface {
	String() string
}

// Progress rendert alle registrierten Elemente zeilenweise und
// zeichnet sie in einem festen Intervall neu
type Progress struct {
	mu sync.Mutex
	w  io.Writer

	pos     int
	stopped bool
	ticker  *time.Ticker
	done    chan struct{}

	states []State
}

// NewProgress erstellt eine Fortschrittsanzeige und startet das
// zyklische Rendern
func NewProgress(w io.Writer) *Progress {
	p := &Progress{
		w:      w,
		ticker: time.NewTicker(100 * time.Millisecond),
		done:   make(chan struct{}),
	}
	go p.loop()
	return p
}

// Add registriert ein Element. Der Key ist fuer Aufrufer gedacht,
// die Elemente spaeter wiederfinden wollen, und wird beim Rendern
// nicht verwendet.
func (p *Progress) Add(_ string, state State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, state)
}

// Stop haelt das Rendern an und laesst die letzte Ausgabe stehen
func (p *Progress) Stop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	stopped := p.stop()
	if stopped {
		fmt.Fprint(p.w, "\n")
	}
	return stopped
}

// StopAndClear haelt das Rendern an und loescht die Ausgabe
func (p *Progress) StopAndClear() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	stopped := p.stop()
	if stopped {
		// Gerenderte Zeilen loeschen, Cursor bleibt auf Zeile 1
		for i := range p.pos {
			if i > 0 {
				fmt.Fprint(p.w, "\033[A")
			}
			fmt.Fprint(p.w, "\033[2K\033[1G")
		}
		p.pos = 0
	}
	return stopped
}

// stop haelt den Ticker an und rendert ein letztes Mal.
// Muss unter p.mu laufen.
func (p *Progress) stop() bool {
	if p.stopped {
		return false
	}
	p.stopped = true
	p.ticker.Stop()
	close(p.done)

	for _, state := range p.states {
		if spinner, ok := state.(*Spinner); ok {
			spinner.Stop()
		}
	}
	p.render()
	return true
}

// render zeichnet alle Elemente neu. Muss unter p.mu laufen.
func (p *Progress) render() {
	fmt.Fprint(p.w, "\033[?25l")
	defer fmt.Fprint(p.w, "\033[?25h")

	// Vorherige Ausgabe loeschen
	for i := range p.pos {
		if i > 0 {
			fmt.Fprint(p.w, "\033[A")
		}
		fmt.Fprint(p.w, "\033[2K\033[1G")
	}

	for i, state := range p.states {
		if i > 0 {
			fmt.Fprint(p.w, "\n")
		}
		fmt.Fprint(p.w, state.String())
	}

	p.pos = len(p.states)
}

func (p *Progress) loop() {
	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			p.mu.Lock()
			if !p.stopped {
				p.render()
			}
			p.mu.Unlock()
		}
	}
}
