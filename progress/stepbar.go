// stepbar.go - Schritt-basierter Fortschrittsbalken
package progress

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// StepBar zaehlt diskrete Schritte statt Bytes, etwa verarbeitete
// Bilder oder Konfigurationsdateien. Anzeige als "N/M" mit Balken.
type StepBar struct {
	mu sync.Mutex

	message      string
	messageWidth int

	total   int
	current int

	started time.Time
	stopped time.Time
}

// NewStepBar erstellt einen Balken fuer total Schritte
func NewStepBar(message string, total int) *StepBar {
	b := StepBar{
		message:      message,
		messageWidth: 25,
		total:        total,
		started:      time.Now(),
	}

	if total <= 0 {
		b.stopped = time.Now()
	}

	return &b
}

// Set setzt den Stand auf n abgeschlossene Schritte
func (b *StepBar) Set(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n >= b.total {
		n = b.total
	}

	b.current = n
	if b.current >= b.total {
		b.stopped = time.Now()
	}
}

// String rendert eine Zeile, die in die Terminalbreite passt
func (b *StepBar) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	termWidth, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil {
		termWidth = 80
	}

	var pre strings.Builder
	if len(b.message) > 0 {
		message := strings.TrimSpace(b.message)
		if b.messageWidth > 0 && len(message) > b.messageWidth {
			message = message[:b.messageWidth]
		}

		fmt.Fprintf(&pre, "%s", message)
		if padding := b.messageWidth - pre.Len(); padding > 0 {
			pre.WriteString(repeat(" ", padding))
		}

		pre.WriteString(" ")
	}

	fmt.Fprintf(&pre, "%3.0f%%", b.percent())

	var suf strings.Builder
	counter := fmt.Sprintf("%d/%d", b.current, b.total)
	suf.WriteString(repeat(" ", 11-len(counter)))
	suf.WriteString(counter)

	// Maximal 8 Zeichen: "  59m59s"
	if rate := b.rate(); b.stopped.IsZero() && rate > 0 {
		suf.WriteString("  ")
		eta := time.Duration(float64(b.total-b.current)/rate) * time.Second
		suf.WriteString(formatDuration(eta))
	} else {
		suf.WriteString(repeat(" ", 8))
	}

	var mid strings.Builder
	// 5 Zeichen Reserve: 2 Begrenzer und je 1 Leerzeichen an den Enden
	f := termWidth - pre.Len() - suf.Len() - 5
	n := int(float64(f) * b.percent() / 100)
	if f > 0 {
		mid.WriteString(" ▕")
		mid.WriteString(repeat("█", n))
		mid.WriteString(repeat(" ", f-n))
		mid.WriteString("▏ ")
	}

	return pre.String() + mid.String() + suf.String()
}

func (b *StepBar) percent() float64 {
	if b.total > 0 {
		return float64(b.current) / float64(b.total) * 100
	}

	return 0
}

// rate liefert Schritte pro Sekunde seit dem Start
func (b *StepBar) rate() float64 {
	elapsed := time.Since(b.started).Seconds()
	if !b.stopped.IsZero() {
		elapsed = b.stopped.Sub(b.started).Seconds()
	}

	if elapsed != 0 {
		return float64(b.current) / elapsed
	}

	return 0
}
