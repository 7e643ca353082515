// spinner.go - Spinner fuer Operationen unbestimmter Dauer
package progress

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Spinner zeigt eine rotierende Animation mit optionaler Meldung
type Spinner struct {
	message      atomic.Value
	messageWidth int

	parts []string
	value atomic.Int32

	started time.Time
	stopped atomic.Bool
}

// NewSpinner erstellt einen laufenden Spinner
func NewSpinner(message string) *Spinner {
	s := &Spinner{
		parts: []string{
			"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏",
		},
		started: time.Now(),
	}
	s.SetMessage(message)
	go s.start()
	return s
}

// SetMessage setzt die angezeigte Meldung
func (s *Spinner) SetMessage(message string) {
	s.message.Store(message)
}

// String rendert den Spinner mit Meldung
func (s *Spinner) String() string {
	var sb strings.Builder

	if message, ok := s.message.Load().(string); ok && len(message) > 0 {
		message := strings.TrimSpace(message)
		if s.messageWidth > 0 && len(message) > s.messageWidth {
			message = message[:s.messageWidth]
		}

		fmt.Fprintf(&sb, "%s", message)
		if padding := s.messageWidth - sb.Len(); padding > 0 {
			sb.WriteString(strings.Repeat(" ", padding))
		}

		sb.WriteString(" ")
	}

	if s.stopped.Load() {
		return sb.String()
	}

	sb.WriteString(s.parts[int(s.value.Load())%len(s.parts)])
	sb.WriteString(" ")

	return sb.String()
}

func (s *Spinner) start() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		if s.stopped.Load() {
			return
		}
		s.value.Add(1)
	}
}

// Stop haelt die Animation an
func (s *Spinner) Stop() {
	s.stopped.Store(true)
}
