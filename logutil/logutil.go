// logutil.go - Gemeinsamer slog-Logger
// Hauptfunktionen: NewLogger
package logutil

import (
	"io"
	"log/slog"
	"path/filepath"
)

// NewLogger erstellt einen Text-Logger mit Quellangabe. Der Datei-Pfad
// wird auf den Basisnamen gekuerzt.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.SourceKey {
				source := attr.Value.Any().(*slog.Source)
				source.File = filepath.Base(source.File)
			}
			return attr
		},
	}))
}
