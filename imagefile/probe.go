// MODUL: probe
// ZWECK: Bildgroessen-Ermittlung ohne vollstaendiges Dekodieren
// INPUT: Dateipfad, Bytes oder io.Reader
// OUTPUT: Info mit Breite, Hoehe und Format
// NEBENEFFEKTE: Dateisystem-Lesezugriff bei ProbeFile
// ABHAENGIGKEITEN: golang.org/x/image/webp und /bmp als Decoder
// HINWEISE: Nur der Header wird gelesen; fuer die Bucket-Zuordnung
// genuegen die Abmessungen

package imagefile

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"io"
	"os"

	// Decoder fuer image.DecodeConfig registrieren
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Info enthaelt die Kopfdaten eines Bildes
type Info struct {
	Width  int
	Height int
	Format Format
}

// AspectRatio gibt das Seitenverhaeltnis Breite/Hoehe zurueck
func (i Info) AspectRatio() float64 {
	if i.Height == 0 {
		return 0
	}
	return float64(i.Width) / float64(i.Height)
}

// Probe liest die Bildabmessungen aus einem Reader. Es werden nur die
// Header-Bytes konsumiert.
func Probe(r io.Reader) (Info, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(12)
	if err != nil && len(head) < 4 {
		return Info{}, fmt.Errorf("header lesen: %w", err)
	}

	format := DetectFormat(head)
	if format == FormatUnknown {
		return Info{}, ErrUnknownFormat
	}

	config, _, err := image.DecodeConfig(br)
	if err != nil {
		return Info{}, fmt.Errorf("%s dekodieren: %w", format, err)
	}
	return Info{Width: config.Width, Height: config.Height, Format: format}, nil
}

// ProbeBytes liest die Bildabmessungen aus Byte-Daten
func ProbeBytes(data []byte) (Info, error) {
	return Probe(bytes.NewReader(data))
}

// ProbeFile liest die Bildabmessungen einer Datei
func ProbeFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("datei oeffnen: %w", err)
	}
	defer f.Close()

	info, err := Probe(f)
	if err != nil {
		return Info{}, fmt.Errorf("%s: %w", path, err)
	}
	return info, nil
}
