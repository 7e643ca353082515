// MODUL: format
// ZWECK: Bildformat-Erkennung fuer Trainings-Datensaetze
// INPUT: Bild-Bytes oder Dateipfad
// OUTPUT: Format, Fehler bei ungueltigem Format
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: keine (nur Standardbibliothek)
// HINWEISE: Magic-Bytes-basierte Erkennung fuer JPEG/PNG/WebP/BMP

package imagefile

import (
	"errors"
	"path/filepath"
	"strings"
)

// Format repraesentiert ein unterstuetztes Bildformat
type Format string

const (
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatWebP    Format = "webp"
	FormatBMP     Format = "bmp"
	FormatUnknown Format = "unknown"
)

// Magic-Byte-Signaturen fuer Bildformate
var (
	magicJPEG = []byte{0xFF, 0xD8, 0xFF}
	magicPNG  = []byte{0x89, 0x50, 0x4E, 0x47}
	magicWebP = []byte{0x52, 0x49, 0x46, 0x46} // "RIFF" header
	magicBMP  = []byte{0x42, 0x4D}             // "BM"
)

// ErrUnknownFormat wird zurueckgegeben wenn das Format nicht erkannt wurde
var ErrUnknownFormat = errors.New("unbekanntes Bildformat")

// imageExtensions sind die Dateiendungen, die beim Scannen als
// Trainingsbilder gelten.
var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".bmp": true,
}

// DetectFormat erkennt das Bildformat anhand der Magic-Bytes
func DetectFormat(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}

	switch {
	case matchesMagic(data, magicJPEG):
		return FormatJPEG
	case matchesMagic(data, magicPNG):
		return FormatPNG
	case matchesMagic(data, magicWebP) && isValidWebP(data):
		return FormatWebP
	case matchesMagic(data, magicBMP):
		return FormatBMP
	}
	return FormatUnknown
}

// matchesMagic prueft ob die Daten mit der Signatur beginnen
func matchesMagic(data, magic []byte) bool {
	if len(data) < len(magic) {
		return false
	}
	for i, b := range magic {
		if data[i] != b {
			return false
		}
	}
	return true
}

// isValidWebP prueft auf "WEBP" Marker nach dem RIFF Header
func isValidWebP(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	// RIFF....WEBP
	return data[8] == 'W' && data[9] == 'E' && data[10] == 'B' && data[11] == 'P'
}

// IsImagePath prueft anhand der Dateiendung, ob der Pfad als
// Trainingsbild in Frage kommt.
func IsImagePath(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// Extension gibt die kanonische Dateiendung fuer ein Format zurueck
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatPNG:
		return ".png"
	case FormatWebP:
		return ".webp"
	case FormatBMP:
		return ".bmp"
	default:
		return ".bin"
	}
}

// String implementiert das Stringer Interface
func (f Format) String() string {
	return string(f)
}
