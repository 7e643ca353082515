// Package safetensors - Safetensors Datei Struktur und Open/Close
//
// Dieses Modul enthaelt die File-Hauptstruktur fuer Safetensors-Dateien:
// - File: Repraesentiert eine geoeffnete Safetensors-Datei
// - Open: Oeffnet die Datei und parst den Header
// - Close: Schliesst die Datei
//
// Format: 8 Byte Header-Laenge (uint64, little-endian), dann der
// JSON-Header mit dtype/shape/data_offsets pro Tensor und optionalem
// "__metadata__"-Block, dann der rohe Datenbereich.
package safetensors

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// Header groesser als das ist keine plausible Modelldatei mehr.
const maxHeaderSize = 100 << 20

var (
	ErrInvalidHeader = errors.New("invalid safetensors header")
	ErrUnsupported   = errors.New("unsupported")
	ErrNotFound      = errors.New("tensor not found")
)

// TensorInfo beschreibt einen Tensor aus dem Header.
type TensorInfo struct {
	Name  string
	DType DType
	Shape []uint64

	// Grenzen relativ zum Datenbereich
	begin, end int64
}

// NumElements gibt die Element-Zahl zurueck; ein leeres Shape ist ein
// Skalar mit einem Element.
func (t TensorInfo) NumElements() uint64 {
	n := uint64(1)
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// NumBytes gibt die Byte-Groesse der Tensor-Daten zurueck.
func (t TensorInfo) NumBytes() int64 {
	return t.end - t.begin
}

// File repraesentiert eine geoeffnete Safetensors-Datei.
type File struct {
	file       *os.File
	metadata   map[string]string
	tensors    []TensorInfo // sortiert nach Daten-Offset
	index      map[string]int
	dataOffset int64 // 8 + Header-Laenge
	dataSize   int64
}

// Open oeffnet eine Safetensors-Datei und parst den Header.
func Open(path string) (f *File, err error) {
	f = &File{}
	f.file, err = os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			f.file.Close()
		}
	}()

	fi, err := f.file.Stat()
	if err != nil {
		return nil, err
	}

	var headerSize uint64
	if err := binary.Read(f.file, binary.LittleEndian, &headerSize); err != nil {
		return nil, fmt.Errorf("%w: header length: %v", ErrInvalidHeader, err)
	}
	if headerSize > maxHeaderSize {
		return nil, fmt.Errorf("%w: header length %d exceeds limit", ErrInvalidHeader, headerSize)
	}
	if int64(headerSize) > fi.Size()-8 {
		return nil, fmt.Errorf("%w: header length %d exceeds file size %d", ErrInvalidHeader, headerSize, fi.Size())
	}

	header := make([]byte, headerSize)
	if _, err := f.file.ReadAt(header, 8); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}

	f.dataOffset = 8 + int64(headerSize)
	f.dataSize = fi.Size() - f.dataOffset
	if err := f.parseHeader(header); err != nil {
		return nil, err
	}
	return f, nil
}

// Close schliesst die Datei.
func (f *File) Close() error {
	return f.file.Close()
}
