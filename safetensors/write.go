// write.go - Schreiben von Safetensors-Dateien
//
// Dieses Modul enthaelt das Serialisieren kompletter Dateien:
// - Write: Schreibt Header und Datenbereich auf einen Writer
// - WriteFile: Schreibt eine Datei auf die Platte
//
// Die Tensoren werden nach Name sortiert und lueckenlos abgelegt, der
// Header mit Leerzeichen auf ein Vielfaches von 8 aufgefuellt. Das
// Ergebnis ist fuer gleiche Eingaben byte-identisch.
package safetensors

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Tensor ist ein zu schreibender Tensor.
type Tensor struct {
	Name  string
	DType DType
	Shape []uint64
	Data  []byte
}

// Write serialisiert Tensoren und Metadaten als Safetensors-Strom.
func Write(w io.Writer, tensors []Tensor, metadata map[string]string) error {
	sorted := slices.Clone(tensors)
	slices.SortStableFunc(sorted, func(a, b Tensor) int {
		return cmp.Compare(a.Name, b.Name)
	})

	header := orderedmap.New[string, any]()
	if len(metadata) > 0 {
		header.Set("__metadata__", metadata)
	}

	var offset uint64
	for _, t := range sorted {
		if t.Name == "" || t.Name == "__metadata__" {
			return fmt.Errorf("invalid tensor name %q", t.Name)
		}
		if _, dup := header.Get(t.Name); dup {
			return fmt.Errorf("duplicate tensor name %q", t.Name)
		}
		if want := t.NumElements() * uint64(t.DType.Size()); want != uint64(len(t.Data)) {
			return fmt.Errorf("tensor %q: %d bytes, shape %v needs %d", t.Name, len(t.Data), t.Shape, want)
		}

		shape := t.Shape
		if shape == nil {
			shape = []uint64{}
		}
		header.Set(t.Name, headerEntry{
			DType:       t.DType.String(),
			Shape:       shape,
			DataOffsets: [2]uint64{offset, offset + uint64(len(t.Data))},
		})
		offset += uint64(len(t.Data))
	}

	hdr, err := json.Marshal(header)
	if err != nil {
		return err
	}
	if pad := (8 - len(hdr)%8) % 8; pad > 0 {
		hdr = append(hdr, bytes.Repeat([]byte{' '}, pad)...)
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(len(hdr))); err != nil {
		return err
	}
	if _, err := w.Write(hdr); err != nil {
		return err
	}
	for _, t := range sorted {
		if _, err := w.Write(t.Data); err != nil {
			return err
		}
	}
	return nil
}

// NumElements gibt die Element-Zahl des Shapes zurueck.
func (t Tensor) NumElements() uint64 {
	n := uint64(1)
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// WriteFile schreibt Tensoren und Metadaten als Datei.
func WriteFile(path string, tensors []Tensor, metadata map[string]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, tensors, metadata); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
