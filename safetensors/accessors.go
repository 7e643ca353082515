// accessors.go - Safetensors Zugriffs-Methoden
//
// Dieses Modul enthaelt die Zugriffs-Methoden fuer geoeffnete Dateien:
// - NumTensors / Names: Bestand in Daten-Reihenfolge
// - Tensor: Sucht Tensor-Info nach Name
// - Tensors: Iterator ueber alle Tensor-Infos
// - TensorReader: Liefert einen Reader fuer Tensor-Daten
// - TensorBytes: Liest kleine Tensoren komplett ein
// - Metadata / DataOffset: Header-Metadaten und Datenbeginn
package safetensors

import (
	"fmt"
	"io"
	"iter"
	"maps"
)

// NumTensors gibt die Anzahl der Tensoren zurueck.
func (f *File) NumTensors() int {
	return len(f.tensors)
}

// Names gibt die Tensor-Namen in Daten-Reihenfolge zurueck.
func (f *File) Names() []string {
	names := make([]string, len(f.tensors))
	for i, t := range f.tensors {
		names[i] = t.Name
	}
	return names
}

// Tensor sucht die Tensor-Info nach Name.
func (f *File) Tensor(name string) (TensorInfo, bool) {
	i, ok := f.index[name]
	if !ok {
		return TensorInfo{}, false
	}
	return f.tensors[i], true
}

// Tensors gibt einen Iterator ueber alle Tensor-Infos zurueck.
func (f *File) Tensors() iter.Seq2[int, TensorInfo] {
	return func(yield func(int, TensorInfo) bool) {
		for i, t := range f.tensors {
			if !yield(i, t) {
				return
			}
		}
	}
}

// Metadata gibt eine Kopie des "__metadata__"-Blocks zurueck, nil wenn
// keiner vorhanden ist.
func (f *File) Metadata() map[string]string {
	if f.metadata == nil {
		return nil
	}
	return maps.Clone(f.metadata)
}

// DataOffset gibt den Datei-Offset des Datenbereichs zurueck.
func (f *File) DataOffset() int64 {
	return f.dataOffset
}

// TensorReader liefert Tensor-Info und einen Reader fuer die Tensor-Daten.
func (f *File) TensorReader(name string) (TensorInfo, io.Reader, error) {
	t, ok := f.Tensor(name)
	if !ok {
		return TensorInfo{}, nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return t, io.NewSectionReader(f.file, f.dataOffset+t.begin, t.NumBytes()), nil
}

// TensorBytes liest die Daten eines Tensors komplett ein. Gedacht fuer
// kleine Tensoren wie Alpha-Skalare, nicht fuer Gewichtsmatrizen.
func (f *File) TensorBytes(name string) (TensorInfo, []byte, error) {
	t, r, err := f.TensorReader(name)
	if err != nil {
		return TensorInfo{}, nil, err
	}
	data := make([]byte, t.NumBytes())
	if _, err := io.ReadFull(r, data); err != nil {
		return TensorInfo{}, nil, fmt.Errorf("tensor %q: %w", name, err)
	}
	return t, data, nil
}
