// header.go - Safetensors Header Parsing
//
// Dieses Modul enthaelt das Parsen und Validieren des JSON-Headers:
// - parseHeader: Dekodiert Header-JSON in TensorInfos
// - validate: Prueft Offsets auf Luecken und Ueberlaeufe
//
// Der Header muss den Datenbereich lueckenlos abdecken; jede
// data_offsets-Angabe muss zur Shape und Element-Groesse passen.
package safetensors

import (
	"encoding/json"
	"fmt"
	"sort"
)

// headerEntry ist der JSON-Eintrag eines Tensors.
type headerEntry struct {
	DType       string    `json:"dtype"`
	Shape       []uint64  `json:"shape"`
	DataOffsets [2]uint64 `json:"data_offsets"`
}

func (f *File) parseHeader(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}

	f.tensors = make([]TensorInfo, 0, len(raw))
	for name, msg := range raw {
		if name == "__metadata__" {
			if err := json.Unmarshal(msg, &f.metadata); err != nil {
				return fmt.Errorf("%w: __metadata__: %v", ErrInvalidHeader, err)
			}
			continue
		}

		var entry headerEntry
		if err := json.Unmarshal(msg, &entry); err != nil {
			return fmt.Errorf("%w: tensor %q: %v", ErrInvalidHeader, name, err)
		}
		info, err := f.tensorInfo(name, entry)
		if err != nil {
			return err
		}
		f.tensors = append(f.tensors, info)
	}

	return f.validate()
}

// tensorInfo prueft einen Header-Eintrag gegen Shape und Element-Groesse.
func (f *File) tensorInfo(name string, entry headerEntry) (TensorInfo, error) {
	dtype, err := ParseDType(entry.DType)
	if err != nil {
		return TensorInfo{}, fmt.Errorf("tensor %q: %w", name, err)
	}

	info := TensorInfo{
		Name:  name,
		DType: dtype,
		Shape: entry.Shape,
		begin: int64(entry.DataOffsets[0]),
		end:   int64(entry.DataOffsets[1]),
	}
	if info.begin < 0 || info.end < info.begin || info.end > f.dataSize {
		return TensorInfo{}, fmt.Errorf("%w: tensor %q: offsets [%d, %d) outside data of %d bytes",
			ErrInvalidHeader, name, info.begin, info.end, f.dataSize)
	}
	if want := int64(info.NumElements()) * int64(dtype.Size()); want != info.NumBytes() {
		return TensorInfo{}, fmt.Errorf("%w: tensor %q: %d bytes, shape %v needs %d",
			ErrInvalidHeader, name, info.NumBytes(), info.Shape, want)
	}
	return info, nil
}

// validate prueft, dass die Tensoren den Datenbereich lueckenlos und
// ueberlappungsfrei abdecken.
func (f *File) validate() error {
	sort.Slice(f.tensors, func(i, j int) bool {
		if f.tensors[i].begin != f.tensors[j].begin {
			return f.tensors[i].begin < f.tensors[j].begin
		}
		return f.tensors[i].Name < f.tensors[j].Name
	})

	var next int64
	for _, t := range f.tensors {
		if t.begin != next {
			return fmt.Errorf("%w: tensor %q: data starts at %d, expected %d",
				ErrInvalidHeader, t.Name, t.begin, next)
		}
		next = t.end
	}
	if next != f.dataSize {
		return fmt.Errorf("%w: %d bytes of data not covered", ErrInvalidHeader, f.dataSize-next)
	}

	f.index = make(map[string]int, len(f.tensors))
	for i, t := range f.tensors {
		f.index[t.Name] = i
	}
	return nil
}
