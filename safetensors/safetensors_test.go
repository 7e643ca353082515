// safetensors_test.go - Unit Tests fuer Lesen und Schreiben
package safetensors

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeTestFile(t *testing.T, tensors []Tensor, metadata map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.safetensors")
	if err := WriteFile(path, tensors, metadata); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func writeRaw(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw.safetensors")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// rawFile baut eine Datei aus Header-JSON und Datenbereich.
func rawFile(header string, data []byte) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint64(len(header)))
	buf.WriteString(header)
	buf.Write(data)
	return buf.Bytes()
}

// TestRoundtrip testet Schreiben und Wiederoeffnen
func TestRoundtrip(t *testing.T) {
	weight := []byte{0, 0, 128, 63, 0, 0, 0, 64, 0, 0, 64, 64, 0, 0, 128, 64} // 1, 2, 3, 4 als F32
	alpha := []byte{0, 0, 0, 63}                                              // 0.5 als F32

	path := writeTestFile(t, []Tensor{
		{Name: "weight", DType: DTypeF32, Shape: []uint64{2, 2}, Data: weight},
		{Name: "alpha", DType: DTypeF32, Shape: []uint64{}, Data: alpha},
	}, map[string]string{"format": "pt"})

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	if f.NumTensors() != 2 {
		t.Fatalf("NumTensors = %d, want 2", f.NumTensors())
	}
	// Der Writer sortiert nach Name, also liegt alpha vor weight
	if diff := cmp.Diff([]string{"alpha", "weight"}, f.Names()); diff != "" {
		t.Errorf("Names (-want +got):\n%s", diff)
	}

	info, ok := f.Tensor("weight")
	if !ok {
		t.Fatal("Tensor weight fehlt")
	}
	if info.DType != DTypeF32 {
		t.Errorf("DType = %v", info.DType)
	}
	if diff := cmp.Diff([]uint64{2, 2}, info.Shape); diff != "" {
		t.Errorf("Shape (-want +got):\n%s", diff)
	}
	if info.NumElements() != 4 || info.NumBytes() != 16 {
		t.Errorf("NumElements/NumBytes = %d/%d", info.NumElements(), info.NumBytes())
	}

	_, data, err := f.TensorBytes("weight")
	if err != nil {
		t.Fatalf("TensorBytes: %v", err)
	}
	if !bytes.Equal(data, weight) {
		t.Errorf("Datenbereich veraendert: %v", data)
	}

	// Leeres Shape ist ein Skalar mit einem Element
	info, ok = f.Tensor("alpha")
	if !ok {
		t.Fatal("Tensor alpha fehlt")
	}
	if info.NumElements() != 1 {
		t.Errorf("NumElements = %d, want 1", info.NumElements())
	}

	if diff := cmp.Diff(map[string]string{"format": "pt"}, f.Metadata()); diff != "" {
		t.Errorf("Metadata (-want +got):\n%s", diff)
	}
	if f.DataOffset()%8 != 0 {
		t.Errorf("DataOffset = %d, Header sollte auf 8 aufgefuellt sein", f.DataOffset())
	}
}

// TestTensorReader testet den Abschnitts-Reader
func TestTensorReader(t *testing.T) {
	path := writeTestFile(t, []Tensor{
		{Name: "a", DType: DTypeU8, Shape: []uint64{2}, Data: []byte{1, 2}},
		{Name: "b", DType: DTypeU8, Shape: []uint64{3}, Data: []byte{3, 4, 5}},
	}, nil)

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	_, r, err := f.TensorReader("b")
	if err != nil {
		t.Fatalf("TensorReader: %v", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(data, []byte{3, 4, 5}) {
		t.Errorf("Got %v, want [3 4 5]", data)
	}

	if _, _, err := f.TensorReader("fehlt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Got %v, want ErrNotFound", err)
	}
}

// TestOpenFehler testet ungueltige Dateien
func TestOpenFehler(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "zu kurz", data: []byte{1, 2, 3}},
		{name: "Header-Laenge ueber Dateiende", data: rawFile(`{"a":1}`, nil)[:8]},
		{name: "kein JSON", data: rawFile("{kaputt ", nil)},
		{
			name: "unbekannter dtype",
			data: rawFile(`{"t":{"dtype":"Q4_0","shape":[1],"data_offsets":[0,4]}}`, []byte{0, 0, 0, 0}),
		},
		{
			name: "Shape passt nicht zu den Offsets",
			data: rawFile(`{"t":{"dtype":"F32","shape":[3],"data_offsets":[0,8]}}`, []byte{0, 0, 0, 0, 0, 0, 0, 0}),
		},
		{
			name: "Offsets ausserhalb der Daten",
			data: rawFile(`{"t":{"dtype":"U8","shape":[4],"data_offsets":[0,4]}}`, []byte{0, 0}),
		},
		{
			name: "Luecke zwischen Tensoren",
			data: rawFile(`{"a":{"dtype":"U8","shape":[1],"data_offsets":[0,1]},"b":{"dtype":"U8","shape":[1],"data_offsets":[2,3]}}`, []byte{0, 0, 0}),
		},
		{
			name: "Daten nicht abgedeckt",
			data: rawFile(`{}`, []byte{0, 0, 0, 0}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRaw(t, tt.data)
			f, err := Open(path)
			if err == nil {
				f.Close()
				t.Fatal("Erwartete Fehler")
			}
		})
	}
}

// TestOpenMitHeaderLimit testet die Obergrenze der Header-Laenge
func TestOpenMitHeaderLimit(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint64(maxHeaderSize+1))
	path := writeRaw(t, buf.Bytes())

	_, err := Open(path)
	if !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("Got %v, want ErrInvalidHeader", err)
	}
}

// TestWriteFehler testet die Eingabe-Pruefung des Writers
func TestWriteFehler(t *testing.T) {
	tests := []struct {
		name    string
		tensors []Tensor
	}{
		{
			name:    "Daten passen nicht zum Shape",
			tensors: []Tensor{{Name: "t", DType: DTypeF32, Shape: []uint64{2}, Data: []byte{0}}},
		},
		{
			name: "doppelter Name",
			tensors: []Tensor{
				{Name: "t", DType: DTypeU8, Shape: []uint64{1}, Data: []byte{0}},
				{Name: "t", DType: DTypeU8, Shape: []uint64{1}, Data: []byte{1}},
			},
		},
		{
			name:    "leerer Name",
			tensors: []Tensor{{Name: "", DType: DTypeU8, Shape: []uint64{1}, Data: []byte{0}}},
		},
		{
			name:    "reservierter Name",
			tensors: []Tensor{{Name: "__metadata__", DType: DTypeU8, Shape: []uint64{1}, Data: []byte{0}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Write(io.Discard, tt.tensors, nil); err == nil {
				t.Fatal("Erwartete Fehler")
			}
		})
	}
}

// TestWriteDeterministisch testet byte-identische Ausgaben
func TestWriteDeterministisch(t *testing.T) {
	tensors := []Tensor{
		{Name: "b", DType: DTypeU8, Shape: []uint64{1}, Data: []byte{2}},
		{Name: "a", DType: DTypeU8, Shape: []uint64{1}, Data: []byte{1}},
	}

	var first, second bytes.Buffer
	if err := Write(&first, tensors, map[string]string{"k": "v"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := Write(&second, tensors, map[string]string{"k": "v"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("Zwei Laeufe erzeugten unterschiedliche Bytes")
	}
}
