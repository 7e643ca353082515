// scalar.go - Dekodieren von Tensor-Daten zu float64
//
// Dieses Modul enthaelt die Element-Dekodierung fuer alle DTypes:
// - Values: Dekodiert einen kompletten Datenpuffer
// - Scalar: Dekodiert das erste Element
//
// F16 laeuft ueber x448/float16, BF16 ueber d4l3k/go-bfloat16; alle
// Mehrbyte-Typen sind little-endian.
package safetensors

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"
)

// Values dekodiert data als Folge von Elementen des Typs dt.
func Values(dt DType, data []byte) ([]float64, error) {
	size := dt.Size()
	if size == 0 {
		return nil, fmt.Errorf("%w dtype %s", ErrUnsupported, dt)
	}
	if len(data)%size != 0 {
		return nil, fmt.Errorf("%d bytes not a multiple of %s element size %d", len(data), dt, size)
	}

	out := make([]float64, 0, len(data)/size)
	switch dt {
	case DTypeF64:
		for i := 0; i < len(data); i += 8 {
			out = append(out, math.Float64frombits(binary.LittleEndian.Uint64(data[i:])))
		}
	case DTypeF32:
		for i := 0; i < len(data); i += 4 {
			out = append(out, float64(math.Float32frombits(binary.LittleEndian.Uint32(data[i:]))))
		}
	case DTypeF16:
		for i := 0; i < len(data); i += 2 {
			out = append(out, float64(float16.Frombits(binary.LittleEndian.Uint16(data[i:])).Float32()))
		}
	case DTypeBF16:
		for _, v := range bfloat16.DecodeFloat32(data) {
			out = append(out, float64(v))
		}
	case DTypeI64:
		for i := 0; i < len(data); i += 8 {
			out = append(out, float64(int64(binary.LittleEndian.Uint64(data[i:]))))
		}
	case DTypeI32:
		for i := 0; i < len(data); i += 4 {
			out = append(out, float64(int32(binary.LittleEndian.Uint32(data[i:]))))
		}
	case DTypeI16:
		for i := 0; i < len(data); i += 2 {
			out = append(out, float64(int16(binary.LittleEndian.Uint16(data[i:]))))
		}
	case DTypeI8:
		for _, b := range data {
			out = append(out, float64(int8(b)))
		}
	case DTypeU8:
		for _, b := range data {
			out = append(out, float64(b))
		}
	case DTypeBool:
		for _, b := range data {
			if b != 0 {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		}
	}
	return out, nil
}

// Scalar dekodiert das erste Element eines Datenpuffers.
func Scalar(dt DType, data []byte) (float64, error) {
	size := dt.Size()
	if size == 0 {
		return 0, fmt.Errorf("%w dtype %s", ErrUnsupported, dt)
	}
	if len(data) < size {
		return 0, fmt.Errorf("%d bytes too short for one %s element", len(data), dt)
	}
	vals, err := Values(dt, data[:size])
	if err != nil {
		return 0, err
	}
	return vals[0], nil
}
