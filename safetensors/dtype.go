// dtype.go - Safetensors DType Definitionen
// Enthält: DType Konstanten, Parsing und Größen-Tabelle

package safetensors

import "fmt"

// DType ist der Element-Typ eines Tensors, wie er im Header steht.
type DType uint32

const (
	DTypeF64 DType = iota
	DTypeF32
	DTypeF16
	DTypeBF16
	DTypeI64
	DTypeI32
	DTypeI16
	DTypeI8
	DTypeU8
	DTypeBool
)

// ParseDType parst den DType aus dem Header-String.
// Nur hier gelistete Typen werden als gültig betrachtet.
func ParseDType(s string) (DType, error) {
	switch s {
	case "F64":
		return DTypeF64, nil
	case "F32":
		return DTypeF32, nil
	case "F16":
		return DTypeF16, nil
	case "BF16":
		return DTypeBF16, nil
	case "I64":
		return DTypeI64, nil
	case "I32":
		return DTypeI32, nil
	case "I16":
		return DTypeI16, nil
	case "I8":
		return DTypeI8, nil
	case "U8":
		return DTypeU8, nil
	case "BOOL":
		return DTypeBool, nil
	default:
		return 0, fmt.Errorf("%w dtype %q", ErrUnsupported, s)
	}
}

// Size gibt die Byte-Größe eines Elements zurück.
func (t DType) Size() int {
	switch t {
	case DTypeF64, DTypeI64:
		return 8
	case DTypeF32, DTypeI32:
		return 4
	case DTypeF16, DTypeBF16, DTypeI16:
		return 2
	case DTypeI8, DTypeU8, DTypeBool:
		return 1
	default:
		return 0
	}
}

func (t DType) String() string {
	switch t {
	case DTypeF64:
		return "F64"
	case DTypeF32:
		return "F32"
	case DTypeF16:
		return "F16"
	case DTypeBF16:
		return "BF16"
	case DTypeI64:
		return "I64"
	case DTypeI32:
		return "I32"
	case DTypeI16:
		return "I16"
	case DTypeI8:
		return "I8"
	case DTypeU8:
		return "U8"
	case DTypeBool:
		return "BOOL"
	default:
		return fmt.Sprintf("unbekannt (%d)", uint32(t))
	}
}
