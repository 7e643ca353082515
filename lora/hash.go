// hash.go - Modell-Hashes fuer Gewichtsdateien
//
// Dieses Modul enthaelt die beiden verbreiteten Hash-Schemata:
// - ModelHash: sha256 ueber den Datenbereich nach dem Header
// - LegacyHash: gekuerzter sha256 ueber 0x10000 Bytes ab 0x100000
//
// Beide Schemata ignorieren den Header, damit nachtraeglich ergaenzte
// Metadaten den Hash nicht aendern.
package lora

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// ModelHash berechnet den sha256 ueber alles nach dem Header einer
// Safetensors-Datei.
func ModelHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var headerSize uint64
	if err := binary.Read(f, binary.LittleEndian, &headerSize); err != nil {
		return "", fmt.Errorf("header lesen: %w", err)
	}
	if _, err := f.Seek(8+int64(headerSize), io.SeekStart); err != nil {
		return "", err
	}

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

// LegacyHash berechnet den alten gekuerzten Hash: sha256 ueber bis zu
// 0x10000 Bytes ab Offset 0x100000, erste 8 Hex-Zeichen. Kuerzere
// Dateien hashen entsprechend weniger Bytes.
func LegacyHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.Seek(0x100000, io.SeekStart); err != nil {
		return "", err
	}

	hash := sha256.New()
	if _, err := io.Copy(hash, io.LimitReader(f, 0x10000)); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", hash.Sum(nil))[:8], nil
}
