// Package lora - Beschreibung von LoRA-Netzwerken aus Gewichtsdateien
//
// Dieses Modul enthaelt die Netzwerk-Beschreibung:
// - Network / Module: Struktur eines gespeicherten LoRA-Netzwerks
// - Describe: Liest Module, Raenge und Alphas aus einer Datei
// - Prefix-Erkennung fuer UNet und Text-Encoder
//
// Tensor-Schluessel haben die Form "<modul>.<suffix>"; der Modulname
// ist der flache Pfad mit "_" statt ".". Der Rang ist die erste
// Dimension des down-Gewichts, Alpha ein Skalar-Tensor je Modul.
package lora

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/trainset/trainset/safetensors"
)

// Bekannte Modul-Prefixe; die Text-Encoder-Varianten stehen vor dem
// generischen lora_te.
var knownPrefixes = []string{
	PrefixUNet,
	PrefixTextEncoder1,
	PrefixTextEncoder2,
	PrefixTextEncoder3,
	PrefixTextEncoder,
}

const (
	PrefixUNet         = "lora_unet"
	PrefixTextEncoder1 = "lora_te1"
	PrefixTextEncoder2 = "lora_te2"
	PrefixTextEncoder3 = "lora_te3"
	PrefixTextEncoder  = "lora_te"
)

var ErrUnknownFormat = errors.New("unbekanntes Dateiformat")

// Module ist ein einzelnes LoRA-Modul mit Rang und Alpha.
type Module struct {
	Name   string
	Prefix string // leer, wenn kein bekannter Prefix passt
	Rank   int
	Alpha  float64 // 0, wenn kein Alpha gespeichert ist
}

// Scale gibt den Skalierungsfaktor alpha/rank zurueck. Ohne Alpha oder
// Rang ist die Skalierung 1 (Alpha gleich Rang).
func (m Module) Scale() float64 {
	if m.Alpha == 0 || m.Rank == 0 {
		return 1
	}
	return m.Alpha / float64(m.Rank)
}

// Network beschreibt ein gespeichertes LoRA-Netzwerk.
type Network struct {
	Modules  []Module // sortiert nach Name
	Metadata map[string]string
}

// ByPrefix zaehlt die Module je Prefix.
func (n *Network) ByPrefix() map[string]int {
	counts := make(map[string]int)
	for _, m := range n.Modules {
		counts[m.Prefix]++
	}
	return counts
}

// TrainsT5 meldet, ob der T5-Text-Encoder trainiert wurde.
func (n *Network) TrainsT5() bool {
	for _, m := range n.Modules {
		if m.Prefix == PrefixTextEncoder3 {
			return true
		}
	}
	return false
}

// Ranks gibt die vorkommenden Raenge aufsteigend zurueck.
func (n *Network) Ranks() []int {
	seen := make(map[int]bool)
	for _, m := range n.Modules {
		seen[m.Rank] = true
	}
	ranks := make([]int, 0, len(seen))
	for r := range seen {
		ranks = append(ranks, r)
	}
	sort.Ints(ranks)
	return ranks
}

// Describe liest die Netzwerk-Beschreibung aus einer Gewichtsdatei.
// Unterstuetzt werden .safetensors sowie .pt/.ckpt/.bin via Pickle.
func Describe(path string) (*Network, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".safetensors":
		return describeSafetensors(path)
	case ".pt", ".ckpt", ".bin":
		return describeTorch(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Ext(path))
	}
}

func describeSafetensors(path string) (*Network, error) {
	f, err := safetensors.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b := newNetworkBuilder()
	for _, info := range f.Tensors() {
		module, suffix, ok := strings.Cut(info.Name, ".")
		if !ok {
			continue
		}
		switch {
		case strings.Contains(suffix, "alpha"):
			_, data, err := f.TensorBytes(info.Name)
			if err != nil {
				return nil, err
			}
			alpha, err := safetensors.Scalar(info.DType, data)
			if err != nil {
				return nil, fmt.Errorf("alpha %q: %w", info.Name, err)
			}
			b.setAlpha(module, alpha)
		case strings.Contains(suffix, "lora_down"):
			if len(info.Shape) > 0 {
				b.setRank(module, int(info.Shape[0]))
			}
		}
	}

	return b.build(f.Metadata()), nil
}

// networkBuilder sammelt Rang und Alpha je Modulname.
type networkBuilder struct {
	ranks  map[string]int
	alphas map[string]float64
}

func newNetworkBuilder() *networkBuilder {
	return &networkBuilder{
		ranks:  make(map[string]int),
		alphas: make(map[string]float64),
	}
}

func (b *networkBuilder) setRank(module string, rank int) {
	b.ranks[module] = rank
}

func (b *networkBuilder) setAlpha(module string, alpha float64) {
	b.alphas[module] = alpha
}

func (b *networkBuilder) build(metadata map[string]string) *Network {
	names := make(map[string]bool, len(b.ranks))
	for name := range b.ranks {
		names[name] = true
	}
	for name := range b.alphas {
		names[name] = true
	}

	n := &Network{
		Modules:  make([]Module, 0, len(names)),
		Metadata: metadata,
	}
	for name := range names {
		n.Modules = append(n.Modules, Module{
			Name:   name,
			Prefix: prefixOf(name),
			Rank:   b.ranks[name],
			Alpha:  b.alphas[name],
		})
	}
	sort.Slice(n.Modules, func(i, j int) bool { return n.Modules[i].Name < n.Modules[j].Name })
	return n
}

// prefixOf findet den bekannten Prefix eines Modulnamens.
func prefixOf(module string) string {
	for _, p := range knownPrefixes {
		if strings.HasPrefix(module, p+"_") {
			return p
		}
	}
	return ""
}
