// convert.go - Umbenennen von State-Dict-Schluesseln zwischen Schemata
//
// Dieses Modul enthaelt die Schluessel-Konvertierung:
// - Rule / Table: Ersetzungs-Tabelle mit "()."-Block-Mustern
// - Convert: Wendet eine Tabelle auf Schluessel an
// - Invert: Kehrt eine Tabelle um
//
// Ein "()" im Muster steht fuer den Block-Index und wird fuer jeden
// Index von 0 bis numBlocks-1 eingesetzt. Muster ohne "()" werden als
// einfache Teilstring-Ersetzung angewandt.
package lora

import (
	"strconv"
	"strings"
)

// Rule ist eine einzelne Ersetzung.
type Rule struct {
	From, To string
}

// Table ist eine geordnete Ersetzungs-Tabelle; die erste passende
// Regel gewinnt.
type Table []Rule

// Invert kehrt die Richtung der Tabelle um.
func (t Table) Invert() Table {
	inv := make(Table, len(t))
	for i, r := range t {
		inv[i] = Rule{From: r.To, To: r.From}
	}
	return inv
}

// Apply wendet die Tabelle auf einen Schluessel an. Der zweite
// Rueckgabewert meldet, ob eine Regel gepasst hat.
func (t Table) Apply(key string, numBlocks int) (string, bool) {
	for _, r := range t {
		if !strings.Contains(r.From, "().") {
			if strings.Contains(key, r.From) {
				return strings.Replace(key, r.From, r.To, 1), true
			}
			continue
		}
		for block := 0; block < numBlocks; block++ {
			idx := strconv.Itoa(block)
			from := strings.Replace(r.From, "()", idx, 1)
			if strings.Contains(key, from) {
				return strings.Replace(key, from, strings.Replace(r.To, "()", idx, 1), 1), true
			}
		}
	}
	return key, false
}

// Convert wendet die Tabelle auf alle Schluessel an und gibt die
// Zuordnung alt -> neu zurueck. Nicht passende Schluessel bleiben
// unveraendert erhalten.
func (t Table) Convert(keys []string, numBlocks int) map[string]string {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		converted, _ := t.Apply(key, numBlocks)
		out[key] = converted
	}
	return out
}

// AlphaVLLMToDiffusers uebersetzt NextDiT-Schluessel (Alpha-VLLM) in
// das Diffusers-Schema. Invert() liefert die Gegenrichtung.
var AlphaVLLMToDiffusers = Table{
	// Embedding-Schichten
	{"cap_embedder.0.weight", "time_caption_embed.caption_embedder.0.weight"},
	{"cap_embedder.1.weight", "time_caption_embed.caption_embedder.1.weight"},
	{"cap_embedder.1.bias", "time_caption_embed.caption_embedder.1.bias"},
	{"x_embedder.weight", "patch_embedder.proj.weight"},
	{"x_embedder.bias", "patch_embedder.proj.bias"},
	// Attention-Modulation
	{"layers.().adaLN_modulation.1.weight", "transformer_blocks.().adaln_modulation.1.weight"},
	{"layers.().adaLN_modulation.1.bias", "transformer_blocks.().adaln_modulation.1.bias"},
	// Finale Schichten
	{"final_layer.adaLN_modulation.1.weight", "final_adaln_modulation.1.weight"},
	{"final_layer.adaLN_modulation.1.bias", "final_adaln_modulation.1.bias"},
	{"final_layer.linear.weight", "final_linear.weight"},
	{"final_layer.linear.bias", "final_linear.bias"},
	// Noise-Refiner
	{"noise_refiner.().adaLN_modulation.1.weight", "single_transformer_blocks.().adaln_modulation.1.weight"},
	{"noise_refiner.().adaLN_modulation.1.bias", "single_transformer_blocks.().adaln_modulation.1.bias"},
	{"noise_refiner.().attention.qkv.weight", "single_transformer_blocks.().attn.to_qkv.weight"},
	{"noise_refiner.().attention.out.weight", "single_transformer_blocks.().attn.to_out.0.weight"},
	// Zeit-Embedding
	{"t_embedder.mlp.0.weight", "time_embedder.0.weight"},
	{"t_embedder.mlp.0.bias", "time_embedder.0.bias"},
	{"t_embedder.mlp.2.weight", "time_embedder.2.weight"},
	{"t_embedder.mlp.2.bias", "time_embedder.2.bias"},
	// Kontext-Attention
	{"context_refiner.().attention.qkv.weight", "transformer_blocks.().attn2.to_qkv.weight"},
	{"context_refiner.().attention.out.weight", "transformer_blocks.().attn2.to_out.0.weight"},
	// Normalisierung
	{"layers.().attention_norm1.weight", "transformer_blocks.().norm1.weight"},
	{"layers.().attention_norm2.weight", "transformer_blocks.().norm2.weight"},
	// FFN
	{"layers.().feed_forward.w1.weight", "transformer_blocks.().ff.net.0.proj.weight"},
	{"layers.().feed_forward.w2.weight", "transformer_blocks.().ff.net.2.weight"},
	{"layers.().feed_forward.w3.weight", "transformer_blocks.().ff.net.4.weight"},
}
