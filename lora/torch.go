// torch.go - Lesen von PyTorch-Checkpoints
//
// Dieses Modul enthaelt den Pickle-Pfad der Netzwerk-Beschreibung:
// - describeTorch: Liest .pt/.ckpt/.bin Dateien ueber gopickle
// - stateEntries: Laeuft ueber Dict und OrderedDict State-Dicts
// - storageScalar: Erstes Element eines Tensor-Storage
//
// Checkpoints mit einem "state_dict"-Schluessel werden ausgepackt.
package lora

import (
	"fmt"
	"strings"

	"github.com/nlpodyssey/gopickle/pytorch"
	"github.com/nlpodyssey/gopickle/types"
)

func describeTorch(path string) (*Network, error) {
	obj, err := pytorch.Load(path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint laden: %w", err)
	}
	return describeTorchObject(obj)
}

// describeTorchObject baut die Beschreibung aus einem entpickelten
// State-Dict.
func describeTorchObject(obj any) (*Network, error) {
	if nested, ok := dictGet(obj, "state_dict"); ok {
		obj = nested
	}

	b := newNetworkBuilder()
	err := stateEntries(obj, func(key string, value any) error {
		module, suffix, ok := strings.Cut(key, ".")
		if !ok {
			return nil
		}
		t, ok := value.(*pytorch.Tensor)
		if !ok {
			return nil
		}
		switch {
		case strings.Contains(suffix, "alpha"):
			alpha, err := storageScalar(t)
			if err != nil {
				return fmt.Errorf("alpha %q: %w", key, err)
			}
			b.setAlpha(module, alpha)
		case strings.Contains(suffix, "lora_down"):
			if len(t.Size) > 0 {
				b.setRank(module, t.Size[0])
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b.build(nil), nil
}

// stateEntries ruft fn fuer jeden Eintrag eines Dict oder OrderedDict.
func stateEntries(obj any, fn func(key string, value any) error) error {
	switch d := obj.(type) {
	case *types.Dict:
		for _, k := range d.Keys() {
			key, ok := k.(string)
			if !ok {
				continue
			}
			if err := fn(key, d.MustGet(k)); err != nil {
				return err
			}
		}
		return nil
	case *types.OrderedDict:
		for _, entry := range d.Map {
			key, ok := entry.Key.(string)
			if !ok {
				continue
			}
			if err := fn(key, entry.Value); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: state dict ist %T", ErrUnknownFormat, obj)
	}
}

func dictGet(obj any, key string) (any, bool) {
	switch d := obj.(type) {
	case *types.Dict:
		return d.Get(key)
	case *types.OrderedDict:
		if entry, ok := d.Map[key]; ok {
			return entry.Value, true
		}
	}
	return nil, false
}

// storageScalar liest das erste Element eines Tensor-Storage als
// float64.
func storageScalar(t *pytorch.Tensor) (float64, error) {
	switch s := t.Source.(type) {
	case *pytorch.FloatStorage:
		if len(s.Data) > 0 {
			return float64(s.Data[0]), nil
		}
	case *pytorch.HalfStorage:
		if len(s.Data) > 0 {
			return float64(s.Data[0]), nil
		}
	case *pytorch.BFloat16Storage:
		if len(s.Data) > 0 {
			return float64(s.Data[0]), nil
		}
	case *pytorch.DoubleStorage:
		if len(s.Data) > 0 {
			return s.Data[0], nil
		}
	default:
		return 0, fmt.Errorf("storage-typ %T", t.Source)
	}
	return 0, fmt.Errorf("leerer storage")
}
