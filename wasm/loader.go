/*
Copyright (C) 2026  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package wasm

import (
	"context"
	"fmt"
	"reflect"

	"github.com/launix-de/inlinec/inline"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// Loader materializes artifacts with wazero. Every unit gets its own
// freshly created runtime: a fully isolated namespace, so same-named
// exports of different units can never shadow each other. Runtimes are
// deliberately never closed; eviction from the signature cache only drops
// the lookup entry while the loaded code stays resident.
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

func (l *Loader) Load(ctx context.Context, unit string, art inline.Artifact, sig inline.Signature) (inline.EntryPoint, error) {
	r := wazero.NewRuntime(ctx)
	mod, err := r.InstantiateWithConfig(ctx, art, wazero.NewModuleConfig().WithName(unit))
	if err != nil {
		return nil, &inline.LoadError{Unit: unit, Err: err}
	}
	fn := mod.ExportedFunction(inline.EntryName)
	if fn == nil {
		return nil, &inline.LoadError{Unit: unit, Err: fmt.Errorf("no exported entry point %q", inline.EntryName)}
	}
	if err := checkEntrySignature(fn, sig); err != nil {
		return nil, &inline.LoadError{Unit: unit, Err: err}
	}

	heap := uint32(defaultHeapBase)
	if g := mod.ExportedGlobal("__heap_base"); g != nil {
		heap = uint32(g.Get())
	}

	return &entryPoint{unit: unit, mod: mod, fn: fn, sig: sig, heap: heap}, nil
}

// checkEntrySignature verifies the resolved export against the declared
// native handles. Synthesis guarantees a match, so a mismatch here means the
// pipeline itself is broken.
func checkEntrySignature(fn api.Function, sig inline.Signature) error {
	def := fn.Definition()
	if len(def.ParamTypes()) != len(sig.Params) {
		return fmt.Errorf("entry point takes %d values, signature declares %d", len(def.ParamTypes()), len(sig.Params))
	}
	for i, p := range sig.Params {
		if want := valueTypeFor(p); def.ParamTypes()[i] != want {
			return fmt.Errorf("entry point parameter %d is %s, signature declares %s", i, api.ValueTypeName(def.ParamTypes()[i]), api.ValueTypeName(want))
		}
	}
	if len(def.ResultTypes()) > 1 {
		return fmt.Errorf("entry point returns %d values", len(def.ResultTypes()))
	}
	return nil
}

func valueTypeFor(t inline.TypeDescriptor) api.ValueType {
	h := t.Handle()
	if h == nil {
		return api.ValueTypeI64
	}
	switch h.Kind() {
	case reflect.Slice:
		return api.ValueTypeI32 // pointer into linear memory
	case reflect.Bool, reflect.Uint8, reflect.Int32, reflect.Uint32:
		return api.ValueTypeI32
	case reflect.Float32:
		return api.ValueTypeF32
	case reflect.Float64:
		return api.ValueTypeF64
	default:
		return api.ValueTypeI64
	}
}
