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
	"math"
	"reflect"
	"sync"

	"github.com/launix-de/inlinec/inline"
	"github.com/tetratelabs/wazero/api"
)

// fallback when the unit exports no __heap_base (one page is always there)
const defaultHeapBase = 65536

const wasmPageSize = 65536

// entryPoint binds a resolved export to the loading context it lives in.
// A module instance must not be entered concurrently, so calls serialize on
// the mutex; distinct units never share an instance and run in parallel.
type entryPoint struct {
	mu   sync.Mutex
	unit string
	mod  api.Module
	fn   api.Function
	sig  inline.Signature
	heap uint32
}

// Invoke marshals the arguments into the unit's calling convention, calls
// the entry point and marshals the result back. Scalars pass through the
// value stack; arrays are copied into a bump region of the unit's linear
// memory that starts over on every call.
func (ep *entryPoint) Invoke(ctx context.Context, args ...any) (any, error) {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	if len(args) != len(ep.sig.Params) {
		return nil, &inline.ArityError{Placeholders: len(ep.sig.Params), Params: len(ep.sig.Params), Args: len(args)}
	}

	bump := ep.heap
	params := make([]uint64, len(args))
	for i, arg := range args {
		v, nbump, err := ep.marshal(ep.sig.Params[i], arg, bump)
		if err != nil {
			return nil, &inline.InvocationError{Unit: ep.unit, Err: err}
		}
		params[i] = v
		bump = nbump
	}

	res, err := ep.fn.Call(ctx, params...)
	if err != nil {
		return nil, &inline.InvocationError{Unit: ep.unit, Err: err}
	}
	if len(res) == 0 {
		return nil, nil
	}
	return unmarshalResult(ep.sig.Return, res[0]), nil
}

func (ep *entryPoint) marshal(t inline.TypeDescriptor, arg any, bump uint32) (uint64, uint32, error) {
	h := t.Handle()
	if h == nil {
		return 0, bump, fmt.Errorf("argument %v has no native handle", arg)
	}
	rv := reflect.ValueOf(arg)
	if !rv.IsValid() || !rv.Type().ConvertibleTo(h) {
		return 0, bump, fmt.Errorf("cannot pass %T as %s", arg, t.Text())
	}
	rv = rv.Convert(h)

	switch h.Kind() {
	case reflect.Int64:
		return api.EncodeI64(rv.Int()), bump, nil
	case reflect.Float64:
		return api.EncodeF64(rv.Float()), bump, nil
	case reflect.Bool:
		if rv.Bool() {
			return api.EncodeI32(1), bump, nil
		}
		return api.EncodeI32(0), bump, nil
	case reflect.Uint8, reflect.Int32, reflect.Uint32:
		return api.EncodeI32(int32(rv.Convert(reflect.TypeOf(int64(0))).Int())), bump, nil
	case reflect.Slice:
		return ep.writeArray(rv, bump)
	default:
		return 0, bump, fmt.Errorf("unsupported parameter kind %s", h.Kind())
	}
}

// writeArray copies a slice argument into linear memory at the bump offset
// and yields the pointer the entry point sees.
func (ep *entryPoint) writeArray(rv reflect.Value, bump uint32) (uint64, uint32, error) {
	mem := ep.mod.Memory()
	if mem == nil {
		return 0, bump, fmt.Errorf("unit exports no linear memory for array arguments")
	}

	var elemSize uint32
	switch rv.Type().Elem().Kind() {
	case reflect.Uint8:
		elemSize = 1
	case reflect.Int64, reflect.Float64:
		elemSize = 8
	default:
		return 0, bump, fmt.Errorf("unsupported array element kind %s", rv.Type().Elem().Kind())
	}

	n := uint32(rv.Len())
	end := bump + n*elemSize
	if end > mem.Size() {
		pages := (end - mem.Size() + wasmPageSize - 1) / wasmPageSize
		if _, ok := mem.Grow(pages); !ok {
			return 0, bump, fmt.Errorf("cannot grow linear memory to %d bytes", end)
		}
	}

	switch s := rv.Interface().(type) {
	case []byte:
		if !mem.Write(bump, s) {
			return 0, bump, fmt.Errorf("array write out of range")
		}
	case []int64:
		for i, v := range s {
			if !mem.WriteUint64Le(bump+uint32(i)*8, uint64(v)) {
				return 0, bump, fmt.Errorf("array write out of range")
			}
		}
	case []float64:
		for i, v := range s {
			if !mem.WriteUint64Le(bump+uint32(i)*8, math.Float64bits(v)) {
				return 0, bump, fmt.Errorf("array write out of range")
			}
		}
	}
	return api.EncodeI32(int32(bump)), end, nil
}

func unmarshalResult(t inline.TypeDescriptor, raw uint64) any {
	h := t.Handle()
	if h == nil {
		return int64(raw)
	}
	switch h.Kind() {
	case reflect.Float64:
		return api.DecodeF64(raw)
	case reflect.Bool:
		return api.DecodeI32(raw) != 0
	case reflect.Uint8:
		return byte(api.DecodeI32(raw))
	case reflect.Int32, reflect.Uint32:
		return int32(api.DecodeI32(raw))
	case reflect.Slice:
		// an array return is the raw offset into the unit's memory
		return int64(api.DecodeU32(raw))
	default:
		return int64(raw)
	}
}
