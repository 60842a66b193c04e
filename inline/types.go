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
package inline

import "reflect"

// TypeDescriptor carries both projections of a declared type: the C spelling
// that goes into synthesized source and the native reflect handle used for
// marshaling and entry point resolution. Values are immutable.
type TypeDescriptor struct {
	alias  string // set for members of the closed alias set
	text   string
	handle reflect.Type
}

type aliasEntry struct {
	text   string
	handle reflect.Type
}

// the closed set of primitive/array aliases; arrays pass as pointers into
// the unit's linear memory
var aliasTable = map[string]aliasEntry{
	"int":     {"int64_t", reflect.TypeOf(int64(0))},
	"float":   {"double", reflect.TypeOf(float64(0))},
	"bool":    {"int32_t", reflect.TypeOf(false)},
	"byte":    {"int32_t", reflect.TypeOf(byte(0))},
	"int[]":   {"const int64_t*", reflect.TypeOf([]int64(nil))},
	"float[]": {"const double*", reflect.TypeOf([]float64(nil))},
	"byte[]":  {"const uint8_t*", reflect.TypeOf([]byte(nil))},
}

type UnknownAliasError struct {
	Alias string
}

func (e *UnknownAliasError) Error() string {
	return "unknown type alias: " + e.Alias
}

// Alias resolves a member of the closed alias set to its descriptor.
func Alias(name string) (TypeDescriptor, error) {
	ent, ok := aliasTable[name]
	if !ok {
		return TypeDescriptor{}, &UnknownAliasError{name}
	}
	return TypeDescriptor{alias: name, text: ent.text, handle: ent.handle}, nil
}

// MustAlias is Alias for compiled-in signatures where the name is a literal.
func MustAlias(name string) TypeDescriptor {
	t, err := Alias(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Named builds a descriptor for a type outside the alias set; the caller
// already holds the native handle, the C spelling is derived from the
// handle's canonical name.
func Named(handle reflect.Type) TypeDescriptor {
	return TypeDescriptor{text: handle.Name(), handle: handle}
}

func (t TypeDescriptor) Text() string {
	return t.text
}

func (t TypeDescriptor) Handle() reflect.Type {
	return t.handle
}

func (t TypeDescriptor) IsArray() bool {
	return t.handle != nil && t.handle.Kind() == reflect.Slice
}

// key renders the identity of the descriptor for cache keying: the text
// alone is not enough because two named types may share a spelling
func (t TypeDescriptor) key() string {
	if t.alias != "" {
		return t.alias
	}
	if t.handle == nil {
		return t.text
	}
	return t.text + "\x01" + t.handle.String()
}
