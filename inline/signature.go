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

import "strings"

// Signature identifies a compiled unit: return type, parameter types and the
// verbatim fragment text. Two signatures are equal iff all three components
// are; the fragment is compared as exact text, never semantically.
type Signature struct {
	Return   TypeDescriptor
	Params   []TypeDescriptor
	Fragment string
}

func NewSignature(ret TypeDescriptor, params []TypeDescriptor, fragment string) Signature {
	// copy so later caller mutations cannot corrupt the cache key
	p := make([]TypeDescriptor, len(params))
	copy(p, params)
	return Signature{Return: ret, Params: p, Fragment: fragment}
}

// Key renders the signature triple into the cache key. \x00 separates the
// components so no fragment text can collide with a type rendering.
func (s Signature) Key() string {
	var b strings.Builder
	b.WriteString(s.Return.key())
	for _, p := range s.Params {
		b.WriteString("\x00")
		b.WriteString(p.key())
	}
	b.WriteString("\x00\x00")
	b.WriteString(s.Fragment)
	return b.String()
}
