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

package main

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/launix-de/inlinec/inline"
)

// splitArgFields splits an argument line on whitespace, keeping array
// literals like [1, 2, 3] together as one field.
func splitArgFields(s string) []string {
	var fields []string
	var cur strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '[':
			depth++
			cur.WriteRune(r)
		case r == ']':
			depth--
			cur.WriteRune(r)
		case depth == 0 && unicode.IsSpace(r):
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields
}

// parseArgs turns textual CLI arguments into runtime values matching the
// declared parameter descriptors. Arrays are spelled [1,2,3].
func parseArgs(params []inline.TypeDescriptor, fields []string) ([]any, error) {
	if len(fields) != len(params) {
		return nil, fmt.Errorf("signature declares %d parameters but %d arguments were given", len(params), len(fields))
	}
	args := make([]any, len(fields))
	for i, f := range fields {
		v, err := parseArg(params[i], f)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		args[i] = v
	}
	return args, nil
}

func parseArg(t inline.TypeDescriptor, s string) (any, error) {
	h := t.Handle()
	switch h.Kind() {
	case reflect.Int64:
		return strconv.ParseInt(s, 0, 64)
	case reflect.Float64:
		return strconv.ParseFloat(s, 64)
	case reflect.Bool:
		return strconv.ParseBool(s)
	case reflect.Uint8:
		v, err := strconv.ParseUint(s, 0, 8)
		return byte(v), err
	case reflect.Slice:
		if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
			return nil, fmt.Errorf("array argument must be spelled [a,b,c]: %s", s)
		}
		inner := strings.TrimSpace(s[1 : len(s)-1])
		var elems []string
		if inner != "" {
			elems = strings.Split(inner, ",")
		}
		switch h.Elem().Kind() {
		case reflect.Int64:
			out := make([]int64, len(elems))
			for i, e := range elems {
				v, err := strconv.ParseInt(strings.TrimSpace(e), 0, 64)
				if err != nil {
					return nil, err
				}
				out[i] = v
			}
			return out, nil
		case reflect.Float64:
			out := make([]float64, len(elems))
			for i, e := range elems {
				v, err := strconv.ParseFloat(strings.TrimSpace(e), 64)
				if err != nil {
					return nil, err
				}
				out[i] = v
			}
			return out, nil
		case reflect.Uint8:
			out := make([]byte, len(elems))
			for i, e := range elems {
				v, err := strconv.ParseUint(strings.TrimSpace(e), 0, 8)
				if err != nil {
					return nil, err
				}
				out[i] = byte(v)
			}
			return out, nil
		}
		return nil, fmt.Errorf("unsupported array type %s", t.Text())
	}
	return nil, fmt.Errorf("unsupported argument type %s", t.Text())
}
