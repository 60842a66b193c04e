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
	"reflect"
	"testing"

	"github.com/launix-de/inlinec/inline"
)

func TestParseArgs(t *testing.T) {
	params := []inline.TypeDescriptor{
		inline.MustAlias("int"),
		inline.MustAlias("float"),
		inline.MustAlias("bool"),
		inline.MustAlias("int[]"),
	}
	args, err := parseArgs(params, []string{"42", "2.5", "true", "[1, 2, 3]"})
	if err != nil {
		t.Fatal(err)
	}
	want := []any{int64(42), 2.5, true, []int64{1, 2, 3}}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("parseArgs = %v, want %v", args, want)
	}
}

func TestSplitArgFieldsKeepsArraysTogether(t *testing.T) {
	got := splitArgFields("42  [1, 2, 3] true [4,5]")
	want := []string{"42", "[1, 2, 3]", "true", "[4,5]"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("splitArgFields = %v, want %v", got, want)
	}
}

func TestSplitArgFieldsThroughParse(t *testing.T) {
	params := []inline.TypeDescriptor{inline.MustAlias("int"), inline.MustAlias("int[]")}
	args, err := parseArgs(params, splitArgFields("7 [1, 2]"))
	if err != nil {
		t.Fatal(err)
	}
	want := []any{int64(7), []int64{1, 2}}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
}

func TestParseArgsCountMismatch(t *testing.T) {
	if _, err := parseArgs([]inline.TypeDescriptor{inline.MustAlias("int")}, nil); err == nil {
		t.Fatal("missing arguments must be rejected")
	}
}

func TestParseArgEmptyArray(t *testing.T) {
	v, err := parseArg(inline.MustAlias("byte[]"), "[]")
	if err != nil {
		t.Fatal(err)
	}
	if b, ok := v.([]byte); !ok || len(b) != 0 {
		t.Fatalf("empty array = %v", v)
	}
}
