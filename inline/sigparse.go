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

import "fmt"
import packrat "github.com/launix-de/go-packrat/v2"

/* textual signature grammar for the REPL and the playground:

   signature = type "(" [ type { "," type } ] ")"
   type      = identifier [ "[]" ]

   e.g. "int (int, float[])"

   the parse payload is the list of type spellings, return type first
*/

func collectNames(_ string, parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// regex and atom parsers are stateless and shared; the And/Kleene parsers
// buffer matches internally, so every parse builds its own
var sigType = packrat.NewRegexParser(func(s string) []string { return []string{s} }, `[A-Za-z_][A-Za-z0-9_]*(\[\])?`, false, true)
var sigLparen = packrat.NewAtomParser[[]string](nil, "(", false, true)
var sigComma = packrat.NewAtomParser[[]string](nil, ",", false, true)
var sigRparen = packrat.NewAtomParser[[]string](nil, ")", false, true)

func sigGrammar() packrat.Parser[[]string] {
	return packrat.NewAndParser(collectNames,
		sigType,
		sigLparen,
		packrat.NewKleeneParser(collectNames, sigType, sigComma),
		sigRparen,
	)
}

// ParseSignature parses a textual signature into descriptors. Only alias
// types can be spelled textually; named types exist for embedding callers
// that hold a native handle.
func ParseSignature(s string) (ret TypeDescriptor, params []TypeDescriptor, err error) {
	scanner := packrat.NewScanner[[]string](s, packrat.SkipWhitespaceAndCommentsRegex)
	node, perr := packrat.Parse(sigGrammar(), scanner)
	if perr != nil {
		return TypeDescriptor{}, nil, fmt.Errorf("invalid signature %q: %w", s, perr)
	}
	names := node.Payload
	if len(names) == 0 {
		return TypeDescriptor{}, nil, fmt.Errorf("invalid signature %q", s)
	}
	ret, err = Alias(names[0])
	if err != nil {
		return TypeDescriptor{}, nil, err
	}
	for _, name := range names[1:] {
		p, aerr := Alias(name)
		if aerr != nil {
			return TypeDescriptor{}, nil, aerr
		}
		params = append(params, p)
	}
	return ret, params, nil
}
