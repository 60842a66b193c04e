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

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// Placeholder is the token inside a fragment that stands for one parameter.
// $ is not legal in plain C, so every occurrence belongs to us.
const Placeholder = "$"

// EntryName is the uniform wasm export name of every unit's entry point.
// The native symbol is prefixed with the unit name, so two units can never
// clash even if their symbols ever met in one namespace.
const EntryName = "m"

// CompilationUnit is the synthesized source of one fragment plus the
// globally unique name it declares. Transient; it only lives on the miss
// path between synthesis and compilation.
type CompilationUnit struct {
	Name       string
	Source     string
	ParamNames []string
}

var unitCounter uint64

// nextUnitName yields a process-wide unique unit name: a monotonic counter
// plus a collision-resistant uuid fragment.
func nextUnitName() string {
	n := atomic.AddUint64(&unitCounter, 1)
	id := uuid.New()
	return fmt.Sprintf("u%d_%x", n, id[:4])
}

// PlaceholderCount counts how many parameters a fragment declares.
func PlaceholderCount(fragment string) int {
	return strings.Count(fragment, Placeholder)
}

// Synthesize builds the full compilation unit for a fragment: include lines,
// a freshly named unit, and a single entry point whose body is the fragment
// with every placeholder replaced left to right by the generated parameter
// of the same position. len(params) must equal the placeholder count; the
// engine checks that before calling here, so a mismatch is a programming
// error, not user input.
func Synthesize(imports []string, ret TypeDescriptor, params []TypeDescriptor, fragment string) CompilationUnit {
	n := PlaceholderCount(fragment)
	if n != len(params) {
		panic(fmt.Sprintf("synthesize: fragment has %d placeholders but %d parameter types", n, len(params)))
	}
	name := nextUnitName()
	paramNames := make([]string, n)
	for i := range paramNames {
		paramNames[i] = fmt.Sprintf("p%d", i)
	}

	body := fragment
	for _, pn := range paramNames {
		body = strings.Replace(body, Placeholder, pn, 1)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "/* unit %s */\n", name)
	b.WriteString("#include <stdint.h>\n")
	for _, imp := range imports {
		fmt.Fprintf(&b, "#include <%s>\n", imp)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "__attribute__((export_name(\"%s\")))\n", EntryName)
	fmt.Fprintf(&b, "%s %s_%s(", ret.Text(), name, EntryName)
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s", p.Text(), paramNames[i])
	}
	b.WriteString(") {\n\t")
	b.WriteString(body)
	b.WriteString("\n}\n")

	return CompilationUnit{Name: name, Source: b.String(), ParamNames: paramNames}
}
