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

import "context"

// Diagnostic is one compiler message. Diagnostics accompany successful and
// failed compiles alike; only a failed compile aborts the pipeline.
type Diagnostic struct {
	Severity string // error | warning | note
	Message  string
	Line     int
	Column   int
}

// Artifact is the in-memory binary a successful compile produces. Ownership
// passes to the loader; nothing is ever written to disk.
type Artifact []byte

// Compiler is the external toolchain capability: full unit source in,
// artifact or diagnostics out. Implementations must use an in-memory sink
// for the binary, never a filesystem path.
type Compiler interface {
	Compile(ctx context.Context, unit CompilationUnit) (Artifact, []Diagnostic, error)
}

// Loader is the in-process loading capability. It materializes the artifact
// from memory into a loading context created for this one unit and resolves
// the entry point by name and declared parameter handles. Loading contexts
// are never shared between units and never reclaimed.
type Loader interface {
	Load(ctx context.Context, unit string, art Artifact, sig Signature) (EntryPoint, error)
}

// EntryPoint is the resolved, invokable entry of a loaded unit. It stays
// valid for the process lifetime even after cache eviction.
type EntryPoint interface {
	Invoke(ctx context.Context, args ...any) (any, error)
}

// compileUnit invokes the compiler capability and converts failure into a
// CompileError carrying diagnostics and the synthesized source. A failed
// unit is never recompiled; the caller has to supply a corrected fragment,
// which yields a new signature.
func compileUnit(ctx context.Context, cc Compiler, unit CompilationUnit) (Artifact, []Diagnostic, error) {
	art, diags, err := cc.Compile(ctx, unit)
	if err != nil {
		return nil, diags, &CompileError{Unit: unit.Name, Diagnostics: diags, Source: unit.Source, Err: err}
	}
	return art, diags, nil
}
