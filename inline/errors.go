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

// ArityError: the declared parameter count or the argument count does not
// match the number of placeholders in the fragment. Raised before any
// external compile happens.
type ArityError struct {
	Placeholders int
	Params       int
	Args         int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("fragment declares %d placeholders but got %d parameter types and %d arguments", e.Placeholders, e.Params, e.Args)
}

// CompileError: the external compiler rejected the unit. It carries the full
// diagnostic list and the synthesized source so a malformed fragment can be
// debugged without re-running anything.
type CompileError struct {
	Unit        string
	Diagnostics []Diagnostic
	Source      string
	Err         error
}

func (e *CompileError) Error() string {
	if len(e.Diagnostics) > 0 {
		d := e.Diagnostics[0]
		return fmt.Sprintf("compile %s: %d:%d: %s: %s\nsource:\n%s", e.Unit, d.Line, d.Column, d.Severity, d.Message, e.Source)
	}
	return fmt.Sprintf("compile %s: %v\nsource:\n%s", e.Unit, e.Err, e.Source)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// LoadError: the entry point could not be resolved after a successful
// compile. Synthesis guarantees a matching export, so this is an internal
// consistency failure, not bad user input.
type LoadError struct {
	Unit string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Unit, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// InvocationError: the foreign code itself failed at runtime (trap, out of
// bounds access, ...). The original failure stays attached.
type InvocationError struct {
	Unit string
	Err  error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("invoke %s: %v", e.Unit, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}
