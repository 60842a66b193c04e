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

import "testing"

func TestParseDiagnostics(t *testing.T) {
	stderr := `<stdin>:6:12: error: expected ';' after return statement
        return 42
                 ^
                 ;
<stdin>:2:1: warning: unused variable 'x' [-Wunused-variable]
int x;
^
1 error and 1 warning generated.
`
	diags := ParseDiagnostics(stderr)
	if len(diags) != 2 {
		t.Fatalf("got %d diagnostics: %v", len(diags), diags)
	}
	if diags[0].Severity != "error" || diags[0].Line != 6 || diags[0].Column != 12 {
		t.Fatalf("first diagnostic: %+v", diags[0])
	}
	if diags[0].Message != "expected ';' after return statement" {
		t.Fatalf("first message: %q", diags[0].Message)
	}
	if diags[1].Severity != "warning" || diags[1].Line != 2 {
		t.Fatalf("second diagnostic: %+v", diags[1])
	}
}

func TestParseDiagnosticsFatal(t *testing.T) {
	diags := ParseDiagnostics("<stdin>:1:10: fatal error: 'nosuch.h' file not found\n")
	if len(diags) != 1 || diags[0].Severity != "error" {
		t.Fatalf("fatal errors must normalize to error: %v", diags)
	}
}

func TestParseDiagnosticsDropsNoise(t *testing.T) {
	if diags := ParseDiagnostics("clang: error: linker command failed\n2 errors generated.\n"); len(diags) != 0 {
		t.Fatalf("driver noise must not parse as unit diagnostics: %v", diags)
	}
}
