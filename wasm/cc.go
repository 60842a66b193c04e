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
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/launix-de/inlinec/inline"
)

// CC drives an external clang targeting wasm32. Source goes in on stdin,
// the artifact comes back on stdout; no temp files on either side.
type CC struct {
	Path  string   // compiler binary, default clang
	Flags []string // appended to the fixed flag set
}

func NewCC() *CC {
	return &CC{Path: "clang"}
}

var diagPattern = regexp.MustCompile(`^(?:<stdin>|-):(\d+):(\d+): (fatal error|error|warning|note): (.*)$`)

func (c *CC) Compile(ctx context.Context, unit inline.CompilationUnit) (inline.Artifact, []inline.Diagnostic, error) {
	args := []string{
		"--target=wasm32", "-O2", "-nostdlib",
		"-Wl,--no-entry", "-Wl,--export-dynamic", "-Wl,--export=__heap_base",
		"-x", "c", "-", "-o", "/dev/stdout",
	}
	args = append(args, c.Flags...)
	cmd := exec.CommandContext(ctx, c.Path, args...)
	cmd.Stdin = strings.NewReader(unit.Source)
	var out, errout bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errout
	runErr := cmd.Run()

	diags := ParseDiagnostics(errout.String())
	if runErr != nil {
		if len(diags) == 0 {
			// toolchain failed without a parseable message (missing binary etc.)
			msg := strings.TrimSpace(errout.String())
			if msg == "" {
				msg = runErr.Error()
			}
			diags = append(diags, inline.Diagnostic{Severity: "error", Message: msg})
		}
		return nil, diags, fmt.Errorf("%s: %w", c.Path, runErr)
	}
	return inline.Artifact(out.Bytes()), diags, nil
}

// ParseDiagnostics splits clang stderr into structured diagnostics. Lines
// that are not "<stdin>:line:col: severity: message" (source excerpts, caret
// markers, the trailing "N errors generated.") are dropped.
func ParseDiagnostics(stderr string) []inline.Diagnostic {
	var diags []inline.Diagnostic
	for _, line := range strings.Split(stderr, "\n") {
		m := diagPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		l, _ := strconv.Atoi(m[1])
		col, _ := strconv.Atoi(m[2])
		severity := m[3]
		if severity == "fatal error" {
			severity = "error"
		}
		diags = append(diags, inline.Diagnostic{
			Severity: severity,
			Message:  m[4],
			Line:     l,
			Column:   col,
		})
	}
	return diags
}
