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
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeCompiler counts invocations; it stands in for the external toolchain.
type fakeCompiler struct {
	calls int32
	fail  bool
}

func (c *fakeCompiler) Compile(ctx context.Context, unit CompilationUnit) (Artifact, []Diagnostic, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.fail {
		return nil, []Diagnostic{{Severity: "error", Message: "expected ';' after return statement", Line: 6, Column: 12}}, errors.New("exit status 1")
	}
	return Artifact("artifact:" + unit.Name), nil, nil
}

// warningCompiler succeeds but emits a warning diagnostic.
type warningCompiler struct{}

func (warningCompiler) Compile(ctx context.Context, unit CompilationUnit) (Artifact, []Diagnostic, error) {
	return Artifact("artifact:" + unit.Name), []Diagnostic{{Severity: "warning", Message: "unused variable 'x'", Line: 5, Column: 10}}, nil
}

type fakeLoader struct{}

func (fakeLoader) Load(ctx context.Context, unit string, art Artifact, sig Signature) (EntryPoint, error) {
	return &fakeEntry{unit: unit}, nil
}

type fakeEntry struct{ unit string }

func (e *fakeEntry) Invoke(ctx context.Context, args ...any) (any, error) { return e.unit, nil }

func testEngine(cc Compiler) *Engine {
	return NewEngineWithCapacity(cc, fakeLoader{}, 16)
}

func TestArityCheckedBeforeCompile(t *testing.T) {
	cc := &fakeCompiler{}
	e := testEngine(cc)
	intT := MustAlias("int")

	_, err := e.Run(context.Background(), nil, intT, []TypeDescriptor{intT}, "return $ + $;", int64(2))
	var ae *ArityError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ArityError, got %v", err)
	}
	if ae.Placeholders != 2 || ae.Params != 1 {
		t.Fatalf("ArityError counts wrong: %+v", ae)
	}
	if atomic.LoadInt32(&cc.calls) != 0 {
		t.Fatalf("arity failure must not reach the compiler")
	}
}

func TestArgumentCountChecked(t *testing.T) {
	cc := &fakeCompiler{}
	e := testEngine(cc)
	intT := MustAlias("int")

	_, err := e.Run(context.Background(), nil, intT, []TypeDescriptor{intT, intT}, "return $ + $;", int64(2))
	var ae *ArityError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ArityError for missing argument, got %v", err)
	}
	if atomic.LoadInt32(&cc.calls) != 0 {
		t.Fatalf("argument mismatch must not reach the compiler")
	}
}

func TestRepeatedSignatureCompilesOnce(t *testing.T) {
	cc := &fakeCompiler{}
	e := testEngine(cc)
	intT := MustAlias("int")
	params := []TypeDescriptor{intT, intT}

	for i := 0; i < 5; i++ {
		if _, err := e.Run(context.Background(), nil, intT, params, "return $ + $;", int64(2), int64(3)); err != nil {
			t.Fatal(err)
		}
	}
	if n := atomic.LoadInt32(&cc.calls); n != 1 {
		t.Fatalf("expected exactly one compile, got %d", n)
	}
}

func TestWhitespaceDistinguishesFragments(t *testing.T) {
	cc := &fakeCompiler{}
	e := testEngine(cc)
	intT := MustAlias("int")
	params := []TypeDescriptor{intT, intT}

	e.Run(context.Background(), nil, intT, params, "return $ + $;", int64(2), int64(3))
	e.Run(context.Background(), nil, intT, params, "return $  + $;", int64(2), int64(3))
	if n := atomic.LoadInt32(&cc.calls); n != 2 {
		t.Fatalf("fragments are compared byte for byte, expected 2 compiles, got %d", n)
	}
}

func TestTypesDistinguishSignatures(t *testing.T) {
	cc := &fakeCompiler{}
	e := testEngine(cc)
	intT := MustAlias("int")
	floatT := MustAlias("float")

	e.Run(context.Background(), nil, intT, []TypeDescriptor{intT}, "return $;", int64(1))
	e.Run(context.Background(), nil, floatT, []TypeDescriptor{floatT}, "return $;", float64(1))
	if n := atomic.LoadInt32(&cc.calls); n != 2 {
		t.Fatalf("same fragment with different types must compile separately, got %d compiles", n)
	}
}

func TestCompileErrorCarriesDiagnosticsAndSource(t *testing.T) {
	cc := &fakeCompiler{fail: true}
	e := testEngine(cc)
	intT := MustAlias("int")

	_, err := e.Run(context.Background(), nil, intT, nil, "return 42")
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CompileError, got %v", err)
	}
	if len(ce.Diagnostics) == 0 {
		t.Fatalf("CompileError must carry at least one diagnostic")
	}
	if !strings.Contains(ce.Source, "return 42") || !strings.Contains(ce.Source, "/* unit ") {
		t.Fatalf("CompileError must carry the full synthesized source:\n%s", ce.Source)
	}
}

func TestFailedCompileIsRetried(t *testing.T) {
	cc := &fakeCompiler{fail: true}
	e := testEngine(cc)
	intT := MustAlias("int")

	e.Run(context.Background(), nil, intT, nil, "return 42")
	cc.fail = false
	if _, err := e.Run(context.Background(), nil, intT, nil, "return 42"); err != nil {
		t.Fatalf("corrected toolchain, but pipeline still failed: %v", err)
	}
	if n := atomic.LoadInt32(&cc.calls); n != 2 {
		t.Fatalf("failures must not be cached, expected 2 compiles, got %d", n)
	}
}

func TestConcurrentFirstUseCompilesOnce(t *testing.T) {
	cc := &fakeCompiler{}
	e := testEngine(cc)
	intT := MustAlias("int")
	params := []TypeDescriptor{intT, intT}

	var wg sync.WaitGroup
	results := make([]any, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := e.Run(context.Background(), nil, intT, params, "return $ + $;", int64(2), int64(3))
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = r
		}(i)
	}
	wg.Wait()
	if n := atomic.LoadInt32(&cc.calls); n != 1 {
		t.Fatalf("concurrent first use must compile exactly once, got %d", n)
	}
	for i := 1; i < 16; i++ {
		if results[i] != results[0] {
			t.Fatalf("all callers must observe the same loaded unit")
		}
	}
}

func TestWarningsOnSuccessAreCounted(t *testing.T) {
	e := testEngine(warningCompiler{})
	intT := MustAlias("int")

	before := atomic.LoadInt64(&CompileWarnings)
	if _, err := e.Run(context.Background(), nil, intT, nil, "return 42;"); err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt64(&CompileWarnings) != before+1 {
		t.Fatalf("warning from a successful compile was swallowed")
	}
	// the cached entry must not recount on a hit
	if _, err := e.Run(context.Background(), nil, intT, nil, "return 42;"); err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt64(&CompileWarnings) != before+1 {
		t.Fatalf("cache hit recounted warnings")
	}
}

func TestPrepareSkipsArgumentCheck(t *testing.T) {
	cc := &fakeCompiler{}
	e := testEngine(cc)
	intT := MustAlias("int")

	handle, err := e.Prepare(context.Background(), nil, intT, []TypeDescriptor{intT}, "return $;", -1)
	if err != nil {
		t.Fatal(err)
	}
	if handle == nil {
		t.Fatal("Prepare returned no handle")
	}
	if e.CacheLen() != 1 {
		t.Fatalf("cache should hold the prepared unit")
	}
}
