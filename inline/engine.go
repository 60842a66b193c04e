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
	"fmt"
	"sync/atomic"
	"time"
)

// Engine is the compile/load/cache pipeline. All pipeline work runs
// synchronously on the calling goroutine; the external compile dominates the
// latency of a miss, a hit costs one cache lookup plus the call itself.
type Engine struct {
	cc    Compiler
	ld    Loader
	cache *Cache
}

func NewEngine(cc Compiler, ld Loader) *Engine {
	return NewEngineWithCapacity(cc, ld, Settings.CacheCapacity)
}

func NewEngineWithCapacity(cc Compiler, ld Loader, capacity int) *Engine {
	return &Engine{cc: cc, ld: ld, cache: NewCache(capacity)}
}

// CacheLen reports the number of live cache entries.
func (e *Engine) CacheLen() int {
	return e.cache.Len()
}

// Run embeds one fragment: arity check, cache lookup by signature, on a miss
// synthesize+compile+load exactly once even under concurrent first use, then
// invoke the entry point with the given arguments.
func (e *Engine) Run(ctx context.Context, imports []string, ret TypeDescriptor, params []TypeDescriptor, fragment string, args ...any) (any, error) {
	handle, err := e.Prepare(ctx, imports, ret, params, fragment, len(args))
	if err != nil {
		return nil, err
	}
	return handle.Invoke(ctx, args...)
}

// Prepare resolves the entry point for a signature without invoking it, so a
// caller can hoist the lookup out of a hot loop. argc must match the
// placeholder count (pass -1 to skip the argument check).
func (e *Engine) Prepare(ctx context.Context, imports []string, ret TypeDescriptor, params []TypeDescriptor, fragment string, argc int) (EntryPoint, error) {
	n := PlaceholderCount(fragment)
	if n != len(params) || (argc >= 0 && argc != n) {
		return nil, &ArityError{Placeholders: n, Params: len(params), Args: argc}
	}
	sig := NewSignature(ret, params, fragment)
	handle, hit, err := e.cache.GetOrCompile(sig, func() (EntryPoint, error) {
		return e.compileAndLoad(ctx, imports, sig)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		atomic.AddInt64(&CacheHits, 1)
	} else {
		atomic.AddInt64(&CacheMisses, 1)
	}
	return handle, nil
}

// compileAndLoad is the miss path: unit synthesis, external compile, in
// memory load. It runs inside the per-signature critical section of the
// cache, so one signature compiles at most once per process.
func (e *Engine) compileAndLoad(ctx context.Context, imports []string, sig Signature) (EntryPoint, error) {
	unit := Synthesize(imports, sig.Return, sig.Params, sig.Fragment)

	var art Artifact
	var diags []Diagnostic
	var err error
	begin := time.Now()
	traced("compile "+unit.Name, "cc", func() {
		art, diags, err = compileUnit(ctx, e.cc, unit)
	})
	atomic.AddInt64(&CompileNanos, time.Since(begin).Nanoseconds())
	if err != nil {
		atomic.AddInt64(&FailedCompiles, 1)
		return nil, err
	}
	// a successful compile can still carry warnings; don't swallow them
	for _, d := range diags {
		atomic.AddInt64(&CompileWarnings, 1)
		fmt.Printf("%s:%d:%d: %s: %s\n", unit.Name, d.Line, d.Column, d.Severity, d.Message)
	}

	var handle EntryPoint
	traced("load "+unit.Name, "ld", func() {
		handle, err = e.ld.Load(ctx, unit.Name, art, sig)
	})
	if err != nil {
		if _, ok := err.(*LoadError); !ok {
			err = &LoadError{Unit: unit.Name, Err: err}
		}
		return nil, err
	}

	atomic.AddInt64(&CompiledUnits, 1)
	total := atomic.AddInt64(&ArtifactBytes, int64(len(art)))
	if Settings.MaxArtifactRAM > 0 && total > Settings.MaxArtifactRAM {
		// loading contexts are never reclaimed, so this can only be reported
		fmt.Println("warning: resident compiled units exceed MaxArtifactRAM")
	}
	return handle, nil
}
