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
/*
	inlinec - inline C fragments in your process

	fragments are synthesized into single-function wasm32 units, compiled
	by an external clang, loaded from memory and memoized per signature
*/
package main

import "os"
import "fmt"
import "flag"
import "time"
import "sync"
import "errors"
import "strings"
import "context"
import "syscall"
import "os/signal"
import "crypto/rand"
import "runtime/pprof"
import "github.com/jtolds/gls"
import "github.com/google/uuid"
import "github.com/fsnotify/fsnotify"
import "github.com/launix-de/inlinec/inline"
import "github.com/launix-de/inlinec/wasm"

// workaround for flags package to allow multiple values
type arrayFlags []string

func (i *arrayFlags) String() string {
	return "dummy"
}

func (i *arrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

var engine *inline.Engine

// runScript executes one "sig | fragment | args" script: the first segment
// is the textual signature, the second the C fragment with $ placeholders,
// the optional third the space separated arguments.
func runScript(ctx context.Context, imports []string, script string) (any, error) {
	parts := strings.SplitN(script, "|", 3)
	if len(parts) < 2 {
		return nil, errors.New("expected \"signature | fragment\" or \"signature | fragment | args\"")
	}
	ret, params, err := inline.ParseSignature(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, err
	}
	fragment := strings.TrimSpace(parts[1])
	var args []any
	if len(parts) > 2 {
		args, err = parseArgs(params, splitArgFields(parts[2]))
		if err != nil {
			return nil, err
		}
	}
	return engine.Run(ctx, imports, ret, params, fragment, args...)
}

// runFile executes a fragment file: line 1 signature, line 2 arguments
// (may be empty), rest fragment.
func runFile(ctx context.Context, imports []string, filename string) (any, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	lines := strings.SplitN(string(bytes), "\n", 3)
	if len(lines) < 3 {
		return nil, fmt.Errorf("%s: expected signature line, argument line and fragment", filename)
	}
	return runScript(ctx, imports, lines[0]+" | "+strings.TrimRight(lines[2], "\n")+" | "+lines[1])
}

// runFilesParallel compiles and runs all fragment files at once; the first
// failure wins, the others are drained.
func runFilesParallel(ctx context.Context, imports []string, files []string) {
	errs := make(chan any, len(files))
	for _, f := range files {
		gls.Go(func(filename string) func() {
			return func() {
				defer func() {
					if r := recover(); r != nil {
						errs <- r
					}
				}()
				result, err := runFile(ctx, imports, filename)
				if err != nil {
					errs <- err
					return
				}
				fmt.Println(filename+":", result)
				errs <- nil
			}
		}(f))
	}
	for range files {
		if err := <-errs; err != nil {
			panic(err)
		}
	}
}

// watchFile reruns the fragment file whenever it changes on disk.
func watchFile(ctx context.Context, imports []string, filename string) {
	rerun := func() {
		defer func() {
			if err := recover(); err != nil {
				fmt.Println(err)
			}
		}()
		result, err := runFile(ctx, imports, filename)
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(filename+":", result)
	}
	rerun()
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		panic(err)
	}
	go func() {
		for {
			select {
			case <-watcher.Events:
				// flush all other events
				for {
					time.Sleep(10 * time.Millisecond) // delay a bit, so we don't read empty files
					select {
					case <-watcher.Events:
						// ignore
					default:
						goto to_rerun
					}
				}
			to_rerun:
				rerun()
				watcher.Add(filename) // text editors rename, so we have to rewatch
			}
		}
	}()
	if err = watcher.Add(filename); err != nil {
		panic(err)
	}
	select {} // watch until killed
}

func main() {
	fmt.Print(`inlinec Copyright (C) 2026   Carl-Philip Hänsch
    This program comes with ABSOLUTELY NO WARRANTY;
    This is free software, and you are welcome to redistribute it
    under certain conditions;

`)

	// init random generator for UUIDs
	uuid.SetRand(rand.Reader)

	// parse command line options
	var commands arrayFlags
	flag.Var(&commands, "c", "Execute \"signature | fragment | args\" script")

	var importFlags arrayFlags
	flag.Var(&importFlags, "I", "Header to #include into every unit")

	ccpath := "clang"
	flag.StringVar(&ccpath, "cc", "clang", "C compiler to invoke (must support --target=wasm32)")

	capacity := inline.DefaultCacheSize
	flag.IntVar(&capacity, "cap", inline.DefaultCacheSize, "Signature cache capacity")

	profile := ""
	flag.StringVar(&profile, "profile", "", "File to write a CPU profile to")

	serve := ""
	flag.StringVar(&serve, "serve", "", "Port for the HTTP/websocket playground")

	watch := false
	flag.BoolVar(&watch, "watch", false, "Watch the given fragment file and rerun on change")

	flag.BoolVar(&inline.Settings.Trace, "trace", false, "Write a Chrome trace of all compiles")
	flag.BoolVar(&inline.Settings.TracePrint, "traceprint", false, "Print compile durations to stdout")

	flag.Parse()
	files := flag.Args()

	inline.Settings.CacheCapacity = capacity
	inline.InitSettings()
	engine = inline.NewEngine(&wasm.CC{Path: ccpath}, wasm.NewLoader())

	ctx := context.Background()

	// install exit handler
	cancelChan := make(chan os.Signal, 1)
	signal.Notify(cancelChan, syscall.SIGTERM, syscall.SIGINT)
	go (func() {
		<-cancelChan
		exitroutine()
		os.Exit(1)
	})()

	// init profiling
	if profile != "" {
		f, err := os.Create(profile)
		if err != nil {
			panic(err)
		}
		defer f.Close()
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	for _, command := range commands {
		fmt.Println("Executing " + command + " ...")
		result, err := runScript(ctx, importFlags, command)
		if err != nil {
			fmt.Println(err)
		} else {
			fmt.Println(result)
		}
	}

	if serve != "" {
		servePlayground(serve, importFlags)
	}

	if watch {
		if len(files) != 1 {
			panic("-watch takes exactly one fragment file")
		}
		watchFile(ctx, importFlags, files[0])
	}

	if len(files) > 0 {
		runFilesParallel(ctx, importFlags, files)
		exitroutine()
		return
	}

	if len(commands) == 0 || serve != "" {
		fmt.Print(`
    Type \help to show help

`)
		// REPL shell
		repl(ctx, importFlags)
	}

	// normal shutdown
	exitroutine()
}

var exitOnce sync.Once

func exitroutine() {
	exitOnce.Do(func() {
		fmt.Println("Exit procedure...")
		if replInstance != nil {
			// in case it doesn't exit properly
			replInstance.Close()
		}
		inline.SetTrace(false)
		fmt.Println("Exit procedure finished")
	})
}
