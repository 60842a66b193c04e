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

import "io"
import "os"
import "fmt"
import "sync"
import "time"
import "encoding/json"

// Tracefile writes Chrome trace format (chrome://tracing) so compile and
// load phases can be inspected per unit.
type Tracefile struct {
	isFirst bool
	file    io.WriteCloser
	m       sync.Mutex
}

var Trace *Tracefile // set to not nil to trace the pipeline
var TracePrint bool  // whether to print durations to stdout

var start = time.Now()

func SetTrace(on bool) {
	if Trace != nil {
		Trace.Close()
		Trace = nil
	}
	if on {
		f, err := os.Create(os.Getenv("INLINEC_TRACEDIR") + "trace_" + fmt.Sprint(time.Now().Unix()) + ".json")
		if err != nil {
			panic(err)
		}
		Trace = NewTrace(f)
	}
}

func NewTrace(file io.WriteCloser) *Tracefile {
	file.Write([]byte("["))
	result := new(Tracefile)
	result.file = file
	result.isFirst = true
	return result
}

func (t *Tracefile) Close() {
	t.file.Write([]byte("]"))
	t.file.Close()
}

func (t *Tracefile) Duration(name string, cat string, f func()) {
	t.event(name, cat, "B")
	defer t.event(name, cat, "E")
	f()
}

func (t *Tracefile) event(name string, cat string, typ string) {
	ts := time.Since(start).Microseconds()
	t.m.Lock()
	defer t.m.Unlock()
	if t.isFirst {
		t.isFirst = false
	} else {
		t.file.Write([]byte(","))
	}
	b, _ := json.Marshal(map[string]any{
		"name": name,
		"cat":  cat,
		"ph":   typ,
		"ts":   ts,
		"pid":  0,
		"tid":  0,
	})
	t.file.Write(b)
	t.file.Write([]byte("\n"))
}

// traced wraps a pipeline phase into the active trace; without a trace it
// just runs f.
func traced(name string, cat string, f func()) {
	var begin time.Time
	if TracePrint {
		begin = time.Now()
	}
	if Trace != nil {
		Trace.Duration(name, cat, f)
	} else {
		f()
	}
	if TracePrint {
		fmt.Println("trace", time.Since(begin).String(), name)
	}
}
