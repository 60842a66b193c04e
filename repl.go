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

package main

import (
	"context"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/chzyer/readline"
	"github.com/launix-de/inlinec/inline"
)

const newprompt = "\033[32mcc>\033[0m "
const resultprompt = "\033[31m=\033[0m "

var replInstance *readline.Instance

func replHelp() {
	fmt.Print(`Enter fragments as: signature | fragment | args
e.g.:  int (int, int) | return $ + $; | 2 3

commands:
  \imports a.h,b.h   headers to #include into every unit
  \stats             print pipeline counters
  \set name value    change a setting (Trace, TracePrint, MaxArtifactRAM, ...)
  \help              this help
`)
}

func repl(ctx context.Context, imports []string) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:            newprompt,
		HistoryFile:       ".inlinec-history.tmp",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		panic(err)
	}
	replInstance = l
	defer l.Close()
	l.CaptureExitSignal()

	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			break
		} else if err != nil {
			panic(err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "\\") {
			parts := strings.Fields(line)
			switch parts[0] {
			case "\\help":
				replHelp()
			case "\\stats":
				fmt.Println(inline.StatsLine())
				fmt.Println("cache entries:", engine.CacheLen())
			case "\\imports":
				if len(parts) > 1 {
					imports = strings.Split(parts[1], ",")
				} else {
					imports = nil
				}
				fmt.Println("imports:", imports)
			case "\\set":
				if len(parts) != 3 {
					fmt.Println("usage: \\set name value")
					continue
				}
				if err := inline.ChangeSetting(parts[1], parts[2]); err != nil {
					fmt.Println(err)
				}
			default:
				fmt.Println("unknown command; \\help for help")
			}
			continue
		}

		// anti-panic func
		func() {
			defer func() {
				if r := recover(); r != nil {
					fmt.Println("panic:", r, string(debug.Stack()))
				}
			}()
			result, err := runScript(ctx, imports, line)
			if err != nil {
				fmt.Println(err)
				return
			}
			fmt.Print(resultprompt)
			fmt.Println(result)
		}()
	}
}
