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

import "fmt"
import "errors"
import "context"
import "reflect"
import "net/http"
import "sync/atomic"
import "encoding/json"
import "github.com/google/uuid"
import "github.com/gorilla/websocket"
import "github.com/launix-de/inlinec/inline"

/* websocket playground: one JSON frame per fragment run

   -> {"sig": "int (int, int)", "imports": ["math.h"], "fragment": "return $ + $;", "args": [2, 3]}
   <- {"result": 5}
   <- {"error": "...", "diagnostics": [...], "source": "..."}
*/

type playgroundRequest struct {
	Sig      string   `json:"sig"`
	Imports  []string `json:"imports"`
	Fragment string   `json:"fragment"`
	Args     []any    `json:"args"`
}

type playgroundResponse struct {
	Result      any                 `json:"result,omitempty"`
	Error       string              `json:"error,omitempty"`
	Diagnostics []inline.Diagnostic `json:"diagnostics,omitempty"`
	Source      string              `json:"source,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func servePlayground(port string, imports []string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(res http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(res, req, nil)
		if err != nil {
			return
		}
		session := uuid.New().String()
		fmt.Println("playground session", session, "from", req.RemoteAddr)
		defer conn.Close()
		for {
			var preq playgroundRequest
			if err := conn.ReadJSON(&preq); err != nil {
				return
			}
			atomic.AddInt64(&inline.TotalRequests, 1)
			if err := conn.WriteJSON(handlePlayground(req.Context(), imports, preq)); err != nil {
				return
			}
		}
	})
	mux.HandleFunc("/stats", func(res http.ResponseWriter, req *http.Request) {
		res.Header().Set("Content-Type", "text/plain")
		fmt.Fprintln(res, inline.StatsLine())
		fmt.Fprintln(res, "cache entries:", engine.CacheLen())
	})
	server := &http.Server{
		Addr:           fmt.Sprintf(":%v", port),
		Handler:        mux,
		MaxHeaderBytes: 1 << 20,
	}
	go server.ListenAndServe()
	fmt.Println("playground listening on :" + port)
}

func handlePlayground(ctx context.Context, baseImports []string, preq playgroundRequest) (pres playgroundResponse) {
	defer func() {
		if r := recover(); r != nil {
			pres = playgroundResponse{Error: fmt.Sprint(r)}
		}
	}()
	ret, params, err := inline.ParseSignature(preq.Sig)
	if err != nil {
		return playgroundResponse{Error: err.Error()}
	}
	args := make([]any, len(preq.Args))
	for i, a := range preq.Args {
		if i < len(params) {
			v, err := convertJSONArg(params[i], a)
			if err != nil {
				return playgroundResponse{Error: err.Error()}
			}
			args[i] = v
		}
	}
	imports := append(append([]string{}, baseImports...), preq.Imports...)
	result, err := engine.Run(ctx, imports, ret, params, preq.Fragment, args...)
	if err != nil {
		var cerr *inline.CompileError
		if errors.As(err, &cerr) {
			return playgroundResponse{Error: err.Error(), Diagnostics: cerr.Diagnostics, Source: cerr.Source}
		}
		return playgroundResponse{Error: err.Error()}
	}
	return playgroundResponse{Result: result}
}

// convertJSONArg maps decoded JSON values (float64, bool, []any) onto the
// declared parameter descriptor.
func convertJSONArg(t inline.TypeDescriptor, a any) (any, error) {
	h := t.Handle()
	switch h.Kind() {
	case reflect.Int64:
		if f, ok := a.(float64); ok {
			return int64(f), nil
		}
	case reflect.Float64:
		if f, ok := a.(float64); ok {
			return f, nil
		}
	case reflect.Bool:
		if b, ok := a.(bool); ok {
			return b, nil
		}
	case reflect.Uint8:
		if f, ok := a.(float64); ok {
			return byte(f), nil
		}
	case reflect.Slice:
		list, ok := a.([]any)
		if !ok {
			break
		}
		switch h.Elem().Kind() {
		case reflect.Int64:
			out := make([]int64, len(list))
			for i, e := range list {
				f, ok := e.(float64)
				if !ok {
					return nil, fmt.Errorf("array element %d is not a number", i)
				}
				out[i] = int64(f)
			}
			return out, nil
		case reflect.Float64:
			out := make([]float64, len(list))
			for i, e := range list {
				f, ok := e.(float64)
				if !ok {
					return nil, fmt.Errorf("array element %d is not a number", i)
				}
				out[i] = f
			}
			return out, nil
		case reflect.Uint8:
			out := make([]byte, len(list))
			for i, e := range list {
				f, ok := e.(float64)
				if !ok {
					return nil, fmt.Errorf("array element %d is not a number", i)
				}
				out[i] = byte(f)
			}
			return out, nil
		}
	}
	if j, err := json.Marshal(a); err == nil {
		return nil, fmt.Errorf("cannot pass %s as %s", string(j), t.Text())
	}
	return nil, fmt.Errorf("cannot pass argument as %s", t.Text())
}
