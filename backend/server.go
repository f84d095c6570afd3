// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package backend serves a stand-in for the debate web application: the
// homepage with the template selector and realtime room setup, the room page,
// and the room API and channel behind them. It exists so the verification
// procedure can be exercised without the real application.
package backend

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

//go:embed static
var staticFiles embed.FS

var pages = template.Must(template.ParseFS(staticFiles, "static/*.html"))

// Options configures the stand-in server.
type Options struct {
	// Addr is the TCP address to listen to when Listener is nil.
	Addr     string
	Listener net.Listener
	Debug    bool
	// RoomIdleTTL is how long a room nobody joined is kept.
	RoomIdleTTL time.Duration
	Rooms       *Rooms
}

// Server represents the running server instance.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	rooms      *Rooms
}

// Addr returns the address the server listens on.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Rooms returns the room registry of the server.
func (s *Server) Rooms() *Rooms {
	return s.rooms
}

// Shutdown stops accepting requests, disconnects room channels and waits for
// in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rooms.Stop()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	return nil
}

// StartServer listens and serves in the background.
func StartServer(opts Options) (*Server, error) {
	if opts.Rooms == nil {
		opts.Rooms = NewRooms(opts.RoomIdleTTL)
	}
	l := opts.Listener
	if l == nil {
		var err error
		if l, err = net.Listen("tcp", opts.Addr); err != nil {
			return nil, err
		}
	}
	opts.Rooms.StartGC()

	httpServer := &http.Server{
		Handler:           NewServerHandler(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("Starting HTTP server on %s...", l.Addr())
		if err := httpServer.Serve(l); err != nil && !errors.Is(err, net.ErrClosed) && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()
	return &Server{httpServer: httpServer, listener: l, rooms: opts.Rooms}, nil
}

// NewServerHandler creates and configures the HTTP handler for the server.
func NewServerHandler(opts Options) http.Handler {
	rooms := opts.Rooms
	if rooms == nil {
		rooms = NewRooms(opts.RoomIdleTTL)
	}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, "index.html", map[string]any{
			"Templates": Templates,
		})
	})

	mux.HandleFunc("GET /debate/{roomId}", func(w http.ResponseWriter, r *http.Request) {
		roomID := r.PathValue("roomId")
		if !ValidRoomPath(roomID) {
			http.NotFound(w, r)
			return
		}
		renderPage(w, "debate.html", map[string]any{
			"RoomID": roomID,
			"Local":  IsLocalRoom(roomID),
		})
	})

	mux.HandleFunc("GET /api/templates", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Templates)
	})

	mux.HandleFunc("GET /api/templates/{id}", func(w http.ResponseWriter, r *http.Request) {
		tmpl, ok := FindTemplate(r.PathValue("id"))
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Template not found"})
			return
		}
		writeJSON(w, http.StatusOK, tmpl)
	})

	mux.HandleFunc("/api/check-room", func(w http.ResponseWriter, r *http.Request) {
		handleCheckRoom(rooms, w, r)
	})

	mux.HandleFunc("GET /api/rooms", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms.List()})
	})

	mux.HandleFunc("GET /api/ws", func(w http.ResponseWriter, r *http.Request) {
		ServeWS(rooms, w, r)
	})

	static, _ := fs.Sub(staticFiles, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", contentTypeMiddleware(http.FileServerFS(static))))

	var handler http.Handler = mux
	handler = securityMiddleware(handler)
	handler = cacheControlMiddleware(handler)
	if opts.Debug {
		handler = loggingMiddleware(handler)
	}
	return handler
}

// handleCheckRoom implements GET (exists?), POST (create) and DELETE on
// /api/check-room.
func handleCheckRoom(rooms *Rooms, w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		roomID := r.URL.Query().Get("room")
		if roomID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Room parameter is required"})
			return
		}
		if IsLocalRoom(roomID) {
			writeJSON(w, http.StatusOK, map[string]any{"exists": false})
			return
		}
		exists, state := rooms.Exists(roomID)
		resp := map[string]any{"exists": exists}
		if state != nil {
			resp["state"] = state
		}
		writeJSON(w, http.StatusOK, resp)

	case http.MethodPost:
		var req struct {
			RoomID      string          `json:"roomId"`
			DebateState json.RawMessage `json:"debateState"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageSize)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid request body"})
			return
		}
		if req.RoomID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Room ID is required"})
			return
		}
		switch err := rooms.Create(req.RoomID, req.DebateState); {
		case err == nil:
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		case errors.Is(err, ErrRoomExists):
			writeJSON(w, http.StatusConflict, map[string]any{"message": "Room already exists"})
		default:
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
		}

	case http.MethodDelete:
		if roomID := r.URL.Query().Get("room"); roomID != "" && !IsLocalRoom(roomID) {
			rooms.Delete(roomID)
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})

	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func renderPage(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON: %v", err)
	}
}

// cacheControlMiddleware keeps API responses out of caches.
func cacheControlMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Cache-Control", "private, no-cache, no-transform")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}
		next.ServeHTTP(w, r)
	})
}

// securityMiddleware adds HTTP security headers to responses.
func securityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// contentTypeMiddleware ensures that files are served with the correct MIME type.
func contentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch filepath.Ext(r.URL.Path) {
		case ".js":
			w.Header().Set("Content-Type", "application/javascript")
		case ".css":
			w.Header().Set("Content-Type", "text/css; charset=utf-8")
		}
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs the method and URL path of every incoming HTTP request.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("Received request: %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
