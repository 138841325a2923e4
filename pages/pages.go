// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pages

import (
	"net/http"

	"github.com/danielhkuo/quickpoll/middleware"
)

// Text returns a handler that answers with a fixed plain-text body.
func Text(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(body))
	}
}

// Chain runs each handler in turn against the same response, so several
// handlers can contribute to one body.
func Chain(handlers ...http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, h := range handlers {
			h(w, r)
		}
	}
}

// Register adds the site pages to mux.
func Register(mux *http.ServeMux) {
	// Marketing site
	mux.HandleFunc("GET /{$}", middleware.WithLogging(Text("Welcome to Million Hairs")))
	mux.HandleFunc("GET /staff", middleware.WithLogging(Text("Meet our great team")))
	mux.HandleFunc("GET /contact", middleware.WithLogging(Text("Get in touch with us")))

	// Route demos
	mux.HandleFunc("GET /hello", middleware.WithLogging(Chain(Text("Hello"), Text(", world"))))
	mux.HandleFunc("GET /test", middleware.WithLogging(Text("You used GET!")))
	mux.HandleFunc("POST /test", middleware.WithLogging(Text("You used POST!")))
}
