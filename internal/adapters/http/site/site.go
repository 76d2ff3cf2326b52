// Package site serves the embedded results console.
package site

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Register attaches the console routes to r.
//
//	GET /            -> console page
//	GET /console.js  -> console script
func Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Get("/", serve("index.html"))
	r.Get("/console.js", serve("console.js"))
}

func serve(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, FS(), name)
	}
}
