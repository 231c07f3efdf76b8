// Package server exposes fractal rendering and the blob store over HTTP.
package server

import (
	"bufio"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/cocosip/go-pngstream/blobstore"
	"github.com/cocosip/go-pngstream/fractal"
	"github.com/cocosip/go-pngstream/png/common"
	"github.com/cocosip/go-pngstream/png/stream"
)

// Options controls image sizes and encoder settings
type Options struct {
	// Width and Height of images served at / and stored by /put/{key}
	Width  int
	Height int

	// FaviconSize is the edge length of /favicon.ico
	FaviconSize int

	// Defaults are overlaid with query parameters
	Defaults fractal.Params

	// Encoder options; nil uses stream.DefaultOptions
	Encoder *stream.Options
}

// DefaultOptions returns 800x800 images and a 16x16 favicon
func DefaultOptions() Options {
	return Options{
		Width:       800,
		Height:      800,
		FaviconSize: 16,
		Defaults:    fractal.DefaultParams(),
	}
}

// Server routes requests to the render and store handlers
type Server struct {
	store  blobstore.Store
	opts   Options
	logger *log.Logger
	mux    *http.ServeMux
}

// New creates a Server. A nil logger discards log output.
func New(store blobstore.Store, opts Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Server{
		store:  store,
		opts:   opts,
		logger: logger,
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /favicon.ico", s.handleFavicon)
	s.mux.HandleFunc("GET /{$}", s.handleFractal)
	s.mux.HandleFunc("GET /get/{key}", s.handleGet)
	s.mux.HandleFunc("/put/{key}", s.handlePut)
	s.mux.HandleFunc("/", notFound)
	return s
}

// ServeHTTP logs each request with an id and dispatches it
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logRequests(s.mux).ServeHTTP(w, r)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	io.WriteString(w, "404")
}

func (s *Server) handleFavicon(w http.ResponseWriter, r *http.Request) {
	p := s.opts.Defaults
	p.Zoom = 2
	p.Supersample = 2
	s.render(w, r, s.opts.FaviconSize, s.opts.FaviconSize, p)
}

func (s *Server) handleFractal(w http.ResponseWriter, r *http.Request) {
	p, err := fractal.ParseQuery(r.URL.Query(), s.opts.Defaults)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.render(w, r, s.opts.Width, s.opts.Height, p)
}

// render streams a PNG to w while rows are still being computed
func (s *Server) render(w http.ResponseWriter, r *http.Request, width, height int, p fractal.Params) {
	enc, pr, err := stream.NewPipeEncoder(width, height, common.RGB, s.opts.Encoder)
	if err != nil {
		s.logger.Printf("[%s] create encoder: %v", requestID(r), err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer pr.Close()

	go func() {
		if err := fractal.Draw(r.Context(), enc, width, height, p); err != nil {
			s.logger.Printf("[%s] render: %v", requestID(r), err)
		}
	}()

	w.Header().Set("Content-Type", "image/png")
	if _, err := io.Copy(w, pr); err != nil {
		s.logger.Printf("[%s] stream: %v", requestID(r), err)
	}
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	rc, err := s.store.Get(r.Context(), key)
	switch {
	case errors.Is(err, blobstore.ErrNotFound):
		notFound(w, r)
		return
	case errors.Is(err, blobstore.ErrInvalidKey):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		s.logger.Printf("[%s] get %q: %v", requestID(r), key, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	// Stored values are mostly PNGs, but "last" is a plain number
	br := bufio.NewReader(rc)
	head, _ := br.Peek(512)
	w.Header().Set("Content-Type", http.DetectContentType(head))
	if _, err := io.Copy(w, br); err != nil {
		s.logger.Printf("[%s] get %q: %v", requestID(r), key, err)
	}
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if err := blobstore.ValidateKey(key); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p, err := fractal.ParseQuery(r.URL.Query(), s.opts.Defaults)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	enc, pr, err := stream.NewPipeEncoder(s.opts.Width, s.opts.Height, common.RGB, s.opts.Encoder)
	if err != nil {
		s.logger.Printf("[%s] create encoder: %v", requestID(r), err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer pr.Close()

	go fractal.Draw(r.Context(), enc, s.opts.Width, s.opts.Height, p)

	if err := s.store.Put(r.Context(), key, pr); err != nil {
		s.logger.Printf("[%s] put %q: %v", requestID(r), key, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
