package api

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skadi-tools/paramkit/pkg/hash40"
	"github.com/skadi-tools/paramkit/pkg/paramxml"
	"github.com/skadi-tools/paramkit/pkg/prc"
)

// Server holds the API server state
type Server struct {
	table   hash40.Table
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server
func NewServer(table hash40.Table, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		table:   table,
		config:  config,
		metrics: metrics,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleDisasm converts an uploaded binary param file to its XML form.
func (s *Server) handleDisasm(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	body, err := s.readBody(w, r)
	if err != nil {
		s.metrics.RecordConversion("disasm", false, time.Since(start))
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	tree, err := prc.Decode(body)
	if err != nil {
		s.metrics.RecordConversion("disasm", false, time.Since(start))
		slog.Warn("disasm rejected", "error", err, "request_id", requestID(r))
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := paramxml.Encode(tree, s.table)
	if err != nil {
		s.metrics.RecordConversion("disasm", false, time.Since(start))
		sendError(w, "Failed to render document", http.StatusInternalServerError)
		return
	}

	s.metrics.RecordConversion("disasm", true, time.Since(start))
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// handleAsm converts an uploaded XML document back to binary param bytes.
func (s *Server) handleAsm(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	body, err := s.readBody(w, r)
	if err != nil {
		s.metrics.RecordConversion("asm", false, time.Since(start))
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	tree, err := paramxml.Decode(body)
	if err != nil {
		s.metrics.RecordConversion("asm", false, time.Since(start))
		slog.Warn("asm rejected", "error", err, "request_id", requestID(r))
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := prc.Encode(tree)
	if err != nil {
		s.metrics.RecordConversion("asm", false, time.Since(start))
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.metrics.RecordConversion("asm", true, time.Since(start))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleLabel resolves a single hash against the dictionary. The path
// segment accepts any label form: a hex hash, a fallback label, or a
// plain name (which is hashed first).
func (s *Server) handleLabel(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "hash")
	h, err := hash40.ParseLabel(raw)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	name, known := "", false
	if s.table != nil {
		name, known = s.table.Lookup(h)
	}
	if !known {
		name = hash40.Label(h, nil)
	}
	s.metrics.RecordLabelLookup(known)
	sendSuccess(w, LabelResponse{
		Hash:  h.String(),
		Label: name,
		Known: known,
	})
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	limit := s.config.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	return io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
}
