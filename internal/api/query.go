package api

import (
	"net/http"
	"net/url"

	"github.com/MikeSquared-Agency/resortinfo/internal/query"
	"github.com/go-chi/chi/v5"
)

// toolCall is the body shape tool-calling agents post: arguments under "args".
type toolCall struct {
	Args *query.Request `json:"args"`
}

func (s *Server) decodeToolCall(w http.ResponseWriter, r *http.Request) (query.Request, bool) {
	var body toolCall
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return query.Request{}, false
	}
	if body.Args == nil {
		writeError(w, http.StatusBadRequest, "Missing required fields: args.primary_name and args.source are required")
		return query.Request{}, false
	}
	return *body.Args, true
}

// filterInformation handles POST /api/filter-information
func (s *Server) filterInformation(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeToolCall(w, r)
	if !ok {
		return
	}

	res, err := s.queries.FilterInformation(req)
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// getChunk handles POST /api/get-chunk
func (s *Server) getChunk(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeToolCall(w, r)
	if !ok {
		return
	}

	res, err := s.queries.GetChunk(req)
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// listSources handles GET /api/sources/{primary_name}
func (s *Server) listSources(w http.ResponseWriter, r *http.Request) {
	resort, ok := pathParam(w, r, "primary_name")
	if !ok {
		return
	}

	sources, err := s.queries.ListSources(resort)
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"primary_name":      resort,
		"available_sources": sources,
	})
}

// getSchema handles GET /api/schema/{primary_name}/{source}
func (s *Server) getSchema(w http.ResponseWriter, r *http.Request) {
	resort, ok := pathParam(w, r, "primary_name")
	if !ok {
		return
	}
	source, ok := pathParam(w, r, "source")
	if !ok {
		return
	}

	cols, err := s.queries.GetSchema(resort, source)
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"primary_name": resort,
		"source":       source,
		"columns":      cols,
	})
}

// pathParam returns the decoded URL parameter. chi matches on r.URL.RawPath
// when it is set, so only then is the parameter still escaped.
func pathParam(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v, true
	}
	v, err := url.PathUnescape(v)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+key)
		return "", false
	}
	return v, true
}
