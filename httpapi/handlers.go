package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/goliatone/go-artist-directory/directory"
)

func (s *Server) handleCreateArtist(w http.ResponseWriter, r *http.Request) {
	var in directory.CreateArtistInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := s.ingest.CreateArtist(r.Context(), in)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleGetArtist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	artist, err := s.query.ArtistByID(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": artist})
}

func (s *Server) handleUpdateArtist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var in directory.UpdateArtistInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	artist, err := s.ingest.UpdateArtist(r.Context(), id, in)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": artist})
}

func (s *Server) handleSearchArtists(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	results, err := s.query.SearchArtists(r.Context(), query)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
		"query":   directory.NormalizeQuery(query),
	})
}

func (s *Server) handleListCities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := directory.CityFilters{
		City:           q.Get("city"),
		State:          q.Get("state"),
		Country:        q.Get("country"),
		IncludeArtists: q.Get("include_artists") == "true",
	}

	page, err := s.query.Cities(r.Context(), filters, intParam(q.Get("page"), 1), intParam(q.Get("limit"), 0))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleListShops(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := s.query.Shops(r.Context(), q.Get("query"), intParam(q.Get("page"), 1), intParam(q.Get("limit"), 0))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleGetShop(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	shop, err := s.query.ShopByID(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": shop})
}

// writeDomainError maps domain errors onto status codes: validation failures
// are the client's fault, missing rows are 404, anything else is a 500 with
// the detail logged rather than leaked.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case directory.IsValidationError(err):
		writeError(w, http.StatusBadRequest, "validation failed", err.Error())
	case errors.Is(err, directory.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found", "")
	default:
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal error", "")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid id", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	body := map[string]string{"error": message}
	if details != "" {
		body["details"] = details
	}
	writeJSON(w, status, body)
}
