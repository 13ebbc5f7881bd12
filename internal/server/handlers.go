package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hyperjump/scholar/internal/errs"
	"github.com/hyperjump/scholar/internal/indexer"
	"github.com/hyperjump/scholar/internal/llm"
	"github.com/hyperjump/scholar/internal/models"
	"github.com/hyperjump/scholar/internal/storage"
	"go.uber.org/zap"
)

type searchResponse struct {
	*models.RetrievalResult
	Suggestion string `json:"suggestion,omitempty"`
}

func (s *Server) decodeQuery(w http.ResponseWriter, r *http.Request) (*models.SearchQuery, int, bool) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return nil, 0, false
	}
	topK, err := query.Validate(s.cfg.Search.DefaultTopK, s.cfg.Search.MaxTopK)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return nil, 0, false
	}
	return &query, topK, true
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query, topK, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}
	ret := s.currentRetriever()
	if ret == nil {
		s.respondErr(w, &errs.IndexNotFoundError{Index: "vector", Path: s.cfg.Storage.VectorDBPath()})
		return
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("top_k", topK))
	result, err := ret.Search(r.Context(), query.Query, topK)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, searchResponse{RetrievalResult: result, Suggestion: ret.Suggest(query.Query)})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		s.respondError(w, http.StatusNotImplemented, "language model not configured (set GROQ_API_KEY)")
		return
	}
	query, topK, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}
	ret := s.currentRetriever()
	if ret == nil {
		s.respondErr(w, &errs.IndexNotFoundError{Index: "vector", Path: s.cfg.Storage.VectorDBPath()})
		return
	}
	s.logger.Debug("ask request", zap.String("query", query.Query), zap.Int("top_k", topK))
	resp, err := llm.NewAsker(ret, s.chat, llm.WithLogger(s.logger)).Ask(r.Context(), query.Query, topK)
	if err != nil {
		s.logger.Error("ask failed", zap.Error(err))
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if s.ingester == nil {
		s.respondError(w, http.StatusNotImplemented, "ingestion not enabled")
		return
	}
	report, err := s.ingester.Ingest(r.Context(), s.cfg.DataDir)
	if err != nil {
		s.logger.Error("ingestion failed", zap.Error(err))
		s.respondErr(w, err)
		return
	}
	if s.reload != nil {
		ret, err := s.reload(r.Context())
		if err != nil {
			s.logger.Error("reload after ingestion failed", zap.Error(err))
			s.respondErr(w, err)
			return
		}
		s.SetRetriever(ret)
	}
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := storage.Inspect(s.cfg)
	if err != nil {
		s.logger.Error("status: inspect failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"ingested": st.Ingested(),
		"storage":  st,
		"config": map[string]interface{}{
			"embedding_provider":   s.cfg.Embedding.Provider,
			"embedding_model":      s.cfg.Embedding.Model,
			"embedding_dimensions": s.cfg.Embedding.Dimensions,
			"vector_index_type":    s.cfg.Vector.IndexType,
			"window_size":          s.cfg.Chunking.WindowSize,
			"overlap":              s.cfg.Chunking.Overlap,
			"llm_model":            s.cfg.LLM.Model,
		},
	}
	if ret := s.currentRetriever(); ret != nil {
		stats, err := ret.Stats(r.Context())
		if err != nil {
			s.logger.Warn("status: index stats failed", zap.Error(err))
		} else {
			resp["index"] = stats
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrIndexNotFound):
		return http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrEmbedding):
		return http.StatusBadGateway
	case errors.Is(err, indexer.ErrIngestLocked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondErr(w http.ResponseWriter, err error) {
	s.respondError(w, statusFor(err), err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
