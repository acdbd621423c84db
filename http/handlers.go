package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"statelearn/db"
	"statelearn/logging"
)

func (s *Server) registerHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/runs", s.handleRuns)
	mux.HandleFunc("GET /api/verdicts", s.handleVerdicts)
	mux.HandleFunc("GET /api/models", s.handleModels)
	mux.HandleFunc("GET /api/models/{name}/dot", s.handleModelDOT)
	mux.HandleFunc("POST /api/learn", s.handleLearn)
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)
	if s.hub != nil {
		mux.HandleFunc("GET /api/ws/monitor", s.hub.HandleWebSocket)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.L().Error("response encoding failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	runs, err := db.LoadRuns(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleVerdicts(w http.ResponseWriter, r *http.Request) {
	verdicts, err := db.LoadVerdicts(100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, verdicts)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	models, err := db.ListModels()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, models)
}

func (s *Server) handleModelDOT(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	model, err := db.LoadModel(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "model not found")
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	if err := model.WriteDOT(w); err != nil {
		logging.L().Error("dot rendering failed", zap.String("model", name), zap.Error(err))
	}
}

func (s *Server) handleLearn(w http.ResponseWriter, r *http.Request) {
	if s.trigger == nil {
		writeError(w, http.StatusServiceUnavailable, "learning runs not available")
		return
	}
	go func() {
		if err := s.trigger(context.Background()); err != nil {
			logging.L().Error("triggered run failed", zap.Error(err))
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		writeError(w, http.StatusServiceUnavailable, "metrics not available")
		return
	}
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}
