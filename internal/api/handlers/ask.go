package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/sales-insights/internal/api/middleware"
	"github.com/dvloznov/sales-insights/internal/ask"
)

// AskHandler answers natural-language questions by routing them through the
// translator to one derived view.
type AskHandler struct {
	translator ask.Translator
	engine     QueryEngine
	log        zerolog.Logger
}

// NewAskHandler creates a new ask handler.
func NewAskHandler(translator ask.Translator, eng QueryEngine, log zerolog.Logger) *AskHandler {
	return &AskHandler{translator: translator, engine: eng, log: log}
}

// Ask handles POST /api/ask
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Question == "" {
		middleware.WriteError(w, http.StatusBadRequest, "question is required")
		return
	}

	ctx := r.Context()

	query, err := h.translator.Translate(ctx, req.Question)
	if err != nil {
		h.log.Error().Err(err).Str("question", req.Question).Msg("Failed to translate question")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to understand the question")
		return
	}

	h.log.Info().
		Str("question", req.Question).
		Str("view", query.View).
		Msg("Question routed to view")

	var data interface{}
	switch query.View {
	case ask.ViewKpis:
		data, err = h.engine.QueryKpis(ctx)
	case ask.ViewTimeSeries:
		granularity := query.Granularity
		if granularity == "" {
			granularity = "monthly"
		}
		data, err = h.engine.QueryTimeSeries(ctx, granularity)
	case ask.ViewByCountry:
		data, err = h.engine.QueryByCountry(ctx)
	case ask.ViewByProductLine:
		data, err = h.engine.QueryByProductLine(ctx)
	case ask.ViewTopCustomers:
		limit := query.Limit
		if limit == 0 {
			limit = defaultTopCustomers
		}
		data, err = h.engine.QueryTopCustomers(ctx, limit)
	}
	if err != nil {
		writeEngineError(w, h.log, err, "Failed to compute view")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"question": req.Question,
		"view":     query.View,
		"data":     data,
	})
}
