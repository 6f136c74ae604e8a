package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"paketetl/internal/format"
)

func (s *Server) handleListPaket(w http.ResponseWriter, r *http.Request) {
	req := parseListPaket(r.URL.Query())
	env := format.Envelope{TrxID: req.TrxID, To: req.To, Category: req.Category}
	log := zerolog.Ctx(r.Context()).With().
		Str("module", req.Module).
		Str("trxid", req.TrxID).
		Logger()

	if err := s.validate.Struct(req); err != nil {
		msg := validationMessage(err)
		log.Info().Str("reason", msg).Msg("rejected request")
		writeText(w, http.StatusUnprocessableEntity, env.Failure(msg))
		return
	}

	mod, ok := s.module(req.Module)
	if !ok {
		log.Info().Msg("unknown module")
		writeText(w, http.StatusNotFound, env.Failure("unknown module "+req.Module))
		return
	}

	ctx := r.Context()
	recs, err := mod.Source.Fetch(ctx, req.Endpoint, req.Forward)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		log.Error().Err(err).Str("endpoint", req.Endpoint).Msg("upstream fetch failed")
		writeText(w, status, env.Failure("upstream unavailable"))
		return
	}

	res, err := mod.Engine.Run(ctx, recs)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		log.Error().Err(err).Msg("pipeline failed")
		writeText(w, status, env.Failure("processing failed"))
		return
	}

	log.Debug().
		Int("records_in", res.Stats.In).
		Int("records_out", res.Stats.Out).
		Dur("duration", res.Stats.Duration).
		Msg("listpaket served")
	writeText(w, http.StatusOK, env.Success(res.Serialized))
}
