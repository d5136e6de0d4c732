package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-outbox/internal/logger"
	"github.com/MKhiriev/go-outbox/internal/service"
	"github.com/MKhiriev/go-outbox/internal/utils"
	"github.com/MKhiriev/go-outbox/models"
)

func (h *Handler) enqueueOperation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.EnqueueRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.enqueueOperation").Msg("invalid JSON was passed")
		utils.WriteError(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	op, err := h.services.OutboxService.Enqueue(ctx, req)
	if err != nil {
		log.Err(err).Str("func", "*Handler.enqueueOperation").Msg("error enqueueing operation")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, op, http.StatusCreated)
}

func (h *Handler) listOperations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	ops, err := h.services.OutboxService.Pending(ctx)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listOperations").Msg("error listing pending operations")
		utils.WriteError(w, "error listing pending operations", statusFromError(err))
		return
	}

	if ops == nil {
		ops = []models.Operation{}
	}

	utils.WriteJSON(w, models.OperationsResponse{Operations: ops, Length: len(ops)}, http.StatusOK)
}

// requestSync queues a dispatcher run. With ?wait=true the run happens inside
// the request and its report is returned. A started run outlives the request:
// neither a client disconnect nor the request timeout cancels it.
func (h *Handler) requestSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	if !wait {
		h.services.SyncTrigger.TriggerSync()
		w.WriteHeader(http.StatusAccepted)
		return
	}

	report, err := h.services.Dispatcher.Run(context.WithoutCancel(ctx))
	if err != nil {
		if errors.Is(err, service.ErrOffline) || errors.Is(err, service.ErrAuthMissing) {
			log.Debug().Err(err).Str("func", "*Handler.requestSync").Msg("sync run refused")
		} else {
			log.Err(err).Str("func", "*Handler.requestSync").Msg("sync run failed")
		}
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, report, http.StatusOK)
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	status, err := h.services.OutboxService.Status(ctx)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getStatus").Msg("error reading outbox status")
		utils.WriteError(w, "error reading outbox status", statusFromError(err))
		return
	}

	utils.WriteJSON(w, status, http.StatusOK)
}

func (h *Handler) setConnectivity(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.ConnectivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.setConnectivity").Msg("invalid JSON was passed")
		utils.WriteError(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	log.Debug().Bool("online", req.Online).Msg("connectivity reported by host")
	h.services.Connectivity.SetOnline(req.Online)

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) putCredentials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.putCredentials").Msg("invalid JSON was passed")
		utils.WriteError(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.AuthService.SetToken(ctx, req.Token); err != nil {
		log.Err(err).Str("func", "*Handler.putCredentials").Msg("error saving credential")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	// a fresh credential may unblock the queue
	h.services.SyncTrigger.TriggerSync()

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteCredentials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	if err := h.services.AuthService.ClearToken(ctx); err != nil {
		log.Err(err).Str("func", "*Handler.deleteCredentials").Msg("error clearing credential")
		utils.WriteError(w, "error clearing credential", statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getIdentifier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	tempID := chi.URLParam(r, "tempID")
	if !models.IsTemporaryID(tempID) {
		utils.WriteError(w, "not a temporary identifier", http.StatusBadRequest)
		return
	}

	mapping, err := h.services.Identifiers.Lookup(ctx, tempID)
	if err != nil {
		status := statusFromError(err)
		if status == http.StatusInternalServerError {
			log.Err(err).Str("func", "*Handler.getIdentifier").Str("temp_id", tempID).Msg("error looking up identifier")
		}
		utils.WriteError(w, err.Error(), status)
		return
	}

	utils.WriteJSON(w, mapping, http.StatusOK)
}
