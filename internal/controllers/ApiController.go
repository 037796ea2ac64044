package controllers

import (
	"errors"
	"net/http"
	"snapshotd/internal/models"
	"snapshotd/internal/providers"
	"snapshotd/internal/services"
	"snapshotd/internal/structures"

	json "github.com/goccy/go-json"
)

const addressParam = "address"

type ApiController struct {
	logger       providers.Logger
	service      services.SyncServiceInterface
	maxBodyBytes int64
}

type readResponse struct {
	Data *models.Snapshot `json:"data"`
}

type writeResponse struct {
	Accepted   bool   `json:"accepted"`
	StoredAt   string `json:"storedAt"`
	CapturedAt int64  `json:"capturedAt"`
}

type purgeResponse struct {
	Purged  bool `json:"purged"`
	Deleted int  `json:"deleted"`
	Failed  int  `json:"failed"`
}

func NewApiController(conf *structures.Config, logger providers.Logger, service services.SyncServiceInterface) *ApiController {
	maxBodyBytes := conf.Snapshot.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = services.DefaultMaxBodyBytes
	}
	return &ApiController{
		logger:       logger,
		service:      service,
		maxBodyBytes: maxBodyBytes,
	}
}

func getAddress(r *http.Request) string {
	return r.URL.Query().Get(addressParam)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	gson, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

// writeError maps service errors to status codes. Unexpected errors are
// logged and answered with a generic message.
func (ac *ApiController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidKey):
		http.Error(w, "Invalid address", http.StatusBadRequest)
	case errors.Is(err, services.ErrBodyTooLarge):
		http.Error(w, "Payload Too Large", http.StatusRequestEntityTooLarge)
	case errors.Is(err, services.ErrMalformedPayload):
		http.Error(w, "Bad Request", http.StatusBadRequest)
	case errors.Is(err, services.ErrStoreUnavailable):
		http.Error(w, "Storage Unavailable", http.StatusBadGateway)
	default:
		ac.logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "Unexpected error on %s %s: %s", r.Method, r.URL.Path, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (ac *ApiController) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := ac.service.Read(r.Context(), getAddress(r))
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, readResponse{Data: snap})
}

func (ac *ApiController) SaveSnapshot(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, ac.maxBodyBytes)
	receipt, err := ac.service.Write(r.Context(), getAddress(r), r.Body)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, writeResponse{
		Accepted:   true,
		StoredAt:   receipt.StoredAt,
		CapturedAt: receipt.CapturedAt,
	})
}

func (ac *ApiController) PurgeSnapshot(w http.ResponseWriter, r *http.Request) {
	result, err := ac.service.Purge(r.Context(), getAddress(r))
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, purgeResponse{
		Purged:  true,
		Deleted: result.Deleted,
		Failed:  result.Failed,
	})
}
