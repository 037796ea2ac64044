package controllers

import (
	"context"
	"fmt"
	"net/http"
	"snapshotd/internal/objectstore"
	"time"
)

const probeTimeout = 2 * time.Second

// HealthController reports uptime and whether the object store answers a
// one-object listing.
type HealthController struct {
	objects   objectstore.ObjectStore
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Backend       string  `json:"backend"`
	Store         string  `json:"store"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Backend:       hc.objects.Backend(),
		Store:         "reachable",
	}
	status := http.StatusOK
	if _, err := hc.objects.List(ctx, "", 1); err != nil {
		resp.Status = "degraded"
		resp.Store = "unreachable"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, resp)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(objects objectstore.ObjectStore) *HealthController {
	return &HealthController{
		objects:   objects,
		startTime: time.Now(),
	}
}
