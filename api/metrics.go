package api

import (
	"github.com/larkhq/larkd/metrics"
	"net/http"
)

func (a *Api) handleGetMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := a.sampler.Latest()

		// The sampler may not have run yet right after startup.
		if snapshot == nil {
			fresh, err := metrics.Collect(r.Context())
			if err != nil {
				a.jsonError(w, err.Error(), http.StatusInternalServerError)
				return
			}

			snapshot = fresh
		}

		a.jsonResponse(w, snapshot, http.StatusOK)
	}
}
