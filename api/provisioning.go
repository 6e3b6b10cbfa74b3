package api

import (
	"encoding/json"
	"github.com/larkhq/larkd/wifi"
	"net/http"
	"time"
)

type startProvisioningRequest struct {
	Variant        string `json:"variant"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
	// Ssid and Psk shape the temporary access point of the softap
	// variant. Left empty, the configured access point is used.
	Ssid string `json:"ssid"`
	Psk  string `json:"psk"`
}

func (a *Api) handleStartProvisioning() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := startProvisioningRequest{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			a.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}

		variant, err := wifi.ParseProvisioningVariant(req.Variant)
		if err != nil {
			a.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}

		opts := wifi.ProvisioningOptions{
			Timeout: time.Duration(req.TimeoutSeconds) * time.Second,
		}

		if req.Ssid != "" {
			opts.AccessPoint = wifi.AccessPointConfig{
				Ssid: req.Ssid,
				Psk:  req.Psk,
			}
			if req.Psk != "" {
				opts.AccessPoint.Auth = wifi.AuthWpa2Psk
			}
		}

		err = a.service.StartProvisioning(variant, opts)
		if err != nil {
			a.jsonError(w, err.Error(), statusForError(err))
			return
		}

		a.jsonResponse(w, statusResponseOf(a.service.Status()), http.StatusOK)
	}
}

func (a *Api) handleCancelProvisioning() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := a.service.CancelProvisioning()
		if err != nil {
			a.jsonError(w, err.Error(), statusForError(err))
			return
		}

		a.jsonResponse(w, statusResponseOf(a.service.Status()), http.StatusOK)
	}
}
