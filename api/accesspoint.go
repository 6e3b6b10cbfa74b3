package api

import (
	"encoding/json"
	"github.com/larkhq/larkd/wifi"
	"net/http"
)

type accessPointResponse struct {
	Ssid       string `json:"ssid"`
	Auth       string `json:"auth"`
	Channel    int    `json:"channel"`
	MaxClients int    `json:"maxClients"`
}

func accessPointResponseOf(config wifi.AccessPointConfig) *accessPointResponse {
	return &accessPointResponse{
		Ssid:       config.Ssid,
		Auth:       config.Auth.String(),
		Channel:    config.Channel,
		MaxClients: config.MaxClients,
	}
}

func (a *Api) handleGetAccessPoint() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.jsonResponse(w, accessPointResponseOf(a.service.Config()), http.StatusOK)
	}
}

type putAccessPointRequest struct {
	Ssid       string `json:"ssid"`
	Psk        string `json:"psk"`
	Auth       string `json:"auth"`
	Channel    int    `json:"channel"`
	MaxClients int    `json:"maxClients"`
}

func (a *Api) handlePutAccessPoint() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := putAccessPointRequest{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			a.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}

		config := wifi.AccessPointConfig{
			Ssid:       req.Ssid,
			Psk:        req.Psk,
			Channel:    req.Channel,
			MaxClients: req.MaxClients,
		}

		if req.Auth != "" {
			if err := config.Auth.UnmarshalText([]byte(req.Auth)); err != nil {
				a.jsonError(w, err.Error(), http.StatusBadRequest)
				return
			}
		} else if req.Psk != "" {
			config.Auth = wifi.AuthWpa2Psk
		}

		err = a.service.SetConfig(config)
		if err != nil {
			a.jsonError(w, err.Error(), statusForError(err))
			return
		}

		a.jsonResponse(w, accessPointResponseOf(a.service.Config()), http.StatusOK)
	}
}
