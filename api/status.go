package api

import (
	"encoding/json"
	"github.com/larkhq/larkd/wifi"
	"net/http"
)

type statusResponse struct {
	Mode             string `json:"mode"`
	Connected        bool   `json:"connected"`
	Connecting       bool   `json:"connecting"`
	Provisioning     bool   `json:"provisioning"`
	Address          string `json:"address,omitempty"`
	DisconnectReason string `json:"disconnectReason,omitempty"`
	LastError        string `json:"lastError,omitempty"`
}

func statusResponseOf(status wifi.Status) *statusResponse {
	res := &statusResponse{
		Mode:         status.Mode.String(),
		Connected:    status.Connected,
		Connecting:   status.Connecting,
		Provisioning: status.Provisioning,
	}

	if status.Addr.IsValid() {
		res.Address = status.Addr.String()
	}

	if status.DisconnectReason != 0 {
		res.DisconnectReason = status.DisconnectReason.String()
	}

	if status.LastError != nil {
		res.LastError = status.LastError.Error()
	}

	return res
}

func (a *Api) handleGetStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.jsonResponse(w, statusResponseOf(a.service.Status()), http.StatusOK)
	}
}

type putModeRequest struct {
	Mode string `json:"mode"`
}

func (a *Api) handlePutMode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := putModeRequest{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			a.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}

		mode, err := wifi.ParseMode(req.Mode)
		if err != nil {
			a.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}

		err = a.service.SetMode(mode)
		if err != nil {
			a.jsonError(w, err.Error(), statusForError(err))
			return
		}

		a.jsonResponse(w, statusResponseOf(a.service.Status()), http.StatusOK)
	}
}
