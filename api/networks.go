package api

import (
	"encoding/json"
	"github.com/larkhq/larkd/wifi"
	"net/http"
	"strconv"
)

func (a *Api) handleGetNetworks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		networks, err := a.service.Scan()
		if err != nil {
			a.jsonError(w, err.Error(), statusForError(err))
			return
		}

		if networks == nil {
			networks = []wifi.NetworkSummary{}
		}

		a.jsonResponse(w, networks, http.StatusOK)
	}
}

type connectRequest struct {
	Ssid string `json:"ssid"`
	Psk  string `json:"psk"`
}

// handleConnectNetwork starts a connection attempt. Without an ssid it
// reconnects to the saved network. With ?sync=1 the response is held
// back until the link is up or the connect timeout passes.
func (a *Api) handleConnectNetwork() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := connectRequest{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			a.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}

		if req.Ssid == "" {
			err = a.service.ConnectStored()
		} else {
			err = a.service.Connect(wifi.Credentials{Ssid: req.Ssid, Psk: req.Psk})
		}
		if err != nil {
			a.jsonError(w, err.Error(), statusForError(err))
			return
		}

		if wait, _ := strconv.ParseBool(r.URL.Query().Get("sync")); wait {
			if !a.reporter.WaitOnline(r.Context(), wifi.DefaultConnectTimeout) {
				a.jsonError(w, "timed out waiting for the connection", http.StatusGatewayTimeout)
				return
			}
		}

		a.jsonResponse(w, statusResponseOf(a.service.Status()), http.StatusOK)
	}
}

type savedNetworkResponse struct {
	Ssid string `json:"ssid"`
}

// handleGetSavedNetwork reveals which network is saved, never its psk.
func (a *Api) handleGetSavedNetwork() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creds, err := a.service.LoadCredentials()
		if err != nil {
			a.jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if creds == nil {
			a.jsonError(w, "no network is saved", http.StatusNotFound)
			return
		}

		a.jsonResponse(w, &savedNetworkResponse{Ssid: creds.Ssid}, http.StatusOK)
	}
}

func (a *Api) handlePutSavedNetwork() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := connectRequest{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			a.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}

		err = a.service.SaveCredentials(wifi.Credentials{Ssid: req.Ssid, Psk: req.Psk})
		if err != nil {
			a.jsonError(w, err.Error(), statusForError(err))
			return
		}

		a.jsonResponse(w, &savedNetworkResponse{Ssid: req.Ssid}, http.StatusOK)
	}
}

func (a *Api) handleDeleteSavedNetwork() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := a.service.ForgetCredentials()
		if err != nil {
			a.jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}

		a.jsonResponse(w, &savedNetworkResponse{}, http.StatusOK)
	}
}
