package api

import (
	"github.com/gorilla/websocket"
	"github.com/larkhq/larkd/wifi"
	"net/http"
	"time"
)

type wifiEvent struct {
	Kind             string `json:"kind"`
	Mode             string `json:"mode"`
	Connected        bool   `json:"connected"`
	Connecting       bool   `json:"connecting"`
	Provisioning     bool   `json:"provisioning"`
	Address          string `json:"address,omitempty"`
	DisconnectReason string `json:"disconnectReason,omitempty"`
	Error            string `json:"error,omitempty"`
	// Ssid names the network of a provisioning event. The psk never
	// leaves the device.
	Ssid string `json:"ssid,omitempty"`
}

func wifiEventOf(ev wifi.Event) *wifiEvent {
	out := &wifiEvent{
		Kind:         ev.Kind.String(),
		Mode:         ev.Status.Mode.String(),
		Connected:    ev.Status.Connected,
		Connecting:   ev.Status.Connecting,
		Provisioning: ev.Status.Provisioning,
	}

	if ev.Status.Addr.IsValid() {
		out.Address = ev.Status.Addr.String()
	}

	if ev.Reason != 0 {
		out.DisconnectReason = ev.Reason.String()
	}

	if ev.Err != nil {
		out.Error = ev.Err.Error()
	}

	if ev.Credentials != nil {
		out.Ssid = ev.Credentials.Ssid
	}

	return out
}

func (a *Api) handleGetEvents() http.HandlerFunc {
	upgrader := &websocket.Upgrader{}

	return func(w http.ResponseWriter, r *http.Request) {
		events := make(chan wifi.Event, 16)

		cancel := a.service.Subscribe(func(ev wifi.Event) {
			select {
			case events <- ev:
			default:
				// A stalled socket must not hold up the event bus.
			}
		})

		// Open with a snapshot so clients need no extra status poll.
		events <- wifi.Event{Kind: wifi.EventStateChanged, Status: a.service.Status()}

		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			cancel()
			a.log.Errorf("Could not upgrade connection: %v", err)
			return
		}

		// read pump
		go func() {
			defer c.Close()
			defer cancel()

			c.SetReadLimit(512)
			c.SetReadDeadline(time.Now().Add(60 * time.Second))
			c.SetPongHandler(func(string) error {
				c.SetReadDeadline(time.Now().Add(60 * time.Second))
				return nil
			})

			for {
				_, _, err := c.ReadMessage()
				if err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
						a.log.Errorf("unexpected websocket closure: %v", err)
					}
					break
				}
			}
		}()

		// write pump
		go func() {
			defer c.Close()

			ticker := time.NewTicker(54 * time.Second)
			defer ticker.Stop()

			for {
				select {
				case ev := <-events:
					c.SetWriteDeadline(time.Now().Add(10 * time.Second))

					err := c.WriteJSON(wifiEventOf(ev))
					if err != nil {
						return
					}
				case <-ticker.C:
					c.SetWriteDeadline(time.Now().Add(10 * time.Second))
					if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
						return
					}
				}
			}
		}()
	}
}
