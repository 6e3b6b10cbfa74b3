package api

import (
	"net/http"
	"strconv"
)

func (a *Api) handleGetLogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		count, _ := strconv.Atoi(r.URL.Query().Get("count"))

		a.jsonResponse(w, a.ring.Collect(offset, count), http.StatusOK)
	}
}
