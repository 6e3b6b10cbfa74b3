package api

import (
	"github.com/go-errors/errors"
	"github.com/gorilla/mux"
	"github.com/larkhq/larkd/connectivity"
	"github.com/larkhq/larkd/larkdb"
	"github.com/larkhq/larkd/logring"
	"github.com/larkhq/larkd/metrics"
	"github.com/larkhq/larkd/wifi"
	"net"
	"net/http"
)

// Config holds the collaborators the api exposes over HTTP.
type Config struct {
	Service  *wifi.Service
	DB       *larkdb.DB
	Reporter *connectivity.Reporter
	Sampler  *metrics.Sampler
	Ring     *logring.Ring
	Log      Logger
}

type Api struct {
	service  *wifi.Service
	db       *larkdb.DB
	reporter *connectivity.Reporter
	sampler  *metrics.Sampler
	ring     *logring.Ring
	router   *mux.Router
	log      Logger
}

func New(config *Config) *Api {
	api := &Api{
		service:  config.Service,
		db:       config.DB,
		reporter: config.Reporter,
		sampler:  config.Sampler,
		ring:     config.Ring,
		router:   mux.NewRouter(),
	}

	if config.Log != nil {
		api.log = config.Log
	} else {
		api.log = noopLogger{}
	}

	api.router.Handle("/api/v1/status", api.handleGetStatus()).Methods(http.MethodGet)
	api.router.Handle("/api/v1/mode", api.handlePutMode()).Methods(http.MethodPut)

	api.router.Handle("/api/v1/networks", api.handleGetNetworks()).Methods(http.MethodGet)
	api.router.Handle("/api/v1/networks/connect", api.handleConnectNetwork()).Methods(http.MethodPost)
	api.router.Handle("/api/v1/networks/saved", api.handleGetSavedNetwork()).Methods(http.MethodGet)
	api.router.Handle("/api/v1/networks/saved", api.handlePutSavedNetwork()).Methods(http.MethodPut)
	api.router.Handle("/api/v1/networks/saved", api.handleDeleteSavedNetwork()).Methods(http.MethodDelete)

	api.router.Handle("/api/v1/accesspoint", api.handleGetAccessPoint()).Methods(http.MethodGet)
	api.router.Handle("/api/v1/accesspoint", api.handlePutAccessPoint()).Methods(http.MethodPut)

	api.router.Handle("/api/v1/provisioning", api.handleStartProvisioning()).Methods(http.MethodPost)
	api.router.Handle("/api/v1/provisioning", api.handleCancelProvisioning()).Methods(http.MethodDelete)

	api.router.Handle("/api/v1/events", api.handleGetEvents()).Methods(http.MethodGet)

	api.router.Handle("/api/v1/metrics", api.handleGetMetrics()).Methods(http.MethodGet)
	api.router.Handle("/api/v1/logs", api.handleGetLogs()).Methods(http.MethodGet)

	api.router.Handle("/api/v1/name", api.handleGetName()).Methods(http.MethodGet)
	api.router.Handle("/api/v1/name", api.handlePutName()).Methods(http.MethodPut)

	return api
}

func (a *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *Api) Serve(l net.Listener) error {
	err := http.Serve(l, a.router)
	if err != nil {
		return errors.Errorf("could not serve api: %v", err)
	}

	return nil
}
