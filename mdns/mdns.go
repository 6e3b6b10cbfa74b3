// Package mdns announces the device on the local network so companion
// applications can find it without knowing its address.
package mdns

import (
	"github.com/go-errors/errors"
	"github.com/hashicorp/mdns"
	"net"
	"strings"
	"sync"
)

const (
	defaultService  = "_lark._tcp"
	defaultInstance = "lark"
)

// Config describes the announced service.
type Config struct {
	// Instance is the visible service name, usually the device name.
	Instance string
	// Service is the mDNS service type, defaultService when empty.
	Service string
	// Hostname overrides the announced host. The machine hostname is
	// used when empty.
	Hostname string
	// Port is the TCP port the api listens on.
	Port int
	// TXT carries additional key=value records.
	TXT []string
	Log Logger
}

// Responder announces the service while the device is reachable. Start
// and Stop may be called repeatedly as connectivity comes and goes.
type Responder struct {
	log    Logger
	config Config

	mtx    sync.Mutex
	server *mdns.Server
}

func NewResponder(config *Config) *Responder {
	r := &Responder{
		config: *config,
	}

	if config.Log != nil {
		r.log = config.Log
	} else {
		r.log = noopLogger{}
	}

	if r.config.Service == "" {
		r.config.Service = defaultService
	}

	if r.config.Instance == "" {
		r.config.Instance = defaultInstance
	}

	return r
}

// Start announces the service on the given addresses. A running
// responder is restarted so that changed addresses take effect.
func (r *Responder) Start(addrs []net.IP) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.server != nil {
		if err := r.server.Shutdown(); err != nil {
			r.log.Warnf("Could not shut down previous announcement: %v", err)
		}
		r.server = nil
	}

	zone, err := mdns.NewMDNSService(r.config.Instance, r.config.Service, "",
		qualifyHostname(r.config.Hostname), r.config.Port, addrs, r.config.TXT)
	if err != nil {
		return errors.Errorf("could not build mdns zone: %v", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: zone})
	if err != nil {
		return errors.Errorf("could not start mdns server: %v", err)
	}

	r.server = server

	r.log.Infof("Announcing %v.%v on port %d", r.config.Instance, r.config.Service, r.config.Port)

	return nil
}

// Stop withdraws the announcement. Stopping a stopped responder is a
// no-op.
func (r *Responder) Stop() error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.server == nil {
		return nil
	}

	err := r.server.Shutdown()
	r.server = nil

	if err != nil {
		return errors.Errorf("could not withdraw announcement: %v", err)
	}

	return nil
}

// Running reports whether the service is currently announced.
func (r *Responder) Running() bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.server != nil
}

// qualifyHostname makes a hostname fully qualified. Empty stays empty,
// which lets the zone fall back to the machine hostname.
func qualifyHostname(name string) string {
	if name == "" || strings.HasSuffix(name, ".") {
		return name
	}

	return name + "."
}
