package main

import (
	"context"
	"github.com/jessevdk/go-flags"
	"github.com/larkhq/larkd/api"
	"github.com/larkhq/larkd/connectivity"
	"github.com/larkhq/larkd/larkdb"
	"github.com/larkhq/larkd/logring"
	"github.com/larkhq/larkd/mdns"
	"github.com/larkhq/larkd/metrics"
	"github.com/larkhq/larkd/statusled"
	"github.com/larkhq/larkd/tasks"
	"github.com/larkhq/larkd/wifi"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	// Blank import to set up profiling HTTP handlers.
	_ "net/http/pprof"
)

var (
	// Commit stores the current commit hash of this build. This should be set using -ldflags during compilation.
	Commit string
	// Version stores the version string of this build. This should be set using -ldflags during compilation.
	Version string
	// Date stores the date of this build. This should be set using -ldflags during compilation.
	Date string
)

// larkdMain is the true entry point for larkd. This is required since defers
// created in the top-level scope of a main method aren't executed if os.Exit() is called.
func larkdMain() error {
	ring := logring.New(0)

	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
	log.AddHook(ring)

	// Load CLI configuration and defaults
	cfg, err := loadConfig()
	if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		return nil
	} else if err != nil {
		return errors.Errorf("Failed parsing arguments: %v", err)
	}

	// Set logger into debug mode if called with --debug
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
		log.Info("Setting debug mode.")
	}

	log.Debug("Loaded config.")

	// Print version of the daemon
	log.Infof("Version %s (commit %s)", Version, Commit)
	log.Infof("Built on %s", Date)

	// Stop here if only version was requested
	if cfg.ShowVersion {
		return nil
	}

	if cfg.Profiling != "" {
		go func() {
			log.Infof("Starting profiling server on %v", cfg.Profiling)
			// Redirect the root path
			http.Handle("/", http.RedirectHandler("/debug/pprof", http.StatusSeeOther))
			// All other handlers are registered on DefaultServeMux through the import of pprof
			err := http.ListenAndServe(cfg.Profiling, nil)
			if err != nil {
				log.Errorf("Could not run profiler: %v", err)
			}
		}()
	}

	// lark.db persistently stores credentials and device settings
	db, err := larkdb.Open(cfg.DataDir)
	if err != nil {
		return errors.Errorf("Could not open lark.db: %v", err)
	}

	log.Infof("Opened lark.db")

	defer func() {
		err := db.Close()
		if err != nil {
			log.Errorf("Could not close lark.db: %v", err)
		} else {
			log.Info("Closed lark.db.")
		}
	}()

	// The radio driver, which all connectivity runs through
	var driver wifi.Driver

	switch cfg.Radio {
	case "wpa":
		driver = wifi.NewWpaDriver(&wifi.WpaDriverConfig{
			Interface: cfg.Wpa.Interface,
			Logger:    log.New().WithField("system", "wpa"),
		})

		log.Infof("Created wpa_supplicant radio driver on %v.", cfg.Wpa.Interface)
	case "mock":
		driver = wifi.NewMockDriver()

		log.Info("Created a mock radio driver.")
	default:
		return errors.Errorf("Unknown radio type %v", cfg.Radio)
	}

	// Central controller for everything the radio does
	service := wifi.NewService(&wifi.Config{
		Driver: driver,
		Store:  db,
		Logger: log.New().WithField("system", "wifi"),
	})

	if err := service.Start(); err != nil {
		return errors.Errorf("Could not start wifi service: %v", err)
	}

	log.Info("Started wifi service.")

	defer func() {
		err := service.Stop()
		if err != nil {
			log.Errorf("Could not properly stop wifi service: %v", err)
		} else {
			log.Info("Stopped wifi service.")
		}
	}()

	// Reduces the connection state to a binary online signal
	reporter := connectivity.NewReporter(&connectivity.Config{
		Service: service,
		Logger:  log.New().WithField("system", "connectivity"),
	})

	if err := reporter.Start(); err != nil {
		return errors.Errorf("Could not start connectivity reporter: %v", err)
	}

	defer func() {
		err := reporter.Stop()
		if err != nil {
			log.Errorf("Could not properly stop connectivity reporter: %v", err)
		}
	}()

	sampler := metrics.NewSampler(&metrics.Config{
		Interval: cfg.MetricsInterval,
		Logger:   log.New().WithField("system", "metrics"),
	})

	if err := sampler.Start(); err != nil {
		return errors.Errorf("Could not start metrics sampler: %v", err)
	}

	defer func() {
		err := sampler.Stop()
		if err != nil {
			log.Errorf("Could not properly stop metrics sampler: %v", err)
		}
	}()

	// The status led
	var led statusled.Led

	switch cfg.Led {
	case "gpio":
		led = statusled.NewGpioLed(&statusled.GpioLedConfig{
			Pin: cfg.Gpio.Pin,
			Log: log.New().WithField("system", "statusled"),
		})

		log.Infof("Created gpio status led on pin %v.", cfg.Gpio.Pin)
	case "mock":
		led = statusled.NewMockLed()

		log.Info("Created a mock status led.")
	default:
		return errors.Errorf("Unknown led type %v", cfg.Led)
	}

	if err := led.Start(); err != nil {
		return errors.Errorf("Could not start status led: %v", err)
	}

	defer func() {
		err := led.Stop()
		if err != nil {
			log.Errorf("Could not properly stop status led: %v", err)
		}
	}()

	led.Set(statusled.PatternFor(service.Status()))

	cancelLed := service.Subscribe(func(ev wifi.Event) {
		led.Set(statusled.PatternFor(ev.Status))
	})
	defer cancelLed()

	lis, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return errors.Errorf("Could not listen on %v: %v", cfg.Listen, err)
	}

	defer lis.Close()

	// The device name doubles as the announced mdns instance
	name, err := db.GetName()
	if err != nil {
		log.Warnf("Could not load device name: %v", err)
	}

	responder := mdns.NewResponder(&mdns.Config{
		Instance: name,
		Hostname: cfg.Mdns.Hostname,
		Service:  cfg.Mdns.Service,
		Port:     lis.Addr().(*net.TCPAddr).Port,
		Log:      log.New().WithField("system", "mdns"),
	})

	group := tasks.NewGroup(log.New().WithField("system", "tasks"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	defer func() {
		stop()
		group.Wait()
	}()

	// Announce the device whenever it is online, withdraw it otherwise.
	group.Go("mdns", func() error {
		state := reporter.CurrentState()

		for {
			if state == connectivity.Online {
				addr := net.IP(service.Status().Addr.AsSlice())
				if err := responder.Start([]net.IP{addr}); err != nil {
					log.Errorf("Could not announce device: %v", err)
				}
			} else if err := responder.Stop(); err != nil {
				log.Errorf("Could not withdraw announcement: %v", err)
			}

			if !reporter.WaitForStateChange(ctx, state) {
				return responder.Stop()
			}

			state = reporter.CurrentState()
		}
	})

	// Going into station mode reconnects to the saved network if there
	// is one. The device stays reachable for setup either way.
	if err := service.SetMode(wifi.ModeStation); err != nil {
		log.Warnf("Could not enter station mode: %v", err)
	}

	handler := api.New(&api.Config{
		Service:  service,
		DB:       db,
		Reporter: reporter,
		Sampler:  sampler,
		Ring:     ring,
		Log:      log.New().WithField("system", "api"),
	})

	log.Infof("Created API")

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		log.Infof("Serving api on %v", lis.Addr())

		err := handler.Serve(lis)
		if egCtx.Err() != nil {
			// The listener was closed during shutdown.
			return nil
		}

		return err
	})

	eg.Go(func() error {
		<-egCtx.Done()
		log.Info("Received an interrupt, shutting down...")

		return lis.Close()
	})

	if err := eg.Wait(); err != nil {
		return errors.Errorf("Failed running api: %v", err)
	}

	// finish with no error
	return nil
}

func main() {
	// Call the "real" main in a nested manner so the defers will properly
	// be executed in the case of a graceful shutdown.
	if err := larkdMain(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		} else {
			log.WithError(err).Println("Failed running larkd.")
		}
		os.Exit(1)
	}
}
