package main

import (
	"github.com/jessevdk/go-flags"
	"time"
)

const (
	defaultDataDir         = "."
	defaultListen          = "127.0.0.1:9000"
	defaultRadio           = "wpa"
	defaultInterface       = "wlan0"
	defaultLed             = "mock"
	defaultLedPin          = "GPIO17"
	defaultMetricsInterval = time.Minute
)

type wpaConfig struct {
	Interface string `long:"interface" description:"Wireless interface the radio driver binds"`
}

type gpioConfig struct {
	Pin string `long:"pin" description:"Name of the GPIO pin driving the status led"`
}

type mdnsConfig struct {
	Hostname string `long:"hostname" description:"Hostname announced on the local network"`
	Service  string `long:"service" description:"Service type announced on the local network"`
}

type config struct {
	ShowVersion     bool          `short:"V" long:"version" description:"Display version information and exit"`
	Debug           bool          `long:"debug" description:"Enable debug logging"`
	DataDir         string        `long:"datadir" description:"Directory where lark.db is stored"`
	Listen          string        `long:"listen" description:"Address the api listens on"`
	Profiling       string        `long:"profiling" description:"Also serve pprof profiles on this address"`
	Radio           string        `long:"radio" description:"Radio backend" choice:"wpa" choice:"mock"`
	Led             string        `long:"led" description:"Status led backend" choice:"gpio" choice:"mock"`
	MetricsInterval time.Duration `long:"metricsinterval" description:"Time between metrics samples"`
	Wpa             wpaConfig     `group:"Wpa" namespace:"wpa"`
	Gpio            gpioConfig    `group:"Gpio" namespace:"gpio"`
	Mdns            mdnsConfig    `group:"Mdns" namespace:"mdns"`
}

// loadConfig fills a config with defaults and parses the command line
// over it.
func loadConfig() (*config, error) {
	cfg := config{
		DataDir:         defaultDataDir,
		Listen:          defaultListen,
		Radio:           defaultRadio,
		Led:             defaultLed,
		MetricsInterval: defaultMetricsInterval,
		Wpa: wpaConfig{
			Interface: defaultInterface,
		},
		Gpio: gpioConfig{
			Pin: defaultLedPin,
		},
	}

	parser := flags.NewParser(&cfg, flags.Default)

	if _, err := parser.Parse(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
