package statusled

import (
	"github.com/go-errors/errors"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
	"sync"
	"time"
)

const (
	blinkInterval     = 500 * time.Millisecond
	fastBlinkInterval = 125 * time.Millisecond
)

// GpioLedConfig names the pin the LED hangs off.
type GpioLedConfig struct {
	// Pin is a name gpioreg understands, like GPIO17.
	Pin string
	Log Logger
}

// GpioLed drives an LED on a GPIO pin.
type GpioLed struct {
	log      Logger
	name     string
	pin      gpio.PinIO
	patterns chan Pattern
	quit     chan struct{}
	wg       sync.WaitGroup
}

// Compile time check for the Led interface.
var _ Led = (*GpioLed)(nil)

func NewGpioLed(config *GpioLedConfig) *GpioLed {
	l := &GpioLed{
		name:     config.Pin,
		patterns: make(chan Pattern, 1),
		quit:     make(chan struct{}),
	}

	if config.Log != nil {
		l.log = config.Log
	} else {
		l.log = noopLogger{}
	}

	return l
}

func (l *GpioLed) Start() error {
	if _, err := host.Init(); err != nil {
		return errors.Errorf("could not initialize gpio host: %v", err)
	}

	pin := gpioreg.ByName(l.name)
	if pin == nil {
		return errors.Errorf("no gpio pin named %v", l.name)
	}

	l.pin = pin

	l.wg.Add(1)
	go l.run()

	return nil
}

func (l *GpioLed) Stop() error {
	close(l.quit)
	l.wg.Wait()

	if err := l.pin.Out(gpio.Low); err != nil {
		return errors.Errorf("could not turn led off: %v", err)
	}

	return nil
}

// Set replaces the shown pattern. A pattern set while another is still
// pending wins over it.
func (l *GpioLed) Set(pattern Pattern) {
	for {
		select {
		case l.patterns <- pattern:
			return
		default:
			select {
			case <-l.patterns:
			default:
			}
		}
	}
}

func (l *GpioLed) run() {
	defer l.wg.Done()

	ticker := time.NewTicker(blinkInterval)
	defer ticker.Stop()

	pattern := PatternOff
	level := gpio.Low

	apply := func(next gpio.Level) {
		if err := l.pin.Out(next); err != nil {
			l.log.Warnf("Could not drive led: %v", err)
		}
		level = next
	}

	apply(gpio.Low)

	for {
		select {
		case pattern = <-l.patterns:
			switch pattern {
			case PatternSolid:
				apply(gpio.High)
			case PatternBlink:
				ticker.Reset(blinkInterval)
				apply(gpio.High)
			case PatternBlinkFast:
				ticker.Reset(fastBlinkInterval)
				apply(gpio.High)
			default:
				apply(gpio.Low)
			}
		case <-ticker.C:
			if pattern == PatternBlink || pattern == PatternBlinkFast {
				apply(!level)
			}
		case <-l.quit:
			return
		}
	}
}
