package metrics

import (
	"context"
	"sync"
	"time"
)

const (
	defaultInterval = time.Minute
	collectTimeout  = 10 * time.Second
)

type Config struct {
	Interval time.Duration
	Logger   Logger
}

// Sampler keeps a recent Snapshot available so serving it never blocks
// on collection.
type Sampler struct {
	log      Logger
	interval time.Duration

	mtx    sync.Mutex
	latest *Snapshot

	quit chan struct{}
	wg   sync.WaitGroup
}

func NewSampler(config *Config) *Sampler {
	s := &Sampler{
		interval: config.Interval,
		quit:     make(chan struct{}),
	}

	if s.interval <= 0 {
		s.interval = defaultInterval
	}

	if config.Logger != nil {
		s.log = config.Logger
	} else {
		s.log = noopLogger{}
	}

	return s
}

func (s *Sampler) Start() error {
	s.wg.Add(1)
	go s.run()

	return nil
}

func (s *Sampler) Stop() error {
	close(s.quit)
	s.wg.Wait()

	return nil
}

func (s *Sampler) run() {
	defer s.wg.Done()

	s.sample()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sample()
		case <-s.quit:
			return
		}
	}
}

func (s *Sampler) sample() {
	ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
	defer cancel()

	snapshot, err := Collect(ctx)
	if err != nil {
		s.log.Warnf("Could not collect metrics: %v", err)
		return
	}

	s.mtx.Lock()
	s.latest = snapshot
	s.mtx.Unlock()
}

// Latest returns the most recent sample, nil if none was taken yet.
func (s *Sampler) Latest() *Snapshot {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.latest
}
