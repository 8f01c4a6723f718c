package coordinator

import (
	"sync"
	"time"
)

// DefaultFrameInterval is one frame at 60 frames per second.
const DefaultFrameInterval = time.Second / 60

// Scheduler runs the frame callback at most once per tick, and only when a
// frame has been requested since the last one ran.
type Scheduler interface {
	// Start installs the frame callback.
	Start(frame func())
	// Request asks for a frame. Repeated requests before the next tick
	// coalesce into one.
	Request()
	// Stop stops delivering frames.
	Stop()
}

// ManualScheduler delivers frames only when Tick is called.
type ManualScheduler struct {
	mu      sync.Mutex
	frame   func()
	pending bool
}

// NewManualScheduler creates a ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Start installs the frame callback.
func (s *ManualScheduler) Start(frame func()) {
	s.mu.Lock()
	s.frame = frame
	s.mu.Unlock()
}

// Request marks a frame as pending.
func (s *ManualScheduler) Request() {
	s.mu.Lock()
	s.pending = true
	s.mu.Unlock()
}

// Pending reports whether a frame has been requested.
func (s *ManualScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Tick runs the frame callback if a frame is pending and reports whether
// it ran.
func (s *ManualScheduler) Tick() bool {
	s.mu.Lock()
	frame, pending := s.frame, s.pending
	s.pending = false
	s.mu.Unlock()
	if !pending || frame == nil {
		return false
	}
	frame()
	return true
}

// Stop drops any pending frame.
func (s *ManualScheduler) Stop() {
	s.mu.Lock()
	s.pending = false
	s.frame = nil
	s.mu.Unlock()
}

// TickerScheduler delivers frames from a time.Ticker on its own goroutine.
type TickerScheduler struct {
	interval time.Duration

	mu      sync.Mutex
	pending bool
	frame   func()

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewTickerScheduler creates a TickerScheduler. A non-positive interval
// selects DefaultFrameInterval.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &TickerScheduler{interval: interval, done: make(chan struct{})}
}

// Start installs the frame callback and starts the ticker goroutine.
func (s *TickerScheduler) Start(frame func()) {
	s.mu.Lock()
	s.frame = frame
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop()
}

func (s *TickerScheduler) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			frame, pending := s.frame, s.pending
			s.pending = false
			s.mu.Unlock()
			if pending && frame != nil {
				frame()
			}
		}
	}
}

// Request marks a frame as pending.
func (s *TickerScheduler) Request() {
	s.mu.Lock()
	s.pending = true
	s.mu.Unlock()
}

// Stop stops the ticker goroutine and waits for it to exit.
func (s *TickerScheduler) Stop() {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
}
