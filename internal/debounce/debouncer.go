// Package debounce delivers the latest pushed value once input has been quiet for a fixed delay.
package debounce

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultDelay is the quiet period of the search box.
const DefaultDelay = 500 * time.Millisecond

var ErrStopped = errors.New("debounce: stopped")

type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	pending string
	armed   bool
	gen     uint64
	out     chan string
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func New(delay time.Duration, bufferSize int) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Debouncer{
		delay:  delay,
		out:    make(chan string, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// C delivers committed values. It is closed by Stop.
func (d *Debouncer) C() <-chan string {
	return d.out
}

func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

func (d *Debouncer) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true
	go d.loop()
}

// Stop cancels any pending commit and waits for the timer goroutine to exit.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	started := d.started
	close(d.stopCh)
	d.mu.Unlock()
	if started {
		<-d.doneCh
		return
	}
	close(d.out)
}

// Push records a new draft value and restarts the quiet period.
func (d *Debouncer) Push(value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return ErrStopped
	}
	d.pending = value
	d.armed = true
	d.gen++
	d.signalWakeup()
	return nil
}

// Cancel drops the pending commit, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.armed {
		return
	}
	d.armed = false
	d.gen++
	d.signalWakeup()
}

func (d *Debouncer) Pending() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending, d.armed
}

func (d *Debouncer) Dropped() uint64 {
	return atomic.LoadUint64(&d.dropped)
}

func (d *Debouncer) loop() {
	defer close(d.doneCh)
	defer close(d.out)

	var timer *time.Timer
	var timerC <-chan time.Time
	var armedGen uint64
	for {
		select {
		case <-d.wakeup:
			gen, armed := d.generation()
			if !armed {
				stopTimer(timer)
				timerC = nil
				continue
			}
			armedGen = gen
			timer = resetTimer(timer, d.delay)
			timerC = timer.C
		case <-timerC:
			timerC = nil
			value, ok := d.take(armedGen)
			if !ok {
				continue
			}
			select {
			case d.out <- value:
			default:
				atomic.AddUint64(&d.dropped, 1)
			}
		case <-d.stopCh:
			stopTimer(timer)
			return
		}
	}
}

func (d *Debouncer) signalWakeup() {
	select {
	case d.wakeup <- struct{}{}:
	default:
	}
}

func (d *Debouncer) generation() (uint64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen, d.armed
}

// take commits the pending value only if nothing was pushed after the timer was armed.
// A newer push has its own wakeup queued and will re-arm the timer.
func (d *Debouncer) take(gen uint64) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.armed || d.gen != gen {
		return "", false
	}
	d.armed = false
	return d.pending, true
}

func resetTimer(timer *time.Timer, dur time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(dur)
	}
	stopTimer(timer)
	timer.Reset(dur)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
