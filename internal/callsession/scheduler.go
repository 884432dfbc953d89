package callsession

import "time"

// Timer is a cancelable scheduled callback.
type Timer interface {
	Stop()
}

// Scheduler abstracts the two timer shapes a session needs: the one-shot
// ringing auto-connect delay and the periodic elapsed tick. Tests inject a
// fake so the machine runs without real time.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	TickEvery(d time.Duration, f func()) Timer
}

type realScheduler struct{}

// NewScheduler returns the wall-clock scheduler.
func NewScheduler() Scheduler {
	return realScheduler{}
}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return oneShot{timer: time.AfterFunc(d, f)}
}

type oneShot struct {
	timer *time.Timer
}

func (t oneShot) Stop() {
	t.timer.Stop()
}

func (realScheduler) TickEvery(d time.Duration, f func()) Timer {
	t := &periodic{ticker: time.NewTicker(d), stop: make(chan struct{})}
	go func() {
		for {
			select {
			case <-t.ticker.C:
				f()
			case <-t.stop:
				return
			}
		}
	}()
	return t
}

type periodic struct {
	ticker *time.Ticker
	stop   chan struct{}
}

func (t *periodic) Stop() {
	t.ticker.Stop()
	select {
	case <-t.stop:
	default:
		close(t.stop)
	}
}
