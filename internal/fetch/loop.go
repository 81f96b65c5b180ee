package fetch

import "time"

// Loop is the single-threaded executor owning all request state for one
// Context. Transport completions and timer fires cross into it through
// Post; nothing else touches request fields.
type Loop struct {
	tasks chan func()
	stop  chan struct{}
	done  chan struct{}
}

func NewLoop() *Loop {
	l := &Loop{
		tasks: make(chan func(), 128),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case <-l.stop:
			return
		case task := <-l.tasks:
			task()
		}
	}
}

// Post hands a task to the loop. Tasks posted after Close are dropped.
func (l *Loop) Post(task func()) {
	select {
	case l.tasks <- task:
	case <-l.stop:
	}
}

// Close stops the loop and waits for the running task to finish.
func (l *Loop) Close() {
	close(l.stop)
	<-l.done
}

// Timer is a pending delayed task that can be re-armed or stopped.
type Timer interface {
	Reset(d time.Duration)
	Stop()
}

// TimerFactory schedules fn to run on the owning loop after d. The
// default implementation wraps time.AfterFunc; tests substitute a
// manual clock.
type TimerFactory func(d time.Duration, fn func()) Timer

type loopTimer struct {
	timer *time.Timer
}

func (t *loopTimer) Reset(d time.Duration) {
	t.timer.Reset(d)
}

func (t *loopTimer) Stop() {
	t.timer.Stop()
}

func (l *Loop) afterFunc(d time.Duration, fn func()) Timer {
	return &loopTimer{timer: time.AfterFunc(d, func() {
		l.Post(fn)
	})}
}
