package ui

import (
	"sort"
	"time"
)

// Loop schedules work back onto the single goroutine that owns a Document.
// Nothing scheduled through a Loop can be cancelled.
type Loop interface {
	// AfterFunc runs fn on the loop once d has elapsed.
	AfterFunc(d time.Duration, fn func())
	// Go runs work off the loop and then runs the continuation it returns on
	// the loop. A nil continuation is ignored.
	Go(work func() func())
}

// ManualLoop is a Loop driven by an explicit virtual clock. Go runs work
// immediately and queues its continuation for the next Advance or Flush.
type ManualLoop struct {
	now     time.Duration
	seq     int
	pending []timer
}

type timer struct {
	at  time.Duration
	seq int
	fn  func()
}

// NewManualLoop returns a loop at virtual time zero.
func NewManualLoop() *ManualLoop {
	return &ManualLoop{}
}

// AfterFunc implements Loop.
func (l *ManualLoop) AfterFunc(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	l.seq++
	l.pending = append(l.pending, timer{at: l.now + d, seq: l.seq, fn: fn})
}

// Go implements Loop.
func (l *ManualLoop) Go(work func() func()) {
	if cont := work(); cont != nil {
		l.AfterFunc(0, cont)
	}
}

// Now returns the virtual time.
func (l *ManualLoop) Now() time.Duration { return l.now }

// Pending returns the number of scheduled callbacks.
func (l *ManualLoop) Pending() int { return len(l.pending) }

// Advance moves the clock forward by d, running every callback that falls
// due in time order, including callbacks scheduled by those callbacks.
func (l *ManualLoop) Advance(d time.Duration) {
	target := l.now + d
	for {
		i := l.next()
		if i < 0 || l.pending[i].at > target {
			break
		}
		t := l.pending[i]
		l.pending = append(l.pending[:i], l.pending[i+1:]...)
		if t.at > l.now {
			l.now = t.at
		}
		t.fn()
	}
	l.now = target
}

// Flush runs everything that is due now.
func (l *ManualLoop) Flush() { l.Advance(0) }

// RunAll advances until nothing is scheduled.
func (l *ManualLoop) RunAll() {
	for len(l.pending) > 0 {
		sort.Slice(l.pending, func(a, b int) bool { return l.pending[a].at < l.pending[b].at })
		l.Advance(l.pending[len(l.pending)-1].at - l.now)
	}
}

func (l *ManualLoop) next() int {
	best := -1
	for i, t := range l.pending {
		if best < 0 || t.at < l.pending[best].at || (t.at == l.pending[best].at && t.seq < l.pending[best].seq) {
			best = i
		}
	}
	return best
}
