package main

import (
	"sync"
	"time"
)

// typingIdle is how long after the last activity the stopped notification
// fires.
const typingIdle = 2 * time.Second

// typingNotifier debounces typing notifications: the first activity emits
// typing=true, further activity just pushes the idle timer out, and after
// typingIdle without activity it emits typing=false. Sending a message
// stops it immediately.
//
// The room is captured when Activity is called, so the idle timer firing on
// its own goroutine never reads state owned by the input loop.
type typingNotifier struct {
	mu     sync.Mutex
	emit   func(room string, typing bool)
	idle   time.Duration
	timer  *time.Timer
	active bool
	room   string
}

func newTypingNotifier(idle time.Duration, emit func(room string, typing bool)) *typingNotifier {
	return &typingNotifier{emit: emit, idle: idle}
}

// Activity records a keystroke-equivalent in the given room.
func (t *typingNotifier) Activity(room string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.room = room
	if !t.active {
		t.active = true
		t.emit(room, true)
	}

	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.idle, t.idleExpired)
}

// Stop emits typing=false immediately if currently active. Called when a
// message is submitted.
func (t *typingNotifier) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}

	if t.active {
		t.active = false
		t.emit(t.room, false)
	}
}

func (t *typingNotifier) idleExpired() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.timer = nil
	if t.active {
		t.active = false
		t.emit(t.room, false)
	}
}
