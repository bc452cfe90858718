package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/poolnav/pkg/navigator"
)

// TreeChangedMsg tells the model the controller swapped its tree.
type TreeChangedMsg struct{}

// EventMsg carries a controller event into the program.
type EventMsg struct {
	Event navigator.Event
}

// Painter bridges the controller and a running program. The controller
// suspends it around a tree swap; resuming posts a TreeChangedMsg.
// The controller calls in with its lock held while the program may be
// waiting on that lock, so messages are queued and delivered in order by a
// single goroutine started on the first Attach.
type Painter struct {
	mu        sync.Mutex
	suspended int
	send      func(tea.Msg)
	queue     []tea.Msg
	closed    bool
	wake      chan struct{}
	done      chan struct{}
}

// NewPainter returns a painter with no program attached.
func NewPainter() *Painter {
	return &Painter{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Attach routes messages to send, usually (*tea.Program).Send.
func (p *Painter) Attach(send func(tea.Msg)) {
	p.mu.Lock()
	start := p.send == nil && !p.closed
	p.send = send
	p.mu.Unlock()
	if start {
		go p.drain()
	}
}

// Close stops delivery. Queued messages are dropped.
func (p *Painter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.queue = nil
	close(p.done)
}

// Suspend stops repaints until the matching Resume.
func (p *Painter) Suspend() {
	p.mu.Lock()
	p.suspended++
	p.mu.Unlock()
}

// Resume ends a suspension and requests a repaint.
func (p *Painter) Resume() {
	p.mu.Lock()
	if p.suspended > 0 {
		p.suspended--
	}
	ready := p.suspended == 0
	p.mu.Unlock()

	if ready {
		p.post(TreeChangedMsg{})
	}
}

// Suspended reports whether a tree swap is in progress.
func (p *Painter) Suspended() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.suspended > 0
}

// Notify forwards a controller event. Pass it to Controller.Subscribe.
func (p *Painter) Notify(ev navigator.Event) {
	p.post(EventMsg{Event: ev})
}

// post queues msg without blocking. Nothing is queued before Attach.
func (p *Painter) post(msg tea.Msg) {
	p.mu.Lock()
	if p.send == nil || p.closed {
		p.mu.Unlock()
		return
	}
	p.queue = append(p.queue, msg)
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Painter) drain() {
	for {
		select {
		case <-p.done:
			return
		case <-p.wake:
		}
		for {
			p.mu.Lock()
			if p.closed || len(p.queue) == 0 {
				p.mu.Unlock()
				break
			}
			batch, send := p.queue, p.send
			p.queue = nil
			p.mu.Unlock()

			for _, msg := range batch {
				send(msg)
			}
		}
	}
}
