package ui

import (
	"strconv"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/poolnav/pkg/navigator"
)

func receive(t *testing.T, ch <-chan tea.Msg) tea.Msg {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message posted")
		return nil
	}
}

func TestPainterPostsAfterOutermostResume(t *testing.T) {
	msgs := make(chan tea.Msg, 4)
	p := NewPainter()
	p.Attach(func(msg tea.Msg) { msgs <- msg })

	p.Suspend()
	p.Suspend()
	if !p.Suspended() {
		t.Fatal("expected suspended")
	}
	p.Resume()
	select {
	case msg := <-msgs:
		t.Fatalf("unexpected message while still suspended: %#v", msg)
	case <-time.After(50 * time.Millisecond):
	}

	p.Resume()
	if _, ok := receive(t, msgs).(TreeChangedMsg); !ok {
		t.Error("expected TreeChangedMsg")
	}
	if p.Suspended() {
		t.Error("expected resumed")
	}
}

func TestPainterNotify(t *testing.T) {
	msgs := make(chan tea.Msg, 1)
	p := NewPainter()

	// Nothing attached: dropped.
	p.Notify(navigator.Event{Kind: navigator.EventActivated})
	p.Resume()

	p.Attach(func(msg tea.Msg) { msgs <- msg })
	p.Notify(navigator.Event{Kind: navigator.EventActivated, Label: "web01"})
	msg, ok := receive(t, msgs).(EventMsg)
	if !ok {
		t.Fatal("expected EventMsg")
	}
	if msg.Event.Kind != navigator.EventActivated || msg.Event.Label != "web01" {
		t.Errorf("unexpected event %+v", msg.Event)
	}
}

func TestPainterPreservesOrder(t *testing.T) {
	msgs := make(chan tea.Msg, 64)
	p := NewPainter()
	defer p.Close()
	p.Attach(func(msg tea.Msg) {
		// A slow program must not let later messages overtake earlier ones.
		time.Sleep(time.Millisecond)
		msgs <- msg
	})

	p.Suspend()
	p.Resume()
	for i := 0; i < 20; i++ {
		p.Notify(navigator.Event{Kind: navigator.EventSelectionChanged, Label: strconv.Itoa(i)})
	}

	if _, ok := receive(t, msgs).(TreeChangedMsg); !ok {
		t.Fatal("expected TreeChangedMsg first")
	}
	for i := 0; i < 20; i++ {
		ev, ok := receive(t, msgs).(EventMsg)
		if !ok {
			t.Fatalf("message %d: expected EventMsg", i)
		}
		if ev.Event.Label != strconv.Itoa(i) {
			t.Fatalf("message %d: got label %q", i, ev.Event.Label)
		}
	}
}

func TestPainterClose(t *testing.T) {
	msgs := make(chan tea.Msg, 4)
	p := NewPainter()
	p.Attach(func(msg tea.Msg) { msgs <- msg })
	p.Close()
	p.Close()

	p.Notify(navigator.Event{Kind: navigator.EventActivated})
	p.Resume()
	select {
	case msg := <-msgs:
		t.Fatalf("unexpected message after Close: %#v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPainterWithController(t *testing.T) {
	ctrl, _ := labController(t)
	msgs := make(chan tea.Msg, 8)
	p := NewPainter()
	p.Attach(func(msg tea.Msg) { msgs <- msg })
	unsubscribe := ctrl.Subscribe(p.Notify)
	defer unsubscribe()

	id := selectObject(t, ctrl, "H1", "host")
	ev, ok := receive(t, msgs).(EventMsg)
	if !ok || ev.Event.Kind != navigator.EventSelectionChanged {
		t.Fatalf("expected a selection event, got %#v", ev)
	}
	if ctrl.Tree().Node(id).Label != ev.Event.Label {
		t.Errorf("event label %q", ev.Event.Label)
	}
}
