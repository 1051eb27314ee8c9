package jobs

import (
	"testing"
	"time"
)

func TestBroadcasterFanout(t *testing.T) {
	b := NewBroadcaster()
	id1, ch1 := b.Subscribe()
	_, ch2 := b.Subscribe()

	b.Publish(Event{Type: EventProgress, Message: "step 1"})
	b.Publish(Event{Type: EventProgress, Message: "step 2"})
	b.Close(Event{Type: EventCompleted, SceneCount: 3})

	for name, ch := range map[string]<-chan Event{"first": ch1, "second": ch2} {
		var got []Event
		for ev := range ch {
			got = append(got, ev)
		}
		if len(got) != 3 {
			t.Fatalf("%s subscriber got %d events, want 3", name, len(got))
		}
		if got[0].Message != "step 1" || got[1].Message != "step 2" {
			t.Errorf("%s subscriber events out of order: %+v", name, got)
		}
		if got[2].Type != EventCompleted {
			t.Errorf("%s subscriber terminal event = %s", name, got[2].Type)
		}
	}

	// Unsubscribe after close must not panic.
	b.Unsubscribe(id1)
}

func TestBroadcasterUnsubscribeDoesNotAffectOthers(t *testing.T) {
	b := NewBroadcaster()
	id1, ch1 := b.Subscribe()
	_, ch2 := b.Subscribe()

	b.Unsubscribe(id1)
	if _, ok := <-ch1; ok {
		t.Error("unsubscribed channel should be closed")
	}

	b.Publish(Event{Type: EventProgress, Message: "still flowing"})
	b.Close(Event{Type: EventFailed, Error: "boom"})

	var got []Event
	for ev := range ch2 {
		got = append(got, ev)
	}
	if len(got) != 2 || got[1].Type != EventFailed {
		t.Fatalf("remaining subscriber events = %+v", got)
	}
}

func TestBroadcasterSubscribeAfterClose(t *testing.T) {
	b := NewBroadcaster()
	b.Close(Event{Type: EventCompleted, SceneCount: 1})

	_, ch := b.Subscribe()
	ev, ok := <-ch
	if !ok || ev.Type != EventCompleted {
		t.Fatalf("late subscriber event = %+v (ok=%v), want the terminal event", ev, ok)
	}
	if _, ok := <-ch; ok {
		t.Error("channel must close after the terminal event")
	}

	// Publishing after close is a no-op.
	b.Publish(Event{Type: EventProgress})
	b.Close(Event{Type: EventFailed})
}

func TestBroadcasterSaturatedSubscriberStillGetsTerminal(t *testing.T) {
	b := NewBroadcaster()
	_, ch := b.Subscribe()

	// Saturate the buffer without reading.
	for i := 0; i < subscriberBuffer+10; i++ {
		b.Publish(Event{Type: EventProgress, Message: "flood"})
	}
	b.Close(Event{Type: EventCompleted, SceneCount: 9})

	var last Event
	count := 0
	for ev := range ch {
		last = ev
		count++
	}
	if last.Type != EventCompleted || last.SceneCount != 9 {
		t.Fatalf("last event = %+v, want the terminal event", last)
	}
	if count > subscriberBuffer {
		t.Errorf("received %d events from a buffer of %d", count, subscriberBuffer)
	}
}

// A reader draining its channel while Close runs can empty the buffer
// between Close's send attempts. Close must still return and the reader
// must still end on the terminal event.
func TestBroadcasterCloseWithConcurrentReader(t *testing.T) {
	for i := 0; i < 50; i++ {
		b := NewBroadcaster()
		_, ch := b.Subscribe()
		for j := 0; j < subscriberBuffer; j++ {
			b.Publish(Event{Type: EventProgress, Message: "flood"})
		}

		last := make(chan Event, 1)
		go func() {
			var ev Event
			for ev = range ch {
			}
			last <- ev
		}()

		closed := make(chan struct{})
		go func() {
			b.Close(Event{Type: EventCompleted, SceneCount: 4})
			close(closed)
		}()

		select {
		case <-closed:
		case <-time.After(5 * time.Second):
			t.Fatal("Close did not return while a reader was draining")
		}
		if ev := <-last; ev.Type != EventCompleted {
			t.Fatalf("last event = %+v, want the terminal event", ev)
		}
	}
}
