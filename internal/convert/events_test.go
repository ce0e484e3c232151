package convert

import (
	"errors"
	"sync"
	"testing"
)

func drain(ch <-chan Event) []Event {
	var out []Event
	for ev := range ch {
		out = append(out, ev)
	}
	return out
}

func TestEmitterReservesTerminalSlot(t *testing.T) {
	emit := NewEmitter(3)
	sent := 0
	for i := range 10 {
		if emit.Processing("f", i, 10) {
			sent++
		}
	}
	if sent != 2 {
		t.Fatalf("expected 2 processing events to fit, got %d", sent)
	}
	emit.Fail(errors.New("boom"))
	emit.Finish()

	events := drain(emit.Events())
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	last := events[len(events)-1]
	if last.Kind != EventFailed || last.Err == nil {
		t.Fatalf("expected single failed terminal event, got %+v", last)
	}
}

func TestEmitterIgnoresProcessingAfterTerminal(t *testing.T) {
	emit := NewEmitter(8)
	emit.Finish()
	if emit.Processing("late", 0, 1) {
		t.Fatal("processing after terminal must be dropped")
	}
	events := drain(emit.Events())
	if len(events) != 1 || events[0].Kind != EventFinished {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestNilEmitterIsSafe(t *testing.T) {
	var emit *Emitter
	emit.Processing("x", 0, 1)
	emit.Finish()
	emit.Fail(errors.New("x"))
}

func TestEmitterConcurrentProducersSendOneTerminal(t *testing.T) {
	emit := NewEmitter(8)
	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 10 {
				emit.Processing("capture.flac", i*10+j, 40)
			}
			emit.Finish()
		}()
	}

	terminals := 0
	for ev := range emit.Events() {
		if ev.Terminal() {
			terminals++
		}
	}
	wg.Wait()
	if terminals != 1 {
		t.Fatalf("expected exactly one terminal event, got %d", terminals)
	}
}
