package channel

import (
	"encoding/json"
	"testing"
)

func TestMemChannel_DeliverInvokesSubscriber(t *testing.T) {
	ch := NewMem()

	var got json.RawMessage
	ch.Subscribe("ping", func(data json.RawMessage) { got = data })

	if err := ch.Deliver("ping", map[string]int{"n": 1}); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if string(got) != `{"n":1}` {
		t.Fatalf("expected payload delivered, got %s", got)
	}
}

func TestMemChannel_DeliverWithoutSubscriberIsNoop(t *testing.T) {
	ch := NewMem()
	if err := ch.Deliver("nobody-home", nil); err != nil {
		t.Fatalf("deliver: %v", err)
	}
}

func TestMemChannel_UnsubscribeStopsDelivery(t *testing.T) {
	ch := NewMem()

	calls := 0
	ch.Subscribe("ping", func(json.RawMessage) { calls++ })
	ch.Deliver("ping", nil)
	ch.Unsubscribe("ping")
	ch.Deliver("ping", nil)

	if calls != 1 {
		t.Fatalf("expected 1 delivery, got %d", calls)
	}
}

func TestMemChannel_RecordsEmissions(t *testing.T) {
	ch := NewMem()

	if err := ch.Emit("guess", map[string]string{"song": "x"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if err := ch.Emit("kick", nil); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if n := len(ch.Emitted()); n != 2 {
		t.Fatalf("expected 2 recorded emissions, got %d", n)
	}
	if n := len(ch.EmittedNamed("guess")); n != 1 {
		t.Fatalf("expected 1 guess emission, got %d", n)
	}
}

func TestMemChannel_EmitAfterCloseFails(t *testing.T) {
	ch := NewMem()
	ch.Close()
	if err := ch.Emit("guess", nil); err == nil {
		t.Fatalf("expected emit on closed channel to fail")
	}
}
