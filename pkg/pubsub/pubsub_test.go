package pubsub

import (
	"context"
	"testing"
	"time"
)

// TestPubSub_PublishSubscribe tests basic delivery to one subscriber
func TestPubSub_PublishSubscribe(t *testing.T) {
	ps := New()
	defer ps.Shutdown()

	sub := ps.Subscribe(context.Background(), "congestion.threshold")
	if sub == nil {
		t.Fatal("Subscribe returned nil")
	}

	ps.Publish("congestion.threshold", "edge-7")

	select {
	case msg := <-sub.Channel():
		if msg != "edge-7" {
			t.Errorf("got message %v, want edge-7", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

// TestPubSub_TopicIsolation tests that topics do not cross-deliver
func TestPubSub_TopicIsolation(t *testing.T) {
	ps := New()
	defer ps.Shutdown()

	subA := ps.Subscribe(context.Background(), "topic.a")
	ps.Publish("topic.b", "message")

	select {
	case msg := <-subA.Channel():
		t.Errorf("topic.a received message %v published to topic.b", msg)
	case <-time.After(50 * time.Millisecond):
		// Expected: nothing delivered
	}
}

// TestPubSub_MultipleSubscribers tests fan-out
func TestPubSub_MultipleSubscribers(t *testing.T) {
	ps := New()
	defer ps.Shutdown()

	sub1 := ps.Subscribe(context.Background(), "events")
	sub2 := ps.Subscribe(context.Background(), "events")

	if n := ps.SubscriberCount("events"); n != 2 {
		t.Fatalf("SubscriberCount = %d, want 2", n)
	}

	ps.Publish("events", 1)

	for i, sub := range []*Subscription{sub1, sub2} {
		select {
		case msg := <-sub.Channel():
			if msg != 1 {
				t.Errorf("subscriber %d got %v, want 1", i, msg)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d timed out", i)
		}
	}
}

// TestPubSub_Unsubscribe tests that unsubscribed channels close
func TestPubSub_Unsubscribe(t *testing.T) {
	ps := New()
	defer ps.Shutdown()

	sub := ps.Subscribe(context.Background(), "events")
	sub.Unsubscribe()

	if n := ps.SubscriberCount("events"); n != 0 {
		t.Errorf("SubscriberCount = %d after Unsubscribe, want 0", n)
	}

	select {
	case _, open := <-sub.Channel():
		if open {
			t.Error("channel still open after Unsubscribe")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after Unsubscribe")
	}

	// Unsubscribing again must not panic
	sub.Unsubscribe()
}

// TestPubSub_ContextCancellation tests subscription teardown via context
func TestPubSub_ContextCancellation(t *testing.T) {
	ps := New()
	defer ps.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	sub := ps.Subscribe(ctx, "events")
	cancel()

	deadline := time.After(time.Second)
	for {
		if ps.SubscriberCount("events") == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("subscription not removed after context cancellation")
		case <-time.After(5 * time.Millisecond):
		}
	}

	select {
	case _, open := <-sub.Channel():
		if open {
			t.Error("channel still open after context cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after context cancellation")
	}
}

// TestPubSub_Shutdown tests full teardown behavior
func TestPubSub_Shutdown(t *testing.T) {
	ps := New()
	sub := ps.Subscribe(context.Background(), "events")

	ps.Shutdown()

	select {
	case _, open := <-sub.Channel():
		if open {
			t.Error("channel still open after Shutdown")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after Shutdown")
	}

	// Post-shutdown use must be safe no-ops
	if got := ps.Subscribe(context.Background(), "events"); got != nil {
		t.Error("Subscribe after Shutdown returned a subscription")
	}
	ps.Publish("events", "dropped")
	ps.Shutdown()
}

// TestPubSub_NonBlockingPublish tests that a full buffer never blocks Publish
func TestPubSub_NonBlockingPublish(t *testing.T) {
	ps := New()
	defer ps.Shutdown()

	ps.Subscribe(context.Background(), "events")

	done := make(chan struct{})
	go func() {
		// Overflow the subscription buffer without draining it
		for i := 0; i < subscriptionBuffer*2; i++ {
			ps.Publish("events", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber buffer")
	}
}
