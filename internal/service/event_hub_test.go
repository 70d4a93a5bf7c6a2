package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/lms-admin-mock/internal/model"
	"github.com/stemsi/lms-admin-mock/internal/store"
)

func TestEventHub_FanOut(t *testing.T) {
	hub := NewEventHub(4, zerolog.Nop())

	a, cancelA := hub.Subscribe()
	b, cancelB := hub.Subscribe()
	defer cancelB()

	if hub.Subscribers() != 2 {
		t.Fatalf("Subscribers() = %d, want 2", hub.Subscribers())
	}

	ev := model.ChangeEvent{Collection: "exams", Action: model.ChangeCreated, RecordID: "r1", At: time.Now()}
	hub.Publish(ev)

	for name, ch := range map[string]<-chan model.ChangeEvent{"a": a, "b": b} {
		select {
		case got := <-ch:
			if got.RecordID != "r1" {
				t.Errorf("%s got %+v", name, got)
			}
		default:
			t.Errorf("%s received nothing", name)
		}
	}

	cancelA()
	cancelA()
	if _, ok := <-a; ok {
		t.Error("channel not closed after cancel")
	}
	if hub.Subscribers() != 1 {
		t.Errorf("Subscribers() = %d, want 1", hub.Subscribers())
	}
}

func TestEventHub_SlowSubscriberDrops(t *testing.T) {
	hub := NewEventHub(1, zerolog.Nop())
	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Publish(model.ChangeEvent{RecordID: "first"})
	hub.Publish(model.ChangeEvent{RecordID: "second"})

	if got := <-ch; got.RecordID != "first" {
		t.Errorf("got %q, want first", got.RecordID)
	}
	select {
	case got := <-ch:
		t.Errorf("unexpected buffered event %+v", got)
	default:
	}
}

func TestEventHub_ReceivesServiceWrites(t *testing.T) {
	hub := NewEventHub(8, zerolog.Nop())
	ch, cancel := hub.Subscribe()
	defer cancel()

	svc := NewWebinarService(store.NewMemoryStorage(), testKeys, 0, hub, zerolog.Nop())
	ctx := context.Background()

	rec, err := svc.Create(ctx, model.Payload{"title": "Intro to Go"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	want := []model.ChangeAction{model.ChangeCreated, model.ChangeDeleted}
	for _, action := range want {
		got := <-ch
		if got.Action != action || got.RecordID != rec.ID || got.Collection != testKeys.Webinars() {
			t.Errorf("event = %+v, want %s on %s", got, action, rec.ID)
		}
	}
}

func TestPublishers(t *testing.T) {
	a, b := &recordingPublisher{}, &recordingPublisher{}
	Publishers{a, b}.Publish(model.ChangeEvent{RecordID: "r1"})

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("events = %d, %d, want 1 each", len(a.events), len(b.events))
	}
}
