package session

import (
	"context"
	"errors"
	"testing"

	"bookingbot/models"
)

func TestMemoryStore_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	s, err := st.GetOrCreate(ctx, "abc", "")
	if err != nil {
		t.Fatal(err)
	}
	if s.Stage != models.StageIdle || s.Slots.Keys() != nil {
		t.Errorf("new session = %+v", s)
	}

	s.Stage = models.StageCollecting
	if err := st.Save(ctx, s); err != nil {
		t.Fatal(err)
	}
	again, _ := st.GetOrCreate(ctx, "abc", "")
	if again.Stage != models.StageCollecting {
		t.Errorf("stage = %q after save", again.Stage)
	}
	if st.Len() != 1 {
		t.Errorf("Len = %d", st.Len())
	}
}

func TestMemoryStore_SeedPhoneOnce(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	s, _ := st.GetOrCreate(ctx, "abc", "+91 9876543210")
	if s.Slots.CountryCode != "+91" || s.Slots.Phone != "9876543210" {
		t.Fatalf("seeded slots = %+v", s.Slots)
	}

	s, _ = st.GetOrCreate(ctx, "abc", "+1 5551234567")
	if s.Slots.Phone != "9876543210" {
		t.Errorf("second seed overwrote phone: %+v", s.Slots)
	}
}

func TestMemoryStore_SeedIgnoresGarbage(t *testing.T) {
	s, _ := NewMemoryStore().GetOrCreate(context.Background(), "x", "n/a")
	if s.Slots.Phone != "" {
		t.Errorf("phone = %q", s.Slots.Phone)
	}
}

func TestMemoryStore_EmptyID(t *testing.T) {
	if _, err := NewMemoryStore().GetOrCreate(context.Background(), "", ""); !errors.Is(err, ErrEmptySessionID) {
		t.Errorf("err = %v", err)
	}
}
