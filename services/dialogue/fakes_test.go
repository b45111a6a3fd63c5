package dialogue

import (
	"context"
	"errors"
	"sync"

	bookingRepo "bookingbot/database/repository/booking"
	"bookingbot/models"
)

type fakeBookings struct {
	mu       sync.Mutex
	saves    int
	saveErr  error
	bookings map[string]*models.Booking
	nextID   string
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{bookings: map[string]*models.Booking{}, nextID: "AB12CD34"}
}

func (f *fakeBookings) Save(_ context.Context, b models.Booking) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return "", f.saveErr
	}
	b.ID = f.nextID
	f.bookings[b.ID] = &b
	return b.ID, nil
}

func (f *fakeBookings) GetByID(_ context.Context, id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) Cancel(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.Status = models.StatusCancelled
	return nil
}

type sentMessage struct{ to, body string }

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeNotifier) SendText(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{to, body})
	return f.err
}

func (f *fakeNotifier) sentTo(to string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.sent {
		if m.to == to {
			n++
		}
	}
	return n
}

type fakeQR struct {
	calls  int
	amount int
	err    error
}

func (f *fakeQR) GenerateQR(_ context.Context, bookingID string, amount int, _ string) (string, error) {
	f.calls++
	f.amount = amount
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example/qr/" + bookingID + ".png", nil
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f fakeTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	return f.text, f.err
}

var errBoom = errors.New("boom")
