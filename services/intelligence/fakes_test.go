package ai

import (
	"context"
	"sync"
	"time"
)

type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	reply string
	err   error
	delay time.Duration
	last  GenerateRequest
}

func (f *fakeGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	f.mu.Lock()
	f.calls++
	f.last = req
	reply, err, delay := f.reply, f.err, f.delay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	return reply, err
}

func (f *fakeGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
