package voice

import (
	"context"
	"sync"
)

// FakeRecorder is an in-memory Recorder for tests. Every session returns
// Clip from Stop.
type FakeRecorder struct {
	Clip     []byte
	StartErr error
	StopErr  error

	mu     sync.Mutex
	active bool
	Starts int
	Stops  int
	Closes int
}

// Start opens a fake session.
func (f *FakeRecorder) Start(ctx context.Context) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StartErr != nil {
		return nil, f.StartErr
	}
	if f.active {
		return nil, ErrAlreadyRecording
	}
	f.active = true
	f.Starts++
	return &fakeSession{rec: f}, nil
}

// Active reports whether a session currently holds the fake microphone.
func (f *FakeRecorder) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

type fakeSession struct {
	rec  *FakeRecorder
	done bool
}

func (s *fakeSession) Stop() ([]byte, error) {
	f := s.rec
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.done {
		return nil, ErrEmptyRecording
	}
	s.done = true
	f.active = false
	f.Stops++
	if f.StopErr != nil {
		return nil, f.StopErr
	}
	return append([]byte(nil), f.Clip...), nil
}

func (s *fakeSession) Close() error {
	f := s.rec
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.done {
		return nil
	}
	s.done = true
	f.active = false
	f.Closes++
	return nil
}
