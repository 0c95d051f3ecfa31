// Package voice captures short microphone clips for spoken chat turns.
package voice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
)

var (
	// ErrAlreadyRecording is returned by Start while a session is open.
	ErrAlreadyRecording = errors.New("voice: already recording")
	// ErrEmptyRecording is returned by Stop when no audio was captured.
	ErrEmptyRecording = errors.New("voice: empty recording")
	// ErrNoRecorder is returned when no capture command is configured.
	ErrNoRecorder = errors.New("voice: no recorder configured")
)

// DefaultCommand records 16 kHz mono WAV with ALSA until interrupted.
const DefaultCommand = "arecord -q -f S16_LE -r 16000 -c 1 -t wav {file}"

// FilePlaceholder is replaced by the output path in command arguments.
const FilePlaceholder = "{file}"

// Recorder acquires the microphone.
type Recorder interface {
	Start(ctx context.Context) (Session, error)
}

// Session is one open capture. Stop finalizes the clip and releases the
// device. Close releases the device and discards audio; it is safe to call
// after Stop and more than once.
type Session interface {
	Stop() ([]byte, error)
	Close() error
}

// ExecRecorder records by running an external capture program that writes
// a WAV file and exits on SIGINT.
type ExecRecorder struct {
	name string
	args []string

	mu     sync.Mutex
	active bool
}

// NewExecRecorder parses a command line such as DefaultCommand. When no
// argument contains FilePlaceholder the output path is appended.
func NewExecRecorder(cmdline string) (*ExecRecorder, error) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return nil, ErrNoRecorder
	}
	return NewExecRecorderArgs(fields[0], fields[1:]...), nil
}

// NewExecRecorderArgs builds a recorder from an explicit argv.
func NewExecRecorderArgs(name string, args ...string) *ExecRecorder {
	hasFile := false
	for _, a := range args {
		if strings.Contains(a, FilePlaceholder) {
			hasFile = true
			break
		}
	}
	if !hasFile {
		args = append(append([]string(nil), args...), FilePlaceholder)
	}
	return &ExecRecorder{name: name, args: args}
}

// Start launches the capture program. The program is killed if ctx is
// cancelled before Stop.
func (r *ExecRecorder) Start(ctx context.Context) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active {
		return nil, ErrAlreadyRecording
	}

	f, err := os.CreateTemp("", "mindsync-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create clip file: %w", err)
	}
	path := f.Name()
	f.Close()

	args := make([]string, len(r.args))
	for i, a := range r.args {
		args[i] = strings.ReplaceAll(a, FilePlaceholder, path)
	}

	cmd := exec.CommandContext(ctx, r.name, args...)
	if err := cmd.Start(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("start %s: %w", r.name, err)
	}

	r.active = true
	s := &execSession{rec: r, cmd: cmd, path: path, done: make(chan struct{})}
	go s.wait()
	return s, nil
}

func (r *ExecRecorder) release() {
	r.mu.Lock()
	r.active = false
	r.mu.Unlock()
}

type execSession struct {
	rec  *ExecRecorder
	cmd  *exec.Cmd
	path string

	done    chan struct{}
	waitErr error

	once   sync.Once
	closed bool
	mu     sync.Mutex
}

func (s *execSession) wait() {
	s.waitErr = s.cmd.Wait()
	close(s.done)
}

// Stop interrupts the capture program, waits for it to flush the file and
// returns the clip.
func (s *execSession) Stop() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrEmptyRecording
	}
	defer s.finish()

	if err := s.cmd.Process.Signal(os.Interrupt); err != nil && !errors.Is(err, os.ErrProcessDone) {
		_ = s.cmd.Process.Kill()
	}
	<-s.done

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read clip: %w", err)
	}
	if len(data) == 0 {
		if s.waitErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrEmptyRecording, s.waitErr)
		}
		return nil, ErrEmptyRecording
	}
	return data, nil
}

// Close kills the capture program if it is still running and removes the
// clip file.
func (s *execSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	defer s.finish()

	select {
	case <-s.done:
	default:
		_ = s.cmd.Process.Kill()
		<-s.done
	}
	return nil
}

func (s *execSession) finish() {
	s.once.Do(func() {
		s.closed = true
		os.Remove(s.path)
		s.rec.release()
	})
}
