package llm

import (
	"context"
	"errors"
	"fmt"
)

// Transcriber turns recorded speech into text.
type Transcriber interface {
	// Transcribe returns the spoken text of audio. filename carries the
	// container format (e.g. "recording.wav") for providers that need it.
	Transcribe(ctx context.Context, audio []byte, filename string) (*Transcription, error)
}

// Transcription is the result of a speech-to-text request.
type Transcription struct {
	Text  string
	Model string
	Usage Usage
}

// ErrTranscriptionUnsupported is returned when the configured provider has
// no speech-to-text capability.
var ErrTranscriptionUnsupported = errors.New("provider does not support transcription")

// transcribe forwards to p when it can transcribe.
func transcribe(ctx context.Context, p Provider, audio []byte, filename string) (*Transcription, error) {
	t, ok := p.(Transcriber)
	if !ok {
		return nil, fmt.Errorf("%s: %w", p.ModelID(), ErrTranscriptionUnsupported)
	}
	return t.Transcribe(ctx, audio, filename)
}
