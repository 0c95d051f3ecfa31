// Package wizard holds the session state of a learning run and the
// forward-only transition function that moves it from stage to stage.
package wizard

import (
	"errors"
	"fmt"
)

// Stage identifies one step of the guided session.
type Stage string

const (
	StageUpload Stage = "upload"
	StageVocab  Stage = "vocab"
	StageView   Stage = "view"
	StageQuiz   Stage = "quiz"
	StageChat   Stage = "chat"
)

// Stages lists every stage in the order a session walks through them.
var Stages = []Stage{StageUpload, StageVocab, StageView, StageQuiz, StageChat}

// Index returns the zero-based position of s in Stages, or -1.
func (s Stage) Index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// Label returns the human-readable stage name shown in the header.
func (s Stage) Label() string {
	switch s {
	case StageUpload:
		return "Upload"
	case StageVocab:
		return "Vocabulary Level"
	case StageView:
		return "Read"
	case StageQuiz:
		return "Quiz"
	case StageChat:
		return "Chat"
	default:
		return string(s)
	}
}

// RequiresDocument reports whether a stage can only be mounted once a
// document has been loaded.
func (s Stage) RequiresDocument() bool {
	return s == StageView || s == StageQuiz || s == StageChat
}

// Document is the extracted text and display name produced by the upload
// stage. It is never modified after creation.
type Document struct {
	Text string
	Name string
}

// State is the session state owned by the stage controller.
type State struct {
	Stage    Stage
	Document *Document
}

// Initial returns the state a new session starts in.
func Initial() State {
	return State{Stage: StageUpload}
}

// ErrIllegalTransition is returned when an event does not apply to the
// current state.
var ErrIllegalTransition = errors.New("illegal stage transition")

// Event is a completion signal emitted by the active stage.
type Event interface {
	// From is the stage that must be active for the event to apply.
	From() Stage
}

// UploadCompleted carries the document produced by the upload stage.
type UploadCompleted struct {
	Document Document
}

// VocabCompleted signals the vocabulary level was saved.
type VocabCompleted struct{}

// ViewCompleted signals the reader finished the annotated document.
type ViewCompleted struct{}

// QuizCompleted signals the last quiz question was dismissed.
type QuizCompleted struct{}

func (UploadCompleted) From() Stage { return StageUpload }
func (VocabCompleted) From() Stage  { return StageVocab }
func (ViewCompleted) From() Stage   { return StageView }
func (QuizCompleted) From() Stage   { return StageQuiz }

// Reduce applies ev to s. On error the returned state equals s.
func Reduce(s State, ev Event) (State, error) {
	if ev == nil {
		return s, fmt.Errorf("%w: nil event", ErrIllegalTransition)
	}
	if s.Stage != ev.From() {
		return s, fmt.Errorf("%w: %T while in %s", ErrIllegalTransition, ev, s.Stage)
	}

	switch e := ev.(type) {
	case UploadCompleted:
		doc := e.Document
		return State{Stage: StageVocab, Document: &doc}, nil
	case VocabCompleted:
		return State{Stage: StageView, Document: s.Document}, nil
	case ViewCompleted:
		if s.Document == nil {
			return s, fmt.Errorf("%w: no document loaded", ErrIllegalTransition)
		}
		return State{Stage: StageQuiz, Document: s.Document}, nil
	case QuizCompleted:
		if s.Document == nil {
			return s, fmt.Errorf("%w: no document loaded", ErrIllegalTransition)
		}
		return State{Stage: StageChat, Document: s.Document}, nil
	}

	return s, fmt.Errorf("%w: unknown event %T", ErrIllegalTransition, ev)
}
