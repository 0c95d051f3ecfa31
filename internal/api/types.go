package api

import "fmt"

// Paths of the service contract. The development backend mounts the same
// paths, so both sides share these constants.
const (
	PathUpload       = "/api/upload"
	PathAnalyze      = "/api/document/analyze"
	PathMarkKnown    = "/api/vocabulary/mark-known"
	PathSetLevel     = "/api/vocabulary/set-level"
	PathGenerateQuiz = "/api/quiz/generate"
	PathUpdateStats  = "/api/vocabulary/update-stats"
	PathChatText     = "/api/chat/text"
	PathChatVoice    = "/api/chat/voice"
)

// Multipart field names.
const (
	FieldFile         = "file"
	FieldAudio        = "audio"
	FieldDocumentText = "documentText"
)

// Accepted document MIME types.
const (
	MIMEPDF   = "application/pdf"
	MIMEPlain = "text/plain"
)

// Level is a vocabulary difficulty.
type Level string

const (
	LevelEasy   Level = "easy"
	LevelMedium Level = "medium"
	LevelHard   Level = "hard"
)

// Levels lists the selectable levels in display order.
var Levels = []Level{LevelEasy, LevelMedium, LevelHard}

// ParseLevel validates a level string.
func ParseLevel(s string) (Level, error) {
	for _, l := range Levels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown vocabulary level %q", s)
}

// Description returns the one-line explanation shown next to the level.
func (l Level) Description() string {
	switch l {
	case LevelEasy:
		return "Basic vocabulary suitable for beginners"
	case LevelMedium:
		return "Intermediate vocabulary for regular readers"
	case LevelHard:
		return "Advanced vocabulary for experienced readers"
	}
	return ""
}

// UnfamiliarWord is a vocabulary item the analysis service expects the
// reader not to know.
type UnfamiliarWord struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
	Example    string `json:"example,omitempty"`
}

// QuizQuestion is one multiple-choice question.
type QuizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// VoiceReply is the result of a voice chat turn.
type VoiceReply struct {
	Transcription string `json:"transcription"`
	Response      string `json:"response"`
}

// Request and response bodies.

type UploadResponse struct {
	Text string `json:"text"`
}

type AnalyzeRequest struct {
	Text string `json:"text"`
}

type AnalyzeResponse struct {
	UnfamiliarWords []UnfamiliarWord `json:"unfamiliarWords"`
}

type MarkKnownRequest struct {
	Word string `json:"word"`
}

type SetLevelRequest struct {
	Level Level `json:"level"`
}

type GenerateQuizRequest struct {
	Text string `json:"text"`
}

type GenerateQuizResponse struct {
	Questions []QuizQuestion `json:"questions"`
}

type UpdateStatsRequest struct {
	Word      string `json:"word"`
	IsCorrect bool   `json:"isCorrect"`
}

type ChatTextRequest struct {
	Message      string `json:"message"`
	DocumentText string `json:"documentText"`
}

type ChatTextResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is the body the development backend sends on failure.
// Clients don't depend on it; any non-2xx is treated the same.
type ErrorResponse struct {
	Error string `json:"error"`
}
