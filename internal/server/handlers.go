package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mindsync-ai/mindsync/internal/api"
	"github.com/mindsync-ai/mindsync/internal/extract"
)

// multipartMemory is how much of a multipart body is kept in memory
// before spilling to temp files.
const multipartMemory = 8 << 20

func (s *Server) limitBody(w http.ResponseWriter, r *http.Request) error {
	if r.ContentLength > s.opts.MaxUploadBytes {
		return &http.MaxBytesError{Limit: s.opts.MaxUploadBytes}
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	return nil
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := s.limitBody(w, r); err != nil {
		s.fail(w, r, err)
		return
	}

	file, header, err := r.FormFile(api.FieldFile)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, err)
			return
		}
		s.fail(w, r, badRequest("missing %q file field", api.FieldFile))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.fail(w, r, fmt.Errorf("read upload: %w", err))
		return
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	contentType, err := extract.Detect(header.Filename, header.Header.Get("Content-Type"), head)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	text, err := extract.Text(contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.logger.Info("document extracted",
		zap.String("file", header.Filename),
		zap.String("type", contentType),
		zap.Int("bytes", len(data)),
		zap.Int("chars", len(text)),
	)
	writeJSON(w, http.StatusOK, api.UploadResponse{Text: text})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req api.AnalyzeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	words, err := s.tutor.Analyze(r.Context(), req.Text)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if words == nil {
		words = []api.UnfamiliarWord{}
	}
	writeJSON(w, http.StatusOK, api.AnalyzeResponse{UnfamiliarWords: words})
}

func (s *Server) handleMarkKnown(w http.ResponseWriter, r *http.Request) {
	var req api.MarkKnownRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.Word) == "" {
		s.fail(w, r, badRequest("word is required"))
		return
	}

	if err := s.profile.AddKnownWord(r.Context(), req.Word); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetLevel(w http.ResponseWriter, r *http.Request) {
	var req api.SetLevelRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	level, err := api.ParseLevel(string(req.Level))
	if err != nil {
		s.fail(w, r, badRequest("%v", err))
		return
	}

	if err := s.profile.SetLevel(r.Context(), string(level)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req api.GenerateQuizRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	questions, err := s.tutor.GenerateQuiz(r.Context(), req.Text)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.GenerateQuizResponse{Questions: questions})
}

func (s *Server) handleUpdateStats(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateStatsRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.Word) == "" {
		s.fail(w, r, badRequest("word is required"))
		return
	}

	if err := s.profile.RecordAnswer(r.Context(), req.Word, req.IsCorrect); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChatText(w http.ResponseWriter, r *http.Request) {
	var req api.ChatTextRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	reply, err := s.tutor.Chat(r.Context(), req.Message, req.DocumentText)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.ChatTextResponse{Response: reply})
}

func (s *Server) handleChatVoice(w http.ResponseWriter, r *http.Request) {
	if err := s.limitBody(w, r); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, err)
			return
		}
		s.fail(w, r, badRequest("invalid multipart body: %v", err))
		return
	}

	file, header, err := r.FormFile(api.FieldAudio)
	if err != nil {
		s.fail(w, r, badRequest("missing %q file field", api.FieldAudio))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		s.fail(w, r, fmt.Errorf("read audio: %w", err))
		return
	}

	reply, err := s.tutor.Voice(r.Context(), audio, header.Filename, r.FormValue(api.FieldDocumentText))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Ping != nil {
		if err := s.opts.Ping(r.Context()); err != nil {
			s.logger.Error("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, api.ErrorResponse{Error: "unhealthy"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
