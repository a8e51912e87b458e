package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pbaille/memo/internal/auth"
	"github.com/pbaille/memo/internal/domain"
	"github.com/pbaille/memo/internal/executor"
	"github.com/pbaille/memo/internal/intent"
	"github.com/pbaille/memo/internal/pending"
)

const maxUploadSize = 32 << 20

func (s *Server) transcribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	claimed, _ := strconv.ParseInt(r.FormValue("user_id"), 10, 64)
	userID, ok := s.userID(w, r, claimed)
	if !ok {
		return
	}
	if userID <= 0 {
		writeError(w, http.StatusBadRequest, "Missing user_id")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()
	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No selected file")
		return
	}

	path, err := s.saveUpload(file, header.Filename)
	if err != nil {
		s.logger.Error("Failed to save upload", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Transcription failed.")
		return
	}
	s.logger.Info("Upload saved", zap.String("path", path), zap.Int64("user_id", userID))

	audio, err := os.Open(path)
	if err != nil {
		s.logger.Error("Failed to reopen upload", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Transcription failed.")
		return
	}
	defer audio.Close()

	text, err := s.engine.Transcribe(r.Context(), path, audio)
	if err != nil {
		s.logger.Error("Transcription failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Transcription failed.")
		return
	}

	resp, err := s.engine.Process(r.Context(), userID, text)
	if err != nil {
		s.logger.Error("Processing failed", zap.Error(err), zap.String("text", text))
		writeError(w, http.StatusInternalServerError, "Transcription failed.")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// saveUpload stores the upload under a random name keeping its extension.
func (s *Server) saveUpload(src io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(s.uploadDir, uuid.NewString()+strings.ToLower(filepath.Ext(filename)))
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}

// ProcessRequest is the request body for the text pipeline
type ProcessRequest struct {
	UserID ID     `json:"user_id"`
	Text   string `json:"text"`
}

func (s *Server) process(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, ok := s.userID(w, r, int64(req.UserID))
	if !ok {
		return
	}
	if userID <= 0 {
		writeError(w, http.StatusBadRequest, "Missing user_id")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	resp, err := s.engine.Process(r.Context(), userID, req.Text)
	if err != nil {
		if errors.Is(err, executor.ErrMissingFields) {
			writeError(w, http.StatusBadRequest, "Missing required fields")
			return
		}
		s.logger.Error("Processing failed", zap.Error(err), zap.String("text", req.Text))
		writeError(w, http.StatusInternalServerError, "processing failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ClassifyResponse is the response of the classify route
type ClassifyResponse struct {
	Category   domain.Category `json:"category"`
	CategoryID int             `json:"category_id"`
}

func (s *Server) classify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := s.engine.ClassifyCreate(r.Context(), req.Text)
	if err != nil {
		s.logger.Error("Classification failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "processing failed")
		return
	}
	writeJSON(w, http.StatusOK, ClassifyResponse{Category: category, CategoryID: domain.CategoryID(category)})
}

// SaveMemoRequest is the request body of the save routes
type SaveMemoRequest struct {
	UserID     ID     `json:"userID"`
	Title      string `json:"title"`
	CategoryID ID     `json:"category_id"`
	Time       string `json:"time"`
}

// save validates and stores the memo, writing the error response itself.
func (s *Server) save(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var req SaveMemoRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return 0, false
	}

	userID, ok := s.userID(w, r, int64(req.UserID))
	if !ok {
		return 0, false
	}

	now := s.engine.Now()
	ts, ok := intent.ParseTimestamp(req.Time, now)
	if !ok {
		s.logger.Warn("Unparseable memo time, using now", zap.String("time", req.Time))
	}

	_, err := s.engine.Executor().Save(r.Context(), userID, strings.TrimSpace(req.Title), int(req.CategoryID), ts)
	switch {
	case errors.Is(err, executor.ErrMissingFields):
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Missing required fields"})
		return 0, false
	case err != nil:
		s.logger.Error("Failed to save memo", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
		return 0, false
	}
	return userID, true
}

func (s *Server) saveMemo(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.save(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Memo saved successfully"})
}

func (s *Server) saveAndListMemos(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.save(w, r)
	if !ok {
		return
	}

	memos, err := s.engine.Executor().List(r.Context(), userID)
	if err != nil {
		s.logger.Error("Failed to list memos", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
		return
	}

	list := make([]domain.Task, 0, len(memos))
	for _, m := range memos {
		list = append(list, m.AsTask())
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "memos": list})
}

// ConfirmDeleteRequest confirms a pending deletion by token, or replays an
// explicit pending_delete filter.
type ConfirmDeleteRequest struct {
	UserID        ID                `json:"user_id"`
	Token         string            `json:"token"`
	PendingDelete *PendingDeleteDTO `json:"pending_delete"`
}

type PendingDeleteDTO struct {
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
	Keyword   *string         `json:"keyword"`
	Category  domain.Category `json:"category"`
}

func (s *Server) confirmDelete(w http.ResponseWriter, r *http.Request) {
	var req ConfirmDeleteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, ok := s.userID(w, r, int64(req.UserID))
	if !ok {
		return
	}
	if userID <= 0 {
		writeError(w, http.StatusBadRequest, "Missing user_id")
		return
	}

	var (
		n   int64
		err error
	)
	switch {
	case req.Token != "":
		n, err = s.engine.Executor().ConfirmDelete(r.Context(), userID, req.Token)
	case req.PendingDelete != nil:
		d, perr := s.deletionFromDTO(userID, req.PendingDelete)
		if perr != nil {
			writeError(w, http.StatusBadRequest, perr.Error())
			return
		}
		n, err = s.engine.Executor().Delete(r.Context(), d)
	default:
		writeError(w, http.StatusBadRequest, "token or pending_delete is required")
		return
	}

	switch {
	case errors.Is(err, pending.ErrNotFound):
		writeError(w, http.StatusNotFound, "pending deletion not found or expired")
		return
	case err != nil:
		s.logger.Error("Failed to delete memos", zap.Error(err), zap.Int64("user_id", userID))
		writeError(w, http.StatusInternalServerError, "processing failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": n})
}

func (s *Server) deletionFromDTO(userID int64, dto *PendingDeleteDTO) (pending.Deletion, error) {
	loc := s.engine.Now().Location()
	start, err := time.ParseInLocation(domain.TimestampLayout, dto.StartTime, loc)
	if err != nil {
		return pending.Deletion{}, errors.New("invalid start_time")
	}
	end, err := time.ParseInLocation(domain.TimestampLayout, dto.EndTime, loc)
	if err != nil {
		return pending.Deletion{}, errors.New("invalid end_time")
	}
	if !dto.Category.IsDelete() {
		return pending.Deletion{}, errors.New("invalid category")
	}
	return pending.Deletion{
		UserID:    userID,
		StartTime: start,
		EndTime:   end,
		Keyword:   dto.Keyword,
		Category:  dto.Category,
	}, nil
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.login == nil {
		writeError(w, http.StatusServiceUnavailable, "login not configured")
		return
	}

	var req LoginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	acct, err := s.login.Login(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		msg := strings.TrimPrefix(err.Error(), auth.ErrInvalidCredentials.Error()+": ")
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": msg})
		return
	case err != nil:
		s.logger.Error("Login request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "Server error"})
		return
	}

	resp := map[string]any{"success": true}
	if acct.UserID > 0 {
		resp["user_id"] = acct.UserID
		if s.tokens.Enabled() {
			token, err := s.tokens.Generate(acct.UserID)
			if err != nil {
				s.logger.Error("Failed to sign token", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "Server error"})
				return
			}
			resp["token"] = token
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
