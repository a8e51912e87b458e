package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pbaille/memo/internal/assistant"
	"github.com/pbaille/memo/internal/auth"
	"github.com/pbaille/memo/internal/classifier"
	"github.com/pbaille/memo/internal/executor"
	"github.com/pbaille/memo/internal/langdetect"
	"github.com/pbaille/memo/internal/pending"
	"github.com/pbaille/memo/internal/store"
)

var cst = time.FixedZone("CST", 8*3600)

type echoSpeech struct{}

func (echoSpeech) Transcribe(_ context.Context, _ string, audio io.Reader) (string, error) {
	b, err := io.ReadAll(audio)
	return string(b), err
}

type testServer struct {
	*httptest.Server
	tokens *auth.Tokens
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "memo.db"), cst, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	now := time.Date(2025, 1, 10, 9, 0, 0, 0, cst)
	exec := executor.New(s, pending.NewMemory(0), nil, zap.NewNop())
	engine := assistant.New(classifier.NewRules(), langdetect.New(), exec, zap.NewNop(),
		assistant.WithClock(func() time.Time { return now }),
		assistant.WithSpeech(echoSpeech{}),
	)

	if opts.Tokens == nil {
		opts.Tokens = auth.NewTokens("test-secret", time.Hour)
	}
	if opts.UploadDir == "" {
		opts.UploadDir = t.TempDir()
	}
	srv := httptest.NewServer(New(engine, opts, zap.NewNop()).Handler())
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, tokens: opts.Tokens}
}

func (ts *testServer) post(t *testing.T, path string, body any, header ...string) (int, map[string]any) {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	return do(t, req)
}

func do(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s response: %v", req.URL.Path, err)
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("status = %d, headers = %v", resp.StatusCode, resp.Header)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.post(t, "/process", map[string]any{"user_id": 1, "text": "买牛奶"})

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "memo_actions_total") {
		t.Errorf("metrics missing action counter")
	}
}

func TestProcessCreate(t *testing.T) {
	ts := newTestServer(t, Options{})

	status, body := ts.post(t, "/process", map[string]any{"user_id": "1", "text": "明天下午3点要交报告"})
	if status != http.StatusOK {
		t.Fatalf("status = %d body = %v", status, body)
	}
	if body["category"] != "Work" || body["time"] != "2025-01-11 15:00:00" || body["category_id"] != float64(2) {
		t.Errorf("body = %v", body)
	}
	if body["memo_id"] == nil {
		t.Error("memo_id missing")
	}
}

func TestProcessValidation(t *testing.T) {
	ts := newTestServer(t, Options{})

	tests := []struct {
		name string
		body any
		want int
	}{
		{"missing user", map[string]any{"text": "买牛奶"}, http.StatusBadRequest},
		{"empty text", map[string]any{"user_id": 1, "text": "  "}, http.StatusBadRequest},
		{"bad id", map[string]any{"user_id": "abc", "text": "买牛奶"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status, body := ts.post(t, "/process", tt.body); status != tt.want {
				t.Errorf("status = %d, want %d (%v)", status, tt.want, body)
			}
		})
	}
}

func TestBearerTokenOverridesClaimedUser(t *testing.T) {
	ts := newTestServer(t, Options{})
	tok, err := ts.tokens.Generate(7)
	if err != nil {
		t.Fatal(err)
	}

	status, _ := ts.post(t, "/save_memo",
		map[string]any{"userID": 1, "title": "买牛奶", "category_id": 3, "time": "2025-01-10 18:00:00"},
		"Authorization", "Bearer "+tok)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}

	status, body := ts.post(t, "/save_and_list_memos",
		map[string]any{"userID": 7, "title": "健身", "category_id": 3})
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if memos := body["memos"].([]any); len(memos) != 2 {
		t.Errorf("user 7 memos = %v", memos)
	}

	status, _ = ts.post(t, "/process", map[string]any{"user_id": 1, "text": "买牛奶"},
		"Authorization", "Bearer not-a-token")
	if status != http.StatusUnauthorized {
		t.Errorf("bad token status = %d", status)
	}
}

func TestSaveMemoMissingFields(t *testing.T) {
	ts := newTestServer(t, Options{})

	status, body := ts.post(t, "/save_memo", map[string]any{"userID": 1, "title": ""})
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d", status)
	}
	if body["success"] != false || body["error"] != "Missing required fields" {
		t.Errorf("body = %v", body)
	}
}

func TestSaveAndListMemos(t *testing.T) {
	ts := newTestServer(t, Options{})

	ts.post(t, "/save_memo", map[string]any{"userID": 2, "title": "交报告", "category_id": 2, "time": "2025-01-11 15:00:00"})
	status, body := ts.post(t, "/save_and_list_memos",
		map[string]any{"userID": 2, "title": "买牛奶", "category_id": "3", "time": "garbage"})
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("status = %d body = %v", status, body)
	}

	memos := body["memos"].([]any)
	if len(memos) != 2 {
		t.Fatalf("memos = %v", memos)
	}
	first := memos[0].(map[string]any)
	if first["text"] != "交报告" || first["timestamp"] != "2025-01-11 15:00:00" {
		t.Errorf("newest first violated: %v", memos)
	}
	second := memos[1].(map[string]any)
	if second["timestamp"] != "2025-01-10 09:00:00" {
		t.Errorf("unparseable time did not fall back to now: %v", second)
	}
}

func TestConfirmDeleteByToken(t *testing.T) {
	ts := newTestServer(t, Options{})

	ts.post(t, "/save_memo", map[string]any{"userID": 1, "title": "项目会议", "category_id": 2, "time": "2025-06-23 10:00:00"})
	ts.post(t, "/save_memo", map[string]any{"userID": 1, "title": "健身", "category_id": 3, "time": "2025-06-23 18:00:00"})

	status, body := ts.post(t, "/process", map[string]any{"user_id": 1, "text": "6月23号删除会议"})
	if status != http.StatusOK || body["need_confirm"] != true {
		t.Fatalf("status = %d body = %v", status, body)
	}
	token, _ := body["confirm_token"].(string)
	if token == "" {
		t.Fatalf("no token in %v", body)
	}

	if status, _ := ts.post(t, "/confirm_delete", map[string]any{"user_id": 2, "token": token}); status != http.StatusNotFound {
		t.Errorf("foreign confirm status = %d", status)
	}

	_, body = ts.post(t, "/process", map[string]any{"user_id": 1, "text": "6月23号删除会议"})
	token, _ = body["confirm_token"].(string)
	status, body = ts.post(t, "/confirm_delete", map[string]any{"user_id": 1, "token": token})
	if status != http.StatusOK || body["deleted"] != float64(1) {
		t.Errorf("status = %d body = %v", status, body)
	}

	if status, _ := ts.post(t, "/confirm_delete", map[string]any{"user_id": 1, "token": token}); status != http.StatusNotFound {
		t.Errorf("replayed token status = %d", status)
	}
}

func TestConfirmDeleteByFilter(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.post(t, "/save_memo", map[string]any{"userID": 1, "title": "a", "category_id": 1, "time": "2025-02-01 08:00:00"})
	ts.post(t, "/save_memo", map[string]any{"userID": 1, "title": "b", "category_id": 1, "time": "2025-02-02 08:00:00"})

	status, body := ts.post(t, "/confirm_delete", map[string]any{
		"user_id": 1,
		"pending_delete": map[string]any{
			"start_time": "2000-01-01 00:00:00",
			"end_time":   "2100-12-31 23:59:59",
			"keyword":    nil,
			"category":   "Delete_All",
		},
	})
	if status != http.StatusOK || body["deleted"] != float64(2) {
		t.Errorf("status = %d body = %v", status, body)
	}

	status, _ = ts.post(t, "/confirm_delete", map[string]any{
		"user_id":        1,
		"pending_delete": map[string]any{"start_time": "x", "end_time": "y", "category": "Delete_All"},
	})
	if status != http.StatusBadRequest {
		t.Errorf("bad filter status = %d", status)
	}

	status, _ = ts.post(t, "/confirm_delete", map[string]any{"user_id": 1})
	if status != http.StatusBadRequest {
		t.Errorf("empty request status = %d", status)
	}
}

func TestClassify(t *testing.T) {
	ts := newTestServer(t, Options{})

	status, body := ts.post(t, "/classify", map[string]any{"text": "复习数学考试"})
	if status != http.StatusOK || body["category"] != "Study" || body["category_id"] != float64(1) {
		t.Errorf("status = %d body = %v", status, body)
	}

	_, body = ts.post(t, "/classify", map[string]any{"text": "删除所有备忘录"})
	if body["category"] != "Others" || body["category_id"] != float64(4) {
		t.Errorf("delete text classified as %v", body)
	}
}

func TestTranscribe(t *testing.T) {
	ts := newTestServer(t, Options{})

	upload := func(fields map[string]string, filename, content string) (int, map[string]any) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		for k, v := range fields {
			mw.WriteField(k, v)
		}
		if filename != "-" {
			part, _ := mw.CreateFormFile("file", filename)
			part.Write([]byte(content))
		}
		mw.Close()
		req, _ := http.NewRequest(http.MethodPost, ts.URL+"/transcribe", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return do(t, req)
	}

	status, body := upload(map[string]string{"user_id": "1"}, "memo.WAV", "明天下午3点要交报告")
	if status != http.StatusOK || body["transcription"] != "明天下午3点要交报告" || body["category"] != "Work" {
		t.Errorf("status = %d body = %v", status, body)
	}

	if status, body := upload(nil, "memo.wav", "x"); status != http.StatusBadRequest || body["error"] != "Missing user_id" {
		t.Errorf("missing user: %d %v", status, body)
	}
	if status, body := upload(map[string]string{"user_id": "1"}, "-", ""); status != http.StatusBadRequest || body["error"] != "No file part" {
		t.Errorf("missing file: %d %v", status, body)
	}
}

func TestLogin(t *testing.T) {
	accounts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("password") == "pw" {
			json.NewEncoder(w).Encode(map[string]any{"success": true, "user_id": 5})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Wrong password"})
	}))
	defer accounts.Close()

	ts := newTestServer(t, Options{Login: auth.NewUpstream(accounts.URL)})

	status, body := ts.post(t, "/api/login", map[string]any{"username": "a", "password": "pw"})
	if status != http.StatusOK || body["user_id"] != float64(5) {
		t.Fatalf("status = %d body = %v", status, body)
	}
	id, err := ts.tokens.Parse(body["token"].(string))
	if err != nil || id != 5 {
		t.Errorf("token user = %d, %v", id, err)
	}

	status, body = ts.post(t, "/api/login", map[string]any{"username": "a", "password": "no"})
	if status != http.StatusUnauthorized || body["message"] != "Wrong password" {
		t.Errorf("status = %d body = %v", status, body)
	}
}

func TestLoginNotConfigured(t *testing.T) {
	ts := newTestServer(t, Options{})
	if status, _ := ts.post(t, "/api/login", map[string]any{"username": "a"}); status != http.StatusServiceUnavailable {
		t.Errorf("status = %d", status)
	}
}
