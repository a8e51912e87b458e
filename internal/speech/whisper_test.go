package speech

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWhisperTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer k" {
			t.Errorf("authorization = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("model = %q", got)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("file part: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "memo.webm" || string(data) != "RIFF" {
			t.Errorf("file = %s %q", hdr.Filename, data)
		}
		w.Write([]byte(`{"text": " 明天下午3点要交报告 \n"}`))
	}))
	defer srv.Close()

	wh, err := NewWhisper("k", srv.URL+"/v1/", "")
	if err != nil {
		t.Fatal(err)
	}
	text, err := wh.Transcribe(context.Background(), "uploads/memo.webm", strings.NewReader("RIFF"))
	if err != nil {
		t.Fatal(err)
	}
	if text != "明天下午3点要交报告" {
		t.Errorf("text = %q", text)
	}
}

func TestWhisperUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad audio", http.StatusBadRequest)
	}))
	defer srv.Close()

	wh, _ := NewWhisper("k", srv.URL, "")
	if _, err := wh.Transcribe(context.Background(), "a.wav", strings.NewReader("x")); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewWhisperRequiresKey(t *testing.T) {
	if _, err := NewWhisper("", "", ""); err == nil {
		t.Fatal("expected error")
	}
}
