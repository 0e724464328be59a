package sovits

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testVoice() VoiceReference {
	return VoiceReference{
		ReferenceWAVPath: "/data/ref.wav",
		PromptText:       "博士，今天也要一起加油哦",
		PromptLanguage:   "zh",
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New("", testVoice()); err == nil {
		t.Error("expected error for empty serverURL")
	}
	if _, err := New("http://localhost:9880", VoiceReference{}); err == nil {
		t.Error("expected error for missing reference path")
	}
}

func TestSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("text"); got != "好的，已经把灯打开了" {
			t.Errorf("text = %q", got)
		}
		if got := q.Get("text_language"); got != "zh" {
			t.Errorf("text_language = %q", got)
		}
		if got := q.Get("refer_wav_path"); got != "/data/ref.wav" {
			t.Errorf("refer_wav_path = %q", got)
		}
		if got := q.Get("prompt_text"); got != "博士，今天也要一起加油哦" {
			t.Errorf("prompt_text = %q", got)
		}
		if got := q.Get("prompt_language"); got != "zh" {
			t.Errorf("prompt_language = %q", got)
		}
		w.Write([]byte("RIFFaudio"))
	}))
	t.Cleanup(srv.Close)

	p, err := New(srv.URL, testVoice())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	clip, err := p.Synthesize(context.Background(), "好的，已经把灯打开了")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(clip) != "RIFFaudio" {
		t.Errorf("clip = %q", clip)
	}
}

func TestSynthesizeEmptyText(t *testing.T) {
	p, err := New("http://localhost:1", testVoice())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Synthesize(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestSynthesizeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "reference not found", http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	p, err := New(srv.URL, testVoice())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Synthesize(context.Background(), "你好"); err == nil {
		t.Fatal("expected error for 400 response")
	}
}

func TestSynthesizeEmptyAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	p, err := New(srv.URL, testVoice())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Synthesize(context.Background(), "你好"); err == nil {
		t.Fatal("expected error for empty audio body")
	}
}
