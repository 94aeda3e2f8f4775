package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"joylife/backend/internal/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.AIConfig{
		APIKey:        "test-key",
		BaseURL:       server.URL,
		Model:         "test-model",
		TTSModel:      "test-tts",
		TTSSampleRate: 24000,
	})
}

func candidateJSON(text string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"role":"model","parts":[{"text":%s}]}}]}`, jsonString(text))
}

func jsonString(text string) string {
	raw, _ := json.Marshal(text)
	return string(raw)
}

func TestCompleteReturnsJoinedText(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/test-model:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Error("missing api key header")
		}
		w.Write([]byte(candidateJSON("hello there")))
	})

	text, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Text: "hi"}})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != "hello there" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestMissingKeyIsNotActivatedBeforeAnyRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(config.AIConfig{BaseURL: server.URL, Model: "m"})
	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Text: "hi"}})
	if !errors.Is(err, ErrNotActivated) {
		t.Fatalf("expected ErrNotActivated, got %v", err)
	}
	if called {
		t.Fatal("no request should be issued without a key")
	}
}

func TestStreamEmitsChunksInOrder(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("alt") != "sse" {
			t.Errorf("expected alt=sse, got %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range []string{"Once", " upon", " a time"} {
			fmt.Fprintf(w, "data: %s\n\n", candidateJSON(chunk))
		}
	})

	var got []string
	err := client.Stream(context.Background(), []Message{{Role: RoleUser, Text: "story"}}, func(chunk string) {
		got = append(got, chunk)
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}

	want := []string{"Once", " upon", " a time"}
	if len(got) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("chunk %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestStreamCredentialFailureMapsToNotActivated(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"status":"PERMISSION_DENIED","message":"API key not valid"}}`))
	})

	err := client.Stream(context.Background(), []Message{{Role: RoleUser, Text: "hi"}}, func(string) {
		t.Fatal("no chunk should be emitted on credential failure")
	})
	if !errors.Is(err, ErrNotActivated) {
		t.Fatalf("expected ErrNotActivated, got %v", err)
	}
}

func TestCompleteGroundedCollectsSources(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Tools) != 1 || req.Tools[0].GoogleSearch == nil {
			t.Error("expected the search tool on a grounded request")
		}
		w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "answer"}]},
				"groundingMetadata": {
					"groundingChunks": [
						{"web": {"uri": "https://example.com/a", "title": "A"}},
						{"web": {"uri": "", "title": "dropped"}},
						{"web": {"uri": "https://example.com/b", "title": "B"}}
					]
				}
			}]
		}`))
	})

	answer, err := client.CompleteGrounded(context.Background(), "what is up")
	if err != nil {
		t.Fatalf("grounded: %v", err)
	}
	if answer.Text != "answer" {
		t.Fatalf("unexpected text %q", answer.Text)
	}
	if len(answer.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(answer.Sources))
	}
	if answer.Sources[0].URL != "https://example.com/a" || answer.Sources[1].Title != "B" {
		t.Fatalf("unexpected sources %+v", answer.Sources)
	}
}

func TestSpeakDecodesAudioPayload(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/test-tts:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprintf(w, `{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"audio/pcm","data":"%s"}}]}}]}`,
			base64.StdEncoding.EncodeToString(pcm))
	})

	audio, err := client.Speak(context.Background(), "read this")
	if err != nil {
		t.Fatalf("speak: %v", err)
	}
	if audio.SampleRate != 24000 {
		t.Fatalf("unexpected sample rate %d", audio.SampleRate)
	}
	if string(audio.Data) != string(pcm) {
		t.Fatalf("unexpected audio data %v", audio.Data)
	}
}
