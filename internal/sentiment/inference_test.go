package sentiment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *InferenceClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewInferenceClient(server.URL, DefaultSentimentModel, DefaultEmotionModel)
}

func TestClassifySentiment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/classify" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req classifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Model != DefaultSentimentModel {
			t.Errorf("model = %q, want %q", req.Model, DefaultSentimentModel)
		}
		if req.TopK != 1 {
			t.Errorf("top_k = %d, want 1", req.TopK)
		}

		json.NewEncoder(w).Encode(classifyResponse{
			Labels: []LabelScore{{Label: "negative", Score: 0.83}},
		})
	})

	got, err := client.ClassifySentiment(context.Background(), "gloomy words")
	if err != nil {
		t.Fatalf("ClassifySentiment: %v", err)
	}
	if got.Label != "negative" || got.Confidence != 0.83 {
		t.Errorf("got %+v", got)
	}
}

func TestClassifyEmotionsReturnsAllLabels(t *testing.T) {
	want := []LabelScore{
		{Label: "joy", Score: 0.5},
		{Label: "curiosity", Score: 0.3},
		{Label: "grief", Score: 0.1},
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req classifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.TopK != 0 {
			t.Errorf("top_k = %d, want 0 (all labels)", req.TopK)
		}
		json.NewEncoder(w).Encode(classifyResponse{Labels: want})
	})

	got, err := client.ClassifyEmotions(context.Background(), "some lyrics")
	if err != nil {
		t.Fatalf("ClassifyEmotions: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d labels, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("label %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestClassifyErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "error payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(classifyResponse{Error: "model not loaded"})
			},
		},
		{
			name: "empty label list",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(classifyResponse{})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			if _, err := client.ClassifySentiment(context.Background(), "text"); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}

func TestClassifyTruncatesLongInput(t *testing.T) {
	long := strings.Repeat("word ", maxContextRunes)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req classifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if n := len([]rune(req.Text)); n > maxContextRunes {
			t.Errorf("request text %d runes, want at most %d", n, maxContextRunes)
		}
		json.NewEncoder(w).Encode(classifyResponse{Labels: []LabelScore{{Label: "neutral", Score: 0.4}}})
	})

	if _, err := client.ClassifySentiment(context.Background(), long); err != nil {
		t.Fatalf("ClassifySentiment: %v", err)
	}
}

func TestPing(t *testing.T) {
	healthy := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	})
	if err := healthy.Ping(context.Background()); err != nil {
		t.Errorf("Ping on healthy sidecar: %v", err)
	}

	unhealthy := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if err := unhealthy.Ping(context.Background()); err == nil {
		t.Errorf("Ping on unhealthy sidecar: want error")
	}
}
