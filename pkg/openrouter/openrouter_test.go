package openrouter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	openaisdk "github.com/openai/openai-go"
)

func TestNewClientSendsAttributionHeaders(t *testing.T) {
	t.Parallel()

	var gotAuth, gotReferer, gotTitle string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"m","data":[{"object":"embedding","index":0,"embedding":[0.5]}],"usage":{"prompt_tokens":1,"total_tokens":1}}`))
	}))
	defer srv.Close()

	client := NewClient(Config{
		BaseURL:  srv.URL + "/",
		APIKey:   "sk-test",
		SiteURL:  "https://poligon.example",
		SiteName: "Poligon Smaków",
	})
	if client == nil {
		t.Fatal("expected client")
	}
	_, err := client.Embeddings.New(context.Background(), openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{OfString: openaisdk.String("hello")},
		Model: openaisdk.EmbeddingModel("m"),
	})
	if err != nil {
		t.Fatalf("Embeddings.New() error = %v", err)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotReferer != "https://poligon.example" || gotTitle != "Poligon Smaków" {
		t.Fatalf("attribution headers = %q / %q", gotReferer, gotTitle)
	}
}

func TestNewClientWithoutKey(t *testing.T) {
	t.Parallel()

	if NewClient(Config{BaseURL: "http://localhost"}) != nil {
		t.Fatal("expected nil client without api key")
	}
}

func TestChatModelConfig(t *testing.T) {
	t.Parallel()

	limit := 512
	cfg := Config{BaseURL: "https://openrouter.ai/api/v1/", APIKey: " k ", Model: "x-ai/grok-4.1-fast", MaxCompletionToken: &limit, Temperature: 0.2}
	conf := cfg.chatModelConfig()
	if conf.BaseURL != "https://openrouter.ai/api/v1" || conf.APIKey != "k" {
		t.Fatalf("unexpected endpoint settings: %+v", conf)
	}
	if conf.Temperature == nil || *conf.Temperature != 0.2 {
		t.Fatalf("unexpected temperature: %v", conf.Temperature)
	}
	if conf.ExtraFields["reasoning"] == nil {
		t.Fatal("expected reasoning to be excluded")
	}

	if _, err := cfg.New(context.Background()); err != nil {
		t.Fatalf("New() error = %v", err)
	}
}
