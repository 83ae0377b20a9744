package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"physioflow/recovery-app/internal/config"
)

func TestNewOpenAIGeneratorRequiresAPIKey(t *testing.T) {
	if _, err := NewOpenAIGenerator(config.OpenAIConfig{}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestOpenAIGeneratorModelDefaults(t *testing.T) {
	gen, err := NewOpenAIGenerator(config.OpenAIConfig{APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("NewOpenAIGenerator: %v", err)
	}
	g, ok := gen.(*openAIGenerator)
	if !ok {
		t.Fatalf("unexpected generator type %T", gen)
	}
	if g.model != "gpt-4o-mini" {
		t.Errorf("text model = %q, want gpt-4o-mini", g.model)
	}
	if g.visionModel != "gpt-4o" {
		t.Errorf("vision model = %q, want gpt-4o", g.visionModel)
	}
}

func TestOpenAIGeneratorRoutesMediaToVisionModel(t *testing.T) {
	var models []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Model string `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		models = append(models, payload.Model)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	}))
	defer srv.Close()

	gen, err := NewOpenAIGenerator(config.OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenAIGenerator: %v", err)
	}
	ctx := context.Background()

	if _, err := gen.Complete(ctx, Request{Instructions: "sys", UserContent: "text only"}); err != nil {
		t.Fatalf("text completion: %v", err)
	}
	if _, err := gen.Complete(ctx, Request{Instructions: "sys", UserContent: "with media", MediaURLs: []string{"https://storage.test/get/k1"}}); err != nil {
		t.Fatalf("media completion: %v", err)
	}

	if len(models) != 2 || models[0] != "gpt-4o-mini" || models[1] != "gpt-4o" {
		t.Errorf("models used = %v, want [gpt-4o-mini gpt-4o]", models)
	}
}
