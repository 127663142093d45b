package config

import (
	"errors"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		provider    string
		cfg         Config
		wantMissing []string
		wantModel   string
		wantURL     string
		wantErr     string
	}{
		{
			name:     "openai complete with default model",
			provider: "openai",
			cfg: Config{Providers: map[string]ProviderConfig{
				"openai": {APIKey: "sk-1"},
			}},
			wantModel: "gpt-5.2",
		},
		{
			name:     "openai explicit model wins over default",
			provider: "openai",
			cfg: Config{Providers: map[string]ProviderConfig{
				"openai": {APIKey: "sk-1", Model: "gpt-4o"},
			}},
			wantModel: "gpt-4o",
		},
		{
			name:        "openai missing key",
			provider:    "openai",
			cfg:         Config{Providers: map[string]ProviderConfig{}},
			wantMissing: []string{"api_key"},
		},
		{
			name:     "deepseek requires explicit model",
			provider: "deepseek",
			cfg: Config{Providers: map[string]ProviderConfig{
				"deepseek": {APIKey: "sk-2"},
			}},
			wantMissing: []string{"model"},
		},
		{
			name:     "deepseek complete",
			provider: "deepseek",
			cfg: Config{Providers: map[string]ProviderConfig{
				"deepseek": {APIKey: "sk-2", Model: "deepseek-chat"},
			}},
			wantModel: "deepseek-chat",
		},
		{
			name:        "compat missing everything",
			provider:    "compat",
			cfg:         Config{Providers: map[string]ProviderConfig{}},
			wantMissing: []string{"api_key", "model", "base_url"},
		},
		{
			name:     "compat complete carries endpoint",
			provider: "compat",
			cfg: Config{Providers: map[string]ProviderConfig{
				"compat": {APIKey: "sk-3", Model: "llama-4", BaseURL: "https://gw.example.com/v1"},
			}},
			wantModel: "llama-4",
			wantURL:   "https://gw.example.com/v1",
		},
		{
			name:     "implicit-endpoint provider ignores base_url",
			provider: "openai",
			cfg: Config{Providers: map[string]ProviderConfig{
				"openai": {APIKey: "sk-1", BaseURL: "https://ignored.example.com"},
			}},
			wantModel: "gpt-5.2",
		},
		{
			name:     "unknown provider",
			provider: "mystery",
			cfg:      Config{},
			wantErr:  "unknown provider",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sc, err := Resolve(tc.provider, &tc.cfg)

			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("err = %v, want containing %q", err, tc.wantErr)
				}
				return
			}
			if len(tc.wantMissing) > 0 {
				var inc *IncompleteError
				if !errors.As(err, &inc) {
					t.Fatalf("err = %v, want IncompleteError", err)
				}
				if len(inc.Missing) != len(tc.wantMissing) {
					t.Fatalf("missing = %v, want %v", inc.Missing, tc.wantMissing)
				}
				for i := range tc.wantMissing {
					if inc.Missing[i] != tc.wantMissing[i] {
						t.Fatalf("missing = %v, want %v", inc.Missing, tc.wantMissing)
					}
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sc.Provider != tc.provider {
				t.Fatalf("provider = %q, want %q", sc.Provider, tc.provider)
			}
			if sc.Model != tc.wantModel {
				t.Fatalf("model = %q, want %q", sc.Model, tc.wantModel)
			}
			if sc.Endpoint != tc.wantURL {
				t.Fatalf("endpoint = %q, want %q", sc.Endpoint, tc.wantURL)
			}
			if !sc.Complete() {
				t.Fatalf("resolved config should be complete: %+v", sc)
			}
		})
	}
}

func TestResolveNeverUsesAPIKeyAsModel(t *testing.T) {
	cfg := Config{Providers: map[string]ProviderConfig{
		"openai": {APIKey: "sk-secret"},
	}}
	sc, err := Resolve("openai", &cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.Model == sc.APIKey {
		t.Fatalf("model must never fall back to the API key")
	}
}
