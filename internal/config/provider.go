package config

import (
	"fmt"
	"strings"

	"github.com/textpolish/textpolish/internal/polish"
)

// Descriptor declares what a provider needs before a session can start.
type Descriptor struct {
	Name            string
	EnvKey          string // env var consulted when api_key is unset
	DefaultModel    string // used when the provider does not require an explicit model
	RequiresModel   bool
	RequiresBaseURL bool
}

var descriptors = []Descriptor{
	{Name: "openai", EnvKey: "OPENAI_API_KEY", DefaultModel: "gpt-5.2"},
	{Name: "deepseek", EnvKey: "DEEPSEEK_API_KEY", RequiresModel: true},
	{Name: "compat", RequiresModel: true, RequiresBaseURL: true},
}

// Descriptors returns the supported providers in display order.
func Descriptors() []Descriptor {
	return descriptors
}

// ProviderNames returns the supported provider names in display order.
func ProviderNames() []string {
	names := make([]string, len(descriptors))
	for i, d := range descriptors {
		names[i] = d.Name
	}
	return names
}

// IncompleteError reports the required fields missing for a provider.
// It is a precondition failure, not a transport error: callers decline to
// start the session and point the user at the config.
type IncompleteError struct {
	Provider string
	Missing  []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("provider %s is not configured: missing %s",
		e.Provider, strings.Join(e.Missing, ", "))
}

// Resolve builds the session config for the named provider. It returns
// *IncompleteError when any field the descriptor requires is empty.
func Resolve(name string, cfg *Config) (polish.SessionConfig, error) {
	var desc *Descriptor
	for i := range descriptors {
		if descriptors[i].Name == name {
			desc = &descriptors[i]
			break
		}
	}
	if desc == nil {
		return polish.SessionConfig{}, fmt.Errorf("unknown provider %q (supported: %s)",
			name, strings.Join(ProviderNames(), ", "))
	}

	pc := cfg.Providers[name]

	var missing []string
	if pc.APIKey == "" {
		missing = append(missing, "api_key")
	}
	if desc.RequiresModel && pc.Model == "" {
		missing = append(missing, "model")
	}
	if desc.RequiresBaseURL && pc.BaseURL == "" {
		missing = append(missing, "base_url")
	}
	if len(missing) > 0 {
		return polish.SessionConfig{}, &IncompleteError{Provider: name, Missing: missing}
	}

	model := pc.Model
	if model == "" {
		model = desc.DefaultModel
	}

	sc := polish.SessionConfig{
		Provider: name,
		APIKey:   pc.APIKey,
		Model:    model,
	}
	if desc.RequiresBaseURL {
		sc.Endpoint = pc.BaseURL
	}
	return sc, nil
}
