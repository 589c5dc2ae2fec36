// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package llm

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/summarit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider implements ai.AIProvider on a langchaingo model client.
type Provider struct {
	config     *ai.Config
	summarizer *Summarizer
	logger     *slog.Logger
}

// NewProvider creates a provider for the backend named by config.Provider.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to backend-specific implementation details.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	model, err := newModel(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config: config,
		summarizer: NewSummarizer(model,
			WithProviderName(config.Provider),
			WithTemperature(config.Temperature),
		),
		logger: slog.Default().With("component", "llm-provider", "provider", config.Provider),
	}, nil
}

// newModel builds the langchaingo client for a validated config.
func newModel(config *ai.Config) (llms.Model, error) {
	switch config.Provider {
	case ai.ProviderOllama:
		return ollama.New(
			ollama.WithServerURL(config.Host),
			ollama.WithModel(config.Model),
		)
	case ai.ProviderOpenAI:
		// Use "none" as token for local OpenAI-compatible services that don't require authentication
		token := config.Token
		if token == "" {
			token = "none"
		}
		return openai.New(
			openai.WithBaseURL(config.Host),
			openai.WithToken(token),
			openai.WithModel(config.Model),
		)
	default:
		return nil, fmt.Errorf("%w: %q", ai.ErrUnknownProvider, config.Provider)
	}
}

// Summarizer returns the summarization service.
func (p *Provider) Summarizer() ai.Summarizer {
	return p.summarizer
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing provider")
	return nil
}
