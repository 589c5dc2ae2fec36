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
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/summarit/ai"
	"github.com/tmc/langchaingo/llms"
)

// Summarizer implements ai.Summarizer with a single-prompt completion call.
type Summarizer struct {
	model       llms.Model
	mapper      *llms.ErrorMapper
	temperature float64
	logger      *slog.Logger
}

var _ ai.Summarizer = (*Summarizer)(nil)

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithProviderName names the backend in classified errors.
func WithProviderName(name string) Option {
	return func(s *Summarizer) {
		s.mapper = llms.NewErrorMapper(name)
	}
}

// WithTemperature sets the sampling temperature for every call.
func WithTemperature(temperature float64) Option {
	return func(s *Summarizer) {
		s.temperature = temperature
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Summarizer) {
		s.logger = logger
	}
}

// NewSummarizer wraps a langchaingo model.
func NewSummarizer(model llms.Model, opts ...Option) *Summarizer {
	s := &Summarizer{
		model:  model,
		mapper: llms.NewErrorMapper("llm"),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "llm-summarizer")
	return s
}

// Summarize renders the prompt, calls the model and returns the cleaned
// response. Failures are classified; see ai.IsPermanent.
func (s *Summarizer) Summarize(ctx context.Context, text, instructions string) (string, error) {
	prompt, err := buildPrompt(text, instructions)
	if err != nil {
		return "", ai.Permanent(fmt.Errorf("render prompt: %w", err))
	}

	response, err := llms.GenerateFromSinglePrompt(ctx, s.model, prompt, llms.WithTemperature(s.temperature))
	if err != nil {
		s.logger.Debug("model call failed", "err", err)
		return "", classifyError(s.mapper, err)
	}

	summary := cleanSummary(response)
	if summary == "" {
		s.logger.Debug("model returned empty summary", "input_length", len(text))
		return "", ai.ErrEmptySummary
	}
	return summary, nil
}
