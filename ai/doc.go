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

// Package ai provides abstractions for the language-model services used by Summarit.
//
// The summarization pipeline depends only on the Summarizer interface defined
// here, never on a concrete model client, so the pipeline can be driven by a
// local Ollama, an OpenAI-compatible server, or a test double.
//
// # Implementation Packages
//
//   - ai/llm: Production implementation on top of langchaingo models
//   - ai/mock: Test doubles for unit testing without a model server
//
// # Retry Classification
//
// Callers retry failed calls. Backends wrap failures that cannot succeed on
// retry (bad credentials, unknown model, prompt too long) with Permanent, and
// callers check IsPermanent before trying again.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithModel("codellama:7b"))
//	provider, err := llm.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	summary, err := provider.Summarizer().Summarize(ctx, text, ai.MapInstructions)
package ai
