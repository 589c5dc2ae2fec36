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

// Package llm provides the production ai.Summarizer on top of langchaingo models.
//
// Two backends are supported: Ollama's native API (the default, serving
// codellama:7b on localhost) and any OpenAI-compatible server such as
// OpenAI itself, LocalAI or vLLM. Both are wrapped by the same Summarizer,
// which renders the prompt, calls the model and classifies failures so
// callers know which ones are worth retrying.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithProvider(ai.ProviderOllama),
//	    ai.WithHost("http://localhost:11434"),
//	    ai.WithModel("codellama:7b"),
//	)
//
//	provider, err := llm.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	summary, err := provider.Summarizer().Summarize(ctx, text, ai.MapInstructions)
//
// Any langchaingo llms.Model can be wrapped directly with NewSummarizer,
// which is how the tests drive it with llms/fake.
package llm
