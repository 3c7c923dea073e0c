// Copyright 2025 svnscha
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


// Package ai defines the embedding abstraction used by the pipeline and
// search layers.
//
// The package exposes a single interface, Embedder, which turns text into
// dense vectors. The pipeline and searcher depend only on this interface;
// concrete implementations live in subpackages:
//
//   - openai: OpenAI-compatible HTTP services (Ollama, LocalAI, vLLM)
//   - mock: deterministic in-process embedder for tests
//
// Configuration is handled by Config, created through functional options:
//
//	cfg := ai.NewConfig(
//	    ai.WithEmbeddingHost("http://localhost:11434"),
//	    ai.WithEmbeddingModel("embeddinggemma"),
//	)
package ai
