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


// Package search finds records semantically similar to a text query.
//
// A Searcher embeds the query, asks the vector store for the nearest
// embeddings under cosine distance, resolves them back to their source
// records, and presents the hits in chronological order. Relevance decides
// WHICH records appear, time decides their ORDER.
//
// A search that matches nothing is a normal outcome, not an error: the
// returned Result is empty and renders an explicit "no relevant results"
// message.
package search
