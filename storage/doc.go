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


// Package storage provides the storage abstraction layer for knowledge.
//
// It defines the two durable contracts of the system:
//
//   - RecordLog: the append-only, globally ordered log of source records,
//     including the pending-records read path used by the embedding
//     pipeline.
//   - VectorStore: keyed storage for embedding records with a
//     transactional "create embedding + link source record" operation and
//     nearest-neighbor queries by cosine distance.
//
// Public constructors in backend packages return these interfaces to keep
// consumers decoupled from the concrete engine; the badger subpackage
// provides the default implementation.
//
// # Thread Safety
//
// All implementations must be thread-safe. The record log's sequence
// allocator is the single point of write contention: concurrent appenders
// never collide and never observe a reused sequence number. Searches are
// read-only and may run concurrently with the pipeline without
// coordination, since they only observe committed embeddings.
//
// # Context Support
//
// All methods accept context.Context for cancellation. An in-progress
// transaction is allowed to complete; cancellation never produces torn
// writes.
package storage
