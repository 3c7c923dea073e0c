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


// Package pipeline drives background embedding of appended records.
//
// A single Pipeline instance owns the whole flow: it periodically asks the
// record log for records that have no embedding yet, generates a vector for
// each through an ai.Embedder, and stores the vector while linking it to the
// record in one transaction. Records are processed strictly one at a time and
// in append order, so at most one embedding request is in flight at any
// moment.
//
// Failures are handled by doing nothing: a record whose embedding attempt
// failed simply stays unembedded and is picked up again on a later cycle.
// There is no retry counter and no dead-letter state.
//
// Typical usage:
//
//	p, err := pipeline.NewPipeline(log, store, embedder)
//	if err != nil {
//	    return err
//	}
//	go p.Run(ctx)
package pipeline
