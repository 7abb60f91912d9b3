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


// Package ranking merges lexical and semantic retrieval results into one
// ranked pool and cuts that pool down to the documents shown to the model.
//
// # Fusion
//
// Two modes are supported:
//
//   - interpolation: each signal is min-max normalized onto [0,1], then
//     fused = w*lexical + (1-w)*semantic; a passage missing from one list
//     contributes 0 for that signal
//   - rrf: reciprocal rank fusion, fused = sum of 1/(k+rank) over the lists
//     the passage appears in, rank counted from 1
//
// Passages are identified across lists by core.Candidate.Key. Equal fused
// scores keep first-appearance order, lexical list first.
//
// # Selection
//
// Selector sorts the pool and applies a score-gap cutoff. The gap search and
// the floor are both governed by SelectionPolicy; the default policy always
// returns min(P, MaxDocs) documents.
package ranking
