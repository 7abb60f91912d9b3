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


// Package citation implements the reference-token round trip.
//
// Before generation, Tokenizer gives every selected passage a short opaque
// token and records everything needed to cite it in a SourceEntry. The model
// only ever sees tokens, document names and passages, plus a token to URL map
// it can copy from. It is asked to cite by writing <token>.
//
// After generation, Resolver rewrites each known <token> as a markdown link
// with an access badge, drops unknown or malformed markers, and appends the
// meetings that the resolved citations belong to.
//
// Sources is built once per request and never mutated afterwards.
package citation
