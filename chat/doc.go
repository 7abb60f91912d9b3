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


// Package chat answers one user query end to end.
//
// A Chatbot retrieves candidates with both signals, fuses and selects them,
// hands the selected passages to the model behind reference tokens, and
// resolves the tokens in the answer into citations. Each successful exchange
// is appended to the session history as a user turn followed by an assistant
// turn.
//
// A generation that produces no text becomes a fixed apology and is neither
// resolved nor stored.
package chat
