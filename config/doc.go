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


// Package config loads the settings of a ragchat deployment.
//
// A Config starts from DefaultConfig, is overlaid with a TOML file by Load or
// with functional options by New, and may then take environment overrides.
// Every constructor validates the result, so a Config that was returned
// without error is complete.
//
// Example file:
//
//	prompt_template = ""
//
//	[ai]
//	embedding_host = "http://localhost:11434/v1"
//	embedding_model = "embeddinggemma"
//	generation_model = "qwen2.5:7b"
//
//	[retrieval]
//	fusion = "rrf"
//	max_docs = 5
//	min_docs = 1
//
//	[storage]
//	index_backend = "postgres"
//	postgres_url = "postgres://localhost/ragchat"
//
//	[links]
//	s3_region = "us-east-1"
//	presign_expiry = "30m"
package config
