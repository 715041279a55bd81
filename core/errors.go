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


package core

import "errors"

// Pipeline errors
var (
	// ErrEmptyQuery indicates the query is empty after trimming whitespace.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrFileRequired indicates no document content was supplied where required.
	ErrFileRequired = errors.New("document content required")

	// ErrUnsupportedKind indicates the declared content kind is not supported.
	ErrUnsupportedKind = errors.New("unsupported content kind")

	// ErrExtraction indicates decoding or parsing of the payload failed.
	ErrExtraction = errors.New("text extraction failed")

	// ErrNoContent indicates the document produced zero chunks after splitting.
	ErrNoContent = errors.New("no text chunks were generated from the document")

	// ErrMissingIndex indicates a retrieval component (chunks, embeddings, or
	// lexical index) is absent. This is an internal invariant violation.
	ErrMissingIndex = errors.New("chunks, embeddings, and lexical index must not be nil")
)
