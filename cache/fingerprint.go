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


package cache

import (
	"encoding/hex"
	"fmt"

	"github.com/go-crypt/x/blake2b"
)

// Params captures every input that affects processing output. Two payloads
// with equal bytes and equal Params produce byte-identical artifacts, so the
// fingerprint is safe to use as a cache key.
type Params struct {
	ModelID      string
	ChunkSize    int
	ChunkOverlap int
}

// canonical renders the params in a fixed field order.
func (p Params) canonical() string {
	return fmt.Sprintf("model_id=%s;chunk_size=%d;chunk_overlap=%d", p.ModelID, p.ChunkSize, p.ChunkOverlap)
}

// Fingerprint returns a hex-encoded BLAKE2b-256 digest over the payload bytes
// followed by the canonical parameter string.
func Fingerprint(data []byte, params Params) string {
	h, err := blake2b.New(32, nil)
	if err != nil {
		// Only reachable with an invalid digest size or oversized key,
		// both fixed at the call site above.
		panic(err)
	}
	h.Write(data)
	h.Write([]byte(params.canonical()))
	return hex.EncodeToString(h.Sum(nil))
}
