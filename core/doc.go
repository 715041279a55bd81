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


// Package core defines the domain model for the passage retrieval pipeline:
// chunks, scored candidates, content kinds, input validation, and the MUS
// serializers used by the artifact cache.
//
// Types in this package are owned by the pipeline run that created them and
// are immutable after creation; they are shared across runs only through the
// artifact cache.
package core
