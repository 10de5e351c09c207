// Copyright 2025 The Rivaas Authors
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

import "math/rand/v2"

// randSource abstracts the source of randomness for PolicyRandom so tests
// can substitute a deterministic one.
type randSource interface {
	Intn(n int) int
}

type defaultRand struct{}

func (defaultRand) Intn(n int) int { return rand.IntN(n) }

func newRandSource() randSource { return defaultRand{} }
