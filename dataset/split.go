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


package dataset

import (
	"math"
	"math/rand/v2"

	"github.com/poiesic/netingest/core"
)

// TestSize returns how many of n records go to the test subset for ratio.
// It rounds up, so any non-empty batch contributes at least one test record.
func TestSize(n int, ratio float64) int {
	size := int(math.Ceil(float64(n)*ratio - 1e-9))
	return min(max(size, 0), n)
}

// Split shuffles b with a generator seeded by seed and partitions it into
// train and test subsets. The first TestSize records of the permutation form
// the test subset and the rest form the train subset. The same batch, ratio
// and seed always produce the same partition.
func Split(b core.Batch, ratio float64, seed uint64) (train, test core.Batch, err error) {
	if !(ratio > 0 && ratio < 1) {
		return core.Batch{}, core.Batch{},
			core.Wrapf(core.KindConfig, core.StageSplit, "%w: got %v", ErrInvalidRatio, ratio)
	}

	n := b.Len()
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rng.Shuffle(n, func(i, j int) {
		perm[i], perm[j] = perm[j], perm[i]
	})

	nTest := TestSize(n, ratio)
	return b.Subset(perm[nTest:]), b.Subset(perm[:nTest]), nil
}
