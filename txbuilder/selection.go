// Copyright 2025 Blink Labs Software
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

package txbuilder

import (
	"github.com/blinklabs-io/ledgerkit/ledger/common"
)

// SelectionStrategy picks inputs from the candidate pool. Every strategy is
// deterministic for a given pool and deficit
type SelectionStrategy int

const (
	// LargestFirst picks the candidate with the most lovelace
	LargestFirst SelectionStrategy = iota
	// RoundRobinAssets cycles over the missing assets, picking the candidate
	// holding the most of each, and falls back to LargestFirst for lovelace
	RoundRobinAssets
)

func (s SelectionStrategy) String() string {
	switch s {
	case LargestFirst:
		return "LargestFirst"
	case RoundRobinAssets:
		return "RoundRobinAssets"
	}
	return "Unknown"
}

// next returns the pool index of the next input to select. round is the number
// of inputs already selected from the pool
func (s SelectionStrategy) next(
	pool []common.Utxo,
	deficit common.Value,
	round int,
) int {
	if s == RoundRobinAssets {
		if idx := nextForAsset(pool, deficit, round); idx >= 0 {
			return idx
		}
	}
	return largestCoin(pool)
}

type assetUnit struct {
	policyId  common.PolicyId
	assetName []byte
}

func nextForAsset(pool []common.Utxo, deficit common.Value, round int) int {
	var units []assetUnit
	for _, policyId := range deficit.Assets.Policies() {
		for _, assetName := range deficit.Assets.Assets(policyId) {
			units = append(units, assetUnit{policyId, assetName})
		}
	}
	for i := range units {
		unit := units[(round+i)%len(units)]
		best := -1
		var bestQty uint64
		for idx, utxo := range pool {
			qty := utxo.Output.Assets().Asset(unit.policyId, unit.assetName)
			if qty == 0 {
				continue
			}
			if best < 0 || qty > bestQty ||
				(qty == bestQty && preferCandidate(utxo, pool[best])) {
				best = idx
				bestQty = qty
			}
		}
		if best >= 0 {
			return best
		}
	}
	return -1
}

func largestCoin(pool []common.Utxo) int {
	best := -1
	for idx, utxo := range pool {
		if best < 0 || preferCandidate(utxo, pool[best]) {
			best = idx
		}
	}
	return best
}

// preferCandidate orders candidates by descending lovelace, then by input
func preferCandidate(a common.Utxo, b common.Utxo) bool {
	if a.Output.Amount() != b.Output.Amount() {
		return a.Output.Amount() > b.Output.Amount()
	}
	return a.Id.Compare(b.Id) < 0
}
