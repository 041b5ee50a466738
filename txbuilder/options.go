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
	"log/slog"
	"slices"

	"github.com/blinklabs-io/ledgerkit/ledger/common"
)

const (
	defaultMaxFeeIterations = 5
)

// OptionFunc is a type that represents functions that modify the Builder config
type OptionFunc func(*Builder)

// WithLogger specifies the logger to use. The default is slog.Default()
func WithLogger(logger *slog.Logger) OptionFunc {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithChangeAddress specifies the address that receives any remaining value
func WithChangeAddress(addr common.Address) OptionFunc {
	return func(b *Builder) {
		b.changeAddress = &addr
	}
}

// WithMaxFeeIterations specifies how many fee/change rounds are attempted
// before giving up
func WithMaxFeeIterations(iterations int) OptionFunc {
	return func(b *Builder) {
		b.maxFeeIterations = iterations
	}
}

// WithMaxFeeAbsorption specifies the largest ADA-only change that is added to
// the fee instead of failing when it is below the minimum UTxO value
func WithMaxFeeAbsorption(lovelace uint64) OptionFunc {
	return func(b *Builder) {
		b.maxFeeAbsorption = lovelace
	}
}

// WithSelectionStrategy specifies how inputs are picked from the candidate
// pool
func WithSelectionStrategy(strategy SelectionStrategy) OptionFunc {
	return func(b *Builder) {
		b.selectionStrategy = strategy
	}
}

// WithCandidateUtxos enables automatic input selection from the given pool
func WithCandidateUtxos(utxos ...common.Utxo) OptionFunc {
	return func(b *Builder) {
		b.candidates = slices.Clone(utxos)
	}
}

// WithNetworkId binds the transaction to a network. Outputs to other
// networks are rejected
func WithNetworkId(networkId uint8) OptionFunc {
	return func(b *Builder) {
		b.networkId = &networkId
	}
}
