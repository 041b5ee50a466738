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
	"slices"

	"github.com/blinklabs-io/ledgerkit/ledger/common"
)

// expectedSigners lists the witnesses a transaction is expected to carry.
// Placeholders for all of them are included when sizing the fee
type expectedSigners struct {
	keyHashes []common.AddrKeyHash
	// Key hashes that only appear in native scripts
	optional  map[common.AddrKeyHash]bool
	bootstrap []common.Address
}

func (s *expectedSigners) addKey(keyHash common.AddrKeyHash, optional bool) {
	if s.optional == nil {
		s.optional = make(map[common.AddrKeyHash]bool)
	}
	if slices.Contains(s.keyHashes, keyHash) {
		if !optional {
			delete(s.optional, keyHash)
		}
		return
	}
	s.keyHashes = append(s.keyHashes, keyHash)
	if optional {
		s.optional[keyHash] = true
	}
}

func (s *expectedSigners) addCredential(cred common.Credential) {
	if cred.IsScript() {
		return
	}
	s.addKey(cred.Hash(), false)
}

func (s *expectedSigners) addBootstrap(addr common.Address) {
	if !slices.ContainsFunc(s.bootstrap, addr.Equal) {
		s.bootstrap = append(s.bootstrap, addr)
	}
}

func (b *Builder) expectedSigners(inputs []common.Utxo) expectedSigners {
	var ret expectedSigners
	for _, utxo := range slices.Concat(inputs, b.collateral) {
		addr := utxo.Output.Address()
		if addr.IsByron() {
			ret.addBootstrap(addr)
			continue
		}
		if cred, ok := addr.PaymentCredential(); ok {
			ret.addCredential(cred)
		}
	}
	for _, cert := range b.certificates {
		for _, cred := range cert.Witnesses() {
			ret.addCredential(cred)
		}
	}
	for _, withdrawal := range b.withdrawals.Entries() {
		if cred, ok := withdrawal.Address.StakeCredential(); ok {
			ret.addCredential(cred)
		}
	}
	for _, keyHash := range b.requiredSigners {
		ret.addKey(keyHash, false)
	}
	for _, addr := range b.bootstrapSigners {
		ret.addBootstrap(addr)
	}
	for _, script := range b.nativeScripts {
		for _, keyHash := range script.RequiredKeyHashes() {
			ret.addKey(keyHash, true)
		}
	}
	return ret
}
