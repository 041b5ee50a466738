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

	"github.com/blinklabs-io/ledgerkit/keys"
	"github.com/blinklabs-io/ledgerkit/ledger/babbage"
	"github.com/blinklabs-io/ledgerkit/ledger/common"
)

// Sign witnesses the finalized body. Every expected signer must have a key
// among keyPairs, except for key hashes that only appear in native scripts.
// Keys that are not expected are ignored. When every expected key is given,
// the transaction has exactly the size its fee was computed for
func (b *Builder) Sign(
	adapter keys.Adapter,
	keyPairs ...keys.KeyPair,
) (*babbage.BabbageTransaction, error) {
	if !b.finalized {
		return nil, ErrBuilderNotFinalized
	}
	bodyHash := b.body.Hash()
	byKeyHash := make(map[common.AddrKeyHash]keys.KeyPair, len(keyPairs))
	for _, keyPair := range keyPairs {
		byKeyHash[keyPair.KeyHash()] = keyPair
	}
	var witnessSet babbage.BabbageTransactionWitnessSet
	var missing MissingSignerError
	for _, keyHash := range b.signers.keyHashes {
		keyPair, ok := byKeyHash[keyHash]
		if !ok {
			if !b.signers.optional[keyHash] {
				missing.KeyHashes = append(missing.KeyHashes, keyHash)
			}
			continue
		}
		witness, err := vkeyWitness(adapter, keyPair, bodyHash)
		if err != nil {
			return nil, err
		}
		witnessSet.AddVkeyWitness(witness)
	}
	for _, addr := range b.signers.bootstrap {
		keyPair, ok := bootstrapKey(addr, keyPairs)
		if !ok {
			missing.Addresses = append(missing.Addresses, addr)
			continue
		}
		sig, err := adapter.Sign(keyPair.SigningKey, bodyHash.Bytes())
		if err != nil {
			return nil, err
		}
		witness, err := common.NewBootstrapWitness(
			keyPair.PublicKey,
			sig,
			keyPair.ChainCode,
			addr.ByronAttr(),
		)
		if err != nil {
			return nil, err
		}
		witnessSet.AddBootstrapWitness(witness)
	}
	if len(missing.KeyHashes) > 0 || len(missing.Addresses) > 0 {
		return nil, missing
	}
	for _, script := range b.nativeScripts {
		witnessSet.AddNativeScript(script)
	}
	body, err := b.Body()
	if err != nil {
		return nil, err
	}
	tx := babbage.NewBabbageTransaction(*body, witnessSet, b.auxData)
	b.logger.Debug(
		"transaction signed",
		"component", "txbuilder",
		"tx_id", bodyHash.String(),
		"vkey_witnesses", len(witnessSet.Vkey()),
		"bootstrap_witnesses", len(witnessSet.Bootstrap()),
	)
	return tx, nil
}

// SignBody witnesses a body built elsewhere with every given key. auxData
// must match the auxiliary data hash in the body, if any
func SignBody(
	adapter keys.Adapter,
	body *babbage.BabbageTransactionBody,
	auxData *common.AuxiliaryData,
	keyPairs ...keys.KeyPair,
) (*babbage.BabbageTransaction, error) {
	if body == nil {
		return nil, invalidValue("TransactionBody", "nil body")
	}
	auxDataHash := body.AuxDataHash()
	switch {
	case auxData == nil && auxDataHash != nil:
		return nil, invalidValue("AuxiliaryData", "body references missing auxiliary data")
	case auxData != nil && (auxDataHash == nil || *auxDataHash != auxData.Hash()):
		return nil, invalidValue("AuxiliaryData", "hash does not match body")
	}
	bodyHash := body.Hash()
	var witnessSet babbage.BabbageTransactionWitnessSet
	var signed []common.AddrKeyHash
	for _, keyPair := range keyPairs {
		if slices.Contains(signed, keyPair.KeyHash()) {
			continue
		}
		witness, err := vkeyWitness(adapter, keyPair, bodyHash)
		if err != nil {
			return nil, err
		}
		witnessSet.AddVkeyWitness(witness)
		signed = append(signed, keyPair.KeyHash())
	}
	return babbage.NewBabbageTransaction(*body, witnessSet, auxData), nil
}

func vkeyWitness(
	adapter keys.Adapter,
	keyPair keys.KeyPair,
	bodyHash common.TransactionId,
) (common.VkeyWitness, error) {
	sig, err := adapter.Sign(keyPair.SigningKey, bodyHash.Bytes())
	if err != nil {
		return common.VkeyWitness{}, err
	}
	return common.NewVkeyWitness(keyPair.PublicKey, sig)
}

// bootstrapKey finds the key whose extended public key derives the Byron
// address
func bootstrapKey(addr common.Address, keyPairs []keys.KeyPair) (keys.KeyPair, bool) {
	for _, keyPair := range keyPairs {
		if len(keyPair.ChainCode) != keys.ChainCodeSize {
			continue
		}
		candidate, err := common.NewByronAddressFromXPub(
			keyPair.ExtendedPublicKey(),
			addr.ByronAttr(),
		)
		if err == nil && candidate.Equal(addr) {
			return keyPair, true
		}
	}
	return keys.KeyPair{}, false
}
