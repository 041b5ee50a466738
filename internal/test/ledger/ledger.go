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

// Package test_ledger provides ledger fixtures shared by the tests of the
// packages above ledger/common
package test_ledger

import (
	"bytes"
	"math/big"

	"github.com/blinklabs-io/ledgerkit/cbor"
	"github.com/blinklabs-io/ledgerkit/ledger/common"
)

// ProtocolParameters returns Babbage-era parameters matching mainnet at the
// time of writing
func ProtocolParameters() common.ProtocolParameters {
	return common.ProtocolParameters{
		LinearFee: common.LinearFee{
			Coefficient: 44,
			Constant:    155381,
		},
		CoinsPerUtxoByte: 4310,
		MaxTxSize:        16384,
		MaxValueSize:     5000,
		KeyDeposit:       2_000_000,
		PoolDeposit:      500_000_000,
		MinPoolCost:      170_000_000,
		ExecutionPrices: common.ExUnitPrice{
			MemPrice:  &cbor.Rat{Rat: big.NewRat(577, 10000)},
			StepPrice: &cbor.Rat{Rat: big.NewRat(721, 10000000)},
		},
		MaxTxExUnits: common.ExUnits{
			Memory: 14_000_000,
			Steps:  10_000_000_000,
		},
		CollateralPercentage: 150,
		MaxCollateralInputs:  3,
		ProtocolVersion: common.ProtocolVersion{
			Major: 8,
		},
	}
}

func fill(b byte, count int) []byte {
	return bytes.Repeat([]byte{b}, count)
}

// KeyHash returns a key hash with every byte set to b
func KeyHash(b byte) common.AddrKeyHash {
	return common.NewBlake2b224(fill(b, common.Blake2b224Size))
}

// TxId returns a transaction ID with every byte set to b
func TxId(b byte) common.TransactionId {
	return common.NewBlake2b256(fill(b, common.Blake2b256Size))
}

func Input(b byte, index uint32) common.TransactionInput {
	return common.NewTransactionInput(TxId(b), index)
}

// PolicyId returns a policy ID with every byte set to b
func PolicyId(b byte) common.PolicyId {
	return common.NewBlake2b224(fill(b, common.Blake2b224Size))
}

// EnterpriseAddress returns a testnet enterprise address paying to KeyHash(b)
func EnterpriseAddress(b byte) common.Address {
	addr, err := common.NewEnterpriseAddress(
		common.AddressNetworkTestnet,
		common.NewKeyCredential(KeyHash(b)),
	)
	if err != nil {
		panic(err)
	}
	return addr
}

// BaseAddress returns a testnet base address with key credentials
func BaseAddress(payment byte, stake byte) common.Address {
	addr, err := common.NewBaseAddress(
		common.AddressNetworkTestnet,
		common.NewKeyCredential(KeyHash(payment)),
		common.NewKeyCredential(KeyHash(stake)),
	)
	if err != nil {
		panic(err)
	}
	return addr
}

// ScriptAddress returns a testnet enterprise address locked by the given
// script hash
func ScriptAddress(hash common.ScriptHash) common.Address {
	addr, err := common.NewEnterpriseAddress(
		common.AddressNetworkTestnet,
		common.NewScriptCredential(hash),
	)
	if err != nil {
		panic(err)
	}
	return addr
}

// RewardAddress returns a testnet reward address for KeyHash(b)
func RewardAddress(b byte) common.Address {
	addr, err := common.NewRewardAddress(
		common.AddressNetworkTestnet,
		common.NewKeyCredential(KeyHash(b)),
	)
	if err != nil {
		panic(err)
	}
	return addr
}
