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

package babbage

import (
	"fmt"
	"math/bits"

	"github.com/blinklabs-io/ledgerkit/cbor"
	"github.com/blinklabs-io/ledgerkit/ledger/common"
)

const (
	// Per-entry overhead added to the serialized output size for min-ADA
	minUtxoOverheadBytes = 160
	utxoWordSize         = 8
	// The coin field is at most 9 bytes, so its width settles quickly
	maxMinAdaIterations = 8
)

// MinFeeTx returns the minimum fee for the full transaction, including the
// script execution cost of any redeemers
func MinFeeTx(
	tx *BabbageTransaction,
	pparams common.ProtocolParameters,
) (uint64, error) {
	txBytes, err := tx.MarshalCBOR()
	if err != nil {
		return 0, err
	}
	minFee, err := common.CalculateMinFee(len(txBytes), pparams.LinearFee)
	if err != nil {
		return 0, err
	}
	redeemers := tx.WitnessSet.Redeemers()
	if redeemers.Len() == 0 {
		return minFee, nil
	}
	scriptCost, err := common.ScriptExecutionCost(
		redeemers.TotalExUnits(),
		pparams.ExecutionPrices,
	)
	if err != nil {
		return 0, err
	}
	total, carry := bits.Add64(minFee, scriptCost, 0)
	if carry != 0 {
		return 0, common.InvalidValueError{
			Type:   "Fee",
			Reason: fmt.Sprintf("script cost %d overflows fee %d", scriptCost, minFee),
		}
	}
	return total, nil
}

// NewPlaceholderWitnessSet returns a witness set with zeroed vkey and bootstrap
// witnesses that encode to the same size as the real ones. Bootstrap
// placeholders carry the attributes of the given Byron addresses
func NewPlaceholderWitnessSet(
	vkeyCount int,
	bootstrapAddrs []common.Address,
) (BabbageTransactionWitnessSet, error) {
	var ret BabbageTransactionWitnessSet
	if vkeyCount < 0 {
		return ret, common.InvalidValueError{
			Type:   "WitnessSet",
			Reason: fmt.Sprintf("negative vkey witness count %d", vkeyCount),
		}
	}
	for range vkeyCount {
		ret.AddVkeyWitness(
			common.VkeyWitness{
				Vkey:      make([]byte, common.VkeySize),
				Signature: make([]byte, common.SignatureSize),
			},
		)
	}
	for _, addr := range bootstrapAddrs {
		if !addr.IsByron() {
			return ret, common.InvalidValueError{
				Type:   "WitnessSet",
				Reason: "bootstrap witness requested for non-Byron address " + addr.String(),
			}
		}
		attr := addr.ByronAttr()
		attrBytes, err := attr.MarshalCBOR()
		if err != nil {
			return ret, err
		}
		ret.AddBootstrapWitness(
			common.BootstrapWitness{
				PublicKey:  make([]byte, common.VkeySize),
				Signature:  make([]byte, common.SignatureSize),
				ChainCode:  make([]byte, common.ChainCodeSize),
				Attributes: attrBytes,
			},
		)
	}
	return ret, nil
}

// MinAdaForOutput returns the minimum lovelace the output must hold. The
// output is sized with that amount in place, so the result accounts for the
// width of its own coin field
func MinAdaForOutput(
	output BabbageTransactionOutput,
	pparams common.ProtocolParameters,
) (uint64, error) {
	useWords := pparams.CoinsPerUtxoByte == 0 ||
		(pparams.ProtocolVersion.Major < ProtocolVersionMajor &&
			pparams.CoinsPerUtxoWord > 0)
	if useWords && pparams.CoinsPerUtxoWord == 0 {
		return 0, nil
	}
	tmpOutput := output
	var minAda uint64
	tmpOutput.SetCoin(minAda)
	for range maxMinAdaIterations {
		outputBytes, err := tmpOutput.MarshalCBOR()
		if err != nil {
			return 0, err
		}
		size := uint64(minUtxoOverheadBytes + len(outputBytes))
		var hi, next uint64
		if useWords {
			words := (size + utxoWordSize - 1) / utxoWordSize
			hi, next = bits.Mul64(words, pparams.CoinsPerUtxoWord)
		} else {
			hi, next = bits.Mul64(size, pparams.CoinsPerUtxoByte)
		}
		if hi != 0 {
			return 0, common.InvalidValueError{
				Type:   "MinAda",
				Reason: fmt.Sprintf("min-ADA for %d bytes overflows", size),
			}
		}
		if next == minAda {
			return minAda, nil
		}
		minAda = next
		tmpOutput.SetCoin(minAda)
	}
	return 0, common.InvalidValueError{
		Type:   "MinAda",
		Reason: "min-ADA did not settle",
	}
}

// MinAdaForOutputCbor is MinAdaForOutput over an encoded output
func MinAdaForOutputCbor(
	outputCbor []byte,
	pparams common.ProtocolParameters,
) (uint64, error) {
	output, err := NewBabbageTransactionOutputFromCbor(outputCbor)
	if err != nil {
		return 0, err
	}
	return MinAdaForOutput(*output, pparams)
}

// encodedSize returns the CBOR size of v
func encodedSize(v any) (int, error) {
	data, err := cbor.Encode(v)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}
