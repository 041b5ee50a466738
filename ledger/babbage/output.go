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
	"encoding/json"

	"github.com/blinklabs-io/ledgerkit/cbor"
	"github.com/blinklabs-io/ledgerkit/ledger/common"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

// Post-Alonzo output map keys
const (
	outputKeyAddress   = 0
	outputKeyValue     = 1
	outputKeyDatum     = 2
	outputKeyScriptRef = 3
)

// BabbageTransactionOutput is either a legacy [address, value, ?datum_hash]
// array or a {0: address, 1: value, ?2: datum_option, ?3: script_ref} map.
// Decoded outputs keep their form and bytes
type BabbageTransactionOutput struct {
	cbor.DecodeStoreCbor
	OutputAddress  common.Address
	OutputAmount   common.Value
	DatumOption    *common.DatumOption
	TxOutScriptRef *common.ScriptRef
	legacyOutput   bool
}

// NewBabbageTransactionOutput returns a map-form output
func NewBabbageTransactionOutput(
	address common.Address,
	amount common.Value,
) BabbageTransactionOutput {
	return BabbageTransactionOutput{
		OutputAddress: address,
		OutputAmount:  amount.Clone(),
	}
}

// NewLegacyTransactionOutput returns an array-form output. datumHash may be nil
func NewLegacyTransactionOutput(
	address common.Address,
	amount common.Value,
	datumHash *common.DatumHash,
) BabbageTransactionOutput {
	ret := BabbageTransactionOutput{
		OutputAddress: address,
		OutputAmount:  amount.Clone(),
		legacyOutput:  true,
	}
	if datumHash != nil {
		tmpDatum := common.NewDatumOptionHash(*datumHash)
		ret.DatumOption = &tmpDatum
	}
	return ret
}

func NewBabbageTransactionOutputFromCbor(
	data []byte,
) (*BabbageTransactionOutput, error) {
	var babbageTxOutput BabbageTransactionOutput
	if err := cbor.DecodeExact(data, &babbageTxOutput); err != nil {
		return nil, err
	}
	return &babbageTxOutput, nil
}

func (o *BabbageTransactionOutput) UnmarshalCBOR(cborData []byte) error {
	head, err := cbor.DecodeHead(cborData)
	if err != nil {
		return err
	}
	var tmp BabbageTransactionOutput
	switch head.Major {
	case cbor.CborTypeArray:
		var tmpItems []cbor.RawMessage
		if err := cbor.DecodeExact(cborData, &tmpItems); err != nil {
			return err
		}
		if len(tmpItems) != 2 && len(tmpItems) != 3 {
			return cbor.Malformedf(
				"legacy output must have 2 or 3 items, found %d",
				len(tmpItems),
			)
		}
		if err := cbor.DecodeExactNotNull(tmpItems[0], &tmp.OutputAddress); err != nil {
			return err
		}
		if err := cbor.DecodeExactNotNull(tmpItems[1], &tmp.OutputAmount); err != nil {
			return err
		}
		if len(tmpItems) == 3 {
			var tmpHash common.DatumHash
			if err := cbor.DecodeExactNotNull(tmpItems[2], &tmpHash); err != nil {
				return err
			}
			tmpDatum := common.NewDatumOptionHash(tmpHash)
			tmp.DatumOption = &tmpDatum
		}
		tmp.legacyOutput = true
	case cbor.CborTypeMap:
		var tmpMap map[uint64]cbor.RawMessage
		if err := cbor.DecodeExact(cborData, &tmpMap); err != nil {
			return err
		}
		for _, key := range []uint64{outputKeyAddress, outputKeyValue} {
			if _, ok := tmpMap[key]; !ok {
				return cbor.Malformedf("output is missing key %d", key)
			}
		}
		for key, val := range tmpMap {
			var err error
			switch key {
			case outputKeyAddress:
				err = cbor.DecodeExactNotNull(val, &tmp.OutputAddress)
			case outputKeyValue:
				err = cbor.DecodeExactNotNull(val, &tmp.OutputAmount)
			case outputKeyDatum:
				tmp.DatumOption = &common.DatumOption{}
				err = cbor.DecodeExactNotNull(val, tmp.DatumOption)
			case outputKeyScriptRef:
				tmp.TxOutScriptRef = &common.ScriptRef{}
				err = cbor.DecodeExactNotNull(val, tmp.TxOutScriptRef)
			default:
				err = cbor.Malformedf("unknown output key %d", key)
			}
			if err != nil {
				return err
			}
		}
	default:
		return cbor.Malformedf(
			"output must be an array or map, found major type %d",
			head.Major>>5,
		)
	}
	*o = tmp
	o.SetCbor(cborData)
	return nil
}

func (o BabbageTransactionOutput) MarshalCBOR() ([]byte, error) {
	if cborData := o.DecodeStoreCbor.Cbor(); cborData != nil {
		return cborData, nil
	}
	if o.legacyOutput {
		tmpObj := []any{o.OutputAddress, o.OutputAmount}
		if o.DatumOption != nil {
			if o.DatumOption.Inline() != nil {
				return nil, common.InvalidValueError{
					Type:   "TransactionOutput",
					Reason: "legacy outputs cannot carry an inline datum",
				}
			}
			tmpObj = append(tmpObj, o.DatumOption.Hash())
		}
		if o.TxOutScriptRef != nil {
			return nil, common.InvalidValueError{
				Type:   "TransactionOutput",
				Reason: "legacy outputs cannot carry a reference script",
			}
		}
		return cbor.Encode(&tmpObj)
	}
	type outputField struct {
		key   uint64
		value any
	}
	fields := []outputField{
		{outputKeyAddress, o.OutputAddress},
		{outputKeyValue, o.OutputAmount},
	}
	if o.DatumOption != nil {
		fields = append(fields, outputField{outputKeyDatum, *o.DatumOption})
	}
	if o.TxOutScriptRef != nil {
		fields = append(fields, outputField{outputKeyScriptRef, *o.TxOutScriptRef})
	}
	ret := cbor.EncodeMapHeader(len(fields))
	for _, field := range fields {
		ret = cbor.AppendHead(ret, cbor.CborTypeUint, field.key)
		valCbor, err := cbor.Encode(field.value)
		if err != nil {
			return nil, err
		}
		ret = append(ret, valCbor...)
	}
	return ret, nil
}

// Cbor returns the output bytes, or nil if it cannot be encoded
func (o *BabbageTransactionOutput) Cbor() []byte {
	cborData, err := o.MarshalCBOR()
	if err != nil {
		return nil
	}
	return cborData
}

// IsLegacy returns true for array-form outputs
func (o *BabbageTransactionOutput) IsLegacy() bool {
	return o.legacyOutput
}

// SetAmount replaces the value, dropping any stored bytes
func (o *BabbageTransactionOutput) SetAmount(amount common.Value) {
	o.OutputAmount = amount.Clone()
	o.SetCbor(nil)
}

// SetCoin replaces the lovelace amount, dropping any stored bytes
func (o *BabbageTransactionOutput) SetCoin(coin uint64) {
	o.OutputAmount.Coin = coin
	o.SetCbor(nil)
}

// SetDatumOption attaches a datum, converting legacy outputs to the map form
// when the datum is inline
func (o *BabbageTransactionOutput) SetDatumOption(datum common.DatumOption) {
	o.DatumOption = &datum
	if datum.Inline() != nil {
		o.legacyOutput = false
	}
	o.SetCbor(nil)
}

// SetScriptRef attaches a reference script. Only map-form outputs carry one
func (o *BabbageTransactionOutput) SetScriptRef(scriptRef common.ScriptRef) {
	o.TxOutScriptRef = &scriptRef
	o.legacyOutput = false
	o.SetCbor(nil)
}

func (o BabbageTransactionOutput) MarshalJSON() ([]byte, error) {
	tmpObj := struct {
		Address   common.Address                                 `json:"address"`
		Amount    uint64                                         `json:"amount"`
		Assets    common.MultiAsset[common.MultiAssetTypeOutput] `json:"assets,omitzero"`
		DatumHash string                                         `json:"datumHash,omitempty"`
	}{
		Address: o.OutputAddress,
		Amount:  o.OutputAmount.Coin,
		Assets:  o.OutputAmount.Assets,
	}
	if datumHash := o.DatumHash(); datumHash != nil {
		tmpObj.DatumHash = datumHash.String()
	}
	return json.Marshal(&tmpObj)
}

func (o *BabbageTransactionOutput) Address() common.Address {
	return o.OutputAddress
}

func (o *BabbageTransactionOutput) Amount() uint64 {
	return o.OutputAmount.Coin
}

func (o *BabbageTransactionOutput) Assets() common.MultiAsset[common.MultiAssetTypeOutput] {
	return o.OutputAmount.Assets
}

func (o *BabbageTransactionOutput) Value() common.Value {
	return o.OutputAmount
}

// DatumHash returns the hash of the attached datum, computing it for inline
// datums
func (o *BabbageTransactionOutput) DatumHash() *common.DatumHash {
	if o.DatumOption == nil {
		return nil
	}
	tmpHash := o.DatumOption.Hash()
	return &tmpHash
}

func (o *BabbageTransactionOutput) Datum() *common.Datum {
	if o.DatumOption == nil {
		return nil
	}
	return o.DatumOption.Inline()
}

func (o *BabbageTransactionOutput) ScriptRef() *common.ScriptRef {
	return o.TxOutScriptRef
}

func (o *BabbageTransactionOutput) Utxorpc() *utxorpc.TxOutput {
	var assets []*utxorpc.Multiasset
	tmpAssets := o.Assets()
	for _, policyId := range tmpAssets.Policies() {
		ma := &utxorpc.Multiasset{
			PolicyId: policyId.Bytes(),
		}
		for _, assetName := range tmpAssets.Assets(policyId) {
			amount := tmpAssets.Asset(policyId, assetName)
			asset := &utxorpc.Asset{
				Name:       assetName,
				OutputCoin: amount,
			}
			ma.Assets = append(ma.Assets, asset)
		}
		assets = append(assets, ma)
	}
	datumHash := []byte{}
	if tmpHash := o.DatumHash(); tmpHash != nil {
		datumHash = tmpHash.Bytes()
	}
	return &utxorpc.TxOutput{
		Address: o.OutputAddress.Bytes(),
		Coin:    o.Amount(),
		Assets:  assets,
		Datum: &utxorpc.Datum{
			Hash: datumHash,
		},
	}
}
