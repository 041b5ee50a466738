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
	"slices"

	"github.com/blinklabs-io/ledgerkit/cbor"
	"github.com/blinklabs-io/ledgerkit/ledger/common"
)

// Witness set map keys
const (
	witnessKeyVkey       = 0
	witnessKeyNative     = 1
	witnessKeyBootstrap  = 2
	witnessKeyPlutusV1   = 3
	witnessKeyPlutusData = 4
	witnessKeyRedeemers  = 5
	witnessKeyPlutusV2   = 6
	witnessKeyPlutusV3   = 7
)

// BabbageTransactionWitnessSet holds the signatures, scripts and script inputs
// of a transaction. Every collection is optional
type BabbageTransactionWitnessSet struct {
	cbor.DecodeStoreCbor
	VkeyWitnesses      cbor.SetType[common.VkeyWitness]
	WsNativeScripts    cbor.SetType[common.NativeScript]
	BootstrapWitnesses cbor.SetType[common.BootstrapWitness]
	WsPlutusV1Scripts  cbor.SetType[common.PlutusV1Script]
	WsPlutusData       cbor.SetType[common.Datum]
	WsRedeemers        *common.Redeemers
	WsPlutusV2Scripts  cbor.SetType[common.PlutusV2Script]
	WsPlutusV3Scripts  cbor.SetType[common.PlutusV3Script]
}

func NewBabbageTransactionWitnessSetFromCbor(
	data []byte,
) (*BabbageTransactionWitnessSet, error) {
	var ret BabbageTransactionWitnessSet
	if err := cbor.DecodeExact(data, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (w *BabbageTransactionWitnessSet) UnmarshalCBOR(cborData []byte) error {
	var tmpMap map[uint64]cbor.RawMessage
	if err := cbor.DecodeExact(cborData, &tmpMap); err != nil {
		return err
	}
	var tmp BabbageTransactionWitnessSet
	for key, val := range tmpMap {
		var err error
		switch key {
		case witnessKeyVkey:
			err = cbor.DecodeExact(val, &tmp.VkeyWitnesses)
		case witnessKeyNative:
			err = cbor.DecodeExact(val, &tmp.WsNativeScripts)
		case witnessKeyBootstrap:
			err = cbor.DecodeExact(val, &tmp.BootstrapWitnesses)
		case witnessKeyPlutusV1:
			err = cbor.DecodeExact(val, &tmp.WsPlutusV1Scripts)
		case witnessKeyPlutusData:
			err = cbor.DecodeExact(val, &tmp.WsPlutusData)
		case witnessKeyRedeemers:
			tmp.WsRedeemers = &common.Redeemers{}
			err = cbor.DecodeExact(val, tmp.WsRedeemers)
		case witnessKeyPlutusV2:
			err = cbor.DecodeExact(val, &tmp.WsPlutusV2Scripts)
		case witnessKeyPlutusV3:
			err = cbor.DecodeExact(val, &tmp.WsPlutusV3Scripts)
		default:
			err = cbor.Malformedf("unknown witness set key %d", key)
		}
		if err != nil {
			return err
		}
	}
	*w = tmp
	w.SetCbor(cborData)
	return nil
}

func (w *BabbageTransactionWitnessSet) MarshalCBOR() ([]byte, error) {
	if cborData := w.DecodeStoreCbor.Cbor(); cborData != nil {
		return cborData, nil
	}
	type witnessField struct {
		key   uint64
		value any
	}
	var fields []witnessField
	if w.VkeyWitnesses.Len() > 0 {
		fields = append(fields, witnessField{witnessKeyVkey, w.VkeyWitnesses})
	}
	if w.WsNativeScripts.Len() > 0 {
		fields = append(fields, witnessField{witnessKeyNative, w.WsNativeScripts})
	}
	if w.BootstrapWitnesses.Len() > 0 {
		fields = append(
			fields,
			witnessField{witnessKeyBootstrap, w.BootstrapWitnesses},
		)
	}
	if w.WsPlutusV1Scripts.Len() > 0 {
		fields = append(
			fields,
			witnessField{witnessKeyPlutusV1, w.WsPlutusV1Scripts},
		)
	}
	if w.WsPlutusData.Len() > 0 {
		fields = append(fields, witnessField{witnessKeyPlutusData, w.WsPlutusData})
	}
	if w.WsRedeemers != nil && w.WsRedeemers.Len() > 0 {
		fields = append(fields, witnessField{witnessKeyRedeemers, *w.WsRedeemers})
	}
	if w.WsPlutusV2Scripts.Len() > 0 {
		fields = append(
			fields,
			witnessField{witnessKeyPlutusV2, w.WsPlutusV2Scripts},
		)
	}
	if w.WsPlutusV3Scripts.Len() > 0 {
		fields = append(
			fields,
			witnessField{witnessKeyPlutusV3, w.WsPlutusV3Scripts},
		)
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

// Cbor returns the witness set bytes, or nil if it cannot be encoded
func (w *BabbageTransactionWitnessSet) Cbor() []byte {
	cborData, err := w.MarshalCBOR()
	if err != nil {
		return nil
	}
	return cborData
}

func (w *BabbageTransactionWitnessSet) AddVkeyWitness(witness common.VkeyWitness) {
	w.VkeyWitnesses = cbor.NewSetType(
		append(slices.Clone(w.VkeyWitnesses.Items()), witness),
		w.VkeyWitnesses.Tagged(),
	)
	w.SetCbor(nil)
}

func (w *BabbageTransactionWitnessSet) AddBootstrapWitness(
	witness common.BootstrapWitness,
) {
	w.BootstrapWitnesses = cbor.NewSetType(
		append(slices.Clone(w.BootstrapWitnesses.Items()), witness),
		w.BootstrapWitnesses.Tagged(),
	)
	w.SetCbor(nil)
}

func (w *BabbageTransactionWitnessSet) AddNativeScript(script common.NativeScript) {
	w.WsNativeScripts = cbor.NewSetType(
		append(slices.Clone(w.WsNativeScripts.Items()), script),
		w.WsNativeScripts.Tagged(),
	)
	w.SetCbor(nil)
}

func (w *BabbageTransactionWitnessSet) AddPlutusData(datum common.Datum) {
	w.WsPlutusData = cbor.NewSetType(
		append(slices.Clone(w.WsPlutusData.Items()), datum),
		w.WsPlutusData.Tagged(),
	)
	w.SetCbor(nil)
}

func (w *BabbageTransactionWitnessSet) SetRedeemers(redeemers common.Redeemers) {
	w.WsRedeemers = &redeemers
	w.SetCbor(nil)
}

func (w *BabbageTransactionWitnessSet) Vkey() []common.VkeyWitness {
	return w.VkeyWitnesses.Items()
}

func (w *BabbageTransactionWitnessSet) Bootstrap() []common.BootstrapWitness {
	return w.BootstrapWitnesses.Items()
}

func (w *BabbageTransactionWitnessSet) NativeScripts() []common.NativeScript {
	return w.WsNativeScripts.Items()
}

func (w *BabbageTransactionWitnessSet) PlutusV1Scripts() []common.PlutusV1Script {
	return w.WsPlutusV1Scripts.Items()
}

func (w *BabbageTransactionWitnessSet) PlutusV2Scripts() []common.PlutusV2Script {
	return w.WsPlutusV2Scripts.Items()
}

func (w *BabbageTransactionWitnessSet) PlutusV3Scripts() []common.PlutusV3Script {
	return w.WsPlutusV3Scripts.Items()
}

func (w *BabbageTransactionWitnessSet) PlutusData() []common.Datum {
	return w.WsPlutusData.Items()
}

func (w *BabbageTransactionWitnessSet) Redeemers() common.Redeemers {
	if w.WsRedeemers == nil {
		return common.Redeemers{}
	}
	return *w.WsRedeemers
}

// Clone returns a copy that can be modified independently
func (w *BabbageTransactionWitnessSet) Clone() BabbageTransactionWitnessSet {
	ret := BabbageTransactionWitnessSet{
		VkeyWitnesses: cbor.NewSetType(
			slices.Clone(w.VkeyWitnesses.Items()),
			w.VkeyWitnesses.Tagged(),
		),
		WsNativeScripts: cbor.NewSetType(
			slices.Clone(w.WsNativeScripts.Items()),
			w.WsNativeScripts.Tagged(),
		),
		BootstrapWitnesses: cbor.NewSetType(
			slices.Clone(w.BootstrapWitnesses.Items()),
			w.BootstrapWitnesses.Tagged(),
		),
		WsPlutusV1Scripts: w.WsPlutusV1Scripts,
		WsPlutusData: cbor.NewSetType(
			slices.Clone(w.WsPlutusData.Items()),
			w.WsPlutusData.Tagged(),
		),
		WsRedeemers:       w.WsRedeemers,
		WsPlutusV2Scripts: w.WsPlutusV2Scripts,
		WsPlutusV3Scripts: w.WsPlutusV3Scripts,
	}
	ret.SetCbor(w.DecodeStoreCbor.Cbor())
	return ret
}
