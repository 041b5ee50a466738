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

package common

import (
	"github.com/blinklabs-io/ledgerkit/cbor"
)

const (
	AuxiliaryDataFormShelley   = 0 // bare metadata map
	AuxiliaryDataFormShelleyMa = 1 // [metadata, native scripts]
	AuxiliaryDataFormAlonzo    = 2 // tag 259 map
)

// AuxiliaryData holds transaction metadata and auxiliary scripts. Decoded
// values keep their original form and bytes
type AuxiliaryData struct {
	cbor.DecodeStoreCbor
	form            uint
	Metadata        TransactionMetadata
	NativeScripts   []NativeScript
	PlutusV1Scripts []PlutusV1Script
	PlutusV2Scripts []PlutusV2Script
	PlutusV3Scripts []PlutusV3Script
}

type auxiliaryDataArray struct {
	cbor.StructAsArray
	Metadata      TransactionMetadata
	NativeScripts []NativeScript
}

type auxiliaryDataMap struct {
	Metadata        TransactionMetadata `cbor:"0,keyasint,omitempty"`
	NativeScripts   []NativeScript      `cbor:"1,keyasint,omitempty"`
	PlutusV1Scripts []PlutusV1Script    `cbor:"2,keyasint,omitempty"`
	PlutusV2Scripts []PlutusV2Script    `cbor:"3,keyasint,omitempty"`
	PlutusV3Scripts []PlutusV3Script    `cbor:"4,keyasint,omitempty"`
}

// NewAuxiliaryData returns auxiliary data carrying metadata and optional
// native scripts
func NewAuxiliaryData(
	metadata TransactionMetadata,
	nativeScripts ...NativeScript,
) *AuxiliaryData {
	return &AuxiliaryData{
		Metadata:      metadata,
		NativeScripts: nativeScripts,
	}
}

func NewAuxiliaryDataFromCbor(cborData []byte) (*AuxiliaryData, error) {
	var tmp AuxiliaryData
	if err := cbor.DecodeExact(cborData, &tmp); err != nil {
		return nil, err
	}
	return &tmp, nil
}

// Form returns the encoding form. Values built in memory use the most compact
// form able to carry their contents
func (a *AuxiliaryData) Form() uint {
	if a.Cbor() != nil {
		return a.form
	}
	if len(a.PlutusV1Scripts) > 0 || len(a.PlutusV2Scripts) > 0 ||
		len(a.PlutusV3Scripts) > 0 {
		return AuxiliaryDataFormAlonzo
	}
	if len(a.NativeScripts) > 0 {
		return AuxiliaryDataFormShelleyMa
	}
	return AuxiliaryDataFormShelley
}

func (a *AuxiliaryData) UnmarshalCBOR(cborData []byte) error {
	head, err := cbor.DecodeHead(cborData)
	if err != nil {
		return err
	}
	var tmp AuxiliaryData
	switch head.Major {
	case cbor.CborTypeMap:
		if err := cbor.DecodeExact(cborData, &tmp.Metadata); err != nil {
			return err
		}
		tmp.form = AuxiliaryDataFormShelley
	case cbor.CborTypeArray:
		var tmpArray auxiliaryDataArray
		if err := cbor.DecodeExact(cborData, &tmpArray); err != nil {
			return err
		}
		tmp.Metadata = tmpArray.Metadata
		tmp.NativeScripts = tmpArray.NativeScripts
		tmp.form = AuxiliaryDataFormShelleyMa
	case cbor.CborTypeTag:
		var tmpTag cbor.RawTag
		if err := cbor.DecodeExact(cborData, &tmpTag); err != nil {
			return err
		}
		if tmpTag.Number != cbor.CborTagMap {
			return cbor.Malformedf(
				"unexpected auxiliary data tag: %d",
				tmpTag.Number,
			)
		}
		var tmpMap auxiliaryDataMap
		if err := cbor.DecodeExact(tmpTag.Content, &tmpMap); err != nil {
			return err
		}
		tmp.Metadata = tmpMap.Metadata
		tmp.NativeScripts = tmpMap.NativeScripts
		tmp.PlutusV1Scripts = tmpMap.PlutusV1Scripts
		tmp.PlutusV2Scripts = tmpMap.PlutusV2Scripts
		tmp.PlutusV3Scripts = tmpMap.PlutusV3Scripts
		tmp.form = AuxiliaryDataFormAlonzo
	default:
		return cbor.Malformedf(
			"unexpected auxiliary data major type: %d",
			head.Major,
		)
	}
	*a = tmp
	a.SetCbor(cborData)
	return nil
}

func (a AuxiliaryData) MarshalCBOR() ([]byte, error) {
	if cborData := a.Cbor(); cborData != nil {
		return cborData, nil
	}
	metadata := a.Metadata
	if metadata == nil {
		metadata = TransactionMetadata{}
	}
	switch a.Form() {
	case AuxiliaryDataFormShelley:
		return metadata.MarshalCBOR()
	case AuxiliaryDataFormShelleyMa:
		return cbor.Encode(&auxiliaryDataArray{
			Metadata:      metadata,
			NativeScripts: a.NativeScripts,
		})
	default:
		return cbor.Encode(cbor.Tag{
			Number: cbor.CborTagMap,
			Content: auxiliaryDataMap{
				Metadata:        a.Metadata,
				NativeScripts:   a.NativeScripts,
				PlutusV1Scripts: a.PlutusV1Scripts,
				PlutusV2Scripts: a.PlutusV2Scripts,
				PlutusV3Scripts: a.PlutusV3Scripts,
			},
		})
	}
}

// Hash returns the Blake2b-256 hash used as the auxiliary data hash in a
// transaction body
func (a AuxiliaryData) Hash() AuxiliaryDataHash {
	cborData, err := a.MarshalCBOR()
	if err != nil {
		// Encoding of in-memory values does not fail
		panic("unexpected error encoding auxiliary data: " + err.Error())
	}
	return Blake2b256Hash(cborData)
}
