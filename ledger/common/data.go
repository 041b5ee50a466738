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
	"github.com/blinklabs-io/plutigo/data"
)

// DatumHashToBech32 encodes a DatumHash as a CIP-0005 bech32 string with "datum" prefix.
func DatumHashToBech32(d DatumHash) string {
	return d.Bech32("datum")
}

// Datum represents a Plutus datum
type Datum struct {
	cbor.DecodeStoreCbor
	Data data.PlutusData `json:"data"`
}

func NewDatum(pd data.PlutusData) Datum {
	return Datum{Data: pd}
}

func (d *Datum) UnmarshalCBOR(cborData []byte) error {
	tmpData, err := data.Decode(cborData)
	if err != nil {
		return cbor.NewMalformedEncodingError(err)
	}
	d.SetCbor(cborData)
	d.Data = tmpData
	return nil
}

func (d Datum) MarshalCBOR() ([]byte, error) {
	if cborData := d.Cbor(); len(cborData) > 0 {
		return cborData, nil
	}
	if d.Data == nil {
		return nil, invalidValue("Datum", "no data")
	}
	return data.Encode(d.Data)
}

// Hash returns the hash of the datum's encoding
func (d Datum) Hash() DatumHash {
	tmpCbor, err := d.MarshalCBOR()
	if err != nil {
		return DatumHash{}
	}
	return Blake2b256Hash(tmpCbor)
}

const (
	DatumOptionTypeHash = 0
	DatumOptionTypeData = 1
)

// DatumOption is the datum attached to a post-Alonzo output: either a hash or an inline datum
type DatumOption struct {
	hash *DatumHash
	data *Datum
}

func NewDatumOptionHash(hash DatumHash) DatumOption {
	return DatumOption{hash: &hash}
}

func NewDatumOptionInline(datum Datum) DatumOption {
	return DatumOption{data: &datum}
}

// Hash returns the datum hash, computing it for inline datums
func (d DatumOption) Hash() DatumHash {
	if d.hash != nil {
		return *d.hash
	}
	if d.data != nil {
		return d.data.Hash()
	}
	return DatumHash{}
}

// Inline returns the inline datum, if any
func (d DatumOption) Inline() *Datum {
	return d.data
}

func (d *DatumOption) UnmarshalCBOR(cborData []byte) error {
	id, err := cbor.DecodeIdFromList(cborData)
	if err != nil {
		return err
	}
	switch id {
	case DatumOptionTypeHash:
		var tmpDatumHash struct {
			cbor.StructAsArray
			Type uint
			Hash DatumHash
		}
		if err := cbor.DecodeExact(cborData, &tmpDatumHash); err != nil {
			return err
		}
		d.hash = &(tmpDatumHash.Hash)
		d.data = nil
	case DatumOptionTypeData:
		var tmpDatumData struct {
			cbor.StructAsArray
			Type     uint
			DataCbor cbor.Tag
		}
		if err := cbor.DecodeExact(cborData, &tmpDatumData); err != nil {
			return err
		}
		innerCbor, ok := tmpDatumData.DataCbor.Content.([]byte)
		if !ok || tmpDatumData.DataCbor.Number != cbor.CborTagCbor {
			return cbor.Malformedf("inline datum must be wrapped CBOR")
		}
		var tmpDatum Datum
		if err := tmpDatum.UnmarshalCBOR(innerCbor); err != nil {
			return err
		}
		d.data = &tmpDatum
		d.hash = nil
	default:
		return cbor.Malformedf("unsupported datum option type: %d", id)
	}
	return nil
}

func (d DatumOption) MarshalCBOR() ([]byte, error) {
	switch {
	case d.hash != nil:
		return cbor.Encode([]any{DatumOptionTypeHash, *d.hash})
	case d.data != nil:
		datumCbor, err := d.data.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		return cbor.Encode(
			[]any{
				DatumOptionTypeData,
				cbor.Tag{Number: cbor.CborTagCbor, Content: datumCbor},
			},
		)
	}
	return nil, invalidValue("DatumOption", "neither hash nor datum set")
}
