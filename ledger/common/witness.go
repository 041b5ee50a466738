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
	"cmp"
	"slices"

	"github.com/blinklabs-io/ledgerkit/cbor"
)

const (
	// Sizes of an Ed25519 verification key and signature
	VkeySize      = 32
	SignatureSize = 64
	ChainCodeSize = 32
)

type VkeyWitness struct {
	cbor.StructAsArray
	Vkey      []byte
	Signature []byte
}

// NewVkeyWitness checks the key and signature sizes
func NewVkeyWitness(vkey []byte, signature []byte) (VkeyWitness, error) {
	if len(vkey) != VkeySize || len(signature) != SignatureSize {
		return VkeyWitness{}, invalidValue(
			"VkeyWitness",
			"expected %d byte key and %d byte signature, found %d and %d",
			VkeySize,
			SignatureSize,
			len(vkey),
			len(signature),
		)
	}
	return VkeyWitness{
		Vkey:      slices.Clone(vkey),
		Signature: slices.Clone(signature),
	}, nil
}

// KeyHash returns the hash of the witnessing key
func (w VkeyWitness) KeyHash() AddrKeyHash {
	return Blake2b224Hash(w.Vkey)
}

type BootstrapWitness struct {
	cbor.StructAsArray
	PublicKey  []byte
	Signature  []byte
	ChainCode  []byte
	Attributes []byte
}

func NewBootstrapWitness(
	vkey []byte,
	signature []byte,
	chainCode []byte,
	attr ByronAddressAttributes,
) (BootstrapWitness, error) {
	if len(vkey) != VkeySize || len(signature) != SignatureSize ||
		len(chainCode) != ChainCodeSize {
		return BootstrapWitness{}, invalidValue(
			"BootstrapWitness",
			"bad key, signature or chain code length",
		)
	}
	attrCbor, err := attr.MarshalCBOR()
	if err != nil {
		return BootstrapWitness{}, err
	}
	return BootstrapWitness{
		PublicKey:  slices.Clone(vkey),
		Signature:  slices.Clone(signature),
		ChainCode:  slices.Clone(chainCode),
		Attributes: attrCbor,
	}, nil
}

type RedeemerTag uint8

const (
	RedeemerTagSpend     RedeemerTag = 0
	RedeemerTagMint      RedeemerTag = 1
	RedeemerTagCert      RedeemerTag = 2
	RedeemerTagReward    RedeemerTag = 3
	RedeemerTagVoting    RedeemerTag = 4
	RedeemerTagProposing RedeemerTag = 5
)

type Redeemer struct {
	cbor.StructAsArray
	Tag     RedeemerTag
	Index   uint32
	Data    Datum
	ExUnits ExUnits
}

type redeemerKey struct {
	cbor.StructAsArray
	Tag   RedeemerTag
	Index uint32
}

type redeemerValue struct {
	cbor.StructAsArray
	Data    Datum
	ExUnits ExUnits
}

// Redeemers holds the redeemers of a witness set. Both the legacy list form and
// the newer map form are decoded, and the form is kept for re-encoding
type Redeemers struct {
	items   []Redeemer
	mapForm bool
}

func NewRedeemers(items ...Redeemer) Redeemers {
	return Redeemers{items: slices.Clone(items)}
}

func (r Redeemers) Items() []Redeemer {
	return r.items
}

func (r Redeemers) Len() int {
	return len(r.items)
}

// TotalExUnits returns the summed execution budget of every redeemer
func (r Redeemers) TotalExUnits() ExUnits {
	var ret ExUnits
	for _, item := range r.items {
		ret.Memory += item.ExUnits.Memory
		ret.Steps += item.ExUnits.Steps
	}
	return ret
}

func (r *Redeemers) UnmarshalCBOR(cborData []byte) error {
	head, err := cbor.DecodeHead(cborData)
	if err != nil {
		return err
	}
	if head.Major == cbor.CborTypeMap {
		var tmpMap map[redeemerKey]cbor.RawMessage
		if err := cbor.DecodeExact(cborData, &tmpMap); err != nil {
			return err
		}
		items := make([]Redeemer, 0, len(tmpMap))
		for key, valCbor := range tmpMap {
			var tmpVal redeemerValue
			if err := cbor.DecodeExact(valCbor, &tmpVal); err != nil {
				return err
			}
			items = append(items, Redeemer{
				Tag:     key.Tag,
				Index:   key.Index,
				Data:    tmpVal.Data,
				ExUnits: tmpVal.ExUnits,
			})
		}
		slices.SortFunc(items, func(a, b Redeemer) int {
			if c := cmp.Compare(a.Tag, b.Tag); c != 0 {
				return c
			}
			return cmp.Compare(a.Index, b.Index)
		})
		r.items = items
		r.mapForm = true
		return nil
	}
	var items []Redeemer
	if err := cbor.DecodeExact(cborData, &items); err != nil {
		return err
	}
	r.items = items
	r.mapForm = false
	return nil
}

func (r Redeemers) MarshalCBOR() ([]byte, error) {
	if !r.mapForm {
		items := r.items
		if items == nil {
			items = []Redeemer{}
		}
		return cbor.Encode(items)
	}
	tmpMap := make(map[redeemerKey]redeemerValue, len(r.items))
	for _, item := range r.items {
		tmpMap[redeemerKey{Tag: item.Tag, Index: item.Index}] = redeemerValue{
			Data:    item.Data,
			ExUnits: item.ExUnits,
		}
	}
	return cbor.Encode(tmpMap)
}
