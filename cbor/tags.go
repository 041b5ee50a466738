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

package cbor

import (
	"math/big"
	"reflect"

	_cbor "github.com/fxamacker/cbor/v2"
)

const (
	// Useful tag numbers
	CborTagPositiveBignum = 2
	CborTagNegativeBignum = 3
	CborTagCbor           = 24
	CborTagRational       = 30
	CborTagSet            = 258
	CborTagMap            = 259
)

var customTagSet _cbor.TagSet

func init() {
	// Build custom tagset
	customTagSet = _cbor.NewTagSet()
	tagOpts := _cbor.TagOptions{EncTag: _cbor.EncTagRequired, DecTag: _cbor.DecTagRequired}
	// Wrapped CBOR
	if err := customTagSet.Add(
		tagOpts,
		reflect.TypeOf(WrappedCbor{}),
		CborTagCbor,
	); err != nil {
		panic(err)
	}
	// Rational numbers
	if err := customTagSet.Add(
		tagOpts,
		reflect.TypeOf(Rat{}),
		CborTagRational,
	); err != nil {
		panic(err)
	}
	// Sets
	if err := customTagSet.Add(
		tagOpts,
		reflect.TypeOf(Set{}),
		CborTagSet,
	); err != nil {
		panic(err)
	}
	// Maps
	if err := customTagSet.Add(
		tagOpts,
		reflect.TypeOf(Map{}),
		CborTagMap,
	); err != nil {
		panic(err)
	}
}

// WrappedCbor corresponds to CBOR tag 24 and is used to encode nested CBOR data
type WrappedCbor []byte

func (w WrappedCbor) Bytes() []byte {
	return w[:]
}

// Rat corresponds to CBOR tag 30 and is used to represent a rational number
type Rat struct {
	*big.Rat
}

func (r *Rat) UnmarshalCBOR(cborData []byte) error {
	tmpRat := []*big.Int{}
	if err := DecodeExact(cborData, &tmpRat); err != nil {
		return err
	}
	if len(tmpRat) != 2 {
		return Malformedf("rational must have 2 elements, found %d", len(tmpRat))
	}
	if tmpRat[1].Sign() <= 0 {
		return Malformedf("rational must have a positive denominator")
	}
	r.Rat = new(big.Rat).SetFrac(tmpRat[0], tmpRat[1])
	return nil
}

func (r *Rat) MarshalCBOR() ([]byte, error) {
	tmpData := _cbor.Tag{
		Number: CborTagRational,
		Content: []*big.Int{
			r.Num(),
			r.Denom(),
		},
	}
	return Encode(&tmpData)
}

func (r *Rat) ToBigRat() *big.Rat {
	return r.Rat
}

// Set corresponds to CBOR tag 258 and is used to represent a mathematical finite set
type Set []any

// Map corresponds to CBOR tag 259 and is used to represent a map with key/value operations
type Map map[any]any

// SetType is a list of items that may or may not carry the set tag (258) on the
// wire. The presence of the tag is remembered so that decoded data re-encodes to
// the same bytes
type SetType[T any] struct {
	items  []T
	useTag bool
}

func NewSetType[T any](items []T, useTag bool) SetType[T] {
	return SetType[T]{
		items:  items,
		useTag: useTag,
	}
}

func (t *SetType[T]) UnmarshalCBOR(data []byte) error {
	head, err := DecodeHead(data)
	if err != nil {
		return err
	}
	var items []T
	if head.Major == CborTypeTag {
		if head.Arg != CborTagSet {
			return Malformedf("unexpected tag %d where set expected", head.Arg)
		}
		if err := DecodeExact(data[head.Size:], &items); err != nil {
			return err
		}
		t.useTag = true
	} else {
		if err := DecodeExact(data, &items); err != nil {
			return err
		}
		t.useTag = false
	}
	t.items = items
	return nil
}

func (t SetType[T]) MarshalCBOR() ([]byte, error) {
	items := t.items
	if items == nil {
		items = []T{}
	}
	if t.useTag {
		return Encode(Tag{Number: CborTagSet, Content: items})
	}
	return Encode(items)
}

// Items returns the set members
func (t SetType[T]) Items() []T {
	return t.items
}

// Len returns the number of set members
func (t SetType[T]) Len() int {
	return len(t.items)
}

// Tagged returns true if the set carries (or was decoded with) tag 258
func (t SetType[T]) Tagged() bool {
	return t.useTag
}
