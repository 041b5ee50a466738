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
	"fmt"
	"io"
	"maps"
	"math/big"
	"slices"
	"unicode/utf8"

	"github.com/blinklabs-io/ledgerkit/cbor"
)

// MaxMetadatumLength is the maximum length in bytes of a metadata byte or text string
const MaxMetadatumLength = 64

// TransactionMetadatum is a closed sum over the metadata value types
type TransactionMetadatum interface {
	isTransactionMetadatum()
	TypeName() string
	MarshalCBOR() ([]byte, error)
}

type MetaInt struct{ Value *big.Int }

type MetaBytes struct{ Value []byte }

type MetaText struct{ Value string }

type MetaList struct {
	Items []TransactionMetadatum
}

type MetaPair struct {
	Key   TransactionMetadatum
	Value TransactionMetadatum
}

// MetaMap keeps its pairs in the order they were added or decoded
type MetaMap struct {
	Pairs []MetaPair
}

func (MetaInt) isTransactionMetadatum()   {}
func (MetaBytes) isTransactionMetadatum() {}
func (MetaText) isTransactionMetadatum()  {}
func (MetaList) isTransactionMetadatum()  {}
func (MetaMap) isTransactionMetadatum()   {}

func (m MetaInt) TypeName() string   { return "int" }
func (m MetaBytes) TypeName() string { return "bytes" }
func (m MetaText) TypeName() string  { return "text" }
func (m MetaList) TypeName() string  { return "list" }
func (m MetaMap) TypeName() string   { return "map" }

var (
	metaIntMax = new(big.Int).SetUint64(^uint64(0))
	metaIntMin = new(big.Int).Neg(new(big.Int).Add(metaIntMax, big.NewInt(1)))
)

// NewMetaInt returns an integer metadatum. The value must fit a CBOR major type 0 or 1 integer
func NewMetaInt(val *big.Int) (MetaInt, error) {
	if val == nil || val.Cmp(metaIntMax) > 0 || val.Cmp(metaIntMin) < 0 {
		return MetaInt{}, invalidValue("MetaInt", "value out of range")
	}
	return MetaInt{Value: new(big.Int).Set(val)}, nil
}

// NewMetaBytes returns a byte string metadatum of at most 64 bytes
func NewMetaBytes(val []byte) (MetaBytes, error) {
	if len(val) > MaxMetadatumLength {
		return MetaBytes{}, invalidValue(
			"MetaBytes",
			"length %d exceeds %d bytes",
			len(val),
			MaxMetadatumLength,
		)
	}
	return MetaBytes{Value: slices.Clone(val)}, nil
}

// NewMetaText returns a text metadatum of at most 64 UTF-8 bytes
func NewMetaText(val string) (MetaText, error) {
	if len(val) > MaxMetadatumLength {
		return MetaText{}, invalidValue(
			"MetaText",
			"length %d exceeds %d bytes",
			len(val),
			MaxMetadatumLength,
		)
	}
	if !utf8.ValidString(val) {
		return MetaText{}, invalidValue("MetaText", "invalid UTF-8")
	}
	return MetaText{Value: val}, nil
}

func (m MetaInt) MarshalCBOR() ([]byte, error) {
	if m.Value == nil {
		return []byte{0x00}, nil
	}
	return cbor.Encode(m.Value)
}

func (m MetaBytes) MarshalCBOR() ([]byte, error) {
	ret := cbor.AppendHead(nil, cbor.CborTypeByteString, uint64(len(m.Value)))
	return append(ret, m.Value...), nil
}

func (m MetaText) MarshalCBOR() ([]byte, error) {
	ret := cbor.AppendHead(nil, cbor.CborTypeTextString, uint64(len(m.Value)))
	return append(ret, m.Value...), nil
}

func (m MetaList) MarshalCBOR() ([]byte, error) {
	ret := cbor.AppendHead(nil, cbor.CborTypeArray, uint64(len(m.Items)))
	for idx, item := range m.Items {
		if item == nil {
			return nil, fmt.Errorf("metadata list item %d is nil", idx)
		}
		itemCbor, err := item.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		ret = append(ret, itemCbor...)
	}
	return ret, nil
}

func (m MetaMap) MarshalCBOR() ([]byte, error) {
	ret := cbor.AppendHead(nil, cbor.CborTypeMap, uint64(len(m.Pairs)))
	for idx, pair := range m.Pairs {
		if pair.Key == nil || pair.Value == nil {
			return nil, fmt.Errorf("metadata map pair %d is incomplete", idx)
		}
		keyCbor, err := pair.Key.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		valCbor, err := pair.Value.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		ret = append(ret, keyCbor...)
		ret = append(ret, valCbor...)
	}
	return ret, nil
}

// Get returns the value for the first pair whose key encodes the same as key
func (m MetaMap) Get(key TransactionMetadatum) (TransactionMetadatum, bool) {
	keyCbor, err := key.MarshalCBOR()
	if err != nil {
		return nil, false
	}
	for _, pair := range m.Pairs {
		tmpCbor, err := pair.Key.MarshalCBOR()
		if err != nil {
			continue
		}
		if string(tmpCbor) == string(keyCbor) {
			return pair.Value, true
		}
	}
	return nil, false
}

// DecodeMetadatumRaw decodes a single metadatum that must span all of b
func DecodeMetadatumRaw(b []byte) (TransactionMetadatum, error) {
	ret, n, err := decodeMetadatum(b, 0)
	if err != nil {
		return nil, err
	}
	if n != len(b) {
		return nil, cbor.Malformedf(
			"%d bytes of trailing data after metadatum",
			len(b)-n,
		)
	}
	return ret, nil
}

// decodeMetadatum walks the input item by item so that map pair order is kept
func decodeMetadatum(b []byte, depth int) (TransactionMetadatum, int, error) {
	if depth > 256 {
		return nil, 0, cbor.Malformedf("metadata nested too deeply")
	}
	head, err := cbor.DecodeHead(b)
	if err != nil {
		return nil, 0, err
	}
	switch head.Major {
	case cbor.CborTypeUint, cbor.CborTypeNint:
		n := new(big.Int)
		bytesRead, err := cbor.Decode(b, n)
		if err != nil {
			return nil, 0, err
		}
		return MetaInt{Value: n}, bytesRead, nil
	case cbor.CborTypeByteString:
		var bs []byte
		bytesRead, err := cbor.Decode(b, &bs)
		if err != nil {
			return nil, 0, err
		}
		if len(bs) > MaxMetadatumLength {
			return nil, 0, cbor.Malformedf(
				"metadata bytes too long: %d",
				len(bs),
			)
		}
		return MetaBytes{Value: bs}, bytesRead, nil
	case cbor.CborTypeTextString:
		var s string
		bytesRead, err := cbor.Decode(b, &s)
		if err != nil {
			return nil, 0, err
		}
		if len(s) > MaxMetadatumLength {
			return nil, 0, cbor.Malformedf(
				"metadata text too long: %d",
				len(s),
			)
		}
		return MetaText{Value: s}, bytesRead, nil
	case cbor.CborTypeArray:
		items := []TransactionMetadatum{}
		pos, err := walkContainer(b, head, 1, func(data []byte) (int, error) {
			item, n, err := decodeMetadatum(data, depth+1)
			if err != nil {
				return 0, err
			}
			items = append(items, item)
			return n, nil
		})
		if err != nil {
			return nil, 0, err
		}
		return MetaList{Items: items}, pos, nil
	case cbor.CborTypeMap:
		pairs := []MetaPair{}
		var key TransactionMetadatum
		pos, err := walkContainer(b, head, 2, func(data []byte) (int, error) {
			item, n, err := decodeMetadatum(data, depth+1)
			if err != nil {
				return 0, err
			}
			if key == nil {
				key = item
				return n, nil
			}
			pairs = append(pairs, MetaPair{Key: key, Value: item})
			key = nil
			return n, nil
		})
		if err != nil {
			return nil, 0, err
		}
		return MetaMap{Pairs: pairs}, pos, nil
	default:
		return nil, 0, cbor.Malformedf(
			"unsupported CBOR major type %d in metadata",
			head.Major>>5,
		)
	}
}

// walkContainer calls fn for each item of an array (itemsPerEntry 1) or map
// (itemsPerEntry 2) and returns the total encoded length including any break
func walkContainer(
	b []byte,
	head cbor.Head,
	itemsPerEntry uint64,
	fn func([]byte) (int, error),
) (int, error) {
	pos := head.Size
	if head.Indefinite {
		for {
			if pos >= len(b) {
				return 0, cbor.NewMalformedEncodingError(
					fmt.Errorf("missing break: %w", io.ErrUnexpectedEOF),
				)
			}
			if b[pos] == cbor.CborBreak {
				return pos + 1, nil
			}
			for range itemsPerEntry {
				n, err := fn(b[pos:])
				if err != nil {
					return 0, err
				}
				pos += n
			}
		}
	}
	// Every item takes at least one byte
	if head.Arg > uint64(len(b)) {
		return 0, cbor.NewMalformedEncodingError(
			fmt.Errorf("container length %d: %w", head.Arg, io.ErrUnexpectedEOF),
		)
	}
	for range head.Arg * itemsPerEntry {
		n, err := fn(b[pos:])
		if err != nil {
			return 0, err
		}
		pos += n
	}
	return pos, nil
}

// TransactionMetadata maps metadata labels to values
type TransactionMetadata map[uint64]TransactionMetadatum

func (m TransactionMetadata) MarshalCBOR() ([]byte, error) {
	labels := slices.Sorted(maps.Keys(m))
	ret := cbor.AppendHead(nil, cbor.CborTypeMap, uint64(len(labels)))
	for _, label := range labels {
		ret = cbor.AppendHead(ret, cbor.CborTypeUint, label)
		if m[label] == nil {
			return nil, fmt.Errorf("metadata label %d has no value", label)
		}
		valCbor, err := m[label].MarshalCBOR()
		if err != nil {
			return nil, err
		}
		ret = append(ret, valCbor...)
	}
	return ret, nil
}

func (m *TransactionMetadata) UnmarshalCBOR(cborData []byte) error {
	head, err := cbor.DecodeHead(cborData)
	if err != nil {
		return err
	}
	if head.Major != cbor.CborTypeMap {
		return cbor.Malformedf(
			"metadata must be a map, found major type %d",
			head.Major>>5,
		)
	}
	ret := TransactionMetadata{}
	var label *uint64
	pos, err := walkContainer(cborData, head, 2, func(data []byte) (int, error) {
		if label == nil {
			var tmpLabel uint64
			n, err := cbor.Decode(data, &tmpLabel)
			if err != nil {
				return 0, err
			}
			if _, ok := ret[tmpLabel]; ok {
				return 0, cbor.Malformedf("duplicate metadata label %d", tmpLabel)
			}
			label = &tmpLabel
			return n, nil
		}
		item, n, err := decodeMetadatum(data, 0)
		if err != nil {
			return 0, err
		}
		ret[*label] = item
		label = nil
		return n, nil
	})
	if err != nil {
		return err
	}
	if pos != len(cborData) {
		return cbor.Malformedf("%d bytes of trailing data after metadata", len(cborData)-pos)
	}
	*m = ret
	return nil
}
