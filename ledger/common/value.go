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
	"math"
	"math/big"

	"github.com/blinklabs-io/ledgerkit/cbor"
	"github.com/blinklabs-io/plutigo/data"
)

// Value is an amount of lovelace plus an optional multi-asset bundle
type Value struct {
	Coin   uint64
	Assets MultiAsset[MultiAssetTypeOutput]
}

// NewValue returns a Value holding coin and a copy of assets
func NewValue(coin uint64, assets MultiAsset[MultiAssetTypeOutput]) Value {
	return Value{
		Coin:   coin,
		Assets: assets.Clone(),
	}
}

// NewCoinValue returns a Value with no assets
func NewCoinValue(coin uint64) Value {
	return Value{Coin: coin}
}

func NewValueFromCbor(cborData []byte) (Value, error) {
	var ret Value
	if err := ret.UnmarshalCBOR(cborData); err != nil {
		return Value{}, err
	}
	return ret, nil
}

type valueWithAssets struct {
	cbor.StructAsArray
	Coin   uint64
	Assets MultiAsset[MultiAssetTypeOutput]
}

func (v *Value) UnmarshalCBOR(cborData []byte) error {
	head, err := cbor.DecodeHead(cborData)
	if err != nil {
		return err
	}
	switch head.Major {
	case cbor.CborTypeUint:
		var coin uint64
		if err := cbor.DecodeExact(cborData, &coin); err != nil {
			return err
		}
		*v = Value{Coin: coin}
	case cbor.CborTypeArray:
		var tmpItems []cbor.RawMessage
		if err := cbor.DecodeExact(cborData, &tmpItems); err != nil {
			return err
		}
		if len(tmpItems) != 2 {
			return cbor.Malformedf(
				"value must have 2 items, found %d",
				len(tmpItems),
			)
		}
		var tmp valueWithAssets
		if err := cbor.DecodeExactNotNull(tmpItems[0], &tmp.Coin); err != nil {
			return err
		}
		if err := cbor.DecodeExactNotNull(tmpItems[1], &tmp.Assets); err != nil {
			return err
		}
		*v = Value{Coin: tmp.Coin, Assets: tmp.Assets}
	default:
		return cbor.Malformedf(
			"value must be an integer or array, found major type %d",
			head.Major>>5,
		)
	}
	return nil
}

func (v Value) MarshalCBOR() ([]byte, error) {
	if v.Assets.IsEmpty() {
		return cbor.Encode(v.Coin)
	}
	return cbor.Encode(
		&valueWithAssets{
			Coin:   v.Coin,
			Assets: v.Assets,
		},
	)
}

// HasAssets returns true if the value carries any non-zero asset quantity
func (v Value) HasAssets() bool {
	return !v.Assets.IsEmpty()
}

// IsZero returns true if there is no lovelace and no asset
func (v Value) IsZero() bool {
	return v.Coin == 0 && v.Assets.IsEmpty()
}

func (v Value) Clone() Value {
	return Value{
		Coin:   v.Coin,
		Assets: v.Assets.Clone(),
	}
}

// Equal compares lovelace and non-zero asset quantities
func (v Value) Equal(other Value) bool {
	return v.Coin == other.Coin && v.Assets.Compare(other.Assets)
}

// Add returns the sum of both values
func (v Value) Add(other Value) (Value, error) {
	if v.Coin > math.MaxUint64-other.Coin {
		return Value{}, invalidValue("Value", "lovelace amount overflows")
	}
	ret := v.Clone()
	ret.Coin += other.Coin
	if err := ret.Assets.Add(other.Assets); err != nil {
		return Value{}, err
	}
	return ret, nil
}

// Sub returns v minus other, failing when any quantity would go negative
func (v Value) Sub(other Value) (Value, error) {
	if other.Coin > v.Coin {
		return Value{}, InsufficientValueError{
			Available: v.Coin,
			Required:  other.Coin,
		}
	}
	ret := v.Clone()
	ret.Coin -= other.Coin
	if err := ret.Assets.Sub(other.Assets); err != nil {
		return Value{}, err
	}
	return ret, nil
}

// ClampedSub returns v minus other with every quantity floored at zero
func (v Value) ClampedSub(other Value) Value {
	ret := v.Clone()
	if other.Coin >= ret.Coin {
		ret.Coin = 0
	} else {
		ret.Coin -= other.Coin
	}
	for _, policyId := range other.Assets.Policies() {
		for _, assetName := range other.Assets.Assets(policyId) {
			have := ret.Assets.Asset(policyId, assetName)
			want := other.Assets.Asset(policyId, assetName)
			if want >= have {
				// Removing an entry never fails
				_ = ret.Assets.Set(policyId, assetName, 0)
			} else {
				_ = ret.Assets.Set(policyId, assetName, have-want)
			}
		}
	}
	return ret
}

// GreaterOrEqual returns true if v covers every quantity in other
func (v Value) GreaterOrEqual(other Value) bool {
	return v.Coin >= other.Coin && v.Assets.Covers(other.Assets)
}

func (v Value) String() string {
	if v.Assets.IsEmpty() {
		return fmt.Sprintf("%d", v.Coin)
	}
	return fmt.Sprintf("%d+%s", v.Coin, v.Assets.String())
}

func (v Value) ToPlutusData() data.PlutusData {
	pairs := [][2]data.PlutusData{
		{
			data.NewByteString(nil),
			data.NewMap(
				[][2]data.PlutusData{
					{
						data.NewByteString(nil),
						data.NewInteger(new(big.Int).SetUint64(v.Coin)),
					},
				},
			),
		},
	}
	if assetsPd, ok := v.Assets.ToPlutusData().(*data.Map); ok {
		pairs = append(pairs, assetsPd.Pairs...)
	}
	return data.NewMap(pairs)
}
