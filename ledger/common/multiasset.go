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
	"bytes"
	"encoding/hex"
	"encoding/json"
	"maps"
	"math"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/blinklabs-io/ledgerkit/cbor"
	"github.com/blinklabs-io/plutigo/data"
)

// MaxAssetNameLength is the maximum length of an asset name in bytes
const MaxAssetNameLength = 32

type (
	MultiAssetTypeOutput = uint64
	MultiAssetTypeMint   = int64
)

// MultiAsset represents a collection of policies, assets, and quantities. It's used for
// TX outputs (uint64) and TX asset minting (int64 to allow for negative values for burning)
type MultiAsset[T int64 | uint64] struct {
	data map[Blake2b224]map[cbor.ByteString]T
}

// NewMultiAsset creates a MultiAsset with the specified data
func NewMultiAsset[T int64 | uint64](
	data map[Blake2b224]map[cbor.ByteString]T,
) MultiAsset[T] {
	if data == nil {
		data = make(map[Blake2b224]map[cbor.ByteString]T)
	}
	return MultiAsset[T]{data: data}
}

// NewMultiAssetChecked creates a MultiAsset, validating asset name lengths
func NewMultiAssetChecked[T int64 | uint64](
	data map[Blake2b224]map[cbor.ByteString]T,
) (MultiAsset[T], error) {
	for policyId, assets := range data {
		for assetName := range assets {
			if assetName.Len() > MaxAssetNameLength {
				return MultiAsset[T]{}, invalidValue(
					"MultiAsset",
					"asset name %x under policy %s exceeds %d bytes",
					assetName.Bytes(),
					policyId.String(),
					MaxAssetNameLength,
				)
			}
		}
	}
	return NewMultiAsset(data), nil
}

// multiAssetJson is a convenience type for marshaling MultiAsset to JSON
type multiAssetJson struct {
	Name        string `json:"name"`
	NameHex     string `json:"nameHex"`
	PolicyId    string `json:"policyId"`
	Fingerprint string `json:"fingerprint"`
	Amount      string `json:"amount"`
}

func (m *MultiAsset[T]) UnmarshalCBOR(cborData []byte) error {
	tmpData := make(map[Blake2b224]map[cbor.ByteString]T)
	if err := cbor.DecodeExact(cborData, &tmpData); err != nil {
		return err
	}
	for _, assets := range tmpData {
		for assetName := range assets {
			if assetName.Len() > MaxAssetNameLength {
				return cbor.Malformedf(
					"asset name too long: %d bytes",
					assetName.Len(),
				)
			}
		}
	}
	m.data = tmpData
	return nil
}

func (m MultiAsset[T]) MarshalCBOR() ([]byte, error) {
	// The CBOR library is configured with SortCoreDeterministic, so direct encoding
	// of the map produces deterministic output without manual sorting
	return cbor.Encode(m.normalize())
}

func (m MultiAsset[T]) MarshalJSON() ([]byte, error) {
	tmpAssets := []multiAssetJson{}
	for _, policyId := range m.Policies() {
		for _, assetName := range m.Assets(policyId) {
			tmpAssets = append(
				tmpAssets,
				multiAssetJson{
					Name:     string(assetName),
					NameHex:  hex.EncodeToString(assetName),
					Amount:   amountToString(m.Asset(policyId, assetName)),
					PolicyId: policyId.String(),
					Fingerprint: NewAssetFingerprint(
						policyId.Bytes(),
						assetName,
					).String(),
				},
			)
		}
	}
	return json.Marshal(&tmpAssets)
}

func (m MultiAsset[T]) ToPlutusData() data.PlutusData {
	tmpData := [][2]data.PlutusData{}
	for _, policyId := range m.Policies() {
		tmpPolicyData := [][2]data.PlutusData{}
		for _, assetName := range m.Assets(policyId) {
			tmpPolicyData = append(
				tmpPolicyData,
				[2]data.PlutusData{
					data.NewByteString(assetName),
					data.NewInteger(amountToBigInt(m.Asset(policyId, assetName))),
				},
			)
		}
		tmpData = append(
			tmpData,
			[2]data.PlutusData{
				data.NewByteString(policyId.Bytes()),
				data.NewMap(tmpPolicyData),
			},
		)
	}
	return data.NewMap(tmpData)
}

// Policies returns the policy IDs with at least one non-zero asset, in canonical order
func (m MultiAsset[T]) Policies() []Blake2b224 {
	norm := m.normalize()
	ret := slices.Collect(maps.Keys(norm))
	slices.SortFunc(
		ret,
		func(a, b Blake2b224) int { return bytes.Compare(a.Bytes(), b.Bytes()) },
	)
	return ret
}

// Assets returns the non-zero asset names under a policy, in canonical order
func (m MultiAsset[T]) Assets(policyId Blake2b224) [][]byte {
	assets, ok := m.data[policyId]
	if !ok {
		return nil
	}
	names := make([]cbor.ByteString, 0, len(assets))
	for assetName, amount := range assets {
		if amount != 0 {
			names = append(names, assetName)
		}
	}
	slices.SortFunc(names, compareAssetNames)
	ret := make([][]byte, 0, len(names))
	for _, name := range names {
		ret = append(ret, name.Bytes())
	}
	return ret
}

// Asset returns the quantity of the specified asset, or zero
func (m MultiAsset[T]) Asset(policyId Blake2b224, assetName []byte) T {
	policy, ok := m.data[policyId]
	if !ok {
		return 0
	}
	return policy[cbor.NewByteString(assetName)]
}

// Set replaces the quantity of an asset. A zero amount removes it
func (m *MultiAsset[T]) Set(policyId Blake2b224, assetName []byte, amount T) error {
	if len(assetName) > MaxAssetNameLength {
		return invalidValue(
			"MultiAsset",
			"asset name exceeds %d bytes",
			MaxAssetNameLength,
		)
	}
	if m.data == nil {
		m.data = make(map[Blake2b224]map[cbor.ByteString]T)
	}
	if amount == 0 {
		if policy, ok := m.data[policyId]; ok {
			delete(policy, cbor.NewByteString(assetName))
			if len(policy) == 0 {
				delete(m.data, policyId)
			}
		}
		return nil
	}
	if _, ok := m.data[policyId]; !ok {
		m.data[policyId] = make(map[cbor.ByteString]T)
	}
	m.data[policyId][cbor.NewByteString(assetName)] = amount
	return nil
}

// Add adds the quantities from assets. On overflow an error is returned and the
// receiver is left unchanged
func (m *MultiAsset[T]) Add(assets MultiAsset[T]) error {
	tmpData := m.Clone().data
	for policy, policyAssets := range assets.data {
		for asset, amount := range policyAssets {
			if _, ok := tmpData[policy]; !ok {
				tmpData[policy] = make(map[cbor.ByteString]T)
			}
			newAmount, ok := addAmounts(tmpData[policy][asset], amount)
			if !ok {
				return AssetAmountOverflowError{
					PolicyId:  policy,
					AssetName: asset.Bytes(),
				}
			}
			tmpData[policy][asset] = newAmount
		}
	}
	m.data = tmpData
	return nil
}

// Sub subtracts the quantities in assets. For output bundles, taking more of an
// asset than is present fails with InsufficientValueError. On error the receiver
// is left unchanged
func (m *MultiAsset[T]) Sub(assets MultiAsset[T]) error {
	tmpData := m.Clone().data
	for policy, policyAssets := range assets.data {
		for asset, amount := range policyAssets {
			existing := tmpData[policy][asset]
			newAmount, ok := subAmounts(existing, amount)
			if !ok {
				if _, isUnsigned := any(amount).(uint64); isUnsigned {
					return InsufficientValueError{
						Unit:      policy.String() + "." + asset.String(),
						Available: uint64(existing),
						Required:  uint64(amount),
					}
				}
				return AssetAmountOverflowError{
					PolicyId:  policy,
					AssetName: asset.Bytes(),
				}
			}
			if _, ok := tmpData[policy]; !ok {
				tmpData[policy] = make(map[cbor.ByteString]T)
			}
			tmpData[policy][asset] = newAmount
		}
	}
	m.data = tmpData
	return nil
}

// Covers returns true if every asset quantity in other is present in m
func (m MultiAsset[T]) Covers(other MultiAsset[T]) bool {
	for policy, assets := range other.data {
		for asset, amount := range assets {
			if amount > m.Asset(policy, asset.Bytes()) {
				return false
			}
		}
	}
	return true
}

// Compare returns true if both bundles hold the same non-zero quantities
func (m MultiAsset[T]) Compare(assets MultiAsset[T]) bool {
	tmpData := m.normalize()
	otherData := assets.normalize()
	if len(otherData) != len(tmpData) {
		return false
	}
	for policy, policyAssets := range otherData {
		if len(policyAssets) != len(tmpData[policy]) {
			return false
		}
		for asset, amount := range policyAssets {
			if amount != tmpData[policy][asset] {
				return false
			}
		}
	}
	return true
}

// IsEmpty returns true if there are no non-zero quantities
func (m MultiAsset[T]) IsEmpty() bool {
	return len(m.normalize()) == 0
}

// Len returns the number of distinct non-zero assets
func (m MultiAsset[T]) Len() int {
	ret := 0
	for _, assets := range m.normalize() {
		ret += len(assets)
	}
	return ret
}

// Clone returns a deep copy
func (m MultiAsset[T]) Clone() MultiAsset[T] {
	ret := make(map[Blake2b224]map[cbor.ByteString]T, len(m.data))
	for policy, assets := range m.data {
		ret[policy] = maps.Clone(assets)
	}
	return MultiAsset[T]{data: ret}
}

func (m MultiAsset[T]) normalize() map[Blake2b224]map[cbor.ByteString]T {
	ret := map[Blake2b224]map[cbor.ByteString]T{}
	for policy, assets := range m.data {
		for asset, amount := range assets {
			if amount == 0 {
				continue
			}
			if _, ok := ret[policy]; !ok {
				ret[policy] = make(map[cbor.ByteString]T)
			}
			ret[policy][asset] = amount
		}
	}
	return ret
}

// String returns a stable, human-friendly representation of the MultiAsset.
// Output format: [<policyId>.<assetNameHex>=<amount>, ...] sorted by policyId, then asset name
func (m MultiAsset[T]) String() string {
	var b strings.Builder
	b.WriteByte('[')
	first := true
	for _, pid := range m.Policies() {
		for _, name := range m.Assets(pid) {
			if !first {
				b.WriteString(", ")
			}
			first = false
			b.WriteString(pid.String())
			b.WriteByte('.')
			b.WriteString(hex.EncodeToString(name))
			b.WriteByte('=')
			b.WriteString(amountToString(m.Asset(pid, name)))
		}
	}
	b.WriteByte(']')
	return b.String()
}

// compareAssetNames orders asset names the way their CBOR encodings sort: shorter first
func compareAssetNames(a, b cbor.ByteString) int {
	if a.Len() != b.Len() {
		return a.Len() - b.Len()
	}
	return bytes.Compare(a.Bytes(), b.Bytes())
}

// Helper functions for generic amount handling

func addAmounts[T int64 | uint64](a, b T) (T, bool) {
	switch av := any(a).(type) {
	case int64:
		bv := any(b).(int64)
		if (bv > 0 && av > math.MaxInt64-bv) || (bv < 0 && av < math.MinInt64-bv) {
			return 0, false
		}
		return any(av + bv).(T), true
	case uint64:
		bv := any(b).(uint64)
		if av > math.MaxUint64-bv {
			return 0, false
		}
		return any(av + bv).(T), true
	}
	return 0, false
}

func subAmounts[T int64 | uint64](a, b T) (T, bool) {
	switch av := any(a).(type) {
	case int64:
		bv := any(b).(int64)
		if (bv < 0 && av > math.MaxInt64+bv) || (bv > 0 && av < math.MinInt64+bv) {
			return 0, false
		}
		return any(av - bv).(T), true
	case uint64:
		bv := any(b).(uint64)
		if bv > av {
			return 0, false
		}
		return any(av - bv).(T), true
	}
	return 0, false
}

func amountToString[T int64 | uint64](a T) string {
	switch av := any(a).(type) {
	case int64:
		return strconv.FormatInt(av, 10)
	case uint64:
		return strconv.FormatUint(av, 10)
	}
	return "0"
}

func amountToBigInt[T int64 | uint64](a T) *big.Int {
	switch av := any(a).(type) {
	case int64:
		return big.NewInt(av)
	case uint64:
		return new(big.Int).SetUint64(av)
	}
	return new(big.Int)
}
