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
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/blinklabs-io/ledgerkit/cbor"
	"github.com/blinklabs-io/plutigo/data"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"golang.org/x/crypto/blake2b"
)

const (
	Blake2b256Size = 32
	Blake2b224Size = 28
	Blake2b160Size = 20
)

type Blake2b256 [Blake2b256Size]byte

func NewBlake2b256(data []byte) Blake2b256 {
	b := Blake2b256{}
	copy(b[:], data)
	return b
}

// NewBlake2b256FromHex parses a hex-encoded 32-byte hash
func NewBlake2b256FromHex(hexStr string) (Blake2b256, error) {
	var ret Blake2b256
	if err := decodeHashHex(hexStr, ret[:], "Blake2b256"); err != nil {
		return ret, err
	}
	return ret, nil
}

func (b Blake2b256) String() string {
	return hex.EncodeToString(b[:])
}

func (b Blake2b256) Bytes() []byte {
	return b[:]
}

func (b Blake2b256) ToPlutusData() data.PlutusData {
	return data.NewByteString(b[:])
}

func (b Blake2b256) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b Blake2b256) MarshalCBOR() ([]byte, error) {
	// Ensure we always encode a full-sized bytestring, even if the hash is zero-valued
	hashBytes := make([]byte, Blake2b256Size)
	copy(hashBytes, b[:])
	return cbor.Encode(hashBytes)
}

func (b *Blake2b256) UnmarshalCBOR(cborData []byte) error {
	return unmarshalHash(cborData, b[:], "Blake2b256")
}

func (b Blake2b256) Bech32(prefix string) string {
	return encodeBech32(prefix, b[:])
}

// Blake2b256Hash generates a Blake2b-256 hash from the provided data
func Blake2b256Hash(data []byte) Blake2b256 {
	tmpHash, err := blake2b.New(Blake2b256Size, nil)
	if err != nil {
		panic(
			fmt.Sprintf(
				"unexpected error generating empty blake2b hash: %s",
				err,
			),
		)
	}
	tmpHash.Write(data)
	return Blake2b256(tmpHash.Sum(nil))
}

type Blake2b224 [Blake2b224Size]byte

func NewBlake2b224(data []byte) Blake2b224 {
	b := Blake2b224{}
	copy(b[:], data)
	return b
}

// NewBlake2b224FromHex parses a hex-encoded 28-byte hash
func NewBlake2b224FromHex(hexStr string) (Blake2b224, error) {
	var ret Blake2b224
	if err := decodeHashHex(hexStr, ret[:], "Blake2b224"); err != nil {
		return ret, err
	}
	return ret, nil
}

func (b Blake2b224) String() string {
	return hex.EncodeToString(b[:])
}

func (b Blake2b224) Bytes() []byte {
	return b[:]
}

func (b Blake2b224) ToPlutusData() data.PlutusData {
	return data.NewByteString(b[:])
}

func (b Blake2b224) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b Blake2b224) MarshalCBOR() ([]byte, error) {
	// Ensure we always encode a full-sized bytestring, even if the hash is zero-valued
	hashBytes := make([]byte, Blake2b224Size)
	copy(hashBytes, b[:])
	return cbor.Encode(hashBytes)
}

func (b *Blake2b224) UnmarshalCBOR(cborData []byte) error {
	return unmarshalHash(cborData, b[:], "Blake2b224")
}

func (b Blake2b224) Bech32(prefix string) string {
	return encodeBech32(prefix, b[:])
}

// Blake2b224Hash generates a Blake2b-224 hash from the provided data
func Blake2b224Hash(data []byte) Blake2b224 {
	tmpHash, err := blake2b.New(Blake2b224Size, nil)
	if err != nil {
		panic(
			fmt.Sprintf(
				"unexpected error generating empty blake2b hash: %s",
				err,
			),
		)
	}
	tmpHash.Write(data)
	return Blake2b224(tmpHash.Sum(nil))
}

type Blake2b160 [Blake2b160Size]byte

func NewBlake2b160(data []byte) Blake2b160 {
	b := Blake2b160{}
	copy(b[:], data)
	return b
}

func (b Blake2b160) String() string {
	return hex.EncodeToString(b[:])
}

func (b Blake2b160) Bytes() []byte {
	return b[:]
}

func (b Blake2b160) MarshalCBOR() ([]byte, error) {
	hashBytes := make([]byte, Blake2b160Size)
	copy(hashBytes, b[:])
	return cbor.Encode(hashBytes)
}

func (b *Blake2b160) UnmarshalCBOR(cborData []byte) error {
	return unmarshalHash(cborData, b[:], "Blake2b160")
}

// Blake2b160Hash generates a Blake2b-160 hash from the provided data
func Blake2b160Hash(data []byte) Blake2b160 {
	tmpHash, err := blake2b.New(Blake2b160Size, nil)
	if err != nil {
		panic(
			fmt.Sprintf(
				"unexpected error generating empty blake2b hash: %s",
				err,
			),
		)
	}
	tmpHash.Write(data)
	return Blake2b160(tmpHash.Sum(nil))
}

type (
	GenesisHash       = Blake2b224
	PolicyId          = Blake2b224
	AuxiliaryDataHash = Blake2b256
	ScriptDataHash    = Blake2b256
	TransactionId     = Blake2b256
)

func unmarshalHash(cborData []byte, dest []byte, typeName string) error {
	var tmpBytes []byte
	if err := cbor.DecodeExact(cborData, &tmpBytes); err != nil {
		return err
	}
	if len(tmpBytes) != len(dest) {
		return cbor.Malformedf(
			"%s: expected %d bytes, found %d",
			typeName,
			len(dest),
			len(tmpBytes),
		)
	}
	copy(dest, tmpBytes)
	return nil
}

func decodeHashHex(hexStr string, dest []byte, typeName string) error {
	tmpBytes, err := hex.DecodeString(hexStr)
	if err != nil {
		return InvalidValueError{Type: typeName, Reason: "bad hex", Err: err}
	}
	if len(tmpBytes) != len(dest) {
		return invalidValue(
			typeName,
			"expected %d bytes, found %d",
			len(dest),
			len(tmpBytes),
		)
	}
	copy(dest, tmpBytes)
	return nil
}

func encodeBech32(prefix string, payload []byte) string {
	// Convert data to base32 and encode as bech32
	convData, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		panic(
			fmt.Sprintf("unexpected error converting data to base32: %s", err),
		)
	}
	encoded, err := bech32.Encode(prefix, convData)
	if err != nil {
		panic(fmt.Sprintf("unexpected error encoding data as bech32: %s", err))
	}
	return encoded
}

func decodeBech32(encoded string) (string, []byte, error) {
	hrp, tmpData, err := bech32.DecodeNoLimit(encoded)
	if err != nil {
		return "", nil, err
	}
	decoded, err := bech32.ConvertBits(tmpData, 5, 8, false)
	if err != nil {
		return "", nil, err
	}
	return hrp, decoded, nil
}

type AssetFingerprint struct {
	policyId  []byte
	assetName []byte
}

func NewAssetFingerprint(policyId []byte, assetName []byte) AssetFingerprint {
	return AssetFingerprint{
		policyId:  policyId,
		assetName: assetName,
	}
}

func (a AssetFingerprint) Hash() Blake2b160 {
	tmpData := make([]byte, 0, len(a.policyId)+len(a.assetName))
	tmpData = append(tmpData, a.policyId...)
	tmpData = append(tmpData, a.assetName...)
	return Blake2b160Hash(tmpData)
}

func (a AssetFingerprint) String() string {
	return encodeBech32("asset", a.Hash().Bytes())
}

// ExUnits represents the steps and memory usage for script execution
type ExUnits struct {
	cbor.StructAsArray
	Memory uint64
	Steps  uint64
}
