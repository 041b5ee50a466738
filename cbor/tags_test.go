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

package cbor_test

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/blinklabs-io/ledgerkit/cbor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrappedCbor(t *testing.T) {
	cborData, err := cbor.Encode(cbor.WrappedCbor([]byte{0xab, 0xcd, 0xef}))
	require.NoError(t, err)
	assert.Equal(t, "d81843abcdef", hex.EncodeToString(cborData))
	var out cbor.WrappedCbor
	require.NoError(t, cbor.DecodeExact(cborData, &out))
	assert.Equal(t, []byte{0xab, 0xcd, 0xef}, out.Bytes())
	// The tag is required
	err = cbor.DecodeExact([]byte{0x43, 0xab, 0xcd, 0xef}, &out)
	assert.ErrorIs(t, err, cbor.ErrMalformedEncoding)
}

func TestRat(t *testing.T) {
	testDefs := []struct {
		cborHex string
		rat     *big.Rat
	}{
		{cborHex: "d81e82031903e8", rat: big.NewRat(3, 1000)},
		{cborHex: "d81e822002", rat: big.NewRat(-1, 2)},
		{
			cborHex: "d81e821b80000000000000011b8ac7230489e80000",
			rat: new(big.Rat).SetFrac(
				new(big.Int).SetUint64(9223372036854775809),
				new(big.Int).SetUint64(10000000000000000000),
			),
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.cborHex, func(t *testing.T) {
			cborData, err := hex.DecodeString(testDef.cborHex)
			require.NoError(t, err)
			var out cbor.Rat
			require.NoError(t, cbor.DecodeExact(cborData, &out))
			assert.Equal(t, 0, testDef.rat.Cmp(out.ToBigRat()))
			encoded, err := cbor.Encode(&out)
			require.NoError(t, err)
			assert.Equal(t, testDef.cborHex, hex.EncodeToString(encoded))
		})
	}
	var out cbor.Rat
	assert.Error(t, cbor.DecodeExact([]byte{0xd8, 0x1e, 0x82, 0x01, 0x00}, &out))
}

func TestSetTypeTagPreserved(t *testing.T) {
	testDefs := []struct {
		cborHex string
		tagged  bool
	}{
		{cborHex: "d9010283010203", tagged: true},
		{cborHex: "83010203", tagged: false},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.cborHex, func(t *testing.T) {
			cborData, err := hex.DecodeString(testDef.cborHex)
			require.NoError(t, err)
			var set cbor.SetType[uint64]
			require.NoError(t, cbor.DecodeExact(cborData, &set))
			assert.Equal(t, []uint64{1, 2, 3}, set.Items())
			assert.Equal(t, testDef.tagged, set.Tagged())
			assert.Equal(t, 3, set.Len())
			encoded, err := cbor.Encode(set)
			require.NoError(t, err)
			assert.Equal(t, testDef.cborHex, hex.EncodeToString(encoded))
		})
	}
	// Other tags are rejected
	var set cbor.SetType[uint64]
	err := cbor.DecodeExact([]byte{0xd9, 0x01, 0x03, 0x80}, &set)
	assert.ErrorIs(t, err, cbor.ErrMalformedEncoding)
	// Empty set encodes as an empty array
	encoded, err := cbor.Encode(cbor.NewSetType[uint64](nil, false))
	require.NoError(t, err)
	assert.Equal(t, "80", hex.EncodeToString(encoded))
}

func TestSetAndMapTags(t *testing.T) {
	encoded, err := cbor.Encode(cbor.Set{uint64(1)})
	require.NoError(t, err)
	assert.Equal(t, "d901028101", hex.EncodeToString(encoded))
	encoded, err = cbor.Encode(cbor.Map{uint64(1): uint64(2)})
	require.NoError(t, err)
	assert.Equal(t, "d90103a10102", hex.EncodeToString(encoded))
}
