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
	"strings"
	"testing"

	"github.com/blinklabs-io/ledgerkit/cbor"
	"github.com/blinklabs-io/ledgerkit/internal/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVkeyWitness(t *testing.T) {
	vkey := test.RepeatByte(0xaa, VkeySize)
	sig := test.RepeatByte(0xbb, SignatureSize)
	witness, err := NewVkeyWitness(vkey, sig)
	require.NoError(t, err)
	assert.Equal(t, Blake2b224Hash(vkey), witness.KeyHash())
	// The witness does not alias its inputs
	vkey[0] = 0x00
	assert.Equal(t, byte(0xaa), witness.Vkey[0])
	cborData, err := cbor.Encode(witness)
	require.NoError(t, err)
	assert.Equal(
		t,
		"825820"+strings.Repeat("aa", VkeySize)+"5840"+strings.Repeat("bb", SignatureSize),
		hex.EncodeToString(cborData),
	)
	_, err = NewVkeyWitness(test.RepeatByte(0xaa, VkeySize-1), sig)
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = NewVkeyWitness(test.RepeatByte(0xaa, VkeySize), sig[:10])
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestBootstrapWitness(t *testing.T) {
	vkey := test.RepeatByte(0xaa, VkeySize)
	sig := test.RepeatByte(0xbb, SignatureSize)
	chainCode := test.RepeatByte(0xcc, ChainCodeSize)
	network := uint32(1)
	witness, err := NewBootstrapWitness(
		vkey,
		sig,
		chainCode,
		ByronAddressAttributes{Network: &network},
	)
	require.NoError(t, err)
	assert.Equal(t, "a1024101", hex.EncodeToString(witness.Attributes))
	witness, err = NewBootstrapWitness(vkey, sig, chainCode, ByronAddressAttributes{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xa0}, witness.Attributes)
	_, err = NewBootstrapWitness(vkey, sig, chainCode[:31], ByronAddressAttributes{})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestRedeemersListForm(t *testing.T) {
	// [[0, 0, 42, [100, 200]]]
	cborHex := "8184000018" + "2a821864" + "18c8"
	var redeemers Redeemers
	_, err := cbor.Decode(test.DecodeHexString(cborHex), &redeemers)
	require.NoError(t, err)
	require.Equal(t, 1, redeemers.Len())
	item := redeemers.Items()[0]
	assert.Equal(t, RedeemerTagSpend, item.Tag)
	assert.Equal(t, uint32(0), item.Index)
	assert.Equal(t, ExUnits{Memory: 100, Steps: 200}, item.ExUnits)
	reencoded, err := cbor.Encode(redeemers)
	require.NoError(t, err)
	assert.Equal(t, cborHex, hex.EncodeToString(reencoded))
}

func TestRedeemersMapForm(t *testing.T) {
	// {[0, 1]: [42, [100, 200]], [1, 0]: [42, [1, 2]]}
	cborHex := "a2" +
		"820001" + "82182a82186418c8" +
		"820100" + "82182a820102"
	var redeemers Redeemers
	_, err := cbor.Decode(test.DecodeHexString(cborHex), &redeemers)
	require.NoError(t, err)
	require.Equal(t, 2, redeemers.Len())
	items := redeemers.Items()
	assert.Equal(t, RedeemerTagSpend, items[0].Tag)
	assert.Equal(t, uint32(1), items[0].Index)
	assert.Equal(t, RedeemerTagMint, items[1].Tag)
	assert.Equal(t, uint32(0), items[1].Index)
	assert.Equal(
		t,
		ExUnits{Memory: 101, Steps: 202},
		redeemers.TotalExUnits(),
	)
	reencoded, err := cbor.Encode(redeemers)
	require.NoError(t, err)
	assert.Equal(t, cborHex, hex.EncodeToString(reencoded))
}

func TestRedeemersEmpty(t *testing.T) {
	cborData, err := cbor.Encode(NewRedeemers())
	require.NoError(t, err)
	assert.Equal(t, []byte{0x80}, cborData)
}

func TestRedeemersMalformed(t *testing.T) {
	for _, cborHex := range []string{
		// Redeemer arity
		"8183000018" + "2a",
		// Map value arity
		"a1820000" + "8118" + "2a",
		// Not a container
		"01",
	} {
		var redeemers Redeemers
		_, err := cbor.Decode(test.DecodeHexString(cborHex), &redeemers)
		assert.ErrorIs(t, err, cbor.ErrMalformedEncoding, cborHex)
	}
}
