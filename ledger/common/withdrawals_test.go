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
	"math"
	"strings"
	"testing"

	"github.com/blinklabs-io/ledgerkit/cbor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithdrawals(t *testing.T) {
	addrA := testRewardAddress(t, 0x0a)
	addrB := testRewardAddress(t, 0x0b)
	// Added out of order, encoded sorted by address bytes
	withdrawals, err := NewWithdrawals(
		Withdrawal{Address: addrB, Amount: 2},
		Withdrawal{Address: addrA, Amount: 1},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, withdrawals.Len())
	total, err := withdrawals.Total()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	cborData, err := cbor.Encode(withdrawals)
	require.NoError(t, err)
	expectedHex := "a2" +
		"581de0" + strings.Repeat("0a", Blake2b224Size) + "01" +
		"581de0" + strings.Repeat("0b", Blake2b224Size) + "02"
	assert.Equal(t, expectedHex, hex.EncodeToString(cborData))
	var decoded Withdrawals
	_, err = cbor.Decode(cborData, &decoded)
	require.NoError(t, err)
	amount, ok := decoded.Get(addrB)
	require.True(t, ok)
	assert.Equal(t, uint64(2), amount)
	reencoded, err := cbor.Encode(decoded)
	require.NoError(t, err)
	assert.Equal(t, cborData, reencoded)
}

func TestWithdrawalsInvalid(t *testing.T) {
	addrA := testRewardAddress(t, 0x0a)
	var withdrawals Withdrawals
	require.NoError(t, withdrawals.Add(addrA, 1))
	err := withdrawals.Add(addrA, 5)
	assert.ErrorIs(t, err, ErrInvalidValue)
	amount, _ := withdrawals.Get(addrA)
	assert.Equal(t, uint64(1), amount)
	enterprise := mustAddressFromHex(
		t,
		"60"+strings.Repeat("0a", Blake2b224Size),
	)
	err = withdrawals.Add(enterprise, 1)
	assert.ErrorIs(t, err, ErrInvalidValue)
	require.NoError(t, withdrawals.Add(testRewardAddress(t, 0x0b), math.MaxUint64))
	_, err = withdrawals.Total()
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestWithdrawalsMalformed(t *testing.T) {
	var withdrawals Withdrawals
	// Enterprise address as a withdrawal key
	err := withdrawals.UnmarshalCBOR(
		append(
			[]byte{0xa1, 0x58, 0x1d, 0x60},
			append([]byte(strings.Repeat("\x0a", Blake2b224Size)), 0x01)...,
		),
	)
	assert.ErrorIs(t, err, cbor.ErrMalformedEncoding)
	assert.Equal(t, 0, withdrawals.Len())
}
