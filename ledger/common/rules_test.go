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
	"math"
	"math/big"
	"testing"

	"github.com/blinklabs-io/ledgerkit/cbor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateMinFee(t *testing.T) {
	linearFee := LinearFee{Coefficient: 44, Constant: 155381}
	testDefs := []struct {
		txSize   int
		expected uint64
	}{
		{txSize: 0, expected: 155381},
		{txSize: 1, expected: 155425},
		{txSize: 300, expected: 168581},
		{txSize: 16384, expected: 876277},
	}
	for _, testDef := range testDefs {
		fee, err := CalculateMinFee(testDef.txSize, linearFee)
		require.NoError(t, err)
		assert.Equal(t, testDef.expected, fee, "size %d", testDef.txSize)
	}
}

func TestCalculateMinFeeErrors(t *testing.T) {
	_, err := CalculateMinFee(-1, LinearFee{Coefficient: 44})
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = CalculateMinFee(2, LinearFee{Coefficient: math.MaxUint64})
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = CalculateMinFee(
		1,
		LinearFee{Coefficient: 1, Constant: math.MaxUint64},
	)
	assert.ErrorIs(t, err, ErrInvalidValue)
	fee, err := CalculateMinFee(1, LinearFee{Constant: math.MaxUint64})
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), fee)
}

func TestScriptExecutionCost(t *testing.T) {
	prices := ExUnitPrice{
		MemPrice:  &cbor.Rat{Rat: big.NewRat(577, 10000)},
		StepPrice: &cbor.Rat{Rat: big.NewRat(721, 10000000)},
	}
	testDefs := []struct {
		name     string
		exUnits  ExUnits
		expected uint64
	}{
		{
			name:     "zero",
			expected: 0,
		},
		{
			name:     "exact",
			exUnits:  ExUnits{Memory: 1_000_000, Steps: 500_000_000},
			expected: 93750,
		},
		{
			// 577/10000 + 721/10000000 rounds up once
			name:     "rounded",
			exUnits:  ExUnits{Memory: 1, Steps: 1},
			expected: 1,
		},
		{
			name:     "max tx budget",
			exUnits:  ExUnits{Memory: 14_000_000, Steps: 10_000_000_000},
			expected: 1_528_800,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			cost, err := ScriptExecutionCost(testDef.exUnits, prices)
			require.NoError(t, err)
			assert.Equal(t, testDef.expected, cost)
		})
	}
}

func TestScriptExecutionCostNoPrices(t *testing.T) {
	cost, err := ScriptExecutionCost(ExUnits{}, ExUnitPrice{})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cost)
	_, err = ScriptExecutionCost(ExUnits{Memory: 1}, ExUnitPrice{})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestTotalCertificateDepositsOverflow(t *testing.T) {
	pparams := ProtocolParameters{KeyDeposit: math.MaxUint64}
	cert := NewStakeRegistrationCertificate(
		NewKeyCredential(testKeyHash(0x01)),
	)
	_, _, err := TotalCertificateDeposits(
		[]Certificate{cert, cert},
		pparams,
	)
	assert.ErrorIs(t, err, ErrInvalidValue)
}
