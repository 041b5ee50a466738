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

package babbage_test

import (
	"crypto/rand"
	"math"
	"testing"

	"github.com/blinklabs-io/ledgerkit/cbor"
	test "github.com/blinklabs-io/ledgerkit/internal/test/ledger"
	"github.com/blinklabs-io/ledgerkit/ledger/babbage"
	"github.com/blinklabs-io/ledgerkit/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomBytes(t *testing.T, size int) []byte {
	t.Helper()
	ret := make([]byte, size)
	_, err := rand.Read(ret)
	require.NoError(t, err)
	return ret
}

func testRedeemers(t *testing.T, exUnits common.ExUnits) common.Redeemers {
	t.Helper()
	var datum common.Datum
	require.NoError(t, cbor.DecodeExact([]byte{0x18, 0x2a}, &datum))
	return common.NewRedeemers(
		common.Redeemer{
			Tag:     common.RedeemerTagSpend,
			Index:   0,
			Data:    datum,
			ExUnits: exUnits,
		},
	)
}

func TestMinFeeTx(t *testing.T) {
	pparams := test.ProtocolParameters()
	tx := babbage.NewBabbageTransaction(
		*newTestBody(),
		babbage.BabbageTransactionWitnessSet{},
		nil,
	)
	// 90 byte transaction
	minFee, err := babbage.MinFeeTx(tx, pparams)
	require.NoError(t, err)
	assert.Equal(t, uint64(155381+44*90), minFee)

	// One vkey placeholder adds 103 bytes
	ws, err := babbage.NewPlaceholderWitnessSet(1, nil)
	require.NoError(t, err)
	tx.SetWitnessSet(ws)
	minFee, err = babbage.MinFeeTx(tx, pparams)
	require.NoError(t, err)
	assert.Equal(t, uint64(155381+44*193), minFee)
}

func TestMinFeeTxScriptCost(t *testing.T) {
	pparams := test.ProtocolParameters()
	ws := babbage.BabbageTransactionWitnessSet{}
	ws.SetRedeemers(
		testRedeemers(t, common.ExUnits{Memory: 1000, Steps: 1_000_000}),
	)
	tx := babbage.NewBabbageTransaction(*newTestBody(), ws, nil)
	txSize := uint64(len(tx.Cbor()))
	minFee, err := babbage.MinFeeTx(tx, pparams)
	require.NoError(t, err)
	// 57.7 + 72.1 rounds up to 130
	assert.Equal(t, 155381+44*txSize+130, minFee)

	pparams.ExecutionPrices = common.ExUnitPrice{}
	_, err = babbage.MinFeeTx(tx, pparams)
	assert.Error(t, err)
}

func TestMinFeeTxMonotonic(t *testing.T) {
	pparams := test.ProtocolParameters()
	body := newTestBody()
	var prevFee uint64
	for i := range 5 {
		tx := babbage.NewBabbageTransaction(
			*body,
			babbage.BabbageTransactionWitnessSet{},
			nil,
		)
		minFee, err := babbage.MinFeeTx(tx, pparams)
		require.NoError(t, err)
		assert.Greater(t, minFee, prevFee, "iteration %d", i)
		prevFee = minFee
		body.AddOutput(
			babbage.NewBabbageTransactionOutput(
				test.EnterpriseAddress(byte(0x20+i)),
				common.NewCoinValue(1_000_000),
			),
		)
	}
}

func TestPlaceholderWitnessSetSize(t *testing.T) {
	placeholder, err := babbage.NewPlaceholderWitnessSet(3, nil)
	require.NoError(t, err)
	var real babbage.BabbageTransactionWitnessSet
	for range 3 {
		witness, err := common.NewVkeyWitness(
			randomBytes(t, common.VkeySize),
			randomBytes(t, common.SignatureSize),
		)
		require.NoError(t, err)
		real.AddVkeyWitness(witness)
	}
	assert.Len(t, placeholder.Vkey(), 3)
	assert.Len(t, placeholder.Cbor(), len(real.Cbor()))
}

func TestPlaceholderWitnessSetBootstrap(t *testing.T) {
	network := uint32(1097911063)
	attr := common.ByronAddressAttributes{Network: &network}
	addr, err := common.NewByronAddressFromXPub(randomBytes(t, 64), attr)
	require.NoError(t, err)
	placeholder, err := babbage.NewPlaceholderWitnessSet(1, []common.Address{addr})
	require.NoError(t, err)
	require.Len(t, placeholder.Bootstrap(), 1)

	attrBytes, err := attr.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, attrBytes, placeholder.Bootstrap()[0].Attributes)

	var real babbage.BabbageTransactionWitnessSet
	vkeyWitness, err := common.NewVkeyWitness(
		randomBytes(t, common.VkeySize),
		randomBytes(t, common.SignatureSize),
	)
	require.NoError(t, err)
	real.AddVkeyWitness(vkeyWitness)
	real.AddBootstrapWitness(
		common.BootstrapWitness{
			PublicKey:  randomBytes(t, common.VkeySize),
			Signature:  randomBytes(t, common.SignatureSize),
			ChainCode:  randomBytes(t, common.ChainCodeSize),
			Attributes: attrBytes,
		},
	)
	assert.Len(t, placeholder.Cbor(), len(real.Cbor()))
}

func TestPlaceholderWitnessSetInvalid(t *testing.T) {
	_, err := babbage.NewPlaceholderWitnessSet(-1, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidValue)

	_, err = babbage.NewPlaceholderWitnessSet(
		0,
		[]common.Address{test.EnterpriseAddress(0x11)},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidValue)
}

func TestMinAdaForOutput(t *testing.T) {
	mapOutput := babbage.NewBabbageTransactionOutput(
		test.EnterpriseAddress(0x11),
		common.NewCoinValue(1_000_000),
	)
	legacyOutput := babbage.NewLegacyTransactionOutput(
		test.EnterpriseAddress(0x11),
		common.NewCoinValue(1_000_000),
		nil,
	)
	wordParams := test.ProtocolParameters()
	wordParams.CoinsPerUtxoByte = 0
	wordParams.CoinsPerUtxoWord = 34482
	preBabbageParams := test.ProtocolParameters()
	preBabbageParams.CoinsPerUtxoWord = 34482
	preBabbageParams.ProtocolVersion.Major = 6
	noRateParams := test.ProtocolParameters()
	noRateParams.CoinsPerUtxoByte = 0
	testDefs := []struct {
		name     string
		output   babbage.BabbageTransactionOutput
		pparams  common.ProtocolParameters
		expected uint64
	}{
		{
			// (160 + 39) * 4310
			name:     "map output",
			output:   mapOutput,
			pparams:  test.ProtocolParameters(),
			expected: 857_690,
		},
		{
			// (160 + 37) * 4310
			name:     "legacy output",
			output:   legacyOutput,
			pparams:  test.ProtocolParameters(),
			expected: 849_070,
		},
		{
			// ceil((160 + 39) / 8) * 34482
			name:     "word mode",
			output:   mapOutput,
			pparams:  wordParams,
			expected: 862_050,
		},
		{
			name:     "word rate before Babbage",
			output:   mapOutput,
			pparams:  preBabbageParams,
			expected: 862_050,
		},
		{
			name:     "no rate",
			output:   mapOutput,
			pparams:  noRateParams,
			expected: 0,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			minAda, err := babbage.MinAdaForOutput(testDef.output, testDef.pparams)
			require.NoError(t, err)
			assert.Equal(t, testDef.expected, minAda)
		})
	}
}

func TestMinAdaForOutputIgnoresCurrentCoin(t *testing.T) {
	pparams := test.ProtocolParameters()
	small := babbage.NewBabbageTransactionOutput(
		test.EnterpriseAddress(0x11),
		common.NewCoinValue(1),
	)
	large := babbage.NewBabbageTransactionOutput(
		test.EnterpriseAddress(0x11),
		common.NewCoinValue(math.MaxUint64),
	)
	smallMin, err := babbage.MinAdaForOutput(small, pparams)
	require.NoError(t, err)
	largeMin, err := babbage.MinAdaForOutput(large, pparams)
	require.NoError(t, err)
	assert.Equal(t, smallMin, largeMin)
	// The output passed in is not modified
	assert.Equal(t, uint64(1), small.Amount())
}

func TestMinAdaForOutputMultiAsset(t *testing.T) {
	pparams := test.ProtocolParameters()
	plain := babbage.NewBabbageTransactionOutput(
		test.EnterpriseAddress(0x11),
		common.NewCoinValue(1_000_000),
	)
	assets := common.NewMultiAsset[common.MultiAssetTypeOutput](nil)
	require.NoError(t, assets.Set(test.PolicyId(0x22), []byte("token"), 100))
	withAssets := babbage.NewBabbageTransactionOutput(
		test.EnterpriseAddress(0x11),
		common.NewValue(1_000_000, assets),
	)
	plainMin, err := babbage.MinAdaForOutput(plain, pparams)
	require.NoError(t, err)
	assetMin, err := babbage.MinAdaForOutput(withAssets, pparams)
	require.NoError(t, err)
	assert.Greater(t, assetMin, plainMin)
}

func TestMinAdaForOutputOverflow(t *testing.T) {
	pparams := test.ProtocolParameters()
	pparams.CoinsPerUtxoByte = math.MaxUint64
	output := babbage.NewBabbageTransactionOutput(
		test.EnterpriseAddress(0x11),
		common.NewCoinValue(1_000_000),
	)
	_, err := babbage.MinAdaForOutput(output, pparams)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidValue)
}

func TestMinAdaForOutputCbor(t *testing.T) {
	minAda, err := babbage.MinAdaForOutputCbor(
		decodeHex(t, testOutputHex),
		test.ProtocolParameters(),
	)
	require.NoError(t, err)
	assert.Equal(t, uint64(857_690), minAda)
}
