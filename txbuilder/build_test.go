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

package txbuilder_test

import (
	"bytes"
	"log/slog"
	"testing"

	test "github.com/blinklabs-io/ledgerkit/internal/test/ledger"
	"github.com/blinklabs-io/ledgerkit/ledger/babbage"
	"github.com/blinklabs-io/ledgerkit/ledger/common"
	"github.com/blinklabs-io/ledgerkit/txbuilder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func placeholderMinFee(
	t *testing.T,
	body *babbage.BabbageTransactionBody,
	vkeyCount int,
	pparams common.ProtocolParameters,
) uint64 {
	t.Helper()
	witnessSet, err := babbage.NewPlaceholderWitnessSet(vkeyCount, nil)
	require.NoError(t, err)
	minFee, err := babbage.MinFeeTx(
		babbage.NewBabbageTransaction(*body, witnessSet, nil),
		pparams,
	)
	require.NoError(t, err)
	return minFee
}

func TestBuildChange(t *testing.T) {
	defer goleak.VerifyNone(t)
	pparams := test.ProtocolParameters()
	payer := testKey(t, 0)
	payerAddr := keyAddress(t, payer)
	newBuilder := func(opts ...txbuilder.OptionFunc) *txbuilder.Builder {
		builder := txbuilder.New(
			pparams,
			append([]txbuilder.OptionFunc{txbuilder.WithChangeAddress(payerAddr)}, opts...)...,
		)
		require.NoError(
			t,
			builder.AddInput(
				testUtxo(0xaa, 0, payerAddr, common.NewCoinValue(5_000_000)),
			),
		)
		require.NoError(
			t,
			builder.AddOutput(coinOutput(test.EnterpriseAddress(0x22), 1_000_000)),
		)
		return builder
	}

	body, err := newBuilder().Build()
	require.NoError(t, err)
	fee := body.Fee()
	require.Len(t, body.TxOutputs, 2)
	change := body.TxOutputs[1]
	assert.True(t, change.Address().Equal(payerAddr))
	assert.Equal(t, 5_000_000-1_000_000-fee, change.Amount())
	// The fee settles on the exact minimum for one vkey witness
	assert.Equal(t, placeholderMinFee(t, body, 1, pparams), fee)
	assert.Greater(t, fee, pparams.LinearFee.Constant)

	// A fresh builder with the fee preset produces the same body
	presetBuilder := newBuilder()
	require.NoError(t, presetBuilder.SetFee(fee))
	presetBody, err := presetBuilder.Build()
	require.NoError(t, err)
	assert.Equal(t, fee, presetBody.Fee())
	assert.LessOrEqual(t, placeholderMinFee(t, presetBody, 1, pparams), presetBody.Fee())
	assert.Equal(t, body.Hash(), presetBody.Hash())

	// An explicit fee below the minimum is rejected
	lowBuilder := newBuilder()
	require.NoError(t, lowBuilder.SetFee(100))
	_, err = lowBuilder.Build()
	var feeErr babbage.FeeTooSmallUtxoError
	require.ErrorAs(t, err, &feeErr)
	assert.Equal(t, uint64(100), feeErr.Provided)
	assert.False(t, lowBuilder.IsFinalized())

	// Too few iterations to settle
	_, err = newBuilder(txbuilder.WithMaxFeeIterations(1)).Build()
	var convergeErr txbuilder.FeeCalculationDidNotConvergeError
	require.ErrorAs(t, err, &convergeErr)
	assert.Equal(t, 1, convergeErr.Iterations)
}

func TestBuildInsufficientFunds(t *testing.T) {
	defer goleak.VerifyNone(t)
	payerAddr := keyAddress(t, testKey(t, 0))
	testDefs := []struct {
		name      string
		inputCoin uint64
	}{
		{
			name:      "below outputs",
			inputCoin: 900_000,
		},
		{
			name:      "equal to outputs",
			inputCoin: 1_000_000,
		},
		{
			name:      "below outputs plus fee",
			inputCoin: 1_050_000,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			builder := txbuilder.New(
				test.ProtocolParameters(),
				txbuilder.WithChangeAddress(payerAddr),
			)
			require.NoError(
				t,
				builder.AddInput(
					testUtxo(0xaa, 0, payerAddr, common.NewCoinValue(testDef.inputCoin)),
				),
			)
			require.NoError(
				t,
				builder.AddOutput(coinOutput(test.EnterpriseAddress(0x22), 1_000_000)),
			)
			_, err := builder.Build()
			var fundsErr txbuilder.InsufficientFundsError
			require.ErrorAs(t, err, &fundsErr)
			assert.Equal(t, testDef.inputCoin, fundsErr.Available.Coin)
			assert.Greater(t, fundsErr.Required.Coin, testDef.inputCoin)
			// Still open with its contents intact
			assert.False(t, builder.IsFinalized())
			assert.Len(t, builder.Inputs(), 1)
			assert.Len(t, builder.Outputs(), 1)
			require.NoError(
				t,
				builder.AddInput(
					testUtxo(0xab, 0, payerAddr, common.NewCoinValue(5_000_000)),
				),
			)
			body, err := builder.Build()
			require.NoError(t, err)
			assert.Len(t, body.Inputs(), 2)
		})
	}
}

func TestBuildNoInputs(t *testing.T) {
	builder := txbuilder.New(test.ProtocolParameters())
	_, err := builder.Build()
	var fundsErr txbuilder.InsufficientFundsError
	assert.ErrorAs(t, err, &fundsErr)
}

func TestBuildFeeAbsorption(t *testing.T) {
	defer goleak.VerifyNone(t)
	payerAddr := keyAddress(t, testKey(t, 0))
	newBuilder := func(opts ...txbuilder.OptionFunc) *txbuilder.Builder {
		builder := txbuilder.New(test.ProtocolParameters(), opts...)
		require.NoError(
			t,
			builder.AddInput(
				testUtxo(0xaa, 0, payerAddr, common.NewCoinValue(2_000_000)),
			),
		)
		require.NoError(
			t,
			builder.AddOutput(coinOutput(test.EnterpriseAddress(0x22), 1_800_000)),
		)
		return builder
	}

	_, err := newBuilder(txbuilder.WithChangeAddress(payerAddr)).Build()
	var changeErr txbuilder.ChangeBelowMinUTXOError
	require.ErrorAs(t, err, &changeErr)
	assert.Equal(t, uint64(200_000), changeErr.Change.Coin)
	assert.Greater(t, changeErr.MinAda, uint64(200_000))

	_, err = newBuilder().Build()
	assert.ErrorIs(t, err, txbuilder.ErrNoChangeAddress)

	body, err := newBuilder(
		txbuilder.WithChangeAddress(payerAddr),
		txbuilder.WithMaxFeeAbsorption(300_000),
	).Build()
	require.NoError(t, err)
	assert.Len(t, body.TxOutputs, 1)
	assert.Equal(t, uint64(200_000), body.Fee())
}

func TestBuildChangeOutputMarker(t *testing.T) {
	payerAddr := keyAddress(t, testKey(t, 0))
	builder := txbuilder.New(
		test.ProtocolParameters(),
		txbuilder.WithChangeAddress(test.EnterpriseAddress(0x99)),
	)
	require.NoError(
		t,
		builder.AddInput(testUtxo(0xaa, 0, payerAddr, common.NewCoinValue(5_000_000))),
	)
	require.NoError(
		t,
		builder.AddChangeOutput(
			babbage.NewLegacyTransactionOutput(payerAddr, common.Value{}, nil),
		),
	)
	require.NoError(
		t,
		builder.AddOutput(coinOutput(test.EnterpriseAddress(0x22), 1_000_000)),
	)
	body, err := builder.Build()
	require.NoError(t, err)
	require.Len(t, body.TxOutputs, 2)
	change := body.TxOutputs[1]
	assert.True(t, change.IsLegacy())
	assert.True(t, change.Address().Equal(payerAddr))
	assert.Equal(t, 4_000_000-body.Fee(), change.Amount())
}

func TestBuildDepositsAndWithdrawals(t *testing.T) {
	defer goleak.VerifyNone(t)
	pparams := test.ProtocolParameters()
	payerAddr := keyAddress(t, testKey(t, 0))
	testDefs := []struct {
		name      string
		setup     func(*txbuilder.Builder) error
		vkeyCount int
		// Value added to (or taken from) the change besides the fee and output
		adjust int64
	}{
		{
			name: "stake registration",
			setup: func(b *txbuilder.Builder) error {
				return b.AddCertificate(
					common.NewStakeRegistrationCertificate(
						common.NewKeyCredential(test.KeyHash(0x33)),
					),
				)
			},
			vkeyCount: 1,
			adjust:    -2_000_000,
		},
		{
			name: "stake deregistration",
			setup: func(b *txbuilder.Builder) error {
				return b.AddCertificate(
					common.NewStakeDeregistrationCertificate(
						common.NewKeyCredential(test.KeyHash(0x33)),
					),
				)
			},
			vkeyCount: 2,
			adjust:    2_000_000,
		},
		{
			name: "withdrawal",
			setup: func(b *txbuilder.Builder) error {
				return b.AddWithdrawal(test.RewardAddress(0x44), 1_500_000)
			},
			vkeyCount: 2,
			adjust:    1_500_000,
		},
		{
			name: "required signer",
			setup: func(b *txbuilder.Builder) error {
				return b.AddRequiredSigner(test.KeyHash(0x55))
			},
			vkeyCount: 2,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			builder := txbuilder.New(pparams, txbuilder.WithChangeAddress(payerAddr))
			require.NoError(
				t,
				builder.AddInput(
					testUtxo(0xaa, 0, payerAddr, common.NewCoinValue(5_000_000)),
				),
			)
			require.NoError(
				t,
				builder.AddOutput(coinOutput(test.EnterpriseAddress(0x22), 1_000_000)),
			)
			require.NoError(t, testDef.setup(builder))
			body, err := builder.Build()
			require.NoError(t, err)
			require.Len(t, body.TxOutputs, 2)
			expected := int64(4_000_000) + testDef.adjust - int64(body.Fee())
			assert.Equal(t, uint64(expected), body.TxOutputs[1].Amount())
			assert.Equal(
				t,
				placeholderMinFee(t, body, testDef.vkeyCount, pparams),
				body.Fee(),
			)
		})
	}
}

func TestBuildMintAndBurn(t *testing.T) {
	defer goleak.VerifyNone(t)
	payer := testKey(t, 0)
	payerAddr := keyAddress(t, payer)
	script := common.NewNativeScriptPubkey(payer.KeyHash())
	policyId := script.Hash()

	builder := txbuilder.New(
		test.ProtocolParameters(),
		txbuilder.WithChangeAddress(payerAddr),
	)
	require.NoError(
		t,
		builder.AddInput(testUtxo(0xaa, 0, payerAddr, common.NewCoinValue(5_000_000))),
	)
	require.NoError(t, builder.AddMint(policyId, []byte("TOK"), 100, &script))
	body, err := builder.Build()
	require.NoError(t, err)
	require.Len(t, body.TxOutputs, 1)
	assert.Equal(
		t,
		uint64(100),
		body.TxOutputs[0].Assets().Asset(policyId, []byte("TOK")),
	)
	assert.Equal(t, int64(100), body.AssetMint().Asset(policyId, []byte("TOK")))

	// Burning tokens that are not spent cannot balance
	burnBuilder := txbuilder.New(
		test.ProtocolParameters(),
		txbuilder.WithChangeAddress(payerAddr),
	)
	require.NoError(
		t,
		burnBuilder.AddInput(
			testUtxo(0xaa, 0, payerAddr, common.NewCoinValue(5_000_000)),
		),
	)
	require.NoError(t, burnBuilder.AddMint(policyId, []byte("TOK"), -5, &script))
	_, err = burnBuilder.Build()
	var fundsErr txbuilder.InsufficientFundsError
	require.ErrorAs(t, err, &fundsErr)
	assert.Equal(
		t,
		uint64(5),
		fundsErr.Required.Assets.Asset(policyId, []byte("TOK")),
	)
}

func TestBuildTransactionTooLarge(t *testing.T) {
	pparams := test.ProtocolParameters()
	pparams.MaxTxSize = 100
	payerAddr := keyAddress(t, testKey(t, 0))
	builder := txbuilder.New(pparams, txbuilder.WithChangeAddress(payerAddr))
	require.NoError(
		t,
		builder.AddInput(testUtxo(0xaa, 0, payerAddr, common.NewCoinValue(5_000_000))),
	)
	_, err := builder.Build()
	var sizeErr txbuilder.TransactionTooLargeError
	require.ErrorAs(t, err, &sizeErr)
	assert.Equal(t, uint64(100), sizeErr.MaxSize)
	assert.Greater(t, sizeErr.Size, sizeErr.MaxSize)
	assert.False(t, builder.IsFinalized())
}

func TestBuildSelection(t *testing.T) {
	defer goleak.VerifyNone(t)
	payerAddr := keyAddress(t, testKey(t, 0))
	candidates := []common.Utxo{
		testUtxo(0x01, 0, payerAddr, common.NewCoinValue(1_000_000)),
		testUtxo(0x02, 0, payerAddr, common.NewCoinValue(3_000_000)),
		testUtxo(0x03, 0, payerAddr, common.NewCoinValue(2_000_000)),
	}
	builder := txbuilder.New(
		test.ProtocolParameters(),
		txbuilder.WithChangeAddress(payerAddr),
		txbuilder.WithCandidateUtxos(candidates...),
	)
	require.NoError(
		t,
		builder.AddOutput(coinOutput(test.EnterpriseAddress(0x22), 2_500_000)),
	)
	body, err := builder.Build()
	require.NoError(t, err)
	// 3 ADA alone leaves change below the minimum, so 2 ADA is added
	assert.Equal(
		t,
		[]common.TransactionInput{test.Input(0x02, 0), test.Input(0x03, 0)},
		body.Inputs(),
	)
	assert.Len(t, builder.Inputs(), 2)
	assert.Equal(t, 5_000_000-2_500_000-body.Fee(), body.TxOutputs[1].Amount())
}

func TestBuildSelectionExhausted(t *testing.T) {
	payerAddr := keyAddress(t, testKey(t, 0))
	builder := txbuilder.New(
		test.ProtocolParameters(),
		txbuilder.WithChangeAddress(payerAddr),
		txbuilder.WithCandidateUtxos(
			testUtxo(0x01, 0, payerAddr, common.NewCoinValue(1_000_000)),
			testUtxo(0x02, 0, payerAddr, common.NewCoinValue(1_200_000)),
		),
	)
	require.NoError(
		t,
		builder.AddOutput(coinOutput(test.EnterpriseAddress(0x22), 2_000_000)),
	)
	_, err := builder.Build()
	var selectionErr txbuilder.UTxOSelectionFailedError
	require.ErrorAs(t, err, &selectionErr)
	assert.Equal(t, 2, selectionErr.Candidates)
	assert.Greater(t, selectionErr.Deficit.Coin, uint64(0))
	assert.Empty(t, builder.Inputs())
}

func TestBuildSelectionStrategies(t *testing.T) {
	payerAddr := keyAddress(t, testKey(t, 0))
	policyA := test.PolicyId(0x0a)
	policyB := test.PolicyId(0x0b)
	tokenValue := func(coin uint64, policyId common.PolicyId, qty uint64) common.Value {
		assets := common.NewMultiAsset[common.MultiAssetTypeOutput](nil)
		require.NoError(t, assets.Set(policyId, []byte("A"), qty))
		return common.NewValue(coin, assets)
	}
	candidates := []common.Utxo{
		testUtxo(0x01, 0, payerAddr, common.NewCoinValue(3_000_000)),
		testUtxo(0x02, 0, payerAddr, tokenValue(2_000_000, policyA, 10)),
		testUtxo(0x03, 0, payerAddr, tokenValue(2_000_000, policyB, 5)),
	}
	outputAssets := common.NewMultiAsset[common.MultiAssetTypeOutput](nil)
	require.NoError(t, outputAssets.Set(policyA, []byte("A"), 10))
	require.NoError(t, outputAssets.Set(policyB, []byte("A"), 5))
	output := babbage.NewBabbageTransactionOutput(
		test.EnterpriseAddress(0x22),
		common.NewValue(2_000_000, outputAssets),
	)
	testDefs := []struct {
		strategy txbuilder.SelectionStrategy
		expected []common.TransactionInput
	}{
		{
			strategy: txbuilder.LargestFirst,
			expected: []common.TransactionInput{
				test.Input(0x01, 0),
				test.Input(0x02, 0),
				test.Input(0x03, 0),
			},
		},
		{
			strategy: txbuilder.RoundRobinAssets,
			expected: []common.TransactionInput{
				test.Input(0x02, 0),
				test.Input(0x03, 0),
			},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.strategy.String(), func(t *testing.T) {
			builder := txbuilder.New(
				test.ProtocolParameters(),
				txbuilder.WithChangeAddress(payerAddr),
				txbuilder.WithCandidateUtxos(candidates...),
				txbuilder.WithSelectionStrategy(testDef.strategy),
			)
			require.NoError(t, builder.AddOutput(output))
			body, err := builder.Build()
			require.NoError(t, err)
			assert.Equal(t, testDef.expected, body.Inputs())
		})
	}
}

func TestBuildLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(
		slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	payerAddr := keyAddress(t, testKey(t, 0))
	builder := txbuilder.New(
		test.ProtocolParameters(),
		txbuilder.WithLogger(logger),
		txbuilder.WithChangeAddress(payerAddr),
		txbuilder.WithCandidateUtxos(
			testUtxo(0x01, 0, payerAddr, common.NewCoinValue(5_000_000)),
		),
	)
	_, err := builder.Build()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "msg=\"selected input\"")
	assert.Contains(t, buf.String(), "msg=\"fee iteration\"")
	assert.Contains(t, buf.String(), "msg=\"transaction finalized\"")
	assert.Contains(t, buf.String(), "component=txbuilder")
}
