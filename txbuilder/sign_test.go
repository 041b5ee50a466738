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
	"testing"

	test "github.com/blinklabs-io/ledgerkit/internal/test/ledger"
	"github.com/blinklabs-io/ledgerkit/keys"
	"github.com/blinklabs-io/ledgerkit/ledger/babbage"
	"github.com/blinklabs-io/ledgerkit/ledger/common"
	"github.com/blinklabs-io/ledgerkit/txbuilder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// checkSignedSize asserts that the signed transaction is exactly as large as
// the one its fee was computed for
func checkSignedSize(
	t *testing.T,
	tx *babbage.BabbageTransaction,
	pparams common.ProtocolParameters,
) {
	t.Helper()
	minFee, err := babbage.MinFeeTx(tx, pparams)
	require.NoError(t, err)
	assert.Equal(t, tx.Body.Fee(), minFee)
}

func TestSign(t *testing.T) {
	defer goleak.VerifyNone(t)
	adapter := keys.MockAdapter{}
	pparams := test.ProtocolParameters()
	payer := testKey(t, 0)
	payerAddr := keyAddress(t, payer)
	text, err := common.NewMetaText("hello")
	require.NoError(t, err)
	auxData := common.NewAuxiliaryData(common.TransactionMetadata{674: text})

	builder := txbuilder.New(pparams, txbuilder.WithChangeAddress(payerAddr))
	require.NoError(
		t,
		builder.AddInput(testUtxo(0xaa, 0, payerAddr, common.NewCoinValue(5_000_000))),
	)
	require.NoError(
		t,
		builder.AddOutput(coinOutput(test.EnterpriseAddress(0x22), 1_000_000)),
	)
	require.NoError(t, builder.SetAuxiliaryData(*auxData))
	body, err := builder.Build()
	require.NoError(t, err)
	require.NotNil(t, body.AuxDataHash())
	assert.Equal(t, auxData.Hash(), *body.AuxDataHash())

	// Unrelated keys are ignored
	tx, err := builder.Sign(adapter, testKey(t, 7), payer)
	require.NoError(t, err)
	require.Len(t, tx.WitnessSet.Vkey(), 1)
	witness := tx.WitnessSet.Vkey()[0]
	assert.Equal(t, payer.PublicKey.Bytes(), witness.Vkey)
	assert.True(
		t,
		adapter.Verify(payer.PublicKey, body.Hash().Bytes(), witness.Signature),
	)
	assert.Equal(t, body.Hash(), tx.Hash())
	require.NotNil(t, tx.AuxiliaryData())
	checkSignedSize(t, tx, pparams)

	decoded, err := babbage.NewBabbageTransactionFromCbor(tx.Cbor())
	require.NoError(t, err)
	assert.Equal(t, tx.Cbor(), decoded.Cbor())
	assert.Equal(t, body.Hash(), decoded.Hash())
}

func TestSignMissingSigner(t *testing.T) {
	payer := testKey(t, 0)
	payerAddr := keyAddress(t, payer)
	builder := txbuilder.New(
		test.ProtocolParameters(),
		txbuilder.WithChangeAddress(payerAddr),
	)
	require.NoError(
		t,
		builder.AddInput(testUtxo(0xaa, 0, payerAddr, common.NewCoinValue(5_000_000))),
	)
	require.NoError(t, builder.AddWithdrawal(test.RewardAddress(0x44), 1_000_000))
	_, err := builder.Build()
	require.NoError(t, err)
	_, err = builder.Sign(keys.MockAdapter{}, payer)
	var missingErr txbuilder.MissingSignerError
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, []common.AddrKeyHash{test.KeyHash(0x44)}, missingErr.KeyHashes)
	assert.Empty(t, missingErr.Addresses)
}

func TestSignNativeScript(t *testing.T) {
	defer goleak.VerifyNone(t)
	adapter := keys.MockAdapter{}
	pparams := test.ProtocolParameters()
	payer := testKey(t, 0)
	cosigner := testKey(t, 1)
	payerAddr := keyAddress(t, payer)
	script := common.NewNativeScriptAny(
		common.NewNativeScriptPubkey(payer.KeyHash()),
		common.NewNativeScriptPubkey(cosigner.KeyHash()),
	)
	policyId := script.Hash()

	builder := txbuilder.New(pparams, txbuilder.WithChangeAddress(payerAddr))
	require.NoError(
		t,
		builder.AddInput(testUtxo(0xaa, 0, payerAddr, common.NewCoinValue(5_000_000))),
	)
	require.NoError(t, builder.AddMint(policyId, []byte("TOK"), 1, &script))
	_, err := builder.Build()
	require.NoError(t, err)

	// The cosigner only appears in the script and may be left out
	tx, err := builder.Sign(adapter, payer)
	require.NoError(t, err)
	assert.Len(t, tx.WitnessSet.Vkey(), 1)
	require.Len(t, tx.WitnessSet.NativeScripts(), 1)
	assert.Equal(t, policyId, tx.WitnessSet.NativeScripts()[0].Hash())
	minFee, err := babbage.MinFeeTx(tx, pparams)
	require.NoError(t, err)
	assert.Less(t, minFee, tx.Body.Fee())

	tx, err = builder.Sign(adapter, payer, cosigner)
	require.NoError(t, err)
	assert.Len(t, tx.WitnessSet.Vkey(), 2)
	checkSignedSize(t, tx, pparams)
}

func TestSignBootstrap(t *testing.T) {
	defer goleak.VerifyNone(t)
	adapter := keys.MockAdapter{}
	pparams := test.ProtocolParameters()
	byronKey := testKey(t, 2)
	network := uint32(1097911063)
	byronAddr, err := common.NewByronAddressFromXPub(
		byronKey.ExtendedPublicKey(),
		common.ByronAddressAttributes{Network: &network},
	)
	require.NoError(t, err)
	changeAddr := keyAddress(t, testKey(t, 0))

	builder := txbuilder.New(pparams, txbuilder.WithChangeAddress(changeAddr))
	require.NoError(
		t,
		builder.AddInput(testUtxo(0xaa, 0, byronAddr, common.NewCoinValue(5_000_000))),
	)
	require.NoError(
		t,
		builder.AddOutput(coinOutput(test.EnterpriseAddress(0x22), 1_000_000)),
	)
	body, err := builder.Build()
	require.NoError(t, err)

	_, err = builder.Sign(adapter, testKey(t, 3))
	var missingErr txbuilder.MissingSignerError
	require.ErrorAs(t, err, &missingErr)
	require.Len(t, missingErr.Addresses, 1)
	assert.True(t, missingErr.Addresses[0].Equal(byronAddr))

	tx, err := builder.Sign(adapter, byronKey)
	require.NoError(t, err)
	assert.Empty(t, tx.WitnessSet.Vkey())
	require.Len(t, tx.WitnessSet.Bootstrap(), 1)
	witness := tx.WitnessSet.Bootstrap()[0]
	assert.Equal(t, byronKey.ChainCode, witness.ChainCode)
	assert.True(
		t,
		adapter.Verify(byronKey.PublicKey, body.Hash().Bytes(), witness.Signature),
	)
	checkSignedSize(t, tx, pparams)
}

func TestSignBody(t *testing.T) {
	adapter := keys.MockAdapter{}
	payer := testKey(t, 0)
	payerAddr := keyAddress(t, payer)
	builder := txbuilder.New(
		test.ProtocolParameters(),
		txbuilder.WithChangeAddress(payerAddr),
	)
	require.NoError(
		t,
		builder.AddInput(testUtxo(0xaa, 0, payerAddr, common.NewCoinValue(5_000_000))),
	)
	body, err := builder.Build()
	require.NoError(t, err)

	tx, err := txbuilder.SignBody(adapter, body, nil, payer, payer)
	require.NoError(t, err)
	require.Len(t, tx.WitnessSet.Vkey(), 1)
	assert.True(
		t,
		adapter.Verify(
			payer.PublicKey,
			body.Hash().Bytes(),
			tx.WitnessSet.Vkey()[0].Signature,
		),
	)

	auxData := common.NewAuxiliaryData(nil)
	_, err = txbuilder.SignBody(adapter, body, auxData, payer)
	assert.ErrorIs(t, err, common.ErrInvalidValue)
	_, err = txbuilder.SignBody(adapter, nil, nil, payer)
	assert.ErrorIs(t, err, common.ErrInvalidValue)
}
