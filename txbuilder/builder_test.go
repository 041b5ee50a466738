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
	"math"
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

func testKey(t *testing.T, index uint32) keys.KeyPair {
	t.Helper()
	keyPair, err := keys.MockAdapter{}.DeriveKey(
		keys.NewCip1852Path(0, keys.RoleExternal, index),
	)
	require.NoError(t, err)
	return keyPair
}

func keyAddress(t *testing.T, keyPair keys.KeyPair) common.Address {
	t.Helper()
	addr, err := common.NewEnterpriseAddress(
		common.AddressNetworkTestnet,
		common.NewKeyCredential(keyPair.KeyHash()),
	)
	require.NoError(t, err)
	return addr
}

func testUtxo(
	txId byte,
	index uint32,
	addr common.Address,
	value common.Value,
) common.Utxo {
	output := babbage.NewBabbageTransactionOutput(addr, value)
	return common.Utxo{
		Id:     test.Input(txId, index),
		Output: &output,
	}
}

func coinOutput(addr common.Address, coin uint64) babbage.BabbageTransactionOutput {
	return babbage.NewBabbageTransactionOutput(addr, common.NewCoinValue(coin))
}

func TestAddOutputBelowMinUtxo(t *testing.T) {
	builder := txbuilder.New(test.ProtocolParameters())
	err := builder.AddOutput(coinOutput(test.EnterpriseAddress(0x22), 500_000))
	var belowMin txbuilder.OutputBelowMinUtxoError
	require.ErrorAs(t, err, &belowMin)
	assert.Equal(t, uint64(500_000), belowMin.Amount)
	assert.Equal(t, uint64(857_690), belowMin.MinAda)
	assert.Empty(t, builder.Outputs())
	// Exactly the minimum is accepted
	require.NoError(
		t,
		builder.AddOutput(coinOutput(test.EnterpriseAddress(0x22), 857_690)),
	)
	assert.Len(t, builder.Outputs(), 1)
}

func TestAddOutputWrongNetwork(t *testing.T) {
	builder := txbuilder.New(
		test.ProtocolParameters(),
		txbuilder.WithNetworkId(common.AddressNetworkMainnet),
	)
	err := builder.AddOutput(coinOutput(test.EnterpriseAddress(0x22), 1_000_000))
	assert.ErrorIs(t, err, common.ErrInvalidValue)
	err = builder.AddWithdrawal(test.RewardAddress(0x44), 1)
	assert.ErrorIs(t, err, common.ErrInvalidValue)
}

func TestAddInputDuplicate(t *testing.T) {
	builder := txbuilder.New(test.ProtocolParameters())
	utxo := testUtxo(0xaa, 0, test.EnterpriseAddress(0x11), common.NewCoinValue(5_000_000))
	require.NoError(t, builder.AddInput(utxo))
	assert.ErrorIs(t, builder.AddInput(utxo), common.ErrInvalidValue)
	assert.ErrorIs(
		t,
		builder.AddInput(common.Utxo{Id: test.Input(0xbb, 0)}),
		common.ErrInvalidValue,
	)
	assert.Len(t, builder.Inputs(), 1)
}

func TestAddMintValidation(t *testing.T) {
	script := common.NewNativeScriptPubkey(test.KeyHash(0x11))
	builder := txbuilder.New(test.ProtocolParameters())
	assert.ErrorIs(
		t,
		builder.AddMint(script.Hash(), []byte("TOK"), 0, &script),
		common.ErrInvalidValue,
	)
	assert.ErrorIs(
		t,
		builder.AddMint(test.PolicyId(0x0a), []byte("TOK"), 1, &script),
		common.ErrInvalidValue,
	)
	require.NoError(
		t,
		builder.AddMint(script.Hash(), []byte("TOK"), math.MaxInt64, &script),
	)
	assert.ErrorIs(
		t,
		builder.AddMint(script.Hash(), []byte("TOK"), 1, nil),
		common.ErrInvalidValue,
	)
}

func TestValidityInterval(t *testing.T) {
	builder := txbuilder.New(test.ProtocolParameters())
	assert.ErrorIs(
		t,
		builder.SetTtlFromSlot(math.MaxUint64, 1),
		common.ErrInvalidValue,
	)
	require.NoError(t, builder.SetTtlFromSlot(100, 7200))
	assert.ErrorIs(
		t,
		builder.SetValidityIntervalStart(7300),
		common.ErrInvalidValue,
	)
	require.NoError(t, builder.SetValidityIntervalStart(100))
	assert.ErrorIs(t, builder.SetTtl(100), common.ErrInvalidValue)
}

func TestAddBootstrapSignerRequiresByron(t *testing.T) {
	builder := txbuilder.New(test.ProtocolParameters())
	assert.ErrorIs(
		t,
		builder.AddBootstrapSigner(test.EnterpriseAddress(0x11)),
		common.ErrInvalidValue,
	)
}

func TestAddChangeOutputOnce(t *testing.T) {
	builder := txbuilder.New(test.ProtocolParameters())
	require.NoError(
		t,
		builder.AddChangeOutput(coinOutput(test.EnterpriseAddress(0x11), 0)),
	)
	assert.ErrorIs(
		t,
		builder.AddChangeOutput(coinOutput(test.EnterpriseAddress(0x11), 0)),
		common.ErrInvalidValue,
	)
}

func TestNotFinalized(t *testing.T) {
	builder := txbuilder.New(test.ProtocolParameters())
	assert.False(t, builder.IsFinalized())
	_, err := builder.Body()
	assert.ErrorIs(t, err, txbuilder.ErrBuilderNotFinalized)
	_, err = builder.Sign(keys.MockAdapter{})
	assert.ErrorIs(t, err, txbuilder.ErrBuilderNotFinalized)
}

func TestFinalizedBuilderRejectsMutation(t *testing.T) {
	defer goleak.VerifyNone(t)
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
	require.NoError(
		t,
		builder.AddOutput(coinOutput(test.EnterpriseAddress(0x22), 1_000_000)),
	)
	body, err := builder.Build()
	require.NoError(t, err)
	require.True(t, builder.IsFinalized())
	bodyCbor := body.Cbor()

	script := common.NewNativeScriptPubkey(test.KeyHash(0x11))
	aux := common.NewAuxiliaryData(nil)
	mutators := map[string]func() error{
		"AddInput": func() error {
			return builder.AddInput(
				testUtxo(0xbb, 0, payerAddr, common.NewCoinValue(1_000_000)),
			)
		},
		"AddOutput": func() error {
			return builder.AddOutput(coinOutput(payerAddr, 1_000_000))
		},
		"AddChangeOutput": func() error {
			return builder.AddChangeOutput(coinOutput(payerAddr, 0))
		},
		"AddCertificate": func() error {
			return builder.AddCertificate(
				common.NewStakeRegistrationCertificate(
					common.NewKeyCredential(test.KeyHash(0x33)),
				),
			)
		},
		"AddWithdrawal": func() error {
			return builder.AddWithdrawal(test.RewardAddress(0x44), 1)
		},
		"AddMint": func() error {
			return builder.AddMint(script.Hash(), []byte("TOK"), 1, &script)
		},
		"SetAuxiliaryData": func() error {
			return builder.SetAuxiliaryData(*aux)
		},
		"SetTtl": func() error {
			return builder.SetTtl(1000)
		},
		"SetTtlFromSlot": func() error {
			return builder.SetTtlFromSlot(1, 1)
		},
		"SetTtlFromSlotOverflow": func() error {
			return builder.SetTtlFromSlot(math.MaxUint64, 1)
		},
		"SetValidityIntervalStart": func() error {
			return builder.SetValidityIntervalStart(1)
		},
		"SetFee": func() error {
			return builder.SetFee(200_000)
		},
		"AddRequiredSigner": func() error {
			return builder.AddRequiredSigner(test.KeyHash(0x55))
		},
		"AddCollateral": func() error {
			return builder.AddCollateral(
				testUtxo(0xcc, 0, payerAddr, common.NewCoinValue(5_000_000)),
			)
		},
		"AddReferenceInput": func() error {
			return builder.AddReferenceInput(test.Input(0xdd, 0))
		},
		"AddNativeScript": func() error {
			return builder.AddNativeScript(script)
		},
		"AddBootstrapSigner": func() error {
			return builder.AddBootstrapSigner(payerAddr)
		},
		"Build": func() error {
			_, err := builder.Build()
			return err
		},
	}
	for name, mutate := range mutators {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, mutate(), txbuilder.ErrBuilderFinalized)
			current, err := builder.Body()
			require.NoError(t, err)
			assert.Equal(t, bodyCbor, current.Cbor())
		})
	}
	assert.Len(t, builder.Inputs(), 1)
	assert.Len(t, builder.Outputs(), 1)
}

func TestBodyCopiesAreIndependent(t *testing.T) {
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
	hash := body.Hash()
	body.SetFee(1)
	current, err := builder.Body()
	require.NoError(t, err)
	assert.Equal(t, hash, current.Hash())
}
