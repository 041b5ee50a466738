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
	"errors"
	"testing"

	test "github.com/blinklabs-io/ledgerkit/internal/test/ledger"
	"github.com/blinklabs-io/ledgerkit/ledger/babbage"
	"github.com/blinklabs-io/ledgerkit/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTx(body *babbage.BabbageTransactionBody) *babbage.BabbageTransaction {
	return babbage.NewBabbageTransaction(
		*body,
		babbage.BabbageTransactionWitnessSet{},
		nil,
	)
}

func TestValidateTransaction(t *testing.T) {
	err := babbage.ValidateTransaction(
		newTestTx(newTestBody()),
		test.ProtocolParameters(),
	)
	assert.NoError(t, err)
}

func TestValidateInputSetEmpty(t *testing.T) {
	body := babbage.NewBabbageTransactionBody(nil, nil)
	err := babbage.ValidateInputSetEmpty(newTestTx(body), test.ProtocolParameters())
	assert.ErrorAs(t, err, &babbage.InputSetEmptyUtxoError{})
}

func TestValidateFeeTooSmall(t *testing.T) {
	body := newTestBody()
	body.SetFee(100_000)
	err := babbage.ValidateFeeTooSmall(newTestTx(body), test.ProtocolParameters())
	var feeErr babbage.FeeTooSmallUtxoError
	require.ErrorAs(t, err, &feeErr)
	assert.Equal(t, uint64(100_000), feeErr.Provided)
	assert.Equal(t, uint64(155381+44*90), feeErr.Min)
}

func TestValidateOutputTooSmall(t *testing.T) {
	body := newTestBody()
	body.AddOutput(
		babbage.NewBabbageTransactionOutput(
			test.EnterpriseAddress(0x12),
			common.NewCoinValue(500_000),
		),
	)
	err := babbage.ValidateOutputTooSmall(newTestTx(body), test.ProtocolParameters())
	var outputErr babbage.OutputTooSmallUtxoError
	require.ErrorAs(t, err, &outputErr)
	require.Len(t, outputErr.Outputs, 1)
	assert.Equal(t, uint64(500_000), outputErr.Outputs[0].Amount())
}

func TestValidateOutputTooBig(t *testing.T) {
	pparams := test.ProtocolParameters()
	pparams.MaxValueSize = 4
	err := babbage.ValidateOutputTooBig(newTestTx(newTestBody()), pparams)
	assert.ErrorAs(t, err, &babbage.OutputTooBigUtxoError{})

	pparams.MaxValueSize = 5
	err = babbage.ValidateOutputTooBig(newTestTx(newTestBody()), pparams)
	assert.NoError(t, err)
}

func TestValidateWrongNetwork(t *testing.T) {
	body := newTestBody()
	require.NoError(t, body.SetNetworkId(common.AddressNetworkMainnet))
	body.SetWithdrawals(mustWithdrawals(t, test.RewardAddress(0x44), 1))
	tx := newTestTx(body)
	var networkErr babbage.WrongNetworkError
	require.ErrorAs(
		t,
		babbage.ValidateWrongNetwork(tx, test.ProtocolParameters()),
		&networkErr,
	)
	assert.Equal(t, uint(common.AddressNetworkMainnet), networkErr.NetId)
	assert.Len(t, networkErr.Addrs, 1)
	assert.ErrorAs(
		t,
		babbage.ValidateWrongNetworkWithdrawal(tx, test.ProtocolParameters()),
		&babbage.WrongNetworkWithdrawalError{},
	)

	require.NoError(t, body.SetNetworkId(common.AddressNetworkTestnet))
	tx = newTestTx(body)
	assert.NoError(t, babbage.ValidateWrongNetwork(tx, test.ProtocolParameters()))
	assert.NoError(
		t,
		babbage.ValidateWrongNetworkWithdrawal(tx, test.ProtocolParameters()),
	)
}

func mustWithdrawals(
	t *testing.T,
	addr common.Address,
	amount uint64,
) common.Withdrawals {
	t.Helper()
	withdrawals, err := common.NewWithdrawals(
		common.Withdrawal{Address: addr, Amount: amount},
	)
	require.NoError(t, err)
	return withdrawals
}

func TestValidateMaxTxSize(t *testing.T) {
	pparams := test.ProtocolParameters()
	pparams.MaxTxSize = 89
	err := babbage.ValidateMaxTxSize(newTestTx(newTestBody()), pparams)
	var sizeErr babbage.MaxTxSizeUtxoError
	require.ErrorAs(t, err, &sizeErr)
	assert.Equal(t, uint64(90), sizeErr.TxSize)

	pparams.MaxTxSize = 90
	assert.NoError(t, babbage.ValidateMaxTxSize(newTestTx(newTestBody()), pparams))
}

func TestValidateExUnitsTooBig(t *testing.T) {
	pparams := test.ProtocolParameters()
	ws := babbage.BabbageTransactionWitnessSet{}
	ws.SetRedeemers(
		testRedeemers(t, common.ExUnits{Memory: pparams.MaxTxExUnits.Memory + 1, Steps: 1}),
	)
	tx := babbage.NewBabbageTransaction(*newTestBody(), ws, nil)
	assert.ErrorAs(
		t,
		babbage.ValidateExUnitsTooBig(tx, pparams),
		&babbage.ExUnitsTooBigUtxoError{},
	)
	// Redeemers without collateral
	assert.ErrorAs(
		t,
		babbage.ValidateNoCollateralInputs(tx, pparams),
		&babbage.NoCollateralInputsError{},
	)
}

func TestValidateTooManyCollateralInputs(t *testing.T) {
	body := newTestBody()
	for i := range 4 {
		body.AddCollateral(test.Input(0xcc, uint32(i)))
	}
	var collErr babbage.TooManyCollateralInputsError
	require.ErrorAs(
		t,
		babbage.ValidateTooManyCollateralInputs(newTestTx(body), test.ProtocolParameters()),
		&collErr,
	)
	assert.Equal(t, uint64(4), collErr.Provided)
	assert.Equal(t, uint64(3), collErr.Max)
}

func TestValidateNonDisjointRefInputs(t *testing.T) {
	body := newTestBody()
	body.AddReferenceInput(test.Input(0xaa, 0))
	pparams := test.ProtocolParameters()
	// Allowed before protocol version 9
	assert.NoError(t, babbage.ValidateNonDisjointRefInputs(newTestTx(body), pparams))
	pparams.ProtocolVersion.Major = 9
	var refErr babbage.NonDisjointRefInputsError
	require.ErrorAs(
		t,
		babbage.ValidateNonDisjointRefInputs(newTestTx(body), pparams),
		&refErr,
	)
	assert.Equal(t, []common.TransactionInput{test.Input(0xaa, 0)}, refErr.Inputs)
	assert.Contains(t, refErr.Error(), "non-disjoint reference inputs")
}

func TestValidateTransactionJoinsErrors(t *testing.T) {
	body := newTestBody()
	body.SetFee(100_000)
	body.AddOutput(
		babbage.NewBabbageTransactionOutput(
			test.EnterpriseAddress(0x12),
			common.NewCoinValue(500_000),
		),
	)
	err := babbage.ValidateTransaction(newTestTx(body), test.ProtocolParameters())
	require.Error(t, err)
	assert.True(t, errors.As(err, &babbage.FeeTooSmallUtxoError{}))
	assert.True(t, errors.As(err, &babbage.OutputTooSmallUtxoError{}))
}

func TestValidateCollateral(t *testing.T) {
	pparams := test.ProtocolParameters()
	ws := babbage.BabbageTransactionWitnessSet{}
	ws.SetRedeemers(testRedeemers(t, common.ExUnits{Memory: 1, Steps: 1}))
	collateralUtxo := func(value common.Value) common.Utxo {
		output := babbage.NewBabbageTransactionOutput(test.EnterpriseAddress(0x11), value)
		return common.Utxo{Id: test.Input(0xcc, 0), Output: &output}
	}
	body := newTestBody()
	body.AddCollateral(test.Input(0xcc, 0))
	tx := babbage.NewBabbageTransaction(*body, ws, nil)

	// 150% of the 200000 fee
	assert.NoError(
		t,
		babbage.ValidateCollateral(
			tx,
			pparams,
			[]common.Utxo{collateralUtxo(common.NewCoinValue(300_000))},
		),
	)

	var collErr babbage.InsufficientCollateralError
	require.ErrorAs(
		t,
		babbage.ValidateCollateral(
			tx,
			pparams,
			[]common.Utxo{collateralUtxo(common.NewCoinValue(299_999))},
		),
		&collErr,
	)
	assert.Equal(t, uint64(300_000), collErr.Required)

	assets := common.NewMultiAsset[common.MultiAssetTypeOutput](nil)
	require.NoError(t, assets.Set(test.PolicyId(0x22), []byte("token"), 1))
	assert.ErrorAs(
		t,
		babbage.ValidateCollateral(
			tx,
			pparams,
			[]common.Utxo{collateralUtxo(common.NewValue(5_000_000, assets))},
		),
		&babbage.CollateralContainsNonAdaError{},
	)

	body.SetTotalCollateral(400_000)
	tx = babbage.NewBabbageTransaction(*body, ws, nil)
	var totalErr babbage.IncorrectTotalCollateralFieldError
	require.ErrorAs(
		t,
		babbage.ValidateCollateral(
			tx,
			pparams,
			[]common.Utxo{collateralUtxo(common.NewCoinValue(300_000))},
		),
		&totalErr,
	)
	assert.Equal(t, uint64(300_000), totalErr.Provided)
}
