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

package txbuilder

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/blinklabs-io/ledgerkit/ledger/babbage"
	"github.com/blinklabs-io/ledgerkit/ledger/common"
)

// balance holds the value consumed and produced by everything except the
// inputs, the change and the fee
type balance struct {
	consumed common.Value
	produced common.Value
}

// Build selects inputs, adds change, settles the fee and finalizes the
// builder. It returns a copy of the finalized body. On error the builder is
// left open and unchanged
func (b *Builder) Build() (*babbage.BabbageTransactionBody, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	bal, err := b.baseBalance()
	if err != nil {
		return nil, err
	}
	if err := b.checkFunds(bal); err != nil {
		return nil, err
	}
	inputs, err := b.selectInputs(bal)
	if err != nil {
		return nil, err
	}
	signers := b.expectedSigners(inputs)
	if err := b.checkFeeFunds(bal, inputs, signers); err != nil {
		return nil, err
	}
	body, tx, err := b.settleFee(bal, inputs, signers)
	if err != nil {
		return nil, err
	}
	txBytes, err := tx.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	if b.pparams.MaxTxSize > 0 && uint64(len(txBytes)) > b.pparams.MaxTxSize {
		return nil, TransactionTooLargeError{
			Size:    uint64(len(txBytes)),
			MaxSize: b.pparams.MaxTxSize,
		}
	}
	if err := babbage.ValidateTransaction(tx, b.pparams); err != nil {
		return nil, fmt.Errorf("validate transaction: %w", err)
	}
	bodyBytes, err := body.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	finalBody, err := babbage.NewBabbageTransactionBodyFromCbor(bodyBytes)
	if err != nil {
		return nil, err
	}
	b.inputs = inputs
	b.body = finalBody
	b.signers = signers
	b.finalized = true
	b.logger.Debug(
		"transaction finalized",
		"component", "txbuilder",
		"tx_id", finalBody.Hash().String(),
		"fee", finalBody.Fee(),
		"size", len(txBytes),
		"inputs", len(inputs),
		"outputs", len(finalBody.TxOutputs),
	)
	return b.Body()
}

func (b *Builder) baseBalance() (balance, error) {
	var ret balance
	deposit, refund, err := common.TotalCertificateDeposits(
		b.certificates,
		b.pparams,
	)
	if err != nil {
		return ret, err
	}
	withdrawn, err := b.withdrawals.Total()
	if err != nil {
		return ret, err
	}
	minted, burned, err := splitMint(b.mint)
	if err != nil {
		return ret, err
	}
	ret.consumed = common.NewValue(0, minted)
	for _, coin := range []uint64{withdrawn, refund} {
		ret.consumed, err = ret.consumed.Add(common.NewCoinValue(coin))
		if err != nil {
			return ret, err
		}
	}
	ret.produced = common.NewValue(deposit, burned)
	for i := range b.outputs {
		ret.produced, err = ret.produced.Add(b.outputs[i].Value())
		if err != nil {
			return ret, err
		}
	}
	return ret, nil
}

// splitMint separates minted quantities from burned ones
func splitMint(
	mint common.MultiAsset[common.MultiAssetTypeMint],
) (minted, burned common.MultiAsset[common.MultiAssetTypeOutput], err error) {
	for _, policyId := range mint.Policies() {
		for _, assetName := range mint.Assets(policyId) {
			qty := mint.Asset(policyId, assetName)
			if qty > 0 {
				err = minted.Set(policyId, assetName, uint64(qty))
			} else {
				err = burned.Set(policyId, assetName, uint64(-(qty+1))+1)
			}
			if err != nil {
				return minted, burned, err
			}
		}
	}
	return minted, burned, nil
}

// consumed returns the total value available when spending utxos
func (b *Builder) consumed(bal balance, utxos []common.Utxo) (common.Value, error) {
	ret := bal.consumed
	for _, utxo := range utxos {
		var err error
		ret, err = ret.Add(utxo.Output.Value())
		if err != nil {
			return common.Value{}, err
		}
	}
	return ret, nil
}

// pool returns the candidates that are not already spent
func (b *Builder) pool(selected []common.Utxo) []common.Utxo {
	var ret []common.Utxo
	for _, utxo := range b.candidates {
		if !containsInput(selected, utxo.Id) && !containsInput(ret, utxo.Id) {
			ret = append(ret, utxo)
		}
	}
	return ret
}

// checkFunds fails when the outputs cannot be paid for even with no fee and
// every candidate spent
func (b *Builder) checkFunds(bal balance) error {
	available := slices.Concat(b.inputs, b.pool(b.inputs))
	total, err := b.consumed(bal, available)
	if err != nil {
		return err
	}
	if len(available) == 0 || !total.GreaterOrEqual(bal.produced) {
		return InsufficientFundsError{
			Required:  bal.produced,
			Available: total,
		}
	}
	return nil
}

// checkFeeFunds fails when the inputs cannot pay the outputs plus the fee of
// the smallest possible transaction, which has no change and a zero fee field
func (b *Builder) checkFeeFunds(
	bal balance,
	inputs []common.Utxo,
	signers expectedSigners,
) error {
	consumed, err := b.consumed(bal, inputs)
	if err != nil {
		return err
	}
	body, err := b.draftBody(inputs, nil, 0)
	if err != nil {
		return err
	}
	tx, err := b.placeholderTx(body, signers)
	if err != nil {
		return err
	}
	minFee, err := babbage.MinFeeTx(tx, b.pparams)
	if err != nil {
		return err
	}
	if b.fee != nil {
		minFee = max(minFee, *b.fee)
	}
	required, err := bal.produced.Add(common.NewCoinValue(minFee))
	if err != nil {
		return err
	}
	if !consumed.GreaterOrEqual(required) {
		return InsufficientFundsError{
			Required:  required,
			Available: consumed,
		}
	}
	return nil
}

func (b *Builder) selectInputs(bal balance) ([]common.Utxo, error) {
	selected := slices.Clone(b.inputs)
	if len(b.candidates) == 0 {
		return selected, nil
	}
	pool := b.pool(selected)
	for round := 0; ; round++ {
		deficit, err := b.deficit(bal, selected)
		if err != nil {
			return nil, err
		}
		if deficit.IsZero() {
			return selected, nil
		}
		if len(pool) == 0 {
			return nil, UTxOSelectionFailedError{
				Deficit:    deficit,
				Candidates: len(b.candidates),
			}
		}
		idx := b.selectionStrategy.next(pool, deficit, round)
		utxo := pool[idx]
		b.logger.Debug(
			"selected input",
			"component", "txbuilder",
			"input", utxo.Id.String(),
			"amount", utxo.Output.Amount(),
			"strategy", b.selectionStrategy.String(),
			"deficit", deficit.String(),
		)
		selected = append(selected, utxo)
		pool = slices.Delete(pool, idx, idx+1)
	}
}

// deficit returns what is still missing to pay for the outputs, an upper
// bound of the fee and a valid change output
func (b *Builder) deficit(bal balance, selected []common.Utxo) (common.Value, error) {
	consumed, err := b.consumed(bal, selected)
	if err != nil {
		return common.Value{}, err
	}
	// The widest fee field and all surplus as change bound the final size
	surplus := consumed.ClampedSub(bal.produced)
	var change *babbage.BabbageTransactionOutput
	if !surplus.IsZero() {
		change = b.newChangeOutput(surplus)
	}
	body, err := b.draftBody(selected, change, math.MaxUint64)
	if err != nil {
		return common.Value{}, err
	}
	tx, err := b.placeholderTx(body, b.expectedSigners(selected))
	if err != nil {
		return common.Value{}, err
	}
	feeEstimate, err := babbage.MinFeeTx(tx, b.pparams)
	if err != nil {
		return common.Value{}, err
	}
	if b.fee != nil {
		feeEstimate = max(feeEstimate, *b.fee)
	}
	required, err := bal.produced.Add(common.NewCoinValue(feeEstimate))
	if err != nil {
		return common.Value{}, err
	}
	if deficit := required.ClampedSub(consumed); !deficit.IsZero() {
		return deficit, nil
	}
	_, _, err = b.settleChange(consumed.ClampedSub(required))
	var belowMin ChangeBelowMinUTXOError
	if errors.As(err, &belowMin) {
		return common.NewCoinValue(belowMin.MinAda - belowMin.Change.Coin), nil
	}
	return common.Value{}, err
}

// settleFee runs the fee and change computation to a fixed point. Each round
// sizes a draft with placeholder witnesses and the previous minimum fee. Any
// draft whose fee covers its own minimum is accepted
func (b *Builder) settleFee(
	bal balance,
	inputs []common.Utxo,
	signers expectedSigners,
) (*babbage.BabbageTransactionBody, *babbage.BabbageTransaction, error) {
	consumed, err := b.consumed(bal, inputs)
	if err != nil {
		return nil, nil, err
	}
	var fee, minFee uint64
	if b.fee != nil {
		fee = *b.fee
	}
	for iteration := 1; iteration <= b.maxFeeIterations; iteration++ {
		required, err := bal.produced.Add(common.NewCoinValue(fee))
		if err != nil {
			return nil, nil, err
		}
		surplus, err := consumed.Sub(required)
		if err != nil {
			return nil, nil, InsufficientFundsError{
				Required:  required,
				Available: consumed,
			}
		}
		change, absorbed, err := b.settleChange(surplus)
		if err != nil {
			return nil, nil, err
		}
		totalFee := fee + absorbed
		body, err := b.draftBody(inputs, change, totalFee)
		if err != nil {
			return nil, nil, err
		}
		tx, err := b.placeholderTx(body, signers)
		if err != nil {
			return nil, nil, err
		}
		minFee, err = babbage.MinFeeTx(tx, b.pparams)
		if err != nil {
			return nil, nil, err
		}
		b.logger.Debug(
			"fee iteration",
			"component", "txbuilder",
			"iteration", iteration,
			"fee", totalFee,
			"min_fee", minFee,
			"absorbed", absorbed,
		)
		if minFee <= totalFee {
			return body, tx, nil
		}
		if b.fee != nil {
			return nil, nil, babbage.FeeTooSmallUtxoError{
				Provided: totalFee,
				Min:      minFee,
			}
		}
		fee = minFee
	}
	return nil, nil, FeeCalculationDidNotConvergeError{
		Iterations: b.maxFeeIterations,
		LastFee:    fee,
		MinFee:     minFee,
	}
}

// settleChange turns the surplus into a change output, or adds it to the fee
// when it is ADA-only and no larger than the configured absorption limit
func (b *Builder) settleChange(
	surplus common.Value,
) (*babbage.BabbageTransactionOutput, uint64, error) {
	if surplus.IsZero() {
		return nil, 0, nil
	}
	absorbable := !surplus.HasAssets() && surplus.Coin <= b.maxFeeAbsorption
	change := b.newChangeOutput(surplus)
	if change == nil {
		if absorbable {
			return nil, surplus.Coin, nil
		}
		return nil, 0, fmt.Errorf(
			"%w: cannot place surplus of %s",
			ErrNoChangeAddress,
			surplus.String(),
		)
	}
	minAda, err := babbage.MinAdaForOutput(*change, b.pparams)
	if err != nil {
		return nil, 0, err
	}
	if surplus.Coin >= minAda {
		return change, 0, nil
	}
	if absorbable {
		return nil, surplus.Coin, nil
	}
	return nil, 0, ChangeBelowMinUTXOError{
		Change: surplus,
		MinAda: minAda,
	}
}

func (b *Builder) newChangeOutput(value common.Value) *babbage.BabbageTransactionOutput {
	switch {
	case b.changeOutput != nil:
		ret := *b.changeOutput
		ret.SetAmount(value)
		return &ret
	case b.changeAddress != nil:
		ret := babbage.NewBabbageTransactionOutput(*b.changeAddress, value)
		return &ret
	}
	return nil
}

func (b *Builder) draftBody(
	inputs []common.Utxo,
	change *babbage.BabbageTransactionOutput,
	fee uint64,
) (*babbage.BabbageTransactionBody, error) {
	inputIds := make([]common.TransactionInput, 0, len(inputs))
	for _, utxo := range inputs {
		inputIds = append(inputIds, utxo.Id)
	}
	outputs := slices.Clone(b.outputs)
	if change != nil {
		outputs = append(outputs, *change)
	}
	body := babbage.NewBabbageTransactionBody(inputIds, outputs)
	body.SetFee(fee)
	if b.ttl != nil {
		body.SetTtl(*b.ttl)
	}
	if b.validityStart != nil {
		body.SetValidityIntervalStart(*b.validityStart)
	}
	if len(b.certificates) > 0 {
		body.SetCertificates(b.certificates)
	}
	if b.withdrawals.Len() > 0 {
		body.SetWithdrawals(b.withdrawals)
	}
	if !b.mint.IsEmpty() {
		body.SetMint(b.mint)
	}
	if b.auxData != nil {
		body.SetAuxDataHash(b.auxData.Hash())
	}
	for _, keyHash := range b.requiredSigners {
		body.AddRequiredSigner(keyHash)
	}
	if b.networkId != nil {
		if err := body.SetNetworkId(*b.networkId); err != nil {
			return nil, err
		}
	}
	for _, utxo := range b.collateral {
		body.AddCollateral(utxo.Id)
	}
	for _, input := range b.referenceInputs {
		body.AddReferenceInput(input)
	}
	return body, nil
}

// placeholderTx wraps the body with zeroed witnesses of the expected size
func (b *Builder) placeholderTx(
	body *babbage.BabbageTransactionBody,
	signers expectedSigners,
) (*babbage.BabbageTransaction, error) {
	witnessSet, err := babbage.NewPlaceholderWitnessSet(
		len(signers.keyHashes),
		signers.bootstrap,
	)
	if err != nil {
		return nil, err
	}
	for _, script := range b.nativeScripts {
		witnessSet.AddNativeScript(script)
	}
	return babbage.NewBabbageTransaction(*body, witnessSet, b.auxData), nil
}
