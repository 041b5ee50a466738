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

package babbage

import (
	"errors"
	"math/bits"

	"github.com/blinklabs-io/ledgerkit/ledger/common"
)

const maxBootAddrAttrsSize = 64

// ValidationRuleFunc checks a transaction against protocol parameters without
// any ledger state
type ValidationRuleFunc func(*BabbageTransaction, common.ProtocolParameters) error

var ValidationRules = []ValidationRuleFunc{
	ValidateInputSetEmpty,
	ValidateFeeTooSmall,
	ValidateOutputTooSmall,
	ValidateOutputTooBig,
	ValidateOutputBootAddrAttrsTooBig,
	ValidateWrongNetwork,
	ValidateWrongNetworkWithdrawal,
	ValidateMaxTxSize,
	ValidateExUnitsTooBig,
	ValidateNoCollateralInputs,
	ValidateTooManyCollateralInputs,
	ValidateNonDisjointRefInputs,
}

// ValidateTransaction runs all ValidationRules and joins their errors
func ValidateTransaction(
	tx *BabbageTransaction,
	pp common.ProtocolParameters,
) error {
	var errs []error
	for _, rule := range ValidationRules {
		if err := rule(tx, pp); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func ValidateInputSetEmpty(
	tx *BabbageTransaction,
	pp common.ProtocolParameters,
) error {
	if len(tx.Body.Inputs()) > 0 {
		return nil
	}
	return InputSetEmptyUtxoError{}
}

func ValidateFeeTooSmall(
	tx *BabbageTransaction,
	pp common.ProtocolParameters,
) error {
	minFee, err := MinFeeTx(tx, pp)
	if err != nil {
		return err
	}
	if tx.Body.Fee() >= minFee {
		return nil
	}
	return FeeTooSmallUtxoError{
		Provided: tx.Body.Fee(),
		Min:      minFee,
	}
}

func ValidateOutputTooSmall(
	tx *BabbageTransaction,
	pp common.ProtocolParameters,
) error {
	var badOutputs []common.TransactionOutput
	for idx := range tx.Body.TxOutputs {
		tmpOutput := &tx.Body.TxOutputs[idx]
		minCoin, err := MinAdaForOutput(*tmpOutput, pp)
		if err != nil {
			return err
		}
		if tmpOutput.Amount() < minCoin {
			badOutputs = append(badOutputs, tmpOutput)
		}
	}
	if len(badOutputs) == 0 {
		return nil
	}
	return OutputTooSmallUtxoError{
		Outputs: badOutputs,
	}
}

func ValidateOutputTooBig(
	tx *BabbageTransaction,
	pp common.ProtocolParameters,
) error {
	if pp.MaxValueSize == 0 {
		return nil
	}
	var badOutputs []common.TransactionOutput
	for idx := range tx.Body.TxOutputs {
		tmpOutput := &tx.Body.TxOutputs[idx]
		valueSize, err := encodedSize(tmpOutput.OutputAmount)
		if err != nil {
			return err
		}
		if uint64(valueSize) <= pp.MaxValueSize {
			continue
		}
		badOutputs = append(badOutputs, tmpOutput)
	}
	if len(badOutputs) == 0 {
		return nil
	}
	return OutputTooBigUtxoError{
		Outputs: badOutputs,
	}
}

func ValidateOutputBootAddrAttrsTooBig(
	tx *BabbageTransaction,
	pp common.ProtocolParameters,
) error {
	var badOutputs []common.TransactionOutput
	for _, tmpOutput := range tx.Body.Outputs() {
		addr := tmpOutput.Address()
		if !addr.IsByron() {
			continue
		}
		attr := addr.ByronAttr()
		attrBytes, err := attr.MarshalCBOR()
		if err != nil {
			return err
		}
		if len(attrBytes) <= maxBootAddrAttrsSize {
			continue
		}
		badOutputs = append(badOutputs, tmpOutput)
	}
	if len(badOutputs) == 0 {
		return nil
	}
	return OutputBootAddrAttrsTooBigError{
		Outputs: badOutputs,
	}
}

// ValidateWrongNetwork checks output addresses against the body network ID.
// Bodies without a network ID are not checked
func ValidateWrongNetwork(
	tx *BabbageTransaction,
	pp common.ProtocolParameters,
) error {
	if tx.Body.NetworkId == nil {
		return nil
	}
	networkId := uint(*tx.Body.NetworkId)
	var badAddrs []common.Address
	for _, tmpOutput := range tx.Body.Outputs() {
		addr := tmpOutput.Address()
		if addr.NetworkId() == networkId {
			continue
		}
		badAddrs = append(badAddrs, addr)
	}
	if len(badAddrs) == 0 {
		return nil
	}
	return WrongNetworkError{
		NetId: networkId,
		Addrs: badAddrs,
	}
}

func ValidateWrongNetworkWithdrawal(
	tx *BabbageTransaction,
	pp common.ProtocolParameters,
) error {
	if tx.Body.NetworkId == nil {
		return nil
	}
	networkId := uint(*tx.Body.NetworkId)
	var badAddrs []common.Address
	for _, withdrawal := range tx.Body.Withdrawals().Entries() {
		if withdrawal.Address.NetworkId() == networkId {
			continue
		}
		badAddrs = append(badAddrs, withdrawal.Address)
	}
	if len(badAddrs) == 0 {
		return nil
	}
	return WrongNetworkWithdrawalError{
		NetId: networkId,
		Addrs: badAddrs,
	}
}

func ValidateMaxTxSize(
	tx *BabbageTransaction,
	pp common.ProtocolParameters,
) error {
	txBytes, err := tx.MarshalCBOR()
	if err != nil {
		return err
	}
	txSize := uint64(len(txBytes))
	if txSize <= pp.MaxTxSize {
		return nil
	}
	return MaxTxSizeUtxoError{
		TxSize:    txSize,
		MaxTxSize: pp.MaxTxSize,
	}
}

func ValidateExUnitsTooBig(
	tx *BabbageTransaction,
	pp common.ProtocolParameters,
) error {
	redeemers := tx.WitnessSet.Redeemers()
	if redeemers.Len() == 0 {
		return nil
	}
	total := redeemers.TotalExUnits()
	if total.Steps <= pp.MaxTxExUnits.Steps &&
		total.Memory <= pp.MaxTxExUnits.Memory {
		return nil
	}
	return ExUnitsTooBigUtxoError{
		TotalExUnits: total,
		MaxTxExUnits: pp.MaxTxExUnits,
	}
}

func ValidateNoCollateralInputs(
	tx *BabbageTransaction,
	pp common.ProtocolParameters,
) error {
	// There's nothing to check if there are no redeemers
	if tx.WitnessSet.Redeemers().Len() == 0 {
		return nil
	}
	if len(tx.Body.Collateral()) > 0 {
		return nil
	}
	return NoCollateralInputsError{}
}

func ValidateTooManyCollateralInputs(
	tx *BabbageTransaction,
	pp common.ProtocolParameters,
) error {
	collateralCount := uint64(len(tx.Body.Collateral()))
	if collateralCount <= pp.MaxCollateralInputs {
		return nil
	}
	return TooManyCollateralInputsError{
		Provided: collateralCount,
		Max:      pp.MaxCollateralInputs,
	}
}

// ValidateNonDisjointRefInputs rejects reference inputs that are also spent.
// The overlap is allowed before protocol version 9
func ValidateNonDisjointRefInputs(
	tx *BabbageTransaction,
	pp common.ProtocolParameters,
) error {
	if pp.ProtocolVersion.Major < 9 {
		return nil
	}
	inputs := make(map[common.TransactionInput]struct{})
	for _, input := range tx.Body.Inputs() {
		inputs[input] = struct{}{}
	}
	var overlap []common.TransactionInput
	for _, refInput := range tx.Body.ReferenceInputs() {
		if _, ok := inputs[refInput]; ok {
			overlap = append(overlap, refInput)
		}
	}
	if len(overlap) == 0 {
		return nil
	}
	return NonDisjointRefInputsError{
		Inputs: overlap,
	}
}

// ValidateCollateral checks the collateral of a script transaction against the
// resolved collateral UTxOs
func ValidateCollateral(
	tx *BabbageTransaction,
	pp common.ProtocolParameters,
	collateralUtxos []common.Utxo,
) error {
	// There's nothing to check if there are no redeemers
	if tx.WitnessSet.Redeemers().Len() == 0 {
		return nil
	}
	if len(collateralUtxos) == 0 {
		return NoCollateralInputsError{}
	}
	var balance common.Value
	for _, utxo := range collateralUtxos {
		tmpBalance, err := balance.Add(utxo.Output.Value())
		if err != nil {
			return err
		}
		balance = tmpBalance
	}
	if collReturn := tx.Body.CollateralReturn(); collReturn != nil {
		tmpBalance, err := balance.Sub(collReturn.Value())
		if err != nil {
			return err
		}
		balance = tmpBalance
	}
	if balance.HasAssets() {
		return CollateralContainsNonAdaError{
			Provided: balance,
		}
	}
	// balance * 100 >= fee * percentage
	balHi, balLo := bits.Mul64(balance.Coin, 100)
	reqHi, reqLo := bits.Mul64(tx.Body.Fee(), pp.CollateralPercentage)
	if balHi < reqHi || (balHi == reqHi && balLo < reqLo) {
		required := (tx.Body.Fee()*pp.CollateralPercentage + 99) / 100
		return InsufficientCollateralError{
			Provided: balance.Coin,
			Required: required,
		}
	}
	if tx.Body.TxTotalCollateral != nil &&
		*tx.Body.TxTotalCollateral != balance.Coin {
		return IncorrectTotalCollateralFieldError{
			Provided:        balance.Coin,
			TotalCollateral: *tx.Body.TxTotalCollateral,
		}
	}
	return nil
}
