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
	"fmt"
	"strings"

	"github.com/blinklabs-io/ledgerkit/ledger/common"
)

type InputSetEmptyUtxoError struct{}

func (InputSetEmptyUtxoError) Error() string {
	return "input set empty"
}

type FeeTooSmallUtxoError struct {
	Provided uint64
	Min      uint64
}

func (e FeeTooSmallUtxoError) Error() string {
	return fmt.Sprintf(
		"fee too small: provided %d, minimum %d",
		e.Provided,
		e.Min,
	)
}

type OutputTooSmallUtxoError struct {
	Outputs []common.TransactionOutput
}

func (e OutputTooSmallUtxoError) Error() string {
	return "output too small: " + outputsString(e.Outputs)
}

type OutputTooBigUtxoError struct {
	Outputs []common.TransactionOutput
}

func (e OutputTooBigUtxoError) Error() string {
	return "output value too big: " + outputsString(e.Outputs)
}

type OutputBootAddrAttrsTooBigError struct {
	Outputs []common.TransactionOutput
}

func (e OutputBootAddrAttrsTooBigError) Error() string {
	return "output bootstrap address attributes too big: " + outputsString(
		e.Outputs,
	)
}

func outputsString(outputs []common.TransactionOutput) string {
	tmpOutputs := make([]string, len(outputs))
	for idx, tmpOutput := range outputs {
		tmpOutputs[idx] = fmt.Sprintf(
			"%s (%d)",
			tmpOutput.Address().String(),
			tmpOutput.Amount(),
		)
	}
	return strings.Join(tmpOutputs, ", ")
}

type WrongNetworkError struct {
	NetId uint
	Addrs []common.Address
}

func (e WrongNetworkError) Error() string {
	return "wrong network: " + addressesString(e.Addrs)
}

type WrongNetworkWithdrawalError struct {
	NetId uint
	Addrs []common.Address
}

func (e WrongNetworkWithdrawalError) Error() string {
	return "wrong network withdrawals: " + addressesString(e.Addrs)
}

func addressesString(addrs []common.Address) string {
	tmpAddrs := make([]string, len(addrs))
	for idx, tmpAddr := range addrs {
		tmpAddrs[idx] = tmpAddr.String()
	}
	return strings.Join(tmpAddrs, ", ")
}

type MaxTxSizeUtxoError struct {
	TxSize    uint64
	MaxTxSize uint64
}

func (e MaxTxSizeUtxoError) Error() string {
	return fmt.Sprintf(
		"transaction size too large: size %d, max %d",
		e.TxSize,
		e.MaxTxSize,
	)
}

type ExUnitsTooBigUtxoError struct {
	TotalExUnits common.ExUnits
	MaxTxExUnits common.ExUnits
}

func (e ExUnitsTooBigUtxoError) Error() string {
	return fmt.Sprintf(
		"ExUnits too big: total %d/%d steps/memory, maximum %d/%d steps/memory",
		e.TotalExUnits.Steps,
		e.TotalExUnits.Memory,
		e.MaxTxExUnits.Steps,
		e.MaxTxExUnits.Memory,
	)
}

type NoCollateralInputsError struct{}

func (NoCollateralInputsError) Error() string {
	return "no collateral inputs"
}

type InsufficientCollateralError struct {
	Provided uint64
	Required uint64
}

func (e InsufficientCollateralError) Error() string {
	return fmt.Sprintf(
		"insufficient collateral: provided %d, required %d",
		e.Provided,
		e.Required,
	)
}

type CollateralContainsNonAdaError struct {
	Provided common.Value
}

func (e CollateralContainsNonAdaError) Error() string {
	return "collateral contains non-ADA: " + e.Provided.String()
}

type NonDisjointRefInputsError struct {
	Inputs []common.TransactionInput
}

func (e NonDisjointRefInputsError) Error() string {
	tmpInputs := make([]string, len(e.Inputs))
	for idx, tmpInput := range e.Inputs {
		tmpInputs[idx] = tmpInput.String()
	}
	return "non-disjoint reference inputs: " + strings.Join(tmpInputs, ", ")
}

type TooManyCollateralInputsError struct {
	Provided uint64
	Max      uint64
}

func (e TooManyCollateralInputsError) Error() string {
	return fmt.Sprintf(
		"too many collateral inputs: provided %d, maximum %d",
		e.Provided,
		e.Max,
	)
}

type IncorrectTotalCollateralFieldError struct {
	Provided        uint64
	TotalCollateral uint64
}

func (e IncorrectTotalCollateralFieldError) Error() string {
	return fmt.Sprintf(
		"incorrect total collateral field: provided %d, total collateral %d",
		e.Provided,
		e.TotalCollateral,
	)
}
