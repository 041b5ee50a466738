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
	"strings"

	"github.com/blinklabs-io/ledgerkit/ledger/common"
)

var (
	ErrBuilderFinalized    = errors.New("transaction builder is finalized")
	ErrBuilderNotFinalized = errors.New("transaction builder is not finalized")
	ErrNoChangeAddress     = errors.New("no change address")
)

// InsufficientFundsError indicates that the inputs cannot pay for the
// outputs, deposits and fee
type InsufficientFundsError struct {
	Required  common.Value
	Available common.Value
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf(
		"insufficient funds: required %s, available %s",
		e.Required.String(),
		e.Available.String(),
	)
}

// UTxOSelectionFailedError indicates that the candidate pool ran out before
// the transaction could be balanced
type UTxOSelectionFailedError struct {
	Deficit    common.Value
	Candidates int
}

func (e UTxOSelectionFailedError) Error() string {
	return fmt.Sprintf(
		"UTxO selection failed: %d candidates exhausted with %s still missing",
		e.Candidates,
		e.Deficit.String(),
	)
}

// ChangeBelowMinUTXOError indicates that the change cannot form a valid
// output and is too large to be added to the fee
type ChangeBelowMinUTXOError struct {
	Change common.Value
	MinAda uint64
}

func (e ChangeBelowMinUTXOError) Error() string {
	return fmt.Sprintf(
		"change %s is below the minimum UTxO value of %d",
		e.Change.String(),
		e.MinAda,
	)
}

type FeeCalculationDidNotConvergeError struct {
	Iterations int
	LastFee    uint64
	MinFee     uint64
}

func (e FeeCalculationDidNotConvergeError) Error() string {
	return fmt.Sprintf(
		"fee calculation did not converge after %d iterations: fee %d, min fee %d",
		e.Iterations,
		e.LastFee,
		e.MinFee,
	)
}

// TransactionTooLargeError indicates that the signed transaction would exceed
// the maximum transaction size
type TransactionTooLargeError struct {
	Size    uint64
	MaxSize uint64
}

func (e TransactionTooLargeError) Error() string {
	return fmt.Sprintf(
		"transaction too large: size %d, max size %d",
		e.Size,
		e.MaxSize,
	)
}

// OutputBelowMinUtxoError is returned by AddOutput for an output holding less
// than the minimum UTxO value
type OutputBelowMinUtxoError struct {
	Address common.Address
	Amount  uint64
	MinAda  uint64
}

func (e OutputBelowMinUtxoError) Error() string {
	return fmt.Sprintf(
		"output to %s holds %d, below the minimum UTxO value of %d",
		e.Address.String(),
		e.Amount,
		e.MinAda,
	)
}

// MissingSignerError lists the required witnesses for which no key was given
type MissingSignerError struct {
	KeyHashes []common.AddrKeyHash
	Addresses []common.Address
}

func (e MissingSignerError) Error() string {
	var missing []string
	for _, keyHash := range e.KeyHashes {
		missing = append(missing, keyHash.String())
	}
	for _, addr := range e.Addresses {
		missing = append(missing, addr.String())
	}
	return "missing signers: " + strings.Join(missing, ", ")
}
