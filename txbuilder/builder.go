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

// Package txbuilder assembles balanced, fee-paying transactions.
//
// A Builder starts out open and accepts inputs, outputs, certificates and the
// other body fields. Build selects any extra inputs, adds change, settles the
// fee and finalizes the builder, after which every mutator fails with
// ErrBuilderFinalized. A Builder is not safe for concurrent use.
package txbuilder

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/blinklabs-io/ledgerkit/ledger/babbage"
	"github.com/blinklabs-io/ledgerkit/ledger/common"
)

// Builder accumulates the parts of a transaction
type Builder struct {
	pparams           common.ProtocolParameters
	logger            *slog.Logger
	changeAddress     *common.Address
	maxFeeIterations  int
	maxFeeAbsorption  uint64
	selectionStrategy SelectionStrategy
	candidates        []common.Utxo
	networkId         *uint8

	inputs           []common.Utxo
	outputs          []babbage.BabbageTransactionOutput
	changeOutput     *babbage.BabbageTransactionOutput
	certificates     []common.Certificate
	withdrawals      common.Withdrawals
	mint             common.MultiAsset[common.MultiAssetTypeMint]
	nativeScripts    []common.NativeScript
	auxData          *common.AuxiliaryData
	ttl              *uint64
	validityStart    *uint64
	fee              *uint64
	requiredSigners  []common.AddrKeyHash
	collateral       []common.Utxo
	referenceInputs  []common.TransactionInput
	bootstrapSigners []common.Address

	finalized bool
	body      *babbage.BabbageTransactionBody
	signers   expectedSigners
}

// New returns an open Builder for the given protocol parameters
func New(pparams common.ProtocolParameters, opts ...OptionFunc) *Builder {
	b := &Builder{
		pparams:          pparams,
		maxFeeIterations: defaultMaxFeeIterations,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

func invalidValue(typeName string, format string, args ...any) error {
	return common.InvalidValueError{
		Type:   typeName,
		Reason: fmt.Sprintf(format, args...),
	}
}

func (b *Builder) checkOpen() error {
	if b.finalized {
		return ErrBuilderFinalized
	}
	return nil
}

func (b *Builder) checkNetwork(addr common.Address) error {
	if b.networkId == nil || addr.IsByron() {
		return nil
	}
	if addr.NetworkId() != uint(*b.networkId) {
		return invalidValue(
			"Address",
			"%s is not on network %d",
			addr.String(),
			*b.networkId,
		)
	}
	return nil
}

func containsInput(utxos []common.Utxo, input common.TransactionInput) bool {
	return slices.ContainsFunc(
		utxos,
		func(u common.Utxo) bool { return u.Id.Compare(input) == 0 },
	)
}

// AddInput spends a UTxO. The output must be the one the input refers to
func (b *Builder) AddInput(utxo common.Utxo) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if utxo.Output == nil {
		return invalidValue("Utxo", "input %s has no output", utxo.Id.String())
	}
	if containsInput(b.inputs, utxo.Id) {
		return invalidValue("Utxo", "duplicate input %s", utxo.Id.String())
	}
	b.inputs = append(b.inputs, utxo)
	return nil
}

// AddOutput adds an explicit output, which must hold at least the minimum
// UTxO value
func (b *Builder) AddOutput(output babbage.BabbageTransactionOutput) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if err := b.checkNetwork(output.Address()); err != nil {
		return err
	}
	minAda, err := babbage.MinAdaForOutput(output, b.pparams)
	if err != nil {
		return err
	}
	if output.Amount() < minAda {
		return OutputBelowMinUtxoError{
			Address: output.Address(),
			Amount:  output.Amount(),
			MinAda:  minAda,
		}
	}
	b.outputs = append(b.outputs, output)
	return nil
}

// AddChangeOutput marks an output as the change output. Its value is ignored
// and replaced by whatever is left over after the fee. It takes precedence
// over WithChangeAddress and is placed after the explicit outputs
func (b *Builder) AddChangeOutput(output babbage.BabbageTransactionOutput) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if b.changeOutput != nil {
		return invalidValue("TransactionOutput", "change output already set")
	}
	if err := b.checkNetwork(output.Address()); err != nil {
		return err
	}
	b.changeOutput = &output
	return nil
}

func (b *Builder) AddCertificate(cert common.Certificate) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if cert == nil {
		return invalidValue("Certificate", "nil certificate")
	}
	b.certificates = append(b.certificates, cert)
	return nil
}

// AddWithdrawal withdraws rewards from a reward address
func (b *Builder) AddWithdrawal(addr common.Address, amount uint64) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if err := b.checkNetwork(addr); err != nil {
		return err
	}
	return b.withdrawals.Add(addr, amount)
}

// AddMint mints (positive quantity) or burns (negative quantity) an asset.
// script, if given, is the native script for the policy and is added to the
// witness set
func (b *Builder) AddMint(
	policyId common.PolicyId,
	assetName []byte,
	quantity int64,
	script *common.NativeScript,
) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if quantity == 0 {
		return invalidValue("Mint", "zero quantity for %x", assetName)
	}
	if script != nil && script.Hash() != policyId {
		return invalidValue(
			"Mint",
			"script hash %s does not match policy %s",
			script.Hash().String(),
			policyId.String(),
		)
	}
	existing := b.mint.Asset(policyId, assetName)
	if (quantity > 0 && existing > math.MaxInt64-quantity) ||
		(quantity < 0 && existing < math.MinInt64-quantity) {
		return invalidValue("Mint", "quantity of %x overflows", assetName)
	}
	if err := b.mint.Set(policyId, assetName, existing+quantity); err != nil {
		return err
	}
	if script != nil {
		b.addNativeScript(*script)
	}
	return nil
}

func (b *Builder) SetAuxiliaryData(auxData common.AuxiliaryData) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	b.auxData = &auxData
	return nil
}

// SetTtl sets the slot from which the transaction is no longer valid
func (b *Builder) SetTtl(slot uint64) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if b.validityStart != nil && slot <= *b.validityStart {
		return invalidValue(
			"TransactionBody",
			"TTL %d is not after validity start %d",
			slot,
			*b.validityStart,
		)
	}
	b.ttl = &slot
	return nil
}

// SetTtlFromSlot sets the TTL to offset slots after the current slot
func (b *Builder) SetTtlFromSlot(currentSlot uint64, offset uint64) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if currentSlot > math.MaxUint64-offset {
		return invalidValue(
			"TransactionBody",
			"TTL %d + %d overflows",
			currentSlot,
			offset,
		)
	}
	return b.SetTtl(currentSlot + offset)
}

func (b *Builder) SetValidityIntervalStart(slot uint64) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if b.ttl != nil && slot >= *b.ttl {
		return invalidValue(
			"TransactionBody",
			"validity start %d is not before TTL %d",
			slot,
			*b.ttl,
		)
	}
	b.validityStart = &slot
	return nil
}

// SetFee fixes the fee instead of computing it. Build fails if it is below the
// minimum fee
func (b *Builder) SetFee(fee uint64) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	b.fee = &fee
	return nil
}

func (b *Builder) AddRequiredSigner(keyHash common.AddrKeyHash) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if !slices.Contains(b.requiredSigners, keyHash) {
		b.requiredSigners = append(b.requiredSigners, keyHash)
	}
	return nil
}

func (b *Builder) AddCollateral(utxo common.Utxo) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if utxo.Output == nil {
		return invalidValue("Utxo", "collateral %s has no output", utxo.Id.String())
	}
	if containsInput(b.collateral, utxo.Id) {
		return invalidValue("Utxo", "duplicate collateral %s", utxo.Id.String())
	}
	b.collateral = append(b.collateral, utxo)
	return nil
}

func (b *Builder) AddReferenceInput(input common.TransactionInput) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if !slices.ContainsFunc(
		b.referenceInputs,
		func(i common.TransactionInput) bool { return i.Compare(input) == 0 },
	) {
		b.referenceInputs = append(b.referenceInputs, input)
	}
	return nil
}

// AddNativeScript adds a native script to the witness set. Its key hashes are
// counted as possible signers
func (b *Builder) AddNativeScript(script common.NativeScript) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	b.addNativeScript(script)
	return nil
}

func (b *Builder) addNativeScript(script common.NativeScript) {
	hash := script.Hash()
	if slices.ContainsFunc(
		b.nativeScripts,
		func(s common.NativeScript) bool { return s.Hash() == hash },
	) {
		return
	}
	b.nativeScripts = append(b.nativeScripts, script)
}

// AddBootstrapSigner requires a bootstrap witness for a Byron address that is
// not otherwise spent from
func (b *Builder) AddBootstrapSigner(addr common.Address) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if !addr.IsByron() {
		return invalidValue("Address", "%s is not a Byron address", addr.String())
	}
	if !slices.ContainsFunc(b.bootstrapSigners, addr.Equal) {
		b.bootstrapSigners = append(b.bootstrapSigners, addr)
	}
	return nil
}

// IsFinalized returns true once Build has succeeded
func (b *Builder) IsFinalized() bool {
	return b.finalized
}

// Inputs returns the spent UTxOs, including any selected by Build
func (b *Builder) Inputs() []common.Utxo {
	return slices.Clone(b.inputs)
}

// Outputs returns the explicit outputs
func (b *Builder) Outputs() []babbage.BabbageTransactionOutput {
	return slices.Clone(b.outputs)
}

// Body returns a copy of the finalized body
func (b *Builder) Body() (*babbage.BabbageTransactionBody, error) {
	if !b.finalized {
		return nil, ErrBuilderNotFinalized
	}
	return babbage.NewBabbageTransactionBodyFromCbor(b.body.Cbor())
}
