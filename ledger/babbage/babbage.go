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
	"bytes"
	"encoding/hex"
	"encoding/json"
	"slices"

	"github.com/blinklabs-io/ledgerkit/cbor"
	"github.com/blinklabs-io/ledgerkit/ledger/common"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

const (
	EraIdBabbage   = 5
	EraNameBabbage = "Babbage"

	TxTypeBabbage = 5

	// First protocol major version of the era
	ProtocolVersionMajor = 7
)

// Transaction body map keys
const (
	bodyKeyInputs                = 0
	bodyKeyOutputs               = 1
	bodyKeyFee                   = 2
	bodyKeyTtl                   = 3
	bodyKeyCertificates          = 4
	bodyKeyWithdrawals           = 5
	bodyKeyUpdate                = 6
	bodyKeyAuxDataHash           = 7
	bodyKeyValidityIntervalStart = 8
	bodyKeyMint                  = 9
	bodyKeyScriptDataHash        = 11
	bodyKeyCollateral            = 13
	bodyKeyRequiredSigners       = 14
	bodyKeyNetworkId             = 15
	bodyKeyCollateralReturn      = 16
	bodyKeyTotalCollateral       = 17
	bodyKeyReferenceInputs       = 18
)

// BabbageTransactionBody is the signed part of a transaction. Optional fields
// are nil (or empty) when absent and are then left out of the encoding
type BabbageTransactionBody struct {
	cbor.DecodeStoreCbor
	TxInputs                cbor.SetType[common.TransactionInput]
	TxOutputs               []BabbageTransactionOutput
	TxFee                   uint64
	Ttl                     *uint64
	TxCertificates          []common.Certificate
	TxWithdrawals           *common.Withdrawals
	TxUpdate                cbor.RawMessage
	TxAuxDataHash           *common.AuxiliaryDataHash
	TxValidityIntervalStart *uint64
	TxMint                  *common.MultiAsset[common.MultiAssetTypeMint]
	TxScriptDataHash        *common.Blake2b256
	TxCollateral            cbor.SetType[common.TransactionInput]
	TxRequiredSigners       cbor.SetType[common.AddrKeyHash]
	NetworkId               *uint8
	TxCollateralReturn      *BabbageTransactionOutput
	TxTotalCollateral       *uint64
	TxReferenceInputs       cbor.SetType[common.TransactionInput]
}

// NewBabbageTransactionBody returns an empty body with the given inputs and
// outputs and a zero fee
func NewBabbageTransactionBody(
	inputs []common.TransactionInput,
	outputs []BabbageTransactionOutput,
) *BabbageTransactionBody {
	return &BabbageTransactionBody{
		TxInputs:  cbor.NewSetType(slices.Clone(inputs), false),
		TxOutputs: slices.Clone(outputs),
	}
}

func NewBabbageTransactionBodyFromCbor(
	data []byte,
) (*BabbageTransactionBody, error) {
	var babbageTxBody BabbageTransactionBody
	if err := cbor.DecodeExact(data, &babbageTxBody); err != nil {
		return nil, err
	}
	return &babbageTxBody, nil
}

func (b *BabbageTransactionBody) UnmarshalCBOR(cborData []byte) error {
	var tmpMap map[uint64]cbor.RawMessage
	if err := cbor.DecodeExact(cborData, &tmpMap); err != nil {
		return err
	}
	for _, key := range []uint64{bodyKeyInputs, bodyKeyOutputs, bodyKeyFee} {
		if _, ok := tmpMap[key]; !ok {
			return cbor.Malformedf("transaction body is missing key %d", key)
		}
	}
	var tmp BabbageTransactionBody
	for key, val := range tmpMap {
		if cbor.IsNull(val) {
			return cbor.Malformedf("transaction body key %d is null", key)
		}
		var err error
		switch key {
		case bodyKeyInputs:
			err = cbor.DecodeExact(val, &tmp.TxInputs)
		case bodyKeyOutputs:
			err = cbor.DecodeExact(val, &tmp.TxOutputs)
		case bodyKeyFee:
			err = cbor.DecodeExact(val, &tmp.TxFee)
		case bodyKeyTtl:
			tmp.Ttl = new(uint64)
			err = cbor.DecodeExact(val, tmp.Ttl)
		case bodyKeyCertificates:
			var tmpCerts []common.CertificateWrapper
			err = cbor.DecodeExact(val, &tmpCerts)
			tmp.TxCertificates = make([]common.Certificate, 0, len(tmpCerts))
			for _, cert := range tmpCerts {
				tmp.TxCertificates = append(tmp.TxCertificates, cert.Certificate)
			}
		case bodyKeyWithdrawals:
			tmp.TxWithdrawals = &common.Withdrawals{}
			err = cbor.DecodeExact(val, tmp.TxWithdrawals)
		case bodyKeyUpdate:
			// Protocol parameter updates are carried through untouched
			tmp.TxUpdate = slices.Clone(val)
		case bodyKeyAuxDataHash:
			tmp.TxAuxDataHash = new(common.AuxiliaryDataHash)
			err = cbor.DecodeExact(val, tmp.TxAuxDataHash)
		case bodyKeyValidityIntervalStart:
			tmp.TxValidityIntervalStart = new(uint64)
			err = cbor.DecodeExact(val, tmp.TxValidityIntervalStart)
		case bodyKeyMint:
			tmp.TxMint = &common.MultiAsset[common.MultiAssetTypeMint]{}
			err = cbor.DecodeExact(val, tmp.TxMint)
		case bodyKeyScriptDataHash:
			tmp.TxScriptDataHash = new(common.Blake2b256)
			err = cbor.DecodeExact(val, tmp.TxScriptDataHash)
		case bodyKeyCollateral:
			err = cbor.DecodeExact(val, &tmp.TxCollateral)
		case bodyKeyRequiredSigners:
			err = cbor.DecodeExact(val, &tmp.TxRequiredSigners)
		case bodyKeyNetworkId:
			tmp.NetworkId = new(uint8)
			err = cbor.DecodeExact(val, tmp.NetworkId)
			if err == nil && *tmp.NetworkId > common.AddressNetworkMainnet {
				err = cbor.Malformedf("invalid network ID %d", *tmp.NetworkId)
			}
		case bodyKeyCollateralReturn:
			tmp.TxCollateralReturn = &BabbageTransactionOutput{}
			err = cbor.DecodeExact(val, tmp.TxCollateralReturn)
		case bodyKeyTotalCollateral:
			tmp.TxTotalCollateral = new(uint64)
			err = cbor.DecodeExact(val, tmp.TxTotalCollateral)
		case bodyKeyReferenceInputs:
			err = cbor.DecodeExact(val, &tmp.TxReferenceInputs)
		default:
			err = cbor.Malformedf("unknown transaction body key %d", key)
		}
		if err != nil {
			return err
		}
	}
	*b = tmp
	b.SetCbor(cborData)
	return nil
}

// MarshalCBOR returns the original bytes of a decoded body that has not been
// modified since. Otherwise the body is encoded with map keys in ascending
// order and input sets sorted and de-duplicated
func (b *BabbageTransactionBody) MarshalCBOR() ([]byte, error) {
	if cborData := b.DecodeStoreCbor.Cbor(); cborData != nil {
		return cborData, nil
	}
	type bodyField struct {
		key   uint64
		value any
	}
	fields := []bodyField{
		{bodyKeyInputs, canonicalInputSet(b.TxInputs)},
		{bodyKeyOutputs, b.outputsForEncode()},
		{bodyKeyFee, b.TxFee},
	}
	if b.Ttl != nil {
		fields = append(fields, bodyField{bodyKeyTtl, *b.Ttl})
	}
	if len(b.TxCertificates) > 0 {
		fields = append(fields, bodyField{bodyKeyCertificates, b.TxCertificates})
	}
	if b.TxWithdrawals != nil && b.TxWithdrawals.Len() > 0 {
		fields = append(fields, bodyField{bodyKeyWithdrawals, *b.TxWithdrawals})
	}
	if len(b.TxUpdate) > 0 {
		fields = append(fields, bodyField{bodyKeyUpdate, b.TxUpdate})
	}
	if b.TxAuxDataHash != nil {
		fields = append(fields, bodyField{bodyKeyAuxDataHash, *b.TxAuxDataHash})
	}
	if b.TxValidityIntervalStart != nil {
		fields = append(
			fields,
			bodyField{bodyKeyValidityIntervalStart, *b.TxValidityIntervalStart},
		)
	}
	if b.TxMint != nil && !b.TxMint.IsEmpty() {
		fields = append(fields, bodyField{bodyKeyMint, *b.TxMint})
	}
	if b.TxScriptDataHash != nil {
		fields = append(
			fields,
			bodyField{bodyKeyScriptDataHash, *b.TxScriptDataHash},
		)
	}
	if b.TxCollateral.Len() > 0 {
		fields = append(
			fields,
			bodyField{bodyKeyCollateral, canonicalInputSet(b.TxCollateral)},
		)
	}
	if b.TxRequiredSigners.Len() > 0 {
		fields = append(
			fields,
			bodyField{
				bodyKeyRequiredSigners,
				canonicalKeyHashSet(b.TxRequiredSigners),
			},
		)
	}
	if b.NetworkId != nil {
		fields = append(fields, bodyField{bodyKeyNetworkId, *b.NetworkId})
	}
	if b.TxCollateralReturn != nil {
		fields = append(
			fields,
			bodyField{bodyKeyCollateralReturn, *b.TxCollateralReturn},
		)
	}
	if b.TxTotalCollateral != nil {
		fields = append(
			fields,
			bodyField{bodyKeyTotalCollateral, *b.TxTotalCollateral},
		)
	}
	if b.TxReferenceInputs.Len() > 0 {
		fields = append(
			fields,
			bodyField{
				bodyKeyReferenceInputs,
				canonicalInputSet(b.TxReferenceInputs),
			},
		)
	}
	ret := cbor.EncodeMapHeader(len(fields))
	for _, field := range fields {
		ret = cbor.AppendHead(ret, cbor.CborTypeUint, field.key)
		valCbor, err := cbor.Encode(field.value)
		if err != nil {
			return nil, err
		}
		ret = append(ret, valCbor...)
	}
	return ret, nil
}

func (b *BabbageTransactionBody) outputsForEncode() []BabbageTransactionOutput {
	if b.TxOutputs == nil {
		return []BabbageTransactionOutput{}
	}
	return b.TxOutputs
}

// canonicalInputSet sorts and de-duplicates an input set, keeping its tag
func canonicalInputSet(
	set cbor.SetType[common.TransactionInput],
) cbor.SetType[common.TransactionInput] {
	items := slices.Clone(set.Items())
	slices.SortFunc(items, common.TransactionInput.Compare)
	items = slices.CompactFunc(items, func(a, b common.TransactionInput) bool {
		return a.Compare(b) == 0
	})
	return cbor.NewSetType(items, set.Tagged())
}

func canonicalKeyHashSet(
	set cbor.SetType[common.AddrKeyHash],
) cbor.SetType[common.AddrKeyHash] {
	items := slices.Clone(set.Items())
	slices.SortFunc(items, func(a, b common.AddrKeyHash) int {
		return bytes.Compare(a[:], b[:])
	})
	items = slices.Compact(items)
	return cbor.NewSetType(items, set.Tagged())
}

// Cbor returns the original bytes of a decoded body or the canonical encoding
// of a built one. It returns nil if the body cannot be encoded
func (b *BabbageTransactionBody) Cbor() []byte {
	cborData, err := b.MarshalCBOR()
	if err != nil {
		return nil
	}
	return cborData
}

// Hash returns the transaction ID, the Blake2b-256 hash of the body bytes
func (b *BabbageTransactionBody) Hash() common.TransactionId {
	cborData, err := b.MarshalCBOR()
	if err != nil {
		panic("unexpected error encoding transaction body: " + err.Error())
	}
	return common.Blake2b256Hash(cborData)
}

// invalidate drops the stored bytes after a modification
func (b *BabbageTransactionBody) invalidate() {
	b.SetCbor(nil)
}

func (b *BabbageTransactionBody) AddInput(input common.TransactionInput) {
	b.TxInputs = cbor.NewSetType(
		append(slices.Clone(b.TxInputs.Items()), input),
		b.TxInputs.Tagged(),
	)
	b.invalidate()
}

func (b *BabbageTransactionBody) AddOutput(output BabbageTransactionOutput) {
	b.TxOutputs = append(b.TxOutputs, output)
	b.invalidate()
}

func (b *BabbageTransactionBody) SetFee(fee uint64) {
	b.TxFee = fee
	b.invalidate()
}

func (b *BabbageTransactionBody) SetTtl(ttl uint64) {
	b.Ttl = &ttl
	b.invalidate()
}

func (b *BabbageTransactionBody) SetValidityIntervalStart(slot uint64) {
	b.TxValidityIntervalStart = &slot
	b.invalidate()
}

func (b *BabbageTransactionBody) SetCertificates(certs []common.Certificate) {
	b.TxCertificates = slices.Clone(certs)
	b.invalidate()
}

func (b *BabbageTransactionBody) SetWithdrawals(withdrawals common.Withdrawals) {
	b.TxWithdrawals = &withdrawals
	b.invalidate()
}

func (b *BabbageTransactionBody) SetMint(
	mint common.MultiAsset[common.MultiAssetTypeMint],
) {
	tmpMint := mint.Clone()
	b.TxMint = &tmpMint
	b.invalidate()
}

func (b *BabbageTransactionBody) SetAuxDataHash(hash common.AuxiliaryDataHash) {
	b.TxAuxDataHash = &hash
	b.invalidate()
}

func (b *BabbageTransactionBody) SetScriptDataHash(hash common.Blake2b256) {
	b.TxScriptDataHash = &hash
	b.invalidate()
}

func (b *BabbageTransactionBody) AddRequiredSigner(keyHash common.AddrKeyHash) {
	b.TxRequiredSigners = cbor.NewSetType(
		append(slices.Clone(b.TxRequiredSigners.Items()), keyHash),
		b.TxRequiredSigners.Tagged(),
	)
	b.invalidate()
}

// SetNetworkId sets the network the transaction is bound to. Only the testnet
// (0) and mainnet (1) IDs are valid
func (b *BabbageTransactionBody) SetNetworkId(networkId uint8) error {
	if networkId > common.AddressNetworkMainnet {
		return common.InvalidValueError{
			Type:   "TransactionBody",
			Reason: "network ID must be 0 or 1",
		}
	}
	b.NetworkId = &networkId
	b.invalidate()
	return nil
}

func (b *BabbageTransactionBody) AddCollateral(input common.TransactionInput) {
	b.TxCollateral = cbor.NewSetType(
		append(slices.Clone(b.TxCollateral.Items()), input),
		b.TxCollateral.Tagged(),
	)
	b.invalidate()
}

func (b *BabbageTransactionBody) AddReferenceInput(input common.TransactionInput) {
	b.TxReferenceInputs = cbor.NewSetType(
		append(slices.Clone(b.TxReferenceInputs.Items()), input),
		b.TxReferenceInputs.Tagged(),
	)
	b.invalidate()
}

func (b *BabbageTransactionBody) SetCollateralReturn(output BabbageTransactionOutput) {
	b.TxCollateralReturn = &output
	b.invalidate()
}

func (b *BabbageTransactionBody) SetTotalCollateral(amount uint64) {
	b.TxTotalCollateral = &amount
	b.invalidate()
}

// Inputs returns the spent inputs in canonical order
func (b *BabbageTransactionBody) Inputs() []common.TransactionInput {
	return canonicalInputSet(b.TxInputs).Items()
}

func (b *BabbageTransactionBody) Outputs() []common.TransactionOutput {
	ret := make([]common.TransactionOutput, 0, len(b.TxOutputs))
	for idx := range b.TxOutputs {
		ret = append(ret, &b.TxOutputs[idx])
	}
	return ret
}

func (b *BabbageTransactionBody) Fee() uint64 {
	return b.TxFee
}

// TTL returns the slot after which the transaction is invalid, or 0 if unset
func (b *BabbageTransactionBody) TTL() uint64 {
	if b.Ttl == nil {
		return 0
	}
	return *b.Ttl
}

func (b *BabbageTransactionBody) ValidityIntervalStart() uint64 {
	if b.TxValidityIntervalStart == nil {
		return 0
	}
	return *b.TxValidityIntervalStart
}

func (b *BabbageTransactionBody) Certificates() []common.Certificate {
	return b.TxCertificates
}

func (b *BabbageTransactionBody) Withdrawals() common.Withdrawals {
	if b.TxWithdrawals == nil {
		return common.Withdrawals{}
	}
	return *b.TxWithdrawals
}

func (b *BabbageTransactionBody) AuxDataHash() *common.AuxiliaryDataHash {
	return b.TxAuxDataHash
}

func (b *BabbageTransactionBody) AssetMint() common.MultiAsset[common.MultiAssetTypeMint] {
	if b.TxMint == nil {
		return common.MultiAsset[common.MultiAssetTypeMint]{}
	}
	return *b.TxMint
}

func (b *BabbageTransactionBody) Collateral() []common.TransactionInput {
	return canonicalInputSet(b.TxCollateral).Items()
}

func (b *BabbageTransactionBody) RequiredSigners() []common.AddrKeyHash {
	return canonicalKeyHashSet(b.TxRequiredSigners).Items()
}

func (b *BabbageTransactionBody) ScriptDataHash() *common.Blake2b256 {
	return b.TxScriptDataHash
}

func (b *BabbageTransactionBody) ReferenceInputs() []common.TransactionInput {
	return canonicalInputSet(b.TxReferenceInputs).Items()
}

func (b *BabbageTransactionBody) CollateralReturn() common.TransactionOutput {
	// Return an actual nil if we have no value. If we return our nil pointer,
	// we get a non-nil interface containing a nil value, which is harder to
	// compare against
	if b.TxCollateralReturn == nil {
		return nil
	}
	return b.TxCollateralReturn
}

func (b *BabbageTransactionBody) TotalCollateral() uint64 {
	if b.TxTotalCollateral == nil {
		return 0
	}
	return *b.TxTotalCollateral
}

func (b *BabbageTransactionBody) Utxorpc() *utxorpc.Tx {
	txi := []*utxorpc.TxInput{}
	txo := []*utxorpc.TxOutput{}
	for _, i := range b.Inputs() {
		txi = append(txi, i.Utxorpc())
	}
	for _, o := range b.Outputs() {
		txo = append(txo, o.Utxorpc())
	}
	certs := []*utxorpc.Certificate{}
	for _, cert := range b.TxCertificates {
		certs = append(certs, cert.Utxorpc())
	}
	return &utxorpc.Tx{
		Inputs:       txi,
		Outputs:      txo,
		Certificates: certs,
		Fee:          b.Fee(),
		Hash:         b.Hash().Bytes(),
	}
}

// BabbageTransaction is [body, witness set, is valid, auxiliary data or null]
type BabbageTransaction struct {
	cbor.DecodeStoreCbor
	Body       BabbageTransactionBody
	WitnessSet BabbageTransactionWitnessSet
	TxIsValid  bool
	TxAuxData  *common.AuxiliaryData
}

// NewBabbageTransaction assembles a valid-flagged transaction. auxData may be nil
func NewBabbageTransaction(
	body BabbageTransactionBody,
	witnessSet BabbageTransactionWitnessSet,
	auxData *common.AuxiliaryData,
) *BabbageTransaction {
	return &BabbageTransaction{
		Body:       body,
		WitnessSet: witnessSet,
		TxIsValid:  true,
		TxAuxData:  auxData,
	}
}

func NewBabbageTransactionFromCbor(data []byte) (*BabbageTransaction, error) {
	var babbageTx BabbageTransaction
	if err := cbor.DecodeExact(data, &babbageTx); err != nil {
		return nil, err
	}
	return &babbageTx, nil
}

func (t *BabbageTransaction) UnmarshalCBOR(cborData []byte) error {
	var tmpItems []cbor.RawMessage
	if err := cbor.DecodeExact(cborData, &tmpItems); err != nil {
		return err
	}
	if len(tmpItems) != 4 {
		return cbor.Malformedf(
			"transaction must have 4 items, found %d",
			len(tmpItems),
		)
	}
	var tmp BabbageTransaction
	if err := cbor.DecodeExact(tmpItems[0], &tmp.Body); err != nil {
		return err
	}
	if err := cbor.DecodeExact(tmpItems[1], &tmp.WitnessSet); err != nil {
		return err
	}
	if err := cbor.DecodeExact(tmpItems[2], &tmp.TxIsValid); err != nil {
		return err
	}
	if !isCborNull(tmpItems[3]) {
		tmp.TxAuxData = &common.AuxiliaryData{}
		if err := cbor.DecodeExact(tmpItems[3], tmp.TxAuxData); err != nil {
			return err
		}
	}
	*t = tmp
	t.SetCbor(cborData)
	return nil
}

func isCborNull(data []byte) bool {
	return len(data) == 1 && data[0] == cbor.CborNull
}

// MarshalCBOR reuses the stored body bytes so that existing signatures stay
// valid when only the witness set changes. The stored transaction bytes are
// used only while neither the body nor the witness set has been modified
func (t *BabbageTransaction) MarshalCBOR() ([]byte, error) {
	if cborData := t.DecodeStoreCbor.Cbor(); cborData != nil &&
		t.Body.DecodeStoreCbor.Cbor() != nil &&
		t.WitnessSet.DecodeStoreCbor.Cbor() != nil {
		return cborData, nil
	}
	bodyCbor, err := t.Body.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	witnessCbor, err := t.WitnessSet.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	auxCbor := []byte{cbor.CborNull}
	if t.TxAuxData != nil {
		auxCbor, err = t.TxAuxData.MarshalCBOR()
		if err != nil {
			return nil, err
		}
	}
	tmpObj := []any{
		cbor.RawMessage(bodyCbor),
		cbor.RawMessage(witnessCbor),
		t.TxIsValid,
		cbor.RawMessage(auxCbor),
	}
	return cbor.Encode(&tmpObj)
}

// Cbor returns the transaction bytes, or nil if it cannot be encoded
func (t *BabbageTransaction) Cbor() []byte {
	cborData, err := t.MarshalCBOR()
	if err != nil {
		return nil
	}
	return cborData
}

// SetWitnessSet replaces the witness set, keeping the body bytes
func (t *BabbageTransaction) SetWitnessSet(witnessSet BabbageTransactionWitnessSet) {
	t.WitnessSet = witnessSet
	t.SetCbor(nil)
}

func (BabbageTransaction) Type() int {
	return TxTypeBabbage
}

// Hash returns the transaction ID
func (t *BabbageTransaction) Hash() common.TransactionId {
	return t.Body.Hash()
}

func (t *BabbageTransaction) IsValid() bool {
	return t.TxIsValid
}

func (t *BabbageTransaction) AuxiliaryData() *common.AuxiliaryData {
	return t.TxAuxData
}

// Produced returns the outputs created by the transaction, or the collateral
// return if it fails script validation
func (t *BabbageTransaction) Produced() []common.Utxo {
	txId := t.Hash()
	if t.IsValid() {
		var ret []common.Utxo
		for idx, output := range t.Body.Outputs() {
			ret = append(
				ret,
				common.Utxo{
					// #nosec G115
					Id:     common.NewTransactionInput(txId, uint32(idx)),
					Output: output,
				},
			)
		}
		return ret
	}
	if t.Body.CollateralReturn() == nil {
		return []common.Utxo{}
	}
	return []common.Utxo{
		{
			Id: common.NewTransactionInput(
				txId,
				// #nosec G115
				uint32(len(t.Body.TxOutputs)),
			),
			Output: t.Body.CollateralReturn(),
		},
	}
}

func (t *BabbageTransaction) Utxorpc() *utxorpc.Tx {
	ret := t.Body.Utxorpc()
	ret.Successful = t.TxIsValid
	return ret
}

func (t *BabbageTransaction) MarshalJSON() ([]byte, error) {
	tmpObj := struct {
		Id    string `json:"id"`
		Cbor  string `json:"cborHex"`
		Valid bool   `json:"valid"`
	}{
		Id:    t.Hash().String(),
		Valid: t.TxIsValid,
	}
	cborData, err := t.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	tmpObj.Cbor = hex.EncodeToString(cborData)
	return json.Marshal(&tmpObj)
}
