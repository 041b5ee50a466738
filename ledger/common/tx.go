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

package common

import (
	"bytes"
	"cmp"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/blinklabs-io/ledgerkit/cbor"
	"github.com/blinklabs-io/plutigo/data"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

// TransactionOutput is implemented by the era-specific output types
type TransactionOutput interface {
	Address() Address
	Amount() uint64
	Assets() MultiAsset[MultiAssetTypeOutput]
	Value() Value
	DatumHash() *DatumHash
	Cbor() []byte
	Utxorpc() *utxorpc.TxOutput
}

// Utxo pairs an unspent output with the input that references it
type Utxo struct {
	Id     TransactionInput
	Output TransactionOutput
}

// TransactionInput references an output of a previous transaction
type TransactionInput struct {
	cbor.StructAsArray
	TxId        TransactionId
	OutputIndex uint32
}

func NewTransactionInput(txId TransactionId, index uint32) TransactionInput {
	return TransactionInput{
		TxId:        txId,
		OutputIndex: index,
	}
}

// NewTransactionInputFromString parses the "<hash>#<index>" form
func NewTransactionInputFromString(input string) (TransactionInput, error) {
	hashStr, indexStr, ok := strings.Cut(input, "#")
	if !ok {
		return TransactionInput{}, invalidValue(
			"TransactionInput",
			"missing output index in %q",
			input,
		)
	}
	txId, err := NewBlake2b256FromHex(hashStr)
	if err != nil {
		return TransactionInput{}, err
	}
	index, err := strconv.ParseUint(indexStr, 10, 32)
	if err != nil {
		return TransactionInput{}, InvalidValueError{
			Type:   "TransactionInput",
			Reason: "bad output index",
			Err:    err,
		}
	}
	return NewTransactionInput(txId, uint32(index)), nil
}

func NewTransactionInputFromCbor(cborData []byte) (TransactionInput, error) {
	var ret TransactionInput
	if err := cbor.DecodeExact(cborData, &ret); err != nil {
		return TransactionInput{}, err
	}
	return ret, nil
}

func (i *TransactionInput) UnmarshalCBOR(cborData []byte) error {
	var tmpItems []cbor.RawMessage
	if err := cbor.DecodeExact(cborData, &tmpItems); err != nil {
		return err
	}
	if len(tmpItems) != 2 {
		return cbor.Malformedf(
			"transaction input must have 2 items, found %d",
			len(tmpItems),
		)
	}
	var tmp TransactionInput
	if err := cbor.DecodeExactNotNull(tmpItems[0], &tmp.TxId); err != nil {
		return err
	}
	if err := cbor.DecodeExactNotNull(tmpItems[1], &tmp.OutputIndex); err != nil {
		return err
	}
	*i = tmp
	return nil
}

func (i TransactionInput) Id() TransactionId {
	return i.TxId
}

func (i TransactionInput) Index() uint32 {
	return i.OutputIndex
}

func (i TransactionInput) String() string {
	return fmt.Sprintf("%s#%d", i.TxId.String(), i.OutputIndex)
}

// Compare orders inputs by transaction ID and then output index
func (i TransactionInput) Compare(other TransactionInput) int {
	if c := bytes.Compare(i.TxId[:], other.TxId[:]); c != 0 {
		return c
	}
	return cmp.Compare(i.OutputIndex, other.OutputIndex)
}

func (i TransactionInput) Utxorpc() *utxorpc.TxInput {
	return &utxorpc.TxInput{
		TxHash:      i.TxId.Bytes(),
		OutputIndex: i.OutputIndex,
	}
}

func (i TransactionInput) ToPlutusData() data.PlutusData {
	return data.NewConstr(
		0,
		data.NewConstr(0, data.NewByteString(i.TxId.Bytes())),
		data.NewInteger(big.NewInt(int64(i.OutputIndex))),
	)
}
