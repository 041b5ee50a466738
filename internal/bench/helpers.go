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

// Package bench provides benchmark utilities and transaction fixtures for
// memory profiling.
package bench

import (
	"fmt"

	test "github.com/blinklabs-io/ledgerkit/internal/test/ledger"
	"github.com/blinklabs-io/ledgerkit/keys"
	"github.com/blinklabs-io/ledgerkit/ledger/babbage"
	"github.com/blinklabs-io/ledgerkit/ledger/common"
	"github.com/blinklabs-io/ledgerkit/txbuilder"
)

const (
	fixtureInputCoin  = 10_000_000
	fixtureOutputCoin = 2_000_000
)

// TxFixture contains a signed transaction along with everything needed to
// build it again.
type TxFixture struct {
	Name     string
	Cbor     []byte
	Tx       *babbage.BabbageTransaction
	PParams  common.ProtocolParameters
	Key      keys.KeyPair
	Utxos    []common.Utxo
	Payments []babbage.BabbageTransactionOutput
	Change   common.Address
}

// fixtureShapes maps fixture names to their input and output counts
var fixtureShapes = map[string][2]int{
	"small":  {1, 2},
	"medium": {8, 16},
	"large":  {32, 64},
}

// FixtureNames returns the list of available fixture names.
func FixtureNames() []string {
	return []string{"small", "medium", "large"}
}

// LoadTxFixture builds and signs the named transaction fixture.
func LoadTxFixture(name string) (*TxFixture, error) {
	shape, ok := fixtureShapes[name]
	if !ok {
		return nil, fmt.Errorf("unknown fixture: %s", name)
	}
	adapter := keys.MockAdapter{}
	key, err := adapter.DeriveKey(keys.NewCip1852Path(0, keys.RoleExternal, 0))
	if err != nil {
		return nil, err
	}
	addr, err := common.NewEnterpriseAddress(
		common.AddressNetworkTestnet,
		common.NewKeyCredential(key.KeyHash()),
	)
	if err != nil {
		return nil, err
	}
	fixture := &TxFixture{
		Name:    name,
		PParams: test.ProtocolParameters(),
		Key:     key,
		Change:  addr,
	}
	for i := range shape[0] {
		output := babbage.NewBabbageTransactionOutput(
			addr,
			common.NewCoinValue(fixtureInputCoin),
		)
		fixture.Utxos = append(
			fixture.Utxos,
			common.Utxo{
				Id:     test.Input(byte(i+1), uint32(i)), // #nosec G115
				Output: &output,
			},
		)
	}
	for i := range shape[1] {
		fixture.Payments = append(
			fixture.Payments,
			babbage.NewBabbageTransactionOutput(
				test.EnterpriseAddress(byte(0x80+i)), // #nosec G115
				common.NewCoinValue(fixtureOutputCoin),
			),
		)
	}
	builder, err := fixture.NewBuilder()
	if err != nil {
		return nil, err
	}
	if _, err := builder.Build(); err != nil {
		return nil, fmt.Errorf("build %s fixture: %w", name, err)
	}
	tx, err := builder.Sign(adapter, key)
	if err != nil {
		return nil, fmt.Errorf("sign %s fixture: %w", name, err)
	}
	fixture.Tx = tx
	fixture.Cbor = tx.Cbor()
	return fixture, nil
}

// MustLoadTxFixture loads a transaction fixture and panics on error.
// Use this in benchmark init() or setup code.
func MustLoadTxFixture(name string) *TxFixture {
	fixture, err := LoadTxFixture(name)
	if err != nil {
		panic(fmt.Sprintf("failed to load %s tx fixture: %v", name, err))
	}
	return fixture
}

// NewBuilder returns an open builder holding the fixture inputs and payments.
func (f *TxFixture) NewBuilder() (*txbuilder.Builder, error) {
	builder := txbuilder.New(
		f.PParams,
		txbuilder.WithChangeAddress(f.Change),
	)
	for _, utxo := range f.Utxos {
		if err := builder.AddInput(utxo); err != nil {
			return nil, err
		}
	}
	for _, output := range f.Payments {
		if err := builder.AddOutput(output); err != nil {
			return nil, err
		}
	}
	return builder, nil
}
