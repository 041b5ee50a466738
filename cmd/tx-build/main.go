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

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/blinklabs-io/ledgerkit/cmd/common"
	"github.com/blinklabs-io/ledgerkit/keys"
	"github.com/blinklabs-io/ledgerkit/ledger/babbage"
	lcommon "github.com/blinklabs-io/ledgerkit/ledger/common"
	"github.com/blinklabs-io/ledgerkit/txbuilder"
)

type txBuildFlags struct {
	*common.GlobalFlags
	mnemonicFile string
	passphrase   string
	account      uint
	index        uint
	inputs       []string
	outputs      []string
	ttl          uint64
	outFile      string
}

func main() {
	// Parse commandline
	f := txBuildFlags{
		GlobalFlags: common.NewGlobalFlags(),
	}
	f.Flagset.StringVar(
		&f.mnemonicFile,
		"mnemonic-file",
		"",
		"path to a file containing the wallet mnemonic",
	)
	f.Flagset.StringVar(
		&f.passphrase,
		"passphrase",
		"",
		"optional mnemonic passphrase",
	)
	f.Flagset.UintVar(&f.account, "account", 0, "wallet account index")
	f.Flagset.UintVar(&f.index, "index", 0, "payment key index")
	f.Flagset.Func(
		"input",
		"UTxO to spend in txid#index:lovelace format (may be repeated)",
		func(val string) error {
			f.inputs = append(f.inputs, val)
			return nil
		},
	)
	f.Flagset.Func(
		"to",
		"output in address:lovelace format (may be repeated)",
		func(val string) error {
			f.outputs = append(f.outputs, val)
			return nil
		},
	)
	f.Flagset.Uint64Var(&f.ttl, "ttl", 0, "absolute slot after which the transaction is invalid")
	f.Flagset.StringVar(
		&f.outFile,
		"out-file",
		"",
		"path to write the signed transaction to (defaults to stdout)",
	)
	f.Parse()

	if f.mnemonicFile == "" {
		fmt.Printf("You must specify -mnemonic-file\n")
		os.Exit(1)
	}
	pparams, ok, err := f.ProtocolParameters()
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	if !ok {
		fmt.Printf("You must specify -protocol-params-file\n")
		os.Exit(1)
	}
	mnemonic, err := os.ReadFile(f.mnemonicFile)
	if err != nil {
		fmt.Printf("ERROR: failed to load mnemonic file: %s\n", err)
		os.Exit(1)
	}
	adapter, err := keys.NewEd25519AdapterFromMnemonic(
		strings.TrimSpace(string(mnemonic)),
		f.passphrase,
	)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	keyPair, err := adapter.DeriveKey(
		keys.NewCip1852Path(
			uint32(f.account), // #nosec G115
			keys.RoleExternal,
			uint32(f.index), // #nosec G115
		),
	)
	if err != nil {
		fmt.Printf("ERROR: failed to derive key: %s\n", err)
		os.Exit(1)
	}
	addr, err := lcommon.NewEnterpriseAddress(
		f.NetworkInfo.Id,
		lcommon.NewKeyCredential(keyPair.KeyHash()),
	)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	slog.Debug("using wallet address", "address", addr.String())

	builder := txbuilder.New(
		pparams,
		txbuilder.WithChangeAddress(addr),
		txbuilder.WithNetworkId(f.NetworkInfo.Id),
	)
	for _, val := range f.inputs {
		utxo, err := parseInput(val, addr)
		if err != nil {
			fmt.Printf("ERROR: %s\n", err)
			os.Exit(1)
		}
		if err := builder.AddInput(utxo); err != nil {
			fmt.Printf("ERROR: %s\n", err)
			os.Exit(1)
		}
	}
	for _, val := range f.outputs {
		output, err := parseOutput(val)
		if err != nil {
			fmt.Printf("ERROR: %s\n", err)
			os.Exit(1)
		}
		if err := builder.AddOutput(output); err != nil {
			fmt.Printf("ERROR: %s\n", err)
			os.Exit(1)
		}
	}
	if f.ttl > 0 {
		if err := builder.SetTtl(f.ttl); err != nil {
			fmt.Printf("ERROR: %s\n", err)
			os.Exit(1)
		}
	}
	if _, err := builder.Build(); err != nil {
		fmt.Printf("ERROR: failed to build transaction: %s\n", err)
		os.Exit(1)
	}
	tx, err := builder.Sign(adapter, keyPair)
	if err != nil {
		fmt.Printf("ERROR: failed to sign transaction: %s\n", err)
		os.Exit(1)
	}
	envelope, err := json.MarshalIndent(
		common.NewTxEnvelope(tx.Cbor()),
		"",
		"    ",
	)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	if f.outFile == "" {
		fmt.Println(string(envelope))
		return
	}
	if err := os.WriteFile(f.outFile, append(envelope, '\n'), 0o600); err != nil {
		fmt.Printf("ERROR: failed to write transaction file: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote transaction %s to %s\n", tx.Hash(), f.outFile)
}

// parseInput parses a txid#index:lovelace value into a UTxO held at addr
func parseInput(val string, addr lcommon.Address) (lcommon.Utxo, error) {
	ref, amount, ok := strings.Cut(val, ":")
	if !ok {
		return lcommon.Utxo{}, fmt.Errorf("invalid input %q: missing amount", val)
	}
	input, err := lcommon.NewTransactionInputFromString(ref)
	if err != nil {
		return lcommon.Utxo{}, fmt.Errorf("invalid input %q: %w", val, err)
	}
	coin, err := strconv.ParseUint(amount, 10, 64)
	if err != nil {
		return lcommon.Utxo{}, fmt.Errorf("invalid input amount %q: %w", val, err)
	}
	output := babbage.NewBabbageTransactionOutput(addr, lcommon.NewCoinValue(coin))
	return lcommon.Utxo{
		Id:     input,
		Output: &output,
	}, nil
}

// parseOutput parses an address:lovelace value
func parseOutput(val string) (babbage.BabbageTransactionOutput, error) {
	addrStr, amount, ok := strings.Cut(val, ":")
	if !ok {
		return babbage.BabbageTransactionOutput{}, fmt.Errorf("invalid output %q: missing amount", val)
	}
	addr, err := lcommon.NewAddress(addrStr)
	if err != nil {
		return babbage.BabbageTransactionOutput{}, fmt.Errorf("invalid output %q: %w", val, err)
	}
	coin, err := strconv.ParseUint(amount, 10, 64)
	if err != nil {
		return babbage.BabbageTransactionOutput{}, fmt.Errorf("invalid output amount %q: %w", val, err)
	}
	return babbage.NewBabbageTransactionOutput(addr, lcommon.NewCoinValue(coin)), nil
}
