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
	"fmt"
	"os"

	"github.com/blinklabs-io/ledgerkit/cbor"
	"github.com/blinklabs-io/ledgerkit/cmd/common"
	"github.com/blinklabs-io/ledgerkit/ledger/babbage"
	"github.com/blinklabs-io/ledgerkit/utils"
)

type txInfoFlags struct {
	*common.GlobalFlags
	txFile    string
	rawTxFile string
	dump      bool
}

func main() {
	// Parse commandline
	f := txInfoFlags{
		GlobalFlags: common.NewGlobalFlags(),
	}
	f.Flagset.StringVar(
		&f.txFile,
		"tx-file",
		"",
		"path to the JSON transaction file to inspect",
	)
	f.Flagset.StringVar(
		&f.rawTxFile,
		"raw-tx-file",
		"",
		"path to the raw transaction file to inspect",
	)
	f.Flagset.BoolVar(
		&f.dump,
		"dump",
		false,
		"dump the generic CBOR structure of the transaction",
	)
	f.Parse()

	txBytes, err := common.ReadTxFile(f.txFile, f.rawTxFile)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	if f.dump {
		var tmp any
		if _, err := cbor.Decode(txBytes, &tmp); err != nil {
			fmt.Printf("ERROR: failed to decode CBOR: %s\n", err)
			os.Exit(1)
		}
		fmt.Print(utils.DumpCborStructure(tmp, ""))
		return
	}
	tx, err := babbage.NewBabbageTransactionFromCbor(txBytes)
	if err != nil {
		fmt.Printf("ERROR: failed to parse transaction CBOR: %s\n", err)
		os.Exit(1)
	}
	pparams, havePparams, err := f.ProtocolParameters()
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}

	fmt.Printf("Transaction %s\n", tx.Hash())
	fmt.Printf("  size:    %d bytes\n", len(txBytes))
	fmt.Printf("  fee:     %d\n", tx.Body.Fee())
	if havePparams {
		minFee, err := babbage.MinFeeTx(tx, pparams)
		if err != nil {
			fmt.Printf("ERROR: %s\n", err)
			os.Exit(1)
		}
		fmt.Printf("  min fee: %d\n", minFee)
	}
	if tx.Body.Ttl != nil {
		fmt.Printf("  ttl:     %d\n", *tx.Body.Ttl)
	}
	fmt.Printf("Inputs:\n")
	for _, input := range tx.Body.Inputs() {
		fmt.Printf("  %s\n", input)
	}
	fmt.Printf("Outputs:\n")
	for idx, output := range tx.Body.TxOutputs {
		fmt.Printf("  %d: %s %s", idx, output.Address(), output.Value())
		if havePparams {
			minAda, err := babbage.MinAdaForOutput(output, pparams)
			if err != nil {
				fmt.Printf("\nERROR: %s\n", err)
				os.Exit(1)
			}
			fmt.Printf(" (min ADA %d)", minAda)
		}
		fmt.Println()
	}
	fmt.Printf(
		"Witnesses: %d vkey, %d bootstrap, %d native script\n",
		len(tx.WitnessSet.Vkey()),
		len(tx.WitnessSet.Bootstrap()),
		len(tx.WitnessSet.NativeScripts()),
	)
	if havePparams {
		if err := babbage.ValidateTransaction(tx, pparams); err != nil {
			fmt.Printf("Validation failed:\n%s\n", err)
			os.Exit(1)
		}
		fmt.Printf("Validation passed\n")
	}
}
