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
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	lcommon "github.com/blinklabs-io/ledgerkit/ledger/common"
)

type GlobalFlags struct {
	Flagset            *flag.FlagSet
	Network            string
	ProtocolParamsFile string
	Debug              bool
	// Resolved from Network by Parse
	NetworkInfo lcommon.Network
}

func NewGlobalFlags() *GlobalFlags {
	f := &GlobalFlags{
		Flagset: flag.NewFlagSet(os.Args[0], flag.ExitOnError),
	}
	f.Flagset.StringVar(
		&f.Network,
		"network",
		"preview",
		"specifies network that the transaction is for",
	)
	f.Flagset.StringVar(
		&f.ProtocolParamsFile,
		"protocol-params-file",
		"",
		"path to a JSON protocol parameters file",
	)
	f.Flagset.BoolVar(&f.Debug, "debug", false, "enable debug logging")
	return f
}

func (f *GlobalFlags) Parse() {
	if err := f.Flagset.Parse(os.Args[1:]); err != nil {
		fmt.Printf("failed to parse command args: %s\n", err)
		os.Exit(1)
	}
	network, ok := lcommon.NetworkByName(f.Network)
	if !ok {
		fmt.Printf("Invalid network specified: %s\n", f.Network)
		os.Exit(1)
	}
	f.NetworkInfo = network
	if f.Debug {
		slog.SetDefault(
			slog.New(
				slog.NewTextHandler(
					os.Stderr,
					&slog.HandlerOptions{Level: slog.LevelDebug},
				),
			),
		)
	}
}

// ProtocolParameters loads and validates the file given with
// -protocol-params-file. ok is false when no file was given
func (f *GlobalFlags) ProtocolParameters() (lcommon.ProtocolParameters, bool, error) {
	if f.ProtocolParamsFile == "" {
		return lcommon.ProtocolParameters{}, false, nil
	}
	data, err := os.ReadFile(f.ProtocolParamsFile)
	if err != nil {
		return lcommon.ProtocolParameters{}, false, fmt.Errorf(
			"failed to load protocol parameters file: %w",
			err,
		)
	}
	pparams, err := lcommon.NewProtocolParametersFromJSON(data)
	if err != nil {
		return lcommon.ProtocolParameters{}, false, err
	}
	if err := pparams.Validate(); err != nil {
		return lcommon.ProtocolParameters{}, false, err
	}
	return pparams, true, nil
}

// ReadTxFile returns the transaction bytes from either a JSON text envelope
// with a cborHex field or a raw CBOR file
func ReadTxFile(txFile string, rawTxFile string) ([]byte, error) {
	switch {
	case txFile != "":
		txData, err := os.ReadFile(txFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load transaction file: %w", err)
		}
		var jsonData map[string]any
		if err := json.Unmarshal(txData, &jsonData); err != nil {
			return nil, fmt.Errorf("failed to parse transaction file: %w", err)
		}
		cborHex, ok := jsonData["cborHex"].(string)
		if !ok {
			return nil, errors.New("transaction file has no cborHex field")
		}
		txBytes, err := hex.DecodeString(strings.TrimSpace(cborHex))
		if err != nil {
			return nil, fmt.Errorf("failed to decode transaction: %w", err)
		}
		return txBytes, nil
	case rawTxFile != "":
		txBytes, err := os.ReadFile(rawTxFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load transaction file: %w", err)
		}
		return txBytes, nil
	}
	return nil, errors.New("you must specify one of -tx-file or -raw-tx-file")
}

// TxEnvelope is the JSON text envelope format used for transaction files
type TxEnvelope struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	CborHex     string `json:"cborHex"`
}

func NewTxEnvelope(txCbor []byte) TxEnvelope {
	return TxEnvelope{
		Type:    "Tx BabbageEra",
		CborHex: hex.EncodeToString(txCbor),
	}
}
