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

// Package common provides the era-independent ledger primitives.
//
// # Key Files by Purpose
//
// Identifiers and hashes:
//   - common.go: Blake2b hash types, bech32 helpers, asset fingerprints, ExUnits
//   - credentials.go: key and script credentials
//   - network.go: network ids and well-known networks
//
// Values and transaction parts:
//   - address.go: Shelley and Byron addresses
//   - multiasset.go, value.go: multi-asset bundles and coin values
//   - tx.go: TransactionInput, TransactionOutput interface, Utxo
//   - certs.go, withdrawals.go: certificates and reward withdrawals
//   - witness.go: vkey and bootstrap witnesses, redeemers
//
// Scripts and data:
//   - native_script.go, script.go: native and Plutus scripts, script references
//   - data.go: datums and datum options
//   - metadata.go, auxiliary_data.go: transaction metadata and auxiliary data
//
// Parameters and rules:
//   - pparams.go, protocol_version.go: protocol parameters and JSON loading
//   - rules.go: minimum fee, script execution cost, certificate deposits
//
// # Common Patterns
//
// Every type has a MarshalCBOR method, a NewXFromCbor or UnmarshalCBOR
// decoder that fails with cbor.ErrMalformedEncoding on structural problems,
// and where the type carries semantic invariants a checked NewX constructor
// that fails with ErrInvalidValue.
//
// Types that embed cbor.DecodeStoreCbor re-encode to their original bytes
// after decoding, so hashes of decoded data match the chain.
package common
