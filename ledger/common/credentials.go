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

	"github.com/blinklabs-io/ledgerkit/cbor"
	"github.com/blinklabs-io/plutigo/data"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

type (
	AddrKeyHash = Blake2b224
	ScriptHash  = Blake2b224
	PoolKeyHash = Blake2b224
	VrfKeyHash  = Blake2b256
	DatumHash   = Blake2b256
)

const (
	CredentialTypeAddrKeyHash = 0
	CredentialTypeScriptHash  = 1
)

// Credential is the hash of either a verification key or a script
type Credential struct {
	cbor.StructAsArray
	CredType   uint
	Credential Blake2b224
}

// NewKeyCredential returns a credential for a verification key hash
func NewKeyCredential(hash AddrKeyHash) Credential {
	return Credential{
		CredType:   CredentialTypeAddrKeyHash,
		Credential: hash,
	}
}

// NewScriptCredential returns a credential for a script hash
func NewScriptCredential(hash ScriptHash) Credential {
	return Credential{
		CredType:   CredentialTypeScriptHash,
		Credential: hash,
	}
}

// NewCredential returns a credential after checking the type and hash length
func NewCredential(credType uint, hash []byte) (Credential, error) {
	if credType != CredentialTypeAddrKeyHash &&
		credType != CredentialTypeScriptHash {
		return Credential{}, invalidValue(
			"Credential",
			"unknown credential type %d",
			credType,
		)
	}
	if len(hash) != Blake2b224Size {
		return Credential{}, invalidValue(
			"Credential",
			"hash must be %d bytes, found %d",
			Blake2b224Size,
			len(hash),
		)
	}
	return Credential{
		CredType:   credType,
		Credential: NewBlake2b224(hash),
	}, nil
}

func NewCredentialFromCbor(cborData []byte) (Credential, error) {
	var ret Credential
	if err := cbor.DecodeExact(cborData, &ret); err != nil {
		return Credential{}, err
	}
	return ret, nil
}

func (c *Credential) UnmarshalCBOR(cborData []byte) error {
	type tCredential Credential
	var tmp tCredential
	if err := cbor.DecodeExact(cborData, &tmp); err != nil {
		return err
	}
	if tmp.CredType != CredentialTypeAddrKeyHash &&
		tmp.CredType != CredentialTypeScriptHash {
		return cbor.Malformedf("unknown credential type: %d", tmp.CredType)
	}
	*c = Credential(tmp)
	return nil
}

func (c Credential) IsScript() bool {
	return c.CredType == CredentialTypeScriptHash
}

// Hash returns the credential hash
func (c Credential) Hash() Blake2b224 {
	return c.Credential
}

func (c Credential) String() string {
	if c.IsScript() {
		return "script:" + c.Credential.String()
	}
	return "key:" + c.Credential.String()
}

func (c Credential) ToPlutusData() data.PlutusData {
	return data.NewConstr(
		c.CredType,
		data.NewByteString(c.Credential.Bytes()),
	)
}

func (c Credential) Utxorpc() *utxorpc.StakeCredential {
	ret := &utxorpc.StakeCredential{}
	switch c.CredType {
	case CredentialTypeAddrKeyHash:
		ret.StakeCredential = &utxorpc.StakeCredential_AddrKeyHash{
			AddrKeyHash: c.Credential.Bytes(),
		}
	case CredentialTypeScriptHash:
		ret.StakeCredential = &utxorpc.StakeCredential_ScriptHash{
			ScriptHash: c.Credential.Bytes(),
		}
	}
	return ret
}

// Less orders credentials by type and then hash, the same way their
// encodings sort
func (c Credential) Less(other Credential) bool {
	if c.CredType != other.CredType {
		return c.CredType < other.CredType
	}
	return bytes.Compare(c.Credential[:], other.Credential[:]) < 0
}
