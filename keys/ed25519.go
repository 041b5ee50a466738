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

package keys

import (
	"crypto/ed25519"

	"github.com/blinklabs-io/ledgerkit/ledger/common"
)

// Ed25519Adapter signs with Ed25519 and derives keys with BIP32-Ed25519 from an
// optional Icarus root key
type Ed25519Adapter struct {
	root *extendedKey
}

// NewEd25519Adapter returns an adapter without a root key. It can sign and
// verify, but DeriveKey fails
func NewEd25519Adapter() *Ed25519Adapter {
	return &Ed25519Adapter{}
}

// NewEd25519AdapterFromMnemonic returns an adapter whose root key comes from a
// BIP-39 mnemonic and optional passphrase
func NewEd25519AdapterFromMnemonic(
	mnemonic string,
	passphrase string,
) (*Ed25519Adapter, error) {
	root, err := newRootKeyFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	return &Ed25519Adapter{root: &root}, nil
}

// NewEd25519AdapterFromEntropy returns an adapter whose root key comes from
// BIP-39 entropy
func NewEd25519AdapterFromEntropy(
	entropy []byte,
	passphrase string,
) (*Ed25519Adapter, error) {
	root, err := newRootKeyFromEntropy(entropy, []byte(passphrase))
	if err != nil {
		return nil, err
	}
	return &Ed25519Adapter{root: &root}, nil
}

func (a *Ed25519Adapter) Hash(data []byte) common.Blake2b256 {
	return common.Blake2b256Hash(data)
}

func (a *Ed25519Adapter) Sign(key SigningKey, message []byte) ([]byte, error) {
	return key.sign(message)
}

func (a *Ed25519Adapter) Verify(
	key PublicKey,
	message []byte,
	signature []byte,
) bool {
	if len(key) != PublicKeySize || len(signature) != SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(key), message, signature)
}

// DeriveKey derives the key pair at path from the root key. An empty path
// returns the root key pair
func (a *Ed25519Adapter) DeriveKey(path DerivationPath) (KeyPair, error) {
	if a.root == nil {
		return KeyPair{}, ErrNoRootKey
	}
	key := *a.root
	for _, index := range path {
		key = key.derive(index)
	}
	return NewKeyPair(key.signingKey(), key.chainCode), nil
}
