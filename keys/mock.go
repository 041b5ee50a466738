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
	"bytes"

	"github.com/blinklabs-io/ledgerkit/ledger/common"
)

// MockAdapter produces deterministic, fake signatures. Keys derived from the
// same path are always the same, which keeps encoded test transactions stable
type MockAdapter struct{}

func (MockAdapter) Hash(data []byte) common.Blake2b256 {
	return common.Blake2b256Hash(data)
}

// Sign returns the hash of the public key and message, repeated to signature
// length
func (MockAdapter) Sign(key SigningKey, message []byte) ([]byte, error) {
	if key.IsZero() {
		return nil, ErrInvalidKey
	}
	return mockSignature(key.PublicKey(), message), nil
}

func (MockAdapter) Verify(key PublicKey, message []byte, signature []byte) bool {
	return bytes.Equal(signature, mockSignature(key, message))
}

// DeriveKey returns a seed key whose seed is the hash of the path string
func (MockAdapter) DeriveKey(path DerivationPath) (KeyPair, error) {
	seed := common.Blake2b256Hash([]byte(path.String()))
	key, err := NewSigningKeyFromSeed(seed.Bytes())
	if err != nil {
		return KeyPair{}, err
	}
	chainCode := common.Blake2b256Hash(seed.Bytes())
	return NewKeyPair(key, chainCode.Bytes()), nil
}

func mockSignature(key PublicKey, message []byte) []byte {
	digest := common.Blake2b256Hash(append(key.Bytes(), message...))
	ret := make([]byte, 0, SignatureSize)
	ret = append(ret, digest.Bytes()...)
	return append(ret, digest.Bytes()...)
}
