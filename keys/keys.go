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

// Package keys provides Ed25519 signing keys and the Adapter through which the
// transaction builder hashes, signs and derives keys. Private key material stays
// inside SigningKey and is only read by the adapters in this package.
package keys

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"slices"

	"github.com/blinklabs-io/ledgerkit/ledger/common"
)

const (
	PublicKeySize   = ed25519.PublicKeySize
	SignatureSize   = ed25519.SignatureSize
	SeedSize        = ed25519.SeedSize
	ChainCodeSize   = 32
	ExtendedKeySize = 64
)

var (
	ErrInvalidKey            = errors.New("invalid key")
	ErrInvalidDerivationPath = errors.New("invalid derivation path")
	ErrNoRootKey             = errors.New("adapter has no root key")
)

// Adapter is the cryptographic backend used to build and sign transactions
type Adapter interface {
	Hash(data []byte) common.Blake2b256
	Sign(key SigningKey, message []byte) ([]byte, error)
	Verify(key PublicKey, message []byte, signature []byte) bool
	DeriveKey(path DerivationPath) (KeyPair, error)
}

// PublicKey is an Ed25519 verification key
type PublicKey []byte

// KeyHash returns the Blake2b-224 hash used in addresses and required signers
func (k PublicKey) KeyHash() common.AddrKeyHash {
	return common.Blake2b224Hash(k)
}

func (k PublicKey) Bytes() []byte {
	return slices.Clone(k)
}

// SigningKey is either a 32-byte Ed25519 seed or a 64-byte extended key
// (kL || kR) as produced by BIP32-Ed25519 derivation
type SigningKey struct {
	seed []byte
	kL   []byte
	kR   []byte
}

// NewSigningKeyFromSeed returns a signing key for a standard Ed25519 seed
func NewSigningKeyFromSeed(seed []byte) (SigningKey, error) {
	if len(seed) != SeedSize {
		return SigningKey{}, fmt.Errorf(
			"%w: seed must be %d bytes, got %d",
			ErrInvalidKey,
			SeedSize,
			len(seed),
		)
	}
	return SigningKey{seed: slices.Clone(seed)}, nil
}

// NewExtendedSigningKey returns a signing key for a 64-byte extended key. The
// scalar half must be a multiple of 8 with the top bit clear
func NewExtendedSigningKey(key []byte) (SigningKey, error) {
	if len(key) != ExtendedKeySize {
		return SigningKey{}, fmt.Errorf(
			"%w: extended key must be %d bytes, got %d",
			ErrInvalidKey,
			ExtendedKeySize,
			len(key),
		)
	}
	if key[0]&0x07 != 0 || key[31]&0x80 != 0 {
		return SigningKey{}, fmt.Errorf(
			"%w: extended key scalar is not clamped",
			ErrInvalidKey,
		)
	}
	return SigningKey{
		kL: slices.Clone(key[:32]),
		kR: slices.Clone(key[32:]),
	}, nil
}

// IsExtended returns true for BIP32-Ed25519 keys
func (k SigningKey) IsExtended() bool {
	return k.kL != nil
}

// IsZero returns true for the zero value
func (k SigningKey) IsZero() bool {
	return k.seed == nil && k.kL == nil
}

// PublicKey returns the verification key
func (k SigningKey) PublicKey() PublicKey {
	switch {
	case k.seed != nil:
		privKey := ed25519.NewKeyFromSeed(k.seed)
		return PublicKey(privKey.Public().(ed25519.PublicKey))
	case k.kL != nil:
		return PublicKey(publicKeyFromScalar(k.kL))
	}
	return nil
}

func (k SigningKey) String() string {
	return "SigningKey(" + k.PublicKey().KeyHash().String() + ")"
}

func (k SigningKey) GoString() string {
	return k.String()
}

// sign produces an Ed25519 signature. It is the only place key material is used
func (k SigningKey) sign(message []byte) ([]byte, error) {
	switch {
	case k.seed != nil:
		return ed25519.Sign(ed25519.NewKeyFromSeed(k.seed), message), nil
	case k.kL != nil:
		return signExtended(k.kL, k.kR, message), nil
	}
	return nil, fmt.Errorf("%w: empty signing key", ErrInvalidKey)
}

// KeyPair is a signing key with its public key. ChainCode is set for keys
// derived from a root key and is used by bootstrap witnesses
type KeyPair struct {
	SigningKey SigningKey
	PublicKey  PublicKey
	ChainCode  []byte
}

// NewKeyPair returns the key pair for a signing key
func NewKeyPair(key SigningKey, chainCode []byte) KeyPair {
	return KeyPair{
		SigningKey: key,
		PublicKey:  key.PublicKey(),
		ChainCode:  slices.Clone(chainCode),
	}
}

// ExtendedPublicKey returns the public key followed by the chain code
func (p KeyPair) ExtendedPublicKey() []byte {
	ret := make([]byte, 0, PublicKeySize+ChainCodeSize)
	ret = append(ret, p.PublicKey...)
	return append(ret, p.ChainCode...)
}

// KeyHash returns the hash of the public key
func (p KeyPair) KeyHash() common.AddrKeyHash {
	return p.PublicKey.KeyHash()
}
