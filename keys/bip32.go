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
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"slices"

	"filippo.io/edwards25519"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// PBKDF2 parameters for the Icarus master key
	icarusIterations = 4096
	icarusKeySize    = 96
)

// Domain separation prefixes for child key derivation
const (
	derivePrivateZ     = 0x00
	derivePrivateChain = 0x01
	derivePublicZ      = 0x02
	derivePublicChain  = 0x03
)

// extendedKey is a BIP32-Ed25519 private key with its chain code
type extendedKey struct {
	kL        []byte
	kR        []byte
	chainCode []byte
}

// newRootKeyFromEntropy derives the Icarus master key from BIP-39 entropy
func newRootKeyFromEntropy(entropy []byte, passphrase []byte) (extendedKey, error) {
	if len(entropy) < 16 || len(entropy) > 32 || len(entropy)%4 != 0 {
		return extendedKey{}, fmt.Errorf(
			"%w: entropy must be 16 to 32 bytes in steps of 4, got %d",
			ErrInvalidKey,
			len(entropy),
		)
	}
	key := pbkdf2.Key(
		passphrase,
		entropy,
		icarusIterations,
		icarusKeySize,
		sha512.New,
	)
	key[0] &= 0xf8
	key[31] &= 0x1f
	key[31] |= 0x40
	return extendedKey{
		kL:        key[:32],
		kR:        key[32:64],
		chainCode: key[64:],
	}, nil
}

// newRootKeyFromMnemonic derives the Icarus master key from a BIP-39 mnemonic
func newRootKeyFromMnemonic(mnemonic string, passphrase string) (extendedKey, error) {
	entropy, err := bip39.EntropyFromMnemonic(mnemonic)
	if err != nil {
		return extendedKey{}, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return newRootKeyFromEntropy(entropy, []byte(passphrase))
}

func (k extendedKey) publicKey() []byte {
	return publicKeyFromScalar(k.kL)
}

func (k extendedKey) signingKey() SigningKey {
	return SigningKey{
		kL: slices.Clone(k.kL),
		kR: slices.Clone(k.kR),
	}
}

// derive returns the child key at index. Indexes at or above HardenedIndex
// produce hardened children
func (k extendedKey) derive(index uint32) extendedKey {
	var indexBytes [4]byte
	binary.LittleEndian.PutUint32(indexBytes[:], index)
	zMac := hmac.New(sha512.New, k.chainCode)
	ccMac := hmac.New(sha512.New, k.chainCode)
	if index >= HardenedIndex {
		zMac.Write([]byte{derivePrivateZ})
		zMac.Write(k.kL)
		zMac.Write(k.kR)
		ccMac.Write([]byte{derivePrivateChain})
		ccMac.Write(k.kL)
		ccMac.Write(k.kR)
	} else {
		pubKey := k.publicKey()
		zMac.Write([]byte{derivePublicZ})
		zMac.Write(pubKey)
		ccMac.Write([]byte{derivePublicChain})
		ccMac.Write(pubKey)
	}
	zMac.Write(indexBytes[:])
	ccMac.Write(indexBytes[:])
	z := zMac.Sum(nil)
	cc := ccMac.Sum(nil)
	return extendedKey{
		kL:        add28Mul8(k.kL, z[:28]),
		kR:        add256Bits(k.kR, z[32:]),
		chainCode: cc[32:],
	}
}

// DerivePublicChild derives a soft child of an extended public key (public key
// followed by chain code). It returns the child's extended public key
func DerivePublicChild(extendedPublicKey []byte, index uint32) ([]byte, error) {
	if len(extendedPublicKey) != PublicKeySize+ChainCodeSize {
		return nil, fmt.Errorf(
			"%w: extended public key must be %d bytes, got %d",
			ErrInvalidKey,
			PublicKeySize+ChainCodeSize,
			len(extendedPublicKey),
		)
	}
	if index >= HardenedIndex {
		return nil, fmt.Errorf(
			"%w: hardened index %d needs the private key",
			ErrInvalidDerivationPath,
			index,
		)
	}
	pubKey := extendedPublicKey[:PublicKeySize]
	chainCode := extendedPublicKey[PublicKeySize:]
	point, err := new(edwards25519.Point).SetBytes(pubKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	var indexBytes [4]byte
	binary.LittleEndian.PutUint32(indexBytes[:], index)
	zMac := hmac.New(sha512.New, chainCode)
	zMac.Write([]byte{derivePublicZ})
	zMac.Write(pubKey)
	zMac.Write(indexBytes[:])
	z := zMac.Sum(nil)
	ccMac := hmac.New(sha512.New, chainCode)
	ccMac.Write([]byte{derivePublicChain})
	ccMac.Write(pubKey)
	ccMac.Write(indexBytes[:])
	cc := ccMac.Sum(nil)
	// A' = A + 8*ZL*B
	tweak := scalarFromBytes(add28Mul8(make([]byte, 32), z[:28]))
	childPoint := new(edwards25519.Point).Add(
		point,
		new(edwards25519.Point).ScalarBaseMult(tweak),
	)
	ret := make([]byte, 0, PublicKeySize+ChainCodeSize)
	ret = append(ret, childPoint.Bytes()...)
	return append(ret, cc[32:]...), nil
}

// add28Mul8 returns x + 8*y where y is 28 bytes, as little-endian integers
func add28Mul8(x []byte, y []byte) []byte {
	out := make([]byte, 32)
	var carry uint16
	for i := range 28 {
		r := uint16(x[i]) + (uint16(y[i]) << 3) + carry
		out[i] = byte(r & 0xff)
		carry = r >> 8
	}
	for i := 28; i < 32; i++ {
		r := uint16(x[i]) + carry
		out[i] = byte(r & 0xff)
		carry = r >> 8
	}
	return out
}

// add256Bits returns x + y mod 2^256, as little-endian integers
func add256Bits(x []byte, y []byte) []byte {
	out := make([]byte, 32)
	var carry uint16
	for i := range 32 {
		r := uint16(x[i]) + uint16(y[i]) + carry
		out[i] = byte(r & 0xff)
		carry = r >> 8
	}
	return out
}

// scalarFromBytes reduces a 32-byte little-endian integer modulo the group order
func scalarFromBytes(b []byte) *edwards25519.Scalar {
	var wide [64]byte
	copy(wide[:], b)
	s, err := edwards25519.NewScalar().SetUniformBytes(wide[:])
	if err != nil {
		panic("unexpected error reducing scalar: " + err.Error())
	}
	return s
}

func publicKeyFromScalar(kL []byte) []byte {
	return new(edwards25519.Point).ScalarBaseMult(scalarFromBytes(kL)).Bytes()
}

// signExtended signs with an expanded Ed25519 key. For a key expanded from a
// seed the result is identical to ed25519.Sign
func signExtended(kL []byte, kR []byte, message []byte) []byte {
	pubKey := publicKeyFromScalar(kL)
	h := sha512.New()
	h.Write(kR)
	h.Write(message)
	r := uniformScalar(h.Sum(nil))
	rPoint := new(edwards25519.Point).ScalarBaseMult(r).Bytes()
	h.Reset()
	h.Write(rPoint)
	h.Write(pubKey)
	h.Write(message)
	k := uniformScalar(h.Sum(nil))
	s := edwards25519.NewScalar().MultiplyAdd(k, scalarFromBytes(kL), r)
	ret := make([]byte, 0, SignatureSize)
	ret = append(ret, rPoint...)
	return append(ret, s.Bytes()...)
}

func uniformScalar(digest []byte) *edwards25519.Scalar {
	s, err := edwards25519.NewScalar().SetUniformBytes(digest)
	if err != nil {
		panic("unexpected error reducing digest: " + err.Error())
	}
	return s
}
