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

package keys_test

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"github.com/blinklabs-io/ledgerkit/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tyler-smith/go-bip39"
)

var (
	_ keys.Adapter = (*keys.Ed25519Adapter)(nil)
	_ keys.Adapter = keys.MockAdapter{}
)

// Entropy 000102...0f
var testEntropy = []byte{
	0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
	0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f,
}

const (
	testRootPubKey    = "26a0a7144417696537eafe6e942715a6a06e4257531023dba17b33f5a283f5cd"
	testRootChainCode = "45a302ecb459a48b23bdf5ca1f7c5ff6a46c4fe17c30751fa49f08f4fd564a7a"
	testAcctPubKey    = "4c32058b53e4df920ac3b50f0859d7d8a4f5c92e92c65d1075f1d8a9a0e07b25"
	testAcctChainCode = "91db495d11691045874102cbf1bb9f6c9c868ebfa5ce6d3056d976175b0064d4"
	testAddrPubKey    = "c2f350a90119b89382e6313f1b57ee38ac3689ab5b0360dd49d079abc1627d28"
	testAddrSignature = "d4984dfd41a014cc0d351ddadc6524d02a89c53ad90e628bca836661138e83d3" +
		"503ef8df22381fbc42a48d0cfe8bfdd9417169c78f374ca14b2676ede73c750c"
)

func decodeHex(t *testing.T, hexData string) []byte {
	t.Helper()
	ret, err := hex.DecodeString(hexData)
	require.NoError(t, err)
	return ret
}

func newTestAdapter(t *testing.T) *keys.Ed25519Adapter {
	t.Helper()
	adapter, err := keys.NewEd25519AdapterFromEntropy(testEntropy, "")
	require.NoError(t, err)
	return adapter
}

func TestDeriveKey(t *testing.T) {
	adapter := newTestAdapter(t)
	testDefs := []struct {
		path      string
		pubKey    string
		chainCode string
	}{
		{
			path:      "m",
			pubKey:    testRootPubKey,
			chainCode: testRootChainCode,
		},
		{
			path:      "m/1852'/1815'/0'",
			pubKey:    testAcctPubKey,
			chainCode: testAcctChainCode,
		},
		{
			path:   "m/1852h/1815h/0h/0/0",
			pubKey: testAddrPubKey,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.path, func(t *testing.T) {
			path, err := keys.ParseDerivationPath(testDef.path)
			require.NoError(t, err)
			keyPair, err := adapter.DeriveKey(path)
			require.NoError(t, err)
			assert.True(t, keyPair.SigningKey.IsExtended())
			assert.Equal(t, testDef.pubKey, hex.EncodeToString(keyPair.PublicKey))
			assert.Equal(t, keyPair.PublicKey, keyPair.SigningKey.PublicKey())
			if testDef.chainCode != "" {
				assert.Equal(t, testDef.chainCode, hex.EncodeToString(keyPair.ChainCode))
			}
		})
	}
}

func TestDeriveKeySignature(t *testing.T) {
	adapter := newTestAdapter(t)
	keyPair, err := adapter.DeriveKey(keys.NewCip1852Path(0, keys.RoleExternal, 0))
	require.NoError(t, err)
	message := []byte("hello")
	sig, err := adapter.Sign(keyPair.SigningKey, message)
	require.NoError(t, err)
	assert.Equal(t, testAddrSignature, hex.EncodeToString(sig))
	assert.True(t, adapter.Verify(keyPair.PublicKey, message, sig))
	assert.True(t, ed25519.Verify(ed25519.PublicKey(keyPair.PublicKey), message, sig))
	assert.False(t, adapter.Verify(keyPair.PublicKey, []byte("hellp"), sig))
	assert.False(t, adapter.Verify(keyPair.PublicKey, message, sig[:63]))
}

func TestDerivePublicChild(t *testing.T) {
	adapter := newTestAdapter(t)
	acct, err := adapter.DeriveKey(keys.DerivationPath{
		keys.PurposeCip1852 + keys.HardenedIndex,
		keys.CoinTypeAda + keys.HardenedIndex,
		keys.HardenedIndex,
	})
	require.NoError(t, err)
	role, err := keys.DerivePublicChild(acct.ExtendedPublicKey(), keys.RoleExternal)
	require.NoError(t, err)
	child, err := keys.DerivePublicChild(role, 0)
	require.NoError(t, err)
	assert.Equal(t, testAddrPubKey, hex.EncodeToString(child[:keys.PublicKeySize]))

	privChild, err := adapter.DeriveKey(keys.NewCip1852Path(0, keys.RoleExternal, 0))
	require.NoError(t, err)
	assert.Equal(t, privChild.ExtendedPublicKey(), child)

	_, err = keys.DerivePublicChild(acct.ExtendedPublicKey(), keys.HardenedIndex)
	assert.ErrorIs(t, err, keys.ErrInvalidDerivationPath)
	_, err = keys.DerivePublicChild(acct.PublicKey, 0)
	assert.ErrorIs(t, err, keys.ErrInvalidKey)
}

func TestAdapterFromMnemonic(t *testing.T) {
	mnemonic, err := bip39.NewMnemonic(testEntropy)
	require.NoError(t, err)
	adapter, err := keys.NewEd25519AdapterFromMnemonic(mnemonic, "")
	require.NoError(t, err)
	root, err := adapter.DeriveKey(nil)
	require.NoError(t, err)
	assert.Equal(t, testRootPubKey, hex.EncodeToString(root.PublicKey))

	// A passphrase changes the root key
	adapter, err = keys.NewEd25519AdapterFromMnemonic(mnemonic, "secret")
	require.NoError(t, err)
	root, err = adapter.DeriveKey(nil)
	require.NoError(t, err)
	assert.NotEqual(t, testRootPubKey, hex.EncodeToString(root.PublicKey))

	_, err = keys.NewEd25519AdapterFromMnemonic("not a mnemonic", "")
	assert.ErrorIs(t, err, keys.ErrInvalidKey)
	_, err = keys.NewEd25519AdapterFromEntropy(testEntropy[:15], "")
	assert.ErrorIs(t, err, keys.ErrInvalidKey)
}

func TestAdapterWithoutRoot(t *testing.T) {
	adapter := keys.NewEd25519Adapter()
	_, err := adapter.DeriveKey(keys.NewCip1852Path(0, 0, 0))
	assert.ErrorIs(t, err, keys.ErrNoRootKey)
}

func TestSeedSigningKey(t *testing.T) {
	seed := bytes.Repeat([]byte{0x07}, keys.SeedSize)
	key, err := keys.NewSigningKeyFromSeed(seed)
	require.NoError(t, err)
	assert.False(t, key.IsExtended())
	assert.Equal(
		t,
		"ea4a6c63e29c520abef5507b132ec5f9954776aebebe7b92421eea691446d22c",
		hex.EncodeToString(key.PublicKey()),
	)
	adapter := keys.NewEd25519Adapter()
	sig, err := adapter.Sign(key, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, ed25519.Sign(ed25519.NewKeyFromSeed(seed), []byte("hello")), sig)

	// The expanded form of the same seed signs identically
	expanded := sha512.Sum512(seed)
	expanded[0] &= 0xf8
	expanded[31] &= 0x7f
	expanded[31] |= 0x40
	extKey, err := keys.NewExtendedSigningKey(expanded[:])
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), extKey.PublicKey())
	extSig, err := adapter.Sign(extKey, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, sig, extSig)

	_, err = keys.NewSigningKeyFromSeed(seed[:31])
	assert.ErrorIs(t, err, keys.ErrInvalidKey)
	unclamped := bytes.Clone(expanded[:])
	unclamped[0] |= 0x01
	_, err = keys.NewExtendedSigningKey(unclamped)
	assert.ErrorIs(t, err, keys.ErrInvalidKey)
	_, err = adapter.Sign(keys.SigningKey{}, []byte("hello"))
	assert.ErrorIs(t, err, keys.ErrInvalidKey)
}

func TestSigningKeyString(t *testing.T) {
	seed := bytes.Repeat([]byte{0x07}, keys.SeedSize)
	key, err := keys.NewSigningKeyFromSeed(seed)
	require.NoError(t, err)
	assert.NotContains(t, key.String(), hex.EncodeToString(seed))
	assert.Contains(t, key.String(), key.PublicKey().KeyHash().String())
}

func TestParseDerivationPath(t *testing.T) {
	testDefs := []struct {
		path     string
		expected keys.DerivationPath
		str      string
		err      bool
	}{
		{
			path:     "m/1852'/1815'/0'/0/0",
			expected: keys.NewCip1852Path(0, 0, 0),
			str:      "m/1852'/1815'/0'/0/0",
		},
		{
			path:     "m/1852h/1815h/3h/2/7",
			expected: keys.NewCip1852Path(3, keys.RoleStaking, 7),
			str:      "m/1852'/1815'/3'/2/7",
		},
		{
			path:     "m",
			expected: keys.DerivationPath{},
			str:      "m",
		},
		{path: "1852'/1815'", err: true},
		{path: "m/abc", err: true},
		{path: "m/2147483648", err: true},
		{path: "m//0", err: true},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.path, func(t *testing.T) {
			path, err := keys.ParseDerivationPath(testDef.path)
			if testDef.err {
				assert.ErrorIs(t, err, keys.ErrInvalidDerivationPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testDef.expected, path)
			assert.Equal(t, testDef.str, path.String())
		})
	}
}

func TestMockAdapter(t *testing.T) {
	adapter := keys.MockAdapter{}
	path := keys.NewCip1852Path(0, 0, 0)
	keyPair, err := adapter.DeriveKey(path)
	require.NoError(t, err)
	again, err := adapter.DeriveKey(path)
	require.NoError(t, err)
	assert.Equal(t, keyPair.PublicKey, again.PublicKey)

	sig, err := adapter.Sign(keyPair.SigningKey, []byte("body"))
	require.NoError(t, err)
	assert.Len(t, sig, keys.SignatureSize)
	assert.True(t, adapter.Verify(keyPair.PublicKey, []byte("body"), sig))
	assert.False(t, adapter.Verify(again.PublicKey, []byte("other"), sig))

	other, err := adapter.DeriveKey(keys.NewCip1852Path(0, 0, 1))
	require.NoError(t, err)
	assert.NotEqual(t, keyPair.PublicKey, other.PublicKey)
	assert.Equal(t, adapter.Hash([]byte("body")), keys.NewEd25519Adapter().Hash([]byte("body")))
}
