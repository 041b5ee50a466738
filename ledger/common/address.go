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
	"hash/crc32"
	"io"
	"math/big"
	"slices"
	"strings"

	"github.com/blinklabs-io/ledgerkit/cbor"
	"github.com/blinklabs-io/plutigo/data"
	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/sha3"
)

const (
	AddressHeaderTypeMask    = 0xF0
	AddressHeaderNetworkMask = 0x0F
	AddressHashSize          = 28

	AddressTypeKeyKey        = 0b0000
	AddressTypeScriptKey     = 0b0001
	AddressTypeKeyScript     = 0b0010
	AddressTypeScriptScript  = 0b0011
	AddressTypeKeyPointer    = 0b0100
	AddressTypeScriptPointer = 0b0101
	AddressTypeKeyNone       = 0b0110
	AddressTypeScriptNone    = 0b0111
	AddressTypeByron         = 0b1000
	AddressTypeNoneKey       = 0b1110
	AddressTypeNoneScript    = 0b1111

	ByronAddressTypePubkey = 0
	ByronAddressTypeScript = 1
	ByronAddressTypeRedeem = 2
)

// Address is a closed sum over the base, pointer, enterprise, reward and Byron
// address variants. The variant and network are carried in the header byte
type Address struct {
	addressType      uint8
	networkId        uint8
	paymentPayload   AddressPayload
	stakingPayload   AddressPayload
	extraData        []byte
	byronAddressType uint64
	byronAddressAttr ByronAddressAttributes
	// Original bytes of a decoded Byron address
	byronRaw []byte
}

// NewAddress returns an Address based on the provided bech32/base58 address string
// It detects if the string has mixed case assumes it is a base58 encoded address
// otherwise, it assumes it is bech32 encoded
func NewAddress(addr string) (Address, error) {
	var decoded []byte
	var hrp string
	if strings.ToLower(addr) != addr {
		// Mixed case detected: Assume Base58 encoding (e.g., Byron addresses)
		decoded = base58.Decode(addr)
		if len(decoded) == 0 {
			return Address{}, invalidValue("Address", "bad base58 encoding")
		}
	} else {
		tmpHrp, tmpData, err := decodeBech32(addr)
		if err != nil {
			return Address{}, InvalidValueError{
				Type:   "Address",
				Reason: "bad bech32 encoding",
				Err:    err,
			}
		}
		if !slices.Contains(
			[]string{"addr", "addr_test", "stake", "stake_test"},
			tmpHrp,
		) {
			return Address{}, invalidValue(
				"Address",
				"unknown human readable part %q",
				tmpHrp,
			)
		}
		hrp = tmpHrp
		decoded = tmpData
	}
	a := Address{}
	if err := a.populateFromBytes(decoded); err != nil {
		return Address{}, err
	}
	if hrp != "" && !a.IsByron() && a.generateHRP() != hrp {
		return Address{}, invalidValue(
			"Address",
			"human readable part does not match address header",
		)
	}
	return a, nil
}

// NewAddressFromBytes returns an Address based on the raw bytes provided
func NewAddressFromBytes(addrBytes []byte) (Address, error) {
	var ret Address
	if err := ret.populateFromBytes(addrBytes); err != nil {
		return Address{}, err
	}
	return ret, nil
}

// NewAddressFromParts returns an Address based on the individual parts of the address that are provided
func NewAddressFromParts(
	addrType uint8,
	networkId uint8,
	paymentAddr []byte,
	stakingAddr []byte,
) (Address, error) {
	// Validate network ID
	if networkId != AddressNetworkTestnet &&
		networkId != AddressNetworkMainnet {
		return Address{}, invalidValue(
			"Address",
			"invalid network ID %d",
			networkId,
		)
	}
	if addrType == AddressTypeByron || addrType > AddressTypeNoneScript ||
		(addrType > AddressTypeByron && addrType < AddressTypeNoneKey) {
		return Address{}, invalidValue(
			"Address",
			"unsupported address type %d",
			addrType,
		)
	}
	// Build address bytes
	buf := bytes.NewBuffer(nil)
	header := (addrType << 4) | (networkId & AddressHeaderNetworkMask)
	_ = buf.WriteByte(header)
	_, _ = buf.Write(paymentAddr)
	_, _ = buf.Write(stakingAddr)
	ret, err := NewAddressFromBytes(buf.Bytes())
	if err != nil {
		return Address{}, InvalidValueError{
			Type:   "Address",
			Reason: "parts do not match address type",
			Err:    err,
		}
	}
	if len(ret.extraData) > 0 {
		return Address{}, invalidValue("Address", "unexpected trailing data")
	}
	return ret, nil
}

// NewBaseAddress returns a base address with payment and stake credentials
func NewBaseAddress(
	networkId uint8,
	payment Credential,
	stake Credential,
) (Address, error) {
	addrType := uint8(AddressTypeKeyKey)
	if payment.IsScript() {
		addrType |= 0b0001
	}
	if stake.IsScript() {
		addrType |= 0b0010
	}
	return NewAddressFromParts(
		addrType,
		networkId,
		payment.Credential.Bytes(),
		stake.Credential.Bytes(),
	)
}

// NewEnterpriseAddress returns an address without a stake part
func NewEnterpriseAddress(networkId uint8, payment Credential) (Address, error) {
	addrType := uint8(AddressTypeKeyNone)
	if payment.IsScript() {
		addrType = AddressTypeScriptNone
	}
	return NewAddressFromParts(
		addrType,
		networkId,
		payment.Credential.Bytes(),
		nil,
	)
}

// NewRewardAddress returns a stake (reward account) address
func NewRewardAddress(networkId uint8, stake Credential) (Address, error) {
	addrType := uint8(AddressTypeNoneKey)
	if stake.IsScript() {
		addrType = AddressTypeNoneScript
	}
	return NewAddressFromParts(addrType, networkId, nil, stake.Credential.Bytes())
}

// NewPointerAddress returns an address whose stake part points at a certificate
func NewPointerAddress(
	networkId uint8,
	payment Credential,
	pointer AddressPayloadPointer,
) (Address, error) {
	addrType := uint8(AddressTypeKeyPointer)
	if payment.IsScript() {
		addrType = AddressTypeScriptPointer
	}
	return NewAddressFromParts(
		addrType,
		networkId,
		payment.Credential.Bytes(),
		pointer.encode(),
	)
}

func NewByronAddressFromParts(
	byronAddrType uint64,
	paymentAddr []byte,
	attr ByronAddressAttributes,
) (Address, error) {
	if len(paymentAddr) != AddressHashSize {
		return Address{}, invalidValue(
			"Address",
			"invalid payment address hash length: %d",
			len(paymentAddr),
		)
	}
	if byronAddrType > ByronAddressTypeRedeem {
		return Address{}, invalidValue(
			"Address",
			"invalid Byron address type: %d",
			byronAddrType,
		)
	}
	return Address{
		addressType: AddressTypeByron,
		paymentPayload: AddressPayloadKeyHash{
			Hash: NewBlake2b224(paymentAddr),
		},
		byronAddressType: byronAddrType,
		byronAddressAttr: attr,
	}, nil
}

// NewByronAddressFromXPub returns a Byron pubkey address for a 64-byte extended
// public key (public key followed by chain code)
func NewByronAddressFromXPub(
	xpub []byte,
	attr ByronAddressAttributes,
) (Address, error) {
	if len(xpub) != 64 {
		return Address{}, invalidValue(
			"Address",
			"invalid extended public key length: %d",
			len(xpub),
		)
	}
	return newByronAddressFromSpendingData(
		ByronAddressTypePubkey,
		[]any{ByronAddressTypePubkey, xpub},
		attr,
	)
}

func NewByronAddressRedeem(
	pubkey []byte,
	attr ByronAddressAttributes,
) (Address, error) {
	if len(pubkey) != 32 {
		return Address{}, invalidValue(
			"Address",
			"invalid redeem pubkey length: %d",
			len(pubkey),
		)
	}
	return newByronAddressFromSpendingData(
		ByronAddressTypeRedeem,
		[]any{ByronAddressTypeRedeem, pubkey},
		attr,
	)
}

func newByronAddressFromSpendingData(
	addrType uint64,
	spendingData []any,
	attr ByronAddressAttributes,
) (Address, error) {
	addrRoot := []any{
		addrType,
		spendingData,
		&attr,
	}
	addrRootBytes, err := cbor.Encode(addrRoot)
	if err != nil {
		return Address{}, err
	}
	sha3Sum := sha3.Sum256(addrRootBytes)
	addrHash := Blake2b224Hash(sha3Sum[:])
	return NewByronAddressFromParts(addrType, addrHash.Bytes(), attr)
}

func (a *Address) populateFromBytes(data []byte) error {
	if len(data) == 0 {
		return &cbor.MalformedEncodingError{Err: io.ErrUnexpectedEOF}
	}
	// Extract header info
	header := data[0]
	a.addressType = (header & AddressHeaderTypeMask) >> 4
	a.networkId = header & AddressHeaderNetworkMask
	// Byron Addresses
	if a.addressType == AddressTypeByron {
		return a.populateFromByronBytes(data)
	}
	// Payment payload
	payload := data[1:]
	switch a.addressType {
	case AddressTypeKeyKey, AddressTypeKeyScript, AddressTypeKeyPointer, AddressTypeKeyNone:
		if len(payload) < AddressHashSize {
			return truncatedAddress("payment key hash")
		}
		a.paymentPayload = AddressPayloadKeyHash{
			Hash: NewBlake2b224(payload[0:AddressHashSize]),
		}
		payload = payload[AddressHashSize:]
	case AddressTypeScriptKey, AddressTypeScriptScript, AddressTypeScriptPointer, AddressTypeScriptNone:
		if len(payload) < AddressHashSize {
			return truncatedAddress("payment script hash")
		}
		a.paymentPayload = AddressPayloadScriptHash{
			Hash: NewBlake2b224(payload[0:AddressHashSize]),
		}
		payload = payload[AddressHashSize:]
	case AddressTypeNoneKey, AddressTypeNoneScript:
	default:
		return cbor.Malformedf("unknown address type: %d", a.addressType)
	}
	// Staking payload
	switch a.addressType {
	case AddressTypeKeyKey, AddressTypeScriptKey, AddressTypeNoneKey:
		if len(payload) < AddressHashSize {
			return truncatedAddress("staking key hash")
		}
		a.stakingPayload = AddressPayloadKeyHash{
			Hash: NewBlake2b224(payload[0:AddressHashSize]),
		}
		payload = payload[AddressHashSize:]
	case AddressTypeKeyScript, AddressTypeScriptScript, AddressTypeNoneScript:
		if len(payload) < AddressHashSize {
			return truncatedAddress("staking script hash")
		}
		a.stakingPayload = AddressPayloadScriptHash{
			Hash: NewBlake2b224(payload[0:AddressHashSize]),
		}
		payload = payload[AddressHashSize:]
	case AddressTypeKeyPointer, AddressTypeScriptPointer:
		var tmpPointer AddressPayloadPointer
		n, err := tmpPointer.decode(payload)
		if err != nil {
			return err
		}
		a.stakingPayload = tmpPointer
		payload = payload[n:]
		// Some pointer addresses on chain carry trailing garbage, which we must
		// preserve to reproduce the original bytes
		// https://github.com/IntersectMBO/cardano-ledger/issues/2729
		if len(payload) > 0 {
			a.extraData = slices.Clone(payload)
		}
		return nil
	}
	if len(payload) > 0 {
		return cbor.Malformedf(
			"%d bytes of unexpected data after address",
			len(payload),
		)
	}
	return nil
}

func (a *Address) populateFromByronBytes(data []byte) error {
	var rawAddr byronAddress
	if err := cbor.DecodeExact(data, &rawAddr); err != nil {
		return err
	}
	payloadBytes, ok := rawAddr.Payload.Content.([]byte)
	if !ok || rawAddr.Payload.Number != cbor.CborTagCbor {
		return cbor.Malformedf(
			"invalid Byron address data: unexpected payload content",
		)
	}
	payloadChecksum := crc32.ChecksumIEEE(payloadBytes)
	if rawAddr.Checksum != payloadChecksum {
		return cbor.Malformedf(
			"invalid Byron address data: checksum does not match",
		)
	}
	var byronAddr byronAddressPayload
	if err := cbor.DecodeExact(payloadBytes, &byronAddr); err != nil {
		return err
	}
	if len(byronAddr.Hash) != AddressHashSize {
		return cbor.Malformedf(
			"invalid Byron address data: hash is not expected length",
		)
	}
	a.networkId = 0
	a.byronAddressType = byronAddr.AddrType
	a.byronAddressAttr = byronAddr.Attr
	a.paymentPayload = AddressPayloadKeyHash{
		Hash: NewBlake2b224(byronAddr.Hash),
	}
	a.byronRaw = slices.Clone(data)
	return nil
}

func truncatedAddress(part string) error {
	return &cbor.MalformedEncodingError{
		Err: &addressTruncatedError{part: part},
	}
}

type addressTruncatedError struct {
	part string
}

func (e *addressTruncatedError) Error() string {
	return "address too short for " + e.part
}

func (e *addressTruncatedError) Unwrap() error {
	return io.ErrUnexpectedEOF
}

func (a *Address) UnmarshalCBOR(data []byte) error {
	tmpData := []byte{}
	if err := cbor.DecodeExact(data, &tmpData); err != nil {
		return err
	}
	var tmpAddr Address
	if err := tmpAddr.populateFromBytes(tmpData); err != nil {
		return err
	}
	*a = tmpAddr
	return nil
}

func (a Address) MarshalCBOR() ([]byte, error) {
	return cbor.Encode(a.Bytes())
}

func (a Address) ToPlutusData() data.PlutusData {
	if a.addressType == AddressTypeByron {
		// There is no PlutusData representation for Byron addresses
		return nil
	}
	// Build payment part
	var paymentPd data.PlutusData
	switch p := a.paymentPayload.(type) {
	case AddressPayloadKeyHash:
		paymentPd = NewKeyCredential(p.Hash).ToPlutusData()
	case AddressPayloadScriptHash:
		paymentPd = NewScriptCredential(p.Hash).ToPlutusData()
	default:
		return nil
	}
	// Build stake part
	var stakePd data.PlutusData
	switch p := a.stakingPayload.(type) {
	case nil:
		stakePd = data.NewConstr(1)
	case AddressPayloadKeyHash:
		stakePd = data.NewConstr(
			0,
			data.NewConstr(0, NewKeyCredential(p.Hash).ToPlutusData()),
		)
	case AddressPayloadScriptHash:
		stakePd = data.NewConstr(
			0,
			data.NewConstr(0, NewScriptCredential(p.Hash).ToPlutusData()),
		)
	case AddressPayloadPointer:
		stakePd = data.NewConstr(
			0,
			data.NewConstr(
				1,
				data.NewInteger(new(big.Int).SetUint64(p.Slot)),
				data.NewInteger(new(big.Int).SetUint64(p.TxIndex)),
				data.NewInteger(new(big.Int).SetUint64(p.CertIndex)),
			),
		)
	}
	return data.NewConstr(
		0,
		paymentPd,
		stakePd,
	)
}

func (a Address) NetworkId() uint {
	if a.addressType == AddressTypeByron {
		// Use Shelley network ID convention
		if a.byronAddressAttr.Network == nil {
			// Return mainnet if no network ID is present in address
			return AddressNetworkMainnet
		}
		// Return testnet, since the convention says we only include network ID on testnets
		return AddressNetworkTestnet
	}
	return uint(a.networkId)
}

func (a Address) Type() uint8 {
	return a.addressType
}

func (a Address) IsByron() bool {
	return a.addressType == AddressTypeByron
}

// IsReward returns true for stake (reward account) addresses
func (a Address) IsReward() bool {
	return a.addressType == AddressTypeNoneKey ||
		a.addressType == AddressTypeNoneScript
}

func (a Address) ByronType() uint64 {
	return a.byronAddressType
}

func (a Address) ByronAttr() ByronAddressAttributes {
	return a.byronAddressAttr
}

// PaymentCredential returns the payment credential. Reward and Byron addresses have none
func (a Address) PaymentCredential() (Credential, bool) {
	if a.addressType == AddressTypeByron {
		return Credential{}, false
	}
	return payloadCredential(a.paymentPayload)
}

// StakeCredential returns the stake credential. Pointer addresses have none
func (a Address) StakeCredential() (Credential, bool) {
	return payloadCredential(a.stakingPayload)
}

// Pointer returns the certificate pointer of a pointer address
func (a Address) Pointer() (AddressPayloadPointer, bool) {
	p, ok := a.stakingPayload.(AddressPayloadPointer)
	return p, ok
}

func payloadCredential(payload AddressPayload) (Credential, bool) {
	switch p := payload.(type) {
	case AddressPayloadKeyHash:
		return NewKeyCredential(p.Hash), true
	case AddressPayloadScriptHash:
		return NewScriptCredential(p.Hash), true
	}
	return Credential{}, false
}

// PaymentAddress returns a new Address with only the payment address portion. This will return nil for anything other than payment and script addresses
func (a Address) PaymentAddress() *Address {
	var addrType uint8
	switch a.addressType {
	case AddressTypeKeyKey, AddressTypeKeyScript, AddressTypeKeyPointer, AddressTypeKeyNone:
		addrType = AddressTypeKeyNone
	case AddressTypeScriptKey, AddressTypeScriptScript, AddressTypeScriptPointer, AddressTypeScriptNone:
		addrType = AddressTypeScriptNone
	default:
		// Unsupported address type
		return nil
	}
	return &Address{
		addressType:    addrType,
		networkId:      a.networkId,
		paymentPayload: a.paymentPayload,
	}
}

// PaymentKeyHash returns the payment key or script hash, or the address root for Byron addresses
func (a Address) PaymentKeyHash() Blake2b224 {
	switch p := a.paymentPayload.(type) {
	case AddressPayloadKeyHash:
		return p.Hash
	case AddressPayloadScriptHash:
		return p.Hash
	default:
		// Return empty hash
		return Blake2b224{}
	}
}

// StakeAddress returns a new Address with only the stake key portion. This will return nil if the address is not a payment/staking key pair
func (a Address) StakeAddress() *Address {
	var addrType uint8
	switch a.addressType {
	case AddressTypeKeyKey, AddressTypeScriptKey, AddressTypeNoneKey:
		addrType = AddressTypeNoneKey
	case AddressTypeKeyScript, AddressTypeScriptScript, AddressTypeNoneScript:
		addrType = AddressTypeNoneScript
	default:
		// Unsupported address type
		return nil
	}
	return &Address{
		addressType:    addrType,
		networkId:      a.networkId,
		stakingPayload: a.stakingPayload,
	}
}

// StakeKeyHash returns the stake key or script hash
func (a Address) StakeKeyHash() Blake2b224 {
	switch p := a.stakingPayload.(type) {
	case AddressPayloadKeyHash:
		return p.Hash
	case AddressPayloadScriptHash:
		return p.Hash
	default:
		// Return empty hash
		return Blake2b224{}
	}
}

func (a Address) generateHRP() string {
	var ret string
	if a.IsReward() {
		ret = "stake"
	} else {
		ret = "addr"
	}
	// Add test_ suffix if not mainnet
	if a.networkId != AddressNetworkMainnet {
		ret += "_test"
	}
	return ret
}

// Bytes returns the underlying bytes for the address
func (a Address) Bytes() []byte {
	if a.addressType == AddressTypeByron {
		if a.byronRaw != nil {
			return slices.Clone(a.byronRaw)
		}
		tmpPayload := []any{
			a.PaymentKeyHash().Bytes(),
			&a.byronAddressAttr,
			a.byronAddressType,
		}
		rawPayload := cbor.MustEncode(tmpPayload)
		return cbor.MustEncode(
			[]any{
				cbor.Tag{
					Number:  cbor.CborTagCbor,
					Content: rawPayload,
				},
				crc32.ChecksumIEEE(rawPayload),
			},
		)
	}
	buf := bytes.NewBuffer(nil)
	header := (a.addressType << 4) | (a.networkId & AddressHeaderNetworkMask)
	_ = buf.WriteByte(header)
	switch p := a.paymentPayload.(type) {
	case AddressPayloadKeyHash:
		_, _ = buf.Write(p.Hash.Bytes())
	case AddressPayloadScriptHash:
		_, _ = buf.Write(p.Hash.Bytes())
	}
	switch p := a.stakingPayload.(type) {
	case AddressPayloadKeyHash:
		_, _ = buf.Write(p.Hash.Bytes())
	case AddressPayloadScriptHash:
		_, _ = buf.Write(p.Hash.Bytes())
	case AddressPayloadPointer:
		_, _ = buf.Write(p.encode())
	}
	_, _ = buf.Write(a.extraData)
	return buf.Bytes()
}

// Equal returns true if both addresses have the same binary form
func (a Address) Equal(other Address) bool {
	return bytes.Equal(a.Bytes(), other.Bytes())
}

// String returns the bech32-encoded version of the address
func (a Address) String() string {
	if a.addressType == AddressTypeByron {
		// Encode data to base58
		return base58.Encode(a.Bytes())
	}
	return encodeBech32(a.generateHRP(), a.Bytes())
}

func (a Address) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

func (a *Address) UnmarshalJSON(data []byte) error {
	tmpAddr, err := NewAddress(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*a = tmpAddr
	return nil
}

type byronAddress struct {
	cbor.StructAsArray
	Payload  cbor.Tag
	Checksum uint32
}

type byronAddressPayload struct {
	cbor.StructAsArray
	Hash     []byte
	Attr     ByronAddressAttributes
	AddrType uint64
}

type ByronAddressAttributes struct {
	Payload []byte
	Network *uint32
}

func (a *ByronAddressAttributes) UnmarshalCBOR(data []byte) error {
	var tmpData struct {
		Payload    []byte `cbor:"1,keyasint,omitempty"`
		NetworkRaw []byte `cbor:"2,keyasint,omitempty"`
	}
	if err := cbor.DecodeExact(data, &tmpData); err != nil {
		return err
	}
	a.Payload = tmpData.Payload
	if len(tmpData.NetworkRaw) > 0 {
		var tmpNetwork uint32
		if err := cbor.DecodeExact(tmpData.NetworkRaw, &tmpNetwork); err != nil {
			return err
		}
		a.Network = &tmpNetwork
	}
	return nil
}

func (a *ByronAddressAttributes) MarshalCBOR() ([]byte, error) {
	tmpData := make(map[int]any)
	if len(a.Payload) > 0 {
		tmpData[1] = a.Payload
	}
	if a.Network != nil {
		networkRaw, err := cbor.Encode(a.Network)
		if err != nil {
			return nil, err
		}
		tmpData[2] = networkRaw
	}
	return cbor.Encode(tmpData)
}

type AddressPayload interface {
	isAddressPayload()
}

type AddressPayloadKeyHash struct {
	Hash AddrKeyHash
}

func (AddressPayloadKeyHash) isAddressPayload() {}

type AddressPayloadScriptHash struct {
	Hash ScriptHash
}

func (AddressPayloadScriptHash) isAddressPayload() {}

// AddressPayloadPointer locates a stake registration certificate on chain
type AddressPayloadPointer struct {
	Slot      uint64
	TxIndex   uint64
	CertIndex uint64
}

func (AddressPayloadPointer) isAddressPayload() {}

// decode reads the three variable-length integers and returns the number of bytes consumed
func (a *AddressPayloadPointer) decode(data []byte) (int, error) {
	pos := 0
	readVarUint := func() (uint64, error) {
		var ret uint64
		for {
			if pos >= len(data) {
				return 0, truncatedAddress("pointer")
			}
			byt := data[pos]
			pos++
			if ret > (^uint64(0))>>7 {
				return 0, cbor.Malformedf("pointer value overflows uint64")
			}
			ret = (ret << 7) | uint64(byt&0x7F)
			if (byt & 0x80) == 0 {
				return ret, nil
			}
		}
	}
	var err error
	a.Slot, err = readVarUint()
	if err != nil {
		return 0, err
	}
	a.TxIndex, err = readVarUint()
	if err != nil {
		return 0, err
	}
	a.CertIndex, err = readVarUint()
	if err != nil {
		return 0, err
	}
	return pos, nil
}

func (a AddressPayloadPointer) encode() []byte {
	writeVarUint := func(buf []byte, val uint64) []byte {
		data := []byte{
			byte(val & 0x7F),
		}
		val /= 128
		for val > 0 {
			data = append(
				data,
				byte((val&0x7F)|0x80),
			)
			val /= 128
		}
		slices.Reverse(data)
		return append(buf, data...)
	}
	var ret []byte
	ret = writeVarUint(ret, a.Slot)
	ret = writeVarUint(ret, a.TxIndex)
	ret = writeVarUint(ret, a.CertIndex)
	return ret
}
