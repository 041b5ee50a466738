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
	"math/big"
	"net"

	"github.com/blinklabs-io/ledgerkit/cbor"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

const (
	CertificateTypeStakeRegistration        = 0
	CertificateTypeStakeDeregistration      = 1
	CertificateTypeStakeDelegation          = 2
	CertificateTypePoolRegistration         = 3
	CertificateTypePoolRetirement           = 4
	CertificateTypeGenesisKeyDelegation     = 5
	CertificateTypeMoveInstantaneousRewards = 6
)

type CertificateWrapper struct {
	Type        uint
	Certificate Certificate
}

func NewCertificateFromCbor(cborData []byte) (Certificate, error) {
	var tmp CertificateWrapper
	if err := cbor.DecodeExact(cborData, &tmp); err != nil {
		return nil, err
	}
	return tmp.Certificate, nil
}

func (c *CertificateWrapper) UnmarshalCBOR(data []byte) error {
	// Determine cert type
	certType, err := cbor.DecodeIdFromList(data)
	if err != nil {
		return err
	}
	var tmpCert Certificate
	switch certType {
	case CertificateTypeStakeRegistration:
		tmpCert = &StakeRegistrationCertificate{}
	case CertificateTypeStakeDeregistration:
		tmpCert = &StakeDeregistrationCertificate{}
	case CertificateTypeStakeDelegation:
		tmpCert = &StakeDelegationCertificate{}
	case CertificateTypePoolRegistration:
		tmpCert = &PoolRegistrationCertificate{}
	case CertificateTypePoolRetirement:
		tmpCert = &PoolRetirementCertificate{}
	case CertificateTypeGenesisKeyDelegation:
		tmpCert = &GenesisKeyDelegationCertificate{}
	case CertificateTypeMoveInstantaneousRewards:
		tmpCert = &MoveInstantaneousRewardsCertificate{}
	default:
		return cbor.Malformedf("unknown certificate type: %d", certType)
	}
	// Decode cert
	if err := cbor.DecodeExact(data, tmpCert); err != nil {
		return err
	}
	// certType is known within uint range
	c.Type = uint(certType) // #nosec G115
	c.Certificate = tmpCert
	return nil
}

func (c CertificateWrapper) MarshalCBOR() ([]byte, error) {
	return cbor.Encode(c.Certificate)
}

// Certificate is a closed sum over the certificate types
type Certificate interface {
	isCertificate()
	Cbor() []byte
	Utxorpc() *utxorpc.Certificate
	Type() uint
	// Witnesses returns the credentials that must sign a transaction carrying the certificate
	Witnesses() []Credential
}

// certificateCbor returns the stored CBOR of a decoded certificate or encodes
// its fields without going through its own MarshalCBOR
func certificateCbor(stored []byte, cert any) ([]byte, error) {
	if len(stored) > 0 {
		return stored, nil
	}
	return cbor.EncodeGeneric(cert)
}

type StakeRegistrationCertificate struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	CertType        uint
	StakeCredential Credential
}

func NewStakeRegistrationCertificate(cred Credential) *StakeRegistrationCertificate {
	return &StakeRegistrationCertificate{
		CertType:        CertificateTypeStakeRegistration,
		StakeCredential: cred,
	}
}

func (c StakeRegistrationCertificate) isCertificate() {}

func (c *StakeRegistrationCertificate) UnmarshalCBOR(cborData []byte) error {
	type tStakeRegistrationCertificate StakeRegistrationCertificate
	var tmp tStakeRegistrationCertificate
	if err := cbor.DecodeExact(cborData, &tmp); err != nil {
		return err
	}
	*c = StakeRegistrationCertificate(tmp)
	c.SetCbor(cborData)
	return nil
}

func (c *StakeRegistrationCertificate) MarshalCBOR() ([]byte, error) {
	return certificateCbor(c.Cbor(), c)
}

func (c *StakeRegistrationCertificate) Utxorpc() *utxorpc.Certificate {
	return &utxorpc.Certificate{
		Certificate: &utxorpc.Certificate_StakeRegistration{
			StakeRegistration: c.StakeCredential.Utxorpc(),
		},
	}
}

func (c *StakeRegistrationCertificate) Type() uint {
	return c.CertType
}

// Registration does not need the stake key's signature
func (c *StakeRegistrationCertificate) Witnesses() []Credential {
	return nil
}

type StakeDeregistrationCertificate struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	CertType        uint
	StakeCredential Credential
}

func NewStakeDeregistrationCertificate(cred Credential) *StakeDeregistrationCertificate {
	return &StakeDeregistrationCertificate{
		CertType:        CertificateTypeStakeDeregistration,
		StakeCredential: cred,
	}
}

func (c StakeDeregistrationCertificate) isCertificate() {}

func (c *StakeDeregistrationCertificate) UnmarshalCBOR(cborData []byte) error {
	type tStakeDeregistrationCertificate StakeDeregistrationCertificate
	var tmp tStakeDeregistrationCertificate
	if err := cbor.DecodeExact(cborData, &tmp); err != nil {
		return err
	}
	*c = StakeDeregistrationCertificate(tmp)
	c.SetCbor(cborData)
	return nil
}

func (c *StakeDeregistrationCertificate) MarshalCBOR() ([]byte, error) {
	return certificateCbor(c.Cbor(), c)
}

func (c *StakeDeregistrationCertificate) Utxorpc() *utxorpc.Certificate {
	return &utxorpc.Certificate{
		Certificate: &utxorpc.Certificate_StakeDeregistration{
			StakeDeregistration: c.StakeCredential.Utxorpc(),
		},
	}
}

func (c *StakeDeregistrationCertificate) Type() uint {
	return c.CertType
}

func (c *StakeDeregistrationCertificate) Witnesses() []Credential {
	return []Credential{c.StakeCredential}
}

type StakeDelegationCertificate struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	CertType        uint
	StakeCredential Credential
	PoolKeyHash     PoolKeyHash
}

func NewStakeDelegationCertificate(
	cred Credential,
	pool PoolKeyHash,
) *StakeDelegationCertificate {
	return &StakeDelegationCertificate{
		CertType:        CertificateTypeStakeDelegation,
		StakeCredential: cred,
		PoolKeyHash:     pool,
	}
}

func (c StakeDelegationCertificate) isCertificate() {}

func (c *StakeDelegationCertificate) UnmarshalCBOR(cborData []byte) error {
	type tStakeDelegationCertificate StakeDelegationCertificate
	var tmp tStakeDelegationCertificate
	if err := cbor.DecodeExact(cborData, &tmp); err != nil {
		return err
	}
	*c = StakeDelegationCertificate(tmp)
	c.SetCbor(cborData)
	return nil
}

func (c *StakeDelegationCertificate) MarshalCBOR() ([]byte, error) {
	return certificateCbor(c.Cbor(), c)
}

func (c *StakeDelegationCertificate) Utxorpc() *utxorpc.Certificate {
	return &utxorpc.Certificate{
		Certificate: &utxorpc.Certificate_StakeDelegation{
			StakeDelegation: &utxorpc.StakeDelegationCert{
				StakeCredential: c.StakeCredential.Utxorpc(),
				PoolKeyhash:     c.PoolKeyHash.Bytes(),
			},
		},
	}
}

func (c *StakeDelegationCertificate) Type() uint {
	return c.CertType
}

func (c *StakeDelegationCertificate) Witnesses() []Credential {
	return []Credential{c.StakeCredential}
}

type PoolMetadataHash = Blake2b256

type PoolMetadata struct {
	cbor.StructAsArray
	Url  string
	Hash PoolMetadataHash
}

func (p *PoolMetadata) Utxorpc() *utxorpc.PoolMetadata {
	return &utxorpc.PoolMetadata{
		Url:  p.Url,
		Hash: p.Hash.Bytes(),
	}
}

const (
	PoolRelayTypeSingleHostAddress = 0
	PoolRelayTypeSingleHostName    = 1
	PoolRelayTypeMultiHostName     = 2

	// Maximum length of a relay DNS name and a metadata URL
	MaxPoolRelayHostnameLength = 64
)

type PoolRelay struct {
	Type     int     `json:"type"`
	Port     *uint32 `json:"port,omitempty"`
	Ipv4     net.IP  `json:"ipv4,omitempty"`
	Ipv6     net.IP  `json:"ipv6,omitempty"`
	Hostname *string `json:"hostname,omitempty"`
}

func (p *PoolRelay) UnmarshalCBOR(data []byte) error {
	tmpId, err := cbor.DecodeIdFromList(data)
	if err != nil {
		return err
	}
	tmpRelay := PoolRelay{Type: tmpId}
	switch tmpId {
	case PoolRelayTypeSingleHostAddress:
		var tmpData struct {
			cbor.StructAsArray
			Type uint
			Port *uint32
			Ipv4 *[]byte
			Ipv6 *[]byte
		}
		if err := cbor.DecodeExact(data, &tmpData); err != nil {
			return err
		}
		tmpRelay.Port = tmpData.Port
		if tmpData.Ipv4 != nil {
			if len(*tmpData.Ipv4) != net.IPv4len {
				return cbor.Malformedf("invalid relay IPv4 length %d", len(*tmpData.Ipv4))
			}
			tmpRelay.Ipv4 = net.IP(*tmpData.Ipv4)
		}
		if tmpData.Ipv6 != nil {
			if len(*tmpData.Ipv6) != net.IPv6len {
				return cbor.Malformedf("invalid relay IPv6 length %d", len(*tmpData.Ipv6))
			}
			tmpRelay.Ipv6 = net.IP(*tmpData.Ipv6)
		}
	case PoolRelayTypeSingleHostName:
		var tmpData struct {
			cbor.StructAsArray
			Type     uint
			Port     *uint32
			Hostname string
		}
		if err := cbor.DecodeExact(data, &tmpData); err != nil {
			return err
		}
		tmpRelay.Port = tmpData.Port
		tmpRelay.Hostname = &tmpData.Hostname
	case PoolRelayTypeMultiHostName:
		var tmpData struct {
			cbor.StructAsArray
			Type     uint
			Hostname string
		}
		if err := cbor.DecodeExact(data, &tmpData); err != nil {
			return err
		}
		tmpRelay.Hostname = &tmpData.Hostname
	default:
		return cbor.Malformedf("invalid relay type: %d", tmpId)
	}
	*p = tmpRelay
	return nil
}

func (p PoolRelay) MarshalCBOR() ([]byte, error) {
	var port any
	if p.Port != nil {
		port = *p.Port
	}
	var hostname string
	if p.Hostname != nil {
		hostname = *p.Hostname
	}
	switch p.Type {
	case PoolRelayTypeSingleHostAddress:
		var ipv4, ipv6 any
		if p.Ipv4 != nil {
			ipv4 = []byte(p.Ipv4.To4())
		}
		if p.Ipv6 != nil {
			ipv6 = []byte(p.Ipv6.To16())
		}
		return cbor.Encode([]any{p.Type, port, ipv4, ipv6})
	case PoolRelayTypeSingleHostName:
		return cbor.Encode([]any{p.Type, port, hostname})
	case PoolRelayTypeMultiHostName:
		return cbor.Encode([]any{p.Type, hostname})
	}
	return nil, invalidValue("PoolRelay", "invalid relay type %d", p.Type)
}

func (p *PoolRelay) Utxorpc() *utxorpc.Relay {
	ret := &utxorpc.Relay{}
	if p.Port != nil {
		ret.Port = *p.Port
	}
	if p.Ipv4 != nil {
		ret.IpV4 = []byte(p.Ipv4.To4())
	}
	if p.Ipv6 != nil {
		ret.IpV6 = []byte(p.Ipv6.To16())
	}
	return ret
}

type PoolRegistrationCertificate struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	CertType      uint
	Operator      PoolKeyHash
	VrfKeyHash    VrfKeyHash
	Pledge        uint64
	Cost          uint64
	Margin        cbor.Rat
	RewardAccount Address
	PoolOwners    cbor.SetType[AddrKeyHash]
	Relays        []PoolRelay
	PoolMetadata  *PoolMetadata
}

// PoolParams holds the parameters of a stake pool registration
type PoolParams struct {
	Operator      PoolKeyHash
	VrfKeyHash    VrfKeyHash
	Pledge        uint64
	Cost          uint64
	Margin        *big.Rat
	RewardAccount Address
	PoolOwners    []AddrKeyHash
	Relays        []PoolRelay
	PoolMetadata  *PoolMetadata
}

func NewPoolRegistrationCertificate(
	params PoolParams,
) (*PoolRegistrationCertificate, error) {
	if params.Margin == nil || params.Margin.Sign() < 0 ||
		params.Margin.Cmp(big.NewRat(1, 1)) > 0 {
		return nil, invalidValue(
			"PoolRegistrationCertificate",
			"margin must be between 0 and 1",
		)
	}
	if !params.RewardAccount.IsReward() {
		return nil, invalidValue(
			"PoolRegistrationCertificate",
			"reward account must be a stake address",
		)
	}
	for _, relay := range params.Relays {
		if relay.Hostname != nil &&
			len(*relay.Hostname) > MaxPoolRelayHostnameLength {
			return nil, invalidValue(
				"PoolRegistrationCertificate",
				"relay hostname exceeds %d bytes",
				MaxPoolRelayHostnameLength,
			)
		}
	}
	if params.PoolMetadata != nil &&
		len(params.PoolMetadata.Url) > MaxPoolRelayHostnameLength {
		return nil, invalidValue(
			"PoolRegistrationCertificate",
			"metadata URL exceeds %d bytes",
			MaxPoolRelayHostnameLength,
		)
	}
	return &PoolRegistrationCertificate{
		CertType:      CertificateTypePoolRegistration,
		Operator:      params.Operator,
		VrfKeyHash:    params.VrfKeyHash,
		Pledge:        params.Pledge,
		Cost:          params.Cost,
		Margin:        cbor.Rat{Rat: new(big.Rat).Set(params.Margin)},
		RewardAccount: params.RewardAccount,
		PoolOwners:    cbor.NewSetType(params.PoolOwners, false),
		Relays:        params.Relays,
		PoolMetadata:  params.PoolMetadata,
	}, nil
}

func (c PoolRegistrationCertificate) isCertificate() {}

func (c *PoolRegistrationCertificate) UnmarshalCBOR(cborData []byte) error {
	type tPoolRegistrationCertificate PoolRegistrationCertificate
	var tmp tPoolRegistrationCertificate
	if err := cbor.DecodeExact(cborData, &tmp); err != nil {
		return err
	}
	*c = PoolRegistrationCertificate(tmp)
	c.SetCbor(cborData)
	return nil
}

func (c *PoolRegistrationCertificate) MarshalCBOR() ([]byte, error) {
	return certificateCbor(c.Cbor(), c)
}

func (c *PoolRegistrationCertificate) Utxorpc() *utxorpc.Certificate {
	tmpRelays := make([]*utxorpc.Relay, 0, len(c.Relays))
	for _, relay := range c.Relays {
		tmpRelays = append(tmpRelays, relay.Utxorpc())
	}
	tmpOwners := make([][]byte, 0, c.PoolOwners.Len())
	for _, owner := range c.PoolOwners.Items() {
		tmpOwners = append(tmpOwners, owner.Bytes())
	}
	ret := &utxorpc.PoolRegistrationCert{
		Operator:      c.Operator.Bytes(),
		VrfKeyhash:    c.VrfKeyHash.Bytes(),
		Pledge:        c.Pledge,
		Cost:          c.Cost,
		RewardAccount: c.RewardAccount.Bytes(),
		PoolOwners:    tmpOwners,
		Relays:        tmpRelays,
	}
	if c.Margin.Rat != nil {
		ret.Margin = &utxorpc.RationalNumber{
			Numerator:   int32(c.Margin.Num().Int64()),    // #nosec G115
			Denominator: uint32(c.Margin.Denom().Uint64()), // #nosec G115
		}
	}
	if c.PoolMetadata != nil {
		ret.PoolMetadata = c.PoolMetadata.Utxorpc()
	}
	return &utxorpc.Certificate{
		Certificate: &utxorpc.Certificate_PoolRegistration{
			PoolRegistration: ret,
		},
	}
}

func (c *PoolRegistrationCertificate) Type() uint {
	return c.CertType
}

// The operator and every owner sign a pool registration
func (c *PoolRegistrationCertificate) Witnesses() []Credential {
	ret := []Credential{NewKeyCredential(c.Operator)}
	for _, owner := range c.PoolOwners.Items() {
		if owner == c.Operator {
			continue
		}
		ret = append(ret, NewKeyCredential(owner))
	}
	return ret
}

type PoolRetirementCertificate struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	CertType    uint
	PoolKeyHash PoolKeyHash
	Epoch       uint64
}

func NewPoolRetirementCertificate(
	pool PoolKeyHash,
	epoch uint64,
) *PoolRetirementCertificate {
	return &PoolRetirementCertificate{
		CertType:    CertificateTypePoolRetirement,
		PoolKeyHash: pool,
		Epoch:       epoch,
	}
}

func (c PoolRetirementCertificate) isCertificate() {}

func (c *PoolRetirementCertificate) UnmarshalCBOR(cborData []byte) error {
	type tPoolRetirementCertificate PoolRetirementCertificate
	var tmp tPoolRetirementCertificate
	if err := cbor.DecodeExact(cborData, &tmp); err != nil {
		return err
	}
	*c = PoolRetirementCertificate(tmp)
	c.SetCbor(cborData)
	return nil
}

func (c *PoolRetirementCertificate) MarshalCBOR() ([]byte, error) {
	return certificateCbor(c.Cbor(), c)
}

func (c *PoolRetirementCertificate) Utxorpc() *utxorpc.Certificate {
	return &utxorpc.Certificate{
		Certificate: &utxorpc.Certificate_PoolRetirement{
			PoolRetirement: &utxorpc.PoolRetirementCert{
				PoolKeyhash: c.PoolKeyHash.Bytes(),
				Epoch:       c.Epoch,
			},
		},
	}
}

func (c *PoolRetirementCertificate) Type() uint {
	return c.CertType
}

func (c *PoolRetirementCertificate) Witnesses() []Credential {
	return []Credential{NewKeyCredential(c.PoolKeyHash)}
}

type GenesisKeyDelegationCertificate struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	CertType            uint
	GenesisHash         GenesisHash
	GenesisDelegateHash Blake2b224
	VrfKeyHash          VrfKeyHash
}

func (c GenesisKeyDelegationCertificate) isCertificate() {}

func (c *GenesisKeyDelegationCertificate) UnmarshalCBOR(cborData []byte) error {
	type tGenesisKeyDelegationCertificate GenesisKeyDelegationCertificate
	var tmp tGenesisKeyDelegationCertificate
	if err := cbor.DecodeExact(cborData, &tmp); err != nil {
		return err
	}
	*c = GenesisKeyDelegationCertificate(tmp)
	c.SetCbor(cborData)
	return nil
}

func (c *GenesisKeyDelegationCertificate) MarshalCBOR() ([]byte, error) {
	return certificateCbor(c.Cbor(), c)
}

func (c *GenesisKeyDelegationCertificate) Utxorpc() *utxorpc.Certificate {
	return &utxorpc.Certificate{
		Certificate: &utxorpc.Certificate_GenesisKeyDelegation{
			GenesisKeyDelegation: &utxorpc.GenesisKeyDelegationCert{
				GenesisHash:         c.GenesisHash.Bytes(),
				GenesisDelegateHash: c.GenesisDelegateHash.Bytes(),
				VrfKeyhash:          c.VrfKeyHash.Bytes(),
			},
		},
	}
}

func (c *GenesisKeyDelegationCertificate) Type() uint {
	return c.CertType
}

// Genesis delegation is authorized by a quorum of genesis keys, which is not
// known locally
func (c *GenesisKeyDelegationCertificate) Witnesses() []Credential {
	return nil
}

type MirSource int32

const (
	MirSourceReserves MirSource = 0
	MirSourceTreasury MirSource = 1
)

// MoveInstantaneousRewardsCertificateReward either pays individual reward
// accounts or moves coin to the other pot
type MoveInstantaneousRewardsCertificateReward struct {
	Source   uint
	Rewards  map[Credential]int64
	OtherPot uint64
}

func (r *MoveInstantaneousRewardsCertificateReward) UnmarshalCBOR(
	data []byte,
) error {
	var tmpRaw struct {
		cbor.StructAsArray
		Source uint
		Target cbor.RawMessage
	}
	if err := cbor.DecodeExact(data, &tmpRaw); err != nil {
		return err
	}
	if tmpRaw.Source > uint(MirSourceTreasury) {
		return cbor.Malformedf("unknown MIR source %d", tmpRaw.Source)
	}
	head, err := cbor.DecodeHead(tmpRaw.Target)
	if err != nil {
		return err
	}
	tmpReward := MoveInstantaneousRewardsCertificateReward{Source: tmpRaw.Source}
	if head.Major == cbor.CborTypeMap {
		if err := cbor.DecodeExact(tmpRaw.Target, &tmpReward.Rewards); err != nil {
			return err
		}
	} else {
		if err := cbor.DecodeExact(tmpRaw.Target, &tmpReward.OtherPot); err != nil {
			return err
		}
	}
	*r = tmpReward
	return nil
}

func (r MoveInstantaneousRewardsCertificateReward) MarshalCBOR() ([]byte, error) {
	if r.Rewards != nil {
		return cbor.Encode([]any{r.Source, r.Rewards})
	}
	return cbor.Encode([]any{r.Source, r.OtherPot})
}

type MoveInstantaneousRewardsCertificate struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	CertType uint
	Reward   MoveInstantaneousRewardsCertificateReward
}

func (c MoveInstantaneousRewardsCertificate) isCertificate() {}

func (c *MoveInstantaneousRewardsCertificate) UnmarshalCBOR(
	cborData []byte,
) error {
	type tMoveInstantaneousRewardsCertificate MoveInstantaneousRewardsCertificate
	var tmp tMoveInstantaneousRewardsCertificate
	if err := cbor.DecodeExact(cborData, &tmp); err != nil {
		return err
	}
	*c = MoveInstantaneousRewardsCertificate(tmp)
	c.SetCbor(cborData)
	return nil
}

func (c *MoveInstantaneousRewardsCertificate) MarshalCBOR() ([]byte, error) {
	return certificateCbor(c.Cbor(), c)
}

func (c *MoveInstantaneousRewardsCertificate) Utxorpc() *utxorpc.Certificate {
	tmpMirTargets := []*utxorpc.MirTarget{}
	for stakeCred, deltaCoin := range c.Reward.Rewards {
		tmpMirTargets = append(
			tmpMirTargets,
			&utxorpc.MirTarget{
				StakeCredential: stakeCred.Utxorpc(),
				DeltaCoin:       deltaCoin,
			},
		)
	}
	return &utxorpc.Certificate{
		Certificate: &utxorpc.Certificate_MirCert{
			MirCert: &utxorpc.MirCert{
				// potential integer overflow
				// #nosec G115
				From:     utxorpc.MirSource(c.Reward.Source + 1),
				To:       tmpMirTargets,
				OtherPot: c.Reward.OtherPot,
			},
		},
	}
}

func (c *MoveInstantaneousRewardsCertificate) Type() uint {
	return c.CertType
}

// MIR certificates are authorized by genesis delegates
func (c *MoveInstantaneousRewardsCertificate) Witnesses() []Credential {
	return nil
}
