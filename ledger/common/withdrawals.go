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
	"slices"

	"github.com/blinklabs-io/ledgerkit/cbor"
)

// Withdrawal drains rewards from a reward account
type Withdrawal struct {
	Address Address
	Amount  uint64
}

// Withdrawals maps reward accounts to withdrawn amounts. The encoding is a map
// sorted by address bytes
type Withdrawals struct {
	entries []Withdrawal
}

// NewWithdrawals builds a withdrawal map. Non-reward addresses and duplicate
// addresses are rejected
func NewWithdrawals(entries ...Withdrawal) (Withdrawals, error) {
	var ret Withdrawals
	for _, entry := range entries {
		if err := ret.Add(entry.Address, entry.Amount); err != nil {
			return Withdrawals{}, err
		}
	}
	return ret, nil
}

// Add appends a withdrawal for addr
func (w *Withdrawals) Add(addr Address, amount uint64) error {
	if !addr.IsReward() {
		return invalidValue(
			"Withdrawals",
			"%s is not a reward address",
			addr.String(),
		)
	}
	if _, ok := w.Get(addr); ok {
		return invalidValue(
			"Withdrawals",
			"duplicate withdrawal for %s",
			addr.String(),
		)
	}
	w.entries = append(w.entries, Withdrawal{Address: addr, Amount: amount})
	w.sort()
	return nil
}

func (w *Withdrawals) sort() {
	slices.SortFunc(w.entries, func(a, b Withdrawal) int {
		return bytes.Compare(a.Address.Bytes(), b.Address.Bytes())
	})
}

// Get returns the amount withdrawn from addr
func (w Withdrawals) Get(addr Address) (uint64, bool) {
	for _, entry := range w.entries {
		if entry.Address.Equal(addr) {
			return entry.Amount, true
		}
	}
	return 0, false
}

// Entries returns the withdrawals in canonical order
func (w Withdrawals) Entries() []Withdrawal {
	return slices.Clone(w.entries)
}

func (w Withdrawals) Len() int {
	return len(w.entries)
}

// Total returns the sum of all withdrawn amounts
func (w Withdrawals) Total() (uint64, error) {
	var ret uint64
	for _, entry := range w.entries {
		if ret+entry.Amount < ret {
			return 0, invalidValue("Withdrawals", "total overflows")
		}
		ret += entry.Amount
	}
	return ret, nil
}

func (w Withdrawals) MarshalCBOR() ([]byte, error) {
	ret := cbor.EncodeMapHeader(len(w.entries))
	for _, entry := range w.entries {
		keyCbor, err := cbor.Encode(entry.Address.Bytes())
		if err != nil {
			return nil, err
		}
		ret = append(ret, keyCbor...)
		ret = cbor.AppendHead(ret, cbor.CborTypeUint, entry.Amount)
	}
	return ret, nil
}

func (w *Withdrawals) UnmarshalCBOR(cborData []byte) error {
	var tmpData map[cbor.ByteString]uint64
	if err := cbor.DecodeExact(cborData, &tmpData); err != nil {
		return err
	}
	tmpEntries := make([]Withdrawal, 0, len(tmpData))
	for addrBytes, amount := range tmpData {
		addr, err := NewAddressFromBytes(addrBytes.Bytes())
		if err != nil {
			return err
		}
		if !addr.IsReward() {
			return cbor.Malformedf("withdrawal from non-reward address")
		}
		tmpEntries = append(tmpEntries, Withdrawal{Address: addr, Amount: amount})
	}
	w.entries = tmpEntries
	w.sort()
	return nil
}
