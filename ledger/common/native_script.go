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
	"slices"

	"github.com/blinklabs-io/ledgerkit/cbor"
)

const (
	NativeScriptTypePubkey           = 0
	NativeScriptTypeAll              = 1
	NativeScriptTypeAny              = 2
	NativeScriptTypeNofK             = 3
	NativeScriptTypeInvalidBefore    = 4
	NativeScriptTypeInvalidHereafter = 5
)

// NativeScript is a closed sum over the timelock/multisig script forms. The
// item is one of the NativeScript* types below
type NativeScript struct {
	cbor.DecodeStoreCbor
	item any
}

func (NativeScript) isScript() {}

func NewNativeScriptPubkey(hash AddrKeyHash) NativeScript {
	return NativeScript{
		item: &NativeScriptPubkey{Type: NativeScriptTypePubkey, Hash: hash},
	}
}

func NewNativeScriptAll(scripts ...NativeScript) NativeScript {
	return NativeScript{
		item: &NativeScriptAll{
			Type:    NativeScriptTypeAll,
			Scripts: slices.Clone(scripts),
		},
	}
}

func NewNativeScriptAny(scripts ...NativeScript) NativeScript {
	return NativeScript{
		item: &NativeScriptAny{
			Type:    NativeScriptTypeAny,
			Scripts: slices.Clone(scripts),
		},
	}
}

// NewNativeScriptNofK requires n of the provided scripts to be satisfied
func NewNativeScriptNofK(n uint, scripts ...NativeScript) (NativeScript, error) {
	if n > uint(len(scripts)) {
		return NativeScript{}, invalidValue(
			"NativeScript",
			"required count %d exceeds %d scripts",
			n,
			len(scripts),
		)
	}
	return NativeScript{
		item: &NativeScriptNofK{
			Type:    NativeScriptTypeNofK,
			N:       n,
			Scripts: slices.Clone(scripts),
		},
	}, nil
}

func NewNativeScriptInvalidBefore(slot uint64) NativeScript {
	return NativeScript{
		item: &NativeScriptInvalidBefore{
			Type: NativeScriptTypeInvalidBefore,
			Slot: slot,
		},
	}
}

func NewNativeScriptInvalidHereafter(slot uint64) NativeScript {
	return NativeScript{
		item: &NativeScriptInvalidHereafter{
			Type: NativeScriptTypeInvalidHereafter,
			Slot: slot,
		},
	}
}

func NewNativeScriptFromCbor(cborData []byte) (NativeScript, error) {
	var ret NativeScript
	if err := ret.UnmarshalCBOR(cborData); err != nil {
		return NativeScript{}, err
	}
	return ret, nil
}

func (n *NativeScript) Item() any {
	return n.item
}

func (n *NativeScript) UnmarshalCBOR(data []byte) error {
	id, err := cbor.DecodeIdFromList(data)
	if err != nil {
		return err
	}
	var tmpData any
	switch id {
	case NativeScriptTypePubkey:
		tmpData = &NativeScriptPubkey{}
	case NativeScriptTypeAll:
		tmpData = &NativeScriptAll{}
	case NativeScriptTypeAny:
		tmpData = &NativeScriptAny{}
	case NativeScriptTypeNofK:
		tmpData = &NativeScriptNofK{}
	case NativeScriptTypeInvalidBefore:
		tmpData = &NativeScriptInvalidBefore{}
	case NativeScriptTypeInvalidHereafter:
		tmpData = &NativeScriptInvalidHereafter{}
	default:
		return cbor.Malformedf("unknown native script type %d", id)
	}
	if err := cbor.DecodeExact(data, tmpData); err != nil {
		return err
	}
	n.SetCbor(data)
	n.item = tmpData
	return nil
}

func (n NativeScript) MarshalCBOR() ([]byte, error) {
	if cborData := n.Cbor(); len(cborData) > 0 {
		return cborData, nil
	}
	if n.item == nil {
		return nil, cbor.Malformedf("empty native script")
	}
	return cbor.Encode(n.item)
}

func (n NativeScript) Hash() ScriptHash {
	return Blake2b224Hash(
		slices.Concat(
			[]byte{ScriptRefTypeNativeScript},
			n.RawScriptBytes(),
		),
	)
}

func (n NativeScript) RawScriptBytes() []byte {
	ret, err := n.MarshalCBOR()
	if err != nil {
		return nil
	}
	return ret
}

// RequiredKeyHashes returns every key hash referenced by the script, in
// first-seen order. A transaction spending from the script needs at most
// these signatures
func (n NativeScript) RequiredKeyHashes() []AddrKeyHash {
	var ret []AddrKeyHash
	var walk func(NativeScript)
	walk = func(s NativeScript) {
		switch item := s.item.(type) {
		case *NativeScriptPubkey:
			if !slices.Contains(ret, item.Hash) {
				ret = append(ret, item.Hash)
			}
		case *NativeScriptAll:
			for _, tmp := range item.Scripts {
				walk(tmp)
			}
		case *NativeScriptAny:
			for _, tmp := range item.Scripts {
				walk(tmp)
			}
		case *NativeScriptNofK:
			for _, tmp := range item.Scripts {
				walk(tmp)
			}
		}
	}
	walk(n)
	return ret
}

type NativeScriptPubkey struct {
	cbor.StructAsArray
	Type uint
	Hash AddrKeyHash
}

type NativeScriptAll struct {
	cbor.StructAsArray
	Type    uint
	Scripts []NativeScript
}

type NativeScriptAny struct {
	cbor.StructAsArray
	Type    uint
	Scripts []NativeScript
}

type NativeScriptNofK struct {
	cbor.StructAsArray
	Type    uint
	N       uint
	Scripts []NativeScript
}

type NativeScriptInvalidBefore struct {
	cbor.StructAsArray
	Type uint
	Slot uint64
}

type NativeScriptInvalidHereafter struct {
	cbor.StructAsArray
	Type uint
	Slot uint64
}
