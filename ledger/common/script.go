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
	ScriptRefTypeNativeScript = 0
	ScriptRefTypePlutusV1     = 1
	ScriptRefTypePlutusV2     = 2
	ScriptRefTypePlutusV3     = 3
)

type Script interface {
	isScript()
	Hash() ScriptHash
	RawScriptBytes() []byte
}

// ScriptRef is a script carried by a transaction output
type ScriptRef struct {
	Type   uint
	Script Script
}

// NewScriptRef wraps a script for use as an output's reference script
func NewScriptRef(script Script) (ScriptRef, error) {
	var scriptType uint
	switch script.(type) {
	case NativeScript, *NativeScript:
		scriptType = ScriptRefTypeNativeScript
	case PlutusV1Script:
		scriptType = ScriptRefTypePlutusV1
	case PlutusV2Script:
		scriptType = ScriptRefTypePlutusV2
	case PlutusV3Script:
		scriptType = ScriptRefTypePlutusV3
	default:
		return ScriptRef{}, invalidValue("ScriptRef", "unsupported script type %T", script)
	}
	return ScriptRef{Type: scriptType, Script: script}, nil
}

func (s *ScriptRef) UnmarshalCBOR(data []byte) error {
	// Unwrap outer CBOR tag
	var tmpTag cbor.Tag
	if err := cbor.DecodeExact(data, &tmpTag); err != nil {
		return err
	}
	innerCbor, ok := tmpTag.Content.([]byte)
	if !ok || tmpTag.Number != cbor.CborTagCbor {
		return cbor.Malformedf("script ref must be wrapped CBOR")
	}
	// Determine script type
	var rawScript struct {
		cbor.StructAsArray
		Type uint
		Raw  cbor.RawMessage
	}
	if err := cbor.DecodeExact(innerCbor, &rawScript); err != nil {
		return err
	}
	var tmpScript Script
	switch rawScript.Type {
	case ScriptRefTypeNativeScript:
		var tmp NativeScript
		if err := cbor.DecodeExact(rawScript.Raw, &tmp); err != nil {
			return err
		}
		tmpScript = tmp
	case ScriptRefTypePlutusV1:
		var tmp PlutusV1Script
		if err := cbor.DecodeExact(rawScript.Raw, &tmp); err != nil {
			return err
		}
		tmpScript = tmp
	case ScriptRefTypePlutusV2:
		var tmp PlutusV2Script
		if err := cbor.DecodeExact(rawScript.Raw, &tmp); err != nil {
			return err
		}
		tmpScript = tmp
	case ScriptRefTypePlutusV3:
		var tmp PlutusV3Script
		if err := cbor.DecodeExact(rawScript.Raw, &tmp); err != nil {
			return err
		}
		tmpScript = tmp
	default:
		return cbor.Malformedf("unknown script type %d", rawScript.Type)
	}
	s.Type = rawScript.Type
	s.Script = tmpScript
	return nil
}

func (s ScriptRef) MarshalCBOR() ([]byte, error) {
	tmpData := []any{
		s.Type,
		s.Script,
	}
	tmpDataCbor, err := cbor.Encode(tmpData)
	if err != nil {
		return nil, err
	}
	tmpTag := cbor.Tag{
		Number:  cbor.CborTagCbor,
		Content: tmpDataCbor,
	}
	return cbor.Encode(tmpTag)
}

type PlutusV1Script []byte

func (PlutusV1Script) isScript() {}

func (s PlutusV1Script) Hash() ScriptHash {
	return Blake2b224Hash(
		slices.Concat(
			[]byte{ScriptRefTypePlutusV1},
			[]byte(s),
		),
	)
}

func (s PlutusV1Script) RawScriptBytes() []byte {
	return []byte(s)
}

type PlutusV2Script []byte

func (PlutusV2Script) isScript() {}

func (s PlutusV2Script) Hash() ScriptHash {
	return Blake2b224Hash(
		slices.Concat(
			[]byte{ScriptRefTypePlutusV2},
			[]byte(s),
		),
	)
}

func (s PlutusV2Script) RawScriptBytes() []byte {
	return []byte(s)
}

type PlutusV3Script []byte

func (PlutusV3Script) isScript() {}

func (s PlutusV3Script) Hash() ScriptHash {
	return Blake2b224Hash(
		slices.Concat(
			[]byte{ScriptRefTypePlutusV3},
			[]byte(s),
		),
	)
}

func (s PlutusV3Script) RawScriptBytes() []byte {
	return []byte(s)
}
