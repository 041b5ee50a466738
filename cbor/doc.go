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

// Package cbor provides CBOR encoding and decoding for ledger data structures.
//
// It wraps github.com/fxamacker/cbor/v2 with a deterministic encoder (definite
// lengths, shortest-form integers, core-deterministic map key order) and a strict
// decoder that reports every failure as a *MalformedEncodingError.
//
// Embeddable types for struct encoding:
//   - StructAsArray: Embed to encode struct fields as CBOR array instead of map
//   - DecodeStoreCbor: Embed to preserve original CBOR bytes for hashing
//
// Utility types:
//   - RawMessage: Deferred decoding (like json.RawMessage)
//   - ByteString: Bytestrings that can be used as map keys
//   - SetType: Lists that remember whether they carried the set tag (258)
//   - Tag, RawTag: CBOR semantic tags
//   - Value, LazyValue: Generic decoding that keeps the original bytes
//
// Types that embed DecodeStoreCbor follow this pattern:
//
//	func (m *MyType) UnmarshalCBOR(data []byte) error {
//	    type tMyType MyType
//	    var tmp tMyType
//	    if err := cbor.DecodeExact(data, &tmp); err != nil {
//	        return err
//	    }
//	    *m = MyType(tmp)
//	    m.SetCbor(data)
//	    return nil
//	}
//
// Hashes must be computed over Cbor() rather than over a fresh encoding, since
// data from the network is not guaranteed to be canonical.
package cbor
