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

package cbor

import (
	"encoding/binary"
	"io"
	"math"
)

// Head is a decoded CBOR item header: the major type plus its argument
type Head struct {
	// Major type, already shifted into the top 3 bits (e.g. CborTypeArray)
	Major uint8
	// Argument value. For strings, arrays and maps this is the length
	Arg uint64
	// Size of the header in bytes
	Size int
	// Indefinite-length item (Arg is meaningless)
	Indefinite bool
}

// HeadSize returns the number of bytes needed to encode a header with the given argument
func HeadSize(arg uint64) int {
	switch {
	case arg <= uint64(CborMaxUintSimple):
		return 1
	case arg <= math.MaxUint8:
		return 2
	case arg <= math.MaxUint16:
		return 3
	case arg <= math.MaxUint32:
		return 5
	default:
		return 9
	}
}

// UintSize returns the encoded size of an unsigned integer
func UintSize(val uint64) int {
	return HeadSize(val)
}

// AppendHead appends the minimal-length header for the given major type and argument
func AppendHead(dst []byte, major uint8, arg uint64) []byte {
	major &= CborTypeMask
	switch {
	case arg <= uint64(CborMaxUintSimple):
		return append(dst, major|uint8(arg))
	case arg <= math.MaxUint8:
		return append(dst, major|24, uint8(arg))
	case arg <= math.MaxUint16:
		return binary.BigEndian.AppendUint16(append(dst, major|25), uint16(arg))
	case arg <= math.MaxUint32:
		return binary.BigEndian.AppendUint32(append(dst, major|26), uint32(arg))
	default:
		return binary.BigEndian.AppendUint64(append(dst, major|27), arg)
	}
}

// EncodeHead returns the minimal-length header for the given major type and argument
func EncodeHead(major uint8, arg uint64) []byte {
	return AppendHead(make([]byte, 0, HeadSize(arg)), major, arg)
}

// EncodeArrayHeader returns a definite-length array header
func EncodeArrayHeader(length int) []byte {
	return EncodeHead(CborTypeArray, uint64(length)) // #nosec G115
}

// EncodeMapHeader returns a definite-length map header
func EncodeMapHeader(length int) []byte {
	return EncodeHead(CborTypeMap, uint64(length)) // #nosec G115
}

// DecodeHead parses the header at the start of data. It never reads past the
// end of data; short input is reported as truncated
func DecodeHead(data []byte) (Head, error) {
	if len(data) == 0 {
		return Head{}, &MalformedEncodingError{Err: io.ErrUnexpectedEOF}
	}
	ret := Head{
		Major: data[0] & CborTypeMask,
	}
	info := data[0] & 0x1f
	switch {
	case info <= CborMaxUintSimple:
		ret.Arg = uint64(info)
		ret.Size = 1
	case info == 24:
		ret.Size = 2
	case info == 25:
		ret.Size = 3
	case info == 26:
		ret.Size = 5
	case info == 27:
		ret.Size = 9
	case info == CborIndefinite:
		switch ret.Major {
		case CborTypeByteString, CborTypeTextString, CborTypeArray, CborTypeMap:
			ret.Indefinite = true
		case CborTypeSimpleFloat:
			// Break marker, only valid inside an indefinite-length item
			return Head{}, Malformedf("unexpected break marker")
		default:
			return Head{}, Malformedf(
				"indefinite length not allowed for major type %d",
				ret.Major>>5,
			)
		}
		ret.Size = 1
		return ret, nil
	default:
		// 28-30 are reserved
		return Head{}, Malformedf("reserved additional info value %d", info)
	}
	if len(data) < ret.Size {
		return Head{}, &MalformedEncodingError{Err: io.ErrUnexpectedEOF}
	}
	switch ret.Size {
	case 2:
		ret.Arg = uint64(data[1])
	case 3:
		ret.Arg = uint64(binary.BigEndian.Uint16(data[1:3]))
	case 5:
		ret.Arg = uint64(binary.BigEndian.Uint32(data[1:5]))
	case 9:
		ret.Arg = binary.BigEndian.Uint64(data[1:9])
	}
	return ret, nil
}

// Canonical returns true if the header uses the shortest possible encoding
func (h Head) Canonical() bool {
	if h.Indefinite {
		return false
	}
	// Simple values and floats use the size to select the float width
	if h.Major == CborTypeSimpleFloat {
		return true
	}
	return h.Size == HeadSize(h.Arg)
}

// ArrayInfo extracts array item count and header size from CBOR array data.
// Returns (count, headerSize, isIndefinite). Count is -1 for invalid headers.
func ArrayInfo(data []byte) (int, uint32, bool) {
	return containerInfo(data, CborTypeArray)
}

// MapInfo extracts map item count and header size from CBOR map data.
// Returns (count, headerSize, isIndefinite). Count is -1 for invalid headers.
func MapInfo(data []byte) (int, uint32, bool) {
	return containerInfo(data, CborTypeMap)
}

func containerInfo(data []byte, major uint8) (int, uint32, bool) {
	head, err := DecodeHead(data)
	if err != nil || head.Major != major {
		return -1, 0, false
	}
	if head.Indefinite {
		return 0, 1, true
	}
	// Anything larger could not be backed by the input anyway
	if head.Arg > uint64(math.MaxInt32) {
		return -1, 0, false
	}
	return int(head.Arg), uint32(head.Size), false // #nosec G115
}

// ArrayHeaderSize returns the CBOR header size in bytes for an array of given length.
func ArrayHeaderSize(length int) uint32 {
	return uint32(HeadSize(uint64(length))) // #nosec G115
}
