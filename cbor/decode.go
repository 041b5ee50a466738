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
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"sync"

	_cbor "github.com/fxamacker/cbor/v2"
	"github.com/jinzhu/copier"
)

var (
	cachedDecMode     _cbor.DecMode
	cachedDecModeErr  error
	cachedDecModeOnce sync.Once
)

// getDecMode returns a cached DecMode, initializing it on first use.
// Returns the cached error if initialization failed.
func getDecMode() (_cbor.DecMode, error) {
	cachedDecModeOnce.Do(func() {
		decOptions := _cbor.DecOptions{
			ExtraReturnErrors: _cbor.ExtraDecErrorUnknownField,
			// This defaults to 32, but there is data in the wild using >64 nested levels
			MaxNestedLevels: 256,
			DupMapKey:       _cbor.DupMapKeyEnforcedAPF,
			IndefLength:     _cbor.IndefLengthAllowed,
			UTF8:            _cbor.UTF8RejectInvalid,
		}
		cachedDecMode, cachedDecModeErr = decOptions.DecModeWithTags(customTagSet)
	})
	return cachedDecMode, cachedDecModeErr
}

// Decode decodes the first CBOR item in dataBytes into dest and returns the number
// of bytes consumed. Any failure is returned as a *MalformedEncodingError. Trailing
// data after the first item is not an error
func Decode(dataBytes []byte, dest any) (int, error) {
	decMode, err := getDecMode()
	if err != nil {
		return 0, err
	}
	if len(dataBytes) == 0 {
		return 0, &MalformedEncodingError{Err: io.ErrUnexpectedEOF}
	}
	dec := decMode.NewDecoder(bytes.NewReader(dataBytes))
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return 0, NewMalformedEncodingError(err)
	}
	return dec.NumBytesRead(), nil
}

// DecodeExact decodes a single CBOR item that must span all of dataBytes
func DecodeExact(dataBytes []byte, dest any) error {
	bytesRead, err := Decode(dataBytes, dest)
	if err != nil {
		return err
	}
	if bytesRead != len(dataBytes) {
		return &MalformedEncodingError{
			Offset: bytesRead,
			Err: fmt.Errorf(
				"%d bytes of trailing data after item",
				len(dataBytes)-bytesRead,
			),
		}
	}
	return nil
}

// IsNull returns true if data starts with a CBOR null or undefined value
func IsNull(data []byte) bool {
	return len(data) > 0 && (data[0] == CborNull || data[0] == CborUndefined)
}

// DecodeExactNotNull is DecodeExact for items that are never null. A null or
// undefined item is rejected instead of leaving dest at its zero value
func DecodeExactNotNull(dataBytes []byte, dest any) error {
	if IsNull(dataBytes) {
		return Malformedf("unexpected null value 0x%02x", dataBytes[0])
	}
	return DecodeExact(dataBytes, dest)
}

// Extract the first item from a CBOR list. This will return the first item from the
// provided list if it's numeric and an error otherwise
func DecodeIdFromList(cborData []byte) (int, error) {
	// If the list length is <= the max simple uint and the first list value
	// is <= the max simple uint, then we can extract the value straight from
	// the byte slice
	listLen, err := ListLength(cborData)
	if err != nil {
		return 0, err
	}
	if listLen == 0 {
		return 0, Malformedf("cannot return first item from empty list")
	}
	if listLen < int(CborMaxUintSimple) && len(cborData) > 1 {
		if cborData[1] <= CborMaxUintSimple {
			return int(cborData[1]), nil
		}
	}
	// If we couldn't use the shortcut above, actually decode the list
	var tmp []RawMessage
	if _, err := Decode(cborData, &tmp); err != nil {
		return 0, err
	}
	if len(tmp) == 0 {
		return 0, Malformedf("cannot return first item from empty list")
	}
	var id uint64
	if _, err := Decode(tmp[0], &id); err != nil {
		return 0, Malformedf("first list item was not numeric: %w", err)
	}
	if id > uint64(math.MaxInt32) {
		return 0, Malformedf("decoded numeric value too large: %d", id)
	}
	return int(id), nil
}

// ListLength determines the length of a CBOR list
func ListLength(cborData []byte) (int, error) {
	count, _, indef := ArrayInfo(cborData)
	if count < 0 {
		if len(cborData) == 0 {
			return 0, &MalformedEncodingError{Err: io.ErrUnexpectedEOF}
		}
		return 0, Malformedf("expected array, found major type %d", cborData[0]>>5)
	}
	if !indef {
		return count, nil
	}
	// Indefinite-length lists must be walked
	var tmp []RawMessage
	if _, err := Decode(cborData, &tmp); err != nil {
		return 0, err
	}
	return len(tmp), nil
}

// DecodeById decodes CBOR list data by the leading value of the list. It expects CBOR
// data and a map of numbers to object pointers to decode into
func DecodeById(
	cborData []byte,
	idMap map[int]any,
) (any, error) {
	id, err := DecodeIdFromList(cborData)
	if err != nil {
		return nil, err
	}
	ret, ok := idMap[id]
	if !ok || ret == nil {
		return nil, Malformedf("found unknown ID: %d", id)
	}
	if err := DecodeExact(cborData, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

var (
	decodeGenericTypeCache      = map[reflect.Type]reflect.Type{}
	decodeGenericTypeCacheMutex sync.RWMutex
)

// DecodeGeneric decodes the specified CBOR into the destination object without using the
// destination object's UnmarshalCBOR() function
func DecodeGeneric(cborData []byte, dest any) error {
	valueDest := reflect.ValueOf(dest)
	if valueDest.Kind() != reflect.Pointer ||
		valueDest.Elem().Kind() != reflect.Struct {
		return errors.New("destination must be a pointer to a struct")
	}
	typeDest := valueDest.Elem().Type()
	// Check type cache
	decodeGenericTypeCacheMutex.RLock()
	tmpTypeDest, ok := decodeGenericTypeCache[typeDest]
	decodeGenericTypeCacheMutex.RUnlock()
	if !ok {
		tmpTypeDest = genericStructType(typeDest)
		decodeGenericTypeCacheMutex.Lock()
		decodeGenericTypeCache[typeDest] = tmpTypeDest
		decodeGenericTypeCacheMutex.Unlock()
	}
	// Create temporary object with the type created above
	tmpDest := reflect.New(tmpTypeDest)
	// Decode CBOR into temporary object
	if err := DecodeExact(cborData, tmpDest.Interface()); err != nil {
		return err
	}
	// Copy values from temporary object into destination object
	if err := copier.Copy(dest, tmpDest.Interface()); err != nil {
		return err
	}
	return nil
}
