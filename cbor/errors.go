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
	"errors"
	"fmt"
	"io"
)

// ErrMalformedEncoding is matched (via errors.Is) by every decode failure
var ErrMalformedEncoding = errors.New("malformed CBOR encoding")

// MalformedEncodingError describes a structural decode failure
type MalformedEncodingError struct {
	// Offset of the failing item within the input, when known
	Offset int
	Err    error
}

func (e *MalformedEncodingError) Error() string {
	if e.Err == nil {
		return ErrMalformedEncoding.Error()
	}
	return fmt.Sprintf("%s: %s", ErrMalformedEncoding, e.Err)
}

func (e *MalformedEncodingError) Unwrap() error {
	return e.Err
}

func (e *MalformedEncodingError) Is(target error) bool {
	return target == ErrMalformedEncoding
}

// Truncated returns true when the input ended before the item was complete.
// Retrying with more data appended may succeed
func (e *MalformedEncodingError) Truncated() bool {
	return errors.Is(e.Err, io.ErrUnexpectedEOF) || errors.Is(e.Err, io.EOF)
}

// NewMalformedEncodingError wraps err unless it already is a MalformedEncodingError
func NewMalformedEncodingError(err error) error {
	if err == nil {
		return nil
	}
	var tmpErr *MalformedEncodingError
	if errors.As(err, &tmpErr) {
		return err
	}
	return &MalformedEncodingError{Err: err}
}

// Malformedf builds a MalformedEncodingError from a format string
func Malformedf(format string, args ...any) error {
	return &MalformedEncodingError{Err: fmt.Errorf(format, args...)}
}

// IsTruncated returns true if err is a decode error caused by truncated input
func IsTruncated(err error) bool {
	var tmpErr *MalformedEncodingError
	if errors.As(err, &tmpErr) {
		return tmpErr.Truncated()
	}
	return false
}
