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
	"errors"
	"fmt"
)

// ErrInvalidValue is matched (via errors.Is) by every semantic construction failure
var ErrInvalidValue = errors.New("invalid value")

// InvalidValueError indicates that a value violates the invariants of its type
type InvalidValueError struct {
	Type   string
	Reason string
	Err    error
}

func (e InvalidValueError) Error() string {
	ret := fmt.Sprintf("invalid %s: %s", e.Type, e.Reason)
	if e.Err != nil {
		ret += ": " + e.Err.Error()
	}
	return ret
}

func (e InvalidValueError) Unwrap() error { return e.Err }

func (InvalidValueError) Is(target error) bool {
	return target == ErrInvalidValue
}

func invalidValue(typeName string, format string, args ...any) error {
	return InvalidValueError{
		Type:   typeName,
		Reason: fmt.Sprintf(format, args...),
	}
}

// AssetAmountOverflowError indicates that adding asset amounts overflowed
type AssetAmountOverflowError struct {
	PolicyId  Blake2b224
	AssetName []byte
}

func (e AssetAmountOverflowError) Error() string {
	return fmt.Sprintf(
		"asset amount overflow for %s.%x",
		e.PolicyId.String(),
		e.AssetName,
	)
}

func (AssetAmountOverflowError) Is(target error) bool {
	return target == ErrInvalidValue
}

// InsufficientValueError indicates that a subtraction would produce a negative amount
type InsufficientValueError struct {
	// Empty for the base currency
	Unit      string
	Available uint64
	Required  uint64
}

func (e InsufficientValueError) Error() string {
	unit := e.Unit
	if unit == "" {
		unit = "lovelace"
	}
	return fmt.Sprintf(
		"insufficient %s: have %d, need %d",
		unit,
		e.Available,
		e.Required,
	)
}

func (InsufficientValueError) Is(target error) bool {
	return target == ErrInvalidValue
}
