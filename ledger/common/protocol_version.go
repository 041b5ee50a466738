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

// Protocol version constants for Cardano hard forks.
// These correspond to the major protocol version numbers.
const (
	ProtocolVersionShelley uint = 2
	ProtocolVersionAllegra uint = 3
	ProtocolVersionMary    uint = 4
	ProtocolVersionAlonzo  uint = 5
	ProtocolVersionBabbage uint = 7
	ProtocolVersionConway  uint = 9
)

type ProtocolVersion struct {
	Major uint `json:"major"`
	Minor uint `json:"minor"`
}

// AtLeast reports whether the version is at or above the given major version
func (v ProtocolVersion) AtLeast(major uint) bool {
	return v.Major >= major
}

// UsesCoinsPerUtxoByte reports whether min-UTxO is priced per byte rather than
// per 8-byte word
func (v ProtocolVersion) UsesCoinsPerUtxoByte() bool {
	return v.AtLeast(ProtocolVersionBabbage)
}
