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

package keys

import (
	"fmt"
	"strconv"
	"strings"
)

const HardenedIndex uint32 = 0x80000000

// CIP-1852 path components
const (
	PurposeCip1852 uint32 = 1852
	CoinTypeAda    uint32 = 1815

	RoleExternal uint32 = 0
	RoleInternal uint32 = 1
	RoleStaking  uint32 = 2
)

// DerivationPath is a list of child indexes from the root key. Hardened
// indexes include HardenedIndex
type DerivationPath []uint32

// ParseDerivationPath parses paths like m/1852'/1815'/0'/0/0. Both ' and h mark
// a hardened index
func ParseDerivationPath(path string) (DerivationPath, error) {
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] != "m" {
		return nil, fmt.Errorf(
			"%w: %q must start with m",
			ErrInvalidDerivationPath,
			path,
		)
	}
	ret := make(DerivationPath, 0, len(parts)-1)
	for _, part := range parts[1:] {
		var hardened bool
		if tmp, ok := strings.CutSuffix(part, "'"); ok {
			part = tmp
			hardened = true
		} else if tmp, ok := strings.CutSuffix(part, "h"); ok {
			part = tmp
			hardened = true
		}
		index, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf(
				"%w: bad component %q in %q",
				ErrInvalidDerivationPath,
				part,
				path,
			)
		}
		if index >= uint64(HardenedIndex) {
			return nil, fmt.Errorf(
				"%w: index %d out of range",
				ErrInvalidDerivationPath,
				index,
			)
		}
		if hardened {
			index += uint64(HardenedIndex)
		}
		ret = append(ret, uint32(index)) // #nosec G115
	}
	return ret, nil
}

// NewCip1852Path returns m/1852'/1815'/account'/role/index
func NewCip1852Path(account uint32, role uint32, index uint32) DerivationPath {
	return DerivationPath{
		PurposeCip1852 + HardenedIndex,
		CoinTypeAda + HardenedIndex,
		account + HardenedIndex,
		role,
		index,
	}
}

func (p DerivationPath) String() string {
	var sb strings.Builder
	sb.WriteString("m")
	for _, index := range p {
		sb.WriteString("/")
		if index >= HardenedIndex {
			sb.WriteString(strconv.FormatUint(uint64(index-HardenedIndex), 10))
			sb.WriteString("'")
			continue
		}
		sb.WriteString(strconv.FormatUint(uint64(index), 10))
	}
	return sb.String()
}
