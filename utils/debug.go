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

// Package utils provides debugging helpers for CBOR data
package utils

import (
	"cmp"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/blinklabs-io/ledgerkit/cbor"
)

// Byte strings longer than this are shortened in dumps
const maxDumpBytes = 32

// DumpCborStructure renders a generically decoded CBOR item as an indented
// tree, one item per line. prefix is added before every line
func DumpCborStructure(data any, prefix string) string {
	var ret strings.Builder
	dumpItem(&ret, data, prefix)
	return ret.String()
}

func dumpItem(ret *strings.Builder, data any, prefix string) {
	switch v := data.(type) {
	case uint64:
		fmt.Fprintf(ret, "%s0x%x (%d),\n", prefix, v, v)
	case int64:
		fmt.Fprintf(ret, "%s%d,\n", prefix, v)
	case []byte:
		fmt.Fprintf(ret, "%s<bytes> %s (length %d),\n", prefix, bytesString(v), len(v))
	case string:
		fmt.Fprintf(ret, "%s%q,\n", prefix, v)
	case cbor.WrappedCbor:
		fmt.Fprintf(ret, "%s<cbor> %s (length %d),\n", prefix, bytesString(v), len(v))
	case cbor.Rat:
		if v.Rat == nil {
			fmt.Fprintf(ret, "%s<rational> nil,\n", prefix)
			return
		}
		fmt.Fprintf(ret, "%s<rational> %s,\n", prefix, v.RatString())
	case cbor.Tag:
		fmt.Fprintf(ret, "%s<tag %d>\n", prefix, v.Number)
		dumpItem(ret, v.Content, prefix+"  ")
	case []any:
		dumpList(ret, "[", v, prefix)
	case cbor.Set:
		dumpList(ret, "<set> [", v, prefix)
	case map[any]any:
		dumpMap(ret, v, prefix)
	case cbor.Map:
		dumpMap(ret, v, prefix)
	default:
		fmt.Fprintf(ret, "%s%#v,\n", prefix, v)
	}
}

func dumpList(ret *strings.Builder, open string, items []any, prefix string) {
	ret.WriteString(prefix + open + "\n")
	for _, item := range items {
		dumpItem(ret, item, prefix+"  ")
	}
	ret.WriteString(prefix + "],\n")
}

func dumpMap(ret *strings.Builder, items map[any]any, prefix string) {
	keys := make([]any, 0, len(items))
	for key := range items {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, compareKeys)
	ret.WriteString(prefix + "{\n")
	for _, key := range keys {
		fmt.Fprintf(ret, "%s  %s =>\n", prefix, keyString(key))
		dumpItem(ret, items[key], prefix+"    ")
	}
	ret.WriteString(prefix + "},\n")
}

// compareKeys orders unsigned integer keys numerically ahead of everything else
func compareKeys(a any, b any) int {
	aInt, aOk := a.(uint64)
	bInt, bOk := b.(uint64)
	switch {
	case aOk && bOk:
		return cmp.Compare(aInt, bInt)
	case aOk:
		return -1
	case bOk:
		return 1
	}
	return strings.Compare(keyString(a), keyString(b))
}

func keyString(key any) string {
	switch v := key.(type) {
	case uint64, int64:
		return fmt.Sprintf("%d", v)
	case string:
		return fmt.Sprintf("%q", v)
	case cbor.ByteString:
		return bytesString(v.Bytes())
	}
	return fmt.Sprintf("%#v", key)
}

func bytesString(data []byte) string {
	if len(data) > maxDumpBytes {
		return hex.EncodeToString(data[:maxDumpBytes]) + "..."
	}
	return hex.EncodeToString(data)
}
