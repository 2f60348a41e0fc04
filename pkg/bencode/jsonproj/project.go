// Copyright © 2021 Rak Laptudirm <raklaptudirm@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package jsonproj projects a decoded bencode value onto JSON, for the
// decode command's human-readable output. The projection is lossy: byte
// strings are not necessarily valid UTF-8, and are decoded with the
// replacement character standing in for anything that isn't. It exists
// for humans, never for round-tripping.
package jsonproj

import "fmt"

// Project converts a bencode value, as produced by bencode.Decode, into a
// JSON-marshalable value: byte strings become strings (lossily), integers
// become JSON numbers, lists become arrays, and dicts become objects with
// lossily-decoded keys.
func Project(v any) (any, error) {
	switch v := v.(type) {
	case string:
		return toUTF8(v), nil
	case int64:
		return v, nil
	case []any:
		list := make([]any, len(v))
		for i, elem := range v {
			p, err := Project(elem)
			if err != nil {
				return nil, err
			}
			list[i] = p
		}
		return list, nil
	case map[string]any:
		obj := make(map[string]any, len(v))
		for key, elem := range v {
			p, err := Project(elem)
			if err != nil {
				return nil, err
			}
			obj[toUTF8(key)] = p
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("jsonproj: unexpected bencode value type %T", v)
	}
}

// toUTF8 lossily decodes a raw bencode byte string as UTF-8, replacing any
// invalid bytes with the Unicode replacement character. This is exactly
// what a Go string->string conversion through []rune does; it is spelled
// out here so the lossy step isn't a surprise to a future reader.
func toUTF8(s string) string {
	return string([]rune(s))
}
