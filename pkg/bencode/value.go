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

package bencode

import (
	"reflect"

	"github.com/raklaptudirm/mtor/pkg/bencode/scanner"
)

// RawMessage holds the exact, unprocessed bytes of a single bencode value,
// as they appeared in the source. Unmarshalling into a RawMessage field
// retains the value's byte slice as is, so it never loses
// unknown keys or reorders anything, since nothing is actually decoded.
// Marshalling a RawMessage copies its bytes through verbatim.
type RawMessage []byte

var rawMessageType = reflect.TypeOf(RawMessage(nil))

// Decode decodes the single bencode value at the start of data, returning
// it as a Go value (string, int64, []any, or map[string]any) along with
// any bytes remaining after it. It never returns trailing-bytes errors;
// use Unmarshal on a pointer type for a strict, single-value decode.
func Decode(data []byte) (value any, remaining []byte, err error) {
	s := scanner.New(data)
	if err := s.Next(); err != nil {
		return nil, nil, err
	}

	d := &decoder{scanner: s}
	v, err := d.valueInterface()
	if err != nil {
		return nil, nil, err
	}

	end := d.curr.Offset + len(d.curr.Literal)
	return v, data[end:], nil
}
