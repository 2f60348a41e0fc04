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

package bitfield_test

import (
	"testing"

	"github.com/raklaptudirm/mtor/pkg/bitfield"
)

func TestHasFirstByte(t *testing.T) {
	// bit 0 lives in byte 0; indexOf must treat atByte == 0 as in range.
	b := bitfield.New([]byte{0b10000000})

	if !b.Has(0) {
		t.Error("Has(0) = false, want true")
	}
	for i := 1; i < 8; i++ {
		if b.Has(i) {
			t.Errorf("Has(%d) = true, want false", i)
		}
	}
}

func TestSetAndClear(t *testing.T) {
	b := bitfield.New(make([]byte, 2))

	b.Set(0)
	b.Set(15)

	if !b.Has(0) {
		t.Error("Has(0) = false after Set(0)")
	}
	if !b.Has(15) {
		t.Error("Has(15) = false after Set(15)")
	}

	b.Clear(0)
	if b.Has(0) {
		t.Error("Has(0) = true after Clear(0)")
	}
	if !b.Has(15) {
		t.Error("Has(15) = false after unrelated Clear(0)")
	}
}

func TestOutOfRangeIsFalseAndNoop(t *testing.T) {
	b := bitfield.New(make([]byte, 1))

	if b.Has(100) {
		t.Error("Has(100) = true, want false for out-of-range index")
	}

	b.Set(100) // must not panic
	b.Clear(100)
}
