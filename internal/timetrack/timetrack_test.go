// Copyright 2025 The netfcts Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package timetrack

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeAdder(t *testing.T) {
	ta := New("evict", 100)
	assert.Equal(t, uint64(0), ta.Count())
	assert.Equal(t, time.Duration(0), ta.Mean())

	for i := 0; i < 10; i++ {
		ta.Add(2 * time.Microsecond)
	}
	assert.Equal(t, uint64(10), ta.Count())
	assert.Equal(t, 2*time.Microsecond, ta.Mean())

	ta.Add(24 * time.Microsecond)
	assert.Equal(t, uint64(11), ta.Count())
	assert.Equal(t, 4*time.Microsecond, ta.Mean())
}

func TestTimeAdderZeroSampleSize(t *testing.T) {
	ta := New("noop", 0)
	ta.Add(time.Millisecond)
	assert.Equal(t, uint64(1), ta.Count())
}
