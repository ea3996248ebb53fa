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

package recorder

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"

	"github.com/rstade/netfcts/conntrack"
)

func TestRecorderPush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flows", "records.jsonl")
	r, err := New(path)
	assert.NoError(t, err)

	snapshots := []conntrack.Snapshot[string]{
		{Key: "flow-a", State: conntrack.StateEstablished, UID: 1, Cause: conntrack.ReleaseTimeout},
		{Key: "flow-b", State: conntrack.StatePending, UID: 2, Cause: conntrack.ReleaseClosed},
		{Key: "flow-c", State: conntrack.StateHalfClosed, UID: 3, Cause: conntrack.ReleaseDrained},
	}
	for _, s := range snapshots {
		assert.NoError(t, r.Push(s))
	}
	assert.Equal(t, 3, r.Lines())
	assert.NoError(t, r.Close())

	f, err := os.Open(path)
	assert.NoError(t, err)
	defer f.Close()

	var n int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var env struct {
			TS     int64                      `json:"ts"`
			Record conntrack.Snapshot[string] `json:"record"`
		}
		assert.NoError(t, json.Unmarshal(scanner.Bytes(), &env))
		assert.Equal(t, snapshots[n].Key, env.Record.Key)
		assert.Equal(t, snapshots[n].UID, env.Record.UID)
		assert.Equal(t, snapshots[n].Cause, env.Record.Cause)
		n++
	}
	assert.NoError(t, scanner.Err())
	assert.Equal(t, 3, n)
}

func TestRecorderAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")

	for i := 0; i < 2; i++ {
		r, err := New(path)
		assert.NoError(t, err)
		assert.NoError(t, r.Push(conntrack.Snapshot[int]{Key: i, UID: uint64(i)}))
		assert.NoError(t, r.Close())
	}

	b, err := os.ReadFile(path)
	assert.NoError(t, err)

	var lines int
	for _, c := range b {
		if c == '\n' {
			lines++
		}
	}
	assert.Equal(t, 2, lines)
}
