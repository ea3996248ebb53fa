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
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/rstade/netfcts/internal/fasttime"
)

// Recorder 把被驱逐/关闭流的快照按 JSONL 逐行落盘
//
// 流量生成引擎在测试结束后离线评估连接记录 每行一条快照
// 写入走 bufio 缓冲 编码使用池化 buffer 不在每条记录上分配
// Recorder 运行在收集线程 不在数据面的热路径上
type Recorder struct {
	f  *os.File
	w  *bufio.Writer
	ln int
}

// envelope 落盘的单行结构
type envelope struct {
	TS     int64 `json:"ts"`
	Record any   `json:"record"`
}

func New(path string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "recorder: create dir")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "recorder: open file")
	}
	return &Recorder{
		f: f,
		w: bufio.NewWriter(f),
	}, nil
}

// Push 追加一条快照记录
func (r *Recorder) Push(record any) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	b, err := json.Marshal(envelope{
		TS:     fasttime.UnixTimestamp(),
		Record: record,
	})
	if err != nil {
		return errors.Wrap(err, "recorder: marshal")
	}
	buf.Write(b)
	buf.WriteByte('\n')

	if _, err := r.w.Write(buf.Bytes()); err != nil {
		return errors.Wrap(err, "recorder: write")
	}
	r.ln++
	return nil
}

// Lines 返回已写入的记录行数
func (r *Recorder) Lines() int {
	return r.ln
}

// Flush 冲刷缓冲区
func (r *Recorder) Flush() error {
	return r.w.Flush()
}

// Close 冲刷并关闭文件
func (r *Recorder) Close() error {
	if err := r.w.Flush(); err != nil {
		_ = r.f.Close()
		return err
	}
	return r.f.Close()
}

var _ io.Closer = (*Recorder)(nil)
