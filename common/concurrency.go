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

package common

import (
	"runtime"
)

var coreNums = runtime.NumCPU()

// Concurrency 返回建议的并发度
//
// 流表实例本身是单写者模型 此数值仅用于消息队列等旁路组件的缓冲大小
func Concurrency() int {
	return coreNums * 2
}
