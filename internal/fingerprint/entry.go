// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package fingerprint

const httpDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// Entry represents one cacheable file. It is immutable after
// construction; identity is PathHash, and ownership lives with the
// Tree that holds it.
type Entry struct {
	Path         string // absolute path, owned
	ContentHash  uint32
	PathHash     uint32
	LastModified string // HTTP-date, e.g. "Mon, 02 Jan 2006 15:04:05 GMT"
}
