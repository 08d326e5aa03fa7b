// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Request holds a per-connection parsed view of one HTTP request. All
// string fields are owned copies: unlike the source this server was
// distilled from, which kept header values as pointers into the raw
// request buffer, a Request here never outlives the buffer it was
// parsed from by holding a reference into it.

package request

// Method is one of the tokens recognized at the parser stage.
type Method string

const (
	MethodGET     Method = "GET"
	MethodHEAD    Method = "HEAD"
	MethodOPTIONS Method = "OPTIONS"
)

// Request is the typed record produced by Parse.
type Request struct {
	Method    Method
	RawMethod string // preserved for mapping unrecognized methods to 501
	Target    string // raw request-target, before path resolution
	Version   string // "HTTP/1.0" or "HTTP/1.1"

	Host                    string
	Connection              string
	UserAgent               string
	Referer                 string
	Accept                  string
	AcceptEncoding          string
	AcceptLanguage          string
	Priority                string
	DNT                     bool
	SecGPC                  bool
	UpgradeInsecureRequests bool

	IfNoneMatch     uint32 // 0 means "no validator supplied"
	IfModifiedSince string // raw HTTP-date string, compared lexically

	HasRange   bool
	RangeStart int64 // negative denotes a suffix length
	RangeEnd   int64 // -1 denotes "open-ended"

	KeepAlive bool
}

// IsHTTP11 reports whether the request declared HTTP/1.1.
func (r *Request) IsHTTP11() bool { return r.Version == "HTTP/1.1" }
