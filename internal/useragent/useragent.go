// Copyright 2026 The gos3 Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package useragent identifies gos3 traffic in provider request logs.
package useragent

import (
	"net/http"
)

// UserAgent is appended to the User-Agent header of every request gos3
// sends. Signing never covers User-Agent, so appending it at the
// transport is safe after a request has been signed.
const UserAgent = "gos3/0.1"

// transport wraps an http.RoundTripper, appending UserAgent to each
// request's User-Agent header.
type transport struct {
	base http.RoundTripper
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid mutating it.
	newReq := *req
	newReq.Header = make(http.Header, len(req.Header))
	for k, vv := range req.Header {
		newReq.Header[k] = vv
	}
	ua := UserAgent
	if prev := req.UserAgent(); prev != "" {
		ua = prev + " " + UserAgent
	}
	newReq.Header.Set("User-Agent", ua)
	return t.base.RoundTrip(&newReq)
}

// Transport wraps base so every request carries the gos3 User-Agent. A
// nil base uses http.DefaultTransport.
func Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &transport{base: base}
}
