// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package protocol

import "time"

// httpDateLayout is the RFC 9110 preferred ("IMF-fixdate") format, e.g.
// "Sun, 06 Nov 1994 08:49:37 GMT". Used for Date, Last-Modified, and
// cookie Expires headers.
const httpDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// legacyDateLayouts are accepted on parse for compatibility with older
// clients/servers, per RFC 9110 §5.6.7.
var legacyDateLayouts = []string{
	time.RFC850,
	time.ANSIC,
}

// FormatHTTPDate renders t in IMF-fixdate form.
func FormatHTTPDate(t time.Time) string {
	return t.UTC().Format(httpDateLayout)
}

// ParseHTTPDate parses an HTTP-date header value, accepting IMF-fixdate and
// the two legacy formats RFC 9110 requires recipients to tolerate.
func ParseHTTPDate(s string) (time.Time, bool) {
	if t, err := time.Parse(httpDateLayout, s); err == nil {
		return t, true
	}
	for _, layout := range legacyDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
