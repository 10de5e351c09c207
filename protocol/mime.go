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

import (
	"path/filepath"
	"strings"
)

// builtinMIME covers only what the reserved routes and common API bodies
// need. Callers that need a complete registry should use the standard
// library's mime package; a full static-file MIME table deliberately does
// not live here.
var builtinMIME = map[string]string{
	".html": "text/html; charset=utf-8",
	".htm":  "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".json": "application/json",
	".txt":  "text/plain; charset=utf-8",
	".xml":  "application/xml",
	".svg":  "image/svg+xml",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".ico":  "image/x-icon",
	".wasm": "application/wasm",
	".yaml": "application/yaml",
	".yml":  "application/yaml",
}

// TypeByExtension returns the content type for a file path's extension
// using the builtin table, or "application/octet-stream" when unknown.
func TypeByExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := builtinMIME[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

// IsJSON reports whether a Content-Type value denotes JSON, ignoring any
// parameters (charset, etc.).
func IsJSON(contentType string) bool {
	ct, _, _ := strings.Cut(contentType, ";")
	ct = strings.TrimSpace(ct)
	return ct == "application/json" || strings.HasSuffix(ct, "+json")
}
