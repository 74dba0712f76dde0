// Package schemas embeds the JSON Schemas shipped with the binary.
package schemas

import _ "embed"

// Profile is the JSON Schema every profile document must satisfy.
//
//go:embed profile.schema.json
var Profile []byte
