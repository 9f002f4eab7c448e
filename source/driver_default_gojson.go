// Package source selects goccy/go-json as the process-wide JSON driver when
// imported for side effects:
//
//	import _ "github.com/reoring/schemabind/source"
//
// It lives outside the root package to avoid an import cycle.
package source

import (
	schemabind "github.com/reoring/schemabind"
	drvgojson "github.com/reoring/schemabind/source/gojson"
)

func init() { schemabind.SetJSONDriver(drvgojson.Driver()) }
