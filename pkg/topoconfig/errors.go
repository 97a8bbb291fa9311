package topoconfig

import "errors"

// ErrUnknownKey is returned when a document references a "nettype" or
// other dispatch key this loader does not recognize.
var ErrUnknownKey = errors.New("topoconfig: unknown key")
