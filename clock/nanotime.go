// nanotime.go
//
// Direct binding to the runtime's monotonic clock. This is the calibration
// reference on amd64 and the timestamp source everywhere else; it avoids the
// time.Time wrapper entirely (no wall-clock component, no struct copy).

package clock

import _ "unsafe" // for go:linkname

//go:noescape
//go:linkname nanotime runtime.nanotime
func nanotime() int64
