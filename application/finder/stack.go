package finder

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-stack/stack"
)

var hidden = mapset.NewSet[string]()

func init() {
	HidePackage(stack.Caller(0))
}

// HidePackage drops frames of c's package from the caller stacks recorded on
// locate failures. Packages that wrap the finder call it from init.
func HidePackage(c stack.Call) {
	hidden.Add(packageOf(c))
}

// callerStack returns the current stack without runtime frames and without
// the leading frames of hidden packages.
func callerStack() stack.CallStack {
	trace := stack.Trace().TrimRuntime()
	for len(trace) > 0 && hidden.Contains(packageOf(trace[0])) {
		trace = trace[1:]
	}
	return trace
}

// packageOf extracts "path/to/pkg" from "path/to/pkg.(*T).Method".
func packageOf(c stack.Call) string {
	fn := c.Frame().Function
	slash := strings.LastIndex(fn, "/")
	if dot := strings.Index(fn[slash+1:], "."); dot >= 0 {
		return fn[:slash+1+dot]
	}
	return fn
}
