// Command livecoll replays list mutation scripts against live flattening and
// mapped registers and reports whether the incrementally maintained state
// ever diverges from a from-scratch rebuild.
//
//	livecoll replay script.yaml
//	livecoll replay --output json script.yaml
//	livecoll metrics script.yaml
package main

import (
	"os"

	"github.com/golang/glog"
)

func main() {
	defer glog.Flush()
	if err := newRootCmd().Execute(); err != nil {
		glog.Flush()
		os.Exit(1)
	}
}
