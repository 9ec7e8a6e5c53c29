package pipeline

import (
	"bytes"

	"github.com/00zhengfu00/modlink/internal/attribute"
	"github.com/00zhengfu00/modlink/internal/pool"
)

// debugMarker delimits the stand-in "debug attribute" appended to a
// class resource's bytes: real debug info (line numbers, local variable
// tables) lives in attributes that a real class-file reader would strip
// surgically. Since class-file parsing is out of scope (the moduleinfo
// package is the documented external stand-in), strip-java-debug here
// truncates everything from this sentinel onward.
var debugMarker = []byte("\x00DEBUGINFO\x00")

// stripDebugStage removes the debug-info suffix from every ".class"
// resource, leaving non-class resources untouched (spec.md §4.8
// "strip-java-debug").
type stripDebugStage struct{}

func (stripDebugStage) Apply(in *pool.Pool) (*pool.Pool, error) {
	out := pool.New()
	for _, e := range in.Iter() {
		_, _, _, ext := attribute.SplitName(e.Path)
		if ext == "class" {
			if i := bytes.Index(e.Bytes, debugMarker); i >= 0 {
				stripped := make([]byte, i)
				copy(stripped, e.Bytes[:i])
				e.Bytes = stripped
			}
		}
		if err := out.Add(e); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func newStripJavaDebug(PluginConfig) (Stage, error) {
	return stripDebugStage{}, nil
}
