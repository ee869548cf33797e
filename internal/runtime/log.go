package runtime

import "io"

// LogSink is the destination the `log(...)` builtin writes to; VM wires
// this to stdout by default and lets embedders redirect it (pkg/jitvm
// Options.LogWriter), matching go-dws's VM.Stdout field.
type LogSink struct {
	Out io.Writer
}

func NewLogSink(w io.Writer) *LogSink { return &LogSink{Out: w} }

// LogInt/LogFloat/LogBool/LogChar/LogString are the per-primitive sinks
// spec.md §4.5.4 requires so `log` never needs to unbox through the
// tagged-any path for a statically-typed argument.
func (s *LogSink) LogInt(v int32)     { s.write(IntToString(v)) }
func (s *LogSink) LogFloat(v float32) { s.write(FloatToString(v)) }
func (s *LogSink) LogBool(v bool)     { s.write(BoolToString(v)) }
func (s *LogSink) LogChar(v rune)     { s.write(CharToString(v)) }
func (s *LogSink) LogString(v string) { s.write(v) }

func (s *LogSink) write(line string) {
	io.WriteString(s.Out, line)
	io.WriteString(s.Out, "\n")
}
