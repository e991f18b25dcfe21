package cat

import (
	"log"
	"strings"
)

// Tracer writes CAT traces indented by call depth. The zero value is disabled.
type Tracer struct {
	logger *log.Logger
	depth  int
}

func NewTracer(logger *log.Logger) Tracer {
	return Tracer{logger: logger}
}

func (t Tracer) Enabled() bool {
	return t.logger != nil
}

func (t Tracer) Depth() int {
	return t.depth
}

// Enter returns a tracer one level deeper and logs the entry.
func (t Tracer) Enter(name string) Tracer {
	t.Printf("> %s", name)
	return Tracer{logger: t.logger, depth: t.depth + 1}
}

func (t Tracer) Printf(format string, args ...interface{}) {
	if t.logger == nil {
		return
	}
	t.logger.Printf(strings.Repeat("  ", t.depth)+format, args...)
}
