package rewrite

import (
	"fmt"
	"strings"
)

const indentUnit = "    "

type printer struct {
	buf    strings.Builder
	indent int
}

// line writes one indented line.
func (p *printer) line(format string, args ...any) {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString(indentUnit)
	}
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteByte('\n')
}

func (p *printer) push() { p.indent++ }

func (p *printer) pop() {
	if p.indent > 0 {
		p.indent--
	}
}

func (p *printer) String() string {
	return strings.TrimSuffix(p.buf.String(), "\n")
}
