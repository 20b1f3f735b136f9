package usecase

import (
	"fmt"
	"io"
	"strings"
	"unicode"
)

type Logger interface {
	Infof(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

// printer remembers the first write error so report code can stay linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) println(a ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, a...)
}

func (p *printer) printf(format string, a ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, a...)
}

func trimRight(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
