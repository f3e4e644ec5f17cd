// Package mock provides test doubles for reportview interfaces.
package mock

import (
	"io"

	"github.com/tasmanium/reportview"
)

// Compile-time interface verification.
var _ reportview.DocumentParser = (*DocumentParser)(nil)

// DocumentParser is a mock implementation of reportview.DocumentParser.
type DocumentParser struct {
	ParseFn func(r io.Reader) (*reportview.Report, error)
}

func (p *DocumentParser) Parse(r io.Reader) (*reportview.Report, error) {
	return p.ParseFn(r)
}
