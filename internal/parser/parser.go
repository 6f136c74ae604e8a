// Package parser declares the contract shared by upstream body decoders.
package parser

import (
	"io"

	"paketetl/pkg/records"
)

// Parser turns an upstream response body into catalog records.
type Parser interface {
	Parse(r io.Reader) ([]records.Record, error)
}
