// Package datasource declares where catalog records come from: a provider
// over HTTP (httpds) or a local fixture (file).
package datasource

import (
	"context"
	"net/url"

	"paketetl/pkg/records"
)

// Source fetches the record list behind endpoint.
type Source interface {
	Fetch(ctx context.Context, endpoint string, query url.Values) ([]records.Record, error)
}
