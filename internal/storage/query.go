package storage

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
)

// evalQuery runs a JSONPath expression against a document and returns
// every matched value. Expressions support member selection, array
// indices, wildcards and filter predicates, e.g. $.users[*].name or
// $.items[?(@.price > 10)].
func evalQuery(doc any, query string) ([]any, error) {
	expr, err := jp.ParseString(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return expr.Get(doc), nil
}
