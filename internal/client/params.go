package client

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
)

type param struct {
	name  string
	value string
}

// requireParams fails on the first empty parameter.
func requireParams(params ...param) error {
	for _, p := range params {
		if strings.TrimSpace(p.value) == "" {
			return fmt.Errorf("%w: %s", alfresco.ErrMissingParameter, p.name)
		}
	}

	return nil
}

// entryQuery keeps the parameters accepted by single-entry calls.
func entryQuery(opts *alfresco.ListOptions) url.Values {
	if opts == nil {
		return nil
	}

	query := url.Values{}
	setCSV(query, "include", opts.Include)
	setCSV(query, "fields", opts.Fields)

	return query
}

func setCSV(values url.Values, key string, items []string) {
	if len(items) > 0 {
		values.Set(key, strings.Join(items, ","))
	}
}
