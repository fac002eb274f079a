package apifilev1

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/SierraSoftworks/connor"

	"github.com/fulldump/btrievedb/lock"
)

type findParams struct {
	Filter map[string]any `json:"filter"`
	Skip   int64          `json:"skip"`
	Limit  int64          `json:"limit"`
}

// traverse writes every item matching the filter of input as one JSON
// line. A negative limit means no limit.
func traverse[T any](input []byte, items []T, w io.Writer) error {

	params := &findParams{
		Filter: map[string]any{},
		Skip:   0,
		Limit:  -1,
	}
	if len(input) > 0 {
		err := json.Unmarshal(input, params)
		if err != nil {
			return err
		}
	}

	hasFilter := len(params.Filter) > 0

	e := json.NewEncoder(w)
	skip := params.Skip
	limit := params.Limit
	for _, item := range items {

		if limit == 0 {
			break
		}

		if hasFilter {
			payload, err := json.Marshal(item)
			if err != nil {
				return err
			}
			itemData := map[string]any{}
			json.Unmarshal(payload, &itemData)

			match, err := connor.Match(params.Filter, itemData)
			if err != nil {
				return fmt.Errorf("match: %w", err)
			}
			if !match {
				continue
			}
		}

		if skip > 0 {
			skip--
			continue
		}

		limit--
		e.Encode(item)
	}

	return nil
}

func find(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	input, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}

	files, err := GetServicer(ctx).ListFiles()
	if err != nil {
		return err
	}

	return traverse(input, files, w)
}

func listLocks(ctx context.Context) ([]lock.Lock, error) {
	return GetServicer(ctx).ListLocks(), nil
}

func findLocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	input, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}

	return traverse(input, GetServicer(ctx).ListLocks(), w)
}
