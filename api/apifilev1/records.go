package apifilev1

import (
	"context"
	"net/http"

	"github.com/fulldump/btrievedb/btrieve"
	"github.com/fulldump/btrievedb/service"
)

type insertRequest struct {
	Records [][]byte `json:"records"`
}

// insert answers 201 when every record was created and 207 when some
// were rejected; the statuses tell which ones.
func insert(ctx context.Context, w http.ResponseWriter, input *insertRequest) (*btrieve.BulkCreateResult, error) {

	result, err := GetServicer(ctx).Insert(fileName(ctx), owner(ctx), input.Records)
	if err != nil {
		return nil, err
	}

	if result.Status == btrieve.StatusNoError {
		w.WriteHeader(http.StatusCreated)
	} else {
		w.WriteHeader(http.StatusMultiStatus)
	}
	return result, nil
}

func retrieve(ctx context.Context, input map[string]any) (*btrieve.BulkRetrieveResult, error) {

	query := &service.Query{
		Index: btrieve.IndexFirst,
		Limit: 1,
	}
	err := decode(input, query)
	if err != nil {
		return nil, err
	}

	return GetServicer(ctx).Retrieve(fileName(ctx), owner(ctx), query)
}

func scan(ctx context.Context, input map[string]any) (*btrieve.BulkRetrieveResult, error) {

	request := &service.Scan{
		Index: btrieve.IndexFirst,
		Attributes: btrieve.BulkRetrieveAttributes{
			MaximumRecordCount: 100,
		},
	}
	err := decode(input, request)
	if err != nil {
		return nil, err
	}

	return GetServicer(ctx).Scan(fileName(ctx), owner(ctx), request)
}

type percentageRequest struct {
	Index btrieve.Index `json:"index"`
	Key   []byte        `json:"key"`
}

type percentageResponse struct {
	Percentage int `json:"percentage"`
}

func percentage(ctx context.Context, input map[string]any) (*percentageResponse, error) {

	request := &percentageRequest{}
	err := decode(input, request)
	if err != nil {
		return nil, err
	}

	p, err := GetServicer(ctx).Percentage(fileName(ctx), owner(ctx), request.Index, request.Key)
	if err != nil {
		return nil, err
	}

	return &percentageResponse{
		Percentage: p,
	}, nil
}
