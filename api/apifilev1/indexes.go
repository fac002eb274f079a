package apifilev1

import (
	"context"
	"net/http"

	"github.com/fulldump/btrievedb/btrieve"
)

type indexResponse struct {
	Index btrieve.Index `json:"index"`
}

func createIndex(ctx context.Context, w http.ResponseWriter, input map[string]any) (*indexResponse, error) {

	attributes := btrieve.DefaultIndexAttributes()
	err := decode(input, &attributes)
	if err != nil {
		return nil, err
	}

	index, err := GetServicer(ctx).CreateIndex(fileName(ctx), owner(ctx), attributes)
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	return &indexResponse{
		Index: index,
	}, nil
}

func dropIndex(ctx context.Context, w http.ResponseWriter, input map[string]any) error {

	request := &indexResponse{
		Index: btrieve.IndexNone,
	}
	err := decode(input, request)
	if err != nil {
		return err
	}

	err = GetServicer(ctx).DropIndex(fileName(ctx), owner(ctx), request.Index)
	if err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
