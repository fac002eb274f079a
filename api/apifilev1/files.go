package apifilev1

import (
	"context"
	"net/http"

	"github.com/fulldump/btrievedb/btrieve"
	"github.com/fulldump/btrievedb/service"
)

func getVersion(ctx context.Context) (*btrieve.Version, error) {
	return GetServicer(ctx).GetVersion()
}

func listFiles(ctx context.Context) ([]*service.FileSummary, error) {
	return GetServicer(ctx).ListFiles()
}

type createFileRequest struct {
	Name    string             `json:"name"`
	Mode    btrieve.CreateMode `json:"mode"`
	File    map[string]any     `json:"file"`
	Indexes []map[string]any   `json:"indexes"`
}

// createFile does not overwrite unless mode is OVERWRITE.
func createFile(ctx context.Context, w http.ResponseWriter, input map[string]any) (*btrieve.FileInformation, error) {

	request := &createFileRequest{
		Mode: btrieve.CreateModeNoOverwrite,
	}
	err := decode(input, request)
	if err != nil {
		return nil, err
	}

	create := &service.CreateFile{
		Name: request.Name,
		Mode: request.Mode,
		File: btrieve.DefaultFileAttributes(),
	}
	err = decode(request.File, &create.File)
	if err != nil {
		return nil, err
	}
	for _, item := range request.Indexes {
		index := btrieve.DefaultIndexAttributes()
		err := decode(item, &index)
		if err != nil {
			return nil, err
		}
		create.Indexes = append(create.Indexes, index)
	}

	info, err := GetServicer(ctx).CreateFile(create)
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	return info, nil
}

func getFile(ctx context.Context) (*btrieve.FileInformation, error) {
	return GetServicer(ctx).GetFile(fileName(ctx), owner(ctx))
}

func deleteFile(ctx context.Context, w http.ResponseWriter) error {

	err := GetServicer(ctx).DeleteFile(fileName(ctx), owner(ctx))
	if err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

type renameFileRequest struct {
	Name string `json:"name"`
}

func renameFile(ctx context.Context, input *renameFileRequest) (*btrieve.FileInformation, error) {

	s := GetServicer(ctx)
	err := s.RenameFile(fileName(ctx), input.Name)
	if err != nil {
		return nil, err
	}

	return s.GetFile(input.Name, owner(ctx))
}

func continuousBegin(ctx context.Context, w http.ResponseWriter) error {

	err := GetServicer(ctx).ContinuousBegin(fileName(ctx), owner(ctx))
	if err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func continuousEnd(ctx context.Context, w http.ResponseWriter) error {

	err := GetServicer(ctx).ContinuousEnd(fileName(ctx))
	if err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
