package apifilev1

import (
	"context"
	"testing"

	. "github.com/fulldump/biff"

	"github.com/fulldump/btrievedb/service"
)

func TestGetServicer(t *testing.T) {

	s := service.NewService(nil)
	ctx := SetServicer(context.Background(), s)
	AssertTrue(GetServicer(ctx) == service.Servicer(s))

	// missing servicer panics
	defer func() {
		AssertNotNil(recover())
	}()
	GetServicer(context.Background())
}
