package apifilev1

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fulldump/box"

	"github.com/fulldump/btrievedb/btrieve"
)

// OwnerHeader carries the owner name of files protected with one.
const OwnerHeader = "X-Owner"

// fileName is the unescaped {fileName} parameter, so names of nested
// directories can be sent as a%2Fb.btr.
func fileName(ctx context.Context) string {
	name := box.GetUrlParameter(ctx, "fileName")
	unescaped, err := url.PathUnescape(name)
	if err != nil {
		return name
	}
	return unescaped
}

func owner(ctx context.Context) string {
	return box.GetRequest(ctx).Header.Get(OwnerHeader)
}

// decode reads a JSON body into attribute structs, accepting enumeration
// names and base64 byte strings.
func decode(input map[string]any, result any) error {
	err := btrieve.Decode(input, result)
	if err != nil {
		return fmt.Errorf("%s: %w", err, btrieve.StatusInvalidOption)
	}
	return nil
}
