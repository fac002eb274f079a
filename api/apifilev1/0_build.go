package apifilev1

import (
	"github.com/fulldump/box"

	"github.com/fulldump/btrievedb/service"
)

func BuildV1File(v1 *box.R, s service.Servicer) *box.R {

	v1.Resource("/version").
		WithActions(
			box.Get(getVersion),
		)

	files := v1.Resource("/files").
		WithActions(
			box.Get(listFiles),
			box.Post(createFile),
			box.ActionPost(find),
		)

	v1.Resource("/files/{fileName}").
		WithActions(
			box.Get(getFile),
			box.ActionPost(deleteFile),
			box.ActionPost(renameFile),
			box.ActionPost(createIndex),
			box.ActionPost(dropIndex),
			box.ActionPost(insert),
			box.ActionPost(retrieve),
			box.ActionPost(scan),
			box.ActionPost(percentage),
			box.ActionPost(continuousBegin),
			box.ActionPost(continuousEnd),
		)

	v1.Resource("/locks").
		WithActions(
			box.Get(listLocks),
			box.ActionPost(findLocks).WithName("find"),
		)

	return files
}
