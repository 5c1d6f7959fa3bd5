// Package snapshot persists rendered live structures together with the
// state they were rendered from.
//
// A snapshot is stored as two objects: the markup (<id>.html) and a YAML
// document with its metadata and state (<id>.yaml). FileStore writes them
// to a directory, S3Store to a bucket:
//
//	client := snapshot.NewS3Client("eu-west-1", "")
//	store := snapshot.NewS3Store(client, "my-bucket", "inplace/")
//	id, err := store.Save(ctx, snapshot.New("after-append", markup, state))
package snapshot
