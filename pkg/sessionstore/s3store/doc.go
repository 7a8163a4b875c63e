// Package s3store stores session data as objects in Amazon S3 or any
// S3-compatible service.
//
// Each record is the object {prefix}{name}_{id}. The object's LastModified
// time serves as the write time, so GC lists {prefix}{name}_ page by page and
// deletes objects older than the lifetime. Like the file store, a Store
// remembers the name passed to Open.
//
//	store, err := s3store.New(ctx, s3store.Config{
//		Bucket: "sessions",
//		Region: "eu-central-1",
//	})
package s3store
