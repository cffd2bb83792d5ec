// Package storage publishes generated artifacts, such as the delivery
// dashboard, to S3-compatible object storage.
//
// It wraps [github.com/aws/aws-sdk-go-v2/service/s3] with static
// credentials, optional custom endpoints (MinIO, R2) and a fixed object key:
//
//	store, err := storage.New(storage.Config{
//		Bucket:    "reports",
//		AccessKey: os.Getenv("REPORT_S3_ACCESS_KEY"),
//		SecretKey: os.Getenv("REPORT_S3_SECRET_KEY"),
//	})
//	if err != nil {
//		return err
//	}
//
//	info, err := store.Put(ctx, store.Key(), bytes.NewReader(html), int64(len(html)), "text/html; charset=utf-8")
//	link, err := store.URL(ctx, info.Key, 24*time.Hour)
//
// Objects are private unless PublicURL is set, in which case they are
// uploaded public-read and URL returns the public link.
//
// Errors wrap [ErrNotFound], [ErrAccessDenied], [ErrPublishFailed] or
// [ErrLinkFailed]; match them with errors.Is.
package storage
