// Package s3 stores snapshots in Amazon S3.
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	if err != nil {
//	    return err
//	}
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "contexts/")
//
// The store only needs the small API interface, so tests can substitute a mock.
package s3
