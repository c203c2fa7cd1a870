// Package minio stores snapshots in MinIO or any other S3-compatible server
// through the MinIO client.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    return err
//	}
//	store := minioblob.NewStore(client, "snapshots", "contexts/")
//	_, err = snapshot.Save(ctx, store, "graph.snap", mctx)
package minio
