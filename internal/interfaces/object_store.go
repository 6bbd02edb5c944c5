package interfaces

import "context"

// ObjectStore uploads local artifacts to s3://bucket/key destinations.
type ObjectStore interface {
	Upload(ctx context.Context, localPath, targetURI string) error
}

// ObjectStoreFactory builds a store for one assignment's region/endpoint.
type ObjectStoreFactory func(region, endpoint string) (ObjectStore, error)
