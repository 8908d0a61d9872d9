package port

import "context"

// ObjectStore abstracts the flat key/blob storage backing the service
// (GCS in the cloud, a plain directory locally and in tests).
type ObjectStore interface {
	// Download fetches the object at key into the local file destPath.
	Download(ctx context.Context, key, destPath string) error

	// Upload writes the local file at localPath to the object at key.
	Upload(ctx context.Context, localPath, key, contentType string) error

	// PublicURL derives the publicly resolvable reference for a key.
	// It is a pure derivation and performs no network I/O.
	PublicURL(key string) string
}
