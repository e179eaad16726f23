// Package blob provides the content-storage capability behind file
// uploads: put bytes, get back a URL the catalog can hand to the UI, and
// delete them again. The inline store encodes content into the URL itself;
// the S3 store writes to an S3-compatible bucket.
package blob

import "context"

// Store holds file content separately from its catalog record.
type Store interface {
	// Put stores data under key and returns a URL for retrieving it.
	// contentType may be empty.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Delete removes the stored object. Deleting a missing object is not
	// an error.
	Delete(ctx context.Context, key string) error
}
