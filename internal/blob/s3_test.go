package blob

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubS3 struct {
	putInput    *s3.PutObjectInput
	deleteInput *s3.DeleteObjectInput
	putErr      error
	deleteErr   error
}

func (s *stubS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	s.putInput = params
	if s.putErr != nil {
		return nil, s.putErr
	}
	return &s3.PutObjectOutput{}, nil
}

func (s *stubS3) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	s.deleteInput = params
	if s.deleteErr != nil {
		return nil, s.deleteErr
	}
	return &s3.DeleteObjectOutput{}, nil
}

func newStubStore(stub *stubS3) *S3Store {
	return &S3Store{client: stub, bucket: "catalog", base: "http://127.0.0.1:9000"}
}

func TestS3Store_Put(t *testing.T) {
	stub := &stubS3{}
	store := newStubStore(stub)

	url, err := store.Put(context.Background(), "users/2026/8/28/abc", []byte("payload"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/catalog/users/2026/8/28/abc", url)

	require.NotNil(t, stub.putInput)
	assert.Equal(t, "catalog", *stub.putInput.Bucket)
	assert.Equal(t, "users/2026/8/28/abc", *stub.putInput.Key)
	assert.Equal(t, "application/pdf", *stub.putInput.ContentType)

	body, err := io.ReadAll(stub.putInput.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), body)
}

func TestS3Store_PutDefaultsContentType(t *testing.T) {
	stub := &stubS3{}
	store := newStubStore(stub)

	_, err := store.Put(context.Background(), "k", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", *stub.putInput.ContentType)
}

func TestS3Store_PutError(t *testing.T) {
	boom := errors.New("bucket gone")
	store := newStubStore(&stubS3{putErr: boom})

	_, err := store.Put(context.Background(), "k", nil, "")
	require.ErrorIs(t, err, boom)
}

func TestS3Store_Delete(t *testing.T) {
	stub := &stubS3{}
	store := newStubStore(stub)

	require.NoError(t, store.Delete(context.Background(), "users/2026/8/28/abc"))
	require.NotNil(t, stub.deleteInput)
	assert.Equal(t, "users/2026/8/28/abc", *stub.deleteInput.Key)
}

func TestS3Store_DeleteError(t *testing.T) {
	boom := errors.New("denied")
	store := newStubStore(&stubS3{deleteErr: boom})

	err := store.Delete(context.Background(), "k")
	require.ErrorIs(t, err, boom)
}
