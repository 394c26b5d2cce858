package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-matcher/internal/shared/storage/object"
)

type fakeAPI struct {
	objects map[string][]byte
	puts    []*s3.PutObjectInput
}

func newFakeAPI() *fakeAPI { return &fakeAPI{objects: map[string][]byte{}} }

func (f *fakeAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = data
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeAPI) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeAPI) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "owner/file.pdf", want: "owner/file.pdf"},
		{name: "simple prefix", prefix: "root", key: "owner/file.pdf", want: "root/owner/file.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "owner/file.pdf", want: "root/owner/file.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/owner/file.pdf", want: "root/owner/file.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "owner/file.pdf", want: "root/sub/owner/file.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestStoreRoundTrip(t *testing.T) {
	api := newFakeAPI()
	store := NewWithClient(api, "bucket", "originals/", "")
	ctx := context.Background()

	n, err := store.Put(ctx, "owner/r-1/cv.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.EqualValues(t, 8, n)
	require.Len(t, api.puts, 1)
	assert.Equal(t, "originals/owner/r-1/cv.pdf", *api.puts[0].Key)
	assert.Equal(t, s3types.ServerSideEncryptionAes256, api.puts[0].ServerSideEncryption)

	rc, err := store.Open(ctx, "owner/r-1/cv.pdf")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, store.Delete(ctx, "owner/r-1/cv.pdf"))
	_, err = store.Open(ctx, "owner/r-1/cv.pdf")
	assert.True(t, errors.Is(err, object.ErrNotFound), "got %v", err)
}

func TestStoreUsesKMSWhenConfigured(t *testing.T) {
	api := newFakeAPI()
	store := NewWithClient(api, "bucket", "", "kms-key")

	_, err := store.Put(context.Background(), "k/cv.docx", "application/octet-stream", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, s3types.ServerSideEncryptionAwsKms, api.puts[0].ServerSideEncryption)
	assert.Equal(t, "kms-key", *api.puts[0].SSEKMSKeyId)
}

func TestStoreRejectsEscapingKeys(t *testing.T) {
	store := NewWithClient(newFakeAPI(), "bucket", "", "")
	_, err := store.Put(context.Background(), "../etc/passwd", "text/plain", strings.NewReader("x"))
	assert.ErrorIs(t, err, object.ErrInvalidKey)
}
