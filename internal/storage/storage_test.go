package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPutDelete(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir, "")
	require.NoError(t, err)

	key := "sites/s1/logo/a.png"
	require.NoError(t, l.Put(context.Background(), key, strings.NewReader("png"), "image/png"))

	got, err := os.ReadFile(filepath.Join(dir, "sites", "s1", "logo", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(got))
	assert.Equal(t, "/assets/sites/s1/logo/a.png", l.URL(key))

	require.NoError(t, l.Delete(context.Background(), key))
	err = l.Delete(context.Background(), key)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	l, err := NewLocal(t.TempDir(), "https://cdn.example/")
	require.NoError(t, err)

	for _, key := range []string{"", "/etc/passwd", "../x", "a/../../x", "..", `a\b`} {
		err := l.Put(context.Background(), key, strings.NewReader("x"), "")
		assert.True(t, errors.Is(err, ErrInvalidKey), key)
	}
	assert.Equal(t, "https://cdn.example/k", l.URL("k"))
}

func TestNewSelectsDriver(t *testing.T) {
	s, err := New(Config{Driver: "local", LocalDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &Local{}, s)

	_, err = New(Config{Driver: "ftp"})
	assert.Error(t, err)
}

func TestLogoKey(t *testing.T) {
	k := LogoKey("s1", ".PNG")
	assert.True(t, strings.HasPrefix(k, "sites/s1/logo/"))
	assert.True(t, strings.HasSuffix(k, ".png"))
	assert.NotEqual(t, k, LogoKey("s1", ".png"))
	assert.Equal(t, ".webp", ExtFor("image/webp"))
	assert.Equal(t, "", ExtFor("text/plain"))
}

type fakeUploader struct {
	s3manageriface.UploaderAPI
	got  *s3manager.UploadInput
	body string
}

func (f *fakeUploader) UploadWithContext(_ aws.Context, in *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	f.got = in
	b, err := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3manager.UploadOutput{}, err
}

type fakeS3 struct {
	s3iface.S3API
	deleted []string
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.StringValue(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3PutDelete(t *testing.T) {
	up, cl := &fakeUploader{}, &fakeS3{}
	s := &S3{bucket: "logos", baseURL: "https://pub.example", uploader: up, client: cl}

	require.NoError(t, s.Put(context.Background(), "sites/s1/logo/a.png", strings.NewReader("img"), "image/png"))
	assert.Equal(t, "logos", aws.StringValue(up.got.Bucket))
	assert.Equal(t, "sites/s1/logo/a.png", aws.StringValue(up.got.Key))
	assert.Equal(t, "image/png", aws.StringValue(up.got.ContentType))
	assert.Equal(t, "img", up.body)

	require.NoError(t, s.Delete(context.Background(), "sites/s1/logo/a.png"))
	assert.Equal(t, []string{"sites/s1/logo/a.png"}, cl.deleted)
	assert.Equal(t, "https://pub.example/sites/s1/logo/a.png", s.URL("sites/s1/logo/a.png"))

	assert.True(t, errors.Is(s.Put(context.Background(), "../x", strings.NewReader(""), ""), ErrInvalidKey))
}

func TestNewS3RequiresBucket(t *testing.T) {
	_, err := NewS3(S3Config{}, "")
	assert.Error(t, err)

	s, err := NewS3(S3Config{Bucket: "b", Endpoint: "https://acct.r2.cloudflarestorage.com",
		AccessKeyID: "k", SecretAccessKey: "s", ForcePathStyle: true}, "https://pub.example")
	require.NoError(t, err)
	assert.Equal(t, "https://pub.example/x", s.URL("x"))
}
