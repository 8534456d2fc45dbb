package s3store

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/vireolabs/objectio/errors"
	"github.com/vireolabs/objectio/ioctx"
	"github.com/vireolabs/objectio/store"
)

const (
	// uploadPartSize is the chunk size for multipart uploads.
	uploadPartSize = 16 << 20
	// uploadParallelism bounds concurrent part uploads per write.
	uploadParallelism = 4
	// maxObjectSize is the S3 multipart-upload object limit.
	maxObjectSize = 5 << 40
	// listPageSize is the maximum number of keys fetched per list
	// request.
	listPageSize = 1000
)

// uploadClient abstracts the s3manager uploader for tests.
type uploadClient interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

// accessor serves objects from one S3 bucket under a fixed key prefix.
// Directories are S3 common prefixes; an explicitly created directory
// is a zero-byte object whose key ends in "/".
type accessor struct {
	provider ClientProvider
	bucket   string
	prefix   string

	newUploader func(client s3iface.S3API) uploadClient
}

// Option configures the S3 accessor.
type Option func(*accessor)

// New returns an accessor for the given bucket. Object IDs map to keys
// under prefix, which may be empty.
func New(provider ClientProvider, bucket, prefix string, opts ...Option) store.Accessor {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	a := &accessor{
		provider: provider,
		bucket:   bucket,
		prefix:   prefix,
		newUploader: func(client s3iface.S3API) uploadClient {
			return s3manager.NewUploaderWithClient(client, func(u *s3manager.Uploader) {
				u.PartSize = uploadPartSize
				u.Concurrency = uploadParallelism
			})
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *accessor) String() string {
	return fmt.Sprintf("s3(%s/%s)", a.bucket, a.prefix)
}

func (*accessor) Capabilities() store.Capabilities {
	return store.Capabilities{
		Ops: store.CapRead | store.CapWrite | store.CapDelete | store.CapList |
			store.CapStat | store.CapCreateDir | store.CapRangeRead,
		MaxRequestSize: maxObjectSize,
	}
}

func (a *accessor) key(id store.ObjectID) string { return a.prefix + string(id) }

// rangeHeader renders r as an HTTP Range header value, or "" for a
// whole-object read.
func rangeHeader(r store.Range) string {
	if r.IsWhole() {
		return ""
	}
	if r.Len == store.LenToEnd {
		return fmt.Sprintf("bytes=%d-", r.Off)
	}
	return fmt.Sprintf("bytes=%d-%d", r.Off, r.Off+r.Len-1)
}

func (a *accessor) Read(ctx context.Context, id store.ObjectID, r store.Range) (ioctx.ReadCloser, error) {
	const op = "read"
	if id.IsDir() {
		return nil, errors.E(errors.Op(op), errors.Path(string(id)), errors.NotFound, "object not found")
	}
	client, err := a.provider.Get(ctx, a.bucket)
	if err != nil {
		return nil, err
	}
	input := &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(id)),
	}
	if h := rangeHeader(r); h != "" {
		input.Range = aws.String(h)
	}
	out, err := client.GetObjectWithContext(ctx, input)
	if err != nil {
		return nil, annotate(err, op, string(id), "s3 get")
	}
	return ioctx.FromStdReadCloser(out.Body), nil
}

func (a *accessor) Write(ctx context.Context, id store.ObjectID, src io.Reader, sizeHint int64) (store.Metadata, error) {
	const op = "write"
	client, err := a.provider.Get(ctx, a.bucket)
	if err != nil {
		return store.Metadata{}, err
	}
	// The uploader buffers whole parts before sending, so a source
	// failure aborts the multipart upload and no partial object becomes
	// visible.
	_, err = a.newUploader(client).UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(id)),
		Body:   src,
	})
	if err != nil {
		return store.Metadata{}, annotate(err, op, string(id), "s3 upload")
	}
	meta, err := a.Stat(ctx, id)
	if err != nil {
		return store.Metadata{}, errors.E(errors.Op(op), errors.Path(string(id)), err)
	}
	if sizeHint != store.SizeUnknown && meta.Size != sizeHint {
		return store.Metadata{}, errors.E(errors.Op(op), errors.Path(string(id)), errors.Unexpected,
			fmt.Sprintf("uploaded %d bytes, expected %d", meta.Size, sizeHint))
	}
	return meta, nil
}

func (a *accessor) Delete(ctx context.Context, id store.ObjectID) error {
	const op = "delete"
	client, err := a.provider.Get(ctx, a.bucket)
	if err != nil {
		return err
	}
	// S3 DeleteObject succeeds on nonexistent keys, giving idempotent
	// deletes for free.
	_, err = client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(id)),
	})
	if err != nil {
		return annotate(err, op, string(id), "s3 delete")
	}
	return nil
}

func (a *accessor) Stat(ctx context.Context, id store.ObjectID) (store.Metadata, error) {
	const op = "stat"
	client, err := a.provider.Get(ctx, a.bucket)
	if err != nil {
		return store.Metadata{}, err
	}
	if id.IsDir() {
		return a.statDir(ctx, client, id)
	}
	out, err := client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(id)),
	})
	if err != nil {
		return store.Metadata{}, annotate(err, op, string(id), "s3 head")
	}
	meta := store.Metadata{
		Size:        aws.Int64Value(out.ContentLength),
		ETag:        strings.Trim(aws.StringValue(out.ETag), `"`),
		ContentType: aws.StringValue(out.ContentType),
	}
	if out.LastModified != nil {
		meta.ModTime = *out.LastModified
	}
	return meta, nil
}

// statDir reports a directory as existing if its marker object exists
// or any key lives under its prefix. The root always exists.
func (a *accessor) statDir(ctx context.Context, client s3iface.S3API, id store.ObjectID) (store.Metadata, error) {
	const op = "stat"
	if id == "" {
		return store.Metadata{IsDir: true}, nil
	}
	out, err := client.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(a.bucket),
		Prefix:  aws.String(a.key(id)),
		MaxKeys: aws.Int64(1),
	})
	if err != nil {
		return store.Metadata{}, annotate(err, op, string(id), "s3 list")
	}
	if len(out.Contents) == 0 && len(out.CommonPrefixes) == 0 {
		return store.Metadata{}, errors.E(errors.Op(op), errors.Path(string(id)), errors.NotFound, "no such directory")
	}
	return store.Metadata{IsDir: true}, nil
}

func (a *accessor) CreateDir(ctx context.Context, id store.ObjectID) error {
	const op = "create-dir"
	if id == "" {
		return nil
	}
	client, err := a.provider.Get(ctx, a.bucket)
	if err != nil {
		return err
	}
	_, err = client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(id.AsDir())),
		Body:   strings.NewReader(""),
	})
	if err != nil {
		return annotate(err, op, string(id), "s3 put dir marker")
	}
	return nil
}
