package snapshot

import (
	"bytes"
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/inplace/internal/errors"
)

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store stores snapshots in an S3 bucket.
//
// Example usage:
//
//	client := snapshot.NewS3Client("us-east-1", "")
//	store := snapshot.NewS3Store(client, "my-bucket", "inplace/")
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Store creates a store writing to bucket under prefix.
func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// NewS3Client creates an S3 client for region. Credentials come from the
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN variables.
// A non-empty endpoint selects an S3-compatible service with path-style
// addressing.
func NewS3Client(region, endpoint string) *s3.Client {
	return s3.New(s3.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(envCredentials()),
	}, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
}

func envCredentials() aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		creds := aws.Credentials{
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "environment",
		}
		if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
			return aws.Credentials{}, errors.New(errors.CodeSnapshotWrite).
				WithDetail("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
		}
		return creds, nil
	})
}

func (s *S3Store) key(id, ext string) string {
	return s.prefix + id + ext
}

// Save uploads the markup and metadata objects of snap.
func (s *S3Store) Save(ctx context.Context, snap *Snapshot) (string, error) {
	snap, err := prepare(snap)
	if err != nil {
		return "", err
	}
	meta, err := encodeMeta(snap)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(snap.ID, markupExt)),
		Body:        bytes.NewReader([]byte(snap.Markup)),
		ContentType: aws.String("text/html; charset=utf-8"),
		Metadata: map[string]string{
			"snapshot-name": snap.Name,
			"snapshot-size": strconv.Itoa(snap.Size),
		},
	})
	if err != nil {
		return "", errors.New(errors.CodeSnapshotWrite).WithDetail("s3 upload failed").Wrap(err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(snap.ID, metaExt)),
		Body:        bytes.NewReader(meta),
		ContentType: aws.String("application/yaml"),
	})
	if err != nil {
		return "", errors.New(errors.CodeSnapshotWrite).WithDetail("s3 upload failed").Wrap(err)
	}
	return snap.ID, nil
}

func (s *S3Store) get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.New(errors.CodeSnapshotNotFound).WithDetail(key).Wrap(err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.New(errors.CodeSnapshotNotFound).WithDetail(key).Wrap(err)
	}
	return data, nil
}

// Load downloads the snapshot with the given id.
func (s *S3Store) Load(ctx context.Context, id string) (*Snapshot, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	data, err := s.get(ctx, s.key(id, metaExt))
	if err != nil {
		return nil, err
	}
	doc, err := decodeMeta(data)
	if err != nil {
		return nil, err
	}
	markup, err := s.get(ctx, s.key(id, markupExt))
	if err != nil {
		return nil, err
	}
	return &Snapshot{Meta: doc.Meta, Markup: string(markup), State: doc.State}, nil
}

// List reads the metadata object of every snapshot under the prefix.
func (s *S3Store) List(ctx context.Context) ([]Meta, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var metas []Meta
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.New(errors.CodeSnapshotNotFound).WithDetail("s3 list failed").Wrap(err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, metaExt) {
				continue
			}
			id := strings.TrimSuffix(strings.TrimPrefix(key, s.prefix), metaExt)
			if validID(id) != nil {
				continue
			}
			data, err := s.get(ctx, key)
			if err != nil {
				return nil, err
			}
			doc, err := decodeMeta(data)
			if err != nil {
				continue
			}
			metas = append(metas, doc.Meta)
		}
	}
	sortMetas(metas)
	return metas, nil
}
