package spaces

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
	"github.com/infinitescroll/image-store/internal/storage"
)

// Object metadata key holding the original file name
const fileNameKey = "Filename"

// Provider implements a digitalocean spaces (or any S3 compatible) image storage
type Provider struct {
	spaces s3iface.S3API
	space  string
	random *rand.Rand
	mu     sync.Mutex
}

// New returns a new Provider instance
func New(space, endpoint, accessKey, secretKey string, forcePathStyle bool) (*Provider, error) {
	spacesSession, err := session.NewSession(&aws.Config{
		Credentials:      credentials.NewStaticCredentials(accessKey, secretKey, ""),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String("us-east-1"), // Needs to be us-east-1 for Spaces, or it'll fail
		S3ForcePathStyle: aws.Bool(forcePathStyle),
	})
	if err != nil {
		return nil, err
	}

	spaces := s3.New(spacesSession)

	// Fail early if the space doesn't exist or the credentials are wrong
	if _, err := spaces.HeadBucket(&s3.HeadBucketInput{Bucket: aws.String(space)}); err != nil {
		return nil, err
	}

	return NewWithClient(spaces, space), nil
}

// NewWithClient returns a new Provider instance using an existing S3 client
func NewWithClient(client s3iface.S3API, space string) *Provider {
	return &Provider{
		spaces: client,
		space:  space,
		random: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Put uploads an image under a generated key
func (p *Provider) Put(ctx context.Context, fileName string, r io.Reader) (string, error) {
	// PutObject needs a seekable body
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err = p.spaces.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.space),
		Key:         aws.String(id),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/jpeg"),
		Metadata: map[string]*string{
			fileNameKey: aws.String(fileName),
		},
	})
	if err != nil {
		return "", err
	}

	return id, nil
}

// Get returns the image data for an image id
func (p *Provider) Get(ctx context.Context, id string) (*storage.Object, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, storage.ErrNotFound
	}

	output, err := p.spaces.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.space),
		Key:    aws.String(id),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, storage.ErrNotFound
		}

		return nil, err
	}
	defer output.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, output.Body); err != nil {
		return nil, err
	}

	return &storage.Object{
		ID:       id,
		FileName: aws.StringValue(output.Metadata[fileNameKey]),
		Content:  buf.Bytes(),
	}, nil
}

// Random lists every key in the space and downloads up to count of them, picked at random
func (p *Provider) Random(ctx context.Context, count int) ([]storage.Object, error) {
	objects := []storage.Object{}
	if count <= 0 {
		return objects, nil
	}

	var keys []string
	err := p.spaces.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(p.space),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, object := range page.Contents {
			keys = append(keys, aws.StringValue(object.Key))
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.random.Shuffle(len(keys), func(i, j int) {
		keys[i], keys[j] = keys[j], keys[i]
	})
	p.mu.Unlock()

	for _, key := range keys {
		if len(objects) == count {
			break
		}

		object, err := p.Get(ctx, key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}

			return nil, err
		}

		objects = append(objects, *object)
	}

	return objects, nil
}

// Delete removes an image
func (p *Provider) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return storage.ErrNotFound
	}

	_, err := p.spaces.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.space),
		Key:    aws.String(id),
	})

	return err
}

// Ping checks that the space exists and is accessible with the configured credentials
func (p *Provider) Ping(ctx context.Context) error {
	_, err := p.spaces.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(p.space),
	})
	return err
}

func isNotFound(err error) bool {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		return aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound"
	}

	return false
}
