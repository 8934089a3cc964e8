package store

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/facebookgo/clock"
	raven "github.com/getsentry/raven-go"
)

// A S3 store represents a store that is kept on AWS S3 storage.
// Designs are small, so items are read with a single GET and written with a
// single PUT.
// Do not change Bucket or Prefix concurrently with calls using the structure.
type S3 struct {
	svc    s3iface.S3API
	Bucket string
	Prefix string
	sizes  *sizecache // keep HEAD info
}

var _ Store = &S3{}

// NewS3 creates a new S3 store. It will use the given bucket and will prepend
// prefix to all keys. This is to allow for a bucket to be used for more than
// one store. For example if prefix were "monogram/" then an
// Open("letters3/A3.dst") would look for the key "monogram/letters3/A3.dst"
// in the bucket. The authorization method and credentials in the session are
// used for all accesses.
func NewS3(bucket, prefix string, awsSession *session.Session) *S3 {
	return NewS3Client(bucket, prefix, s3.New(awsSession), nil)
}

// NewS3Client creates a S3 store using the given client. The clock is used
// to expire remembered object sizes; nil means the wall clock.
func NewS3Client(bucket, prefix string, svc s3iface.S3API, c clock.Clock) *S3 {
	return &S3{
		Bucket: bucket,
		Prefix: prefix,
		svc:    svc,
		sizes:  newSizeCache(c),
	}
}

// List returns a list of all the keys in this store. It will only return ones
// that satisfy the store's Prefix, so it is safe to use this on a bucket
// containing other items.
func (s *S3) List() <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		_, err := s.list("", func(key string) { out <- key })
		if err != nil {
			log.Println("S3 List:", s.Prefix, err)
			raven.CaptureError(err, map[string]string{"Bucket": s.Bucket, "Prefix": s.Prefix})
		}
	}()
	return out
}

// ListPrefix returns the keys in this store that have the given prefix.
// The argument prefix is added to the store's Prefix.
func (s *S3) ListPrefix(prefix string) ([]string, error) {
	var result []string
	_, err := s.list(prefix, func(key string) { result = append(result, key) })
	if err != nil {
		log.Println("S3 ListPrefix:", s.Prefix, prefix, err)
		raven.CaptureError(err, map[string]string{"Bucket": s.Bucket, "Prefix": s.Prefix, "Pattern": prefix})
	}
	return result, err
}

func (s *S3) list(prefix string, emit func(string)) (int, error) {
	var n int
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.Bucket),
		Prefix: aws.String(s.Prefix + prefix),
	}
	err := s.svc.ListObjectsV2Pages(input,
		func(page *s3.ListObjectsV2Output, lastpage bool) bool {
			for _, item := range page.Contents {
				key := strings.TrimPrefix(aws.StringValue(item.Key), s.Prefix)
				s.sizes.Set(key, aws.Int64Value(item.Size))
				emit(key)
				n++
			}
			return !lastpage
		})
	return n, err
}

// Open will return a ReadAtCloser to get the content for the given key. The
// whole object is downloaded before Open returns.
func (s *S3) Open(key string) (ReadAtCloser, int64, error) {
	// check that the key exists, and if so get its size
	_, err := s.stat(key)
	if err != nil {
		return nil, 0, err
	}
	output, err := s.svc.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Prefix + key),
	})
	if err != nil {
		if isNotFound(err) {
			s.sizes.Set(key, sizeDeleted)
			return nil, 0, ErrNotExist
		}
		log.Println("S3 Open:", s.Prefix, key, err)
		return nil, 0, err
	}
	defer output.Body.Close()
	var data bytes.Buffer
	_, err = io.Copy(&data, output.Body)
	if err != nil {
		log.Println("S3 Open:", s.Prefix, key, err)
		return nil, 0, err
	}
	s.sizes.Set(key, int64(data.Len()))
	return &memReader{b: data.Bytes()}, int64(data.Len()), nil
}

// Create will return a WriteCloser to upload content to the given key. Data
// is buffered in memory and uploaded when the writer is closed.
func (s *S3) Create(key string) (io.WriteCloser, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	_, err := s.stat(key)
	if err == nil {
		return nil, ErrKeyExists
	} else if err != ErrNotExist {
		return nil, err
	}
	return &s3WriteCloser{parent: s, key: key}, nil
}

// Delete will remove the given key from the store. The store's Prefix is
// prepended first. It is not an error to delete something that doesn't exist.
func (s *S3) Delete(key string) error {
	_, err := s.svc.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Prefix + key),
	})
	if err != nil {
		log.Println("S3 Delete:", s.Prefix, key, err)
		raven.CaptureError(err, map[string]string{"Bucket": s.Bucket, "Prefix": s.Prefix, "Key": key})
	} else {
		s.sizes.Set(key, sizeDeleted)
	}
	return err
}

// stat will check if a key exists, and if so it returns the size. If the item
// does not exist ErrNotExist is returned.
func (s *S3) stat(key string) (int64, error) {
	// Cache the key sizes as we see them. This drastically cuts down on the
	// number of HEAD requests.
	return s.sizes.Get(key, s.stat0)
}

// stat0 implements the actual HEAD request to s3. You probably want to call
// stat().
func (s *S3) stat0(key string) (int64, error) {
	input := &s3.HeadObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Prefix + key),
	}
	info, err := s.svc.HeadObject(input)
	if err != nil {
		if isNotFound(err) {
			return 0, ErrNotExist
		}
		return 0, err
	}
	return aws.Int64Value(info.ContentLength), nil
}

// isNotFound reports whether err is S3 telling us the object is missing.
func isNotFound(err error) bool {
	if e, ok := err.(awserr.RequestFailure); ok && e.StatusCode() == http.StatusNotFound {
		return true
	}
	if e, ok := err.(awserr.Error); ok {
		switch e.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	return false
}

// s3WriteCloser collects an item and does a single PUT when closed.
type s3WriteCloser struct {
	parent *S3
	key    string
	buf    bytes.Buffer
	closed bool
}

func (wc *s3WriteCloser) Write(p []byte) (int, error) {
	return wc.buf.Write(p)
}

func (wc *s3WriteCloser) Close() error {
	if wc.closed {
		return nil
	}
	wc.closed = true
	s := wc.parent
	source := bytes.NewReader(wc.buf.Bytes()) // need Seek()
	_, err := s.svc.PutObject(&s3.PutObjectInput{
		Body:          source,
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(s.Prefix + wc.key),
		ContentLength: aws.Int64(int64(source.Len())),
	})
	if err != nil {
		log.Println("S3 Put:", s.Prefix, wc.key, err)
		raven.CaptureError(err, map[string]string{"Bucket": s.Bucket, "Key": wc.key})
		return err
	}
	s.sizes.Set(wc.key, int64(wc.buf.Len()))
	return nil
}
