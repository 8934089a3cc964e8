package storetest

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"

	"github.com/ndlib/monogram/store"
)

// These tests talk to a real S3 compatible server, e.g. a local Minio, given
// by the environment variable MONOGRAM_S3_ENDPOINT ("localhost:9000"). The
// bucket "monogram-test" must already exist.
func getSession(t *testing.T) *session.Session {
	endpoint := os.Getenv("MONOGRAM_S3_ENDPOINT")
	if endpoint == "" {
		t.Skip("MONOGRAM_S3_ENDPOINT not set")
	}
	s3Config := &aws.Config{
		Endpoint:         aws.String("http://" + endpoint),
		Region:           aws.String("us-east-1"),
		DisableSSL:       aws.Bool(true),
		S3ForcePathStyle: aws.Bool(true),
	}
	return session.New(s3Config)
}

func TestS3Conformance(t *testing.T) {
	sess := getSession(t)
	prefix := fmt.Sprintf("run-%d/", time.Now().UnixNano())
	Conformance(t, store.NewS3("monogram-test", prefix, sess))
}

func TestS3Concurrent(t *testing.T) {
	sess := getSession(t)
	prefix := fmt.Sprintf("run-%d/", time.Now().UnixNano())
	Concurrent(t, store.NewS3("monogram-test", prefix, sess), 20)
}
