package main

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/certifi/gocertifi"
	"github.com/pkg/errors"

	"github.com/ndlib/monogram/store"
)

// splitBucketPrefix will take a path and separate the bucket name from a
// prefix, if any. The prefix returned is either empty or ends with a slash.
//
// examples:
// 		"" -> ("", "")
//		"bucket" -> ("bucket", "")
//		"bucket/and/a/prefix" -> ("bucket", "and/a/prefix/")
func splitBucketPrefix(location string) (bucket, prefix string) {
	if location == "" {
		return
	}
	location = strings.TrimPrefix(location, "/")
	v := strings.SplitN(location, "/", 2)
	bucket = v[0]
	if len(v) > 1 {
		prefix = v[1]
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix = prefix + "/"
	}
	return
}

// parselocation returns the store holding the letter designs at location.
// An empty location gives an empty memory store. A path, or a "file:" URL,
// gives a directory, and "s3:" URLs give an S3 bucket. The host of an s3
// URL, if any, is the endpoint to use instead of AWS.
func parselocation(location string) (store.Store, error) {
	if location == "" {
		return store.NewMemory(), nil
	}
	u, err := url.Parse(location)
	if err != nil {
		return nil, errors.Wrap(err, "Problem parsing location")
	}
	switch u.Scheme {
	case "", "file":
		path := u.Path
		if u.Opaque != "" {
			path = u.Opaque
		}
		return store.NewFileSystem(filepath.Clean(path)), nil
	case "s3":
		conf := &aws.Config{}
		if u.Host != "" {
			conf.Endpoint = aws.String(u.Host)
			conf.Region = aws.String("us-east-1")
			// disable SSL for local development
			if strings.Contains(u.Host, "localhost") {
				conf.DisableSSL = aws.Bool(true)
				conf.S3ForcePathStyle = aws.Bool(true)
			}
		}
		client, err := certifiClient()
		if err != nil {
			return nil, err
		}
		conf.HTTPClient = client
		bucket, prefix := splitBucketPrefix(u.Path)
		if bucket == "" {
			return nil, errors.Errorf("No bucket name in location %s", location)
		}
		sess, err := session.NewSession(conf)
		if err != nil {
			return nil, err
		}
		return store.NewS3(bucket, prefix, sess), nil
	}
	return nil, errors.Errorf("Unknown scheme in location %s", location)
}

// certifiClient returns an http client which trusts the Mozilla CA bundle,
// so S3 works on hosts without system certificates.
func certifiClient() (*http.Client, error) {
	pool, err := gocertifi.CACerts()
	if err != nil {
		return nil, errors.Wrap(err, "Loading CA bundle")
	}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{RootCAs: pool},
		},
	}, nil
}
