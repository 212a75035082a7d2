package filestore

import (
	"bytes"
	"context"
	"log"
	"path"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"
)

type OSSConfig struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	SecurityToken   string
	Bucket          string
	Prefix          string
}

// ossBackend keeps every key under an optional prefix inside one bucket.
type ossBackend struct {
	bucket *oss.Bucket
	prefix string
}

func NewOSS(cfg OSSConfig, opt Options) (Store, error) {
	if cfg.Endpoint == "" || cfg.AccessKeyID == "" || cfg.AccessKeySecret == "" || cfg.Bucket == "" {
		return nil, errors.New("missing env: ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")
	}
	var clientOpts []oss.ClientOption
	if cfg.SecurityToken != "" {
		clientOpts = append(clientOpts, oss.SecurityToken(cfg.SecurityToken))
	}
	client, err := oss.New(normalizeEndpoint(cfg.Endpoint), cfg.AccessKeyID, cfg.AccessKeySecret, clientOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "oss.New")
	}
	bkt, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, "client.Bucket")
	}
	log.Printf("[OSS] file store bucket=%s prefix=%q", cfg.Bucket, cfg.Prefix)
	if opt.StagingDir == "" {
		opt.StagingDir = "staging"
	}
	return newStore(&ossBackend{bucket: bkt, prefix: strings.Trim(cfg.Prefix, "/")}, opt), nil
}

func normalizeEndpoint(ep string) string {
	ep = strings.TrimSpace(ep)
	if ep == "" || strings.HasPrefix(ep, "http://") || strings.HasPrefix(ep, "https://") {
		return ep
	}
	return "https://" + ep
}

func (b *ossBackend) key(k string) string {
	if b.prefix == "" {
		return k
	}
	return path.Join(b.prefix, k)
}

func (b *ossBackend) put(ctx context.Context, key string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return b.bucket.PutObject(b.key(key), bytes.NewReader(data),
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	)
}

// move is copy + delete; OSS has no rename.
func (b *ossBackend) move(ctx context.Context, src, dst string) error {
	if _, err := b.bucket.CopyObject(b.key(src), b.key(dst), oss.WithContext(ctx)); err != nil {
		return errors.Wrap(err, "copy object")
	}
	if err := b.bucket.DeleteObject(b.key(src), oss.WithContext(ctx)); err != nil {
		log.Printf("[OSS] staged object %s left behind: %v", src, err)
	}
	return nil
}

func (b *ossBackend) remove(ctx context.Context, key string) error {
	return b.bucket.DeleteObject(b.key(key), oss.WithContext(ctx))
}

func (b *ossBackend) reap(ctx context.Context, prefix string, olderThan time.Time) (int, error) {
	marker := oss.Marker("")
	var stale []string
	for {
		lor, err := b.bucket.ListObjects(oss.Prefix(b.key(prefix)+"/"), marker, oss.MaxKeys(1000), oss.WithContext(ctx))
		if err != nil {
			return 0, err
		}
		for _, obj := range lor.Objects {
			if obj.Key != "" && obj.LastModified.Before(olderThan) {
				stale = append(stale, obj.Key)
			}
		}
		if !lor.IsTruncated {
			break
		}
		marker = oss.Marker(lor.NextMarker)
	}

	deleted := 0
	for i := 0; i < len(stale); i += 1000 {
		end := i + 1000
		if end > len(stale) {
			end = len(stale)
		}
		if _, err := b.bucket.DeleteObjects(stale[i:end], oss.DeleteObjectsQuiet(true), oss.WithContext(ctx)); err != nil {
			return deleted, err
		}
		deleted += end - i
	}
	return deleted, nil
}
