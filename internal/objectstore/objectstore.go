// Package objectstore загружает изображения профилей в S3-совместимое хранилище
// через minio-go. Если бакет или endpoint не заданы, используется
// клиент-заглушка, который ничего не сохраняет.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/magabrotheeeer/tutoring-platform/internal/config"
)

const defaultRequestTimeout = 10 * time.Second

// Object загруженный объект.
type Object struct {
	Key string
	URL string
}

// Client операции над объектами.
type Client interface {
	Enabled() bool
	Upload(ctx context.Context, key, contentType string, body []byte) (Object, error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL возвращает ключ объекта по ссылке, выданной Upload.
	KeyFromURL(rawURL string) (string, bool)
}

// New возвращает S3-клиент или заглушку, если хранилище не настроено.
func New(cfg config.ObjectStorage) (Client, error) {
	const op = "objectstore.New"

	bucket := strings.TrimSpace(cfg.Bucket)
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if bucket == "" || endpoint == "" {
		return noopClient{}, nil
	}

	secure := cfg.UseSSL
	host := endpoint
	if strings.Contains(endpoint, "://") {
		parsed, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		host = parsed.Host
		secure = parsed.Scheme == "https"
	}
	if host == "" {
		return nil, fmt.Errorf("%s: empty endpoint host", op)
	}

	// без ключей запросы уходят анонимно, как к локальному MinIO
	mc, err := minio.New(host, &minio.Options{
		Creds:        credentials.NewStaticV4(strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey), ""),
		Secure:       secure,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
		MaxRetries:   cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	scheme := "http"
	if secure {
		scheme = "https"
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	cfg.Bucket = bucket
	return &s3Client{
		cfg:      cfg,
		mc:       mc,
		endpoint: &url.URL{Scheme: scheme, Host: host},
		timeout:  timeout,
	}, nil
}

type noopClient struct{}

func (noopClient) Enabled() bool { return false }

func (noopClient) Upload(context.Context, string, string, []byte) (Object, error) {
	return Object{}, nil
}

func (noopClient) Delete(context.Context, string) error { return nil }

func (noopClient) KeyFromURL(string) (string, bool) { return "", false }

type s3Client struct {
	cfg      config.ObjectStorage
	mc       *minio.Client
	endpoint *url.URL
	timeout  time.Duration
}

func (c *s3Client) Enabled() bool { return true }

// Upload сохраняет объект по ключу с префиксом из конфигурации.
func (c *s3Client) Upload(ctx context.Context, key, contentType string, body []byte) (Object, error) {
	const op = "objectstore.Upload"
	finalKey := c.applyPrefix(key)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.mc.PutObject(ctx, c.cfg.Bucket, finalKey, bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return Object{}, fmt.Errorf("%s: %s: %w", op, finalKey, err)
	}
	return Object{Key: finalKey, URL: c.publicURL(finalKey)}, nil
}

// Delete удаляет объект. Отсутствующий объект не считается ошибкой.
func (c *s3Client) Delete(ctx context.Context, key string) error {
	const op = "objectstore.Delete"
	finalKey := c.applyPrefix(key)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.mc.RemoveObject(ctx, c.cfg.Bucket, finalKey, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).StatusCode != http.StatusNotFound {
		return fmt.Errorf("%s: %s: %w", op, finalKey, err)
	}
	return nil
}

// KeyFromURL отрезает от ссылки публичный адрес или адрес бакета.
func (c *s3Client) KeyFromURL(rawURL string) (string, bool) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", false
	}
	bases := []string{strings.TrimRight(c.objectURL("").String(), "/")}
	if public := strings.TrimRight(strings.TrimSpace(c.cfg.PublicEndpoint), "/"); public != "" {
		bases = append(bases, public)
	}
	for _, base := range bases {
		if key, ok := strings.CutPrefix(rawURL, base+"/"); ok && key != "" {
			return key, true
		}
	}
	return "", false
}

func (c *s3Client) applyPrefix(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	prefix := strings.Trim(strings.TrimSpace(c.cfg.Prefix), "/")
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	case key == prefix || strings.HasPrefix(key, prefix+"/"):
		return key
	default:
		return prefix + "/" + key
	}
}

func (c *s3Client) objectURL(key string) *url.URL {
	u := *c.endpoint
	u.Path = "/" + c.cfg.Bucket
	if key = strings.TrimLeft(key, "/"); key != "" {
		u.Path += "/" + key
	}
	return &u
}

// publicURL ссылка для клиентов: через публичный адрес, если он задан.
func (c *s3Client) publicURL(key string) string {
	base := strings.TrimRight(strings.TrimSpace(c.cfg.PublicEndpoint), "/")
	if base == "" {
		return c.objectURL(key).String()
	}
	return base + "/" + strings.TrimLeft(key, "/")
}
