// Package stream проксирует диапазоны байт видео с внешнего хостинга.
//
// Open проверяет запрос, получает размер видео HEAD-запросом (с кэшем в Redis),
// приводит диапазон к размеру и открывает ранжированный GET. Заголовки ответа
// клиенту пишутся только после успешного открытия, поэтому ошибку GET ещё
// можно вернуть статусом 502.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/tutoring-platform/internal/lib/httprange"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/sl"
	"github.com/magabrotheeeer/tutoring-platform/internal/mediahost"
	"github.com/magabrotheeeer/tutoring-platform/internal/metrics"
)

const probeKeyPrefix = "media:probe:"

// ErrMissingInput не передан идентификатор видео или заголовок Range.
var ErrMissingInput = errors.New("publicId and range header are required")

// UnsatisfiableError диапазон не пересекается с видео размера Size.
type UnsatisfiableError struct {
	Size int64
}

func (e *UnsatisfiableError) Error() string {
	return fmt.Sprintf("range not satisfiable for size %d", e.Size)
}

func (e *UnsatisfiableError) Unwrap() error {
	return httprange.ErrUnsatisfiable
}

// Host видеохостинг.
type Host interface {
	URL(publicID, quality string) string
	Probe(ctx context.Context, url string) (mediahost.Meta, error)
	Fetch(ctx context.Context, url string, rng httprange.Range) (io.ReadCloser, error)
}

// ProbeCache кэш метаданных видео.
type ProbeCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Request входные данные запроса.
type Request struct {
	PublicID string
	Quality  string
	Range    string
}

// Stream открытый поток диапазона. Body закрывает вызывающий.
type Stream struct {
	Range       httprange.Range
	ContentType string
	Body        io.ReadCloser
}

// Service прокси видеопотока.
type Service struct {
	log     *slog.Logger
	host    Host
	cache   ProbeCache
	ttl     time.Duration
	metrics *metrics.Metrics
}

// New создаёт прокси. cache может быть nil.
func New(log *slog.Logger, host Host, cache ProbeCache, ttl time.Duration, m *metrics.Metrics) *Service {
	return &Service{log: log, host: host, cache: cache, ttl: ttl, metrics: m}
}

// Open готовит поток. Ошибки: ErrMissingInput и httprange.ErrMalformed до
// обращения к хостингу, mediahost.ErrNotFound, *UnsatisfiableError и
// mediahost.ErrUpstream.
func (s *Service) Open(ctx context.Context, req Request) (*Stream, error) {
	const op = "stream.Open"
	publicID := strings.TrimSpace(req.PublicID)
	if publicID == "" || strings.TrimSpace(req.Range) == "" {
		s.metrics.StreamRequests.WithLabelValues("bad_request").Inc()
		return nil, fmt.Errorf("%s: %w", op, ErrMissingInput)
	}
	spec, err := httprange.Parse(req.Range)
	if err != nil {
		s.metrics.StreamRequests.WithLabelValues("bad_request").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	url := s.host.URL(publicID, req.Quality)
	meta, err := s.probe(ctx, url)
	if err != nil {
		s.metrics.StreamRequests.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rng, err := spec.Resolve(meta.Size)
	if err != nil {
		s.metrics.StreamRequests.WithLabelValues("unsatisfiable").Inc()
		return nil, fmt.Errorf("%s: %w", op, &UnsatisfiableError{Size: meta.Size})
	}

	body, err := s.host.Fetch(ctx, url, rng)
	if err != nil {
		s.metrics.StreamRequests.WithLabelValues("upstream_error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Stream{Range: rng, ContentType: meta.ContentType, Body: body}, nil
}

// Copy передаёт тело потока в dst и закрывает его.
func (s *Service) Copy(dst io.Writer, st *Stream) (int64, error) {
	defer st.Body.Close()
	n, err := io.Copy(dst, st.Body)
	s.metrics.StreamedBytes.Add(float64(n))
	if err != nil {
		s.metrics.StreamRequests.WithLabelValues("aborted").Inc()
		return n, fmt.Errorf("stream.Copy: %w", err)
	}
	s.metrics.StreamRequests.WithLabelValues("ok").Inc()
	return n, nil
}

func (s *Service) probe(ctx context.Context, url string) (mediahost.Meta, error) {
	key := probeKeyPrefix + url
	if s.cache != nil {
		var meta mediahost.Meta
		found, err := s.cache.Get(ctx, key, &meta)
		if err != nil {
			s.log.Warn("probe cache read failed", sl.Err(err))
		} else if found && meta.Size > 0 {
			return meta, nil
		}
	}

	meta, err := s.host.Probe(ctx, url)
	if err != nil {
		return mediahost.Meta{}, err
	}
	if s.cache != nil {
		if err = s.cache.Set(ctx, key, meta, s.ttl); err != nil {
			s.log.Warn("probe cache write failed", sl.Err(err))
		}
	}
	return meta, nil
}
