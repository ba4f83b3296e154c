// Package mediahost клиент внешнего видеохостинга: адреса с пресетами
// качества, HEAD-запрос метаданных и выборка диапазона байт.
package mediahost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/tutoring-platform/internal/config"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/httprange"
)

var (
	// ErrNotFound видео недоступно у хостинга.
	ErrNotFound = errors.New("media not found")
	// ErrUpstream хостинг не отдал запрошенный диапазон.
	ErrUpstream = errors.New("upstream unavailable")
)

// DefaultPreset пресет для неизвестного или пустого качества.
const DefaultPreset = "q_auto:good"

var presets = map[string]string{
	"360p":  "q_auto:low,h_360",
	"480p":  "q_auto:medium,h_480",
	"720p":  "q_auto:good,h_720",
	"1080p": "q_auto:best,h_1080",
}

// Preset возвращает строку трансформации для качества. Ключ сравнивается
// точно, "1080P" получает пресет по умолчанию.
func Preset(quality string) string {
	if p, ok := presets[quality]; ok {
		return p
	}
	return DefaultPreset
}

// Meta метаданные видео из HEAD-ответа.
type Meta struct {
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// Client обращается к видеохостингу.
type Client struct {
	baseURL      string
	folder       string
	probeTimeout time.Duration
	httpClient   *http.Client
}

// New создаёт клиент. Таймаут на заголовки ответа ограничивает ожидание
// ранжированного GET, тело при этом может отдаваться сколь угодно долго.
func New(cfg config.Media) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.ResponseHeaderTimeout
	probeTimeout := cfg.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = 5 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		folder:       strings.Trim(cfg.Folder, "/"),
		probeTimeout: probeTimeout,
		httpClient:   &http.Client{Transport: transport},
	}
}

// URL адрес видео у хостинга: {base}/{preset}/{folder}/{publicId}.mp4.
func (c *Client) URL(publicID, quality string) string {
	parts := []string{c.baseURL, Preset(quality)}
	if c.folder != "" {
		parts = append(parts, c.folder)
	}
	return strings.Join(parts, "/") + "/" + publicID + ".mp4"
}

// Probe выполняет HEAD-запрос и возвращает размер и тип содержимого.
// Любая ошибка или ответ не 2xx приводит к ErrNotFound.
func (c *Client) Probe(ctx context.Context, url string) (Meta, error) {
	const op = "mediahost.Probe"
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return Meta{}, fmt.Errorf("%s: %w: %v", op, ErrNotFound, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Meta{}, fmt.Errorf("%s: %w: %v", op, ErrNotFound, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Meta{}, fmt.Errorf("%s: %w: status %d", op, ErrNotFound, resp.StatusCode)
	}
	size, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	if err != nil || size <= 0 {
		return Meta{}, fmt.Errorf("%s: %w: no content length", op, ErrNotFound)
	}
	ctype := resp.Header.Get("Content-Type")
	if ctype == "" {
		ctype = "video/mp4"
	}
	return Meta{Size: size, ContentType: ctype}, nil
}

// Fetch запрашивает диапазон байт. Тело ответа закрывает вызывающий.
func (c *Client) Fetch(ctx context.Context, url string, rng httprange.Range) (io.ReadCloser, error) {
	const op = "mediahost.Fetch"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrUpstream, err)
	}
	req.Header.Set("Range", rng.Header())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrUpstream, err)
	}
	switch resp.StatusCode {
	case http.StatusPartialContent:
		return resp.Body, nil
	case http.StatusOK:
		// хостинг проигнорировал Range: пропускаем начало сами
		if rng.Start > 0 {
			if _, err = io.CopyN(io.Discard, resp.Body, rng.Start); err != nil {
				resp.Body.Close()
				return nil, fmt.Errorf("%s: %w: %v", op, ErrUpstream, err)
			}
		}
		return limitedBody{Reader: io.LimitReader(resp.Body, rng.Length()), Closer: resp.Body}, nil
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w: status %d", op, ErrUpstream, resp.StatusCode)
	}
}

type limitedBody struct {
	io.Reader
	io.Closer
}
