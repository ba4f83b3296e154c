package mediahost

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/tutoring-platform/internal/config"
	"github.com/magabrotheeeer/tutoring-platform/internal/lib/httprange"
)

const payload = "0123456789abcdefghij"

func newClient(base string) *Client {
	return New(config.Media{
		BaseURL:               base,
		Folder:                "Videos",
		ProbeTimeout:          time.Second,
		ResponseHeaderTimeout: time.Second,
	})
}

func TestPreset(t *testing.T) {
	tests := []struct {
		quality string
		want    string
	}{
		{"360p", "q_auto:low,h_360"},
		{"480p", "q_auto:medium,h_480"},
		{"720p", "q_auto:good,h_720"},
		{"1080p", "q_auto:best,h_1080"},
		{"1080P", DefaultPreset},
		{" 720p", DefaultPreset},
		{"", DefaultPreset},
		{"4k", DefaultPreset},
	}
	for _, tt := range tests {
		t.Run(tt.quality, func(t *testing.T) {
			assert.Equal(t, tt.want, Preset(tt.quality))
		})
	}
}

func TestURL(t *testing.T) {
	c := newClient("https://res.example.com/demo/video/upload/")
	assert.Equal(t,
		"https://res.example.com/demo/video/upload/q_auto:low,h_360/Videos/lesson1.mp4",
		c.URL("lesson1", "360p"))
	assert.Equal(t,
		"https://res.example.com/demo/video/upload/q_auto:good/Videos/lesson1.mp4",
		c.URL("lesson1", ""))
}

func TestProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		if r.URL.Path == "/missing.mp4" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		w.Header().Set("Content-Length", "1000")
	}))
	defer srv.Close()
	c := newClient(srv.URL)

	meta, err := c.Probe(context.Background(), srv.URL+"/ok.mp4")
	require.NoError(t, err)
	assert.Equal(t, Meta{Size: 1000, ContentType: "video/mp4"}, meta)

	_, err = c.Probe(context.Background(), srv.URL+"/missing.mp4")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProbe_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newClient(srv.URL)
	c.probeTimeout = 50 * time.Millisecond
	_, err := c.Probe(context.Background(), srv.URL+"/slow.mp4")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetch(t *testing.T) {
	var gotRange string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRange = r.Header.Get("Range")
		http.ServeContent(w, r, "v.mp4", time.Time{}, strings.NewReader(payload))
	}))
	defer srv.Close()

	body, err := newClient(srv.URL).Fetch(context.Background(), srv.URL+"/v.mp4", httprange.Range{Start: 5, End: 9, Size: 20})
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "bytes=5-9", gotRange)
	assert.Equal(t, "56789", string(data))
}

func TestFetch_RangeIgnored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, payload)
	}))
	defer srv.Close()

	body, err := newClient(srv.URL).Fetch(context.Background(), srv.URL+"/v.mp4", httprange.Range{Start: 10, End: 12, Size: 20})
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func TestFetch_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Fetch(context.Background(), srv.URL+"/v.mp4", httprange.Range{Start: 0, End: 1, Size: 2})
	assert.ErrorIs(t, err, ErrUpstream)
}
