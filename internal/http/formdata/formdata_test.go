package formdata

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000000000")

func multipartRequest(t *testing.T, fields map[string][]string, file []byte, contentType string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="me.png"`)
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImage(t *testing.T) {
	tests := []struct {
		name        string
		file        []byte
		contentType string
		wantNil     bool
		wantErr     error
		wantType    string
	}{
		{name: "no file", wantNil: true},
		{name: "png with declared type", file: pngHeader, contentType: "image/png", wantType: "image/png"},
		{name: "sniffed type", file: pngHeader, contentType: "application/octet-stream", wantType: "image/png"},
		{name: "not an image", file: []byte("hello world"), contentType: "text/plain", wantErr: ErrNotImage},
		{name: "too large", file: bytes.Repeat([]byte{1}, MaxImageSize+1), contentType: "image/png", wantErr: ErrImageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := multipartRequest(t, map[string][]string{"firstName": {"Ann"}}, tt.file, tt.contentType)
			require.NoError(t, Parse(req))

			img, err := Image(req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, img)
				return
			}
			require.NotNil(t, img)
			assert.Equal(t, "me.png", img.Filename)
			assert.Equal(t, tt.wantType, img.ContentType)
			assert.Equal(t, tt.file, img.Data)
		})
	}
}

func TestParse_URLEncoded(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("firstName=Ann&subjects=Maths"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	require.NoError(t, Parse(req))
	assert.Equal(t, "Ann", req.FormValue("firstName"))

	img, err := Image(req)
	require.NoError(t, err)
	assert.Nil(t, img)
}

func TestSubjects(t *testing.T) {
	req := multipartRequest(t, map[string][]string{
		"subjects": {"Maths", " Physics , Chemistry", ""},
	}, nil, "")
	require.NoError(t, Parse(req))

	assert.Equal(t, []string{"Maths", "Physics", "Chemistry"}, Subjects(req))
}
