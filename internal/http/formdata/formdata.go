// Package formdata разбирает multipart-формы с изображением профиля.
package formdata

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/magabrotheeeer/tutoring-platform/internal/services/account"
)

const (
	// MaxMemory объём формы, который держится в памяти при разборе.
	MaxMemory = 8 << 20
	// MaxImageSize максимальный размер изображения профиля.
	MaxImageSize = 5 << 20
	// ImageField имя поля с файлом изображения.
	ImageField = "image"
)

var (
	// ErrImageTooLarge изображение больше MaxImageSize.
	ErrImageTooLarge = errors.New("image is too large")
	// ErrNotImage файл не является изображением.
	ErrNotImage = errors.New("file is not an image")
)

// Parse разбирает multipart-форму. Обычная urlencoded-форма тоже принимается.
func Parse(r *http.Request) error {
	const op = "formdata.Parse"
	err := r.ParseMultipartForm(MaxMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Image читает необязательный файл изображения. Без файла возвращает nil, nil.
func Image(r *http.Request) (*account.Image, error) {
	const op = "formdata.Image"
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile(ImageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer file.Close()

	if header.Size > MaxImageSize {
		return nil, fmt.Errorf("%s: %w", op, ErrImageTooLarge)
	}
	data, err := io.ReadAll(io.LimitReader(file, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("%s: %w", op, ErrImageTooLarge)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%s: %w", op, ErrNotImage)
	}
	return &account.Image{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// Subjects собирает предметы из повторяющегося поля subjects.
// Значения через запятую тоже разбиваются, пустые отбрасываются.
func Subjects(r *http.Request) []string {
	var out []string
	for _, v := range r.Form["subjects"] {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
