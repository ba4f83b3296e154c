// Package httprange разбирает заголовок Range вида "bytes=start-[end]"
// и приводит диапазон к размеру ресурса.
package httprange

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMalformed заголовок не соответствует формату bytes=start-[end].
	ErrMalformed = errors.New("malformed range header")
	// ErrUnsatisfiable диапазон не пересекается с ресурсом.
	ErrUnsatisfiable = errors.New("range not satisfiable")
)

const unit = "bytes="

// Spec диапазон в том виде, в котором его прислал клиент.
type Spec struct {
	Start  int64
	End    int64
	HasEnd bool
}

// Range диапазон, приведённый к размеру ресурса. Границы включительные.
type Range struct {
	Start int64
	End   int64
	Size  int64
}

// Parse разбирает значение заголовка Range. Поддерживается один диапазон
// с обязательным началом.
func Parse(header string) (Spec, error) {
	header = strings.TrimSpace(header)
	if !strings.HasPrefix(header, unit) {
		return Spec{}, ErrMalformed
	}
	value := strings.TrimSpace(header[len(unit):])
	if strings.Contains(value, ",") {
		return Spec{}, ErrMalformed
	}
	startStr, endStr, ok := strings.Cut(value, "-")
	if !ok || startStr == "" {
		return Spec{}, ErrMalformed
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return Spec{}, ErrMalformed
	}
	spec := Spec{Start: start}
	if endStr == "" {
		return spec, nil
	}

	end, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil || end < 0 {
		return Spec{}, ErrMalformed
	}
	spec.End = end
	spec.HasEnd = true
	return spec, nil
}

// Resolve приводит диапазон к размеру ресурса: открытый конец и конец
// за пределами ресурса заменяются на size-1.
func (s Spec) Resolve(size int64) (Range, error) {
	if size <= 0 || s.Start >= size {
		return Range{}, ErrUnsatisfiable
	}
	end := size - 1
	if s.HasEnd && s.End < end {
		end = s.End
	}
	if end < s.Start {
		return Range{}, ErrUnsatisfiable
	}
	return Range{Start: s.Start, End: end, Size: size}, nil
}

// Length число байт в диапазоне.
func (r Range) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange значение заголовка Content-Range для ответа 206.
func (r Range) ContentRange() string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, r.Size)
}

// Header значение заголовка Range для запроса к источнику.
func (r Range) Header() string {
	return fmt.Sprintf("bytes=%d-%d", r.Start, r.End)
}

// Unsatisfied значение Content-Range для ответа 416.
func Unsatisfied(size int64) string {
	return fmt.Sprintf("bytes */%d", size)
}
