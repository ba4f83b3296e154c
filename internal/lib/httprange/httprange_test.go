package httprange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    Spec
		wantErr error
	}{
		{name: "closed range", header: "bytes=0-1023", want: Spec{Start: 0, End: 1023, HasEnd: true}},
		{name: "open range", header: "bytes=500-", want: Spec{Start: 500}},
		{name: "spaces around", header: " bytes=10-20 ", want: Spec{Start: 10, End: 20, HasEnd: true}},
		{name: "empty", header: "", wantErr: ErrMalformed},
		{name: "wrong unit", header: "items=0-10", wantErr: ErrMalformed},
		{name: "no dash", header: "bytes=100", wantErr: ErrMalformed},
		{name: "suffix form", header: "bytes=-500", wantErr: ErrMalformed},
		{name: "multiple ranges", header: "bytes=0-10,20-30", wantErr: ErrMalformed},
		{name: "non numeric start", header: "bytes=abc-10", wantErr: ErrMalformed},
		{name: "non numeric end", header: "bytes=0-xyz", wantErr: ErrMalformed},
		{name: "negative end", header: "bytes=0--5", wantErr: ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSpec_Resolve(t *testing.T) {
	const size = 10_000_000

	tests := []struct {
		name    string
		header  string
		want    Range
		wantErr error
	}{
		{name: "open end", header: "bytes=0-", want: Range{Start: 0, End: size - 1, Size: size}},
		{name: "inside", header: "bytes=100-199", want: Range{Start: 100, End: 199, Size: size}},
		{name: "end clamped", header: "bytes=9999000-20000000", want: Range{Start: 9999000, End: size - 1, Size: size}},
		{name: "last byte", header: "bytes=9999999-", want: Range{Start: size - 1, End: size - 1, Size: size}},
		{name: "start at size", header: "bytes=10000000-", wantErr: ErrUnsatisfiable},
		{name: "end before start", header: "bytes=200-100", wantErr: ErrUnsatisfiable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Parse(tt.header)
			require.NoError(t, err)

			got, err := spec.Resolve(size)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.End-got.Start+1, got.Length())
		})
	}
}

func TestRange_Headers(t *testing.T) {
	r := Range{Start: 0, End: 999999, Size: 10000000}
	assert.Equal(t, "bytes 0-999999/10000000", r.ContentRange())
	assert.Equal(t, "bytes=0-999999", r.Header())
	assert.Equal(t, int64(1000000), r.Length())
	assert.Equal(t, "bytes */42", Unsatisfied(42))
}

func TestSpec_ResolveEmptyResource(t *testing.T) {
	_, err := Spec{Start: 0}.Resolve(0)
	assert.ErrorIs(t, err, ErrUnsatisfiable)
}
