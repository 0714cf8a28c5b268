package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"Int", 5, 5},
		{"Int64", int64(-3), -3},
		{"Float", float64(12), 12},
		{"Fraction", 1.5, 0},
		{"Number", json.Number("45"), 45},
		{"String", " 7 ", 7},
		{"Bytes", []byte("8"), 8},
		{"Garbage", "abc", 0},
		{"Nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToInt(tt.in))
		})
	}
}

func TestToOptionalInt(t *testing.T) {
	assert.Nil(t, ToOptionalInt(nil))
	assert.Nil(t, ToOptionalInt(""))
	assert.Nil(t, ToOptionalInt(json.Number("1e3")))

	v := ToOptionalInt(json.Number("0"))
	if assert.NotNil(t, v) {
		assert.Equal(t, 0, *v)
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "44713740521745", ToString(float64(44713740521745)))
	assert.Equal(t, "808950810", ToString(json.Number("808950810")))
	assert.Equal(t, "gid://shopify/Location/1", ToString("gid://shopify/Location/1"))
	assert.Equal(t, "12", ToString(12))
}
