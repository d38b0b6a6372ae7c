package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ner-eval/internal/core/utils"
)

func TestNormalizeLineEndings(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "unix untouched", text: "a\nb\n", want: "a\nb\n"},
		{name: "windows", text: "Tumor is present.\r\nNo metastasis.\r\n", want: "Tumor is present.\nNo metastasis.\n"},
		{name: "old mac", text: "a\rb", want: "a\nb"},
		{name: "mixed", text: "a\r\n\rb\n", want: "a\n\nb\n"},
		{name: "empty", text: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, utils.NormalizeLineEndings(tt.text))
		})
	}
}

func TestFormatScore(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "0.0"},
		{1, "1.0"},
		{0.5, "0.5"},
		{2.0 / 3.0, "0.6666666666666666"},
		{0.00001, "1e-05"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, utils.FormatScore(tt.v))
	}
}
