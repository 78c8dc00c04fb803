package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytesToMB(t *testing.T) {
	assert.Equal(t, 1.0, BytesToMB(1024*1024))
	assert.Equal(t, 0.5, BytesToMB(512*1024))
	assert.Equal(t, 0.0, BytesToMB(0))
}

func TestBytesToMBRounded(t *testing.T) {
	cases := map[int64]float64{
		1024 * 1024:       1.0,
		1536 * 1024:       1.5,
		1234567:           1.18,
		10*1024*1024 + 17: 10.0,
	}
	for bytes, expected := range cases {
		assert.Equal(t, expected, BytesToMBRounded(bytes), "bytes=%d", bytes)
	}
}

func TestFormatBytesToMB(t *testing.T) {
	assert.Equal(t, "1.00 MB", FormatBytesToMB(1024*1024))
	assert.Equal(t, "2.50 MB", FormatBytesToMB(2*1024*1024+512*1024))
}
