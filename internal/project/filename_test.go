package project

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"my photo.png":        "my_photo.png",
		`a<b>c:d"e/f\g|h?i*`:  "a-b-c-d-e-f-g-h-i",
		"--lead  and trail__": "lead_and_trail",
		"a---b___c":           "a-b_c",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}
}

func TestResultFilename(t *testing.T) {
	ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "processed-image-my_photo_2025-03-04_05-06-07.png", ResultFilename(ResultInpaint, "my photo.jpg", ts))
	assert.Equal(t, "background-blurred_2025-03-04_05-06-07.png", ResultFilename(ResultBackgroundBlurred, "", ts))
}

func TestBatchFilename(t *testing.T) {
	ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "batch_03_2025-03-04_05-06-07.png", BatchFilename("batch", 2, 12, ts))
	assert.Equal(t, "batch_1_2025-03-04_05-06-07.png", BatchFilename("batch", 0, 5, ts))
}
