package types

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "video.mp4")
	require.NoError(t, os.WriteFile(path, []byte("mp4"), 0o644))
	return path
}

func TestValidate_OK(t *testing.T) {
	job := &VideoJob{
		Platform: "douyin",
		Account:  "creator",
		FilePath: tempVideo(t),
		Title:    "Morning routine",
	}
	assert.NoError(t, job.Validate())
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	job := &VideoJob{FilePath: tempVideo(t)}
	assert.Error(t, job.Validate())
}

func TestValidate_FileMissing(t *testing.T) {
	job := &VideoJob{
		Platform: "douyin",
		Account:  "creator",
		FilePath: "/no/such/file.mp4",
		Title:    "Morning routine",
	}
	err := job.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not accessible")
}

func TestValidate_FileIsDirectory(t *testing.T) {
	job := &VideoJob{
		Platform: "douyin",
		Account:  "creator",
		FilePath: t.TempDir(),
		Title:    "Morning routine",
	}
	err := job.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}

func TestValidate_ThumbnailMissing(t *testing.T) {
	job := &VideoJob{
		Platform:      "douyin",
		Account:       "creator",
		FilePath:      tempVideo(t),
		Title:         "Morning routine",
		ThumbnailPath: "/no/such/cover.png",
	}
	assert.Error(t, job.Validate())
}

func TestScheduled(t *testing.T) {
	job := &VideoJob{}
	assert.False(t, job.Scheduled())

	zero := time.Time{}
	job.PublishAt = &zero
	assert.False(t, job.Scheduled())

	at := time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC)
	job.PublishAt = &at
	assert.True(t, job.Scheduled())
}

func TestTitleForUpload_Clamp(t *testing.T) {
	job := &VideoJob{Title: "A very long title that exceeds the platform limit"}

	assert.Equal(t, "A very long title th", job.TitleForUpload(20))
	assert.Equal(t, job.Title, job.TitleForUpload(0))
	assert.Equal(t, job.Title, job.TitleForUpload(200))
}

func TestTitleForUpload_ClampByRunes(t *testing.T) {
	job := &VideoJob{Title: "早晨的猫咪合集记录日常生活"}
	assert.Equal(t, "早晨的猫咪", job.TitleForUpload(5))
}

func TestTitleForUpload_Trims(t *testing.T) {
	job := &VideoJob{Title: "  padded  "}
	assert.Equal(t, "padded", job.TitleForUpload(0))
}

func TestTagsForUpload(t *testing.T) {
	job := &VideoJob{Tags: []string{"a", "b", "c", "d"}}

	assert.Equal(t, []string{"a", "b"}, job.TagsForUpload(2))
	assert.Equal(t, job.Tags, job.TagsForUpload(0))
	assert.Equal(t, job.Tags, job.TagsForUpload(10))
}

func TestRunResult_Confirmed(t *testing.T) {
	assert.True(t, RunResult{Status: StatusSuccess}.Confirmed())
	assert.False(t, RunResult{Status: StatusFailed}.Confirmed())

	unconfirmed := RunResult{Status: StatusTimedOut, Kind: KindPublishNotConfirmed}
	assert.True(t, unconfirmed.Unconfirmed())
	assert.False(t, unconfirmed.Confirmed())

	assert.False(t, RunResult{Status: StatusFailed, Kind: KindPublishNotConfirmed}.Unconfirmed())
}
