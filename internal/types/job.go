// Package types provides type definitions for structured data shared across the video-publisher system.
package types

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// VideoJob describes one video to publish on one platform. A job is immutable
// once handed to the upload state machine; optional fields left zero-valued
// are simply skipped during the run.
type VideoJob struct {
	Platform    string   `json:"platform" yaml:"platform" validate:"required"`
	Account     string   `json:"account" yaml:"account" validate:"required"`
	FilePath    string   `json:"file_path" yaml:"file_path" validate:"required"`
	Title       string   `json:"title" yaml:"title" validate:"required"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`

	// Optional per-platform extras.
	ThumbnailPath string     `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	PublishAt     *time.Time `json:"publish_at,omitempty" yaml:"publish_at,omitempty"`
	ProductLink   string     `json:"product_link,omitempty" yaml:"product_link,omitempty"`
	ProductTitle  string     `json:"product_title,omitempty" yaml:"product_title,omitempty"`
	AIGenerated   bool       `json:"ai_generated,omitempty" yaml:"ai_generated,omitempty"`
	Location      string     `json:"location,omitempty" yaml:"location,omitempty"`
	Category      string     `json:"category,omitempty" yaml:"category,omitempty"`
}

// Validate checks required fields and that the media file exists and is
// readable. It must pass before any browser interaction begins.
func (j *VideoJob) Validate() error {
	validate := validator.New()
	if err := validate.Struct(j); err != nil {
		return err
	}

	info, err := os.Stat(j.FilePath)
	if err != nil {
		return fmt.Errorf("video file not accessible: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("video path %s is a directory", j.FilePath)
	}
	if j.ThumbnailPath != "" {
		if _, err := os.Stat(j.ThumbnailPath); err != nil {
			return fmt.Errorf("thumbnail not accessible: %w", err)
		}
	}
	return nil
}

// Scheduled reports whether the job carries a future publish time.
func (j *VideoJob) Scheduled() bool {
	return j.PublishAt != nil && !j.PublishAt.IsZero()
}

// TitleForUpload returns the title clamped to the platform's length limit.
// A limit of zero means no clamp.
func (j *VideoJob) TitleForUpload(maxLen int) string {
	title := strings.TrimSpace(j.Title)
	if maxLen > 0 && len([]rune(title)) > maxLen {
		return string([]rune(title)[:maxLen])
	}
	return title
}

// TagsForUpload returns the tag list clamped to the platform's tag limit,
// preserving order. Duplicates are kept; tag order is meaningful to the
// platforms and deduplication is not ours to do.
func (j *VideoJob) TagsForUpload(maxTags int) []string {
	if maxTags > 0 && len(j.Tags) > maxTags {
		return j.Tags[:maxTags]
	}
	return j.Tags
}
