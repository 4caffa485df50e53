// Package jobfile loads upload jobs from JSON or YAML documents. A document
// holds a single job object, a list of jobs, or an object with a "jobs" list.
package jobfile

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/video-publisher/internal/schemas"
	"github.com/jonathan/video-publisher/internal/types"
)

//go:embed schema.json
var jobSchema string

// publishTimeLayouts are accepted for string publish_at values, tried in
// order. Layouts without a zone are interpreted in local time, matching what
// the platform pages display.
var publishTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// jobDoc mirrors VideoJob on the wire with a flexible publish_at.
type jobDoc struct {
	Platform      string      `json:"platform" yaml:"platform"`
	Account       string      `json:"account" yaml:"account"`
	FilePath      string      `json:"file_path" yaml:"file_path"`
	Title         string      `json:"title" yaml:"title"`
	Tags          []string    `json:"tags" yaml:"tags"`
	Description   string      `json:"description" yaml:"description"`
	ThumbnailPath string      `json:"thumbnail" yaml:"thumbnail"`
	PublishAt     publishTime `json:"publish_at" yaml:"publish_at"`
	ProductLink   string      `json:"product_link" yaml:"product_link"`
	ProductTitle  string      `json:"product_title" yaml:"product_title"`
	AIGenerated   bool        `json:"ai_generated" yaml:"ai_generated"`
	Location      string      `json:"location" yaml:"location"`
	Category      string      `json:"category" yaml:"category"`
}

// publishTime accepts unix seconds or a handful of timestamp layouts.
// Absent or zero means publish immediately.
type publishTime struct {
	t *time.Time
}

func (p *publishTime) set(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if secs == 0 {
			return nil
		}
		t := time.Unix(secs, 0)
		p.t = &t
		return nil
	}
	for _, layout := range publishTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			p.t = &t
			return nil
		}
	}
	return fmt.Errorf("unrecognized publish_at value %q", raw)
}

func (p *publishTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		return nil
	}
	return p.set(s)
}

func (p *publishTime) UnmarshalYAML(node *yaml.Node) error {
	return p.set(node.Value)
}

type batchDoc struct {
	Jobs []jobDoc `json:"jobs" yaml:"jobs"`
}

// Load reads a job document and returns its jobs in document order. Format
// is chosen by extension, with a content sniff for unknown extensions. JSON
// documents are additionally checked against the job schema so field typos
// fail with a field path instead of a zero-valued job.
func Load(path string) ([]*types.VideoJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return parseJSON(data)
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		if looksLikeJSON(data) {
			return parseJSON(data)
		}
		return parseYAML(data)
	}
}

func looksLikeJSON(data []byte) bool {
	trimmed := strings.TrimLeftFunc(string(data), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}

func parseJSON(data []byte) ([]*types.VideoJob, error) {
	if err := schemas.ValidateJSONString(jobSchema, string(data)); err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var docs []jobDoc
		if err := json.Unmarshal(data, &docs); err != nil {
			return nil, fmt.Errorf("parse job list: %w", err)
		}
		return convert(docs)
	}

	var wrapper batchDoc
	if err := json.Unmarshal(data, &wrapper); err == nil && len(wrapper.Jobs) > 0 {
		return convert(wrapper.Jobs)
	}

	var doc jobDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse job: %w", err)
	}
	return convert([]jobDoc{doc})
}

func parseYAML(data []byte) ([]*types.VideoJob, error) {
	var listProbe []jobDoc
	if err := yaml.Unmarshal(data, &listProbe); err == nil && len(listProbe) > 0 {
		return convert(listProbe)
	}

	var wrapper batchDoc
	if err := yaml.Unmarshal(data, &wrapper); err == nil && len(wrapper.Jobs) > 0 {
		return convert(wrapper.Jobs)
	}

	var doc jobDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse job: %w", err)
	}
	return convert([]jobDoc{doc})
}

func convert(docs []jobDoc) ([]*types.VideoJob, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("job file contains no jobs")
	}
	jobs := make([]*types.VideoJob, 0, len(docs))
	for i, d := range docs {
		job := &types.VideoJob{
			Platform:      strings.ToLower(strings.TrimSpace(d.Platform)),
			Account:       strings.TrimSpace(d.Account),
			FilePath:      d.FilePath,
			Title:         d.Title,
			Tags:          d.Tags,
			Description:   d.Description,
			ThumbnailPath: d.ThumbnailPath,
			PublishAt:     d.PublishAt.t,
			ProductLink:   d.ProductLink,
			ProductTitle:  d.ProductTitle,
			AIGenerated:   d.AIGenerated,
			Location:      d.Location,
			Category:      d.Category,
		}
		if job.Platform == "" || job.Account == "" || job.FilePath == "" || job.Title == "" {
			return nil, fmt.Errorf("job %d: platform, account, file_path, and title are required", i+1)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
