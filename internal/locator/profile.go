package locator

import (
	"fmt"
	"time"
)

// ScheduleMode selects how the platform's schedule picker is driven.
type ScheduleMode string

const (
	// ScheduleNone means the platform has no schedule step.
	ScheduleNone ScheduleMode = ""
	// ScheduleDatetimeInput types a formatted datetime into a single input.
	ScheduleDatetimeInput ScheduleMode = "datetime_input"
	// ScheduleCalendar navigates a month calendar plus an hour/minute picker.
	ScheduleCalendar ScheduleMode = "calendar"
)

// Capabilities are the platform feature flags read by the state machine.
type Capabilities struct {
	Thumbnail   bool
	Schedule    ScheduleMode
	AIFlag      bool
	ProductLink bool
	GeoTag      bool
	MaxTags     int
	MaxTitle    int
	// MinuteStep is the schedule picker's minute resolution.
	MinuteStep int
}

// Pacing holds the settle delays the platform's UI is known to require.
// These are deliberate input-pacing requirements, not tunables to zero out.
type Pacing struct {
	TagSettle    time.Duration
	DialogSettle time.Duration
}

// Profile binds a platform's catalog, URLs, capabilities, and pacing.
// Loaded once per platform and read-only during a run.
type Profile struct {
	Platform string
	EntryURL string
	LoginURL string
	// PostPublishURLs are URL substrings that signal a completed publish.
	PostPublishURLs []string
	// DatetimeLayout formats the schedule time for ScheduleDatetimeInput mode.
	DatetimeLayout string
	// RequiresSigning marks platforms whose content-creation requests must be
	// countersigned by the external signature service; SigningURI is the
	// request URI presented to that service.
	RequiresSigning bool
	SigningURI      string

	Capabilities Capabilities
	Pacing       Pacing
	Catalog      Catalog
}

// LookupProfile returns the built-in profile for a platform name.
func LookupProfile(platform string) (*Profile, error) {
	p, ok := builtinProfiles[platform]
	if !ok {
		return nil, fmt.Errorf("unknown platform %q", platform)
	}
	return p, nil
}

// Platforms lists the platform names with built-in profiles.
func Platforms() []string {
	names := make([]string, 0, len(builtinProfiles))
	for name := range builtinProfiles {
		names = append(names, name)
	}
	return names
}
