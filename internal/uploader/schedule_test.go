package uploader

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/video-publisher/internal/locator"
)

func TestMonthSteps(t *testing.T) {
	tests := []struct {
		displayed time.Month
		target    time.Month
		clicks    int
		forward   bool
	}{
		{time.March, time.March, 0, false},
		{time.March, time.April, 1, true},
		{time.March, time.June, 3, true},
		// Month ordinal comparison only: March to January steps back twice.
		{time.March, time.January, 2, false},
		{time.December, time.November, 1, false},
		{time.January, time.December, 11, true},
	}

	for _, tt := range tests {
		clicks, forward := monthSteps(tt.displayed, tt.target)
		assert.Equal(t, tt.clicks, clicks, "%s -> %s", tt.displayed, tt.target)
		if tt.clicks > 0 {
			assert.Equal(t, tt.forward, forward, "%s -> %s", tt.displayed, tt.target)
		}
	}
}

func TestQuantizeMinute(t *testing.T) {
	tests := []struct {
		minute, step, want int
	}{
		{42, 5, 40},
		{43, 5, 45},
		{0, 5, 0},
		{57, 5, 55},
		{58, 5, 55}, // 60 is not a valid minute
		{42, 1, 42},
		{42, 0, 42},
		{17, 15, 15},
		{23, 15, 30},
	}

	for _, tt := range tests {
		got := QuantizeMinute(tt.minute, tt.step)
		assert.Equal(t, tt.want, got, "minute %d step %d", tt.minute, tt.step)
	}
}

func TestParseMonthTitle(t *testing.T) {
	m, err := parseMonthTitle("March")
	require.NoError(t, err)
	assert.Equal(t, time.March, m)

	m, err = parseMonthTitle("September 2026")
	require.NoError(t, err)
	assert.Equal(t, time.September, m)

	_, err = parseMonthTitle("Q3 planning")
	assert.Error(t, err)
}

func TestHashtag(t *testing.T) {
	assert.Equal(t, "#cats ", hashtag("cats"))
	assert.Equal(t, "#cats ", hashtag("#cats"))
	assert.Equal(t, "#cats ", hashtag("  cats  "))
}

const (
	qDateBox   = "div.date-box"
	qTimeBox   = "div.time-box"
	qMonth     = "span.month-title"
	qPrevArrow = "span.arrow-prev"
	qNextArrow = "span.arrow-next"
)

func calendarProfile() *locator.Profile {
	p := testProfile()
	p.Capabilities.Schedule = locator.ScheduleCalendar
	p.Catalog[locator.StepScheduleDateBox] = []locator.Strategy{
		{Name: "date box", Kind: locator.KindCSS, Query: qDateBox},
	}
	p.Catalog[locator.StepScheduleTimeBox] = []locator.Strategy{
		{Name: "time box", Kind: locator.KindCSS, Query: qTimeBox},
	}
	p.Catalog[locator.StepCalendarMonth] = []locator.Strategy{
		{Name: "month title", Kind: locator.KindCSS, Query: qMonth},
	}
	p.Catalog[locator.StepCalendarPrevArrow] = []locator.Strategy{
		{Name: "prev", Kind: locator.KindCSS, Query: qPrevArrow},
	}
	p.Catalog[locator.StepCalendarNextArrow] = []locator.Strategy{
		{Name: "next", Kind: locator.KindCSS, Query: qNextArrow},
	}
	p.Catalog[locator.StepCalendarDay] = []locator.Strategy{
		{Name: "day", Kind: locator.KindXPath, Query: "//span[@class='day'][text()='%s']"},
	}
	p.Catalog[locator.StepHourOption] = []locator.Strategy{
		{Name: "hour", Kind: locator.KindXPath, Query: "//span[@class='hour'][text()='%s']"},
	}
	p.Catalog[locator.StepMinuteOption] = []locator.Strategy{
		{Name: "minute", Kind: locator.KindXPath, Query: "//span[@class='minute'][text()='%s']"},
	}
	return p
}

func TestSetSchedule_CalendarWalksToTargetMonth(t *testing.T) {
	profile := calendarProfile()
	page := newUploadPage()

	at := time.Date(2026, time.November, 14, 9, 42, 0, 0, time.Local)
	dayQ := "//span[@class='day'][text()='14']"
	hourQ := "//span[@class='hour'][text()='09']"
	minuteQ := "//span[@class='minute'][text()='40']"

	page.show(qToggle, qDateBox, qTimeBox, qMonth, qPrevArrow, qNextArrow, dayQ, hourQ, minuteQ)
	page.texts[qMonth] = "September 2026"

	// Each next-arrow click advances the displayed month.
	displayed := time.September
	page.onClick = func(p *fakePage, query string) {
		if query == qNextArrow {
			displayed++
			p.mu.Lock()
			p.texts[qMonth] = fmt.Sprintf("%s 2026", displayed)
			p.mu.Unlock()
		}
	}

	m := New(Options{
		Page:     page,
		Profile:  profile,
		Timeouts: fastTimeouts(),
	})
	job := testJob()
	job.PublishAt = &at

	err := m.setSchedule(context.Background(), &run{job: job})
	require.NoError(t, err)

	arrowClicks := 0
	for _, c := range page.clicks {
		if c == qNextArrow {
			arrowClicks++
		}
	}
	assert.Equal(t, 2, arrowClicks, "September to November is two forward steps")
	assert.Contains(t, page.clicks, dayQ)
	assert.Contains(t, page.clicks, hourQ)
	assert.Contains(t, page.clicks, minuteQ)
	assert.NotContains(t, page.clicks, qPrevArrow)
}

func TestSetSchedule_CalendarBackward(t *testing.T) {
	profile := calendarProfile()
	page := newUploadPage()

	at := time.Date(2026, time.January, 5, 8, 0, 0, 0, time.Local)
	dayQ := "//span[@class='day'][text()='5']"
	hourQ := "//span[@class='hour'][text()='08']"
	minuteQ := "//span[@class='minute'][text()='00']"

	page.show(qToggle, qDateBox, qTimeBox, qMonth, qPrevArrow, qNextArrow, dayQ, hourQ, minuteQ)
	page.texts[qMonth] = "March"

	m := New(Options{
		Page:     page,
		Profile:  profile,
		Timeouts: fastTimeouts(),
	})
	job := testJob()
	job.PublishAt = &at

	err := m.setSchedule(context.Background(), &run{job: job})
	require.NoError(t, err)

	prevClicks := 0
	for _, c := range page.clicks {
		if c == qPrevArrow {
			prevClicks++
		}
	}
	assert.Equal(t, 2, prevClicks, "March to January is two backward steps")
}

func TestSetSchedule_DatetimeUsesProfileLayout(t *testing.T) {
	page := newUploadPage()
	page.show(qToggle, qDatetime)

	m := New(Options{
		Page:     page,
		Profile:  testProfile(),
		Timeouts: fastTimeouts(),
	})
	job := testJob()
	at := time.Date(2026, time.September, 5, 10, 42, 0, 0, time.Local)
	job.PublishAt = &at

	err := m.setSchedule(context.Background(), &run{job: job})
	require.NoError(t, err)

	assert.Contains(t, page.clicks, qToggle)
	assert.Equal(t, []string{"2026-09-05 10:40"}, page.typed)
}

// wantsX predicates gate on both the job and the platform capabilities.
func TestOptionalFeaturePredicates(t *testing.T) {
	profile := testProfile()
	profile.Capabilities.Thumbnail = true
	profile.Capabilities.AIFlag = true

	m := New(Options{Page: newUploadPage(), Profile: profile})

	job := testJob()
	assert.False(t, m.wantsThumbnail(job))
	job.ThumbnailPath = "/tmp/cover.png"
	assert.True(t, m.wantsThumbnail(job))

	assert.False(t, m.wantsAIFlag(job))
	job.AIGenerated = true
	assert.True(t, m.wantsAIFlag(job))

	// Capability off: the job flag alone is not enough.
	job.ProductLink = "https://shop.example.com/item"
	job.ProductTitle = "Item"
	assert.False(t, m.wantsProduct(job))

	job.Location = "Lisbon"
	assert.False(t, m.wantsGeo(job))
}
