package uploader

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/video-publisher/internal/browser"
	"github.com/jonathan/video-publisher/internal/locator"
	"github.com/jonathan/video-publisher/internal/wait"
)

// setSchedule switches the publish mode to scheduled and enters the target
// time using whichever widget the platform exposes. Schedule failures are
// retried at the state boundary like any other transient UI failure.
func (m *Machine) setSchedule(ctx context.Context, r *run) error {
	m.clearObstructions(ctx)

	target := *r.job.PublishAt
	if step := m.profile.Capabilities.MinuteStep; step > 1 {
		target = time.Date(target.Year(), target.Month(), target.Day(),
			target.Hour(), QuantizeMinute(target.Minute(), step), 0, 0, target.Location())
	}

	if toggle, ok := m.find(ctx, locator.StepScheduleToggle); ok {
		if err := m.page.Click(ctx, toggle); err != nil {
			return fmt.Errorf("schedule toggle: %w", err)
		}
		settle(ctx, m.profile.Pacing.DialogSettle)
	}

	switch m.profile.Capabilities.Schedule {
	case locator.ScheduleDatetimeInput:
		return m.setScheduleDatetime(ctx, target)
	case locator.ScheduleCalendar:
		return m.setScheduleCalendar(ctx, target)
	default:
		return fmt.Errorf("no schedule widget for %s", m.profile.Platform)
	}
}

// setScheduleDatetime types the formatted timestamp into a single text box.
func (m *Machine) setScheduleDatetime(ctx context.Context, target time.Time) error {
	box, ok := m.find(ctx, locator.StepScheduleDatetime)
	if !ok {
		return fmt.Errorf("schedule datetime input not found")
	}
	if err := m.page.Click(ctx, box); err != nil {
		return fmt.Errorf("schedule input focus: %w", err)
	}
	if err := m.page.Clear(ctx, box); err != nil {
		return fmt.Errorf("schedule input clear: %w", err)
	}
	if err := m.page.TypeText(ctx, target.Format(m.profile.DatetimeLayout)); err != nil {
		return fmt.Errorf("schedule input entry: %w", err)
	}
	if err := m.page.Press(ctx, "Enter"); err != nil {
		return fmt.Errorf("schedule input commit: %w", err)
	}
	settle(ctx, m.profile.Pacing.DialogSettle)
	return nil
}

// setScheduleCalendar drives a month calendar plus hour and minute pickers.
func (m *Machine) setScheduleCalendar(ctx context.Context, target time.Time) error {
	dateBox, ok := m.find(ctx, locator.StepScheduleDateBox)
	if !ok {
		return fmt.Errorf("schedule date box not found")
	}
	if err := m.page.Click(ctx, dateBox); err != nil {
		return fmt.Errorf("schedule date box click: %w", err)
	}
	settle(ctx, m.profile.Pacing.DialogSettle)

	if err := m.stepCalendarToMonth(ctx, target.Month()); err != nil {
		return err
	}

	days := templated(m.profile.Catalog.Strategies(locator.StepCalendarDay), strconv.Itoa(target.Day()))
	day, ok := browser.FirstVisible(ctx, m.page, days)
	if !ok {
		return fmt.Errorf("calendar day %d not found", target.Day())
	}
	if err := m.page.Click(ctx, day); err != nil {
		return fmt.Errorf("calendar day click: %w", err)
	}
	settle(ctx, m.profile.Pacing.DialogSettle)

	timeBox, ok := m.find(ctx, locator.StepScheduleTimeBox)
	if !ok {
		return fmt.Errorf("schedule time box not found")
	}
	if err := m.page.Click(ctx, timeBox); err != nil {
		return fmt.Errorf("schedule time box click: %w", err)
	}
	settle(ctx, m.profile.Pacing.DialogSettle)

	if err := m.pickTimeOption(ctx, locator.StepHourOption, target.Hour()); err != nil {
		return err
	}
	if err := m.pickTimeOption(ctx, locator.StepMinuteOption, target.Minute()); err != nil {
		return err
	}

	// Collapse the picker so it cannot occlude the publish controls.
	if err := m.page.Click(ctx, timeBox); err == nil {
		settle(ctx, m.profile.Pacing.DialogSettle)
	}
	return nil
}

// stepCalendarToMonth reads the displayed month title and clicks the
// previous or next arrow until the target month is shown.
func (m *Machine) stepCalendarToMonth(ctx context.Context, target time.Month) error {
	title, ok := m.find(ctx, locator.StepCalendarMonth)
	if !ok {
		return fmt.Errorf("calendar month title not found")
	}
	text, err := m.page.Text(ctx, title)
	if err != nil {
		return fmt.Errorf("calendar month title read: %w", err)
	}
	displayed, err := parseMonthTitle(text)
	if err != nil {
		return err
	}

	clicks, forward := monthSteps(displayed, target)
	if clicks == 0 {
		return nil
	}
	arrowStep := locator.StepCalendarPrevArrow
	if forward {
		arrowStep = locator.StepCalendarNextArrow
	}
	for i := 0; i < clicks; i++ {
		arrow, ok := m.find(ctx, arrowStep)
		if !ok {
			return fmt.Errorf("calendar arrow not found after %d clicks", i)
		}
		if err := m.page.Click(ctx, arrow); err != nil {
			return fmt.Errorf("calendar arrow click: %w", err)
		}
		settle(ctx, m.profile.Pacing.DialogSettle)
	}
	return nil
}

// pickTimeOption scrolls the option into view via keyboard end-seek, then
// clicks the entry whose zero-padded label matches the value.
func (m *Machine) pickTimeOption(ctx context.Context, step locator.Step, value int) error {
	label := fmt.Sprintf("%02d", value)
	options := templated(m.profile.Catalog.Strategies(step), label)
	err := wait.Until(ctx, string(step), func(c context.Context) (bool, error) {
		_, ok := browser.FirstVisible(c, m.page, options)
		return ok, nil
	}, wait.PollOptions{Timeout: 5 * time.Second, Interval: 500 * time.Millisecond})
	if err != nil {
		return fmt.Errorf("time option %q not found", label)
	}
	option, _ := browser.FirstVisible(ctx, m.page, options)
	if err := m.page.Click(ctx, option); err != nil {
		return fmt.Errorf("time option click: %w", err)
	}
	settle(ctx, m.profile.Pacing.DialogSettle)
	return nil
}

// parseMonthTitle extracts a month name from a calendar header such as
// "March" or "March 2026".
func parseMonthTitle(s string) (time.Month, error) {
	for _, field := range strings.Fields(s) {
		if t, err := time.Parse("January", field); err == nil {
			return t.Month(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized calendar month title %q", s)
}

// monthSteps returns how many arrow clicks move the calendar from the
// displayed month to the target month, and in which direction. The
// comparison is by month ordinal only, so a March view with a January
// target steps backward twice rather than forward ten months.
func monthSteps(displayed, target time.Month) (clicks int, forward bool) {
	diff := int(target) - int(displayed)
	if diff == 0 {
		return 0, false
	}
	if diff > 0 {
		return diff, true
	}
	return -diff, false
}

// QuantizeMinute snaps a minute to the nearest multiple of step, clamped to
// a valid minute. With step 5, 42 becomes 40 and 43 becomes 45.
func QuantizeMinute(minute, step int) int {
	if step <= 1 {
		return minute
	}
	q := ((minute + step/2) / step) * step
	if q >= 60 {
		q = 60 - step
	}
	return q
}
