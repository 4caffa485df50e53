// Package locator holds the per-platform catalog that maps abstract workflow
// steps to ordered element-query strategies. The engine never hard-codes a UI
// query itself; it asks the catalog for a step and tries the strategies in
// declared order until one yields a visible match. Selector drift is absorbed
// here, not in the state machine.
package locator

// Kind identifies how a strategy's query should be executed.
type Kind string

const (
	// KindCSS is a CSS selector query.
	KindCSS Kind = "css"
	// KindXPath is an XPath expression.
	KindXPath Kind = "xpath"
	// KindText matches any element whose visible text contains the query.
	KindText Kind = "text"
)

// Strategy is one named way to locate an element for a step.
type Strategy struct {
	Name  string
	Kind  Kind
	Query string
}

// Step is an abstract workflow step the state machine asks the catalog about.
type Step string

const (
	StepUploadSurface  Step = "upload_surface"
	StepFileInput      Step = "file_input"
	StepReuploadInput  Step = "reupload_input"
	StepTitleField     Step = "title_field"
	StepDescEditor     Step = "description_editor"
	StepFallbackEditor Step = "fallback_editor"
	StepUploadComplete Step = "upload_complete"
	StepUploadFailed   Step = "upload_failed"
	StepPublishButton  Step = "publish_button"
	StepSuccessMarker  Step = "success_marker"
	StepErrorDialog    Step = "error_dialog"
	StepContentList    Step = "content_list"

	StepScheduleToggle    Step = "schedule_toggle"
	StepScheduleDateBox   Step = "schedule_date_box"
	StepScheduleTimeBox   Step = "schedule_time_box"
	StepScheduleDatetime  Step = "schedule_datetime_input"
	StepCalendarMonth     Step = "calendar_month_title"
	StepCalendarPrevArrow Step = "calendar_prev_arrow"
	StepCalendarNextArrow Step = "calendar_next_arrow"
	StepCalendarDay       Step = "calendar_day"
	StepHourOption        Step = "hour_option"
	StepMinuteOption      Step = "minute_option"

	StepThumbnailEntry   Step = "thumbnail_entry"
	StepThumbnailInput   Step = "thumbnail_input"
	StepThumbnailConfirm Step = "thumbnail_confirm"

	StepProductEntry      Step = "product_entry"
	StepProductLinkInput  Step = "product_link_input"
	StepProductAddButton  Step = "product_add_button"
	StepProductTitleInput Step = "product_title_input"
	StepProductConfirm    Step = "product_confirm"

	StepAdvancedSection Step = "advanced_section"
	StepAdvancedToggle  Step = "advanced_toggle"
	StepAISwitch        Step = "ai_switch"
	StepAIState         Step = "ai_state"
	StepAIConfirm       Step = "ai_confirm"

	StepGeoEntry  Step = "geo_entry"
	StepGeoOption Step = "geo_option"

	StepLoginMarker    Step = "login_marker"
	StepLoggedInMarker Step = "logged_in_marker"

	StepObstructionCancel  Step = "obstruction_cancel"
	StepObstructionClose   Step = "obstruction_close"
	StepObstructionConfirm Step = "obstruction_confirm"
	StepConsentBanner      Step = "consent_banner"
	StepTipsOverlay        Step = "tips_overlay"
)

// Catalog maps steps to their ordered strategies for one platform.
type Catalog map[Step][]Strategy

// Strategies returns the declared strategies for a step, or nil when the
// platform has no mapping for it.
func (c Catalog) Strategies(step Step) []Strategy {
	return c[step]
}

// Has reports whether the catalog carries at least one strategy for step.
func (c Catalog) Has(step Step) bool {
	return len(c[step]) > 0
}
