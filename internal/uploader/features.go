package uploader

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/video-publisher/internal/locator"
	"github.com/jonathan/video-publisher/internal/types"
	"github.com/jonathan/video-publisher/internal/wait"
)

func (m *Machine) wantsThumbnail(job *types.VideoJob) bool {
	return job.ThumbnailPath != "" && m.profile.Capabilities.Thumbnail
}

func (m *Machine) wantsProduct(job *types.VideoJob) bool {
	return job.ProductLink != "" && job.ProductTitle != "" && m.profile.Capabilities.ProductLink
}

func (m *Machine) wantsAIFlag(job *types.VideoJob) bool {
	return job.AIGenerated && m.profile.Capabilities.AIFlag
}

func (m *Machine) wantsGeo(job *types.VideoJob) bool {
	return job.Location != "" && m.profile.Capabilities.GeoTag
}

// configureOptions runs each enabled optional feature in turn. A feature
// whose entry point cannot be found after retry is logged and skipped;
// optional features never abort the job.
func (m *Machine) configureOptions(ctx context.Context, r *run) error {
	features := []struct {
		name    string
		enabled bool
		apply   func(ctx context.Context, r *run) error
	}{
		{"thumbnail", m.wantsThumbnail(r.job), m.applyThumbnail},
		{"product link", m.wantsProduct(r.job), m.applyProductLink},
		{"ai declaration", m.wantsAIFlag(r.job), m.applyAIFlag},
		{"geo tag", m.wantsGeo(r.job), m.applyGeoTag},
	}

	for _, f := range features {
		if !f.enabled {
			continue
		}
		m.clearObstructions(ctx)
		err := wait.Do(ctx, f.name, func(c context.Context) error {
			return f.apply(c, r)
		}, wait.RetryOptions{Attempts: 2, Backoff: time.Second})
		if err != nil {
			m.logf("optional feature %q unavailable, skipping: %v", f.name, err)
			continue
		}
		m.logf("optional feature %q applied", f.name)
	}
	return nil
}

// applyThumbnail opens the cover dialog, uploads the image, and confirms.
func (m *Machine) applyThumbnail(ctx context.Context, r *run) error {
	entry, ok := m.find(ctx, locator.StepThumbnailEntry)
	if !ok {
		return fmt.Errorf("thumbnail entry point not found")
	}
	if err := m.page.Click(ctx, entry); err != nil {
		return fmt.Errorf("thumbnail entry click: %w", err)
	}
	settle(ctx, m.profile.Pacing.DialogSettle)

	inputs := m.profile.Catalog.Strategies(locator.StepThumbnailInput)
	var lastErr error
	uploaded := false
	for _, st := range inputs {
		if err := m.page.Upload(ctx, st, r.job.ThumbnailPath); err != nil {
			lastErr = err
			continue
		}
		uploaded = true
		break
	}
	if !uploaded {
		return fmt.Errorf("thumbnail upload control: %w", lastErr)
	}
	settle(ctx, m.profile.Pacing.DialogSettle)

	// Confirm until the dialog's done affordances stop appearing; cover
	// dialogs stack a per-orientation confirm behind a main confirm.
	for i := 0; i < 3; i++ {
		confirm, ok := m.find(ctx, locator.StepThumbnailConfirm)
		if !ok {
			break
		}
		if err := m.page.Click(ctx, confirm); err != nil {
			break
		}
		settle(ctx, m.profile.Pacing.DialogSettle)
	}
	return nil
}

// applyProductLink attaches a shopping link and its short title.
func (m *Machine) applyProductLink(ctx context.Context, r *run) error {
	entry, ok := m.find(ctx, locator.StepProductEntry)
	if !ok {
		return fmt.Errorf("product entry point not found")
	}
	if err := m.page.Click(ctx, entry); err != nil {
		return fmt.Errorf("product entry click: %w", err)
	}
	settle(ctx, m.profile.Pacing.DialogSettle)

	linkInput, ok := m.find(ctx, locator.StepProductLinkInput)
	if !ok {
		return fmt.Errorf("product link input not found")
	}
	if err := m.page.Fill(ctx, linkInput, r.job.ProductLink); err != nil {
		return fmt.Errorf("product link entry: %w", err)
	}

	if add, ok := m.find(ctx, locator.StepProductAddButton); ok {
		if err := m.page.Click(ctx, add); err != nil {
			return fmt.Errorf("product add click: %w", err)
		}
		settle(ctx, m.profile.Pacing.DialogSettle)
	}

	titleInput, ok := m.find(ctx, locator.StepProductTitleInput)
	if !ok {
		return fmt.Errorf("product title input not found")
	}
	// Platforms clamp the short title aggressively.
	short := r.job.ProductTitle
	if runes := []rune(short); len(runes) > 10 {
		short = string(runes[:10])
	}
	if err := m.page.Fill(ctx, titleInput, short); err != nil {
		return fmt.Errorf("product title entry: %w", err)
	}

	confirm, ok := m.find(ctx, locator.StepProductConfirm)
	if !ok {
		return fmt.Errorf("product confirm control not found")
	}
	if _, disabled, err := m.page.Attribute(ctx, confirm, "disabled"); err == nil && disabled {
		return fmt.Errorf("product confirm control is disabled")
	}
	if err := m.page.Click(ctx, confirm); err != nil {
		return fmt.Errorf("product confirm click: %w", err)
	}
	settle(ctx, m.profile.Pacing.DialogSettle)
	return nil
}

// applyAIFlag declares AI-generated content, expanding the collapsed advanced
// section first when the platform hides the switch there, and verifies the
// resulting switch state before returning.
func (m *Machine) applyAIFlag(ctx context.Context, r *run) error {
	m.expandAdvancedSection(ctx)

	sw, ok := m.find(ctx, locator.StepAISwitch)
	if !ok {
		return fmt.Errorf("ai declaration switch not found")
	}

	if m.aiFlagSet(ctx) {
		return nil
	}
	if err := m.page.Click(ctx, sw); err != nil {
		return fmt.Errorf("ai switch click: %w", err)
	}
	settle(ctx, m.profile.Pacing.DialogSettle)

	// Some platforms interpose a confirmation modal.
	if confirm, ok := m.find(ctx, locator.StepAIConfirm); ok {
		if err := m.page.Click(ctx, confirm); err == nil {
			settle(ctx, m.profile.Pacing.DialogSettle)
		}
	}

	if m.profile.Catalog.Has(locator.StepAIState) && !m.aiFlagSet(ctx) {
		return fmt.Errorf("ai declaration did not take effect")
	}
	return nil
}

// aiFlagSet reads the current switch state where the platform exposes one.
func (m *Machine) aiFlagSet(ctx context.Context) bool {
	if m.profile.Catalog.Has(locator.StepAIState) {
		_, ok := m.find(ctx, locator.StepAIState)
		return ok
	}
	if sw, ok := m.find(ctx, locator.StepAISwitch); ok {
		if v, present, err := m.page.Attribute(ctx, sw, "aria-checked"); err == nil && present {
			return v == "true"
		}
		if v, present, err := m.page.Attribute(ctx, sw, "checked"); err == nil && present {
			return v != "false"
		}
	}
	return false
}

// expandAdvancedSection opens the collapsed advanced-settings area when the
// platform tucks optional features behind one. Best-effort.
func (m *Machine) expandAdvancedSection(ctx context.Context) {
	section, ok := m.find(ctx, locator.StepAdvancedSection)
	if !ok {
		return
	}
	if err := m.page.Click(ctx, section); err != nil {
		return
	}
	settle(ctx, m.profile.Pacing.DialogSettle)
	if toggle, ok := m.find(ctx, locator.StepAdvancedToggle); ok {
		if err := m.page.Click(ctx, toggle); err == nil {
			settle(ctx, m.profile.Pacing.DialogSettle)
		}
	}
}

// applyGeoTag selects the first suggestion after typing the location.
func (m *Machine) applyGeoTag(ctx context.Context, r *run) error {
	entry, ok := m.find(ctx, locator.StepGeoEntry)
	if !ok {
		return fmt.Errorf("geo entry point not found")
	}
	if err := m.page.Click(ctx, entry); err != nil {
		return fmt.Errorf("geo entry click: %w", err)
	}
	if err := m.page.TypeText(ctx, r.job.Location); err != nil {
		return fmt.Errorf("geo text entry: %w", err)
	}

	err := wait.Until(ctx, "geo suggestions", func(c context.Context) (bool, error) {
		_, ok := m.find(c, locator.StepGeoOption)
		return ok, nil
	}, wait.PollOptions{Timeout: 5 * time.Second, Interval: 500 * time.Millisecond})
	if err != nil {
		return fmt.Errorf("no geo suggestions for %q", r.job.Location)
	}

	option, _ := m.find(ctx, locator.StepGeoOption)
	if err := m.page.Click(ctx, option); err != nil {
		return fmt.Errorf("geo option click: %w", err)
	}
	return nil
}
