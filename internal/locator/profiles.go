package locator

import "time"

// The built-in catalogs encode the selector fallthrough chains the target
// platforms are known to need. Strategies are ordered: the first one that
// yields a visible element wins. Steps carrying a %s placeholder are templates
// the state machine fills with a runtime value (a day number, an hour label).
var builtinProfiles = map[string]*Profile{
	"douyin":  douyinProfile,
	"tiktok":  tiktokProfile,
	"xhs":     xhsProfile,
}

var douyinProfile = &Profile{
	Platform:        "douyin",
	EntryURL:        "https://creator.douyin.com/creator-micro/content/upload",
	LoginURL:        "https://creator.douyin.com/",
	PostPublishURLs: []string{"content/manage", "/manage"},
	DatetimeLayout:  "2006-01-02 15:04",
	Capabilities: Capabilities{
		Thumbnail:   true,
		Schedule:    ScheduleDatetimeInput,
		AIFlag:      true,
		ProductLink: true,
		GeoTag:      true,
		MaxTitle:    30,
		MinuteStep:  1,
	},
	Pacing: Pacing{
		TagSettle:    200 * time.Millisecond,
		DialogSettle: time.Second,
	},
	Catalog: Catalog{
		StepUploadSurface: {
			{Name: "upload container input", Kind: KindCSS, Query: `div[class^='container'] input[type='file']`},
			{Name: "upload container", Kind: KindCSS, Query: `div[class^='container']`},
		},
		StepFileInput: {
			{Name: "container file input", Kind: KindCSS, Query: `div[class^='container'] input[type='file']`},
		},
		StepReuploadInput: {
			{Name: "progress re-upload input", Kind: KindCSS, Query: `div.progress-div [class^='upload-btn-input']`},
		},
		StepTitleField: {
			{Name: "semi input by placeholder", Kind: KindCSS, Query: `input.semi-input[placeholder*='标题']`},
			{Name: "any title input", Kind: KindCSS, Query: `input[placeholder*='标题']`},
			{Name: "first semi input", Kind: KindCSS, Query: `input.semi-input`},
			{Name: "any text input", Kind: KindCSS, Query: `input[type='text']`},
		},
		StepDescEditor: {
			{Name: "editor-kit zone", Kind: KindCSS, Query: `.editor-kit-editor-container .zone-container.editor[contenteditable='true']`},
			{Name: "zone container", Kind: KindCSS, Query: `.zone-container.editor[contenteditable='true']`},
			{Name: "editor-kit editable", Kind: KindCSS, Query: `.editor-kit-editor-container [contenteditable='true']`},
			{Name: "placeholder editable", Kind: KindCSS, Query: `[contenteditable='true'][data-placeholder*='简介']`},
		},
		StepFallbackEditor: {
			{Name: "any editable", Kind: KindCSS, Query: `[contenteditable='true']`},
			{Name: "textarea", Kind: KindCSS, Query: `textarea`},
		},
		StepUploadComplete: {
			{Name: "re-upload affordance", Kind: KindXPath, Query: `//div[starts-with(@class,'long-card')]//div[contains(text(),'重新上传')]`},
		},
		StepUploadFailed: {
			{Name: "upload failed text", Kind: KindXPath, Query: `//div[contains(@class,'progress-div')]//div[contains(text(),'上传失败')]`},
		},
		StepPublishButton: {
			{Name: "publish role button", Kind: KindXPath, Query: `//button[normalize-space(text())='发布']`},
		},
		StepSuccessMarker: {
			{Name: "publish success text", Kind: KindText, Query: `发布成功`},
			{Name: "published text", Kind: KindText, Query: `已发布`},
		},
		StepContentList: {
			{Name: "manage page cards", Kind: KindCSS, Query: `div[class^='video-card']`},
		},
		StepScheduleToggle: {
			{Name: "scheduled radio label", Kind: KindXPath, Query: `//label[starts-with(@class,'radio')][contains(.,'定时发布')]`},
		},
		StepScheduleDatetime: {
			{Name: "datetime input", Kind: KindCSS, Query: `.semi-input[placeholder='日期和时间']`},
		},
		StepThumbnailEntry: {
			{Name: "choose cover text", Kind: KindText, Query: `选择封面`},
		},
		StepThumbnailInput: {
			{Name: "semi upload input", Kind: KindCSS, Query: `div[class^='semi-upload upload'] input.semi-upload-hidden-input`},
		},
		StepThumbnailConfirm: {
			{Name: "cover done button", Kind: KindXPath, Query: `//div[contains(@class,'dy-creator-content-modal')]//button[contains(.,'完成')]`},
			{Name: "tooltip done button", Kind: KindXPath, Query: `//div[@id='tooltip-container']//button[contains(.,'完成')]`},
		},
		StepProductEntry: {
			{Name: "tag dropdown", Kind: KindXPath, Query: `//*[contains(text(),'添加标签')]/ancestor::div[3]//div[contains(@class,'semi-select')]`},
		},
		StepProductLinkInput: {
			{Name: "link input", Kind: KindCSS, Query: `input[placeholder='粘贴商品链接']`},
		},
		StepProductAddButton: {
			{Name: "add link span", Kind: KindXPath, Query: `//span[contains(text(),'添加链接')]`},
		},
		StepProductTitleInput: {
			{Name: "short title input", Kind: KindCSS, Query: `input[placeholder='请输入商品短标题']`},
		},
		StepProductConfirm: {
			{Name: "finish edit button", Kind: KindXPath, Query: `//button[contains(.,'完成编辑')]`},
		},
		StepAdvancedSection: {
			{Name: "assistant entry", Kind: KindText, Query: `发文助手`},
		},
		StepAdvancedToggle: {
			{Name: "declaration entry", Kind: KindText, Query: `自主声明`},
			{Name: "amend declaration entry", Kind: KindText, Query: `修改声明`},
		},
		StepAISwitch: {
			{Name: "ai checkbox by label", Kind: KindXPath, Query: `//label[contains(.,'AI')]//input[@type='checkbox']`},
			{Name: "ai checkbox by text", Kind: KindXPath, Query: `//div[contains(.,'内容由AI生成')]//input[@type='checkbox']`},
		},
		StepGeoEntry: {
			{Name: "location select", Kind: KindXPath, Query: `//div[contains(@class,'semi-select')]//span[contains(text(),'输入地理位置')]`},
		},
		StepGeoOption: {
			{Name: "first listbox option", Kind: KindCSS, Query: `div[role='listbox'] [role='option']`},
		},
		StepLoginMarker: {
			{Name: "phone login text", Kind: KindText, Query: `手机号登录`},
			{Name: "qr login text", Kind: KindText, Query: `扫码登录`},
			{Name: "password input", Kind: KindCSS, Query: `input[type='password']`},
		},
		StepLoggedInMarker: {
			{Name: "publish entry", Kind: KindText, Query: `发布作品`},
			{Name: "video manage entry", Kind: KindText, Query: `视频管理`},
		},
		StepObstructionCancel: {
			{Name: "cancel button", Kind: KindXPath, Query: `//button[contains(.,'取消')]`},
		},
		StepObstructionClose: {
			{Name: "aria close", Kind: KindCSS, Query: `button[aria-label='关闭']`},
			{Name: "modal close class", Kind: KindCSS, Query: `[class*='modal-close']`},
		},
		StepObstructionConfirm: {
			{Name: "got it button", Kind: KindXPath, Query: `//button[contains(.,'知道了')]`},
			{Name: "confirm button", Kind: KindXPath, Query: `//button[contains(.,'确定')]`},
		},
		StepTipsOverlay: {
			{Name: "guide overlay", Kind: KindCSS, Query: `div[class*='guide-container'] [class*='close']`},
		},
	},
}

var tiktokProfile = &Profile{
	Platform:        "tiktok",
	EntryURL:        "https://www.tiktok.com/tiktokstudio/upload",
	LoginURL:        "https://www.tiktok.com/login?lang=en",
	PostPublishURLs: []string{"tiktokstudio/content"},
	Capabilities: Capabilities{
		Thumbnail:  true,
		Schedule:   ScheduleCalendar,
		AIFlag:     true,
		MinuteStep: 5,
	},
	Pacing: Pacing{
		TagSettle:    time.Second,
		DialogSettle: time.Second,
	},
	Catalog: Catalog{
		StepUploadSurface: {
			{Name: "upload iframe", Kind: KindCSS, Query: `iframe[data-tt='Upload_index_iframe']`},
			{Name: "upload container", Kind: KindCSS, Query: `div.upload-container`},
			{Name: "drag area", Kind: KindCSS, Query: `[data-e2e='upload_drag_area'], [data-e2e='upload_card']`},
			{Name: "select video button", Kind: KindXPath, Query: `//button[contains(.,'Select video')]`},
		},
		StepFileInput: {
			{Name: "hidden file input", Kind: KindCSS, Query: `input[type='file']`},
		},
		StepReuploadInput: {
			{Name: "select file input", Kind: KindCSS, Query: `input[type='file']`},
		},
		StepDescEditor: {
			{Name: "draft editor", Kind: KindCSS, Query: `div.public-DraftEditor-content`},
		},
		StepFallbackEditor: {
			{Name: "any editable", Kind: KindCSS, Query: `[contenteditable='true']`},
		},
		StepUploadComplete: {
			{Name: "post button enabled", Kind: KindXPath, Query: `//div[contains(@class,'button-group')]//button[not(@disabled)][contains(.,'Post')]`},
			{Name: "check passed", Kind: KindCSS, Query: `div.status-result[data-show='true'] .status-success`},
		},
		StepUploadFailed: {
			{Name: "select file reappeared", Kind: KindCSS, Query: `button[aria-label='Select file']`},
		},
		StepPublishButton: {
			{Name: "post button", Kind: KindXPath, Query: `//div[contains(@class,'button-group')]//button[contains(.,'Post')]`},
		},
		StepSuccessMarker: {
			{Name: "shared modal", Kind: KindCSS, Query: `div.common-modal-confirm-modal`},
		},
		StepContentList: {
			{Name: "post table rows", Kind: KindCSS, Query: `div[data-tt='components_PostTable_Container'] div[data-tt='components_PostInfoCell_Container'] a`},
		},
		StepScheduleToggle: {
			{Name: "schedule label", Kind: KindXPath, Query: `//label[contains(.,'Schedule')]`},
		},
		StepScheduleDateBox: {
			{Name: "picker date box", Kind: KindXPath, Query: `(//div[contains(@class,'scheduled-picker')]//div[contains(@class,'TUXInputBox')])[2]`},
		},
		StepScheduleTimeBox: {
			{Name: "picker time box", Kind: KindXPath, Query: `(//div[contains(@class,'scheduled-picker')]//div[contains(@class,'TUXInputBox')])[1]`},
		},
		StepCalendarMonth: {
			{Name: "month title", Kind: KindCSS, Query: `div.calendar-wrapper span.month-title`},
		},
		StepCalendarPrevArrow: {
			{Name: "first arrow", Kind: KindXPath, Query: `(//div[contains(@class,'calendar-wrapper')]//span[contains(@class,'arrow')])[1]`},
		},
		StepCalendarNextArrow: {
			{Name: "last arrow", Kind: KindXPath, Query: `(//div[contains(@class,'calendar-wrapper')]//span[contains(@class,'arrow')])[last()]`},
		},
		StepCalendarDay: {
			{Name: "valid day by text", Kind: KindXPath, Query: `//div[contains(@class,'calendar-wrapper')]//span[contains(@class,'day') and contains(@class,'valid') and normalize-space(text())='%s']`},
		},
		StepHourOption: {
			{Name: "hour by text", Kind: KindXPath, Query: `//span[contains(@class,'tiktok-timepicker-left') and normalize-space(text())='%s']`},
		},
		StepMinuteOption: {
			{Name: "minute by text", Kind: KindXPath, Query: `//span[contains(@class,'tiktok-timepicker-right') and normalize-space(text())='%s']`},
		},
		StepThumbnailEntry: {
			{Name: "cover container", Kind: KindCSS, Query: `.cover-container`},
		},
		StepThumbnailInput: {
			{Name: "cover upload input", Kind: KindCSS, Query: `.upload-image-upload-area input[type='file']`},
			{Name: "any cover input", Kind: KindCSS, Query: `input[type='file'][accept*='image']`},
		},
		StepThumbnailConfirm: {
			{Name: "confirm button", Kind: KindXPath, Query: `//div[contains(@class,'cover-edit-panel') and not(contains(@class,'hide-panel'))]//button[contains(.,'Confirm')]`},
		},
		StepAdvancedSection: {
			{Name: "advanced container", Kind: KindCSS, Query: `[data-e2e='advanced_settings_container']`},
		},
		StepAdvancedToggle: {
			{Name: "show more", Kind: KindXPath, Query: `//*[@data-e2e='advanced_settings_container']//*[contains(translate(text(),'SHOWMORE','showmore'),'show more')]`},
			{Name: "more button", Kind: KindCSS, Query: `[data-e2e='advanced_settings_container'] .more-btn`},
		},
		StepAISwitch: {
			{Name: "aigc switch root", Kind: KindCSS, Query: `[data-e2e='aigc_container'] [data-layout='switch-root']`},
			{Name: "aigc switch class", Kind: KindCSS, Query: `[data-e2e='aigc_container'] .switch`},
		},
		StepAIState: {
			{Name: "aigc checked state", Kind: KindCSS, Query: `[data-e2e='aigc_container'] [data-state='checked']`},
		},
		StepAIConfirm: {
			{Name: "turn on button", Kind: KindXPath, Query: `//button[contains(.,'Turn on')]`},
		},
		StepLoginMarker: {
			{Name: "login form select", Kind: KindXPath, Query: `//select[contains(@class,'SelectFormContainer')]`},
			{Name: "login page form", Kind: KindCSS, Query: `form[class*='login']`},
		},
		StepLoggedInMarker: {
			{Name: "upload surface", Kind: KindCSS, Query: `div.upload-container`},
			{Name: "studio nav", Kind: KindCSS, Query: `[data-tt='Sidebar_index_Container']`},
		},
		StepObstructionCancel: {
			{Name: "tux cancel button", Kind: KindXPath, Query: `//div[contains(@class,'common-modal')]//button[.//div[contains(@class,'TUXButton-label')][contains(text(),'Cancel')]]`},
			{Name: "plain cancel", Kind: KindXPath, Query: `//div[contains(@class,'common-modal')]//button[contains(.,'Cancel')]`},
		},
		StepObstructionClose: {
			{Name: "modal close icon", Kind: KindCSS, Query: `div.common-modal-close-icon`},
		},
		StepObstructionConfirm: {
			{Name: "allow button", Kind: KindXPath, Query: `//div[contains(@class,'TUXButton-content')][contains(text(),'Allow')]`},
		},
		StepTipsOverlay: {
			{Name: "open overlay", Kind: KindCSS, Query: `div.TUXModal-overlay[data-transition-status='open']`},
		},
	},
}

var xhsProfile = &Profile{
	Platform:        "xhs",
	EntryURL:        "https://creator.xiaohongshu.com/publish/publish",
	LoginURL:        "https://creator.xiaohongshu.com/login",
	PostPublishURLs: []string{"publish/success", "content/manage"},
	DatetimeLayout:  "2006-01-02 15:04",
	RequiresSigning: true,
	SigningURI:      "/web_api/sns/v2/note",
	Capabilities: Capabilities{
		Schedule:   ScheduleDatetimeInput,
		MaxTags:    10,
		MaxTitle:   20,
		MinuteStep: 1,
	},
	Pacing: Pacing{
		TagSettle:    300 * time.Millisecond,
		DialogSettle: time.Second,
	},
	Catalog: Catalog{
		StepUploadSurface: {
			{Name: "upload input", Kind: KindCSS, Query: `input[type='file']`},
			{Name: "upload area", Kind: KindCSS, Query: `.upload-content`},
		},
		StepFileInput: {
			{Name: "file input", Kind: KindCSS, Query: `input[type='file']`},
		},
		StepReuploadInput: {
			{Name: "file input", Kind: KindCSS, Query: `input[type='file']`},
		},
		StepTitleField: {
			{Name: "title input", Kind: KindCSS, Query: `input[placeholder*='标题']`},
		},
		StepDescEditor: {
			{Name: "content editable", Kind: KindCSS, Query: `#post-textarea, [contenteditable='true']`},
		},
		StepFallbackEditor: {
			{Name: "any editable", Kind: KindCSS, Query: `[contenteditable='true'], textarea`},
		},
		StepUploadComplete: {
			{Name: "re-upload text", Kind: KindText, Query: `重新上传`},
		},
		StepUploadFailed: {
			{Name: "upload failed text", Kind: KindText, Query: `上传失败`},
		},
		StepPublishButton: {
			{Name: "publish button", Kind: KindXPath, Query: `//button[contains(.,'发布')]`},
		},
		StepSuccessMarker: {
			{Name: "publish success text", Kind: KindText, Query: `发布成功`},
		},
		StepScheduleToggle: {
			{Name: "schedule radio", Kind: KindXPath, Query: `//*[contains(text(),'定时发布')]`},
		},
		StepScheduleDatetime: {
			{Name: "datetime input", Kind: KindCSS, Query: `input[placeholder*='日期']`},
		},
		StepLoginMarker: {
			{Name: "qr login", Kind: KindText, Query: `扫码登录`},
			{Name: "password input", Kind: KindCSS, Query: `input[type='password']`},
		},
		StepLoggedInMarker: {
			{Name: "publish entry", Kind: KindText, Query: `发布笔记`},
		},
		StepObstructionCancel: {
			{Name: "cancel button", Kind: KindXPath, Query: `//button[contains(.,'取消')]`},
		},
		StepObstructionClose: {
			{Name: "close icon", Kind: KindCSS, Query: `[class*='close-circle'], [class*='modal-close']`},
		},
		StepObstructionConfirm: {
			{Name: "confirm button", Kind: KindXPath, Query: `//button[contains(.,'我知道了')]`},
		},
	},
}
