package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/video-publisher/internal/locator"
)

type stubPage struct {
	visible map[string]bool
	failOn  map[string]bool
}

func (p *stubPage) Navigate(ctx context.Context, url string) error { return nil }
func (p *stubPage) Location(ctx context.Context) (string, error)   { return "", nil }

func (p *stubPage) Visible(ctx context.Context, s locator.Strategy) (bool, error) {
	if p.failOn[s.Query] {
		return false, errors.New("query failed")
	}
	return p.visible[s.Query], nil
}

func (p *stubPage) Click(ctx context.Context, s locator.Strategy) error              { return nil }
func (p *stubPage) Fill(ctx context.Context, s locator.Strategy, text string) error  { return nil }
func (p *stubPage) Clear(ctx context.Context, s locator.Strategy) error              { return nil }
func (p *stubPage) Upload(ctx context.Context, s locator.Strategy, path string) error { return nil }
func (p *stubPage) Text(ctx context.Context, s locator.Strategy) (string, error)     { return "", nil }
func (p *stubPage) Attribute(ctx context.Context, s locator.Strategy, name string) (string, bool, error) {
	return "", false, nil
}
func (p *stubPage) TypeText(ctx context.Context, text string) error { return nil }
func (p *stubPage) Press(ctx context.Context, key string) error     { return nil }
func (p *stubPage) HTML(ctx context.Context) (string, error)        { return "", nil }
func (p *stubPage) Screenshot(ctx context.Context) ([]byte, error)  { return nil, nil }
func (p *stubPage) Closed() bool                                    { return false }

func TestFirstVisible_DeclaredOrderWins(t *testing.T) {
	page := &stubPage{visible: map[string]bool{"div.second": true, "div.third": true}}

	st, ok := FirstVisible(context.Background(), page, []locator.Strategy{
		{Name: "first", Kind: locator.KindCSS, Query: "div.first"},
		{Name: "second", Kind: locator.KindCSS, Query: "div.second"},
		{Name: "third", Kind: locator.KindCSS, Query: "div.third"},
	})

	assert.True(t, ok)
	assert.Equal(t, "second", st.Name)
}

func TestFirstVisible_NoMatch(t *testing.T) {
	page := &stubPage{visible: map[string]bool{}}

	_, ok := FirstVisible(context.Background(), page, []locator.Strategy{
		{Name: "only", Kind: locator.KindCSS, Query: "div.only"},
	})

	assert.False(t, ok)
}

func TestFirstVisible_SkipsFailingQueries(t *testing.T) {
	page := &stubPage{
		visible: map[string]bool{"div.good": true},
		failOn:  map[string]bool{"div.broken": true},
	}

	st, ok := FirstVisible(context.Background(), page, []locator.Strategy{
		{Name: "broken", Kind: locator.KindCSS, Query: "div.broken"},
		{Name: "good", Kind: locator.KindCSS, Query: "div.good"},
	})

	assert.True(t, ok)
	assert.Equal(t, "good", st.Name)
}

func TestXPathLiteral(t *testing.T) {
	assert.Equal(t, "'publish'", xpathLiteral("publish"))
	assert.Equal(t, `concat('it',"'",'s here')`, xpathLiteral("it's here"))
}

func TestTextXPath(t *testing.T) {
	assert.Equal(t, `//*[contains(text(),'发布')]`, textXPath("发布"))
}

func TestKeyFor(t *testing.T) {
	assert.Equal(t, "\r", keyFor("Enter"))
	assert.Equal(t, "a", keyFor("a"))
}
