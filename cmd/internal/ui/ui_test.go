package ui

import (
	"errors"
	"fmt"
	"testing"

	"github.com/saylorsolutions/novault/pkg/novault"
	"github.com/saylorsolutions/novault/pkg/session"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteItems(t *testing.T) {
	items := siteItems(novault.Sites{
		"mail": {Notes: "personal"},
		"bank": {},
	})
	assert.Equal(t, []siteItem{{name: "bank"}, {name: "mail", notes: "personal"}}, items)
}

func TestStatusFor(t *testing.T) {
	assert.Contains(t, statusFor("bank", nil), "delivered")
	assert.Contains(t, statusFor("bank", &session.MismatchError{Remaining: 2}), "2 attempt(s) remaining")
	assert.Contains(t, statusFor("bank", session.ErrSessionExpired), "expired")
	assert.Contains(t, statusFor("bank", fmt.Errorf("wrapped: %w", novault.ErrCheckFailed)), "checkhash")
	assert.Contains(t, statusFor("bank", novault.ErrSiteNotFound), "site not found")
}

func TestNew(t *testing.T) {
	a := New(Model{Sites: novault.Sites{"bank": {}, "mail": {}}})
	assert.Equal(t, 3, a.list.GetItemCount(), "one item per site, plus quit")
	main, _ := a.list.GetItemText(0)
	assert.Equal(t, "bank", main)
	assert.True(t, a.pages.HasPage(pageSites))
}

func testSettings(t *testing.T) novault.Settings {
	t.Helper()
	settings, err := novault.RestoreSettings(novault.SettingsRecord{Level: 1, Mem: 8, Threads: 1})
	require.NoError(t, err)
	return settings
}

func TestNew_WithSave(t *testing.T) {
	a := New(Model{Sites: novault.Sites{"bank": {}}, Save: func(novault.Sites) error { return nil }})
	assert.Equal(t, 3, a.list.GetItemCount(), "one item per site, plus new site and quit")
	main, _ := a.list.GetItemText(1)
	assert.Equal(t, "New site", main)
}

func TestAddSite(t *testing.T) {
	var saved novault.Sites
	a := New(Model{
		Settings: testSettings(t),
		Logger:   zerolog.Nop(),
		Sites:    novault.Sites{"mail": {Fmt: novault.DefaultFormat, Salt: "mail0"}},
		Save: func(sites novault.Sites) error {
			saved = sites
			return nil
		},
	})
	require.NoError(t, a.addSite(novault.SiteSpec{Name: "bank", Fmt: "B-{p:.12}", Revision: 2}))
	assert.Equal(t, []string{"bank", "mail"}, saved.Names())
	assert.Equal(t, "bank2", saved["bank"].Salt)
	assert.Equal(t, saved, a.Sites)
	main, _ := a.list.GetItemText(0)
	assert.Equal(t, "bank", main)

	err := a.addSite(novault.SiteSpec{Name: "bank"})
	assert.ErrorIs(t, err, novault.ErrSiteExists)
}

func TestAddSite_SaveFails(t *testing.T) {
	boom := errors.New("disk full")
	a := New(Model{
		Settings: testSettings(t),
		Logger:   zerolog.Nop(),
		Sites:    novault.Sites{},
		Save:     func(novault.Sites) error { return boom },
	})
	assert.ErrorIs(t, a.addSite(novault.SiteSpec{Name: "bank"}), boom)
	assert.Empty(t, a.Sites, "sites only change once they're saved")
}

func TestSpecFromForm(t *testing.T) {
	form := newSiteForm()
	form.GetFormItemByLabel(labelName).(*tview.InputField).SetText(" bank ")
	form.GetFormItemByLabel(labelRevision).(*tview.InputField).SetText("3")
	form.GetFormItemByLabel(labelNotes).(*tview.InputField).SetText("checking")
	form.GetFormItemByLabel(labelPin).(*tview.Checkbox).SetChecked(true)

	spec, err := specFromForm(form)
	require.NoError(t, err)
	assert.Equal(t, novault.SiteSpec{Name: "bank", Fmt: novault.DefaultFormat, Pin: true, Revision: 3, Notes: "checking"}, spec)

	form.GetFormItemByLabel(labelRevision).(*tview.InputField).SetText("-1")
	_, err = specFromForm(form)
	assert.Error(t, err)
}
