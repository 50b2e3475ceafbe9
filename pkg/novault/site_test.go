package novault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaltPolicy_Salt(t *testing.T) {
	assert.Equal(t, "name0", SaltPolicy{}.Salt("name", 0))
	assert.Equal(t, "bank12", SaltPolicy{}.Salt("bank", 12))
	assert.Equal(t, "install-bank3", SaltPolicy{Install: "install-"}.Salt("bank", 3))
	assert.Equal(t, SaltPolicy{}.Salt("bank", 1), SaltPolicy{}.Salt("bank", 1), "salts must be stable")
}

func TestSetSite(t *testing.T) {
	settings := refSettings(t)
	sites := Sites{}

	updated, site, err := SetSite(settings, sites, SiteSpec{Name: "bank", Pin: true, Revision: 2, Notes: "checking"}, false)
	require.NoError(t, err)
	assert.Empty(t, sites, "input map must not be modified")
	assert.Equal(t, Site{Fmt: DefaultFormat, Pin: true, Salt: "bank2", Notes: "checking"}, site)
	assert.Equal(t, site, updated["bank"])

	updated, site, err = SetSite(settings, updated, SiteSpec{Name: "mail", Fmt: "X-{p:.10}"}, false)
	require.NoError(t, err)
	assert.Equal(t, "mail0", site.Salt)
	assert.Equal(t, []string{"bank", "mail"}, updated.Names())

	_, _, err = SetSite(settings, updated, SiteSpec{Name: "bank"}, false)
	assert.ErrorIs(t, err, ErrSiteExists)

	replaced, site, err := SetSite(settings, updated, SiteSpec{Name: "bank", Revision: 3}, true)
	require.NoError(t, err)
	assert.Equal(t, "bank3", site.Salt)
	assert.Equal(t, "bank3", replaced["bank"].Salt)
	assert.Equal(t, "bank2", updated["bank"].Salt)
}

func TestSetSite_InstallSalt(t *testing.T) {
	settings, err := NewSettings(1, 10, 1, WithInstallID("abc-"))
	require.NoError(t, err)
	_, site, err := SetSite(settings, nil, SiteSpec{Name: "bank"}, false)
	require.NoError(t, err)
	assert.Equal(t, "abc-bank0", site.Salt)
}

func TestSetSite_Neg(t *testing.T) {
	settings := refSettings(t)
	tests := map[string]struct {
		spec SiteSpec
		err  error
	}{
		"empty name":    {SiteSpec{Name: ""}, ErrInvalidSiteName},
		"blank name":    {SiteSpec{Name: "  "}, ErrInvalidSiteName},
		"reserved name": {SiteSpec{Name: CheckName}, ErrInvalidSiteName},
		"short format":  {SiteSpec{Name: "bank", Fmt: "{p:.3}"}, ErrInvalidFormatTemplate},
		"prefix only":   {SiteSpec{Name: "bank", Fmt: "long-prefix-{p:.2}"}, ErrInvalidFormatTemplate},
		"bad field":     {SiteSpec{Name: "bank", Fmt: "{q}"}, ErrInvalidFormatTemplate},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := SetSite(settings, Sites{}, tc.spec, true)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestSetSite_DuplicateSalt(t *testing.T) {
	settings := refSettings(t)
	sites, site, err := SetSite(settings, nil, SiteSpec{Name: "a1"}, false)
	require.NoError(t, err)
	require.Equal(t, "a10", site.Salt)

	_, _, err = SetSite(settings, sites, SiteSpec{Name: "a", Revision: 10}, false)
	assert.ErrorIs(t, err, ErrDuplicateSalt)
	assert.ErrorIs(t, err, ErrInvalidSalt)
	assert.Contains(t, err.Error(), `"a1"`)

	sites, _, err = SetSite(settings, sites, SiteSpec{Name: "a", Revision: 11}, false)
	require.NoError(t, err, "a different revision gives a different salt")

	_, _, err = SetSite(settings, sites, SiteSpec{Name: "a1", Revision: 1}, true)
	assert.ErrorIs(t, err, ErrDuplicateSalt, "a1 at revision 1 collides with a at revision 11")

	_, site, err = SetSite(settings, sites, SiteSpec{Name: "a1", Notes: "same salt as before"}, true)
	require.NoError(t, err, "a site may keep its own salt when it's replaced")
	assert.Equal(t, "a10", site.Salt)
}

func TestLookup(t *testing.T) {
	sites := Sites{"bank": {Fmt: DefaultFormat, Salt: "bank0"}}
	site, err := Lookup(sites, "bank")
	require.NoError(t, err)
	assert.Equal(t, "bank0", site.Salt)

	_, err = Lookup(sites, "mail")
	assert.ErrorIs(t, err, ErrSiteNotFound)
}

func TestRemoveSite(t *testing.T) {
	sites := Sites{"bank": {Salt: "bank0"}, "mail": {Salt: "mail0"}}
	out, err := RemoveSite(sites, "bank")
	require.NoError(t, err)
	assert.Equal(t, []string{"mail"}, out.Names())
	assert.Len(t, sites, 2)

	_, err = RemoveSite(sites, "other")
	assert.ErrorIs(t, err, ErrSiteNotFound)
}

func TestSiteRecord(t *testing.T) {
	site := Site{Fmt: "{p}", Pin: true, Salt: "x0", Notes: "n"}
	assert.Equal(t, site, site.Record().Site())
}
