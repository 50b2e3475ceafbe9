package novault

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultFormat is used for a SiteSpec without a format template.
const DefaultFormat = "{p:.20}"

// Site is the non-secret metadata needed to regenerate a site's password.
type Site struct {
	Fmt   string
	Pin   bool
	Salt  string
	Notes string
}

// Record returns the persisted shape of the site.
func (s Site) Record() SiteRecord {
	return SiteRecord{Fmt: s.Fmt, Pin: s.Pin, Salt: s.Salt, Notes: s.Notes}
}

// SiteRecord is the plain persisted form of a Site.
type SiteRecord struct {
	Fmt   string
	Pin   bool
	Salt  string
	Notes string
}

// Site returns the Site described by the record.
func (r SiteRecord) Site() Site {
	return Site{Fmt: r.Fmt, Pin: r.Pin, Salt: r.Salt, Notes: r.Notes}
}

// Sites maps site names to their metadata.
type Sites map[string]Site

// Names returns the site names in sorted order.
func (s Sites) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a shallow copy of the map, which is enough since Site is a value.
func (s Sites) Clone() Sites {
	out := make(Sites, len(s))
	for name, site := range s {
		out[name] = site
	}
	return out
}

// saltOwner returns the name of a site other than exclude that uses salt.
// Names and revisions are joined without a separator, so "a1" at revision 0 and "a" at revision 10 have the same salt.
func (s Sites) saltOwner(salt, exclude string) (string, bool) {
	for _, name := range s.Names() {
		if name != exclude && s[name].Salt == salt {
			return name, true
		}
	}
	return "", false
}

// SaltPolicy derives a site's salt material.
// Changing any part of the policy changes every password, so it's fixed at Init.
type SaltPolicy struct {
	Install string
}

// Salt returns the salt for the named site at the given revision.
func (p SaltPolicy) Salt(name string, revision uint64) string {
	var sb strings.Builder
	sb.WriteString(p.Install)
	sb.WriteString(name)
	sb.WriteString(strconv.FormatUint(revision, 10))
	return sb.String()
}

// SiteSpec is the user input used to create or replace a Site.
type SiteSpec struct {
	Name     string
	Fmt      string
	Pin      bool
	Revision uint64
	Notes    string
}

// ValidateSiteName rejects names that are empty, or that collide with the reserved CheckName.
func ValidateSiteName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidSiteName)
	}
	if name == CheckName {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidSiteName, name)
	}
	return nil
}

// SetSite validates spec and returns a copy of sites with the new Site added, along with the Site itself.
// An existing site is only replaced if overwrite is true.
// The format template is checked with a throwaway derivation, so no secrets are needed.
func SetSite(settings Settings, sites Sites, spec SiteSpec, overwrite bool) (Sites, Site, error) {
	if err := ValidateSiteName(spec.Name); err != nil {
		return nil, Site{}, err
	}
	if _, ok := sites[spec.Name]; ok && !overwrite {
		return nil, Site{}, fmt.Errorf("%w: %q, use overwrite to replace it", ErrSiteExists, spec.Name)
	}
	tmpl := spec.Fmt
	if tmpl == "" {
		tmpl = DefaultFormat
	}
	site := Site{
		Fmt:   tmpl,
		Pin:   spec.Pin,
		Salt:  settings.SaltPolicy().Salt(spec.Name, spec.Revision),
		Notes: spec.Notes,
	}
	if other, ok := sites.saltOwner(site.Salt, spec.Name); ok {
		return nil, Site{}, fmt.Errorf("%w: %q would share its salt %q with %q, use a different revision", ErrDuplicateSalt, spec.Name, site.Salt, other)
	}
	if err := dryRun(site); err != nil {
		return nil, Site{}, err
	}
	out := sites.Clone()
	out[spec.Name] = site
	return out, site, nil
}

// Lookup returns the named Site.
func Lookup(sites Sites, name string) (Site, error) {
	site, ok := sites[name]
	if !ok {
		return Site{}, fmt.Errorf("%w: %q", ErrSiteNotFound, name)
	}
	return site, nil
}

// RemoveSite returns a copy of sites without the named Site.
func RemoveSite(sites Sites, name string) (Sites, error) {
	if _, err := Lookup(sites, name); err != nil {
		return nil, err
	}
	out := sites.Clone()
	delete(out, name)
	return out, nil
}
