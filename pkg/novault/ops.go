package novault

import "crypto/rand"

// Init creates new Settings for the master secret, and computes their CheckHash.
// Without options, the cost parameters are DefaultLevel, DefaultMemMiB, and DefaultThreads, and a new random Pepper is generated.
func (e *Engine) Init(master *MasterSecret, opts ...Option) (Settings, CheckHash, error) {
	if err := e.policy.Check(master); err != nil {
		return Settings{}, "", err
	}
	conf := &settingsConfig{
		level:   DefaultLevel,
		memMiB:  DefaultMemMiB,
		threads: DefaultThreads,
		random:  rand.Reader,
	}
	if err := conf.apply(opts); err != nil {
		return Settings{}, "", err
	}
	settings, err := conf.settings()
	if err != nil {
		return Settings{}, "", err
	}
	ch, err := e.ComputeCheckHash(settings, master)
	if err != nil {
		return Settings{}, "", err
	}
	return settings.withCheckHash(ch), ch, nil
}

// GetPassword checks the master secret against the stored CheckHash, then renders the site's password.
func (e *Engine) GetPassword(settings Settings, site Site, master *MasterSecret) (*SitePassword, error) {
	if err := e.ValidateCheckHash(settings, master); err != nil {
		return nil, err
	}
	return e.Password(settings, master, site)
}

// Export checks the master secret against the stored CheckHash, then renders the password of every site.
// The caller should Destroy every returned SitePassword when done.
func (e *Engine) Export(settings Settings, sites Sites, master *MasterSecret) (map[string]*SitePassword, error) {
	if err := e.ValidateCheckHash(settings, master); err != nil {
		return nil, err
	}
	out := make(map[string]*SitePassword, len(sites))
	for _, name := range sites.Names() {
		pass, err := e.Password(settings, master, sites[name])
		if err != nil {
			for _, p := range out {
				p.Destroy()
			}
			return nil, err
		}
		out[name] = pass
	}
	return out, nil
}

// Init calls Engine.Init with the default Engine.
func Init(master *MasterSecret, opts ...Option) (Settings, CheckHash, error) {
	return defaultEngine.Init(master, opts...)
}

// GetPassword calls Engine.GetPassword with the default Engine.
func GetPassword(settings Settings, site Site, master *MasterSecret) (*SitePassword, error) {
	return defaultEngine.GetPassword(settings, site, master)
}

// Export calls Engine.Export with the default Engine.
func Export(settings Settings, sites Sites, master *MasterSecret) (map[string]*SitePassword, error) {
	return defaultEngine.Export(settings, sites, master)
}
