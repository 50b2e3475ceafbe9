package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/saylorsolutions/novault/pkg/novault"
	"gopkg.in/yaml.v3"
)

const (
	filePerm = 0600
	dirPerm  = 0700
)

var (
	ErrExists         = errors.New("settings already exist")
	ErrNotInitialized = errors.New("settings not found, run 'novault init' first")
)

type settingsFile struct {
	Level     uint32 `yaml:"level"`
	Mem       uint32 `yaml:"mem"`
	Threads   uint32 `yaml:"threads"`
	CheckHash string `yaml:"checkhash"`
	Secret    string `yaml:"secret,omitempty"`
	Install   string `yaml:"install,omitempty"`
}

type siteFile struct {
	Fmt   string `yaml:"fmt"`
	Pin   bool   `yaml:"pin,omitempty"`
	Salt  string `yaml:"salt"`
	Notes string `yaml:"notes,omitempty"`
}

// Store reads and writes the settings and sites files.
// Files are written atomically with owner-only permissions.
type Store struct {
	settingsPath string
	sitesPath    string
}

func New(settingsPath, sitesPath string) *Store {
	return &Store{settingsPath: settingsPath, sitesPath: sitesPath}
}

// SettingsExist reports whether Init has already been run.
func (s *Store) SettingsExist() bool {
	_, err := os.Stat(s.settingsPath)
	return err == nil
}

// LoadSettings reads and validates the settings file.
func (s *Store) LoadSettings() (novault.Settings, error) {
	data, err := os.ReadFile(s.settingsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return novault.Settings{}, ErrNotInitialized
		}
		return novault.Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	var f settingsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return novault.Settings{}, fmt.Errorf("failed to parse settings file %s: %w", s.settingsPath, err)
	}
	settings, err := novault.RestoreSettings(novault.SettingsRecord{
		Level:     f.Level,
		Mem:       f.Mem,
		Threads:   f.Threads,
		CheckHash: f.CheckHash,
		Secret:    f.Secret,
		Install:   f.Install,
	})
	if err != nil {
		return novault.Settings{}, fmt.Errorf("settings file %s: %w", s.settingsPath, err)
	}
	return settings, nil
}

// CreateSettings writes new settings, refusing to replace existing ones.
func (s *Store) CreateSettings(settings novault.Settings) error {
	if s.SettingsExist() {
		return fmt.Errorf("%w at %s", ErrExists, s.settingsPath)
	}
	rec := settings.Record()
	data, err := yaml.Marshal(settingsFile{
		Level:     rec.Level,
		Mem:       rec.Mem,
		Threads:   rec.Threads,
		CheckHash: rec.CheckHash,
		Secret:    rec.Secret,
		Install:   rec.Install,
	})
	if err != nil {
		return err
	}
	return atomicWriteFile(s.settingsPath, data, filePerm)
}

// LoadSites reads the sites file. A missing file is an empty set of sites.
func (s *Store) LoadSites() (novault.Sites, error) {
	data, err := os.ReadFile(s.sitesPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return novault.Sites{}, nil
		}
		return nil, fmt.Errorf("failed to read sites: %w", err)
	}
	var files map[string]siteFile
	if err := yaml.Unmarshal(data, &files); err != nil {
		return nil, fmt.Errorf("failed to parse sites file %s: %w", s.sitesPath, err)
	}
	sites := make(novault.Sites, len(files))
	for name, f := range files {
		sites[name] = novault.SiteRecord{Fmt: f.Fmt, Pin: f.Pin, Salt: f.Salt, Notes: f.Notes}.Site()
	}
	return sites, nil
}

// SaveSites replaces the sites file.
func (s *Store) SaveSites(sites novault.Sites) error {
	files := make(map[string]siteFile, len(sites))
	for name, site := range sites {
		rec := site.Record()
		files[name] = siteFile{Fmt: rec.Fmt, Pin: rec.Pin, Salt: rec.Salt, Notes: rec.Notes}
	}
	data, err := yaml.Marshal(files)
	if err != nil {
		return err
	}
	return atomicWriteFile(s.sitesPath, data, filePerm)
}

// atomicWriteFile writes to a temp file in the same directory, then renames it over path.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".novault-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}
	return syncDir(dir)
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer func() {
		_ = d.Close()
	}()
	// Some platforms can't sync a directory, which isn't worth failing the write over.
	_ = d.Sync()
	return nil
}
