package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// EnvVar overrides the default workspace directory.
	EnvVar = "ADRBUCH_HOME"

	// DataDirName holds the catalog tables.
	DataDirName = "data"

	// CacheDirName holds OCR output and page scans.
	CacheDirName = "cache"

	// ProofreadDirName receives the converted volumes.
	ProofreadDirName = "proofread"

	// CropsDirName receives entry crops.
	CropsDirName = "crops"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the adrbuch workspace.
//
//	data/chapters.csv  data/pages.csv  data/ad_pages.csv
//	data/dividers.csv  data/address_reform.csv
//	cache/ocr/<page>.hocr  cache/scans/<page>.jpg
//	proofread/<date>.txt   crops/<page>_NNN.png
//	config.yaml
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, $ADRBUCH_HOME is used, then the working directory.
func New(path string) (*Dir, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = wd
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the workspace.
func (d *Dir) Path() string {
	return d.path
}

// DataPath returns the path to the data directory.
func (d *Dir) DataPath() string {
	return filepath.Join(d.path, DataDirName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

func (d *Dir) ChaptersPath() string      { return filepath.Join(d.DataPath(), "chapters.csv") }
func (d *Dir) PagesPath() string         { return filepath.Join(d.DataPath(), "pages.csv") }
func (d *Dir) AdPagesPath() string       { return filepath.Join(d.DataPath(), "ad_pages.csv") }
func (d *Dir) DividersPath() string      { return filepath.Join(d.DataPath(), "dividers.csv") }
func (d *Dir) AddressReformPath() string { return filepath.Join(d.DataPath(), "address_reform.csv") }

// OCRDir returns the directory holding one OCR file per page.
func (d *Dir) OCRDir() string {
	return filepath.Join(d.path, CacheDirName, "ocr")
}

// ScansDir returns the directory holding downloaded page scans.
func (d *Dir) ScansDir() string {
	return filepath.Join(d.path, CacheDirName, "scans")
}

// ProofreadDir returns the directory for converted volumes.
func (d *Dir) ProofreadDir() string {
	return filepath.Join(d.path, ProofreadDirName)
}

// CropsDir returns the directory for entry crops.
func (d *Dir) CropsDir() string {
	return filepath.Join(d.path, CropsDirName)
}

// EnsureExists creates the workspace subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	for _, dir := range []string{d.DataPath(), d.OCRDir(), d.ScansDir(), d.ProofreadDir(), d.CropsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Exists returns true if the workspace directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the workspace.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
