package scan

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Cache provides thread-safe access to decoded page scans in a directory.
//
// Decoded images stay in memory until Evict or Clear is called. A scan is
// a few megabytes once decoded, so batch callers evict after each page.
type Cache struct {
	dir string

	mu     sync.RWMutex
	images map[int]image.Image
}

// NewCache creates a cache over the scans in dir.
func NewCache(dir string) *Cache {
	return &Cache{
		dir:    dir,
		images: make(map[int]image.Image),
	}
}

// Dir returns the scan directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Path returns the file path of a page scan.
func (c *Cache) Path(pageID int) string {
	return filepath.Join(c.dir, strconv.Itoa(pageID)+".jpg")
}

// Has reports whether a scan for the page exists on disk.
func (c *Cache) Has(pageID int) bool {
	_, err := os.Stat(c.Path(pageID))
	return err == nil
}

// Load returns the decoded scan of a page, reading it from disk on first use.
func (c *Cache) Load(pageID int) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[pageID]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(c.Path(pageID))
	if err != nil {
		return nil, fmt.Errorf("failed to open scan: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode scan %d: %w", pageID, err)
	}

	c.mu.Lock()
	c.images[pageID] = img
	c.mu.Unlock()

	return img, nil
}

// Evict drops a decoded scan from memory.
func (c *Cache) Evict(pageID int) {
	c.mu.Lock()
	delete(c.images, pageID)
	c.mu.Unlock()
}

// Clear drops all decoded scans from memory.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.images = make(map[int]image.Image)
	c.mu.Unlock()
}
