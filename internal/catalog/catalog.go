// Package catalog loads the manually curated reference tables: chapters,
// content pages, the ad-page denylist, divider overrides and the 1882
// address reform mapping.
//
// All tables are loaded once into an immutable Catalog that is passed
// explicitly to the stages that need it.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jackzampolin/adrbuch/internal/report"
	"github.com/jackzampolin/adrbuch/internal/types"
)

// Paths locates the catalog tables. Empty optional paths are skipped.
type Paths struct {
	Chapters      string // required
	Pages         string // required
	AdPages       string // optional
	Dividers      string // optional
	AddressReform string // optional
}

// Chapter is one row of the chapter table.
type Chapter struct {
	Date      string `json:"date" yaml:"date"`
	Year      int    `json:"year" yaml:"year"`
	VolumeID  string `json:"volume_id" yaml:"volume_id"`
	Title     string `json:"title" yaml:"title"`
	ChapterID string `json:"chapter_id" yaml:"chapter_id"`
}

// Volume is the set of content pages sharing one deadline date.
type Volume struct {
	Date     string          `json:"date" yaml:"date"`
	Chapters []Chapter       `json:"chapters,omitempty" yaml:"chapters,omitempty"`
	Pages    []types.PageRef `json:"pages" yaml:"pages"`
}

// Catalog holds all reference tables. It is never mutated after Load.
type Catalog struct {
	volumes   map[string]*Volume
	dates     []string
	adPages   map[int]struct{}
	dividers  map[int]int
	addresses *AddressReform
}

// Load reads all tables named in paths.
func Load(paths Paths) (*Catalog, error) {
	if paths.Chapters == "" || paths.Pages == "" {
		return nil, errors.New("chapters and pages tables are required")
	}

	c := &Catalog{
		volumes:  make(map[string]*Volume),
		adPages:  make(map[int]struct{}),
		dividers: make(map[int]int),
	}

	chapters, err := LoadChapters(paths.Chapters)
	if err != nil {
		return nil, err
	}
	for _, ch := range chapters {
		v := c.volume(ch.Date)
		v.Chapters = append(v.Chapters, ch)
	}

	pages, err := LoadPages(paths.Pages)
	if err != nil {
		return nil, err
	}
	for _, p := range pages {
		v, ok := c.volumes[p.Date]
		if !ok {
			return nil, fmt.Errorf("%s: page %d belongs to %s, which has no chapter: %w",
				paths.Pages, p.PageID, p.Date, report.ErrVolumeNotFound)
		}
		v.Pages = append(v.Pages, p)
	}

	if paths.AdPages != "" {
		ids, err := LoadAdPages(paths.AdPages)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			c.adPages[id] = struct{}{}
		}
	}

	if paths.Dividers != "" {
		if c.dividers, err = LoadDividers(paths.Dividers); err != nil {
			return nil, err
		}
	}

	if paths.AddressReform != "" {
		if c.addresses, err = LoadAddressReform(paths.AddressReform); err != nil {
			return nil, err
		}
	}

	for d := range c.volumes {
		c.dates = append(c.dates, d)
	}
	sort.Strings(c.dates)
	return c, nil
}

func (c *Catalog) volume(date string) *Volume {
	v, ok := c.volumes[date]
	if !ok {
		v = &Volume{Date: date}
		c.volumes[date] = v
	}
	return v
}

// Dates returns all volume dates in ascending order.
func (c *Catalog) Dates() []string {
	out := make([]string, len(c.dates))
	copy(out, c.dates)
	return out
}

// Volume returns the volume for a date.
func (c *Catalog) Volume(date string) (Volume, bool) {
	v, ok := c.volumes[date]
	if !ok {
		return Volume{}, false
	}
	return *v, true
}

// IsAdPage reports whether the page is on the advertisement denylist.
func (c *Catalog) IsAdPage(pageID int) bool {
	_, ok := c.adPages[pageID]
	return ok
}

// Dividers returns a copy of the manual divider override table.
func (c *Catalog) Dividers() map[int]int {
	out := make(map[int]int, len(c.dividers))
	for k, v := range c.dividers {
		out[k] = v
	}
	return out
}

// AddressReform returns the address reform table, or nil if none was loaded.
func (c *Catalog) AddressReform() *AddressReform {
	return c.addresses
}

// Select returns the volumes named in dates, in ascending date order.
// An empty selection returns every volume not older than minDate.
// A date missing from the chapter table fails the whole selection.
func (c *Catalog) Select(dates []string, minDate string) ([]Volume, error) {
	if len(dates) == 0 {
		var out []Volume
		for _, d := range c.dates {
			if minDate != "" && d < minDate {
				continue
			}
			out = append(out, *c.volumes[d])
		}
		return out, nil
	}

	var missing []string
	seen := make(map[string]bool)
	var selected []string
	for _, d := range dates {
		if seen[d] {
			continue
		}
		seen[d] = true
		if _, ok := c.volumes[d]; !ok {
			missing = append(missing, d)
			continue
		}
		selected = append(selected, d)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(missing, ", "), report.ErrVolumeNotFound)
	}

	sort.Strings(selected)
	out := make([]Volume, 0, len(selected))
	for _, d := range selected {
		out = append(out, *c.volumes[d])
	}
	return out, nil
}

// ParseSelection splits a PROCESS_VOLUMES value into dates.
func ParseSelection(value string) []string {
	var dates []string
	for _, s := range strings.Split(value, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			dates = append(dates, s)
		}
	}
	return dates
}

// LoadChapters reads the chapter table (Date, Year, VolumeID, ChapterTitle, ChapterID).
func LoadChapters(path string) ([]Chapter, error) {
	records, err := readCSV(path, ',', "Date", "Year", "VolumeID", "ChapterTitle", "ChapterID")
	if err != nil {
		return nil, fmt.Errorf("failed to load chapters: %w", err)
	}
	chapters := make([]Chapter, 0, len(records))
	for _, r := range records {
		year, err := r.int("Year")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		chapters = append(chapters, Chapter{
			Date:      r.get("Date"),
			Year:      year,
			VolumeID:  r.get("VolumeID"),
			Title:     r.get("ChapterTitle"),
			ChapterID: r.get("ChapterID"),
		})
	}
	return chapters, nil
}

// LoadPages reads the content page table (Date, PageID, PageLabel).
func LoadPages(path string) ([]types.PageRef, error) {
	records, err := readCSV(path, ',', "Date", "PageID", "PageLabel")
	if err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}
	pages := make([]types.PageRef, 0, len(records))
	for _, r := range records {
		id, err := r.int("PageID")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		label, implicit, err := types.ParsePageLabel(r.get("PageLabel"))
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", path, r.line, err)
		}
		pages = append(pages, types.PageRef{
			Date:     r.get("Date"),
			PageID:   id,
			Label:    label,
			Implicit: implicit,
		})
	}
	return pages, nil
}

// LoadAdPages reads the plain-text ad page denylist, one PageID per line.
func LoadAdPages(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load ad pages: %w", err)
	}
	defer f.Close()

	lines, err := readLines(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load ad pages: %w", err)
	}
	ids := make([]int, 0, len(lines))
	for _, l := range lines {
		var id int
		if _, err := fmt.Sscanf(l, "%d", &id); err != nil {
			return nil, fmt.Errorf("%s: bad page id %q", path, l)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// LoadDividers reads the manual divider exception table (PageID, X).
func LoadDividers(path string) (map[int]int, error) {
	records, err := readCSV(path, ',', "PageID", "X")
	if err != nil {
		return nil, fmt.Errorf("failed to load divider overrides: %w", err)
	}
	out := make(map[int]int, len(records))
	for _, r := range records {
		id, err := r.int("PageID")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		x, err := r.int("X")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, dup := out[id]; dup && prev != x {
			return nil, fmt.Errorf("%s: line %d: page %d has conflicting overrides %d and %d", path, r.line, id, prev, x)
		}
		out[id] = x
	}
	return out, nil
}
