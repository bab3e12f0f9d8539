package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jackzampolin/adrbuch/internal/report"
	"github.com/jackzampolin/adrbuch/internal/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func testPaths(t *testing.T) Paths {
	t.Helper()
	dir := t.TempDir()
	return Paths{
		Chapters: writeFile(t, dir, "chapters.csv", `Date,Year,VolumeID,ChapterTitle,ChapterID
1861-04-15,1861,29210000,Einwohner,29210010
1944-12-15,1944,29300000,Einwohner,29300010
1944-12-15,1944,29300000,Firmen,29300020
1900-02-15,1900,29250000,Einwohner,29250010
`),
		Pages: writeFile(t, dir, "pages.csv", `Date,PageID,PageLabel
1944-12-15,29300065,12
1944-12-15,29300066,[13]
1900-02-15,29250100,1
1861-04-15,29210050,3
`),
		AdPages: writeFile(t, dir, "ad_pages.txt", `# advertisement pages
29300066
`),
		Dividers: writeFile(t, dir, "dividers.csv", `PageID,X
123,512
29300065,498
`),
		AddressReform: writeFile(t, dir, "address_reform_1882.csv", `Strasse vor 1882,Nummer vor 1882,Strasse,Nummer,Scan,ID,Status
Kramgasse,10,Kramgasse,45,3012700,1,OK
Kramgasse,11,Kramgasse,47,3012700,2,Unbekannte Hausnummer
Golatenmattgasse,3,Aarbergergasse,12,3012701,3,Unbekannte Strasse
`),
	}
}

func TestLoad(t *testing.T) {
	c, err := Load(testPaths(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := []string{"1861-04-15", "1900-02-15", "1944-12-15"}
	if diff := cmp.Diff(want, c.Dates()); diff != "" {
		t.Errorf("dates mismatch (-want +got):\n%s", diff)
	}

	v, ok := c.Volume("1944-12-15")
	if !ok {
		t.Fatal("expected volume 1944-12-15")
	}
	if len(v.Chapters) != 2 {
		t.Errorf("expected 2 chapters, got %d", len(v.Chapters))
	}
	wantPages := []types.PageRef{
		{Date: "1944-12-15", PageID: 29300065, Label: "12"},
		{Date: "1944-12-15", PageID: 29300066, Label: "13", Implicit: true},
	}
	if diff := cmp.Diff(wantPages, v.Pages); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}

	if !c.IsAdPage(29300066) || c.IsAdPage(29300065) {
		t.Error("ad page denylist not applied")
	}
	if c.Dividers()[123] != 512 {
		t.Errorf("expected override 512, got %d", c.Dividers()[123])
	}
	if c.AddressReform() == nil || c.AddressReform().Len() != 3 {
		t.Error("expected 3 address mappings")
	}
}

func TestLoad_PageWithoutChapter(t *testing.T) {
	paths := testPaths(t)
	paths.Pages = writeFile(t, t.TempDir(), "pages.csv", "Date,PageID,PageLabel\n1999-01-01,1,1\n")

	_, err := Load(paths)
	if !errors.Is(err, report.ErrVolumeNotFound) {
		t.Fatalf("expected ErrVolumeNotFound, got %v", err)
	}
}

func TestLoad_MissingColumn(t *testing.T) {
	paths := testPaths(t)
	paths.Dividers = writeFile(t, t.TempDir(), "dividers.csv", "PageID,Y\n1,2\n")

	if _, err := Load(paths); err == nil {
		t.Fatal("expected error for missing X column")
	}
}

func TestLoadDividers_Conflict(t *testing.T) {
	path := writeFile(t, t.TempDir(), "dividers.csv", "PageID,X\n7,500\n7,500\n7,510\n")
	if _, err := LoadDividers(path); err == nil {
		t.Fatal("expected error for conflicting overrides")
	}
}

func TestCatalog_Select(t *testing.T) {
	c, err := Load(testPaths(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	t.Run("empty selects all from min date", func(t *testing.T) {
		vols, err := c.Select(nil, "1863")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(vols) != 2 || vols[0].Date != "1900-02-15" {
			t.Errorf("unexpected selection: %+v", vols)
		}
	})

	t.Run("explicit dates are sorted and deduplicated", func(t *testing.T) {
		vols, err := c.Select([]string{"1944-12-15", "1861-04-15", "1944-12-15"}, "1863")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(vols) != 2 || vols[0].Date != "1861-04-15" || vols[1].Date != "1944-12-15" {
			t.Errorf("unexpected selection: %+v", vols)
		}
	})

	t.Run("unknown date is fatal", func(t *testing.T) {
		_, err := c.Select([]string{"1944-12-15", "1850-01-01"}, "")
		if !errors.Is(err, report.ErrVolumeNotFound) {
			t.Fatalf("expected ErrVolumeNotFound, got %v", err)
		}
	})
}

func TestParseSelection(t *testing.T) {
	got := ParseSelection(" 1944-12-15, ,1900-02-15,")
	want := []string{"1944-12-15", "1900-02-15"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if ParseSelection("") != nil {
		t.Error("expected nil for empty selection")
	}
}

func TestAddressReform(t *testing.T) {
	ar, err := LoadAddressReform(testPaths(t).AddressReform)
	if err != nil {
		t.Fatalf("LoadAddressReform failed: %v", err)
	}

	got := ar.Lookup(Address{Street: "Kramgasse", Number: "10"})
	if len(got) != 1 || got[0].New.String() != "Kramgasse 45" || got[0].Status != StatusOK {
		t.Errorf("unexpected lookup: %+v", got)
	}

	counts := ar.StatusCounts()
	if counts[StatusOK] != 1 || counts[StatusUnknownHouseNumber] != 1 || counts[StatusUnknownStreet] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
	if diff := cmp.Diff([]string{"Aarbergergasse"}, ar.UnknownStreets()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	bad := writeFile(t, t.TempDir(), "bad.csv", "Strasse vor 1882,Nummer vor 1882,Strasse,Nummer,Status\nA,1,B,2,Maybe\n")
	if _, err := LoadAddressReform(bad); err == nil {
		t.Error("expected error for unknown status")
	}
}
