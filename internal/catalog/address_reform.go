package catalog

import (
	"fmt"
	"sort"
)

// ReformStatus is the verification status of an address mapping.
type ReformStatus string

const (
	StatusOK                 ReformStatus = "OK"
	StatusUnknownHouseNumber ReformStatus = "UnknownHouseNumber"
	StatusUnknownStreet      ReformStatus = "UnknownStreet"
)

// ParseReformStatus accepts both the English status names and the German
// labels written by the mapping checker.
func ParseReformStatus(s string) (ReformStatus, error) {
	switch s {
	case "OK":
		return StatusOK, nil
	case "UnknownHouseNumber", "Unbekannte Hausnummer":
		return StatusUnknownHouseNumber, nil
	case "UnknownStreet", "Unbekannte Strasse":
		return StatusUnknownStreet, nil
	default:
		return "", fmt.Errorf("unknown address reform status %q", s)
	}
}

// Address is a street name with a house number (including any letter suffix).
type Address struct {
	Street string `json:"street" yaml:"street"`
	Number string `json:"number" yaml:"number"`
}

func (a Address) String() string {
	if a.Number == "" {
		return a.Street
	}
	return a.Street + " " + a.Number
}

// AddressMapping maps one pre-1882 address to its post-1882 address.
type AddressMapping struct {
	Old    Address      `json:"old" yaml:"old"`
	New    Address      `json:"new" yaml:"new"`
	Status ReformStatus `json:"status" yaml:"status"`
}

// AddressReform is the loaded 1882 address reform table.
type AddressReform struct {
	mappings []AddressMapping
	byOld    map[Address][]int
}

// LoadAddressReform reads the reform table. Columns follow the checker's
// output: "Strasse vor 1882", "Nummer vor 1882", "Strasse", "Nummer", "Status".
func LoadAddressReform(path string) (*AddressReform, error) {
	records, err := readCSV(path, ',', "Strasse vor 1882", "Nummer vor 1882", "Strasse", "Nummer", "Status")
	if err != nil {
		return nil, fmt.Errorf("failed to load address reform: %w", err)
	}

	ar := &AddressReform{byOld: make(map[Address][]int)}
	for _, r := range records {
		status, err := ParseReformStatus(r.get("Status"))
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", path, r.line, err)
		}
		m := AddressMapping{
			Old:    Address{Street: r.get("Strasse vor 1882"), Number: r.get("Nummer vor 1882")},
			New:    Address{Street: r.get("Strasse"), Number: r.get("Nummer")},
			Status: status,
		}
		ar.byOld[m.Old] = append(ar.byOld[m.Old], len(ar.mappings))
		ar.mappings = append(ar.mappings, m)
	}
	return ar, nil
}

// Len returns the number of mappings.
func (ar *AddressReform) Len() int {
	return len(ar.mappings)
}

// Lookup returns all mappings for a pre-1882 address.
func (ar *AddressReform) Lookup(old Address) []AddressMapping {
	idx := ar.byOld[old]
	out := make([]AddressMapping, len(idx))
	for i, j := range idx {
		out[i] = ar.mappings[j]
	}
	return out
}

// StatusCounts tallies mappings per status.
func (ar *AddressReform) StatusCounts() map[ReformStatus]int {
	counts := make(map[ReformStatus]int)
	for _, m := range ar.mappings {
		counts[m.Status]++
	}
	return counts
}

// UnknownStreets returns the distinct post-1882 streets with status UnknownStreet.
func (ar *AddressReform) UnknownStreets() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range ar.mappings {
		if m.Status == StatusUnknownStreet && !seen[m.New.Street] {
			seen[m.New.Street] = true
			out = append(out, m.New.Street)
		}
	}
	sort.Strings(out)
	return out
}
