// Package agency loads immutable agency reference data from a TOML file.
// Deadline policies are jurisdiction data and travel with the agency record.
package agency

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/foiaworks/foiad/internal/model"
)

// Directory is a read-only lookup of agencies by ID.
type Directory struct {
	byID map[string]model.Agency
}

// file is the on-disk TOML shape:
//
//	[[agency]]
//	id = "alameda-sheriff"
//	name = "Alameda County Sheriff's Office"
//	jurisdiction = "CA"
//	portal_family = "nextrequest"
//	portal_url = "https://alamedacountysheriffca.nextrequest.com"
//	  [agency.deadline]
//	  response_days = 10
//	  business_days = true
//	  max_extension_days = 14
type file struct {
	Agencies []model.Agency `toml:"agency"`
}

// LoadFile reads agency reference data from the given TOML file.
func LoadFile(path string) (*Directory, error) {
	var f file
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decoding agencies file %s: %w", path, err)
	}
	return New(f.Agencies)
}

// New builds a Directory from already-decoded agency records.
func New(agencies []model.Agency) (*Directory, error) {
	byID := make(map[string]model.Agency, len(agencies))
	for _, a := range agencies {
		if a.ID == "" {
			return nil, fmt.Errorf("agency %q has no id", a.Name)
		}
		if _, dup := byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate agency id %q", a.ID)
		}
		if a.Deadline.ResponseDays <= 0 {
			return nil, fmt.Errorf("agency %q: response_days must be positive", a.ID)
		}
		byID[a.ID] = a
	}
	return &Directory{byID: byID}, nil
}

// Get returns the agency with the given ID.
func (d *Directory) Get(id string) (model.Agency, error) {
	a, ok := d.byID[id]
	if !ok {
		return model.Agency{}, fmt.Errorf("unknown agency %q", id)
	}
	return a, nil
}

// All returns every agency, sorted by ID.
func (d *Directory) All() []model.Agency {
	out := make([]model.Agency, 0, len(d.byID))
	for _, a := range d.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
