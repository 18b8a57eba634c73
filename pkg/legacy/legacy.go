// Package legacy reads read/favorite flags kept by older installs, before
// articles lived in the document store. They are consulted once, on the
// first sync.
package legacy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Flags answers per-article legacy flags.
type Flags interface {
	Read(number int) bool
	Favorite(number int) bool
}

// Prefs is the on-disk preference file:
//
//	read: [1, 2, 5]
//	favorites: [2]
type Prefs struct {
	ReadNumbers     []int `yaml:"read"`
	FavoriteNumbers []int `yaml:"favorites"`

	read     map[int]bool
	favorite map[int]bool
}

func (p *Prefs) index() {
	p.read = make(map[int]bool, len(p.ReadNumbers))
	for _, n := range p.ReadNumbers {
		p.read[n] = true
	}
	p.favorite = make(map[int]bool, len(p.FavoriteNumbers))
	for _, n := range p.FavoriteNumbers {
		p.favorite[n] = true
	}
}

func (p *Prefs) Read(number int) bool {
	return p != nil && p.read[number]
}

func (p *Prefs) Favorite(number int) bool {
	return p != nil && p.favorite[number]
}

// New builds Prefs from explicit lists.
func New(read, favorites []int) *Prefs {
	p := &Prefs{ReadNumbers: read, FavoriteNumbers: favorites}
	p.index()
	return p
}

// LoadFile reads a preference file. A missing file or empty path yields
// empty flags.
func LoadFile(path string) (*Prefs, error) {
	if path == "" {
		return New(nil, nil), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy prefs: %w", err)
	}

	var p Prefs
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse legacy prefs %s: %w", path, err)
	}
	p.index()
	return &p, nil
}
