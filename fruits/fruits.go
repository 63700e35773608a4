package fruits

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-notes-server/internal/utils"
	"github.com/jrsteele09/go-notes-server/pagination"
)

const FixtureSize = 1000

type Type string

const (
	Tropical Type = "tropical"
	Forest   Type = "forest"
	Citrus   Type = "citrus"
	Dry      Type = "dry"
)

var Types = []Type{Tropical, Forest, Citrus, Dry}

func (t Type) Valid() bool {
	return slices.Contains(Types, t)
}

type Fruit struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Type    Type      `json:"type"`
	Created time.Time `json:"created"`
}

func New(name string, fruitType Type, now time.Time) *Fruit {
	return &Fruit{ID: utils.UniqueID(11), Name: name, Type: fruitType, Created: now}
}

func (f *Fruit) CursorValue(field string) string {
	switch field {
	case "name":
		return f.Name
	case "created":
		return pagination.FormatTime(f.Created)
	default:
		return f.ID
	}
}

// Catalog is the process-wide fruit fixture. It is built on first use and
// never changes afterwards.
type Catalog struct {
	once   sync.Once
	now    func() time.Time
	size   int
	fruits []*Fruit
}

type CatalogOption func(*Catalog)

func WithSize(size int) CatalogOption {
	return func(c *Catalog) {
		c.size = size
	}
}

func WithNowFunc(now func() time.Time) CatalogOption {
	return func(c *Catalog) {
		c.now = now
	}
}

func NewCatalog(options ...CatalogOption) *Catalog {
	c := &Catalog{now: time.Now, size: FixtureSize}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Catalog) all() []*Fruit {
	c.once.Do(func() {
		now := c.now()
		c.fruits = make([]*Fruit, 0, c.size)
		for i := 1; i <= c.size; i++ {
			c.fruits = append(c.fruits, New(fmt.Sprintf("Orange %d", i), Citrus, now))
		}
	})
	return c.fruits
}

// Search returns the fruits whose name contains term. An empty term matches all.
func (c *Catalog) Search(term string) []*Fruit {
	all := c.all()
	if term == "" {
		return slices.Clone(all)
	}
	found := make([]*Fruit, 0)
	for _, fruit := range all {
		if strings.Contains(fruit.Name, term) {
			found = append(found, fruit)
		}
	}
	return found
}

// Get returns nil when id is unknown.
func (c *Catalog) Get(id string) *Fruit {
	for _, fruit := range c.all() {
		if fruit.ID == id {
			return fruit
		}
	}
	return nil
}
