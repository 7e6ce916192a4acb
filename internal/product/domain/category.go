package domain

import (
	"fmt"

	"github.com/ridloal/toy-store-backend/internal/platform/apperr"
)

// Category is the closed set of product groupings. Each one is stored in its
// own table.
type Category int

const (
	CategoryNovedades Category = iota + 1
	CategoryPuzzles
	CategoryCreatividad
	CategoryJuegosMesa
	CategoryMadera
)

var ErrUnknownCategory = apperr.New(apperr.ErrNotFound, "invalid category")

// AllCategories lists every variant in declaration order.
func AllCategories() []Category {
	return []Category{CategoryNovedades, CategoryPuzzles, CategoryCreatividad, CategoryJuegosMesa, CategoryMadera}
}

func ParseCategory(slug string) (Category, error) {
	for _, c := range AllCategories() {
		if c.String() == slug {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, slug)
}

func (c Category) Valid() bool {
	return c >= CategoryNovedades && c <= CategoryMadera
}

// String returns the slug used in URLs and request bodies.
func (c Category) String() string {
	switch c {
	case CategoryNovedades:
		return "novedades"
	case CategoryPuzzles:
		return "puzzles"
	case CategoryCreatividad:
		return "juegos-creatividad"
	case CategoryJuegosMesa:
		return "juegos-mesa"
	case CategoryMadera:
		return "juegos-madera"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Table returns the name of the backing table. It panics on an invalid
// variant; callers parse categories before reaching storage.
func (c Category) Table() string {
	switch c {
	case CategoryNovedades:
		return "products_novedades"
	case CategoryPuzzles:
		return "products_puzzles"
	case CategoryCreatividad:
		return "products_creatividad"
	case CategoryJuegosMesa:
		return "products_juegos_mesa"
	case CategoryMadera:
		return "products_madera"
	default:
		panic(fmt.Sprintf("no table for %s", c))
	}
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
