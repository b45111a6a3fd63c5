package media

import "context"

// StaticCatalog returns a fixed catalog link.
type StaticCatalog struct {
	URL string
}

func (c StaticCatalog) Catalog(context.Context) (string, error) {
	if c.URL == "" {
		return "", ErrNotConfigured
	}
	return c.URL, nil
}

// StaticLocation returns a fixed map link and address.
type StaticLocation struct {
	MapLink string
	Address string
}

func (l StaticLocation) Location(context.Context) (Location, error) {
	if l.MapLink == "" && l.Address == "" {
		return Location{}, ErrNotConfigured
	}
	return Location{URL: l.MapLink, Address: l.Address}, nil
}
