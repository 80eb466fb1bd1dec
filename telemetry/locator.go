package telemetry

import (
	"context"

	"i4.energy/across/tata/geo"
)

// Locator produces a location fix, reporting false when none was obtained.
type Locator interface {
	Locate(ctx context.Context) (geo.Location, bool)
}

// LocatorFunc adapts a function to a Locator.
type LocatorFunc func(ctx context.Context) (geo.Location, bool)

func (f LocatorFunc) Locate(ctx context.Context) (geo.Location, bool) {
	return f(ctx)
}

type chain []Locator

// Chain tries each locator in turn and returns the first fix.
func Chain(locators ...Locator) Locator {
	return chain(locators)
}

func (c chain) Locate(ctx context.Context) (geo.Location, bool) {
	for _, l := range c {
		if loc, ok := l.Locate(ctx); ok {
			return loc, true
		}
	}
	return geo.Location{}, false
}
