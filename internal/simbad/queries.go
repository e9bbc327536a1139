package simbad

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"specfetch/internal/services"
)

const (
	formatPosition     = "%COO(d;C)"
	formatParallax     = "%PLX"
	formatSpectralType = "%SP"
	formatIDList       = "%IDLIST"
	formatObjectType   = "%OTYPE(3)"
	formatBVFluxes     = "%FLUXLIST(B,V;F,)"

	batchDone = "simbatch done"
	noValue   = "~"
)

// Coordinates is an ICRS position in decimal degrees.
type Coordinates struct {
	RA  float64 `json:"ra"`
	Dec float64 `json:"dec"`
}

// Fluxes holds B and V band fluxes. A band SIMBAD has no value for is NaN.
type Fluxes struct {
	B float64
	V float64
}

// Position returns the ICRS coordinates of identifier.
func (c *Client) Position(ctx context.Context, identifier string) (Coordinates, error) {
	lines, err := c.query(ctx, identifier, formatPosition)
	if err != nil {
		return Coordinates{}, err
	}
	if len(lines) == 0 {
		return Coordinates{}, notFound("position", identifier)
	}
	ra, dec, err := splitPosition(lines[len(lines)-1])
	if err != nil {
		return Coordinates{}, services.Wrap(services.ErrMalformed, "simbad", "position", identifier, err)
	}
	return Coordinates{RA: ra, Dec: dec}, nil
}

// splitPosition accepts "ra dec" or the packed "ra+dec" / "ra-dec" form.
func splitPosition(value string) (float64, float64, error) {
	fields := strings.Fields(value)
	var raText, decText string
	switch {
	case len(fields) >= 2:
		raText, decText = fields[len(fields)-2], fields[len(fields)-1]
	case len(fields) == 1:
		packed := fields[0]
		i := strings.IndexAny(packed[1:], "+-")
		if i < 0 {
			return 0, 0, fmt.Errorf("position %q has no declination sign", value)
		}
		raText, decText = packed[:i+1], packed[i+1:]
	default:
		return 0, 0, errors.New("empty position")
	}
	ra, err := strconv.ParseFloat(raText, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("ra %q: %w", raText, err)
	}
	dec, err := strconv.ParseFloat(decText, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("dec %q: %w", decText, err)
	}
	return ra, dec, nil
}

// Distance returns the distance to identifier in parsecs, derived from its
// parallax in milliarcseconds.
func (c *Client) Distance(ctx context.Context, identifier string) (float64, error) {
	lines, err := c.query(ctx, identifier, formatParallax)
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(strings.Join(lines, " "))
	if len(fields) == 0 || fields[0] == noValue {
		return 0, notFound("distance", identifier)
	}
	parallax, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, services.Wrap(services.ErrMalformed, "simbad", "distance", identifier, err)
	}
	if parallax <= 0 {
		return 0, services.Wrap(services.ErrNotFound, "simbad", "distance",
			fmt.Sprintf("%q has non-positive parallax %v", identifier, parallax), nil)
	}
	return 1000.0 / parallax, nil
}

// SpectralType returns the spectral classification of identifier.
func (c *Client) SpectralType(ctx context.Context, identifier string) (string, error) {
	lines, err := c.query(ctx, identifier, formatSpectralType)
	if err != nil {
		return "", err
	}
	fields := strings.Fields(strings.Join(lines, " "))
	if len(fields) == 0 || fields[0] == noValue {
		return "", notFound("spectral type", identifier)
	}
	return fields[0], nil
}

// IDList returns the alternate identifiers SIMBAD knows for identifier.
func (c *Client) IDList(ctx context.Context, identifier string) ([]string, error) {
	lines, err := c.query(ctx, identifier, formatIDList)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, notFound("identifiers", identifier)
	}
	return lines, nil
}

// ObjectType returns the object type label of identifier.
func (c *Client) ObjectType(ctx context.Context, identifier string) (string, error) {
	lines, err := c.query(ctx, identifier, formatObjectType)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", notFound("object type", identifier)
	}
	return lines[len(lines)-1], nil
}

// BVFluxes returns the B and V fluxes of identifier. Missing bands are NaN,
// and both are NaN when SIMBAD returns no flux list at all.
func (c *Client) BVFluxes(ctx context.Context, identifier string) (Fluxes, error) {
	lines, err := c.query(ctx, identifier, formatBVFluxes)
	if err != nil {
		return Fluxes{}, err
	}
	fluxes := Fluxes{B: math.NaN(), V: math.NaN()}
	if len(lines) == 0 {
		return fluxes, nil
	}
	last := lines[len(lines)-1]
	if last == batchDone {
		return fluxes, nil
	}
	parts := strings.Split(last, ",")
	if fluxes.B, err = optionalFloat(parts, 0); err != nil {
		return Fluxes{}, services.Wrap(services.ErrMalformed, "simbad", "bv fluxes", identifier, err)
	}
	if fluxes.V, err = optionalFloat(parts, 1); err != nil {
		return Fluxes{}, services.Wrap(services.ErrMalformed, "simbad", "bv fluxes", identifier, err)
	}
	return fluxes, nil
}

func optionalFloat(parts []string, i int) (float64, error) {
	if i >= len(parts) {
		return math.NaN(), nil
	}
	value := strings.TrimSpace(parts[i])
	if value == "" || value == noValue {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(value, 64)
}

func notFound(property, identifier string) error {
	return services.Wrap(services.ErrNotFound, "simbad", property, fmt.Sprintf("no %s for %q", property, identifier), nil)
}
