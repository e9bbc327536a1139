package simbad

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"specfetch/internal/services"
)

// DefaultMaxObjects caps criteria searches when SearchOptions leaves it unset.
const DefaultMaxObjects = 100

const (
	searchPath = "/sim-sam?"

	modeList  = "LIST"
	modeCount = "COUNT"

	// searchDisplay selects ASCII output with HD catalog names, decimal degree
	// coordinates, and no bibliography or notes.
	searchDisplay = "output.format=ASCII&list.idopt=CATLIST&list.idcat=HD" +
		"&list.bibsel=off&list.notesel=off&obj.bibsel=off&obj.notesel=off" +
		"&coodisp1=[d][2]"

	noObjectFound = "No astronomical object found"
)

// criteriaEscaper differs from scriptEscaper: spaces become '+' and the
// criteria separators ',' and '&' are escaped.
var criteriaEscaper = strings.NewReplacer(
	" ", "+",
	"%", "%25",
	"#", "%23",
	"(", "%28",
	")", "%29",
	"|", "%7c",
	"+", "%2b",
	",", "%2c",
	"&", "%26",
)

// EncodeCriteria percent-encodes a criteria expression for the sim-sam
// endpoint.
func EncodeCriteria(s string) string {
	return criteriaEscaper.Replace(s)
}

// SearchOptions selects the columns a criteria search returns.
type SearchOptions struct {
	// MaxObjects caps the result list; zero or less selects DefaultMaxObjects.
	MaxObjects    int
	OmitFluxes    bool
	ProperMotions bool
	Parallax      bool
}

// Magnitudes holds UBVIR magnitudes. A band without a value is NaN.
type Magnitudes struct {
	U, B, V, I, R float64
}

// Object is one row of a criteria search. Numeric fields SIMBAD leaves blank
// ('~') or that were not requested are NaN.
type Object struct {
	Identifier   string
	ObjectType   string
	RA           float64
	Dec          float64
	PMRA         float64
	PMDec        float64
	Parallax     float64
	Magnitudes   Magnitudes
	SpectralType string
}

func newObject() Object {
	nan := math.NaN()
	return Object{
		RA: nan, Dec: nan, PMRA: nan, PMDec: nan, Parallax: nan,
		Magnitudes: Magnitudes{U: nan, B: nan, V: nan, I: nan, R: nan},
	}
}

// RadiusUnit is the unit suffix of a cone radius.
type RadiusUnit string

const (
	Degrees    RadiusUnit = "d"
	Arcminutes RadiusUnit = "m"
	Arcseconds RadiusUnit = "s"
)

// Cone describes a circular region search. Frame defaults to "icrs" and Unit
// to Arcminutes.
type Cone struct {
	RA     float64
	Dec    float64
	Radius float64
	Unit   RadiusUnit
	Frame  string
}

// Criteria renders the cone as a SIMBAD region expression, for example
// "region(circle,icrs,152.09 +11.97,10m)". Declination always carries a sign.
func (c Cone) Criteria() (string, error) {
	unit := c.Unit
	if unit == "" {
		unit = Arcminutes
	}
	switch unit {
	case Degrees, Arcminutes, Arcseconds:
	default:
		return "", services.Wrap(services.ErrValidation, "simbad", "cone",
			fmt.Sprintf("radius unit %q must be one of d, m, s", string(unit)), nil)
	}
	if !(c.Radius > 0) || math.IsInf(c.Radius, 0) {
		return "", services.Wrap(services.ErrValidation, "simbad", "cone",
			fmt.Sprintf("radius %v must be positive", c.Radius), nil)
	}
	if math.IsNaN(c.RA) || math.IsNaN(c.Dec) || c.Dec < -90 || c.Dec > 90 {
		return "", services.Wrap(services.ErrValidation, "simbad", "cone",
			fmt.Sprintf("position %v %v is out of range", c.RA, c.Dec), nil)
	}
	frame := strings.ToLower(strings.TrimSpace(c.Frame))
	if frame == "" {
		frame = "icrs"
	}

	dec := strconv.FormatFloat(c.Dec, 'f', -1, 64)
	if c.Dec >= 0 {
		dec = "+" + dec
	}
	return fmt.Sprintf("region(circle,%s,%s %s,%s%s)",
		frame, strconv.FormatFloat(c.RA, 'f', -1, 64), dec,
		strconv.FormatFloat(c.Radius, 'f', -1, 64), unit), nil
}

// SearchURL builds the sim-sam request for criteria. count selects COUNT
// output instead of an object list.
func (c *Client) SearchURL(criteria string, count bool, opts SearchOptions) string {
	mode := modeList
	if count {
		mode = modeCount
	}
	limit := opts.MaxObjects
	if limit <= 0 {
		limit = DefaultMaxObjects
	}

	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString(searchPath)
	b.WriteString(searchDisplay)
	b.WriteString("&Criteria=")
	b.WriteString(EncodeCriteria(criteria))
	b.WriteString("&OutputMode=")
	b.WriteString(mode)
	b.WriteString("&maxObject=")
	b.WriteString(strconv.Itoa(limit))
	if opts.OmitFluxes {
		b.WriteString("&list.fluxsel=off")
	} else {
		b.WriteString("&list.fluxsel=on&U=off&R=off&B=on&V=on")
	}
	b.WriteString("&list.pmsel=")
	b.WriteString(onOff(opts.ProperMotions))
	b.WriteString("&list.plxsel=")
	b.WriteString(onOff(opts.Parallax))
	return b.String()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// CritSearch lists the objects matching a SIMBAD criteria expression such as
// "Vmag < 3 & sptype = 'B*'". No match yields an empty slice.
func (c *Client) CritSearch(ctx context.Context, criteria string, opts SearchOptions) ([]Object, error) {
	text, err := c.search(ctx, criteria, false, opts)
	if err != nil {
		return nil, err
	}
	objects, err := parseObjectList(text)
	if err != nil {
		return nil, services.Wrap(services.ErrMalformed, "simbad", "criteria search", criteria, err)
	}
	return objects, nil
}

// CritCount returns how many objects match criteria without listing them.
func (c *Client) CritCount(ctx context.Context, criteria string) (int, error) {
	text, err := c.search(ctx, criteria, true, SearchOptions{})
	if err != nil {
		return 0, err
	}
	if strings.Contains(text, noObjectFound) {
		return 0, nil
	}
	n, err := parseCount(text)
	if err != nil {
		return 0, services.Wrap(services.ErrMalformed, "simbad", "criteria count", criteria, err)
	}
	return n, nil
}

// parseCount reads "Number of objects : N", falling back to the first
// "= N" in the response.
func parseCount(text string) (int, error) {
	rest := ""
	for _, line := range strings.Split(text, "\n") {
		if after, ok := strings.CutPrefix(strings.TrimSpace(line), "Number of objects"); ok {
			rest = strings.TrimLeft(after, " :=")
			break
		}
	}
	if rest == "" {
		_, after, ok := strings.Cut(text, "=")
		if !ok {
			return 0, fmt.Errorf("no count in response")
		}
		rest = after
	}
	return strconv.Atoi(firstField(rest))
}

// CoordSearch lists the objects inside cone.
func (c *Client) CoordSearch(ctx context.Context, cone Cone, opts SearchOptions) ([]Object, error) {
	criteria, err := cone.Criteria()
	if err != nil {
		return nil, err
	}
	return c.CritSearch(ctx, criteria, opts)
}

func (c *Client) search(ctx context.Context, criteria string, count bool, opts SearchOptions) (string, error) {
	criteria = strings.TrimSpace(criteria)
	if criteria == "" {
		return "", services.Wrap(services.ErrValidation, "simbad", "criteria search", "criteria must not be empty", nil)
	}
	text, err := c.get(ctx, c.SearchURL(criteria, count, opts), "criteria search", criteria)
	if err != nil {
		return "", err
	}
	if strings.Contains(text, "::error") && !strings.Contains(text, noObjectFound) {
		return "", services.Wrap(services.ErrValidation, "simbad", "criteria search",
			fmt.Sprintf("SIMBAD rejected %q: %s", criteria, lastLine(text)), nil)
	}
	return text, nil
}

// parseObjectList reads either the tabular multi-object listing ("Number of
// objects : N" followed by a '|' header and numbered rows) or the single
// object page SIMBAD returns when exactly one object matches.
func parseObjectList(text string) ([]Object, error) {
	lines := strings.Split(text, "\n")
	header := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "Number of objects") {
			header = i
			break
		}
	}
	if header < 0 {
		return parseSingleObject(lines)
	}

	var columns []string
	objects := []Object{}
	for _, line := range lines[header+1:] {
		line = strings.TrimRight(line, " \r")
		if columns == nil {
			if strings.HasPrefix(line, "#|") {
				columns = splitRow(line)
			}
			continue
		}
		if line == "" || line[0] < '0' || line[0] > '9' {
			continue
		}
		obj, err := parseRow(columns, splitRow(line))
		if err != nil {
			return nil, fmt.Errorf("row %q: %w", line, err)
		}
		objects = append(objects, obj)
	}
	if columns == nil {
		return nil, fmt.Errorf("object list has no column header")
	}
	return objects, nil
}

func splitRow(line string) []string {
	cells := strings.Split(line, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// parseRow maps one listing row through its header. Identifier, type, and
// coordinates fall back to columns 1 to 3 when the header names differ.
func parseRow(columns, cells []string) (Object, error) {
	obj := newObject()
	cell := func(name string, fallback int) string {
		i := columnIndex(columns, name)
		if i < 0 {
			i = fallback
		}
		if i < 0 || i >= len(cells) {
			return ""
		}
		return cells[i]
	}

	obj.Identifier = strings.Join(strings.Fields(cell("identifier", 1)), " ")
	obj.ObjectType = cell("typ", 2)
	if obj.Identifier == "" {
		return Object{}, fmt.Errorf("missing identifier")
	}

	if coords := cell("coord1", 3); coords != "" && coords != noValue {
		ra, dec, err := splitPosition(coords)
		if err != nil {
			return Object{}, err
		}
		obj.RA, obj.Dec = ra, dec
	}

	if pm := strings.Fields(cell("pm", -1)); len(pm) >= 2 {
		var err error
		if obj.PMRA, err = value(pm[0]); err != nil {
			return Object{}, fmt.Errorf("pm: %w", err)
		}
		if obj.PMDec, err = value(pm[1]); err != nil {
			return Object{}, fmt.Errorf("pm: %w", err)
		}
	}

	var err error
	if obj.Parallax, err = value(firstField(cell("plx", -1))); err != nil {
		return Object{}, fmt.Errorf("plx: %w", err)
	}
	bands := []struct {
		column string
		dst    *float64
	}{
		{"Mag U", &obj.Magnitudes.U},
		{"Mag B", &obj.Magnitudes.B},
		{"Mag V", &obj.Magnitudes.V},
		{"Mag I", &obj.Magnitudes.I},
		{"Mag R", &obj.Magnitudes.R},
	}
	for _, band := range bands {
		if *band.dst, err = value(firstField(cell(band.column, -1))); err != nil {
			return Object{}, fmt.Errorf("%s: %w", band.column, err)
		}
	}

	obj.SpectralType = cell("spec", len(cells)-1)
	if obj.SpectralType == noValue {
		obj.SpectralType = ""
	}
	return obj, nil
}

// columnIndex matches a header cell by prefix, so "coord1" finds
// "coord1 (ICRS,J2000/2000)".
func columnIndex(columns []string, name string) int {
	for i, col := range columns {
		if strings.HasPrefix(col, name) {
			return i
		}
	}
	return -1
}

// value parses an optional number; "" and "~" are NaN.
func value(text string) (float64, error) {
	if text == "" || text == noValue {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(text, 64)
}

func firstField(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// parseSingleObject reads an object page: "Object HD  87901  ---  PM*  ---
// OID=..." followed by labelled blocks such as "Coordinates(ICRS,...): ra dec".
func parseSingleObject(lines []string) ([]Object, error) {
	objects := []Object{}
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if strings.Contains(line, noObjectFound) {
			return objects, nil
		}
		rest, ok := strings.CutPrefix(line, "Object ")
		if !ok {
			continue
		}
		parts := strings.Split(rest, "---")
		obj := newObject()
		obj.Identifier = strings.Join(strings.Fields(parts[0]), " ")
		if len(parts) > 1 {
			obj.ObjectType = strings.TrimSpace(parts[1])
		}
		for _, detail := range lines[i+1:] {
			coords, ok := strings.CutPrefix(strings.TrimSpace(detail), "Coordinates(ICRS")
			if !ok {
				continue
			}
			if _, after, found := strings.Cut(coords, ":"); found {
				if ra, dec, err := splitPosition(firstTwoFields(after)); err == nil {
					obj.RA, obj.Dec = ra, dec
				}
			}
			break
		}
		return append(objects, obj), nil
	}
	return objects, nil
}

func firstTwoFields(text string) string {
	fields := strings.Fields(text)
	if len(fields) > 2 {
		fields = fields[:2]
	}
	return strings.Join(fields, " ")
}

func lastLine(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		return strings.TrimSpace(text[i+1:])
	}
	return text
}
