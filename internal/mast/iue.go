package mast

import (
	"context"
	"strconv"
	"strings"

	"specfetch/internal/services"
)

const (
	defaultRadius    = "3.0"
	defaultIUECamera = "3"

	iueDatasetColumn = 0
	iueTierColumn    = 7
)

// IUESearchOptions selects IUE observations by target name or by position.
// Radius is in arcminutes. Camera defaults to 3, the short-wavelength prime
// camera.
type IUESearchOptions struct {
	Target     string
	RA         string
	Dec        string
	Radius     string
	Camera     string
	MaxRecords int
}

// IUERow is one observation returned by an IUE search.
type IUERow struct {
	Fields []string
}

// DatasetID returns the observation identifier, for example "SWP12345".
func (r IUERow) DatasetID() string {
	return r.field(iueDatasetColumn)
}

// Tier returns the preview size reported for the observation.
func (r IUERow) Tier() string {
	return r.field(iueTierColumn)
}

func (r IUERow) field(i int) string {
	if i >= len(r.Fields) {
		return ""
	}
	return strings.TrimSpace(r.Fields[i])
}

// IUECriteria renders the search criteria in the order the form expects.
func (c *Client) IUECriteria(opts IUESearchOptions) (string, error) {
	target := strings.TrimSpace(opts.Target)
	ra, dec := strings.TrimSpace(opts.RA), strings.TrimSpace(opts.Dec)
	if target == "" && (ra == "" || dec == "") {
		return "", services.Wrap(services.ErrValidation, "mast", "iue search", "need a target or both RA and Dec", nil)
	}
	radius, err := radiusOrDefault(opts.Radius)
	if err != nil {
		return "", err
	}
	camera := strings.TrimSpace(opts.Camera)
	if camera == "" {
		camera = defaultIUECamera
	}
	limit := opts.MaxRecords
	if limit <= 0 {
		limit = c.maxRecords
	}

	var b strings.Builder
	b.WriteString("iue_cam_no=" + camera + "&")
	b.WriteString("max_records=" + strconv.Itoa(limit) + "&")
	if target != "" {
		b.WriteString("target=" + target)
	} else {
		if err := validateCoordinates(ra, dec); err != nil {
			return "", err
		}
		b.WriteString("ra=" + ra + "&dec=" + dec)
	}
	b.WriteString("&radius=" + radius)
	return b.String(), nil
}

// IUESearch lists IUE observations matching opts.
func (c *Client) IUESearch(ctx context.Context, opts IUESearchOptions) ([]IUERow, error) {
	criteria, err := c.IUECriteria(opts)
	if err != nil {
		return nil, err
	}
	text, err := c.query(ctx, "iue", criteria)
	if err != nil {
		return nil, err
	}
	if text == noRowsFound {
		return []IUERow{}, nil
	}
	records, err := parseRows(text)
	if err != nil {
		return nil, err
	}
	rows := make([]IUERow, 0, len(records))
	for _, fields := range records {
		rows = append(rows, IUERow{Fields: fields})
	}
	return rows, nil
}

func radiusOrDefault(value string) (string, error) {
	radius := strings.TrimSpace(value)
	if radius == "" {
		return defaultRadius, nil
	}
	parsed, err := strconv.ParseFloat(radius, 64)
	if err != nil || parsed <= 0 {
		return "", services.Wrap(services.ErrValidation, "mast", "search", "radius must be a positive number of arcminutes, got "+strconv.Quote(value), nil)
	}
	return radius, nil
}

func validateCoordinates(ra, dec string) error {
	if _, err := strconv.ParseFloat(ra, 64); err != nil {
		return services.Wrap(services.ErrValidation, "mast", "search", "ra must be decimal degrees, got "+strconv.Quote(ra), nil)
	}
	if _, err := strconv.ParseFloat(dec, 64); err != nil {
		return services.Wrap(services.ErrValidation, "mast", "search", "dec must be decimal degrees, got "+strconv.Quote(dec), nil)
	}
	return nil
}
