package mast

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"specfetch/internal/services"
)

const (
	stisColumns = "sci_data_set_name,sci_targname,sci_ra,sci_dec,sci_start_time,sci_actual_duration,sci_spec_1234,sci_central_wavelength,ang_sep"

	defaultSTISConfig  = "STIS/FUV-MAMA"
	defaultSTISGrating = "E140H"
	defaultObsType     = "S"
	defaultSTISStatus  = "%"
)

// STISSearchOptions selects HST/STIS echelle observations. ObsType is S for
// science, C for calibration, or % for both. Status is Public, Proprietary, or
// % for both.
type STISSearchOptions struct {
	Target     string
	RA         string
	Dec        string
	Radius     string
	Config     string
	Grating    string
	ObsType    string
	Status     string
	MaxRecords int
}

// STISDataset is one observation returned by a STIS search.
type STISDataset struct {
	Dataset   string  `json:"dataset"`
	Target    string  `json:"target"`
	RA        float64 `json:"ra"`
	Dec       float64 `json:"dec"`
	Date      string  `json:"date"`
	StartTime string  `json:"start_time"`
	ExpTime   float64 `json:"exptime"`
	Grating   string  `json:"grating"`
	CenWave   float64 `json:"central_wavelength"`

	// Separation is the angular distance from the search position in
	// arcminutes; nil when the search was not positional.
	Separation *float64 `json:"angular_separation,omitempty"`
}

func (d STISDataset) String() string {
	return d.Dataset + "|" + d.Target
}

// STISConfig returns the detector configuration implied by a grating, or
// fallback when the grating does not pin one.
func STISConfig(grating, fallback string) string {
	switch strings.ToUpper(strings.TrimSpace(grating)) {
	case "E140H", "E140M":
		return "STIS/FUV-MAMA"
	case "E230H", "E230M":
		return "STIS/NUV-MAMA"
	default:
		return fallback
	}
}

// STISCriteria renders the search criteria for a STIS query.
func (c *Client) STISCriteria(opts STISSearchOptions) (string, error) {
	target := strings.TrimSpace(opts.Target)
	ra, dec := strings.TrimSpace(opts.RA), strings.TrimSpace(opts.Dec)
	if (ra == "") != (dec == "") {
		return "", services.Wrap(services.ErrValidation, "mast", "stis search", "RA and Dec must be given together", nil)
	}
	radius, err := radiusOrDefault(opts.Radius)
	if err != nil {
		return "", err
	}

	grating := strings.TrimSpace(opts.Grating)
	if grating == "" {
		grating = defaultSTISGrating
	}
	config := strings.TrimSpace(opts.Config)
	if config == "" {
		config = defaultSTISConfig
	}
	config = STISConfig(grating, config)
	obsType := valueOr(opts.ObsType, defaultObsType)
	status := valueOr(opts.Status, defaultSTISStatus)
	limit := opts.MaxRecords
	if limit <= 0 {
		limit = c.maxRecords
	}

	var b strings.Builder
	b.WriteString("selectedColumnsCSV=" + stisColumns + "&")
	b.WriteString("sci_instrume=STIS&sci_instrument_config=" + config)
	b.WriteString("&sci_spec_1234=" + grating)
	b.WriteString("&sci_status=" + status)
	b.WriteString("&sci_aec=" + obsType)
	b.WriteString("&max_records=" + strconv.Itoa(limit))
	switch {
	case target != "":
		b.WriteString("&target=" + target)
	case ra != "":
		if err := validateCoordinates(ra, dec); err != nil {
			return "", err
		}
		b.WriteString("&ra=" + ra + "&dec=" + dec)
	}
	if target != "" || ra != "" {
		b.WriteString("&radius=" + radius)
	}
	return b.String(), nil
}

// STISSearch lists STIS observations matching opts. A search with no matches
// returns an empty slice.
func (c *Client) STISSearch(ctx context.Context, opts STISSearchOptions) ([]STISDataset, error) {
	criteria, err := c.STISCriteria(opts)
	if err != nil {
		return nil, err
	}
	text, err := c.query(ctx, "hst", criteria)
	if err != nil {
		return nil, err
	}
	if text == noRowsFound {
		return []STISDataset{}, nil
	}
	rows, err := parseRows(text)
	if err != nil {
		return nil, err
	}
	datasets := make([]STISDataset, 0, len(rows))
	for i, row := range rows {
		dataset, err := parseSTISDataset(row)
		if err != nil {
			return nil, services.Wrap(services.ErrMalformed, "mast", "parse stis row", fmt.Sprintf("row %d", i+1), err)
		}
		datasets = append(datasets, dataset)
	}
	return datasets, nil
}

func parseSTISDataset(fields []string) (STISDataset, error) {
	if len(fields) < 8 {
		return STISDataset{}, fmt.Errorf("expected at least 8 columns, found %d", len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	dataset := STISDataset{
		Dataset: fields[0],
		Target:  fields[1],
		Grating: fields[6],
	}
	var err error
	if dataset.RA, err = parseFloatField("ra", fields[2]); err != nil {
		return STISDataset{}, err
	}
	if dataset.Dec, err = parseFloatField("dec", fields[3]); err != nil {
		return STISDataset{}, err
	}
	date, start, ok := strings.Cut(fields[4], " ")
	if !ok {
		return STISDataset{}, fmt.Errorf("start time %q has no date part", fields[4])
	}
	dataset.Date, dataset.StartTime = date, strings.TrimSpace(start)
	if dataset.ExpTime, err = parseFloatField("exposure time", fields[5]); err != nil {
		return STISDataset{}, err
	}
	if dataset.CenWave, err = parseFloatField("central wavelength", fields[7]); err != nil {
		return STISDataset{}, err
	}
	if len(fields) > 8 && fields[8] != "" {
		separation, err := parseFloatField("angular separation", fields[8])
		if err != nil {
			return STISDataset{}, err
		}
		dataset.Separation = &separation
	}
	return dataset, nil
}

func parseFloatField(name, value string) (float64, error) {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", name, value, err)
	}
	return parsed, nil
}

func valueOr(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
