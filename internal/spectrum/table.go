package spectrum

import "math"

// Sentinel is the flux value the archive uses for samples without a valid
// measurement.
const Sentinel = -1.0

// Sample is one (wavelength, flux, uncertainty) triple.
type Sample struct {
	Wavelength  float64 `json:"wavelength"`
	Flux        float64 `json:"flux"`
	Uncertainty float64 `json:"uncertainty"`
}

// SampleTable holds the decoded columns of one record. The three slices always
// have the same length and are ordered as the samples appear in the source.
type SampleTable struct {
	Layout      Layout    `json:"layout"`
	Header      []string  `json:"header,omitempty"`
	Wavelength  []float64 `json:"wavelength"`
	Flux        []float64 `json:"flux"`
	Uncertainty []float64 `json:"uncertainty"`
}

// Len returns the number of samples.
func (t SampleTable) Len() int {
	return len(t.Flux)
}

// At returns the sample at index i.
func (t SampleTable) At(i int) Sample {
	return Sample{Wavelength: t.Wavelength[i], Flux: t.Flux[i], Uncertainty: t.Uncertainty[i]}
}

// Samples returns the table as a slice of triples.
func (t SampleTable) Samples() []Sample {
	out := make([]Sample, t.Len())
	for i := range out {
		out[i] = t.At(i)
	}
	return out
}

// Summary describes a table for display.
type Summary struct {
	Layout        Layout  `json:"layout"`
	Samples       int     `json:"samples"`
	WavelengthMin float64 `json:"wavelength_min"`
	WavelengthMax float64 `json:"wavelength_max"`
	FluxMin       float64 `json:"flux_min"`
	FluxMax       float64 `json:"flux_max"`
	FluxMean      float64 `json:"flux_mean"`
}

// Summarize computes ranges and the mean flux. An empty table yields zero
// values.
func (t SampleTable) Summarize() Summary {
	s := Summary{Layout: t.Layout, Samples: t.Len()}
	if s.Samples == 0 {
		return s
	}
	s.WavelengthMin, s.WavelengthMax = math.Inf(1), math.Inf(-1)
	s.FluxMin, s.FluxMax = math.Inf(1), math.Inf(-1)
	var sum float64
	for i := 0; i < s.Samples; i++ {
		w, f := t.Wavelength[i], t.Flux[i]
		s.WavelengthMin = math.Min(s.WavelengthMin, w)
		s.WavelengthMax = math.Max(s.WavelengthMax, w)
		s.FluxMin = math.Min(s.FluxMin, f)
		s.FluxMax = math.Max(s.FluxMax, f)
		sum += f
	}
	s.FluxMean = sum / float64(s.Samples)
	return s
}

// compact removes every sample whose flux equals Sentinel. The retained
// indices are collected once and all three columns are projected through the
// same list so they cannot drift apart.
func compact(t *SampleTable) {
	keep := make([]int, 0, len(t.Flux))
	for i, f := range t.Flux {
		if f != Sentinel {
			keep = append(keep, i)
		}
	}
	t.Wavelength = project(t.Wavelength, keep)
	t.Flux = project(t.Flux, keep)
	t.Uncertainty = project(t.Uncertainty, keep)
}

func project(values []float64, keep []int) []float64 {
	out := make([]float64, len(keep))
	for j, i := range keep {
		out[j] = values[i]
	}
	return out
}
