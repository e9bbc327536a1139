// Package simbad resolves astronomical identifiers through the SIMBAD
// sim-script service: position, parallax distance, spectral type, alternate
// identifiers, object type, and B/V fluxes.
package simbad
