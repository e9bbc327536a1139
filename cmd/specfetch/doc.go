// Package main hosts the specfetch CLI entrypoint and command graph.
//
// The Cobra-based command tree fetches IUE preview records and decodes them
// into wavelength, flux, and uncertainty tables, searches MAST for datasets,
// resolves identifiers through SIMBAD, and inspects the fetch history. It
// centralizes configuration resolution and structured logging setup so
// subcommands can focus on presentation.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
