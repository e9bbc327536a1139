// Package mast queries the MAST archive search forms for IUE and HST/STIS
// observations.
//
// Searches return CSV. The first two lines hold column names and column
// types; every following line is one observation. IUE rows carry the dataset
// identifier in column 0 and the preview tier in column 7, which together
// address a record in internal/archive.
package mast
