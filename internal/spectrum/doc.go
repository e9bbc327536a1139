// Package spectrum decodes IUE preview records into wavelength, flux, and
// uncertainty arrays.
//
// A record is the decompressed text of one archive file. Two fixed layouts
// exist: low dispersion files carry an explicit wavelength column after an
// 18 line header, while high dispersion files carry only flux and noise after
// a 19 line header whose last line describes the wavelength grid as a start
// value, a step, and a maximum sample index. The layout is chosen once per
// record from the first character of line 18 ('w' marks high dispersion).
//
// Samples whose flux equals the archive sentinel (-1) are removed from all
// three arrays in one index-synchronized pass, so the returned SampleTable
// always has equal-length columns and never contains a sentinel flux. Any
// structural or numeric problem aborts the decode with a
// *MalformedRecordError naming the offending line; partial tables are never
// returned.
package spectrum
