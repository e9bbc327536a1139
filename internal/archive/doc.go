// Package archive retrieves compressed IUE preview records from the MAST
// preview archive.
//
// A dataset identifier such as SWP12345 maps to a fixed storage path: the
// three-character camera prefix selects a directory, the first two digits of
// the image number select a thousand-image bucket, and the file name is built
// from the first and third prefix characters followed by the image number.
// SMALL tier previews carry an extra "s" suffix.
//
// Client.Fetch performs exactly one GET per call, decodes the gzip body, and
// returns the payload as ordered text lines with trailing whitespace removed.
// Failures are reported as *TransportError or *DecompressionError, both of
// which match the markers in internal/services through errors.Is.
package archive
