package archive

import (
	"fmt"
	"strings"

	"specfetch/internal/services"
)

const (
	// TierSmall selects the reduced-size preview variant.
	TierSmall = "SMALL"
	// TierLarge is the tier MAST reports for full-size previews.
	TierLarge = "LARGE"

	minDatasetIDLength = 5
)

// Path returns the archive-relative storage path for a dataset, for example
// "swp/12000/gz/sp12345.gz". The tier only matters when it equals TierSmall.
func Path(datasetID, tier string) (string, error) {
	id := strings.TrimSpace(datasetID)
	if len(id) < minDatasetIDLength {
		return "", services.Wrap(services.ErrValidation, "archive", "path",
			fmt.Sprintf("dataset id %q must have a 3-character prefix and a 2-digit bucket", datasetID), nil)
	}
	for i := 0; i < len(id); i++ {
		if !isAlphaNumeric(id[i]) {
			return "", services.Wrap(services.ErrValidation, "archive", "path",
				fmt.Sprintf("dataset id %q contains invalid character %q", datasetID, id[i]), nil)
		}
	}

	prefix, suffix := strings.ToLower(id[:3]), id[3:]
	bucket := suffix[:2]
	if !isDigit(bucket[0]) || !isDigit(bucket[1]) {
		return "", services.Wrap(services.ErrValidation, "archive", "path",
			fmt.Sprintf("dataset id %q bucket %q is not numeric", datasetID, bucket), nil)
	}

	var b strings.Builder
	b.Grow(len(id) + 20)
	b.WriteString(prefix)
	b.WriteByte('/')
	b.WriteString(bucket)
	b.WriteString("000/gz/")
	b.WriteByte(prefix[0])
	b.WriteByte(prefix[2])
	b.WriteString(suffix)
	if tier == TierSmall {
		b.WriteByte('s')
	}
	b.WriteString(".gz")
	return b.String(), nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlphaNumeric(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
