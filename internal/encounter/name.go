package encounter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/banshee-data/beambeam/internal/bberr"
)

// ipPrefix is stripped from IP names to obtain the IP number.
const ipPrefix = "ip"

// IPNumber strips the "ip" prefix from an IP name ("ip5" -> "5").
func IPNumber(ipName string) string {
	return strings.ReplaceAll(ipName, ipPrefix, "")
}

// SideTag returns ".l", ".c" or ".r" for negative, zero and positive
// identifiers.
func SideTag(identifier int) string {
	switch {
	case identifier > 0:
		return ".r"
	case identifier < 0:
		return ".l"
	default:
		return ".c"
	}
}

// ElementName builds the unique lens name, e.g. "bb_lr.r5b1_03".
func ElementName(kind Kind, ipNumber, beam string, identifier int) string {
	abs := identifier
	if abs < 0 {
		abs = -abs
	}
	return fmt.Sprintf("%s%s%s%s_%02d", kind, SideTag(identifier), ipNumber, beam, abs)
}

var elementNameRe = regexp.MustCompile(`^(bb_ho|bb_lr)\.([lcr])(\w+?)(b\d+)_(\d+)$`)

// ParsedName holds the fields recovered from an element name.
type ParsedName struct {
	Kind       Kind
	IPNumber   string
	Beam       string
	Identifier int
}

// ParseElementName inverts ElementName for beams named "b<digits>".
// The identifier sign is recovered from the side tag.
func ParseElementName(name string) (ParsedName, error) {
	m := elementNameRe.FindStringSubmatch(name)
	if m == nil {
		return ParsedName{}, fmt.Errorf("%w: malformed element name %q", bberr.ErrInvalidParams, name)
	}
	abs, err := strconv.Atoi(m[5])
	if err != nil {
		return ParsedName{}, fmt.Errorf("%w: element name %q: %v", bberr.ErrInvalidParams, name, err)
	}
	id := abs
	switch m[2] {
	case "l":
		if abs == 0 {
			return ParsedName{}, fmt.Errorf("%w: side tag with zero identifier in %q", bberr.ErrInvalidParams, name)
		}
		id = -abs
	case "c":
		if abs != 0 {
			return ParsedName{}, fmt.Errorf("%w: centre tag with identifier %d in %q", bberr.ErrInvalidParams, abs, name)
		}
	case "r":
		if abs == 0 {
			return ParsedName{}, fmt.Errorf("%w: side tag with zero identifier in %q", bberr.ErrInvalidParams, name)
		}
	}
	return ParsedName{Kind: Kind(m[1]), IPNumber: m[3], Beam: m[4], Identifier: id}, nil
}
