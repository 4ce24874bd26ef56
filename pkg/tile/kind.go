package tile

import (
	"strings"

	"github.com/matzehuels/vitalsgrid/pkg/errors"
)

// Kind identifies the chart drawn by a tile.
type Kind string

// Supported chart kinds.
const (
	KindBar     Kind = "bar"
	KindLine    Kind = "line"
	KindArea    Kind = "area"
	KindScatter Kind = "scatter"
)

// Kinds lists every supported kind in display order.
var Kinds = []Kind{KindBar, KindLine, KindArea, KindScatter}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	switch k {
	case KindBar, KindLine, KindArea, KindScatter:
		return true
	}
	return false
}

// IsSeries reports whether k plots one or more series over a shared x axis.
func (k Kind) IsSeries() bool { return k == KindLine || k == KindArea }

// ParseKind parses a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", errors.New(errors.ErrCodeInvalidTile, "invalid chart kind: %q (must be one of: bar, line, area, scatter)", s)
	}
	return k, nil
}
