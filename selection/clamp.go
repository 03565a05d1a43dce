package selection

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/bringup/gpuerr"
)

// Clamp bounds value to [lower, upper]. Inverted bounds are rejected with
// gpuerr.ErrInvalidBounds rather than silently picking one side.
func Clamp(value, lower, upper int) (int, error) {
	if lower > upper {
		return 0, errors.Mark(errors.Newf("clamp bounds [%d, %d]", lower, upper), gpuerr.ErrInvalidBounds)
	}

	if value < lower {
		return lower, nil
	}
	if value > upper {
		return upper, nil
	}
	return value, nil
}
