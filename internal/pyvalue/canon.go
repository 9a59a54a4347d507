package pyvalue

import (
	"math"
	"strconv"
	"strings"

	"github.com/ivarvong/pyex-sub002/internal/pyerr"
)

// CanonicalKey maps a hashable Value to a stable string, used as the
// backing key for Dict (over ordereddict.Dict, which is string-keyed) and
// Set. Unhashable values (list, dict, set) report TypeError, matching
// CPython's "unhashable type" rejection.
func CanonicalKey(v Value) (string, error) {
	switch x := v.(type) {
	case None:
		return "n", nil
	case Bool:
		// bool hashes identically to the equivalent int, so True and 1
		// collide as dict/set keys, matching CPython.
		if bool(x) {
			return "i:1", nil
		}
		return "i:0", nil
	case Int:
		return "i:" + strconv.FormatInt(int64(x), 10), nil
	case Float:
		f := float64(x)
		if f == math.Trunc(f) && !math.IsInf(f, 0) {
			// 1 and 1.0 hash equal in CPython.
			return "i:" + strconv.FormatInt(int64(f), 10), nil
		}
		return "f:" + strconv.FormatFloat(f, 'g', -1, 64), nil
	case Str:
		return "s:" + string(x), nil
	case Tuple:
		var b strings.Builder
		b.WriteString("t(")
		for i, it := range x.Items {
			if i > 0 {
				b.WriteByte(',')
			}
			k, err := CanonicalKey(it)
			if err != nil {
				return "", err
			}
			b.WriteString(k)
		}
		b.WriteByte(')')
		return b.String(), nil
	case FrozenSet:
		keys := make([]string, 0, x.Len())
		for _, it := range x.Items() {
			k, err := CanonicalKey(it)
			if err != nil {
				return "", err
			}
			keys = append(keys, k)
		}
		return "fs(" + strings.Join(keys, ",") + ")", nil
	default:
		return "", pyerr.New(pyerr.TypeError, "unhashable type: '%s'", TypeNameOf(v))
	}
}
