package countup

import (
	"strconv"

	"github.com/dustin/go-humanize"
)

// Display renders a counter value. Once formatted, the abbreviated target
// is shown with a trailing "+" in place of the suffix.
func Display(value int64, suffix string, formatted bool) string {
	if formatted {
		return Abbreviate(value) + "+"
	}
	return humanize.Comma(value) + suffix
}

// Abbreviate shortens n to one decimal place with a K, M or B unit,
// dropping a trailing ".0".
func Abbreviate(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}

	units := []struct {
		size int64
		unit string
	}{
		{1_000_000_000, "B"},
		{1_000_000, "M"},
		{1_000, "K"},
	}

	out := strconv.FormatInt(n, 10)
	for _, u := range units {
		if n >= u.size {
			whole := n / u.size
			tenth := (n % u.size) * 10 / u.size
			out = strconv.FormatInt(whole, 10)
			if tenth > 0 {
				out += "." + strconv.FormatInt(tenth, 10)
			}
			out += u.unit
			break
		}
	}

	if neg {
		return "-" + out
	}
	return out
}
