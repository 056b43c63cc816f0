package upstream

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// wsdotDatePattern matches the upstream's wrapped date literal, e.g.
// "/Date(1730925900000-0700)/". The timezone suffix is optional and is
// NOT authoritative — only the millisecond value is.
var wsdotDatePattern = regexp.MustCompile(`^/Date\((-?\d+)([+-]\d{4})?\)/$`)

// parseUpstreamDate converts the upstream's quirky wrapped-epoch-millis
// date string into an absolute time.Time. A nil/empty input is not an
// error: it represents "the upstream did not supply this timestamp",
// which callers distinguish from a parse failure.
func parseUpstreamDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	m := wsdotDatePattern.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("upstream date %q does not match expected wrapped-epoch-millis format", s)
	}

	millis, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("upstream date %q: invalid millisecond value: %w", s, err)
	}

	t := time.UnixMilli(millis).UTC()
	return &t, nil
}
