// Copyright ZhiyuanPlus Analytics, 2026. All rights reserved.

package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Source portals publish dates in several conventions; the numeric forms
// below cover every format the retrieval collaborators have produced.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"2006-01",
	"2006/01",
	"2006",
}

var cjkDateRe = regexp.MustCompile(`^(\d{4})年(?:(\d{1,2})月)?(?:(\d{1,2})日)?$`)

// ParseDate resolves a source date string to a calendar date. Year-only
// strings resolve to January 1st and year-month strings to the 1st of the
// month. Unparsable input yields the zero time; callers retain the record
// and treat the date as unknown.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	if m := cjkDateRe.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, day := 1, 1
		if m[2] != "" {
			month, _ = strconv.Atoi(m[2])
		}
		if m[3] != "" {
			day, _ = strconv.Atoi(m[3])
		}
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return time.Time{}
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	}

	// Zero-pad single-digit month/day so the numeric layouts apply.
	s = padDateParts(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// padDateParts rewrites "2024/1/2" style dates as "2024/01/02".
func padDateParts(s string) string {
	for _, sep := range []string{"-", "/", "."} {
		parts := strings.Split(s, sep)
		if len(parts) < 2 || len(parts) > 3 || len(parts[0]) != 4 {
			continue
		}
		for i := 1; i < len(parts); i++ {
			if len(parts[i]) == 1 {
				parts[i] = "0" + parts[i]
			}
		}
		return strings.Join(parts, sep)
	}
	return s
}
