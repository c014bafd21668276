package domain

import (
	"fmt"
	"strings"
)

// MissingSourceError reports a configured year whose source table could
// not be read: the file is absent, unreadable, or malformed. The load
// aborts rather than silently producing a dataset with a year-shaped hole.
type MissingSourceError struct {
	Year int
	Path string
	Err  error
}

func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("source for year %d (%s): %v", e.Year, e.Path, e.Err)
}

func (e *MissingSourceError) Unwrap() error {
	return e.Err
}

// DateParseError reports a Month cell that is not a recognized
// three-letter abbreviation. Row is the 1-based data row within the
// year's table, header excluded.
type DateParseError struct {
	Month string
	Year  int
	Row   int
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("year %d row %d: unrecognized month %q", e.Year, e.Row, e.Month)
}

// InvalidCategoryError reports a category name outside the CPCB scale.
// Valid carries the accepted names so callers can surface them.
type InvalidCategoryError struct {
	Name  string
	Valid []string
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("unknown AQI category %q (valid: %s)", e.Name, strings.Join(e.Valid, ", "))
}
