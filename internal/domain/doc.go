// Package domain models monthly Air Quality Index (AQI) observations for
// city monitoring locations.
//
// # Data Source
//
// Readings come from the Central Pollution Control Board (CPCB) monthly
// bulletins for Hyderabad, redistributed as one tabular file per calendar
// year. Each yearly table is wide-format: a "Month" column holding
// three-letter month abbreviations ("Jan" through "Dec", one row per
// calendar month) and one numeric column per monitoring location. The set
// of location columns is not stable across years: stations are added and
// retired, so a location present in one year's table may be absent from
// another's.
//
// # Month Conventions
//
//	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
//	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"
//
// Matching is case-insensitive ("JAN" and "jan" both parse) because the
// bulletins are inconsistent about casing; the source spelling is kept on
// the Observation. Anything else ("Jann", "January", "1") is rejected.
// The observation date is derived as the first of the month, UTC: a row
// tagged Year=2016 with Month="Jan" observes 2016-01-01.
//
// # Missing Values
//
// An empty cell means the bulletin published no value for that location
// and month. Absent readings are carried through the canonical dataset
// with a nil AQI rather than dropped, so completeness checks (12
// observations per location per year) still hold. A cell that is present
// but not numeric is a malformed source file, not a missing value, and
// fails the load.
//
// # AQI Category Bands
//
// Severity follows the CPCB National AQI scale. Bounds are inclusive on
// both ends where finite; published AQI values are integers, so the bands
// partition the observed range:
//
//	GOOD          0-50
//	SATISFACTORY  51-100
//	MODERATE      101-200
//	POOR          201-300
//	VERY POOR     301-400
//	SEVERE        401 and above
//
// See [BandFor] for classification and [CategoryBand.Contains] for
// membership filtering.
package domain
