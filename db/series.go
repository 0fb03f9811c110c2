package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// seriesDigits is the zero padded width of the counter appended to a series prefix.
const seriesDigits = 5

// resolveSeriesPrefix expands the date placeholders of a naming series.
// The series is split on dots; YYYY, YY, MM and DD parts are replaced with the
// corresponding date component and everything else is kept verbatim.
//
//	HR-EMP-.YYYY.-  ->  HR-EMP-2026-
func resolveSeriesPrefix(series string, now time.Time) string {
	parts := strings.Split(series, ".")
	var b strings.Builder
	for _, part := range parts {
		switch part {
		case "YYYY":
			b.WriteString(now.Format("2006"))
		case "YY":
			b.WriteString(now.Format("06"))
		case "MM":
			b.WriteString(now.Format("01"))
		case "DD":
			b.WriteString(now.Format("02"))
		default:
			b.WriteString(part)
		}
	}
	return b.String()
}

// NextName returns the next document name for the naming series, e.g. HR-EXP-2026-00042.
// Counters are kept per resolved prefix, so each year starts again at 1.
func (repo *Repository) NextName(ctx context.Context, series string, now time.Time) (string, error) {
	prefix := resolveSeriesPrefix(series, now)

	var current int
	query := `INSERT INTO series(name, current) VALUES (?, 1)
		      ON CONFLICT(name) DO UPDATE SET current = current + 1
		      RETURNING current`

	err := sqlx.GetContext(ctx, repo.ext, &current, query, prefix)
	if err != nil {
		return "", fmt.Errorf("incrementing series %s: %w", prefix, err)
	}

	return fmt.Sprintf("%s%0*d", prefix, seriesDigits, current), nil
}
