package analytics

import (
	"fmt"
	"time"

	"github.com/jhoicas/boulangerie-api/internal/domain"
)

const dateLayout = "2006-01-02"

// ParsePeriod interpreta from/to como YYYY-MM-DD o RFC3339.
// Sin from: primer día del mes de now. Sin to: now. Un to en formato fecha cubre el día completo.
func ParsePeriod(fromStr, toStr string, now time.Time) (from, to time.Time, err error) {
	if toStr == "" {
		to = now
	} else {
		var dayOnly bool
		to, dayOnly, err = parseInstant(toStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: to inválido: %w", domain.ErrInvalidInput, err)
		}
		if dayOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
	}

	if fromStr == "" {
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	} else {
		from, _, err = parseInstant(fromStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: from inválido: %w", domain.ErrInvalidInput, err)
		}
	}

	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from no puede ser posterior a to", domain.ErrInvalidInput)
	}
	return from, to, nil
}

func parseInstant(s string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	return t, false, err
}

// inPeriod: ambos extremos incluidos.
func inPeriod(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}
