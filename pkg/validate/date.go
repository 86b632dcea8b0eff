package validate

import (
	"strconv"
	"time"

	"github.com/govtech-bb/formflow/pkg/schema"
	"github.com/govtech-bb/formflow/pkg/values"
)

const defaultDateMessage = "Enter a valid date"

// checkDate applies a past / pastOrToday constraint. Values arrive either as
// the {day, month, year} sub-map produced by date inputs or as a string in
// ISO (2006-01-02) or display (02/01/2006) form.
func (r *runner) checkDate(rule schema.DateRule, value any) (string, bool) {
	parsed, ok := parseDate(value)
	if !ok {
		return messageOr(rule.Message, defaultDateMessage), false
	}

	today := stripTime(r.clock())
	switch rule.Type {
	case schema.DatePast:
		if !parsed.Before(today) {
			return messageOr(rule.Message, "Date must be in the past"), false
		}
	case schema.DatePastOrToday:
		if parsed.After(today) {
			return messageOr(rule.Message, "Date must be today or in the past"), false
		}
	}
	return "", true
}

func parseDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case map[string]any:
		day, dok := atoiPart(v["day"])
		month, mok := atoiPart(v["month"])
		year, yok := atoiPart(v["year"])
		if !dok || !mok || !yok {
			return time.Time{}, false
		}
		return civilDate(year, month, day)
	case string:
		for _, layout := range []string{"2006-01-02", "02/01/2006"} {
			if t, err := time.Parse(layout, v); err == nil {
				return stripTime(t), true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func atoiPart(value any) (int, bool) {
	n, err := strconv.Atoi(values.CoerceString(value))
	if err != nil {
		return 0, false
	}
	return n, true
}

// civilDate rejects impossible dates like 31 February, which time.Date would
// silently normalise.
func civilDate(year, month, day int) (time.Time, bool) {
	if year < 1 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func stripTime(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func messageOr(message, fallback string) string {
	if message != "" {
		return message
	}
	return fallback
}
