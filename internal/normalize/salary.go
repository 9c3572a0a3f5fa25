package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/amishk599/shiftline/internal/model"
)

const amountPattern = `(\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?)`

var salaryRange = regexp.MustCompile(
	`\$\s?` + amountPattern + `\s*(k)?` +
		`(?:\s*(?:-|–|to)\s*\$?\s?` + amountPattern + `\s*(k)?)?` +
		`(?:\s*(?:/|per|an|a)\s*(hour|hr|year|yr|annum|annually|week|wk))?`)

// ExtractSalary finds the first dollar amount or range in text. A missing
// unit is inferred from magnitude: figures below 500 are hourly, the rest
// yearly. Nothing found returns nil bounds and an empty unit.
func ExtractSalary(text string) (minPay, maxPay *float64, unit model.SalaryUnit) {
	m := salaryRange.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return nil, nil, ""
	}

	lo, ok := parseAmount(m[1], m[2] != "")
	if !ok {
		return nil, nil, ""
	}
	hi := lo
	if m[3] != "" {
		v, ok := parseAmount(m[3], m[4] != "" || m[2] != "")
		if ok {
			hi = v
		}
	}
	if hi < lo {
		lo, hi = hi, lo
	}

	switch m[5] {
	case "hour", "hr":
		unit = model.SalaryHourly
	case "week", "wk":
		unit = model.SalaryWeekly
	case "year", "yr", "annum", "annually":
		unit = model.SalaryYearly
	default:
		if hi < 500 {
			unit = model.SalaryHourly
		} else {
			unit = model.SalaryYearly
		}
	}
	return &lo, &hi, unit
}

func parseAmount(s string, thousands bool) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	if thousands {
		v *= 1000
	}
	return v, true
}
