package engine

import "github.com/broguedistilling/distillery-forecast/pkg/constants"

// buildSchedule assigns the month index, forecast year (ceil(month/12)), and
// month-of-year (1..12) to every ledger row.
func (m *Model) buildSchedule() {
	for i := range m.ledger {
		index := i + 1
		m.ledger[i].Index = index
		m.ledger[i].Year = (index + constants.MonthsPerYear - 1) / constants.MonthsPerYear

		monthOfYear := index % constants.MonthsPerYear
		if monthOfYear == 0 {
			monthOfYear = constants.MonthsPerYear
		}
		m.ledger[i].MonthOfYear = monthOfYear
	}
}
