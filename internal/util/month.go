package util

import "time"

// lastInstantOffset is subtracted from the next month's first instant to get
// the last millisecond of a month
const lastInstantOffset = time.Millisecond

// PreviousMonth returns the year and month for the previous month
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// CurrentMonthStart returns midnight on the first day of ref's month, in ref's location
func CurrentMonthStart(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
}

// MonthEnd returns 23:59:59.999 on the last day of ref's month, in ref's location
func MonthEnd(ref time.Time) time.Time {
	nextMonth := time.Date(ref.Year(), ref.Month()+1, 1, 0, 0, 0, 0, ref.Location())
	return nextMonth.Add(-lastInstantOffset)
}

// PreviousCalendarMonth returns the inclusive range covering the calendar month
// before ref's month. January rolls back to December of the prior year.
func PreviousCalendarMonth(ref time.Time) (start, end time.Time) {
	year, month := PreviousMonth(ref.Year(), int(ref.Month()))
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, ref.Location())
	return start, MonthEnd(start)
}
