package service

import "time"

const dateLayout = "2006-01-02"

// normalizeToDate 把时间截断到当天零点，作为所有按日存取的统一键。
func normalizeToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	return normalizeToDate(a).Equal(normalizeToDate(b))
}
