package calendar

import "time"

// Holiday closes attendance on Date. A nil OfficeCode applies to every office.
type Holiday struct {
	ID          int64
	Date        time.Time
	OfficeCode  *string
	Description string
}

func (h Holiday) IsGlobal() bool {
	return h.OfficeCode == nil
}

// AppliesTo reports whether the holiday closes the given office.
func (h Holiday) AppliesTo(officeCode string) bool {
	return h.OfficeCode == nil || *h.OfficeCode == officeCode
}
