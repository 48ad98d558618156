package internal

// Classify derives the lifecycle status of a requirement on the given day.
// The first matching rule wins:
//   - payment report present            -> paid
//   - reception date present            -> received
//   - work order, due date before today -> overdue
//   - no work order                     -> not_started
//   - otherwise                         -> in_progress
//
// Dates must have been validated on import (see Requirement.Validate).
func Classify(req Requirement, today Date) Status {
	if req.HasPaymentReport() {
		return StatusPaid
	}
	if req.HasReception() {
		return StatusReceived
	}
	if req.HasWorkOrder() && req.DueDate.Before(today) {
		return StatusOverdue
	}
	if !req.HasWorkOrder() {
		return StatusNotStarted
	}
	return StatusInProgress
}

// DaysOverdue returns how many days today is past the due date, or 0
func DaysOverdue(req Requirement, today Date) int {
	days, err := req.DueDate.DaysSince(today)
	if err != nil || days < 0 {
		return 0
	}
	return days
}
