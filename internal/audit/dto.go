package audit

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/procurement-inventory/internal"
)

const dateLayout = "2006-01-02"

// Filter narrows an audit search. Zero values mean "no constraint".
type Filter struct {
	UserID     int64
	Action     Action
	EntityType EntityType
	From       time.Time
	To         time.Time
	Limit      int
}

// ParseFilter reads user_id, action, entity_type, start_date and end_date.
// Dates are whole days: start_date from 00:00:00, end_date through 23:59:59.999.
func ParseFilter(q url.Values) (Filter, error) {
	var f Filter

	if raw := q.Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return f, internal.NewValidationFieldError("user_id", "user_id must be a positive integer", internal.ErrCodeValidationFailed)
		}
		f.UserID = id
	}

	f.Action = Action(strings.ToUpper(strings.TrimSpace(q.Get("action"))))
	f.EntityType = EntityType(strings.TrimSpace(q.Get("entity_type")))

	if raw := q.Get("start_date"); raw != "" {
		d, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			return f, internal.NewValidationFieldError("start_date", "start_date must be YYYY-MM-DD", internal.ErrCodeInvalidDateRange)
		}
		f.From = d
	}

	if raw := q.Get("end_date"); raw != "" {
		d, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			return f, internal.NewValidationFieldError("end_date", "end_date must be YYYY-MM-DD", internal.ErrCodeInvalidDateRange)
		}
		f.To = d.Add(24*time.Hour - time.Millisecond)
	}

	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, internal.NewValidationError("end_date must not be before start_date", internal.ErrCodeInvalidDateRange)
	}

	return f, nil
}
