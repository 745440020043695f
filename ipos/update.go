package ipos

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/jrsteele09/ipo-auth-server/internal/utils"
)

// Update carries the subset of fields an existing listing may change.
type Update struct {
	CompanyName *string
	PrizeBand   *float64
	Open        *time.Time
	Close       *time.Time
	IssueSize   *float64
	ListingDate *time.Time
}

// updatableFields lists the fields an update may set, in the order they are
// checked.
var updatableFields = []Field{
	FieldCompanyName,
	FieldPrizeBand,
	FieldOpen,
	FieldClose,
	FieldIssueSize,
	FieldListingDate,
}

// ParseUpdate filters a decoded JSON body down to the updatable fields.
// Unknown keys are dropped silently. When several fields are invalid the
// first in updatableFields order is reported.
func ParseUpdate(raw map[string]any) (*Update, error) {
	if len(raw) == 0 {
		return nil, NoUpdateDataErr
	}

	u := &Update{}
	found := false
	for _, f := range updatableFields {
		value, ok := raw[f.name]
		if !ok {
			continue
		}
		var err error
		switch f {
		case FieldCompanyName:
			var s string
			if s, err = updateString(f, value); err == nil {
				u.CompanyName = utils.Ptr(s)
			}
		case FieldPrizeBand:
			u.PrizeBand, err = updateNumber(f, value)
		case FieldIssueSize:
			u.IssueSize, err = updateNumber(f, value)
		case FieldOpen:
			u.Open, err = updateDate(f, value)
		case FieldClose:
			u.Close, err = updateDate(f, value)
		case FieldListingDate:
			u.ListingDate, err = updateDate(f, value)
		}
		if err != nil {
			return nil, err
		}
		found = true
	}
	if !found {
		return nil, NoValidFieldsErr
	}
	return u, nil
}

// Fields returns the stored field names and values that the update sets.
func (u *Update) Fields() map[string]any {
	fields := map[string]any{}
	if u.CompanyName != nil {
		fields[FieldCompanyName.name] = *u.CompanyName
	}
	if u.PrizeBand != nil {
		fields[FieldPrizeBand.name] = *u.PrizeBand
	}
	if u.Open != nil {
		fields[FieldOpen.name] = *u.Open
	}
	if u.Close != nil {
		fields[FieldClose.name] = *u.Close
	}
	if u.IssueSize != nil {
		fields[FieldIssueSize.name] = *u.IssueSize
	}
	if u.ListingDate != nil {
		fields[FieldListingDate.name] = *u.ListingDate
	}
	return fields
}

func (u *Update) Apply(ipo *IPO) {
	utils.Set(&ipo.CompanyName, u.CompanyName)
	utils.Set(&ipo.PrizeBand, u.PrizeBand)
	utils.Set(&ipo.Open, u.Open)
	utils.Set(&ipo.Close, u.Close)
	utils.Set(&ipo.IssueSize, u.IssueSize)
	utils.Set(&ipo.ListingDate, u.ListingDate)
}

func updateString(f Field, v any) (string, error) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", requiredErr(f)
	}
	return strings.TrimSpace(s), nil
}

func updateNumber(f Field, v any) (*float64, error) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case json.Number:
		f64, err := t.Float64()
		if err != nil {
			return nil, invalidFieldErr(f, "a number")
		}
		n = f64
	case string:
		f64, err := parseNumber(f, strings.TrimSpace(t))
		if err != nil {
			return nil, err
		}
		n = f64
	default:
		return nil, invalidFieldErr(f, "a number")
	}
	return utils.Ptr(n), nil
}

func updateDate(f Field, v any) (*time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return nil, invalidFieldErr(f, "a valid date")
	}
	t, err := parseDate(f, strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	return utils.Ptr(t), nil
}
