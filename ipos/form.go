package ipos

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Field names a stored IPO attribute and its human label.
type Field struct {
	name  string
	label string
}

func (f Field) Name() string { return f.name }

var (
	FieldCompanyName   = Field{"companyName", "Company name"}
	FieldPrizeBand     = Field{"prizeBand", "Prize band"}
	FieldOpen          = Field{"open", "Opening date"}
	FieldClose         = Field{"close", "Closing date"}
	FieldIssueSize     = Field{"issueSize", "Issue size"}
	FieldIssueType     = Field{"issueType", "Issue type"}
	FieldListingDate   = Field{"listingDate", "Listing date"}
	FieldStatus        = Field{"status", "Status"}
	FieldIPOPrice      = Field{"ipoPrice", "IPO price"}
	FieldListingPrice  = Field{"listingPrice", "Listing price"}
	FieldListingGain   = Field{"listingGain", "Listing gain"}
	FieldCMP           = Field{"cmp", "Current market price"}
	FieldCurrentReturn = Field{"currentReturn", "Current return"}
	FieldRHP           = Field{"rhp", "RHP URL"}
	FieldDRHP          = Field{"drhp", "DRHP URL"}
)

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"}

func parseDate(f Field, s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, invalidFieldErr(f, "a valid date")
}

func parseNumber(f Field, s string) (float64, error) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, invalidFieldErr(f, "a number")
	}
	return n, nil
}

// formReader walks the fields in declaration order and keeps the first error.
type formReader struct {
	values url.Values
	err    error
}

func (r *formReader) str(f Field) string {
	if r.err != nil {
		return ""
	}
	v := strings.TrimSpace(r.values.Get(f.name))
	if v == "" {
		r.err = requiredErr(f)
	}
	return v
}

func (r *formReader) number(f Field) float64 {
	v := r.str(f)
	if r.err != nil {
		return 0
	}
	n, err := parseNumber(f, v)
	r.err = err
	return n
}

func (r *formReader) date(f Field) time.Time {
	v := r.str(f)
	if r.err != nil {
		return time.Time{}
	}
	t, err := parseDate(f, v)
	r.err = err
	return t
}

// FromForm builds an IPO from the text parts of a registration form. The logo
// is attached separately.
func FromForm(values url.Values) (*IPO, error) {
	r := &formReader{values: values}
	ipo := &IPO{
		CompanyName:   r.str(FieldCompanyName),
		PrizeBand:     r.number(FieldPrizeBand),
		Open:          r.date(FieldOpen),
		Close:         r.date(FieldClose),
		IssueSize:     r.number(FieldIssueSize),
		IssueType:     r.str(FieldIssueType),
		ListingDate:   r.date(FieldListingDate),
		Status:        Status(r.str(FieldStatus)),
		IPOPrice:      r.str(FieldIPOPrice),
		ListingPrice:  r.str(FieldListingPrice),
		ListingGain:   r.number(FieldListingGain),
		CMP:           r.number(FieldCMP),
		CurrentReturn: r.str(FieldCurrentReturn),
		RHP:           r.str(FieldRHP),
		DRHP:          r.str(FieldDRHP),
	}
	if r.err != nil {
		return nil, r.err
	}
	if err := ipo.Validate(); err != nil {
		return nil, err
	}
	return ipo, nil
}
