// Package ipos holds IPO listings and the company logos attached to them.
package ipos

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusOngoing   Status = "Ongoing"
	StatusComing    Status = "Coming"
	StatusNewListed Status = "New Listed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOngoing, StatusComing, StatusNewListed:
		return true
	}
	return false
}

const (
	LogoKeyPrefix = "logos"
	MaxLogoSize   = 5 << 20
)

var (
	ErrNotFound = errors.New("ipo not found")
	ErrNoLogo   = errors.New("ipo has no logo")
)

// Logo points at the logo bytes in the object store.
type Logo struct {
	Key         string `bson:"key" json:"key"`
	ContentType string `bson:"contentType" json:"contentType"`
	Size        int64  `bson:"size" json:"size"`
}

type IPO struct {
	ID            string    `bson:"_id" json:"_id"`
	CompanyLogo   *Logo     `bson:"companyLogo,omitempty" json:"companyLogo,omitempty"`
	CompanyName   string    `bson:"companyName" json:"companyName"`
	PrizeBand     float64   `bson:"prizeBand" json:"prizeBand"`
	Open          time.Time `bson:"open" json:"open"`
	Close         time.Time `bson:"close" json:"close"`
	IssueSize     float64   `bson:"issueSize" json:"issueSize"`
	IssueType     string    `bson:"issueType" json:"issueType"`
	ListingDate   time.Time `bson:"listingDate" json:"listingDate"`
	Status        Status    `bson:"status" json:"status"`
	IPOPrice      string    `bson:"ipoPrice" json:"ipoPrice"`
	ListingPrice  string    `bson:"listingPrice" json:"listingPrice"`
	ListingGain   float64   `bson:"listingGain" json:"listingGain"`
	CMP           float64   `bson:"cmp" json:"cmp"`
	CurrentReturn string    `bson:"currentReturn" json:"currentReturn"`
	RHP           string    `bson:"rhp" json:"rhp"`
	DRHP          string    `bson:"drhp" json:"drhp"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Validate checks the fields whose zero value cannot be a real listing.
// Numeric fields are checked for presence when the form is parsed.
func (i *IPO) Validate() error {
	switch {
	case i.CompanyName == "":
		return requiredErr(FieldCompanyName)
	case i.Open.IsZero():
		return requiredErr(FieldOpen)
	case i.Close.IsZero():
		return requiredErr(FieldClose)
	case i.IssueType == "":
		return requiredErr(FieldIssueType)
	case i.ListingDate.IsZero():
		return requiredErr(FieldListingDate)
	case i.Status == "":
		return requiredErr(FieldStatus)
	case !i.Status.Valid():
		return InvalidStatusErr
	case i.IPOPrice == "":
		return requiredErr(FieldIPOPrice)
	case i.ListingPrice == "":
		return requiredErr(FieldListingPrice)
	case i.CurrentReturn == "":
		return requiredErr(FieldCurrentReturn)
	case i.RHP == "":
		return requiredErr(FieldRHP)
	case i.DRHP == "":
		return requiredErr(FieldDRHP)
	}
	return nil
}

func (i *IPO) HasLogo() bool {
	return i.CompanyLogo != nil && i.CompanyLogo.Key != ""
}

// ValidID reports whether id is a 24 character hex object id.
func ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

func NewID() string {
	return primitive.NewObjectID().Hex()
}
