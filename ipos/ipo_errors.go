package ipos

import (
	"fmt"

	apperrors "github.com/jrsteele09/ipo-auth-server/internal/errors"
)

var (
	NoIPOsErr         = apperrors.NotFound(apperrors.ReasonNotFound, "There are no IPOs!")
	InvalidIPOIdErr   = apperrors.Validation(apperrors.ReasonInvalidID, "Invalid ipoId!")
	InvalidIDFormat   = apperrors.Validation(apperrors.ReasonInvalidID, "Invalid IPO ID format")
	IPONotFoundErr    = apperrors.NotFound(apperrors.ReasonNotFound, "IPO not found!")
	UpdateNotFoundErr = apperrors.NotFound(apperrors.ReasonNotFound, "IPO not found")
	LogoNotFoundErr   = apperrors.NotFound(apperrors.ReasonNotFound, "Company logo not found!")
	NoUpdateDataErr   = apperrors.Validation(apperrors.ReasonNoUpdate, "No update data provided")
	NoValidFieldsErr  = apperrors.Validation(apperrors.ReasonNoUpdate, "No valid fields provided for update")
	ImageOnlyErr      = apperrors.Validation(apperrors.ReasonInvalidUpload, "Only image files are allowed!")
	LogoTooLargeErr   = apperrors.Validation(apperrors.ReasonInvalidUpload, "File too large")
	InvalidStatusErr  = apperrors.Validation(apperrors.ReasonInvalidField, "Status must be one of: Ongoing, Coming, New Listed")
)

func requiredErr(f Field) error {
	return apperrors.Validation(apperrors.ReasonMissingField, f.label+" is required!").WithDetail("field", f.name)
}

func invalidFieldErr(f Field, want string) error {
	return apperrors.Validation(apperrors.ReasonInvalidField, fmt.Sprintf("%s must be %s!", f.label, want)).WithDetail("field", f.name)
}
