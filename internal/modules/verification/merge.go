package verification

import (
	"bytes"
	"encoding/json"
	"fmt"

	"veriflow/internal/domain"
)

// mergeSection applies a shallow JSON patch onto one form section: fields
// present in the payload overwrite, absent fields keep their value. Unknown
// fields are rejected so a typo cannot silently discard data.
func mergeSection(section any, payload json.RawMessage) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(section); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

// sectionTarget resolves a section name to the mutable sub-struct it patches.
// administrativeDetails is shared across types; every other section belongs
// to the sub-form of one attached verification type.
func sectionTarget(rec *domain.VerificationRecord, typ domain.VerificationType, section string) (any, error) {
	if section == string(domain.StepAdministrativeDetails) {
		return &rec.Administrative, nil
	}

	switch typ {
	case domain.ResidenceVerification:
		if rec.Residence == nil {
			return nil, ErrTypeNotAttached
		}
		switch section {
		case string(domain.StepAddressInformation):
			return &rec.Residence.AddressInformation, nil
		case string(domain.StepPropertyDetails):
			return &rec.Residence.PropertyDetails, nil
		case string(domain.StepPersonalInformation):
			return &rec.Residence.PersonalInformation, nil
		case string(domain.StepVerificationStatus):
			return &rec.Residence.VerificationStatus, nil
		case string(domain.StepCommentsAuthorization):
			return &rec.Residence.CommentsAuthorization, nil
		}

	case domain.OfficeVerification:
		if rec.Office == nil {
			return nil, ErrTypeNotAttached
		}
		switch section {
		case string(domain.StepAddressInformation):
			return &rec.Office.OfficeInformation, nil
		case string(domain.StepPropertyDetails):
			return &rec.Office.EmployeeDetails, nil
		case string(domain.StepPersonalInformation):
			return &rec.Office.ContactInformation, nil
		case "businessDetails":
			return &rec.Office.BusinessDetails, nil
		case string(domain.StepVerificationStatus):
			return &rec.Office.VerificationStatus, nil
		case string(domain.StepCommentsAuthorization):
			return &rec.Office.CommentsAuthorization, nil
		}

	case domain.BusinessVerification:
		if rec.Business == nil {
			return nil, ErrTypeNotAttached
		}
		switch section {
		case string(domain.StepAddressInformation):
			return &rec.Business.BusinessAddress, nil
		case string(domain.StepPropertyDetails):
			return &rec.Business.CompanyContactDetails, nil
		case string(domain.StepPersonalInformation):
			return &rec.Business.BusinessPremises, nil
		case "legalInformation":
			return &rec.Business.LegalInformation, nil
		case string(domain.StepVerificationStatus):
			return &rec.Business.VerificationStatus, nil
		case string(domain.StepCommentsAuthorization):
			return &rec.Business.CommentsAuthorization, nil
		}

	default:
		return nil, ErrInvalidType
	}

	return nil, ErrInvalidSection
}
