package domain

// stepForm is satisfied by every verification type's sub-form. Each type has
// its own completeness predicate per step name; the record merges them with a
// logical OR across attached types.
type stepForm interface {
	stepComplete(step StepName) bool
}

func (f *ResidenceForm) stepComplete(step StepName) bool {
	switch step {
	case StepAddressInformation:
		return f.AddressInformation.PresentAddress != nil
	case StepPropertyDetails:
		return f.PropertyDetails.OwnershipResidence != ""
	case StepPersonalInformation:
		return f.PersonalInformation.DateOfBirth != nil
	case StepVerificationStatus:
		return f.VerificationStatus.Status != ""
	case StepCommentsAuthorization:
		return f.CommentsAuthorization.VerifiersName != ""
	}
	return false
}

func (f *OfficeForm) stepComplete(step StepName) bool {
	switch step {
	case StepAddressInformation:
		return f.OfficeInformation.OfficeAddress != nil
	case StepPropertyDetails:
		// For office checks the "property" milestone is the employee
		// contact attempt, recorded or not.
		return f.EmployeeDetails.PersonContacted != nil
	case StepPersonalInformation:
		return f.ContactInformation.MobileNo1 != ""
	case StepVerificationStatus:
		return f.VerificationStatus.Status != ""
	case StepCommentsAuthorization:
		return f.CommentsAuthorization.VerifiersName != ""
	}
	return false
}

func (f *BusinessForm) stepComplete(step StepName) bool {
	switch step {
	case StepAddressInformation:
		return f.BusinessAddress.OfficeAddress != nil
	case StepPropertyDetails:
		return f.CompanyContactDetails.ContactPersonName != ""
	case StepPersonalInformation:
		return f.BusinessPremises.NatureOfBusiness != ""
	case StepVerificationStatus:
		return f.VerificationStatus.Status != ""
	case StepCommentsAuthorization:
		return f.CommentsAuthorization.FieldExecutiveName != ""
	}
	return false
}
