package domain

import (
	"math"
	"time"
)

type VerificationType string

const (
	ResidenceVerification VerificationType = "RESIDENCE_VERIFICATION"
	OfficeVerification    VerificationType = "OFFICE_VERIFICATION"
	BusinessVerification  VerificationType = "BUSINESS_VERIFICATION"
)

func (t VerificationType) Valid() bool {
	switch t {
	case ResidenceVerification, OfficeVerification, BusinessVerification:
		return true
	}
	return false
}

// TypeStatus is the admin decision state of a single verification type inside
// a record.
type TypeStatus string

const (
	TypePending    TypeStatus = "PENDING"
	TypeInProgress TypeStatus = "IN_PROGRESS"
	TypeVerified   TypeStatus = "VERIFIED"
	TypeRejected   TypeStatus = "REJECTED"
)

func (s TypeStatus) Valid() bool {
	switch s {
	case TypePending, TypeInProgress, TypeVerified, TypeRejected:
		return true
	}
	return false
}

// VerificationStatus is the record-level aggregate state.
// DRAFT and SUBMITTED are completion-driven; the rest follow admin decisions.
type VerificationStatus string

const (
	StatusDraft      VerificationStatus = "DRAFT"
	StatusSubmitted  VerificationStatus = "SUBMITTED"
	StatusInProgress VerificationStatus = "IN_PROGRESS"
	StatusVerified   VerificationStatus = "VERIFIED"
	StatusRejected   VerificationStatus = "REJECTED"
)

// StepName identifies one of the seven fixed completion milestones of a
// verification record. Adding a step changes the completion denominator, so
// the closed set lives here, next to TotalCompletionSteps.
type StepName string

const (
	StepAdministrativeDetails StepName = "administrativeDetails"
	StepAddressInformation    StepName = "addressInformation"
	StepPropertyDetails       StepName = "propertyDetails"
	StepPersonalInformation   StepName = "personalInformation"
	StepVerificationStatus    StepName = "verificationStatus"
	StepCommentsAuthorization StepName = "commentsAuthorization"
	StepDocumentUpload        StepName = "documentUpload"
)

const TotalCompletionSteps = 7

type CompletionSteps struct {
	AdministrativeDetails bool `json:"administrativeDetails"`
	AddressInformation    bool `json:"addressInformation"`
	PropertyDetails       bool `json:"propertyDetails"`
	PersonalInformation   bool `json:"personalInformation"`
	VerificationStatus    bool `json:"verificationStatus"`
	CommentsAuthorization bool `json:"commentsAuthorization"`
	DocumentUpload        bool `json:"documentUpload"`
}

func (s CompletionSteps) Count() int {
	n := 0
	for _, v := range [...]bool{
		s.AdministrativeDetails, s.AddressInformation, s.PropertyDetails,
		s.PersonalInformation, s.VerificationStatus, s.CommentsAuthorization,
		s.DocumentUpload,
	} {
		if v {
			n++
		}
	}
	return n
}

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`
	Country string `json:"country,omitempty"`
}

// AdministrativeDetails is shared by all verification types on a record.
type AdministrativeDetails struct {
	DateOfReceipt *time.Time `json:"dateOfReceipt,omitempty"`
	DateOfReport  *time.Time `json:"dateOfReport,omitempty"`
	ReferenceNo   string     `json:"referenceNo,omitempty"`
	BranchName    string     `json:"branchName,omitempty"`
	TypeOfLoan    string     `json:"typeOfLoan,omitempty"`
	ApplicantName string     `json:"applicantName,omitempty"`
}

// TypeDecision carries the per-type admin decision and field findings.
type TypeDecision struct {
	AddressConfirmed       *bool      `json:"addressConfirmed,omitempty"`
	NeighboursVerification *bool      `json:"neighboursVerification,omitempty"`
	NeighboursComments     string     `json:"neighboursComments,omitempty"`
	Status                 TypeStatus `json:"status,omitempty"`
	VerifiedBy             string     `json:"verifiedBy,omitempty"`
	VerificationDate       *time.Time `json:"verificationDate,omitempty"`
}

type CommentsAuthorization struct {
	Comments               string `json:"comments,omitempty"`
	FieldExecutiveComments string `json:"fieldExecutiveComments,omitempty"`
	VerifiersName          string `json:"verifiersName,omitempty"`
	AuthorizedSignatory    string `json:"authorizedSignatory,omitempty"`
}

// --- Residence verification sub-form ---

type ResidenceAddressInformation struct {
	PresentAddress       *Address `json:"presentAddress,omitempty"`
	PermanentAddress     *Address `json:"permanentAddress,omitempty"`
	Locality             string   `json:"locality,omitempty"`
	Accessibility        string   `json:"accessibility,omitempty"`
	WithinMunicipalLimit *bool    `json:"withinMunicipalLimit,omitempty"`
	LandMark             string   `json:"landMark,omitempty"`
}

type ResidencePropertyDetails struct {
	OwnershipResidence          string   `json:"ownershipResidence,omitempty"`
	TypeOfResidence             string   `json:"typeOfResidence,omitempty"`
	InteriorFurniture           string   `json:"interiorFurniture,omitempty"`
	TypeOfRoof                  string   `json:"typeOfRoof,omitempty"`
	NumberOfFloors              int      `json:"numberOfFloors,omitempty"`
	VehiclesFoundAtResidence    []string `json:"vehiclesFoundAtResidence,omitempty"`
	YearsOfStay                 int      `json:"yearsOfStay,omitempty"`
	MonthsOfStay                int      `json:"monthsOfStay,omitempty"`
	AreaSqFt                    float64  `json:"areaSqFt,omitempty"`
	NamePlateSighted            *bool    `json:"namePlateSighted,omitempty"`
	EntryIntoResidencePermitted *bool    `json:"entryIntoResidencePermitted,omitempty"`
}

type ResidencePersonalInformation struct {
	RelationshipOfPerson string     `json:"relationshipOfPerson,omitempty"`
	DateOfBirth          *time.Time `json:"dateOfBirth,omitempty"`
	AadharCardNo         string     `json:"aadharCardNo,omitempty"`
	PanCardNo            string     `json:"panCardNo,omitempty"`
	MobileNo1            string     `json:"mobileNo1,omitempty"`
	MobileNo2            string     `json:"mobileNo2,omitempty"`
	MobileNo3            string     `json:"mobileNo3,omitempty"`
	Qualification        string     `json:"qualification,omitempty"`
	TotalFamilyMembers   int        `json:"totalFamilyMembers,omitempty"`
	VisibleItems         []string   `json:"visibleItems,omitempty"`
}

type ResidenceForm struct {
	AddressInformation    ResidenceAddressInformation  `json:"addressInformation"`
	PropertyDetails       ResidencePropertyDetails     `json:"propertyDetails"`
	PersonalInformation   ResidencePersonalInformation `json:"personalInformation"`
	VerificationStatus    TypeDecision                 `json:"verificationStatus"`
	CommentsAuthorization CommentsAuthorization        `json:"commentsAuthorization"`
}

// --- Office verification sub-form ---

type OfficeInformation struct {
	OfficeAddress    *Address   `json:"officeAddress,omitempty"`
	ExactCompanyName string     `json:"exactCompanyName,omitempty"`
	Designation      string     `json:"designation,omitempty"`
	EmployeeID       string     `json:"employeeId,omitempty"`
	WorkingSince     *time.Time `json:"workingSince,omitempty"`
	NetSalary        float64    `json:"netSalary,omitempty"`
	OfficeFloor      string     `json:"officeFloor,omitempty"`
}

type OfficeEmployeeDetails struct {
	PersonContacted     *bool  `json:"personContacted,omitempty"`
	PersonContactedName string `json:"personContactedName,omitempty"`
	PersonMet           *bool  `json:"personMet,omitempty"`
	PersonMetName       string `json:"personMetName,omitempty"`
	DesignationOfPerson string `json:"designationOfPerson,omitempty"`
}

type ContactInformation struct {
	MobileNo1 string `json:"mobileNo1,omitempty"`
	MobileNo2 string `json:"mobileNo2,omitempty"`
	MobileNo3 string `json:"mobileNo3,omitempty"`
}

type OfficeBusinessDetails struct {
	NatureOfBusiness      string `json:"natureOfBusiness,omitempty"`
	NumberOfEmployeesSeen int    `json:"numberOfEmployeesSeen,omitempty"`
	LandMark              string `json:"landMark,omitempty"`
	NameBoardSighted      *bool  `json:"nameBoardSighted,omitempty"`
	BusinessActivitySeen  *bool  `json:"businessActivitySeen,omitempty"`
	EquipmentSighted      *bool  `json:"equipmentSighted,omitempty"`
	VisitingCardObtained  *bool  `json:"visitingCardObtained,omitempty"`
	ResidenceCumOffice    *bool  `json:"residenceCumOffice,omitempty"`
	WorkConfirmed         *bool  `json:"workConfirmed,omitempty"`
}

type OfficeForm struct {
	OfficeInformation     OfficeInformation     `json:"officeInformation"`
	EmployeeDetails       OfficeEmployeeDetails `json:"employeeDetails"`
	ContactInformation    ContactInformation    `json:"contactInformation"`
	BusinessDetails       OfficeBusinessDetails `json:"businessDetails"`
	CommentsAuthorization CommentsAuthorization `json:"commentsAuthorization"`
	VerificationStatus    TypeDecision          `json:"verificationStatus"`
}

// --- Business verification sub-form ---

type BusinessAddress struct {
	OfficeAddress          *Address `json:"officeAddress,omitempty"`
	ExactCompanyName       string   `json:"exactCompanyName,omitempty"`
	DesignationOfApplicant string   `json:"designationOfApplicant,omitempty"`
}

type CompanyContactDetails struct {
	ContactPersonName        string `json:"contactPersonName,omitempty"`
	ContactPersonDesignation string `json:"contactPersonDesignation,omitempty"`
	MobileNo1                string `json:"mobileNo1,omitempty"`
	MobileNo2                string `json:"mobileNo2,omitempty"`
	MobileNo3                string `json:"mobileNo3,omitempty"`
}

type BusinessPremises struct {
	NatureOfBusiness     string  `json:"natureOfBusiness,omitempty"`
	OfficePremises       string  `json:"officePremises,omitempty"`
	NumberOfYears        int     `json:"numberOfYears,omitempty"`
	PayingRent           float64 `json:"payingRent,omitempty"`
	NameBoardSighted     *bool   `json:"nameBoardSighted,omitempty"`
	BusinessActivitySeen *bool   `json:"businessActivitySeen,omitempty"`
	EquipmentSighted     *bool   `json:"equipmentSighted,omitempty"`
	VisitingCardObtained *bool   `json:"visitingCardObtained,omitempty"`
	ResidenceCumOffice   *bool   `json:"residenceCumOffice,omitempty"`
	LocatingOffice       string  `json:"locatingOffice,omitempty"`
	AreaInSqFt           float64 `json:"areaInSqFt,omitempty"`
	NumberOfEmployees    int     `json:"numberOfEmployees,omitempty"`
	OfficeLocation       string  `json:"officeLocation,omitempty"`
	BusinessNeighbour    string  `json:"businessNeighbour,omitempty"`
}

type LegalInformation struct {
	TradeLicenseNo string `json:"tradeLicenseNo,omitempty"`
	GstNo          string `json:"gstNo,omitempty"`
}

type BusinessCommentsAuthorization struct {
	FieldExecutiveComments string `json:"fieldExecutiveComments,omitempty"`
	Rating                 string `json:"rating,omitempty"`
	FieldExecutiveName     string `json:"fieldExecutiveName,omitempty"`
	AuthorizedSignatory    string `json:"authorizedSignatory,omitempty"`
}

type BusinessForm struct {
	BusinessAddress       BusinessAddress               `json:"businessAddress"`
	CompanyContactDetails CompanyContactDetails         `json:"companyContactDetails"`
	BusinessPremises      BusinessPremises              `json:"businessPremises"`
	LegalInformation      LegalInformation              `json:"legalInformation"`
	CommentsAuthorization BusinessCommentsAuthorization `json:"commentsAuthorization"`
	VerificationStatus    TypeDecision                  `json:"verificationStatus"`
}

// VerificationRecord is one verification case, keyed by its generated document
// number. A single record can carry several verification types at once; each
// type has its own sub-form, while administrative details and the uploaded
// documents list are shared.
type VerificationRecord struct {
	ID              int64                 `json:"id" gorm:"primaryKey"`
	DocumentNumber  string                `json:"document_number" gorm:"uniqueIndex"`
	Types           []VerificationType    `json:"verification_type" gorm:"serializer:json;column:verification_types"`
	Administrative  AdministrativeDetails `json:"administrative_details" gorm:"serializer:json"`
	Residence       *ResidenceForm        `json:"residence_verification,omitempty" gorm:"serializer:json"`
	Office          *OfficeForm           `json:"office_verification,omitempty" gorm:"serializer:json"`
	Business        *BusinessForm         `json:"business_verification,omitempty" gorm:"serializer:json"`
	Documents       []DocumentFile        `json:"documents" gorm:"serializer:json"`
	CompletionSteps CompletionSteps       `json:"completion_steps" gorm:"serializer:json"`
	OverallStatus   VerificationStatus    `json:"overall_status"`
	CreatedBy       int64                 `json:"created_by"`
	UpdatedBy       int64                 `json:"updated_by,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

func (v *VerificationRecord) HasType(t VerificationType) bool {
	for _, existing := range v.Types {
		if existing == t {
			return true
		}
	}
	return false
}

// AddType attaches a verification type with an empty sub-form. Existing
// sub-forms are never reset: merging a type that is already present is a
// no-op. Returns true when the type set actually grew.
func (v *VerificationRecord) AddType(t VerificationType) bool {
	if v.HasType(t) {
		return false
	}
	v.Types = append(v.Types, t)
	switch t {
	case ResidenceVerification:
		if v.Residence == nil {
			v.Residence = &ResidenceForm{}
		}
	case OfficeVerification:
		if v.Office == nil {
			v.Office = &OfficeForm{}
		}
	case BusinessVerification:
		if v.Business == nil {
			v.Business = &BusinessForm{}
		}
	}
	return true
}

func (v *VerificationRecord) CompletionPercentage() int {
	return int(math.Round(float64(v.CompletionSteps.Count()) / float64(TotalCompletionSteps) * 100))
}

// Decision returns the per-type decision sub-object, or nil when the type is
// not attached.
func (v *VerificationRecord) Decision(t VerificationType) *TypeDecision {
	switch t {
	case ResidenceVerification:
		if v.Residence != nil {
			return &v.Residence.VerificationStatus
		}
	case OfficeVerification:
		if v.Office != nil {
			return &v.Office.VerificationStatus
		}
	case BusinessVerification:
		if v.Business != nil {
			return &v.Business.VerificationStatus
		}
	}
	return nil
}

// RecomputeCompletion refreshes the seven completion flags and applies the
// completion-driven DRAFT/SUBMITTED transition. A step counts as complete if
// ANY attached type satisfies its predicate, so attaching a second type never
// un-completes a shared step. Admin-set states (IN_PROGRESS and the
// terminals) are left alone.
func (v *VerificationRecord) RecomputeCompletion() {
	steps := CompletionSteps{
		AdministrativeDetails: v.Administrative.DateOfReceipt != nil && v.Administrative.ReferenceNo != "",
		DocumentUpload:        len(v.Documents) > 0,
	}

	for _, t := range v.Types {
		form := v.form(t)
		if form == nil {
			continue
		}
		steps.AddressInformation = steps.AddressInformation || form.stepComplete(StepAddressInformation)
		steps.PropertyDetails = steps.PropertyDetails || form.stepComplete(StepPropertyDetails)
		steps.PersonalInformation = steps.PersonalInformation || form.stepComplete(StepPersonalInformation)
		steps.VerificationStatus = steps.VerificationStatus || form.stepComplete(StepVerificationStatus)
		steps.CommentsAuthorization = steps.CommentsAuthorization || form.stepComplete(StepCommentsAuthorization)
	}
	v.CompletionSteps = steps

	switch v.OverallStatus {
	case "", StatusDraft, StatusSubmitted:
		if v.CompletionPercentage() == 100 {
			v.OverallStatus = StatusSubmitted
		} else {
			v.OverallStatus = StatusDraft
		}
	}
}

// form returns the sub-form for a type as a stepForm, hiding the typed-nil
// pointer behind a nil interface.
func (v *VerificationRecord) form(t VerificationType) stepForm {
	switch t {
	case ResidenceVerification:
		if v.Residence != nil {
			return v.Residence
		}
	case OfficeVerification:
		if v.Office != nil {
			return v.Office
		}
	case BusinessVerification:
		if v.Business != nil {
			return v.Business
		}
	}
	return nil
}
