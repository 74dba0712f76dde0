// Package types provides type definitions for structured data used throughout the form filler.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"unicode"
)

// Profile is the applicant record used to answer form questions.
// It is loaded once at startup and only read afterwards.
type Profile struct {
	UID                string `json:"uid" yaml:"uid" validate:"required"`
	UniversityRollNo   string `json:"university_roll_no,omitempty" yaml:"university_roll_no,omitempty"`
	Name               string `json:"name" yaml:"name" validate:"required"`
	Email              string `json:"email" yaml:"email" validate:"required,email"`
	PersonalEmail      string `json:"personal_email,omitempty" yaml:"personal_email,omitempty" validate:"omitempty,email"`
	CollegeDomainEmail string `json:"college_domain_email,omitempty" yaml:"college_domain_email,omitempty"`
	Phone              string `json:"phone" yaml:"phone"`
	AlternatePhone     string `json:"alternate_phone,omitempty" yaml:"alternate_phone,omitempty"`
	DateOfBirth        string `json:"date_of_birth,omitempty" yaml:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DOB                string `json:"dob,omitempty" yaml:"dob,omitempty" validate:"omitempty,datetime=02-01-2006"`
	Age                string `json:"age,omitempty" yaml:"age,omitempty"`
	Gender             string `json:"gender,omitempty" yaml:"gender,omitempty"`
	MaritalStatus      string `json:"marital_status,omitempty" yaml:"marital_status,omitempty"`
	Nationality        string `json:"nationality,omitempty" yaml:"nationality,omitempty"`

	Education       Education         `json:"education" yaml:"education"`
	Application     Application       `json:"application" yaml:"application"`
	Address         Addresses         `json:"address" yaml:"address"`
	WorkExperience  []WorkExperience  `json:"work_experience,omitempty" yaml:"work_experience,omitempty" validate:"dive"`
	Projects        []Project         `json:"projects,omitempty" yaml:"projects,omitempty" validate:"dive"`
	Skills          Skills            `json:"skills" yaml:"skills"`
	Certifications  []Certification   `json:"certifications,omitempty" yaml:"certifications,omitempty" validate:"dive"`
	Languages       []Language        `json:"languages,omitempty" yaml:"languages,omitempty" validate:"dive"`
	CommonResponses CommonResponses   `json:"common_responses" yaml:"common_responses"`
	Links           map[string]string `json:"links,omitempty" yaml:"links,omitempty" validate:"dive,omitempty,url"`
	AdditionalInfo  AdditionalInfo    `json:"additional_info" yaml:"additional_info"`
}

// Education describes the current program of study
type Education struct {
	School                   string `json:"school" yaml:"school"`
	Degree                   string `json:"degree" yaml:"degree"`
	Major                    string `json:"major,omitempty" yaml:"major,omitempty"`
	Batch                    string `json:"batch,omitempty" yaml:"batch,omitempty"`
	Stream                   string `json:"stream,omitempty" yaml:"stream,omitempty"`
	Program                  string `json:"program,omitempty" yaml:"program,omitempty"`
	CGPA                     string `json:"cgpa,omitempty" yaml:"cgpa,omitempty"`
	Percentage               string `json:"percentage,omitempty" yaml:"percentage,omitempty"`
	TenthPercentage          string `json:"tenth_percentage,omitempty" yaml:"tenth_percentage,omitempty"`
	TwelfthPercentage        string `json:"twelfth_percentage,omitempty" yaml:"twelfth_percentage,omitempty"`
	SchoolPercentage         string `json:"school_percentage,omitempty" yaml:"school_percentage,omitempty"`
	IntermediatePercentage   string `json:"intermediate_percentage,omitempty" yaml:"intermediate_percentage,omitempty"`
	GraduationPercentage     string `json:"graduation_percentage,omitempty" yaml:"graduation_percentage,omitempty"`
	PostGraduationPercentage string `json:"post_graduation_percentage,omitempty" yaml:"post_graduation_percentage,omitempty"`
	CurrentBacklogs          string `json:"current_backlogs,omitempty" yaml:"current_backlogs,omitempty"`
	TotalBacklogs            string `json:"total_backlogs,omitempty" yaml:"total_backlogs,omitempty"`

	GraduationUniversity     string `json:"graduation_university,omitempty" yaml:"graduation_university,omitempty"`
	PostGraduationUniversity string `json:"post_graduation_university,omitempty" yaml:"post_graduation_university,omitempty"`
	PostGraduationDegree     string `json:"post_graduation_degree,omitempty" yaml:"post_graduation_degree,omitempty"`
	SchoolBoard              string `json:"school_board,omitempty" yaml:"school_board,omitempty"`
	IntermediateBoard        string `json:"intermediate_board,omitempty" yaml:"intermediate_board,omitempty"`
	CurrentSemester          string `json:"current_semester,omitempty" yaml:"current_semester,omitempty"`
	Section                  string `json:"section,omitempty" yaml:"section,omitempty"`
	ExpectedGraduationDate   string `json:"expected_graduation_date,omitempty" yaml:"expected_graduation_date,omitempty"`
}

// Application holds preferences for the role being applied to
type Application struct {
	Position                  string `json:"position,omitempty" yaml:"position,omitempty"`
	RegisteredOnCorporateLink string `json:"registered_on_corporate_link,omitempty" yaml:"registered_on_corporate_link,omitempty"`
	RegistrationReason        string `json:"registration_reason,omitempty" yaml:"registration_reason,omitempty"`
	PreferredLocation         string `json:"preferred_location,omitempty" yaml:"preferred_location,omitempty"`
	WillingToRelocate         string `json:"willing_to_relocate,omitempty" yaml:"willing_to_relocate,omitempty"`
	NoticePeriod              string `json:"notice_period,omitempty" yaml:"notice_period,omitempty"`
	ExpectedSalary            string `json:"expected_salary,omitempty" yaml:"expected_salary,omitempty"`
	CurrentCTC                string `json:"current_ctc,omitempty" yaml:"current_ctc,omitempty"`
	ExpectedCTC               string `json:"expected_ctc,omitempty" yaml:"expected_ctc,omitempty"`
	ReasonForJobChange        string `json:"reason_for_job_change,omitempty" yaml:"reason_for_job_change,omitempty"`
	ReferredBy                string `json:"referred_by,omitempty" yaml:"referred_by,omitempty"`
	AvailableForInterview     string `json:"available_for_interview,omitempty" yaml:"available_for_interview,omitempty"`
	PreferredWorkModel        string `json:"preferred_work_model,omitempty" yaml:"preferred_work_model,omitempty"`
}

// Addresses holds the current and permanent postal addresses
type Addresses struct {
	Current   Address `json:"current" yaml:"current"`
	Permanent Address `json:"permanent" yaml:"permanent"`
}

// Address is a single postal address
type Address struct {
	Street  string `json:"street,omitempty" yaml:"street,omitempty"`
	City    string `json:"city,omitempty" yaml:"city,omitempty"`
	State   string `json:"state,omitempty" yaml:"state,omitempty"`
	ZipCode string `json:"zip_code,omitempty" yaml:"zip_code,omitempty"`
	Country string `json:"country,omitempty" yaml:"country,omitempty"`
}

// WorkExperience is one position; the slice on Profile is ordered most recent first
type WorkExperience struct {
	Company          string `json:"company" yaml:"company" validate:"required"`
	Position         string `json:"position" yaml:"position"`
	StartDate        string `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate          string `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Duration         string `json:"duration,omitempty" yaml:"duration,omitempty"`
	Location         string `json:"location,omitempty" yaml:"location,omitempty"`
	Description      string `json:"description,omitempty" yaml:"description,omitempty"`
	Responsibilities string `json:"responsibilities,omitempty" yaml:"responsibilities,omitempty"`
	Technologies     string `json:"technologies,omitempty" yaml:"technologies,omitempty"`
	Achievements     string `json:"achievements,omitempty" yaml:"achievements,omitempty"`
}

// Project is a portfolio project
type Project struct {
	Title        string `json:"title" yaml:"title" validate:"required"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	Technologies string `json:"technologies,omitempty" yaml:"technologies,omitempty"`
	Role         string `json:"role,omitempty" yaml:"role,omitempty"`
	Duration     string `json:"duration,omitempty" yaml:"duration,omitempty"`
	Link         string `json:"link,omitempty" yaml:"link,omitempty" validate:"omitempty,url"`
}

// Skills groups skill names by category
type Skills struct {
	ProgrammingLanguages []string `json:"programming_languages,omitempty" yaml:"programming_languages,omitempty"`
	Frameworks           []string `json:"frameworks,omitempty" yaml:"frameworks,omitempty"`
	Databases            []string `json:"databases,omitempty" yaml:"databases,omitempty"`
	Tools                []string `json:"tools,omitempty" yaml:"tools,omitempty"`
	SoftSkills           []string `json:"soft_skills,omitempty" yaml:"soft_skills,omitempty"`
}

// Certification is a professional certification
type Certification struct {
	Name         string `json:"name" yaml:"name" validate:"required"`
	Issuer       string `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	Date         string `json:"date,omitempty" yaml:"date,omitempty"`
	ExpiryDate   string `json:"expiry_date,omitempty" yaml:"expiry_date,omitempty"`
	CredentialID string `json:"credential_id,omitempty" yaml:"credential_id,omitempty"`
}

// Language is a spoken language with a proficiency label
type Language struct {
	Language    string `json:"language" yaml:"language" validate:"required"`
	Proficiency string `json:"proficiency,omitempty" yaml:"proficiency,omitempty"`
}

// CommonResponses are canned answers to compliance questions
type CommonResponses struct {
	Gender            string `json:"gender,omitempty" yaml:"gender,omitempty"`
	Ethnicity         string `json:"ethnicity,omitempty" yaml:"ethnicity,omitempty"`
	VisaStatus        string `json:"visa_status,omitempty" yaml:"visa_status,omitempty"`
	DisabilityStatus  string `json:"disability_status,omitempty" yaml:"disability_status,omitempty"`
	VeteranStatus     string `json:"veteran_status,omitempty" yaml:"veteran_status,omitempty"`
	CriminalRecord    string `json:"criminal_record,omitempty" yaml:"criminal_record,omitempty"`
	AgreeToTerms      string `json:"agree_to_terms,omitempty" yaml:"agree_to_terms,omitempty"`
	AgreeToBackground string `json:"agree_to_background,omitempty" yaml:"agree_to_background,omitempty"`
}

// AdditionalInfo holds free-form extras
type AdditionalInfo struct {
	Hobbies      []string    `json:"hobbies,omitempty" yaml:"hobbies,omitempty"`
	Achievements []string    `json:"achievements,omitempty" yaml:"achievements,omitempty"`
	Interests    []string    `json:"interests,omitempty" yaml:"interests,omitempty"`
	References   []Reference `json:"references,omitempty" yaml:"references,omitempty" validate:"dive"`
}

// Reference is a professional reference
type Reference struct {
	Name     string `json:"name" yaml:"name" validate:"required"`
	Position string `json:"position,omitempty" yaml:"position,omitempty"`
	Company  string `json:"company,omitempty" yaml:"company,omitempty"`
	Email    string `json:"email,omitempty" yaml:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty" yaml:"phone,omitempty"`
}

// FullName returns the display name
func (p *Profile) FullName() string {
	return p.Name
}

// BirthYear returns the year of birth from DateOfBirth (yyyy-mm-dd) or,
// failing that, from DOB (dd-mm-yyyy). Empty when neither is usable.
func (p *Profile) BirthYear() string {
	if p.DateOfBirth != "" {
		return strings.SplitN(p.DateOfBirth, "-", 2)[0]
	}
	if p.DOB != "" {
		parts := strings.Split(p.DOB, "-")
		if len(parts) == 3 {
			return parts[2]
		}
	}
	return ""
}

// FormattedPhone returns a 10-digit phone as ddd-ddd-dddd, otherwise the phone unchanged.
func (p *Profile) FormattedPhone() string {
	if p.Phone == "" {
		return ""
	}
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, p.Phone)
	if len(digits) == 10 {
		return digits[:3] + "-" + digits[3:6] + "-" + digits[6:]
	}
	return p.Phone
}

// LatestWork returns the most recent position, or nil when there is no work history.
func (p *Profile) LatestWork() *WorkExperience {
	if len(p.WorkExperience) == 0 {
		return nil
	}
	return &p.WorkExperience[0]
}

// FirstProject returns the first listed project, or nil.
func (p *Profile) FirstProject() *Project {
	if len(p.Projects) == 0 {
		return nil
	}
	return &p.Projects[0]
}
