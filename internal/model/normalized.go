package model

// Section names one of the six normalized sub-records.
type Section string

const (
	SectionLocation   Section = "location"
	SectionSalary     Section = "salary"
	SectionJob        Section = "job"
	SectionCompany    Section = "company"
	SectionEducation  Section = "education"
	SectionExperience Section = "experience"
)

// Sections lists every section in the order they are written to disk.
var Sections = []Section{
	SectionLocation,
	SectionSalary,
	SectionJob,
	SectionCompany,
	SectionEducation,
	SectionExperience,
}

// NormalizedRecord is the mapped form of one posting. Each section is either
// fully populated or has every field nil; the zero value of a section is its
// absent form and encodes as an object of nulls.
type NormalizedRecord struct {
	Location   Location   `json:"location"`
	Salary     Salary     `json:"salary"`
	Job        Job        `json:"job"`
	Company    Company    `json:"company"`
	Education  Education  `json:"education"`
	Experience Experience `json:"experience"`
}

type Location struct {
	Country       *string  `json:"country"`
	Locality      *string  `json:"locality"`
	Region        *string  `json:"region"`
	PostalCode    *string  `json:"postal_code"`
	StreetAddress *string  `json:"street_address"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
}

type Salary struct {
	Currency *string  `json:"currency"`
	MinValue *float64 `json:"min_value"`
	MaxValue *float64 `json:"max_value"`
	Unit     *string  `json:"unit"`
}

type Job struct {
	Title          *string `json:"title"`
	Industry       *string `json:"industry"`
	Description    *string `json:"description"`
	EmploymentType *string `json:"employment_type"`
	DatePosted     *string `json:"date_posted"`
}

type Company struct {
	Name *string `json:"name"`
	Link *string `json:"link"`
}

type Education struct {
	RequiredCredential *string `json:"required_credential"`
}

type Experience struct {
	MonthsOfExperience *float64 `json:"months_of_experience"`
	SeniorityLevel     *string  `json:"seniority_level"`
}

func (l Location) Present() bool {
	return l.Country != nil && l.Locality != nil && l.Region != nil && l.PostalCode != nil &&
		l.StreetAddress != nil && l.Latitude != nil && l.Longitude != nil
}

func (s Salary) Present() bool {
	return s.Currency != nil && s.MinValue != nil && s.MaxValue != nil && s.Unit != nil
}

func (j Job) Present() bool {
	return j.Title != nil && j.Industry != nil && j.Description != nil &&
		j.EmploymentType != nil && j.DatePosted != nil
}

func (c Company) Present() bool { return c.Name != nil && c.Link != nil }

func (e Education) Present() bool { return e.RequiredCredential != nil }

func (e Experience) Present() bool {
	return e.MonthsOfExperience != nil && e.SeniorityLevel != nil
}

// Present reports, per section, whether it carries data.
func (r NormalizedRecord) Present() map[Section]bool {
	return map[Section]bool{
		SectionLocation:   r.Location.Present(),
		SectionSalary:     r.Salary.Present(),
		SectionJob:        r.Job.Present(),
		SectionCompany:    r.Company.Present(),
		SectionEducation:  r.Education.Present(),
		SectionExperience: r.Experience.Present(),
	}
}
