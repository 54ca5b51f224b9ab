// Package mapper turns a raw JSON-LD job posting into a NormalizedRecord.
//
// Each of the six sections is read independently. A section reads all of its
// fields first; if any one is missing, null or of the wrong type the whole
// section is left absent and the others are unaffected.
package mapper

import (
	"jobpost-etl/internal/model"
	"jobpost-etl/internal/seniority"
	"jobpost-etl/internal/textclean"
)

// Result is a mapped record plus the reason each absent section fell back.
type Result struct {
	Record model.NormalizedRecord
	Absent map[model.Section]error
}

// Degraded reports whether at least one section fell back to nulls.
func (r Result) Degraded() bool { return len(r.Absent) > 0 }

// Map never fails; a document with nothing usable maps to a record whose six
// sections are all absent.
func Map(doc model.RawDocument) Result {
	res := Result{Absent: make(map[model.Section]error)}
	rec := &res.Record

	var err error
	if rec.Location, err = mapLocation(doc); err != nil {
		res.Absent[model.SectionLocation] = err
	}
	if rec.Salary, err = mapSalary(doc); err != nil {
		res.Absent[model.SectionSalary] = err
	}
	if rec.Job, err = mapJob(doc); err != nil {
		res.Absent[model.SectionJob] = err
	}
	if rec.Company, err = mapCompany(doc); err != nil {
		res.Absent[model.SectionCompany] = err
	}
	if rec.Education, err = mapEducation(doc); err != nil {
		res.Absent[model.SectionEducation] = err
	}
	if rec.Experience, err = mapExperience(doc); err != nil {
		res.Absent[model.SectionExperience] = err
	}
	return res
}

func mapLocation(doc model.RawDocument) (model.Location, error) {
	r := newReader(doc)
	country := r.text("jobLocation", "address", "addressCountry")
	locality := r.text("jobLocation", "address", "addressLocality")
	postal := r.text("jobLocation", "address", "postalCode")
	street := r.text("jobLocation", "address", "streetAddress")
	lat := r.number("jobLocation", "latitude")
	lng := r.number("jobLocation", "longitude")
	if r.err != nil {
		return model.Location{}, r.err
	}

	// Postings carry no separate region; locality doubles as region.
	region := locality
	return model.Location{
		Country:       &country,
		Locality:      &locality,
		Region:        &region,
		PostalCode:    &postal,
		StreetAddress: &street,
		Latitude:      &lat,
		Longitude:     &lng,
	}, nil
}

func mapSalary(doc model.RawDocument) (model.Salary, error) {
	r := newReader(doc)
	currency := r.text("estimatedSalary", "currency")
	minValue := r.number("estimatedSalary", "value", "minValue")
	maxValue := r.number("estimatedSalary", "value", "maxValue")
	unit := r.text("estimatedSalary", "value", "unitText")
	if r.err != nil {
		return model.Salary{}, r.err
	}
	return model.Salary{
		Currency: &currency,
		MinValue: &minValue,
		MaxValue: &maxValue,
		Unit:     &unit,
	}, nil
}

func mapJob(doc model.RawDocument) (model.Job, error) {
	r := newReader(doc)
	title := r.text("title")
	industry := r.text("industry")
	rawDesc := r.markup("description")
	employment := r.text("employmentType")
	posted := r.text("datePosted")
	if r.err != nil {
		return model.Job{}, r.err
	}

	desc := textclean.Clean(rawDesc)
	return model.Job{
		Title:          &title,
		Industry:       &industry,
		Description:    &desc,
		EmploymentType: &employment,
		DatePosted:     &posted,
	}, nil
}

func mapCompany(doc model.RawDocument) (model.Company, error) {
	r := newReader(doc)
	name := r.text("hiringOrganization", "name")
	link := r.text("hiringOrganization", "sameAs")
	if r.err != nil {
		return model.Company{}, r.err
	}
	return model.Company{Name: &name, Link: &link}, nil
}

func mapEducation(doc model.RawDocument) (model.Education, error) {
	r := newReader(doc)
	credential := r.text("educationRequirements", "credentialCategory")
	if r.err != nil {
		return model.Education{}, r.err
	}
	return model.Education{RequiredCredential: &credential}, nil
}

func mapExperience(doc model.RawDocument) (model.Experience, error) {
	r := newReader(doc)
	months := r.number("experienceRequirements", "monthsOfExperience")
	if r.err != nil {
		return model.Experience{}, r.err
	}

	level := string(seniority.Classify(months))
	return model.Experience{
		MonthsOfExperience: &months,
		SeniorityLevel:     &level,
	}, nil
}
