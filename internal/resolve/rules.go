package resolve

import (
	"fmt"
	"strings"

	"github.com/jonathan/formfill/internal/types"
)

// StudentDOB is the fixed answer to the literal "Student DOB" question. The form
// that asks it rejects anything but this exact dd-mm-yyyy string.
const StudentDOB = "12-03-2003"

// Rule maps questions it matches to a profile value.
type Rule struct {
	Name  string
	Match func(q Question) bool
	Value func(p *types.Profile) string
}

func exactly(texts ...string) func(Question) bool {
	return func(q Question) bool { return q.Is(texts...) }
}

func anyOf(keywords ...string) func(Question) bool {
	return func(q Question) bool { return q.Any(keywords...) }
}

func allOf(keywords ...string) func(Question) bool {
	return func(q Question) bool { return q.All(keywords...) }
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func join(values []string) string {
	return strings.Join(values, ", ")
}

func work(field func(w *types.WorkExperience) string) func(*types.Profile) string {
	return func(p *types.Profile) string {
		if w := p.LatestWork(); w != nil {
			return field(w)
		}
		return ""
	}
}

func project(field func(pr *types.Project) string) func(*types.Profile) string {
	return func(p *types.Profile) string {
		if pr := p.FirstProject(); pr != nil {
			return field(pr)
		}
		return ""
	}
}

func link(name string) func(*types.Profile) string {
	return func(p *types.Profile) string { return p.Links[name] }
}

func normalizeUID(uid string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, strings.ToLower(uid))
}

func formatLanguages(langs []types.Language) string {
	out := make([]string, 0, len(langs))
	for _, l := range langs {
		if l.Proficiency == "" {
			out = append(out, l.Language)
			continue
		}
		out = append(out, fmt.Sprintf("%s (%s)", l.Language, l.Proficiency))
	}
	return join(out)
}

func formatReference(refs []types.Reference) string {
	if len(refs) == 0 {
		return ""
	}
	r := refs[0]
	return fmt.Sprintf("%s, %s at %s, %s, %s", r.Name, r.Position, r.Company, r.Email, r.Phone)
}

// DefaultRules returns the rule cascade in priority order. The first rule whose
// Match succeeds decides the answer.
func DefaultRules() []Rule {
	var rules []Rule
	rules = append(rules, overrideRules()...)
	rules = append(rules, identityRules()...)
	rules = append(rules, educationRules()...)
	rules = append(rules, applicationRules()...)
	rules = append(rules, addressRules()...)
	rules = append(rules, workRules()...)
	rules = append(rules, projectRules()...)
	rules = append(rules, skillRules()...)
	rules = append(rules, complianceRules()...)
	rules = append(rules, linkRules()...)
	rules = append(rules, additionalRules()...)
	return rules
}

func overrideRules() []Rule {
	return []Rule{
		{"override.student_dob", exactly("student dob"), func(*types.Profile) string { return StudentDOB }},
		{"override.university_roll_no", exactly("university roll no"), func(p *types.Profile) string {
			return firstNonEmpty(p.UniversityRollNo, p.UID)
		}},
		{"override.personal_email", exactly("personal email id (not college domain)", "personal email id"), func(p *types.Profile) string {
			return p.PersonalEmail
		}},
		{"override.college_email", exactly("college domain email id"), func(p *types.Profile) string {
			return p.CollegeDomainEmail
		}},
		{"override.tenth_percentage", exactly("10th percentage"), func(p *types.Profile) string {
			return firstNonEmpty(p.Education.TenthPercentage, p.Education.SchoolPercentage)
		}},
		{"override.twelfth_percentage", exactly("12th percentage"), func(p *types.Profile) string {
			return firstNonEmpty(p.Education.TwelfthPercentage, p.Education.IntermediatePercentage)
		}},
		{"override.graduation_percentage", exactly("graduation percentage"), func(p *types.Profile) string {
			return firstNonEmpty(p.Education.GraduationPercentage, p.Education.Percentage)
		}},
		{"override.post_graduation_percentage", exactly("post graduation percentage"), func(p *types.Profile) string {
			return firstNonEmpty(p.Education.PostGraduationPercentage, p.Education.Percentage)
		}},
	}
}

func identityRules() []Rule {
	return []Rule{
		{"identity.uid", func(q Question) bool {
			return q.Any("uid", "id", "identifier") && !q.Any("email", "mail")
		}, func(p *types.Profile) string { return normalizeUID(p.UID) }},
		{"identity.name", func(q Question) bool {
			return q.Has("name") && !q.Any("company", "school", "university", "college")
		}, func(p *types.Profile) string { return p.FullName() }},
		{"identity.personal_email", func(q Question) bool {
			return q.Has("email") && q.Any("personal", "gmail")
		}, func(p *types.Profile) string { return p.PersonalEmail }},
		{"identity.college_email", func(q Question) bool {
			return q.Has("email") && q.Any("college", "university", "edu")
		}, func(p *types.Profile) string { return p.CollegeDomainEmail }},
		{"identity.email", anyOf("email"), func(p *types.Profile) string { return p.Email }},
		{"identity.alternate_phone", func(q Question) bool {
			return q.Any("phone", "mobile", "contact") && q.Any("alternate", "secondary")
		}, func(p *types.Profile) string { return p.AlternatePhone }},
		{"identity.phone", anyOf("phone", "mobile", "contact"), func(p *types.Profile) string { return p.Phone }},
		{"identity.dob", anyOf("date of birth", "dob", "birth date"), func(p *types.Profile) string {
			return firstNonEmpty(p.DOB, p.DateOfBirth)
		}},
		{"identity.age", anyOf("age"), func(p *types.Profile) string { return p.Age }},
		{"identity.gender", anyOf("gender", "sex"), func(p *types.Profile) string { return p.Gender }},
		{"identity.marital_status", anyOf("marital", "married"), func(p *types.Profile) string { return p.MaritalStatus }},
		{"identity.nationality", anyOf("nationality", "citizen"), func(p *types.Profile) string { return p.Nationality }},
	}
}

func educationRules() []Rule {
	institution := anyOf("university", "college", "institution")
	degree := anyOf("course", "program", "programme", "degree")
	percentage := anyOf("percentage")
	return []Rule{
		{"education.pg_university", func(q Question) bool {
			return institution(q) && q.Any("post", "pg")
		}, func(p *types.Profile) string { return p.Education.PostGraduationUniversity }},
		{"education.ug_university", func(q Question) bool {
			return institution(q) && q.Any("graduation", "ug")
		}, func(p *types.Profile) string { return p.Education.GraduationUniversity }},
		{"education.institution", institution, func(p *types.Profile) string { return p.Education.School }},
		{"education.pg_degree", func(q Question) bool {
			return degree(q) && q.Any("post", "pg")
		}, func(p *types.Profile) string { return firstNonEmpty(p.Education.PostGraduationDegree, "N/A") }},
		{"education.degree", degree, func(p *types.Profile) string { return p.Education.Degree }},
		{"education.cgpa", anyOf("cgpa"), func(p *types.Profile) string { return p.Education.CGPA }},
		{"education.school_percentage", func(q Question) bool {
			return percentage(q) && q.Any("school", "10th", "x", "ssc")
		}, func(p *types.Profile) string { return p.Education.SchoolPercentage }},
		{"education.intermediate_percentage", func(q Question) bool {
			return percentage(q) && q.Any("intermediate", "12th", "xii", "higher secondary", "hsc")
		}, func(p *types.Profile) string { return p.Education.IntermediatePercentage }},
		{"education.pg_percentage", func(q Question) bool {
			return percentage(q) && q.Any("post", "pg")
		}, func(p *types.Profile) string { return p.Education.PostGraduationPercentage }},
		{"education.graduation_percentage", func(q Question) bool {
			return percentage(q) && q.Any("graduation", "ug", "grad percentage")
		}, func(p *types.Profile) string { return p.Education.GraduationPercentage }},
		{"education.percentage", percentage, func(p *types.Profile) string { return p.Education.Percentage }},
		{"education.tenth", func(q Question) bool {
			return q.Has("10th") || (q.Has("10") && q.Has("%"))
		}, func(p *types.Profile) string {
			return firstNonEmpty(p.Education.TenthPercentage, p.Education.SchoolPercentage)
		}},
		{"education.twelfth", func(q Question) bool {
			return q.Has("12th") || (q.Has("12") && q.Has("%"))
		}, func(p *types.Profile) string {
			return firstNonEmpty(p.Education.TwelfthPercentage, p.Education.IntermediatePercentage)
		}},
		{"education.intermediate_board", func(q Question) bool {
			return q.Has("board") && q.Any("intermediate", "12th") && !q.Any("school", "10th")
		}, func(p *types.Profile) string { return p.Education.IntermediateBoard }},
		{"education.board", anyOf("board"), func(p *types.Profile) string { return p.Education.SchoolBoard }},
		{"education.semester", anyOf("semester", "sem"), func(p *types.Profile) string { return p.Education.CurrentSemester }},
		{"education.section", anyOf("section", "sec"), func(p *types.Profile) string { return p.Education.Section }},
		{"education.total_backlogs", func(q Question) bool {
			return q.Has("backlog") && q.Has("total") && !q.Has("current")
		}, func(p *types.Profile) string { return p.Education.TotalBacklogs }},
		{"education.backlogs", anyOf("backlog"), func(p *types.Profile) string { return p.Education.CurrentBacklogs }},
		{"education.batch", anyOf("batch", "passing", "graduation year"), func(p *types.Profile) string { return p.Education.Batch }},
		{"education.expected_graduation", allOf("expected", "graduation"), func(p *types.Profile) string {
			return p.Education.ExpectedGraduationDate
		}},
		{"education.stream", anyOf("stream", "specialization", "branch"), func(p *types.Profile) string { return p.Education.Stream }},
		{"education.major", anyOf("major", "field of study"), func(p *types.Profile) string { return p.Education.Major }},
	}
}

func applicationRules() []Rule {
	return []Rule{
		{"application.position", func(q Question) bool {
			return q.Any("position", "role", "applying for") && !q.Has("project")
		}, func(p *types.Profile) string { return p.Application.Position }},
		{"application.registered", anyOf("registered", "corporate link"), func(p *types.Profile) string {
			return p.Application.RegisteredOnCorporateLink
		}},
		{"application.registration_reason", allOf("reason", "registration"), func(p *types.Profile) string {
			return p.Application.RegistrationReason
		}},
		{"application.preferred_location", anyOf("preferred location", "work location"), func(p *types.Profile) string {
			return p.Application.PreferredLocation
		}},
		{"application.relocate", anyOf("relocate"), func(p *types.Profile) string { return p.Application.WillingToRelocate }},
		{"application.notice_period", anyOf("notice period"), func(p *types.Profile) string { return p.Application.NoticePeriod }},
		{"application.expected_salary", allOf("expected", "salary"), func(p *types.Profile) string { return p.Application.ExpectedSalary }},
		{"application.current_ctc", allOf("current", "ctc"), func(p *types.Profile) string { return p.Application.CurrentCTC }},
		{"application.expected_ctc", allOf("expected", "ctc"), func(p *types.Profile) string { return p.Application.ExpectedCTC }},
		{"application.job_change_reason", allOf("reason", "job change"), func(p *types.Profile) string {
			return p.Application.ReasonForJobChange
		}},
		{"application.referred_by", anyOf("referred"), func(p *types.Profile) string { return p.Application.ReferredBy }},
		{"application.interview_availability", allOf("available", "interview"), func(p *types.Profile) string {
			return p.Application.AvailableForInterview
		}},
		{"application.work_model", anyOf("work model", "remote", "hybrid"), func(p *types.Profile) string {
			return p.Application.PreferredWorkModel
		}},
	}
}

func addressRules() []Rule {
	var rules []Rule
	parts := []struct {
		name     string
		keywords []string
		field    func(a types.Address) string
	}{
		{"street", []string{"address"}, func(a types.Address) string { return a.Street }},
		{"city", []string{"city"}, func(a types.Address) string { return a.City }},
		{"state", []string{"state"}, func(a types.Address) string { return a.State }},
		{"zip_code", []string{"zip", "postal"}, func(a types.Address) string { return a.ZipCode }},
		{"country", []string{"country"}, func(a types.Address) string { return a.Country }},
	}
	for _, part := range parts {
		matches := anyOf(part.keywords...)
		field := part.field
		rules = append(rules,
			Rule{"address.permanent_" + part.name, func(q Question) bool {
				return matches(q) && q.Has("permanent")
			}, func(p *types.Profile) string { return field(p.Address.Permanent) }},
			Rule{"address." + part.name, matches, func(p *types.Profile) string { return field(p.Address.Current) }},
		)
	}
	return rules
}

func workRules() []Rule {
	return []Rule{
		{"work.company", anyOf("company", "employer"), work(func(w *types.WorkExperience) string { return w.Company })},
		{"work.title", anyOf("job title", "designation"), work(func(w *types.WorkExperience) string { return w.Position })},
		{"work.start_date", allOf("start date", "work"), work(func(w *types.WorkExperience) string { return w.StartDate })},
		{"work.end_date", allOf("end date", "work"), work(func(w *types.WorkExperience) string { return w.EndDate })},
		{"work.duration", allOf("duration", "work"), work(func(w *types.WorkExperience) string { return w.Duration })},
		{"work.location", allOf("work", "location"), work(func(w *types.WorkExperience) string { return w.Location })},
		{"work.responsibilities", anyOf("responsibilities"), work(func(w *types.WorkExperience) string { return w.Responsibilities })},
		{"work.technologies", allOf("technologies", "work"), work(func(w *types.WorkExperience) string { return w.Technologies })},
		{"work.achievements", allOf("achievements", "work"), work(func(w *types.WorkExperience) string { return w.Achievements })},
		{"work.description", anyOf("experience", "job description"), work(func(w *types.WorkExperience) string { return w.Description })},
	}
}

func projectRules() []Rule {
	return []Rule{
		{"project.title", allOf("project", "title"), project(func(p *types.Project) string { return p.Title })},
		{"project.description", allOf("project", "description"), project(func(p *types.Project) string { return p.Description })},
		{"project.technologies", allOf("project", "technologies"), project(func(p *types.Project) string { return p.Technologies })},
		{"project.role", allOf("project", "role"), project(func(p *types.Project) string { return p.Role })},
		{"project.duration", allOf("project", "duration"), project(func(p *types.Project) string { return p.Duration })},
		{"project.link", allOf("project", "link"), project(func(p *types.Project) string { return p.Link })},
	}
}

func skillRules() []Rule {
	return []Rule{
		{"skills.programming_languages", allOf("programming", "languages"), func(p *types.Profile) string {
			return join(p.Skills.ProgrammingLanguages)
		}},
		{"skills.frameworks", anyOf("frameworks"), func(p *types.Profile) string { return join(p.Skills.Frameworks) }},
		{"skills.databases", anyOf("databases"), func(p *types.Profile) string { return join(p.Skills.Databases) }},
		{"skills.tools", anyOf("tools"), func(p *types.Profile) string { return join(p.Skills.Tools) }},
		{"skills.soft", anyOf("soft skills"), func(p *types.Profile) string { return join(p.Skills.SoftSkills) }},
		{"skills.technical", func(q Question) bool {
			return q.Has("skills") && !q.Has("soft")
		}, func(p *types.Profile) string {
			merged := append(append([]string{}, p.Skills.ProgrammingLanguages...), p.Skills.Frameworks...)
			return join(merged)
		}},
		{"skills.certification", anyOf("certification"), func(p *types.Profile) string {
			if len(p.Certifications) == 0 {
				return ""
			}
			return p.Certifications[0].Name
		}},
		{"skills.languages", func(q Question) bool {
			return q.Has("language") && !q.Has("programming")
		}, func(p *types.Profile) string { return formatLanguages(p.Languages) }},
	}
}

func complianceRules() []Rule {
	return []Rule{
		{"compliance.ethnicity", anyOf("ethnicity", "race"), func(p *types.Profile) string { return p.CommonResponses.Ethnicity }},
		{"compliance.visa", anyOf("visa", "work authorization"), func(p *types.Profile) string { return p.CommonResponses.VisaStatus }},
		{"compliance.disability", anyOf("disability"), func(p *types.Profile) string { return p.CommonResponses.DisabilityStatus }},
		{"compliance.veteran", anyOf("veteran"), func(p *types.Profile) string { return p.CommonResponses.VeteranStatus }},
		{"compliance.criminal_record", anyOf("criminal"), func(p *types.Profile) string { return p.CommonResponses.CriminalRecord }},
		{"compliance.terms", allOf("terms", "agree"), func(p *types.Profile) string { return p.CommonResponses.AgreeToTerms }},
		{"compliance.background_check", allOf("background", "check"), func(p *types.Profile) string {
			return p.CommonResponses.AgreeToBackground
		}},
	}
}

func linkRules() []Rule {
	names := []string{"linkedin", "github", "portfolio", "twitter", "stackoverflow", "medium"}
	rules := make([]Rule, 0, len(names))
	for _, n := range names {
		rules = append(rules, Rule{"links." + n, anyOf(n), link(n)})
	}
	return rules
}

func additionalRules() []Rule {
	return []Rule{
		{"additional.hobbies", anyOf("hobbies"), func(p *types.Profile) string { return join(p.AdditionalInfo.Hobbies) }},
		{"additional.achievements", func(q Question) bool {
			return q.Has("achievements") && !q.Has("work")
		}, func(p *types.Profile) string { return join(p.AdditionalInfo.Achievements) }},
		{"additional.interests", anyOf("interests"), func(p *types.Profile) string { return join(p.AdditionalInfo.Interests) }},
		{"additional.reference", anyOf("reference"), func(p *types.Profile) string {
			return formatReference(p.AdditionalInfo.References)
		}},
	}
}
