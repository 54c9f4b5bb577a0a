package classify

import "strings"

// Seniority is the derived seniority band for a job title.
type Seniority string

// Seniority bands, most senior categories listed first.
const (
	SeniorityIntern     Seniority = "INTERN"
	SeniorityLeadership Seniority = "LEADERSHIP"
	SeniorityStaff      Seniority = "STAFF"
	SeniorityLead       Seniority = "LEAD"
	SenioritySenior     Seniority = "SENIOR"
	SeniorityJunior     Seniority = "JUNIOR"
	SeniorityMid        Seniority = "MID"
)

var (
	internKeywords     = []string{"intern", "internship", "apprentice"}
	leadershipKeywords = []string{"director", "vp", "vice president", "head of", "cpo", "chief product"}
	staffKeywords      = []string{"staff", "principal", "distinguished"}
	leadKeywords       = []string{"lead", "group", "group product"}
	seniorKeywords     = []string{"senior", "sr."}
	juniorKeywords     = []string{"junior", "associate", "entry", "entry-level", "entry level", "jr."}
)

// ClassifySeniority maps a job title to a seniority band via an ordered
// cascade. Intern is checked first (an "Engineering Director Intern" is still
// an intern), then the bands from most to least senior, so a title matching
// several keywords resolves to the most senior one. Default is MID.
func ClassifySeniority(title string) Seniority {
	t := strings.ToLower(title)

	switch {
	case containsAny(t, internKeywords):
		return SeniorityIntern
	case containsAny(t, leadershipKeywords):
		return SeniorityLeadership
	case containsAny(t, staffKeywords):
		return SeniorityStaff
	case containsAny(t, leadKeywords):
		return SeniorityLead
	case containsAny(t, seniorKeywords):
		return SenioritySenior
	case containsAny(t, juniorKeywords):
		return SeniorityJunior
	}
	return SeniorityMid
}
