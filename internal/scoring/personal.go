package scoring

import (
	"regexp"
	"strings"

	"atscore/internal/types"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\-\(\)\.\s]{7,}$`)
)

const minPhoneDigits = 7

// validPhone accepts digits with common separators and at least
// minPhoneDigits digits.
func validPhone(phone string) bool {
	if !phonePattern.MatchString(phone) {
		return false
	}
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= minPhoneDigits
}

var datedEmailDomains = []string{"hotmail.com", "aol.com"}

type personalInfoScorer struct {
	weight      float64
	commendable float64
}

func (personalInfoScorer) Kind() types.SectionKind { return types.SectionPersonalInfo }

func (p personalInfoScorer) Score(doc *Document) (types.SectionScore, bool) {
	info := doc.Resume.PersonalInfo
	s := newSheet(types.SectionPersonalInfo)

	if len(strings.TrimSpace(info.Name)) > 1 {
		s.add(25)
		s.strength("Name is clearly provided")
	} else {
		s.issue(types.SeverityCritical, "Missing or incomplete name")
	}

	email := strings.TrimSpace(info.Email)
	switch {
	case email == "":
		s.issue(types.SeverityCritical, "Missing email address")
		s.suggest(types.SeverityMajor, "Add a professional email address")
	case !emailPattern.MatchString(email):
		s.issue(types.SeverityMajor, "Email address %q is not valid", email)
	default:
		s.add(25)
		for _, domain := range datedEmailDomains {
			if strings.HasSuffix(strings.ToLower(email), "@"+domain) {
				s.suggest(types.SeverityMinor, "Consider an email address on a more modern provider than %s", domain)
			}
		}
	}

	phone := strings.TrimSpace(info.Phone)
	switch {
	case phone == "":
		s.issue(types.SeverityMajor, "Missing phone number")
		s.suggest(types.SeverityMinor, "Include a phone number for recruiter contact")
	case !validPhone(phone):
		s.issue(types.SeverityMajor, "Phone number %q looks incomplete", phone)
	default:
		s.add(20)
	}

	if len(strings.TrimSpace(info.Location)) > 2 {
		s.add(10)
	} else {
		s.suggest(types.SeverityMinor, "Add a location (City, State) for local job matching")
	}

	switch {
	case !blank(info.LinkedIn) || !blank(info.GitHub) || !blank(info.Website):
		s.add(20)
		if !blank(info.LinkedIn) {
			s.strength("LinkedIn profile included")
		}
		if !blank(info.GitHub) {
			s.strength("GitHub profile showcases technical work")
		}
	default:
		s.suggest(types.SeverityMinor, "Add a LinkedIn, GitHub or personal website link")
	}

	return s.result(p.weight, p.commendable), true
}
