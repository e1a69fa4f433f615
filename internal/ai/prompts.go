package ai

import "strings"

// ExtractSystemPrompt is the system instruction for resume extraction
const ExtractSystemPrompt = `You are a professional resume parser with a strict commitment to accuracy. Your core principles are:

- NEVER invent skills, employers, dates or achievements
- Every extracted value must be directly traceable to the resume text
- Leave a field empty when the text does not contain it
- Preserve technical terms, company names and proper nouns exactly as written`

// ExtractUserPrompt is the extraction template. The resume text replaces
// the %RESUME% placeholder; it is substituted literally so percent signs in
// the resume survive.
const ExtractUserPrompt = `Extract structured information from the resume text below and return it as JSON.

**Date format rules (must follow exactly):**
All dates must use one of these formats only:
- "YYYY-MM" (e.g. "2020-01"), preferred whenever a month is known
- "YYYY" (e.g. "2020")
- "present" (lowercase) for current or ongoing positions

Never use "Jan 2020", "01/2020" or "2020-present".
Convert "Present", "Current", "Now" and "Ongoing" to "present".
Examples: "Jan 2020" becomes "2020-01", "Sept 2018" becomes "2018-09", "June 2023" becomes "2023-06".
Month numbers: Jan=01, Feb=02, Mar=03, Apr=04, May=05, Jun=06, Jul=07, Aug=08, Sep=09, Oct=10, Nov=11, Dec=12

**Extraction rules:**
1. personalInfo.name is required: extract the person's full name
2. Keep bullet points concise and preserve the original wording
3. Group skills into logical categories (e.g. "Programming Languages", "Frameworks", "Tools", "Soft Skills")
4. Use an empty array for a section the resume does not have
5. Set current=true for jobs that are ongoing (endDate "present")
6. For education, extract the degree type (e.g. "BS", "MS", "PhD", "Bachelor of Science")
7. For LinkedIn and GitHub, extract the username when possible, otherwise the full URL

**Resume text:**
-----
%RESUME%
-----`

// BuildExtractPrompt fills the extraction template with resume text
func BuildExtractPrompt(resumeText string) string {
	return strings.Replace(ExtractUserPrompt, "%RESUME%", resumeText, 1)
}
