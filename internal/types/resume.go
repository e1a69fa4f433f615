package types

// PersonalInfo represents the contact block at the top of a resume
type PersonalInfo struct {
	Name     string `json:"name" validate:"required"`
	Title    string `json:"title,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Website  string `json:"website,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

// Experience represents one work experience entry
type Experience struct {
	ID          string   `json:"id,omitempty"`
	Company     string   `json:"company" validate:"required"`
	Position    string   `json:"position" validate:"required"`
	Location    string   `json:"location,omitempty"`
	StartDate   string   `json:"startDate,omitempty"`
	EndDate     string   `json:"endDate,omitempty"`
	Current     bool     `json:"current,omitempty"`
	Description []string `json:"description,omitempty"` // Bullet points
}

// Education represents one education entry
type Education struct {
	ID          string   `json:"id,omitempty"`
	Institution string   `json:"institution" validate:"required"`
	Degree      string   `json:"degree" validate:"required"`
	Field       string   `json:"field,omitempty"`
	Location    string   `json:"location,omitempty"`
	StartDate   string   `json:"startDate,omitempty"`
	EndDate     string   `json:"endDate,omitempty"`
	GPA         string   `json:"gpa,omitempty"`
	Highlights  []string `json:"highlights,omitempty"`
}

// Skill represents a named group of skills
type Skill struct {
	ID       string   `json:"id,omitempty"`
	Category string   `json:"category"`
	Items    []string `json:"items,omitempty"`
}

// Project represents a portfolio project
type Project struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Link         string   `json:"link,omitempty"`
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
}

// Resume represents a structured resume. Scoring never modifies it.
type Resume struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Summary      string       `json:"summary,omitempty"`
	Experience   []Experience `json:"experience,omitempty" validate:"dive"`
	Education    []Education  `json:"education,omitempty" validate:"dive"`
	Skills       []Skill      `json:"skills,omitempty"`
	Projects     []Project    `json:"projects,omitempty"`
	SectionOrder []string     `json:"sectionOrder,omitempty"`
}
