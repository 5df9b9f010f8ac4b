package model

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// DefaultTitle is used when a resume has no usable title.
const DefaultTitle = "My Resume"

// DefaultSectionOrder is the builder's section order for a fresh draft.
var DefaultSectionOrder = []string{"personalInfo", "summary", "experience", "education", "skills", "additional"}

// ResumeData is the persisted content of a resume.
type ResumeData struct {
	PersonalInfo PersonalInfo `json:"personalInfo" yaml:"personalInfo"`
	Summary      string       `json:"summary" yaml:"summary"`
	Experience   []Experience `json:"experience" yaml:"experience"`
	Education    []Education  `json:"education" yaml:"education"`
	Skills       []string     `json:"skills" yaml:"skills"`
	Additional   string       `json:"additional,omitempty" yaml:"additional,omitempty"`
	SectionOrder []string     `json:"sectionOrder,omitempty" yaml:"sectionOrder,omitempty"`
}

// Draft is unpersisted resume content held by the client session.
type Draft struct {
	ResumeData `yaml:",inline"`
	Template   string `json:"template" yaml:"template"`
	Progress   int    `json:"progress" yaml:"progress"`
}

// PersonalInfo captures contact and identity details.
type PersonalInfo struct {
	FullName string   `json:"fullName" yaml:"fullName"`
	Title    string   `json:"title,omitempty" yaml:"title,omitempty"`
	Email    string   `json:"email,omitempty" yaml:"email,omitempty"`
	Phone    string   `json:"phone,omitempty" yaml:"phone,omitempty"`
	Location string   `json:"location,omitempty" yaml:"location,omitempty"`
	Links    []string `json:"links,omitempty" yaml:"links,omitempty"`
}

// Experience represents a work history entry.
type Experience struct {
	Company    string   `json:"company" yaml:"company"`
	Role       string   `json:"role" yaml:"role"`
	Location   string   `json:"location,omitempty" yaml:"location,omitempty"`
	Start      string   `json:"start,omitempty" yaml:"start,omitempty"`
	End        string   `json:"end,omitempty" yaml:"end,omitempty"`
	Highlights []string `json:"highlights,omitempty" yaml:"highlights,omitempty"`
}

// Education represents an education entry.
type Education struct {
	Institution string `json:"institution" yaml:"institution"`
	Degree      string `json:"degree,omitempty" yaml:"degree,omitempty"`
	Field       string `json:"field,omitempty" yaml:"field,omitempty"`
	Start       string `json:"start,omitempty" yaml:"start,omitempty"`
	End         string `json:"end,omitempty" yaml:"end,omitempty"`
}

// Validate enforces formatting rules for ResumeData.
func (d ResumeData) Validate() error {
	for i, link := range d.PersonalInfo.Links {
		if !isFullURL(strings.TrimSpace(link)) {
			return fmt.Errorf("links[%d] must be a full URL", i)
		}
	}
	for i, exp := range d.Experience {
		if strings.TrimSpace(exp.Company) == "" && strings.TrimSpace(exp.Role) == "" {
			return fmt.Errorf("experience[%d] requires company or role", i)
		}
		if err := validateDateField(exp.Start, fmt.Sprintf("experience[%d].start", i)); err != nil {
			return err
		}
		if err := validateDateField(exp.End, fmt.Sprintf("experience[%d].end", i)); err != nil {
			return err
		}
	}
	for i, edu := range d.Education {
		if strings.TrimSpace(edu.Institution) == "" {
			return fmt.Errorf("education[%d].institution is required", i)
		}
		if err := validateDateField(edu.Start, fmt.Sprintf("education[%d].start", i)); err != nil {
			return err
		}
		if err := validateDateField(edu.End, fmt.Sprintf("education[%d].end", i)); err != nil {
			return err
		}
	}
	return nil
}

// TitleFor derives a resume title from its content.
func TitleFor(d ResumeData) string {
	name := strings.TrimSpace(d.PersonalInfo.FullName)
	if name == "" {
		return DefaultTitle
	}
	return name + " Resume"
}

// NewDraft returns an empty draft for the given template.
func NewDraft(template string) Draft {
	order := make([]string, len(DefaultSectionOrder))
	copy(order, DefaultSectionOrder)
	return Draft{
		ResumeData: ResumeData{SectionOrder: order},
		Template:   template,
	}
}

var resumeDatePattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

func isFullURL(value string) bool {
	if value == "" {
		return false
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}

func validateDateField(value, field string) error {
	if value == "" || value == "Present" {
		return nil
	}
	if !resumeDatePattern.MatchString(value) {
		return fmt.Errorf("%s must be YYYY-MM or Present", field)
	}
	return nil
}
