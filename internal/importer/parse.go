package importer

import (
	"regexp"
	"strings"

	"resume-builder/resume/model"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s().\-]{7,}\d`)
	urlPattern   = regexp.MustCompile(`https?://[^\s]+`)
)

var sectionHeadings = map[string]string{
	"summary":              "summary",
	"profile":              "summary",
	"about":                "summary",
	"skills":               "skills",
	"technical skills":     "skills",
	"experience":           "experience",
	"work experience":      "experience",
	"employment":           "experience",
	"education":            "education",
	"additional":           "additional",
	"interests":            "additional",
	"certifications":       "additional",
	"projects":             "additional",
	"awards":               "additional",
	"languages":            "additional",
	"volunteering":         "additional",
	"professional summary": "summary",
}

// ParseText normalizes free text into resume fields. The first non-empty line
// is the name; contact details are only detected before the first heading.
func ParseText(text string) model.ResumeData {
	lines := splitLines(text)
	var data model.ResumeData
	if len(lines) == 0 {
		return data
	}

	section := "summary"
	inHeader := true
	var summary, additional, experience, education []string
	for i, line := range lines {
		if i == 0 {
			data.PersonalInfo.FullName = line
			continue
		}
		if heading, ok := sectionHeadings[strings.ToLower(strings.TrimRight(line, ":"))]; ok {
			section = heading
			inHeader = false
			continue
		}
		if inHeader && captureContact(&data.PersonalInfo, line) {
			continue
		}
		switch section {
		case "skills":
			data.Skills = append(data.Skills, splitSkills(line)...)
		case "experience":
			experience = append(experience, line)
		case "education":
			education = append(education, line)
		case "additional":
			additional = append(additional, line)
		default:
			summary = append(summary, line)
		}
	}

	data.Summary = strings.Join(summary, " ")
	data.Additional = strings.Join(additional, "\n")
	if len(experience) > 0 {
		data.Experience = []model.Experience{{Role: experience[0], Highlights: experience[1:]}}
	}
	if len(education) > 0 {
		data.Education = []model.Education{{Institution: education[0]}}
	}
	return data
}

// captureContact records email, phone and links found on a line and reports
// whether the line held nothing else.
func captureContact(info *model.PersonalInfo, line string) bool {
	rest := line
	if m := emailPattern.FindString(rest); m != "" && info.Email == "" {
		info.Email = m
		rest = strings.Replace(rest, m, "", 1)
	}
	for _, m := range urlPattern.FindAllString(rest, -1) {
		info.Links = append(info.Links, strings.TrimRight(m, ".,;"))
		rest = strings.Replace(rest, m, "", 1)
	}
	if m := phonePattern.FindString(rest); m != "" && info.Phone == "" {
		info.Phone = strings.TrimSpace(m)
		rest = strings.Replace(rest, m, "", 1)
	}
	return rest != line && strings.Trim(rest, " |,·•-") == ""
}

func splitSkills(line string) []string {
	parts := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ';' || r == '|' || r == '•' || r == '·'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if s := strings.Join(strings.Fields(l), " "); s != "" {
			out = append(out, s)
		}
	}
	return out
}
