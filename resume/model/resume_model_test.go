package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestResumeDataValidateRejectsBadDates(t *testing.T) {
	data := ResumeData{
		Experience: []Experience{{Company: "Acme", Start: "2021/01"}},
	}
	err := data.Validate()
	if err == nil {
		t.Fatal("expected date validation error")
	}
	if !strings.Contains(err.Error(), "experience[0].start") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResumeDataValidateRejectsRelativeLinks(t *testing.T) {
	data := ResumeData{PersonalInfo: PersonalInfo{Links: []string{"github.com/me"}}}
	if err := data.Validate(); err == nil {
		t.Fatal("expected link validation error")
	}
}

func TestResumeDataValidateAcceptsPresent(t *testing.T) {
	data := ResumeData{
		Experience: []Experience{{Role: "Engineer", Start: "2020-03", End: "Present"}},
		Education:  []Education{{Institution: "State University", End: "2019-06"}},
	}
	if err := data.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestTitleFor(t *testing.T) {
	if got := TitleFor(ResumeData{}); got != DefaultTitle {
		t.Fatalf("expected %q, got %q", DefaultTitle, got)
	}
	got := TitleFor(ResumeData{PersonalInfo: PersonalInfo{FullName: " Ada Lovelace "}})
	if got != "Ada Lovelace Resume" {
		t.Fatalf("unexpected title %q", got)
	}
}

func TestDraftJSONIsFlat(t *testing.T) {
	d := NewDraft("modern")
	d.Summary = "Builder of things"
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if generic["summary"] != "Builder of things" || generic["template"] != "modern" {
		t.Fatalf("unexpected draft json: %s", raw)
	}
}

func TestNewDraftCopiesSectionOrder(t *testing.T) {
	d := NewDraft("classic")
	d.SectionOrder[0] = "skills"
	if DefaultSectionOrder[0] != "personalInfo" {
		t.Fatal("NewDraft must not share the default section order slice")
	}
}
