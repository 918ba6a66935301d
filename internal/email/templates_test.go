package email

import (
	"strings"
	"testing"
)

func TestRenderLeadCapturedTemplate(t *testing.T) {
	content, err := renderEmailTemplate("lead_captured.html", leadCapturedEmailData{
		baseEmailData: baseEmailData{Title: "New lead", Heading: "New lead captured"},
		LeadName:      "Ana Lima",
		Source:        "website_form",
		Message:       "We need a rebrand.",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{"New lead captured", "Ana Lima", "website_form", "We need a rebrand."} {
		if !strings.Contains(content, want) {
			t.Fatalf("rendered email missing %q", want)
		}
	}
}

func TestRenderEscapesHTML(t *testing.T) {
	content, err := renderEmailTemplate("lead_captured.html", leadCapturedEmailData{
		baseEmailData: baseEmailData{Title: "New lead", Heading: "New lead captured"},
		LeadName:      "<script>alert(1)</script>",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(content, "<script>") {
		t.Fatal("lead name was not escaped")
	}
}

func TestRenderFollowUpTemplate(t *testing.T) {
	content, err := renderEmailTemplate("follow_up.html", followUpEmailData{
		baseEmailData: baseEmailData{Title: "Follow up needed", Heading: "Follow up needed"},
		LeadName:      "Ana Lima",
		StageTitle:    "Qualification",
		DaysStalled:   4,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(content, "4 days") {
		t.Fatalf("rendered email missing stall duration: %s", content)
	}
}
