package generation

import (
	"strings"
	"testing"
)

func TestBuildPlanRequest(t *testing.T) {
	doc := "Symptoms:\n- Primary Complaint: knee pain going down stairs\n"
	req := BuildPlanRequest(doc)

	if req.Instructions != planInstructions {
		t.Error("instruction block must be the constant template, not derived from data")
	}
	if !strings.Contains(req.UserContent, doc) {
		t.Error("user content does not embed the assessment document")
	}
	if len(req.MediaURLs) != 0 {
		t.Errorf("plan request carries %d media refs, want 0", len(req.MediaURLs))
	}
}

func TestBuildExaminationRequest_PreservesMediaCount(t *testing.T) {
	urls := []string{"https://x/1.jpg", "https://x/2.jpg", "https://x/3.mp4"}
	req := BuildExaminationRequest("antalgic gait", urls)

	if len(req.MediaURLs) != 3 {
		t.Fatalf("len(MediaURLs) = %d, want 3", len(req.MediaURLs))
	}
	if !strings.Contains(req.UserContent, "3 media file(s)") {
		t.Errorf("user content does not state the declared media count: %q", req.UserContent)
	}

	// The request owns its own copy of the slice.
	urls[0] = "mutated"
	if req.MediaURLs[0] == "mutated" {
		t.Error("request shares the caller's media slice")
	}
}
