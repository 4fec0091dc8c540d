package validation

import (
	"strings"
	"testing"
)

func TestValidateDeleteRequest(t *testing.T) {
	if errs := ValidateDeleteRequest(DeleteRequest{Location: "http://h/public/uploads/posts/a.jpg"}); len(errs) != 0 {
		t.Fatalf("expected valid request, got %v", errs)
	}

	errs := ValidateDeleteRequest(DeleteRequest{})
	if len(errs) != 1 || errs[0].Field != "Location" || errs[0].Message != "is required" {
		t.Fatalf("unexpected errors for empty location: %v", errs)
	}

	errs = ValidateDeleteRequest(DeleteRequest{Location: strings.Repeat("a", 2049)})
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "at most") {
		t.Fatalf("unexpected errors for long location: %v", errs)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "a", Message: "is required"},
		{Field: "b", Message: "must be >= 0"},
	}
	if got := errs.Error(); got != "a: is required; b: must be >= 0" {
		t.Fatalf("unexpected message %q", got)
	}
}
