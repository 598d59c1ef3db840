package tracker

import (
	"testing"

	"github.com/foiaworks/foiad/internal/model"
)

func TestClassify(t *testing.T) {
	for _, tc := range []struct {
		name        string
		subject     string
		body        string
		attachments bool
		want        model.Classification
	}{
		{
			name:    "acknowledgment",
			subject: "Your public records request",
			body:    "We have received your request and it has been assigned reference 25-1042.",
			want:    model.ClassAcknowledgment,
		},
		{
			name:    "clarification",
			subject: "Re: records request 25-1042",
			body:    "Could you please clarify the date range and narrow the scope of your request?",
			want:    model.ClassClarificationRequest,
		},
		{
			name:    "fee notice",
			subject: "Fee estimate for request 25-1042",
			body:    "A deposit of $42.50 covering copying fees is due before processing continues.",
			want:    model.ClassFeeNotice,
		},
		{
			name:    "records delivered",
			subject: "Documents released",
			body:    "The responsive records are attached and also ready for download from the portal.",
			want:    model.ClassRecordsDelivered,
		},
		{
			name:    "denial",
			subject: "Determination on your request",
			body:    "After review we must deny your request; the material is exempt from disclosure.",
			want:    model.ClassDenial,
		},
		{
			name:    "extension",
			subject: "Response timeline",
			body:    "We are invoking an extension of time of 14 additional days to respond.",
			want:    model.ClassExtensionNotice,
		},
		{
			name:    "extension with acknowledgment wording",
			subject: "Your request",
			body:    "We received your request and require an extension of time to respond.",
			want:    model.ClassExtensionNotice,
		},
		{
			name:    "closure",
			subject: "Request closed",
			body:    "This request has been closed. Contact us with any questions.",
			want:    model.ClassClosureNotice,
		},
		{
			name:        "attachments force delivery",
			subject:     "FYI",
			body:        "See attached.",
			attachments: true,
			want:        model.ClassRecordsDelivered,
		},
		{
			name:    "unclassifiable",
			subject: "Office holiday hours",
			body:    "Our office will be closed Monday for the holiday.",
			want:    model.ClassNeedsHumanReview,
		},
		{
			name:    "conflicting strong categories",
			subject: "Mixed message",
			body:    "Your request is denied in part; the remaining records are ready for download.",
			want:    model.ClassNeedsHumanReview,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.subject, tc.body, tc.attachments)
			if got != tc.want {
				t.Errorf("Classify(%q) = %s, want %s", tc.name, got, tc.want)
			}
		})
	}
}

func TestExtensionDays(t *testing.T) {
	for _, tc := range []struct {
		body string
		want int
	}{
		{"We require 14 additional days to respond.", 14},
		{"an extension of 10 business days", 10},
		{"We need 7 more days.", 7},
		{"We are extending our response; a new date will follow.", 0},
		{"", 0},
	} {
		if got := ExtensionDays(tc.body); got != tc.want {
			t.Errorf("ExtensionDays(%q) = %d, want %d", tc.body, got, tc.want)
		}
	}
}

func TestReplyTemplate(t *testing.T) {
	for _, class := range []model.Classification{
		model.ClassClarificationRequest,
		model.ClassFeeNotice,
		model.ClassAcknowledgment,
	} {
		subject, body, ok := ReplyTemplate(class)
		if !ok || subject == "" || body == "" {
			t.Errorf("ReplyTemplate(%s) = %q, %q, %v", class, subject, body, ok)
		}
	}
	if _, _, ok := ReplyTemplate(model.ClassDenial); ok {
		t.Errorf("denial must not have a canned reply")
	}
}
