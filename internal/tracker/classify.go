package tracker

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/foiaworks/foiad/internal/model"
)

// Classification is keyword-driven and deliberately conservative: a message
// matching no rule, or rules from more than one category, is tagged
// needs-human-review instead of being guessed into a wrong bucket.

var classRules = []struct {
	class   model.Classification
	phrases []string
}{
	{model.ClassRecordsDelivered, []string{
		"records are available",
		"documents are ready",
		"responsive records are attached",
		"ready for download",
		"records have been released",
		"released to you",
	}},
	{model.ClassDenial, []string{
		"request is denied",
		"has been denied",
		"must deny",
		"no responsive records",
		"exempt from disclosure",
		"withholding the requested",
	}},
	{model.ClassExtensionNotice, []string{
		"extension of time",
		"additional time to respond",
		"extend the due date",
		"extending our response",
	}},
	{model.ClassFeeNotice, []string{
		"fee estimate",
		"invoice",
		"payment is required",
		"deposit of",
		"copying fees",
	}},
	{model.ClassClarificationRequest, []string{
		"please clarify",
		"clarification",
		"narrow the scope",
		"more specific",
		"additional information about your request",
	}},
	{model.ClassClosureNotice, []string{
		"request has been closed",
		"closing this request",
		"consider this request closed",
	}},
	{model.ClassAcknowledgment, []string{
		"received your request",
		"request has been received",
		"thank you for your request",
		"has been assigned reference",
	}},
}

// Classify maps an inbound message to the action taxonomy. hasAttachments
// marks messages carrying record blobs, which are delivery regardless of
// wording.
func Classify(subject, body string, hasAttachments bool) model.Classification {
	if hasAttachments {
		return model.ClassRecordsDelivered
	}

	text := strings.ToLower(subject + "\n" + body)

	var matched []model.Classification
	for _, rule := range classRules {
		for _, phrase := range rule.phrases {
			if strings.Contains(text, phrase) {
				matched = append(matched, rule.class)
				break
			}
		}
	}

	switch len(matched) {
	case 1:
		return matched[0]
	case 2:
		// An extension notice usually acknowledges the request in the same
		// breath; the extension is the operative part.
		if matched[0] == model.ClassExtensionNotice && matched[1] == model.ClassAcknowledgment {
			return model.ClassExtensionNotice
		}
		if matched[1] == model.ClassAcknowledgment {
			return matched[0]
		}
	}
	return model.ClassNeedsHumanReview
}

var extensionDaysRe = regexp.MustCompile(`(\d{1,3})\s+(?:additional\s+|more\s+)?(?:business\s+|calendar\s+)?days?`)

// ExtensionDays extracts the granted extension length from an
// extension-notice body. Returns 0 when no day count is stated; the
// orchestrator then falls back to the agency's maximum allowance.
func ExtensionDays(body string) int {
	m := extensionDaysRe.FindStringSubmatch(strings.ToLower(body))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
