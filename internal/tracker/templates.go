package tracker

import "github.com/foiaworks/foiad/internal/model"

// Canned outbound reply bodies for the common agency prompts. The engine
// never free-writes prose; anything beyond these templates is operator work.

const statusInquiryBody = "Hello,\n\n" +
	"I am writing to inquire about the status of my public records request. " +
	"Could you please provide an update on the progress and expected completion timeline?\n\n" +
	"Thank you for your time and assistance.\n\nBest regards"

const clarificationAckBody = "Hello,\n\n" +
	"Thank you for your message. I am reviewing your clarification questions and " +
	"will respond with the requested details shortly. Please keep the request open " +
	"in the meantime.\n\nBest regards"

const feeAckBody = "Hello,\n\n" +
	"Thank you for the fee estimate. Please confirm the total amount due and the " +
	"accepted payment methods so I can arrange payment promptly.\n\nBest regards"

// ReplyTemplate returns a canned subject and body for replying to an inbound
// item of the given classification. ok is false when no template applies and
// an operator must write the reply.
func ReplyTemplate(class model.Classification) (subject, body string, ok bool) {
	switch class {
	case model.ClassClarificationRequest:
		return "Re: Clarification on my records request", clarificationAckBody, true
	case model.ClassFeeNotice:
		return "Re: Fee estimate for my records request", feeAckBody, true
	case model.ClassAcknowledgment:
		return "Status inquiry on my records request", statusInquiryBody, true
	}
	return "", "", false
}
