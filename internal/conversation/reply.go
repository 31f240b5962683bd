package conversation

import (
	"net/http"

	"advisory/internal/advisory"
)

const (
	issuesBody  = "I've completed the analysis, but there was an issue generating the report."
	apologyBody = "I apologize, but I encountered an issue processing your request. Please try again or contact support if the problem persists."

	downloadLabel = "📎 Download PDF Report"
)

// ComposeReply turns a backend result into the assistant's answer. The
// download link comes only from the result's url and name fields.
func ComposeReply(res *advisory.Result) Content {
	c := Content{Kind: PlainText}
	if !res.Error && res.Status == http.StatusOK {
		name := res.Name
		if name == "" {
			name = "report"
		}
		c.Body = successNarrative(name)
	} else {
		c.Body = issuesBody
	}
	if res.URL != "" {
		c.Kind = RichText
		c.LinkURL = res.URL
		c.LinkName = downloadLabel
	}
	return c
}

// ApologyReply is the answer when every request attempt failed.
func ApologyReply() Content {
	return Plain(apologyBody)
}

func successNarrative(name string) string {
	return "I've completed the analysis of your request. Your " + name + " has been generated successfully and is ready for download."
}
