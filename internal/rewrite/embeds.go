package rewrite

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/alnah/go-contentbody/internal/dom"
)

// ElicitPass replaces binary-prediction widgets with a slot for the question.
// Widgets without a question id are left alone.
type ElicitPass struct{}

// Name implements Pass.
func (ElicitPass) Name() string { return "elicit-blocks" }

// Apply implements Pass.
func (ElicitPass) Apply(_ context.Context, doc *Doc) error {
	for _, block := range doc.Find(".elicit-binary-prediction") {
		if !doc.Attached(block) {
			continue
		}
		questionID, _ := dom.Attr(block, "data-elicit-id")
		if questionID == "" {
			continue
		}
		if _, err := doc.Registry.Replace(block, Value{
			Component: "ElicitBlock",
			Props:     map[string]any{"questionId": questionID},
		}); err != nil {
			return err
		}
	}
	return nil
}

// StrawPollPass wraps embedded poll iframes so the host can gate them behind
// a login. The embed looks like:
//
//	<div class="strawpoll-embed" id="strawpoll_{pollId}">
//	  <iframe src="https://strawpoll.com/embed/polls/{pollId}"></iframe>
//	</div>
//
// Embeds without an iframe source are left alone.
type StrawPollPass struct{}

// Name implements Pass.
func (StrawPollPass) Name() string { return "strawpoll-embeds" }

// Apply implements Pass.
func (StrawPollPass) Apply(_ context.Context, doc *Doc) error {
	for _, block := range doc.Find(".strawpoll-embed") {
		if !doc.Attached(block) {
			continue
		}
		src := goquery.NewDocumentFromNode(block).Find("iframe").First().AttrOr("src", "")
		if src == "" {
			continue
		}
		id, _ := dom.Attr(block, "id")
		if _, err := doc.Registry.Replace(block, Value{
			Component: "WrappedStrawPoll",
			Props:     map[string]any{"id": id, "src": src},
		}); err != nil {
			return err
		}
	}
	return nil
}
