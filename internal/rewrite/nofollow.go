package rewrite

import (
	"context"
	"strings"

	"github.com/alnah/go-contentbody/internal/dom"
)

// NofollowPass adds rel="nofollow" to every link, for content from authors
// whose links should not pass ranking credit.
type NofollowPass struct{}

// Name implements Pass.
func (NofollowPass) Name() string { return "nofollow" }

// Apply implements Pass.
func (NofollowPass) Apply(_ context.Context, doc *Doc) error {
	for _, a := range doc.Find("a") {
		rel, _ := dom.Attr(a, "rel")
		tokens := strings.Fields(rel)
		if containsFold(tokens, "nofollow") {
			continue
		}
		dom.SetAttr(a, "rel", strings.Join(append([]string{"nofollow"}, tokens...), " "))
	}
	return nil
}

func containsFold(tokens []string, want string) bool {
	for _, t := range tokens {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}
