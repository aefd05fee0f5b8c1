package cards

import (
	"regexp"
	"strings"
)

// String-splicing section replacement is inherently fragile, so all of it is
// isolated here behind UpdateReferences; callers never see the strategy.

var (
	// From the references heading up to (not including) the next heading
	// or a metadata separator line.
	referencesSectionRe = regexp.MustCompile(`(?s)## Story References[ \t]*\n.*?(\n## |\n---\n|\z)`)
	footerLineRe        = regexp.MustCompile(`(?m)^\*Generated by Scribe — .*\*[ \t]*$`)
)

// UpdateReferences splices a new auto-generated references body and footer
// into doc, leaving every author-written section untouched.
//
// Strategy, in order: replace the existing references section in place;
// otherwise insert a new section before the trailing metadata separator;
// otherwise append at end of file together with a fresh footer.
func UpdateReferences(doc, refBody, footer string) string {
	section := ReferencesHeading + "\n\n" + refBody + "\n"

	if loc := referencesSectionRe.FindStringSubmatchIndex(doc); loc != nil {
		tail := doc[loc[2]:loc[3]]
		out := doc[:loc[0]] + section + tail + doc[loc[3]:]
		return refreshFooter(out, footer)
	}

	if sep := trailingSeparator(doc); sep >= 0 {
		out := doc[:sep] + "\n" + section + doc[sep:]
		return refreshFooter(out, footer)
	}

	if !strings.HasSuffix(doc, "\n") {
		doc += "\n"
	}
	return doc + "\n" + section + "\n---\n" + footer + "\n"
}

// trailingSeparator returns the offset of the final "---" separator when it
// is genuinely trailing: only the generated footer or blank lines follow it.
// Returns -1 otherwise.
func trailingSeparator(doc string) int {
	i := strings.LastIndex(doc, "\n---\n")
	if i < 0 {
		return -1
	}
	for _, line := range strings.Split(doc[i+len("\n---\n"):], "\n") {
		if strings.TrimSpace(line) == "" || footerLineRe.MatchString(line) {
			continue
		}
		return -1
	}
	return i
}

// refreshFooter rewrites the generated footer line in place, or adds a
// footer block when the document has none.
func refreshFooter(doc, footer string) string {
	if footerLineRe.MatchString(doc) {
		return footerLineRe.ReplaceAllString(doc, footer)
	}
	if !strings.HasSuffix(doc, "\n") {
		doc += "\n"
	}
	if sep := trailingSeparator(doc); sep >= 0 {
		return doc + footer + "\n"
	}
	return doc + "\n---\n" + footer + "\n"
}
