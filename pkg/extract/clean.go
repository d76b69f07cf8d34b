// Package extract locates a filing's primary document in its EDGAR archive
// directory and reduces it to cleaned plain text. Modern filings are inline
// XBRL: the human-readable report with machine annotations woven through it,
// plus viewer pages and exhibits as sibling files. Extraction picks the right
// file and strips everything that is not prose.
package extract

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// noiseSelector matches elements dropped wholesale before text extraction.
const noiseSelector = "script, style, meta, link, button, noscript, head"

// startMarker is the first line of a filing's cover page. Everything before
// it is archive navigation and header noise.
const startMarker = "UNITED STATES"

// xbrlTokenPrefixes identify leftover machine identifiers in the text, like
// "us-gaap:RevenueFromContractWithCustomerExcludingAssessedTax".
var xbrlTokenPrefixes = []string{"aapl:", "us-gaap:", "xbrli:", "iso4217:", "usfr:", "exch:", "dei:"}

// Clean parses a filing document and reduces it to normalized text: noise
// elements removed, inline-XBRL wrappers unwrapped, one line per visible text
// run, preamble suppressed up to the body marker, schema-reference URLs and
// machine tokens dropped, blank-line runs collapsed.
func Clean(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse document: %w", err)
	}

	doc.Find(noiseSelector).Remove()

	root := doc.Get(0)
	unwrapAnnotations(root)

	text := strings.Join(textNodes(root), "\n")
	lines := filterLines(strings.Split(text, "\n"))

	return collapseBlankRuns(strings.Join(lines, "\n")), nil
}

// unwrapAnnotations splices out every namespace-prefixed element, keeping its
// children in place. Inline XBRL wraps reported figures in tags like
// <ix:nonfraction> and <us-gaap:...>; dropping the wrapper keeps the figure's
// text in the surrounding prose.
func unwrapAnnotations(n *html.Node) {
	for child := n.FirstChild; child != nil; {
		next := child.NextSibling
		unwrapAnnotations(child)

		if child.Type == html.ElementNode && strings.Contains(child.Data, ":") {
			for grandchild := child.FirstChild; grandchild != nil; {
				following := grandchild.NextSibling
				child.RemoveChild(grandchild)
				n.InsertBefore(grandchild, child)
				grandchild = following
			}
			n.RemoveChild(child)
		}
		child = next
	}
}

// textNodes walks the tree and collects every text node's content in
// document order.
func textNodes(n *html.Node) []string {
	var parts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			parts = append(parts, node.Data)
			return
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return parts
}

// filterLines applies the line-level cleanup pass. Lines are kept in order;
// each is trimmed of trailing whitespace, blanks are dropped, everything
// before the body marker is suppressed, and XBRL schema references and bare
// machine tokens are removed.
func filterLines(lines []string) []string {
	var kept []string
	foundStart := false

	for _, line := range lines {
		line = strings.TrimRightFunc(line, unicode.IsSpace)

		if strings.TrimSpace(line) == "" {
			continue
		}

		if !foundStart {
			if !strings.Contains(line, startMarker) {
				continue
			}
			foundStart = true
		}

		if strings.Contains(line, "http") &&
			(strings.Contains(line, "fasb.org") || strings.Contains(line, "sec.gov/Archives/edgar/xmlbrl")) {
			continue
		}

		if isMachineToken(line) {
			continue
		}

		kept = append(kept, line)
	}
	return kept
}

// isMachineToken spots short spaceless identifier lines left behind by the
// annotation unwrapping. Length is counted in characters; anything 100 or
// longer is prose, not an identifier.
func isMachineToken(line string) bool {
	if utf8.RuneCountInString(strings.TrimSpace(line)) >= 100 {
		return false
	}
	if !strings.Contains(line, ":") || strings.Contains(line, " ") {
		return false
	}
	for _, prefix := range xbrlTokenPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// collapseBlankRuns squeezes runs of consecutive blank lines down to a
// single blank line, repeating until stable.
func collapseBlankRuns(text string) string {
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return text
}
