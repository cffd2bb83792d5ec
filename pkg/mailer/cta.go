package mailer

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ctaPrefix opens a call-to-action link: [!button|Label](https://example.com).
const ctaPrefix = "[!button|"

// ctaStyle is inlined because most mail clients drop <style> blocks and classes.
const ctaStyle = "display:inline-block;padding:10px 20px;border-radius:4px;" +
	"background:#1a73e8;color:#ffffff;text-decoration:none;font-weight:600"

// KindCTA is the node kind of a call-to-action button.
var KindCTA = ast.NewNodeKind("CallToAction")

// CTANode is a call-to-action button in the markdown AST.
type CTANode struct {
	ast.BaseInline
	URL   []byte
	Label []byte
}

// Kind implements ast.Node.
func (n *CTANode) Kind() ast.NodeKind {
	return KindCTA
}

// Dump implements ast.Node.
func (n *CTANode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"URL":   string(n.URL),
		"Label": string(n.Label),
	}, nil)
}

type ctaParser struct{}

func (ctaParser) Trigger() []byte {
	return []byte{'['}
}

func (ctaParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if !bytes.HasPrefix(line, []byte(ctaPrefix)) {
		return nil
	}

	rest := line[len(ctaPrefix):]
	labelEnd := bytes.IndexByte(rest, ']')
	if labelEnd < 0 || labelEnd+1 >= len(rest) || rest[labelEnd+1] != '(' {
		return nil
	}
	target := rest[labelEnd+2:]
	urlEnd := bytes.IndexByte(target, ')')
	if urlEnd < 0 {
		return nil
	}

	block.Advance(len(ctaPrefix) + labelEnd + 2 + urlEnd + 1)
	return &CTANode{
		Label: rest[:labelEnd],
		URL:   bytes.TrimSpace(target[:urlEnd]),
	}
}

type ctaRenderer struct{}

func (ctaRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindCTA, renderCTA)
}

// renderCTA writes the button as a styled anchor. A javascript:, vbscript:
// or non-image data: target is dropped and only the label is written.
func renderCTA(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*CTANode)

	if html.IsDangerousURL(n.URL) {
		_, _ = w.Write(util.EscapeHTML(n.Label))
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.URL, true)))
	_, _ = w.WriteString(`" style="` + ctaStyle + `">`)
	_, _ = w.Write(util.EscapeHTML(n.Label))
	_, _ = w.WriteString(`</a>`)
	return ast.WalkContinue, nil
}

type ctaExtension struct{}

func (ctaExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(ctaParser{}, 50),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(ctaRenderer{}, 50),
	))
}

// CTA returns the goldmark extension rendering [!button|Label](URL) as an
// email-safe button. NewMarkdown enables it.
func CTA() goldmark.Extender {
	return ctaExtension{}
}
