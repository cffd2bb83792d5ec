package compose

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultLang is used when a recipient has no language tag.
const DefaultLang = "en"

// Conventional template file names inside a language directory.
const (
	SubjectFile  = "subject.txt"
	BodyFile     = "body.txt"
	BodyHTMLFile = "body.html"
)

// TemplateSet holds the raw template sources resolved for one recipient.
type TemplateSet struct {
	Subject string
	Text    string
	HTML    string // empty when no HTML alternative exists
	Lang    string
}

// Overrides are per-recipient template paths that replace the language convention.
type Overrides struct {
	Subject  string
	Body     string
	BodyHTML string
}

// TemplateResolver locates template files under a root directory keyed by language.
// Nothing is cached: override paths differ per row and files may change between batches.
type TemplateResolver struct {
	root string
}

// NewTemplateResolver creates a resolver rooted at dir.
func NewTemplateResolver(dir string) *TemplateResolver {
	return &TemplateResolver{root: dir}
}

// NormalizeLang lowercases and trims a language tag, defaulting to "en".
func NormalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return DefaultLang
	}
	return lang
}

// Resolve loads the subject, plain body and optional HTML body for lang.
// Languages are not validated: an unknown tag simply fails with ErrTemplateMissing
// naming the path that was tried.
func (r *TemplateResolver) Resolve(lang string, o Overrides) (TemplateSet, error) {
	lang = NormalizeLang(lang)
	dir := filepath.Join(r.root, lang)

	subjectPath := pick(o.Subject, filepath.Join(dir, SubjectFile))
	bodyPath := pick(o.Body, filepath.Join(dir, BodyFile))
	htmlPath := pick(o.BodyHTML, filepath.Join(dir, BodyHTMLFile))

	subject, err := readRequired(subjectPath, "subject")
	if err != nil {
		return TemplateSet{}, err
	}
	body, err := readRequired(bodyPath, "body")
	if err != nil {
		return TemplateSet{}, err
	}

	set := TemplateSet{Subject: subject, Text: body, Lang: lang}

	if isFile(htmlPath) {
		content, err := os.ReadFile(htmlPath)
		if err != nil {
			return TemplateSet{}, fmt.Errorf("compose: read html template %s: %w", htmlPath, err)
		}
		set.HTML = strings.TrimSpace(string(content))
	}

	return set, nil
}

func pick(override, conventional string) string {
	if p := strings.TrimSpace(override); p != "" {
		return p
	}
	return conventional
}

func readRequired(path, kind string) (string, error) {
	if !isFile(path) {
		return "", fmt.Errorf("%w: %s template not found: %s", ErrTemplateMissing, kind, path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Join(fmt.Errorf("%w: %s template unreadable: %s", ErrTemplateMissing, kind, path), err)
	}
	return string(content), nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
