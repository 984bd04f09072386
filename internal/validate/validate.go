// Package validate checks user supplied fields and reports the first
// problem as a ValidationError.
package validate

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ValidationError names the offending field; Message is shown to the user.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Required(field, value, message string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: message}
	}
	return nil
}

func Email(field, value string) error {
	value = strings.TrimSpace(value)
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return &ValidationError{Field: field, Message: "E-mail inválido"}
	}
	return nil
}

var digits = regexp.MustCompile(`\d`)

// Phone accepts Brazilian numbers with or without formatting (10 to 13
// digits, country code included).
func Phone(field, value string) error {
	n := len(digits.FindAllString(value, -1))
	if n < 10 || n > 13 {
		return &ValidationError{Field: field, Message: "Telefone inválido"}
	}
	return nil
}

// First returns the first non-nil error.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// letters with no canonical decomposition
var ligatures = strings.NewReplacer(
	"ß", "ss", "æ", "ae", "œ", "oe", "ø", "o", "ł", "l", "đ", "d", "ð", "d", "þ", "th",
)

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return ligatures.Replace(out)
}

// Slugify turns "Anel Solitário Ouro 18k" into "anel-solitario-ouro-18k".
func Slugify(s string) string {
	s = foldAccents(strings.ToLower(strings.TrimSpace(s)))
	return strings.Trim(slugStrip.ReplaceAllString(s, "-"), "-")
}
