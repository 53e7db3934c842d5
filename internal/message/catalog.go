// Package message resolves candidate message codes into localized text.
//
// Bundles are YAML files mapping a code such as "range.item.price" to a text
// with positional placeholders ({0}, {1}, ...). A Catalog loads them into a
// universal translator per locale and tries candidate codes in order.
package message

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/ko"
	ut "github.com/go-playground/universal-translator"
	"github.com/spf13/cast"
	"golang.org/x/text/language"

	"github.com/example/item-validation/internal/validation"
)

var (
	// ErrNoMessage is returned when none of the candidate codes has a message.
	ErrNoMessage = errors.New("message: no message found for codes")
	// ErrUnsupportedLocale is returned for bundles in a locale the catalog cannot format.
	ErrUnsupportedLocale = errors.New("message: unsupported locale")
	// ErrMissingLocale is returned for bundles without a locale.
	ErrMissingLocale = errors.New("message: bundle has no locale")
	// ErrPlaceholderOrder is returned for texts whose placeholders are not {0}, {1}, ... in order.
	ErrPlaceholderOrder = errors.New("message: placeholders must be numbered from {0} in order")
)

var supportedLocales = map[string]func() locales.Translator{
	"en": en.New,
	"ko": ko.New,
}

// SupportedLocales lists the locales a Catalog can be built for.
func SupportedLocales() []string {
	return []string{"en", "ko"}
}

// Catalog is a read-only message lookup shared by all requests.
type Catalog struct {
	uni           *ut.UniversalTranslator
	defaultLocale string
	locales       []string
	// arity holds the placeholder count per locale and code.
	arity map[string]map[string]int
}

// New builds a catalog from bundles. Later bundles override earlier ones for
// the same locale and code.
func New(defaultLocale string, bundles ...Bundle) (*Catalog, error) {
	fallbackFactory, ok := supportedLocales[defaultLocale]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLocale, defaultLocale)
	}

	translators := make(map[string]locales.Translator)
	translators[defaultLocale] = fallbackFactory()
	order := []string{defaultLocale}
	for _, bundle := range bundles {
		factory, ok := supportedLocales[bundle.Locale]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedLocale, bundle.Locale)
		}
		if _, seen := translators[bundle.Locale]; !seen {
			translators[bundle.Locale] = factory()
			order = append(order, bundle.Locale)
		}
	}

	supported := make([]locales.Translator, 0, len(order))
	for _, loc := range order {
		supported = append(supported, translators[loc])
	}

	c := &Catalog{
		uni:           ut.New(translators[defaultLocale], supported...),
		defaultLocale: defaultLocale,
		locales:       order,
		arity:         make(map[string]map[string]int),
	}

	for _, bundle := range bundles {
		trans, _ := c.uni.GetTranslator(bundle.Locale)
		if c.arity[bundle.Locale] == nil {
			c.arity[bundle.Locale] = make(map[string]int)
		}
		for code, text := range bundle.Messages {
			n, err := placeholderCount(text)
			if err != nil {
				return nil, fmt.Errorf("message: %s %q: %w", bundle.Locale, code, err)
			}
			if err := trans.Add(code, text, true); err != nil {
				return nil, fmt.Errorf("message: %s %q: %w", bundle.Locale, code, err)
			}
			c.arity[bundle.Locale][code] = n
		}
	}

	return c, nil
}

// NewDefault builds a catalog from the embedded bundles followed by extra.
func NewDefault(defaultLocale string, extra ...Bundle) (*Catalog, error) {
	bundles, err := DefaultBundles()
	if err != nil {
		return nil, err
	}
	return New(defaultLocale, append(bundles, extra...)...)
}

// DefaultLocale returns the locale used when a request names none we support.
func (c *Catalog) DefaultLocale() string { return c.defaultLocale }

// Negotiate picks the best supported locale for an Accept-Language header value.
func (c *Catalog) Negotiate(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil {
		return c.defaultLocale
	}
	for _, tag := range tags {
		base, _ := tag.Base()
		for _, loc := range c.locales {
			if base.String() == loc {
				return loc
			}
		}
	}
	return c.defaultLocale
}

// Lookup tries codes in order and returns the first message found for locale,
// then for the default locale. It returns ErrNoMessage when no code matches.
func (c *Catalog) Lookup(codes []string, args []any, locale string) (string, error) {
	candidates := []string{c.normalize(locale)}
	if candidates[0] != c.defaultLocale {
		candidates = append(candidates, c.defaultLocale)
	}

	for _, loc := range candidates {
		trans, ok := c.uni.GetTranslator(loc)
		if !ok {
			continue
		}
		for _, code := range codes {
			n, ok := c.arity[loc][code]
			if !ok {
				continue
			}
			text, err := trans.T(code, c.params(trans, loc, args, n)...)
			if err != nil {
				continue
			}
			return text, nil
		}
	}

	return "", fmt.Errorf("%w: [%s]", ErrNoMessage, strings.Join(codes, ","))
}

// Message renders a failure: the first code found, else its default message,
// else its least specific code.
func (c *Catalog) Message(f validation.Failure, locale string) string {
	if f == nil {
		return ""
	}
	text, err := c.Lookup(f.Codes(), f.Arguments(), locale)
	if err == nil {
		return text
	}
	if msg := f.DefaultMessage(); msg != "" {
		return msg
	}
	codes := f.Codes()
	if len(codes) > 0 {
		return codes[len(codes)-1]
	}
	return ""
}

// Text looks up a single code, returning the code itself when it has no message.
func (c *Catalog) Text(code, locale string, args ...any) string {
	text, err := c.Lookup([]string{code}, args, locale)
	if err != nil {
		return code
	}
	return text
}

func (c *Catalog) normalize(locale string) string {
	if locale == "" {
		return c.defaultLocale
	}
	if _, ok := c.uni.GetTranslator(locale); ok {
		return locale
	}
	return c.Negotiate(locale)
}

// params formats args for trans and pads them to the placeholder count n.
func (c *Catalog) params(trans ut.Translator, locale string, args []any, n int) []string {
	size := len(args)
	if n > size {
		size = n
	}
	out := make([]string, size)
	for i, arg := range args {
		out[i] = c.formatArg(trans, locale, arg)
	}
	return out
}

func (c *Catalog) formatArg(trans ut.Translator, locale string, arg any) string {
	switch v := arg.(type) {
	case nil:
		return ""
	case validation.Resolvable:
		text, err := c.Lookup(v.Codes, nil, locale)
		if err != nil {
			return v.String()
		}
		return text
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return trans.FmtNumber(cast.ToFloat64(v), 0)
	case float32, float64:
		return trans.FmtNumber(cast.ToFloat64(v), 2)
	default:
		if s, err := cast.ToStringE(v); err == nil {
			return s
		}
		return fmt.Sprint(v)
	}
}
