package notifications

import (
	"fmt"
	"time"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const daysKey = "%d days"

var supported = []language.Tag{language.Russian, language.English}

var daysCatalog = func() *catalog.Builder {
	b := catalog.NewBuilder()
	// CLDR: ru one (1, 21, ...), few (2-4, 22-24, ...), many (0, 5-20, 25-30, ...)
	_ = b.Set(language.Russian, daysKey, plural.Selectf(1, "%d",
		plural.One, "%d день",
		plural.Few, "%d дня",
		plural.Many, "%d дней",
		plural.Other, "%d дня",
	))
	_ = b.Set(language.English, daysKey, plural.Selectf(1, "%d",
		plural.One, "%d day",
		plural.Other, "%d days",
	))
	return b
}()

// Formatter renders message templates for one locale.
type Formatter struct {
	lang       language.Tag
	printer    *message.Printer
	templates  map[Kind]template
	dateLayout string
}

// NewFormatter picks the closest supported locale (ru, en); unknown locales fall back to ru.
func NewFormatter(locale string) (*Formatter, error) {
	tag := language.Russian
	if locale != "" {
		parsed, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("parse locale %q: %w", locale, err)
		}
		_, idx, conf := language.NewMatcher(supported).Match(parsed)
		if conf >= language.High {
			tag = supported[idx]
		}
	}

	f := &Formatter{
		lang:    tag,
		printer: message.NewPrinter(tag, message.Catalog(daysCatalog)),
	}
	if tag == language.English {
		f.templates = templates["en"]
		f.dateLayout = "2006-01-02 15:04"
	} else {
		f.templates = templates["ru"]
		f.dateLayout = "02.01.2006 15:04"
	}
	return f, nil
}

func (f *Formatter) Language() language.Tag { return f.lang }

// DaysLeft inflects the number of days for the formatter's locale: "3 дня", "5 дней".
func (f *Formatter) DaysLeft(n int) string {
	return f.printer.Sprintf(daysKey, n)
}

func (f *Formatter) Date(t time.Time) string {
	return t.Format(f.dateLayout)
}

func (f *Formatter) Format(kind Kind, args ...any) (subject, body string, err error) {
	t, ok := f.templates[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown message kind %q", kind)
	}
	return t.subject, fmt.Sprintf(t.body, args...), nil
}
