package main

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys of the CLI summaries. Each is registered with its English
// plural forms.
const (
	msgFileSummary  = "%s: %d diagnostics"
	msgSuppressed   = " (%d suppressed)"
	msgBatchSummary = "checked %d files in %v"
)

func init() {
	mustSet(msgFileSummary, plural.Selectf(2, "%d",
		plural.One, "%[1]s: %[2]d diagnostic",
		plural.Other, "%[1]s: %[2]d diagnostics",
	))
	mustSet(msgBatchSummary, plural.Selectf(1, "%d",
		plural.One, "checked %[1]d file in %[2]v",
		plural.Other, "checked %[1]d files in %[2]v",
	))
}

func mustSet(key string, msg catalog.Message) {
	if err := message.Set(language.English, key, msg); err != nil {
		panic(err)
	}
}

// printer formats CLI summaries.
func printer() *message.Printer {
	return message.NewPrinter(language.English)
}
