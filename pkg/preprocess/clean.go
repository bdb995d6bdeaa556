package preprocess

import "strings"

var romanPeriods = []struct{ from, to string }{
	{" I.", " I"},
	{" II.", " II"},
	{" III.", " III"},
	{" IV.", " IV"},
	{" V.", " V"},
}

// CleanDesignText drops the period after regnal numerals ("Ptolemy I." -> "Ptolemy I").
func CleanDesignText(s string) string {
	for _, r := range romanPeriods {
		s = strings.ReplaceAll(s, r.from, r.to)
	}
	return s
}

var marks = strings.NewReplacer("?", "", "(", "", ")", "")

// StripMarks removes question marks and round brackets.
func StripMarks(s string) string {
	return marks.Replace(s)
}
