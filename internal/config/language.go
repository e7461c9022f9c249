package config

import (
	"strings"

	"golang.org/x/text/language"
)

// Chinese base languages after canonicalization.
var chineseBases = map[string]bool{
	"zh":  true,
	"yue": true,
	"cmn": true,
}

// IsChinese reports whether the language tag names a Chinese language.
func IsChinese(tag string) bool {
	t, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return false
	}
	base, _ := t.Base()
	return chineseBases[base.String()]
}

// ValidLanguageTag reports whether tag is a well-formed BCP 47 tag.
func ValidLanguageTag(tag string) bool {
	if tag == "" {
		return false
	}
	_, err := language.Parse(tag)
	return err == nil
}
