package main

import (
	"regexp"
	"strings"
)

// characteristicKeywords start a new line in the material detail panel when
// followed by a colon.
var characteristicKeywords = []string{
	"標示", "過敏原", "保存方式", "保存期限", "產地", "成分", "規格", "注意事項", "用途", "特性",
}

var (
	characteristicBreaks = regexp.MustCompile(`\s*\n\s*`)
	characteristicLabel  = buildCharacteristicLabel()
)

func buildCharacteristicLabel() *regexp.Regexp {
	quoted := make([]string, 0, len(characteristicKeywords))
	for _, kw := range characteristicKeywords {
		quoted = append(quoted, regexp.QuoteMeta(kw))
	}
	return regexp.MustCompile(`(` + strings.Join(quoted, "|") + `)([:：])`)
}

// formatCharacteristic puts every "keyword:" label of a free-text
// characteristic on its own line.
func formatCharacteristic(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = characteristicLabel.ReplaceAllString(text, "\n$1$2")
	text = characteristicBreaks.ReplaceAllString(text, "\n")
	return strings.TrimLeft(text, "\n")
}
