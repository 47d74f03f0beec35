package locale

import (
	"strings"

	"golang.org/x/text/language"
)

const (
	LanguageAlbanian = "sq"
	LanguageEnglish  = "en"
)

// Preference 描述一次请求最终使用的语言。
type Preference struct {
	Language string
	Locale   string
	HTMLLang string
}

// 第一个为默认语言，匹配失败时回退到它。
var matcher = language.NewMatcher([]language.Tag{language.Albanian, language.English})

// NormalizeLanguage maps sq/al/en style codes to a supported language, or "" when unknown.
func NormalizeLanguage(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}
	if trimmed == "al" {
		return LanguageAlbanian
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	switch base.String() {
	case LanguageAlbanian:
		return LanguageAlbanian
	case LanguageEnglish:
		return LanguageEnglish
	}
	return ""
}

// LanguageFromAcceptLanguage 按 q 值协商语言，头部为空或无法匹配时返回空串。
func LanguageFromAcceptLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(strings.TrimSpace(header))
	if err != nil || len(tags) == 0 {
		return ""
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return ""
	}
	if index == 1 {
		return LanguageEnglish
	}
	return LanguageAlbanian
}

// PreferenceForLanguage 返回语言对应的区域设置，未知语言回退到阿尔巴尼亚语。
func PreferenceForLanguage(lang string) Preference {
	if NormalizeLanguage(lang) == LanguageEnglish {
		return Preference{Language: LanguageEnglish, Locale: "en_US", HTMLLang: "en-US"}
	}
	return Preference{Language: LanguageAlbanian, Locale: "sq_AL", HTMLLang: "sq-AL"}
}
