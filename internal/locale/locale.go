package locale

import (
	"strings"

	"golang.org/x/text/language"
)

const (
	LanguageChinese = "zh"
	LanguageEnglish = "en"
)

// 支持的语言，首项为默认语言
var matcher = language.NewMatcher([]language.Tag{language.English, language.Chinese})

type Preference struct {
	Language        string
	ContentLanguage string
}

func NormalizeLanguage(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "zh") || trimmed == "cn" {
		return LanguageChinese
	}
	if strings.HasPrefix(trimmed, "en") {
		return LanguageEnglish
	}
	return ""
}

// LanguageFromAcceptLanguage 按 q 权重匹配 Accept-Language，无法匹配时返回空串。
func LanguageFromAcceptLanguage(header string) string {
	if strings.TrimSpace(header) == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	tag, _, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return ""
	}
	base, _ := tag.Base()
	return NormalizeLanguage(base.String())
}

// Resolve picks the request language: an explicit override wins, then the
// Accept-Language header, then English.
func Resolve(override, acceptLanguage string) Preference {
	lang := NormalizeLanguage(override)
	if lang == "" {
		lang = LanguageFromAcceptLanguage(acceptLanguage)
	}
	return PreferenceForLanguage(lang)
}

func PreferenceForLanguage(lang string) Preference {
	if NormalizeLanguage(lang) == LanguageChinese {
		return Preference{Language: LanguageChinese, ContentLanguage: "zh-CN"}
	}
	return Preference{Language: LanguageEnglish, ContentLanguage: "en"}
}
