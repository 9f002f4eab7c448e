package i18n

import (
	"fmt"
	"strings"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "field" or "code").
type Translator interface {
	Message(code string, data map[string]any) string
}

// dictTranslator is the built-in dictionary-based Translator. Templates use
// {name} placeholders filled from data.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"invalid_type":          "field {field}: expected {expected}, got {actual}",
		"required":              "required field {field} is missing",
		"unknown_key":           "unknown key {key}",
		"unknown_field":         "record {record} has no field {field}",
		"unknown_record":        "unknown record type {record}",
		"duplicate_key":         "duplicate key",
		"invalid_enum":          "field {field}: unknown code {code}",
		"invalid_format":        "field {field}: invalid {format} value",
		"union_ambiguous":       "choice field {field} has more than one alternative present ({keys})",
		"discriminator_missing": "discriminator {key} is missing",
		"discriminator_unknown": "discriminator {key} names unknown type {value}",
		"arity":                 "expected {expected} required values, got {actual}",
		"parse_error":           "parse error",
		"truncated":             "truncated",
	},
	"ja": {
		"invalid_type":          "フィールド {field}: 型が不正です（期待: {expected}、実際: {actual}）",
		"required":              "必須フィールド {field} が不足しています",
		"unknown_key":           "未知のキー {key} です",
		"unknown_field":         "レコード {record} にフィールド {field} はありません",
		"unknown_record":        "未知のレコード型 {record} です",
		"duplicate_key":         "キーが重複しています",
		"invalid_enum":          "フィールド {field}: 未知のコード {code} です",
		"invalid_format":        "フィールド {field}: {format} の形式が不正です",
		"union_ambiguous":       "選択フィールド {field} に複数の候補が存在します（{keys}）",
		"discriminator_missing": "識別子 {key} がありません",
		"discriminator_unknown": "識別子 {key} が未知の型 {value} を指しています",
		"arity":                 "必須値は {expected} 個必要ですが {actual} 個でした",
		"parse_error":           "解析エラー",
		"truncated":             "打ち切られました",
	},
}

func (t dictTranslator) Message(code string, data map[string]any) string {
	tmpl, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	return interpolate(tmpl, data)
}

func interpolate(tmpl string, data map[string]any) string {
	if len(data) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]any) string { return currentTranslator.Message(code, data) }
