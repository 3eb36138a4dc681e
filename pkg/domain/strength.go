package domain

import "fmt"

// InspirationStrength は参照画像の画風をどこまで踏襲するかを表します。
type InspirationStrength string

const (
	StrengthLow      InspirationStrength = "low"
	StrengthMedium   InspirationStrength = "medium"
	StrengthHigh     InspirationStrength = "high"
	StrengthVeryHigh InspirationStrength = "veryHigh"
)

var strengthDirectives = map[InspirationStrength]string{
	StrengthLow:      "Subtly borrow the color palette and general vibe from the reference image.",
	StrengthMedium:   "Clearly follow the reference image style, color palette, and lighting.",
	StrengthHigh:     "Strongly match the reference image style, texture, palette, and lighting.",
	StrengthVeryHigh: "Recreate the reference image style almost exactly while changing only the described subject.",
}

// Strengths は定義済みの強度を弱い順に返します。
func Strengths() []InspirationStrength {
	return []InspirationStrength{StrengthLow, StrengthMedium, StrengthHigh, StrengthVeryHigh}
}

// Directive はプロンプトに連結する指示文を返します。未知の値は medium 扱いです。
func (s InspirationStrength) Directive() string {
	if d, ok := strengthDirectives[s]; ok {
		return d
	}
	return strengthDirectives[StrengthMedium]
}

// ParseStrength は文字列を InspirationStrength に変換します。
func ParseStrength(raw string) (InspirationStrength, error) {
	if raw == "" {
		return StrengthMedium, nil
	}
	s := InspirationStrength(raw)
	if _, ok := strengthDirectives[s]; !ok {
		return "", fmt.Errorf("unknown inspiration strength: %q", raw)
	}
	return s, nil
}
