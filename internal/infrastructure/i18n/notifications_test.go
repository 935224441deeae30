package i18n

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		code string
		want Language
	}{
		{"en", LanguageEN},
		{"fa", LanguageFA},
		{"", LanguageEN},
		{"de", LanguageEN},
	}

	for _, tt := range tests {
		if got := Normalize(tt.code); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestMessagesIncludeUsername(t *testing.T) {
	for _, lang := range []Language{LanguageEN, LanguageFA} {
		msgs := []string{
			PanelExpired(lang, "alice", 41),
			PanelRenewed(lang, "alice", 41),
			TrafficExhausted(lang, "alice", 41),
			TrafficRecovered(lang, "alice", 41),
			TrafficWarning(lang, "alice", 300, "250.00"),
			ExpiryWarning(lang, "alice", 3),
			UserLimitExceeded(lang, "alice"),
			CapacityWarning(lang, "alice", 2, "15.50"),
		}
		for _, msg := range msgs {
			if !strings.Contains(msg, "alice") {
				t.Errorf("%s message missing username: %q", lang, msg)
			}
		}
	}
}

func TestTransitionMessagesIncludeTenantID(t *testing.T) {
	for _, lang := range []Language{LanguageEN, LanguageFA} {
		msgs := []string{
			PanelExpired(lang, "alice", 41),
			PanelRenewed(lang, "alice", 41),
			TrafficExhausted(lang, "alice", 41),
			TrafficRecovered(lang, "alice", 41),
		}
		for _, msg := range msgs {
			if !strings.Contains(msg, "41") {
				t.Errorf("%s message missing tenant id: %q", lang, msg)
			}
		}
	}
}

func TestExpiryWarningSingularDay(t *testing.T) {
	if got := ExpiryWarning(LanguageEN, "bob", 1); !strings.Contains(got, "tomorrow") {
		t.Errorf("one-day warning should say tomorrow, got %q", got)
	}
	if got := ExpiryWarning(LanguageEN, "bob", 7); !strings.Contains(got, "7 days") {
		t.Errorf("seven-day warning = %q", got)
	}
}
