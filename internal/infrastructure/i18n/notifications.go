package i18n

import "fmt"

// Transition messages carry both the display name and the tenant id so
// owners can act on the right panel from the message alone.

// PanelExpired announces that a tenant's time allowance ran out.
func PanelExpired(lang Language, username string, id uint) string {
	if lang == LanguageFA {
		return fmt.Sprintf("⏳ پنل <b>%s</b> (آیدی %d) منقضی شد و غیرفعال گردید.", username, id)
	}
	return fmt.Sprintf("⏳ Panel <b>%s</b> (ID %d) has expired and was deactivated.", username, id)
}

// PanelRenewed announces that an expired tenant is active again.
func PanelRenewed(lang Language, username string, id uint) string {
	if lang == LanguageFA {
		return fmt.Sprintf("✅ پنل <b>%s</b> (آیدی %d) تمدید شد و دوباره فعال است.", username, id)
	}
	return fmt.Sprintf("✅ Panel <b>%s</b> (ID %d) was renewed and is active again.", username, id)
}

// TrafficExhausted announces that a tenant's traffic allowance ran out.
func TrafficExhausted(lang Language, username string, id uint) string {
	if lang == LanguageFA {
		return fmt.Sprintf("📵 حجم پنل <b>%s</b> (آیدی %d) به پایان رسید و غیرفعال شد.", username, id)
	}
	return fmt.Sprintf("📵 Panel <b>%s</b> (ID %d) has used up its traffic allowance and was deactivated.", username, id)
}

// TrafficRecovered announces that a tenant's traffic allowance is back.
func TrafficRecovered(lang Language, username string, id uint) string {
	if lang == LanguageFA {
		return fmt.Sprintf("✅ حجم پنل <b>%s</b> (آیدی %d) افزایش یافت و دوباره فعال است.", username, id)
	}
	return fmt.Sprintf("✅ Panel <b>%s</b> (ID %d) has traffic again and is active.", username, id)
}

// TrafficWarning announces a remaining-traffic threshold crossing.
func TrafficWarning(lang Language, username string, thresholdGB int, remaining string) string {
	if lang == LanguageFA {
		return fmt.Sprintf("⚠️ حجم باقیمانده پنل <b>%s</b> به کمتر از %d گیگابایت رسید (باقیمانده: %s GB).",
			username, thresholdGB, remaining)
	}
	return fmt.Sprintf("⚠️ Panel <b>%s</b> dropped below %d GB of remaining traffic (%s GB left).",
		username, thresholdGB, remaining)
}

// ExpiryWarning announces an approaching expiry date.
func ExpiryWarning(lang Language, username string, daysLeft int) string {
	if lang == LanguageFA {
		if daysLeft == 1 {
			return fmt.Sprintf("⏰ پنل <b>%s</b> فردا منقضی می‌شود.", username)
		}
		return fmt.Sprintf("⏰ پنل <b>%s</b> تا %d روز دیگر منقضی می‌شود.", username, daysLeft)
	}
	if daysLeft == 1 {
		return fmt.Sprintf("⏰ Panel <b>%s</b> expires tomorrow.", username)
	}
	return fmt.Sprintf("⏰ Panel <b>%s</b> expires in %d days.", username, daysLeft)
}

// UserLimitExceeded announces that a tenant hit its user ceiling and
// further user creation is blocked. Sent once, when the block installs.
func UserLimitExceeded(lang Language, username string) string {
	if lang == LanguageFA {
		return fmt.Sprintf("👥 پنل <b>%s</b> به سقف کاربران رسید؛ ساخت کاربر جدید مسدود شد.", username)
	}
	return fmt.Sprintf("👥 Panel <b>%s</b> reached its user limit; new user creation is blocked.", username)
}

// RenewChoiceLabel labels the inline renew action attached to breach
// notifications.
func RenewChoiceLabel(lang Language) string {
	if lang == LanguageFA {
		return "🔄 تمدید پنل"
	}
	return "🔄 Renew panel"
}

// CapacityWarning is the daily heads-up for tenants running low on
// users or traffic.
func CapacityWarning(lang Language, username string, slotsLeft int, remaining string) string {
	if lang == LanguageFA {
		return fmt.Sprintf("📉 ظرفیت پنل <b>%s</b> رو به اتمام است: %d کاربر و %s گیگابایت باقی مانده.",
			username, slotsLeft, remaining)
	}
	return fmt.Sprintf("📉 Panel <b>%s</b> is running low: %d user slots and %s GB remaining.",
		username, slotsLeft, remaining)
}
