package notify

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"fotomagic/internal/domain"
)

var ruTitle = cases.Title(language.Russian)

// RateForm declines the capability noun for the given quantity, following
// Russian plural rules (1 реставрация, 2 реставрации, 5 реставраций).
func RateForm(amount int, kind domain.RateKind) string {
	forms := [3]string{"реставрация", "реставрации", "реставраций"}
	if kind == domain.RateAnimate {
		forms = [3]string{"оживление", "оживления", "оживлений"}
	}
	switch {
	case amount%10 == 1 && amount%100 != 11:
		return forms[0]
	case amount%10 >= 2 && amount%10 <= 4 && !(amount%100 >= 12 && amount%100 <= 14):
		return forms[1]
	default:
		return forms[2]
	}
}

// PurchaseMessage is the settlement notification sent to the payer.
func PurchaseMessage(amount int, kind domain.RateKind) string {
	return fmt.Sprintf("✅Оплата прошла успешно\nВы успешно приобрели %d %s, "+
		"пожалуйста перезапустите бота нажав\n/start", amount, RateForm(amount, kind))
}

// PurchaseDescription labels a payment at the provider side.
func PurchaseDescription(amount int, kind domain.RateKind, userID int64) string {
	return fmt.Sprintf("Покупка %d %s, ID: %d", amount, ruTitle.String(RateForm(amount, kind)), userID)
}

// GenerationFailureMessage renders a terminal generation error for the user.
func GenerationFailureMessage(capability domain.Capability, code, message string) string {
	action := "реставрации"
	if capability == domain.CapabilityAnimate {
		action = "оживления"
	}
	return fmt.Sprintf("🚨Во время %s вашего фото произошла какая-то ошибка\n"+
		"<code>%s: %s</code>\nПожалуйста попробуйте снова или обратитесь в поддержку",
		action, code, message)
}
