package payments

import (
	"errors"

	"github.com/stripe/stripe-go/v76"
)

// ProviderErrorCode возвращает машинный код ошибки провайдера, если он есть
func ProviderErrorCode(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return string(stripeErr.Code)
	}
	return ""
}

// CaptureFailureDetail переводит отказ захвата или перевода в подсказку
// для клиента. Сырой текст провайдера наружу не отдаем.
func CaptureFailureDetail(err error) string {
	if ProviderErrorCode(err) == string(stripe.ErrorCodeBalanceInsufficient) {
		return "The platform balance is insufficient to pay out the coach. Top up the platform balance and retry."
	}
	return "The payment provider rejected the operation. Try again later."
}
