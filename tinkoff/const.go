package tinkoff

// Operation paths, appended to the credential's API base URL.
const (
	pathInit           = "Init"
	pathConfirm        = "Confirm"
	pathCancel         = "Cancel"
	pathGetState       = "GetState"
	pathResend         = "Resend"
	pathCharge         = "Charge"
	pathGetCustomer    = "GetCustomer"
	pathAddCustomer    = "AddCustomer"
	pathRemoveCustomer = "RemoveCustomer"
	pathGetCardList    = "GetCardList"
	pathRemoveCard     = "RemoveCard"
)

// RecurrentValue is the flag value sent in the Recurrent field when a
// payment is registered as the parent of recurring charges.
const RecurrentValue = "Y"

// Pay types: single-character gateway codes for one-stage and two-stage
// authorization.
const (
	PayTypeOneStage = "O"
	PayTypeTwoStage = "T"
)

// PayTypes returns every accepted pay type code.
func PayTypes() []string {
	return []string{PayTypeOneStage, PayTypeTwoStage}
}

// Payment form languages.
const (
	LanguageRU = "ru"
	LanguageEN = "en"
)

// FormLanguages returns every accepted payment form language.
func FormLanguages() []string {
	return []string{LanguageRU, LanguageEN}
}

// Payment states reported by the gateway in the Status response field.
const (
	StatusNew             = "NEW"
	StatusCanceled        = "CANCELED"
	StatusFormShowed      = "FORMSHOWED"
	StatusDeadlineExpired = "DEADLINE_EXPIRED"
	StatusAuthorizing     = "AUTHORIZING"
	Status3DSChecking     = "3DS_CHECKING"
	Status3DSChecked      = "3DS_CHECKED"
	StatusAuthFail        = "AUTH_FAIL"
	StatusAuthorized      = "AUTHORIZED"
	StatusReversing       = "REVERSING"
	StatusReversed        = "REVERSED"
	StatusConfirming      = "CONFIRMING"
	StatusConfirmed       = "CONFIRMED"
	StatusRefunding       = "REFUNDING"
	StatusPartialRefunded = "PARTIAL_REFUNDED"
	StatusRefunded        = "REFUNDED"
	StatusRejected        = "REJECTED"
)

// PaymentStatuses returns every payment state the gateway can report.
func PaymentStatuses() []string {
	return []string{
		StatusNew,
		StatusCanceled,
		StatusFormShowed,
		StatusDeadlineExpired,
		StatusAuthorizing,
		Status3DSChecking,
		Status3DSChecked,
		StatusAuthFail,
		StatusAuthorized,
		StatusReversing,
		StatusReversed,
		StatusConfirming,
		StatusConfirmed,
		StatusRefunding,
		StatusPartialRefunded,
		StatusRefunded,
		StatusRejected,
	}
}
