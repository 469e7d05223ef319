package model

// Target names the top-level screen group that should be active.
type Target string

const (
	TargetSplash            Target = "SPLASH"
	TargetAuthEntry         Target = "AUTH_ENTRY"
	TargetProfileCompletion Target = "PROFILE_COMPLETION"
	TargetMerchantHome      Target = "MERCHANT_HOME"
	TargetDeliveryHome      Target = "DELIVERY_HOME"
	TargetCustomerHome      Target = "CUSTOMER_HOME"
)

// Targets lists all navigation targets.
var Targets = []Target{
	TargetSplash,
	TargetAuthEntry,
	TargetProfileCompletion,
	TargetMerchantHome,
	TargetDeliveryHome,
	TargetCustomerHome,
}
