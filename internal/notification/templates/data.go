package templates

// OTPCodeData holds the variables for the user.otp_code scenario.
type OTPCodeData struct {
	Name         string
	Code         string
	Date         string
	SupportEmail string
}

// OTPCode is the typed handle for the user.otp_code template.
var OTPCode = Expect[OTPCodeData]("user.otp_code")
