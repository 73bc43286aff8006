package constants

// Registration messages
const (
	MsgEitherMobileOrEmailRequired = "Either Mobile number or Email is required."
	MsgProvidedRoleDoesNotExist    = "Provided role doesn't exist."
	MsgEmailIsRegistered           = "This email is already registered."
	MsgUsernameIsRegistered        = "This username is already registered."
	MsgNumberIsRegistered          = "This number is already registered."
)

// Account verification messages
const (
	MsgActivatedAccountSuccess       = "Activated the account successfully."
	MsgInvalidVerificationCode       = "Invalid verification code."
	MsgVerificationCodeExpired       = "Verification code expired."
	MsgVerificationCodeAlreadyUsed   = "Verification code already used."
	MsgVerificationCodeRequired      = "Verification code required."
	MsgAuthenticationCodeSendSuccess = "Authentication code send successfully."
	MsgUserNotFoundWithGivenMailID   = "User not found with given mail id."
)

// Password messages
const (
	MsgPasswordChangeSuccess            = "Password changed successfully."
	MsgPasswordResetRequestSentSuccess  = "Password reset request sent successfully."
	MsgInvalidCurrentPassword           = "Invalid current password."
	MsgBothPasswordMustSame             = "Both passwords must be same."
	MsgNewPasswordSameAsCurrentPassword = "New password cannot be the same as your current password."
	MsgIncorrectEmail                   = "Incorrect email."
)

// Login and token messages
const (
	MsgLoginSuccess                 = "Login successful."
	MsgInvalidCredentials           = "Invalid credentials."
	MsgInvalidAuthCode              = "Invalid auth code."
	MsgInactivatedAccount           = "Please activate your account."
	MsgEitherUsernamePasswordOrCode = "Either username and password OR auth_code is required."
	MsgAccessTokenRenewedSuccess    = "Access token renewed successfully."
)

// Email change messages
const (
	MsgEmailChangeRequestCreateSuccess = "Email change request created successfully."
	MsgEmailChangeSuccess              = "Email changed successfully."
	MsgUnableToCreateEmailChange       = "Unable to create email change request."
	MsgExpectedVerificationCodeParam   = "Expected verification_code as query parameter."
	MsgInvalidOrExpiredVerification    = "Invalid or expired verification code."
)

// Account deletion messages
const (
	MsgDeleteAccountRequestSuccess = "Request successfully generated. " +
		"The account will be deleted if there is no login activity within the next 7 days."
	MsgSendDeleteRequestEmailSuccess = "Send delete request email successfully."
)

// User resource messages
const (
	MsgUserListFetchSuccess    = "User list fetched successfully."
	MsgUserDetailFetchSuccess  = "User detail fetched successfully."
	MsgUserUpdateSuccess       = "User updated successfully."
	MsgUserNotFound            = "User not found."
	MsgUserByEmailFetchSuccess = "User by email fetched successfully."
)

// Session and email history messages
const (
	MsgSessionListFetchSuccess      = "Session list fetched successfully."
	MsgEmailHistoryFetchSuccess     = "Email history fetched successfully."
	MsgDeliveryEventRecordedSuccess = "Delivery event recorded successfully."
)

// Location and catalog messages
const (
	MsgCountryListFetchSuccess      = "Country list fetched successfully."
	MsgStateListFetchSuccess        = "State list fetched successfully."
	MsgCityListFetchSuccess         = "City list fetched successfully."
	MsgCategoryListFetchSuccess     = "Category list fetched successfully."
	MsgManufacturerListFetchSuccess = "Manufacturer list fetched successfully."
	MsgProductListFetchSuccess      = "Product list fetched successfully."
	MsgProductDetailFetchSuccess    = "Product detail fetched successfully."
)

// Location messages
const (
	MsgCountryDoesNotExist       = "Country does not exist."
	MsgStateDoesNotExist         = "State does not exist."
	MsgCityDoesNotExist          = "City does not exist."
	MsgLocationHierarchyMismatch = "Country, State and City hierarchy do not match."
)

// Mail subjects, headers and bodies
const (
	ActivationMailSubject = "Please activate your account."
	ActivationMailHeader  = "An account was created/updated with following details on prep.study:"
	ActivationMailMessage = "If you have not carried out this action, you may ignore and delete " +
		"this e-mail. Else, to verify this e-mail address and associate it with " +
		"above mentioned user account, use the below OTP"
	ActivationMailTag = "activation"

	PasswordResetMailSubject = "Password Reset"
	PasswordResetMailHeader  = "There was a request to change your password!"
	PasswordResetMailMessage = "If you have not carried out this action, you may ignore and delete this e-mail. " +
		"Else, to reset the password, use the below OTP."
	PasswordResetMailTag = "password-reset"

	EmailChangeMailSubject = "Email Change Request"
	EmailChangeMailHeader  = "There was a request to change your email address!"
	EmailChangeMailMessage = "If you have not carried out this action, you may ignore and delete " +
		"this e-mail. Else, to change the email, use the below verification code."
	EmailChangeMailTag = "email-change"

	DeleteRequestMailSubject = "Confirmation for Account Deletion Request"
	DeleteRequestMailHeader  = "Confirmation required for Account Deletion Request"
	DeleteRequestMailMessage = "There was a request to delete your account. If you have not " +
		"carried out this action, you may ignore and delete this e-mail. Else, to confirm the " +
		"deletion request, use the below link."
	DeleteRequestMailTag = "delete-reset"
)

// Email delivery event statuses reported by the mail provider webhook.
const (
	MailEventSent          = "sent"
	MailEventAccepted      = "accepted"
	MailEventClicked       = "clicked"
	MailEventComplained    = "complained"
	MailEventDelivered     = "delivered"
	MailEventOpened        = "opened"
	MailEventPermanentFail = "permanent_fail"
	MailEventTemporaryFail = "temporary_fail"
	MailEventUnsubscribed  = "unsubscribed"
)

// MailEventStatuses is the set of statuses the delivery webhook accepts.
var MailEventStatuses = map[string]struct{}{
	MailEventSent:          {},
	MailEventAccepted:      {},
	MailEventClicked:       {},
	MailEventComplained:    {},
	MailEventDelivered:     {},
	MailEventOpened:        {},
	MailEventPermanentFail: {},
	MailEventTemporaryFail: {},
	MailEventUnsubscribed:  {},
}

// Badge names, ordered by gem threshold.
const (
	BadgeBronze   = "Bronze"
	BadgeSilver   = "Silver"
	BadgeGold     = "Gold"
	BadgeDiamond  = "Diamond"
	BadgeChampion = "Champion"
)
