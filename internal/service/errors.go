package service

import "errors"

var (
	ErrEmailExists    = errors.New("email already registered")
	ErrUsernameExists = errors.New("username already taken")
	ErrInvalidCreds   = errors.New("invalid email or password")
	ErrWeakPassword   = errors.New("password must be at least 8 characters")
	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidInput   = errors.New("invalid input")

	ErrReferralInvalidInput = errors.New("referralCode and newUserId are required")
	ErrReferralCodeNotFound = errors.New("referral code not found")
	ErrSelfReferral         = errors.New("cannot use your own referral code")
	ErrAlreadyReferred      = errors.New("user was already referred")
	ErrReferralWindowClosed = errors.New("referral codes can only be applied to newly created accounts")
	ErrReferredUserActive   = errors.New("user already backed a project")

	ErrProjectNotFound = errors.New("project not found")
	ErrProjectClosed   = errors.New("project is not accepting backings")
	ErrOwnProject      = errors.New("cannot back or negotiate on your own project")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrPackageNotFound = errors.New("package not found")
	ErrPackageSoldOut  = errors.New("package sold out")
	ErrNotCreator      = errors.New("only the project creator can do this")

	ErrNegotiationNotFound = errors.New("negotiation not found")
	ErrNotParticipant      = errors.New("not a participant of this negotiation")
	ErrNegotiationExpired  = errors.New("negotiation is closed or expired")
	ErrInvalidMessage      = errors.New("message must be between 1 and 2000 characters")

	ErrUnknownBoard = errors.New("unknown leaderboard")

	ErrCategoryNotFound = errors.New("forum category not found")
	ErrPostNotFound     = errors.New("post not found")
	ErrAlreadyReported  = errors.New("post already reported")

	ErrValuationNotFound = errors.New("valuation not found")
	ErrValuationDone     = errors.New("valuation is already completed")

	ErrNotificationNotFound = errors.New("notification not found")
	ErrUploadsDisabled      = errors.New("image uploads are not configured")
	ErrForbidden            = errors.New("forbidden")
)
