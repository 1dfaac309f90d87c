package service

import "errors"

// Domain errors. The HTTP layer maps these onto status codes with errors.Is,
// so services never import anything transport-level.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrStudentNotFound    = errors.New("student not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrRewardNotFound     = errors.New("reward not found")

	ErrZeroAmount        = errors.New("amount must not be zero")
	ErrAmountTooLarge    = errors.New("amount exceeds the allowed maximum")
	ErrInvalidReason     = errors.New("reason must be between 2 and 200 characters")
	ErrInvalidStatus     = errors.New("invalid attendance status")
	ErrInvalidDate       = errors.New("invalid date, expected YYYY-MM-DD")
	ErrStudentNotInGroup = errors.New("student does not belong to this group")
	ErrCoinsOutOfRange   = errors.New("coins_given is out of range")
	ErrAvatarTooLarge    = errors.New("avatar image is too large")
	ErrInvalidImage      = errors.New("image data is not a valid png or jpeg")
	ErrMessageForbidden  = errors.New("students can only message teachers")
	ErrEmptyMessage      = errors.New("message text must not be empty")

	ErrGroupLimit    = errors.New("group limit reached")
	ErrGroupFull     = errors.New("group is full")
	ErrGroupNotEmpty = errors.New("group still has active students")
	ErrLoginTaken    = errors.New("login is already taken")

	ErrShopClosed          = errors.New("shop is closed")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrReviewConflict      = errors.New("submission already reviewed with a different amount")

	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrUserInactive       = errors.New("account is deactivated")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("forbidden")
)
