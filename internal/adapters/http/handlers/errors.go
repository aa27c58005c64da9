package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"sacco-ledger/internal/core/domain"
	"sacco-ledger/internal/pkg/response"
)

// handleDomainError maps ledger domain errors onto HTTP responses.
// Handlers call it as the fall-through after any endpoint-specific
// handling.
func handleDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrMemberNotFound),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrLoanNotFound),
		errors.Is(err, domain.ErrLoanProductNotFound),
		errors.Is(err, domain.ErrDividendNotFound),
		errors.Is(err, domain.ErrMemberDividendNotFound),
		errors.Is(err, domain.ErrBoardMemberNotFound),
		errors.Is(err, domain.ErrMeetingNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrSettingNotFound):
		return response.NotFound(c, err.Error())

	case errors.Is(err, domain.ErrDuplicateMembership),
		errors.Is(err, domain.ErrDuplicateAccount),
		errors.Is(err, domain.ErrGuarantorAlreadyApproved),
		errors.Is(err, domain.ErrDividendExists),
		errors.Is(err, domain.ErrDividendAlreadyPaid),
		errors.Is(err, domain.ErrPositionOccupied),
		errors.Is(err, domain.ErrAttendanceRecorded),
		errors.Is(err, domain.ErrStaleAccount),
		errors.Is(err, domain.ErrStaleLoan):
		return response.Conflict(c, err.Error())

	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrLoanOverpayment),
		errors.Is(err, domain.ErrAccountNotEmpty),
		errors.Is(err, domain.ErrInvalidLoanState),
		errors.Is(err, domain.ErrLoanTermsFrozen),
		errors.Is(err, domain.ErrGuarantorsNotMet),
		errors.Is(err, domain.ErrGuarantorIsBorrower),
		errors.Is(err, domain.ErrMemberNotActive),
		errors.Is(err, domain.ErrMemberResigned),
		errors.Is(err, domain.ErrInvalidStatusChange),
		errors.Is(err, domain.ErrAccountClosed),
		errors.Is(err, domain.ErrDividendDistributed),
		errors.Is(err, domain.ErrNoShareCapital),
		errors.Is(err, domain.ErrTransactionImmutable):
		return response.UnprocessableEntity(c, err.Error())

	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidAccountType),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrLoanOutOfRange),
		errors.Is(err, domain.ErrPasswordTooWeak):
		return response.BadRequest(c, err.Error())

	default:
		return response.InternalServerError(c, "Something went wrong")
	}
}
