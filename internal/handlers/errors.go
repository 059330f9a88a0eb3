package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/spice_ledger/internal/apperrors"
	"github.com/SscSPs/spice_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// statusFor maps an application error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrUnbalancedEntry),
		errors.Is(err, apperrors.ErrInactiveAccount),
		errors.Is(err, apperrors.ErrRateNotFound):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// respondError writes err as JSON. Domain errors keep their message and the
// structured details callers need to correct the request; anything else is
// logged and hidden behind failMsg.
func respondError(c *gin.Context, logger *slog.Logger, err error, failMsg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(failMsg, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": failMsg})
		return
	}

	logger.Warn(failMsg, slog.String("error", err.Error()), slog.Int("status", status))
	body := gin.H{"error": err.Error()}

	var (
		validationErr *apperrors.ValidationError
		unbalancedErr *apperrors.UnbalancedEntryError
		rateErr       *apperrors.RateNotFoundError
		inactiveErr   *apperrors.InactiveAccountError
		duplicateErr  *apperrors.DuplicateEntryError
	)
	switch {
	case errors.As(err, &validationErr):
		body["field"] = validationErr.Field
	case errors.As(err, &unbalancedErr):
		body["totalDebit"] = unbalancedErr.TotalDebit
		body["totalCredit"] = unbalancedErr.TotalCredit
		body["difference"] = unbalancedErr.Difference()
	case errors.As(err, &rateErr):
		body["from"] = rateErr.From
		body["to"] = rateErr.To
	case errors.As(err, &inactiveErr):
		body["accountId"] = inactiveErr.AccountID
	case errors.As(err, &duplicateErr):
		body["entryNumber"] = duplicateErr.EntryNumber
	}
	c.JSON(status, body)
}

// invariantWarning returns the message of an invariant violation so reports can
// carry it next to their figures. Any other error is returned unchanged.
func invariantWarning(err error) (string, error) {
	var invErr *apperrors.InvariantViolationError
	if errors.As(err, &invErr) {
		return invErr.Error(), nil
	}
	return "", err
}

// callerID fetches the caller set by middleware.CallerIdentity.
func callerID(c *gin.Context, logger *slog.Logger) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}
