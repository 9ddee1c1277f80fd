package ticket

import (
	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
	"github.com/iov-one/remit/x/commitment"
)

const (
	pathCreate              = "ticket/create"
	pathFund                = "ticket/fund"
	pathFundNew             = "ticket/fund_new"
	pathCancel              = "ticket/cancel"
	pathRelease             = "ticket/release"
	pathExtendDeadline      = "ticket/extend_deadline"
	pathUpdateConfiguration = "ticket/update_configuration"

	maxSecretSize = 256
)

// CreateMsg opens a ticket for the beneficiary, locked by two digests.
type CreateMsg struct {
	Beneficiary remit.Address `json:"beneficiary"`
	Digest1     []byte        `json:"digest1"`
	Digest2     []byte        `json:"digest2"`
	Memo        string        `json:"memo,omitempty"`
}

// FundMsg locks the caller's funds in an open ticket.
type FundMsg struct {
	TicketID []byte `json:"ticket_id"`
	Amount   uint64 `json:"amount"`
	// DeadlineOffset is the number of seconds from now until the ticket
	// expires.
	DeadlineOffset int64 `json:"deadline_offset"`
}

// FundNewMsg creates and funds a ticket at once.
type FundNewMsg struct {
	Beneficiary    remit.Address `json:"beneficiary"`
	Digest1        []byte        `json:"digest1"`
	Digest2        []byte        `json:"digest2"`
	Memo           string        `json:"memo,omitempty"`
	Amount         uint64        `json:"amount"`
	DeadlineOffset int64         `json:"deadline_offset"`
}

// CancelMsg returns the funds of a ticket to its depositor.
type CancelMsg struct {
	TicketID []byte `json:"ticket_id"`
}

// ReleaseMsg reveals both secrets and pays the ticket to the beneficiary.
type ReleaseMsg struct {
	TicketID []byte `json:"ticket_id"`
	Secret1  []byte `json:"secret1"`
	Secret2  []byte `json:"secret2"`
}

// ExtendDeadlineMsg moves the deadline of a funded ticket. Only the owner
// can submit it.
type ExtendDeadlineMsg struct {
	TicketID       []byte `json:"ticket_id"`
	DeadlineOffset int64  `json:"deadline_offset"`
}

// UpdateConfigurationMsg changes the configuration of the extension. Only
// the owner can submit it.
type UpdateConfigurationMsg struct {
	Patch *Configuration `json:"patch"`
}

var (
	_ remit.Msg = (*CreateMsg)(nil)
	_ remit.Msg = (*FundMsg)(nil)
	_ remit.Msg = (*FundNewMsg)(nil)
	_ remit.Msg = (*CancelMsg)(nil)
	_ remit.Msg = (*ReleaseMsg)(nil)
	_ remit.Msg = (*ExtendDeadlineMsg)(nil)
	_ remit.Msg = (*UpdateConfigurationMsg)(nil)
)

func (CreateMsg) Path() string              { return pathCreate }
func (FundMsg) Path() string                { return pathFund }
func (FundNewMsg) Path() string             { return pathFundNew }
func (CancelMsg) Path() string              { return pathCancel }
func (ReleaseMsg) Path() string             { return pathRelease }
func (ExtendDeadlineMsg) Path() string      { return pathExtendDeadline }
func (UpdateConfigurationMsg) Path() string { return pathUpdateConfiguration }

func (m *CreateMsg) Validate() error {
	return validateLock(m.Beneficiary, m.Digest1, m.Digest2, m.Memo)
}

func (m *FundMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "TicketID", validateID(m.TicketID))
	errs = errors.AppendField(errs, "Amount", validateAmount(m.Amount))
	errs = errors.AppendField(errs, "DeadlineOffset", validateOffset(m.DeadlineOffset))
	return errs
}

func (m *FundNewMsg) Validate() error {
	errs := validateLock(m.Beneficiary, m.Digest1, m.Digest2, m.Memo)
	errs = errors.AppendField(errs, "Amount", validateAmount(m.Amount))
	errs = errors.AppendField(errs, "DeadlineOffset", validateOffset(m.DeadlineOffset))
	return errs
}

func (m *CancelMsg) Validate() error {
	return errors.AppendField(nil, "TicketID", validateID(m.TicketID))
}

func (m *ReleaseMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "TicketID", validateID(m.TicketID))
	errs = errors.AppendField(errs, "Secret1", validateSecret(m.Secret1))
	errs = errors.AppendField(errs, "Secret2", validateSecret(m.Secret2))
	return errs
}

func (m *ExtendDeadlineMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "TicketID", validateID(m.TicketID))
	errs = errors.AppendField(errs, "DeadlineOffset", validateOffset(m.DeadlineOffset))
	return errs
}

func (m *UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	if m.Patch.Scheme != "" {
		if _, err := commitment.SchemeByName(m.Patch.Scheme); err != nil {
			return errors.Field("Patch.Scheme", err, "")
		}
	}
	if m.Patch.MaxDeadlineOffset < 0 {
		return errors.Field("Patch.MaxDeadlineOffset", errors.ErrInput, "must not be negative")
	}
	return nil
}

func validateLock(beneficiary remit.Address, digest1, digest2 []byte, memo string) error {
	var errs error
	errs = errors.AppendField(errs, "Beneficiary", beneficiary.Validate())
	errs = errors.AppendField(errs, "Digest1", commitment.ValidateDigest(digest1))
	errs = errors.AppendField(errs, "Digest2", commitment.ValidateDigest(digest2))
	if len(memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.ErrInput)
	}
	return errs
}

func validateID(id []byte) error {
	switch len(id) {
	case 0:
		return errors.ErrEmpty
	case 32:
		return nil
	default:
		return errors.Wrap(errors.ErrInput, "ticket id must be 32 bytes")
	}
}

func validateAmount(amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "must be greater than zero")
	}
	return nil
}

func validateOffset(offset int64) error {
	if offset <= 0 {
		return errors.Wrap(errors.ErrInput, "must be positive")
	}
	return nil
}

func validateSecret(secret []byte) error {
	if len(secret) > maxSecretSize {
		return errors.Wrapf(errors.ErrInput, "longer than %d", maxSecretSize)
	}
	return nil
}
