package ledger

import (
	remit "github.com/iov-one/remit"
	"github.com/iov-one/remit/errors"
)

const (
	pathDeposit            = "ledger/deposit"
	pathWithdraw           = "ledger/withdraw"
	pathWithdrawCommission = "ledger/withdraw_commission"
	pathForward            = "ledger/forward"
)

// DepositMsg credits funds sent by the caller to the caller's account.
type DepositMsg struct {
	Amount uint64 `json:"amount"`
}

// WithdrawMsg pays funds from the caller's available balance to the
// caller.
type WithdrawMsg struct {
	Amount uint64 `json:"amount"`
}

// WithdrawCommissionMsg pays funds from the commission pool to the
// commission beneficiary.
type WithdrawCommissionMsg struct {
	Amount uint64 `json:"amount"`
}

// ForwardMsg pays funds from the caller's available balance to the final
// recipient of a remittance.
type ForwardMsg struct {
	Recipient remit.Address `json:"recipient"`
	Amount    uint64        `json:"amount"`
}

var (
	_ remit.Msg = (*DepositMsg)(nil)
	_ remit.Msg = (*WithdrawMsg)(nil)
	_ remit.Msg = (*WithdrawCommissionMsg)(nil)
	_ remit.Msg = (*ForwardMsg)(nil)
)

func (DepositMsg) Path() string            { return pathDeposit }
func (WithdrawMsg) Path() string           { return pathWithdraw }
func (WithdrawCommissionMsg) Path() string { return pathWithdrawCommission }
func (ForwardMsg) Path() string            { return pathForward }

func (m *DepositMsg) Validate() error {
	return validateAmount(m.Amount)
}

func (m *WithdrawMsg) Validate() error {
	return validateAmount(m.Amount)
}

func (m *WithdrawCommissionMsg) Validate() error {
	return validateAmount(m.Amount)
}

func (m *ForwardMsg) Validate() error {
	var errs error
	if err := m.Recipient.Validate(); err != nil {
		errs = errors.AppendField(errs, "Recipient", err)
	}
	if err := validateAmount(m.Amount); err != nil {
		errs = errors.AppendField(errs, "Amount", err)
	}
	return errs
}

const pathUpdateConfiguration = "ledger/update_configuration"

// UpdateConfigurationMsg changes the roles of the deployment. Only the owner
// can submit it.
type UpdateConfigurationMsg struct {
	Patch *Configuration `json:"patch"`
}

var _ remit.Msg = (*UpdateConfigurationMsg)(nil)

func (UpdateConfigurationMsg) Path() string { return pathUpdateConfiguration }

func (m *UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	if len(m.Patch.Owner) != 0 {
		if err := m.Patch.Owner.Validate(); err != nil {
			return errors.Field("Patch.Owner", err, "invalid owner")
		}
	}
	if len(m.Patch.CommissionBeneficiary) != 0 {
		if err := m.Patch.CommissionBeneficiary.Validate(); err != nil {
			return errors.Field("Patch.CommissionBeneficiary", err, "invalid commission beneficiary")
		}
	}
	return nil
}
