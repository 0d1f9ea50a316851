package models

import (
	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
)

// OwnershipToken binds one child identifier to the parent identity holding
// custody of the record. The binding is non-transferable: the only legal
// ownership changes are mint (null → parent) and burn (parent → null), and
// no ledger operation ever burns.
type OwnershipToken struct {
	ChildID id.ChildID  `json:"child_id"`
	Owner   id.Identity `json:"owner"`
}

// GuardTransfer is invoked on every ownership-changing path. It rejects any
// change whose source and destination are both non-null, which forecloses
// transfers while structurally permitting mint and burn.
func GuardTransfer(from, to id.Identity) error {
	if !from.IsNil() && !to.IsNil() {
		return dErrors.New(dErrors.CodeTransferNotAllowed, "ownership tokens are non-transferable")
	}
	return nil
}

// MintToken creates the binding at record creation. The zero source passes
// the guard; a nil owner is rejected upstream as an invalid parent.
func MintToken(childID id.ChildID, owner id.Identity) (OwnershipToken, error) {
	if owner.IsNil() {
		return OwnershipToken{}, dErrors.New(dErrors.CodeInvalidParent, "token owner cannot be the null identity")
	}
	if err := GuardTransfer(id.NilIdentity, owner); err != nil {
		return OwnershipToken{}, err
	}
	return OwnershipToken{ChildID: childID, Owner: owner}, nil
}

// Transfer applies an ownership change through the guard. Kept for the burn
// path should record destruction ever be introduced; every parent-to-parent
// attempt fails.
func (t OwnershipToken) Transfer(to id.Identity) (OwnershipToken, error) {
	if err := GuardTransfer(t.Owner, to); err != nil {
		return t, err
	}
	return OwnershipToken{ChildID: t.ChildID, Owner: to}, nil
}
