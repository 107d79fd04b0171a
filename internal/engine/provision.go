package engine

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	// SPL Associated Token Account program
	associatedTokenProgramID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
)

// FindAssociatedTokenAddress derives the ATA PDA for (owner, mint).
func FindAssociatedTokenAddress(owner, mint solana.PublicKey) (ata solana.PublicKey, bump uint8, err error) {
	// Seeds: [owner, token_program, mint]
	return solana.FindProgramAddress(
		[][]byte{
			owner.Bytes(),
			solana.TokenProgramID.Bytes(),
			mint.Bytes(),
		},
		associatedTokenProgramID,
	)
}

// NewCreateAssociatedTokenAccountIx builds an instruction to create an ATA.
// Account order (ATA program):
// 0. payer (signer, writable)
// 1. ata (writable)
// 2. owner (read-only)
// 3. mint (read-only)
// 4. system_program
// 5. token_program
// 6. rent_sysvar
func NewCreateAssociatedTokenAccountIx(
	payer solana.PublicKey,
	ata solana.PublicKey,
	owner solana.PublicKey,
	mint solana.PublicKey,
) solana.Instruction {
	accounts := []*solana.AccountMeta{
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: ata, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: false, IsWritable: false},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
	}

	// ATA create instruction data is empty.
	return solana.NewInstruction(associatedTokenProgramID, accounts, nil)
}

// AccountExistsFunc reports whether an account is live on the ledger.
type AccountExistsFunc func(ctx context.Context, account solana.PublicKey) (bool, error)

// ataProvisioner implements the router's AccountProvisioner against a
// transaction plan: an unusable destination gets a create-ATA instruction
// prepended to the same transaction as the swap legs, so provisioning shares
// the request's all-or-nothing fate.
type ataProvisioner struct {
	payer  solana.PublicKey
	exists AccountExistsFunc
	plan   *txPlan
}

func (p *ataProvisioner) IsUsable(ctx context.Context, account solana.PublicKey) (bool, error) {
	if p.plan.provisioned(account) {
		// Already scheduled for creation earlier in this request.
		return true, nil
	}
	return p.exists(ctx, account)
}

func (p *ataProvisioner) Initialize(_ context.Context, account, owner, mint solana.PublicKey) error {
	ata, _, err := FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return fmt.Errorf("derive ata: %w", err)
	}
	if !ata.Equals(account) {
		return fmt.Errorf("account %s is not the associated token account for owner %s mint %s", account, owner, mint)
	}

	p.plan.addSetup(NewCreateAssociatedTokenAccountIx(p.payer, ata, owner, mint))
	p.plan.markProvisioned(account)
	return nil
}
