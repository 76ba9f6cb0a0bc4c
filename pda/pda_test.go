package pda

import (
	"testing"

	"github.com/Tempest-Finance/fogo-stake-pool/accountstate"
	"github.com/stretchr/testify/require"
)

func TestDerivationsAreDeterministicAndDistinct(t *testing.T) {
	var programID, pool, vote accountstate.Address
	programID[0] = 1
	pool[0] = 2
	vote[0] = 3

	dep1, _ := DepositAuthority(programID, pool)
	dep2, _ := DepositAuthority(programID, pool)
	require.Equal(t, dep1, dep2, "derivation must be deterministic")

	withdraw, _ := WithdrawAuthority(programID, pool)
	require.NotEqual(t, dep1, withdraw, "deposit and withdraw authorities must differ")

	primary, _ := ValidatorStake(programID, vote, pool, nil)
	seed := uint32(7)
	withSeed, _ := ValidatorStake(programID, vote, pool, &seed)
	require.NotEqual(t, primary, withSeed)

	transient0, _ := TransientStake(programID, vote, pool, 0)
	transient1, _ := TransientStake(programID, vote, pool, 1)
	require.NotEqual(t, transient0, transient1)

	userStake0, _ := UserStake(programID, vote, 0)
	require.NotEqual(t, userStake0, transient0)
}

func TestCanonicalBumpIsFixed(t *testing.T) {
	var programID, pool accountstate.Address
	_, bump := DepositAuthority(programID, pool)
	require.Equal(t, CanonicalBump, bump)
}
