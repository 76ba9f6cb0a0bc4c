// persist.go serialises a Pool's state into an accountstate.Store and
// rehydrates it. Operation handlers only mutate the in-memory Pool and
// never call Save; the caller persists with Save after an operation.
package stakepool

import (
	"github.com/Tempest-Finance/fogo-stake-pool/accountstate"
	"github.com/Tempest-Finance/fogo-stake-pool/codec"
	"github.com/Tempest-Finance/fogo-stake-pool/stakepoolerr"
	"github.com/Tempest-Finance/fogo-stake-pool/validatorlist"
)

// Save writes the pool record to the pool's own account and the
// validator list (header plus packed entries) to the validator-list
// account.
func (p *Pool) Save(store accountstate.Store) error {
	poolAcct, err := store.Get(p.Address)
	if err != nil {
		poolAcct = &accountstate.Account{Owner: p.ProgramID}
	}
	poolAcct.Data = p.Record.Encode()
	if err := store.Set(p.Address, poolAcct); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindInvalidState, err, "writing pool record")
	}

	listAcct, err := store.Get(p.Record.ValidatorList)
	if err != nil {
		listAcct = &accountstate.Account{Owner: p.ProgramID}
	}
	header := codec.ValidatorListHeader{
		AccountType:   codec.AccountTypeValidatorList,
		MaxValidators: p.List.MaxValidators,
	}
	listAcct.Data = codec.EncodeValidatorList(header, p.List.Entries)
	if err := store.Set(p.Record.ValidatorList, listAcct); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindInvalidState, err, "writing validator list")
	}
	return nil
}

// Load rehydrates a Pool from the two accounts Save wrote. The pool
// account must be tagged AccountTypePool and the list account
// AccountTypeValidatorList.
func Load(programID, poolAddress accountstate.Address, store accountstate.Store, deps Dependencies) (*Pool, error) {
	poolAcct, err := store.Get(poolAddress)
	if err != nil {
		return nil, stakepoolerr.Wrap(stakepoolerr.KindInvalidProgramAddress, err, "reading pool record")
	}
	record, err := codec.DecodePool(poolAcct.Data)
	if err != nil {
		return nil, stakepoolerr.Wrap(stakepoolerr.KindInvalidState, err, "decoding pool record")
	}
	if !record.IsValid() {
		return nil, stakepoolerr.New(stakepoolerr.KindInvalidState, "account is not a pool record")
	}

	listAcct, err := store.Get(record.ValidatorList)
	if err != nil {
		return nil, stakepoolerr.Wrap(stakepoolerr.KindInvalidProgramAddress, err, "reading validator list")
	}
	header, entries, err := codec.DecodeValidatorList(listAcct.Data)
	if err != nil {
		return nil, stakepoolerr.Wrap(stakepoolerr.KindInvalidState, err, "decoding validator list")
	}
	if header.AccountType != codec.AccountTypeValidatorList {
		return nil, stakepoolerr.New(stakepoolerr.KindInvalidState, "account is not a validator list")
	}

	list := &validatorlist.List{MaxValidators: header.MaxValidators, Entries: entries}
	return New(programID, poolAddress, record, list, deps), nil
}
