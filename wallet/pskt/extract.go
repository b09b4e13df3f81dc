package pskt

import (
	"context"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/processes/transactionvalidator"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/txscript"
)

// extractionSigCacheSize is the size of the signature cache ExtractTx
// verifies with.
const extractionSigCacheSize = 10_000

// DetermineLockTime returns the lock time of the extracted transaction: the
// greatest minimum time set by an input, else the fallback lock time, else 0.
func (e *Extractor) DetermineLockTime() uint64 {
	return e.mustInner().determineLockTime()
}

// ExtractTxUnchecked returns a function that builds the final transaction
// with the given mass. The signature scripts are not verified.
func (e *Extractor) ExtractTxUnchecked() func(mass uint64) *externalapi.DomainTransaction {
	return builderWithMass(e.finalTransaction())
}

// ExtractTx verifies every input of the final transaction, one after the
// other, and returns a function that builds it with the given mass. A
// failing input is reported with its index, wrapping
// ruleerrors.ErrScriptValidation.
func (e *Extractor) ExtractTx() (func(mass uint64) *externalapi.DomainTransaction, error) {
	checker := transactionvalidator.NewScriptChecker(txscript.NewSigCache(extractionSigCacheSize))
	return e.ExtractTxWith(context.Background(), checker, transactionvalidator.Sequential())
}

// ExtractTxWith is ExtractTx with a caller chosen checker and strategy.
// Parallel strategies do not guarantee which failing input is reported.
func (e *Extractor) ExtractTxWith(ctx context.Context, checker *transactionvalidator.ScriptChecker,
	strategy transactionvalidator.Strategy) (func(mass uint64) *externalapi.DomainTransaction, error) {

	tx := e.finalTransaction()
	err := checker.Check(ctx, strategy, tx)
	if err != nil {
		return nil, err
	}
	log.Debugf("Verified the %d inputs of transaction %s", len(tx.Inputs), e.mustInner().Global.ID)
	return builderWithMass(tx), nil
}

// builderWithMass returns a function producing an independent copy of tx
// carrying the given mass on every call.
func builderWithMass(tx *externalapi.DomainTransaction) func(mass uint64) *externalapi.DomainTransaction {
	return func(mass uint64) *externalapi.DomainTransaction {
		built := tx.Clone()
		built.Mass = mass
		return built
	}
}

func (e *Extractor) finalTransaction() *externalapi.DomainTransaction {
	document := e.mustInner()
	tx := document.signableTransaction()
	for i, input := range document.Inputs {
		tx.Inputs[i].SignatureScript = cloneBytes(input.FinalScriptSig)
		if tx.Inputs[i].SignatureScript == nil {
			tx.Inputs[i].SignatureScript = []byte{}
		}
	}
	return tx
}
