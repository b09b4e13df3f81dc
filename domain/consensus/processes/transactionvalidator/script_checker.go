package transactionvalidator

import (
	"context"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/ruleerrors"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/consensushashing"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/txscript"
	"github.com/biryukovmaxim/rusty-kaspa/infrastructure/logger"
	"github.com/biryukovmaxim/rusty-kaspa/util/workerpool"
	"github.com/pkg/errors"
)

// ScriptChecker verifies that the signature scripts of a transaction satisfy
// the script public keys of the outputs they spend. Every check strategy
// shares the same signature cache.
type ScriptChecker struct {
	sigCache *txscript.SigCache
	flags    txscript.ScriptFlags
}

// NewScriptChecker returns a ScriptChecker that memoizes signature
// verifications in sigCache. A nil sigCache disables memoization.
func NewScriptChecker(sigCache *txscript.SigCache) *ScriptChecker {
	return &ScriptChecker{
		sigCache: sigCache,
		flags:    txscript.ScriptNoFlags,
	}
}

// WithFlags returns a copy of the checker that runs the engine with flags.
func (c *ScriptChecker) WithFlags(flags txscript.ScriptFlags) *ScriptChecker {
	return &ScriptChecker{
		sigCache: c.sigCache,
		flags:    flags,
	}
}

// SigCache returns the signature cache used by the checker
func (c *ScriptChecker) SigCache() *txscript.SigCache {
	return c.sigCache
}

// CheckScripts verifies the inputs of tx one after the other and returns the
// error of the first input that fails.
func (c *ScriptChecker) CheckScripts(tx *externalapi.DomainTransaction) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "CheckScripts")
	defer onEnd()

	err := checkUTXOEntriesPresent(tx)
	if err != nil {
		return err
	}

	sighashReusedValues := &consensushashing.SighashReusedValues{}
	for i := range tx.Inputs {
		err := c.checkInput(tx, i, sighashReusedValues)
		if err != nil {
			return err
		}
	}
	return nil
}

// CheckScriptsParallel verifies the inputs of tx concurrently on the default
// worker pool. It returns the first failure observed, which is not
// necessarily the failure of the lowest failing input.
func (c *ScriptChecker) CheckScriptsParallel(ctx context.Context, tx *externalapi.DomainTransaction) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "CheckScriptsParallel")
	defer onEnd()

	return c.checkScriptsOnPool(ctx, workerpool.Default(), tx)
}

// CheckScriptsWithPool is the same as CheckScriptsParallel except that the
// inputs are verified on the given pool.
func (c *ScriptChecker) CheckScriptsWithPool(ctx context.Context, pool *workerpool.Pool,
	tx *externalapi.DomainTransaction) error {

	onEnd := logger.LogAndMeasureExecutionTime(log, "CheckScriptsWithPool")
	defer onEnd()

	return c.checkScriptsOnPool(ctx, pool, tx)
}

// Check verifies tx using the given strategy
func (c *ScriptChecker) Check(ctx context.Context, strategy Strategy, tx *externalapi.DomainTransaction) error {
	switch strategy.kind {
	case strategySequential:
		return c.CheckScripts(tx)
	case strategyParallel:
		return c.CheckScriptsParallel(ctx, tx)
	case strategyPool:
		if strategy.pool == nil {
			return errors.New("the pool strategy requires a pool")
		}
		return c.CheckScriptsWithPool(ctx, strategy.pool, tx)
	default:
		return errors.Errorf("unknown script check strategy %d", strategy.kind)
	}
}

func (c *ScriptChecker) checkScriptsOnPool(ctx context.Context, pool *workerpool.Pool,
	tx *externalapi.DomainTransaction) error {

	err := checkUTXOEntriesPresent(tx)
	if err != nil {
		return err
	}

	log.Tracef("Checking %d inputs on a pool of %d workers", len(tx.Inputs), pool.Size())
	sighashReusedValues := &consensushashing.SighashReusedValues{}
	return workerpool.Process(ctx, pool, len(tx.Inputs), func(_ context.Context, index int) error {
		return c.checkInput(tx, index, sighashReusedValues)
	})
}

func (c *ScriptChecker) checkInput(tx *externalapi.DomainTransaction, index int,
	sighashReusedValues *consensushashing.SighashReusedValues) error {

	input := tx.Inputs[index]
	scriptPublicKey := input.UTXOEntry.ScriptPublicKey()
	vm, err := txscript.NewEngine(scriptPublicKey, tx, index, c.flags, c.sigCache, sighashReusedValues)
	if err != nil {
		return errors.Wrapf(ruleerrors.ErrScriptMalformed, "failed to parse input "+
			"%d which references output %s - "+
			"%s (input script bytes %x, prev "+
			"output script bytes %x)",
			index, input.PreviousOutpoint, err, input.SignatureScript, scriptPublicKey.Script)
	}

	err = vm.Execute()
	if err != nil {
		return errors.Wrapf(ruleerrors.ErrScriptValidation, "failed to validate input "+
			"%d which references output %s - "+
			"%s (input script bytes %x, prev output "+
			"script bytes %x)",
			index, input.PreviousOutpoint, err, input.SignatureScript, scriptPublicKey.Script)
	}
	return nil
}

func checkUTXOEntriesPresent(tx *externalapi.DomainTransaction) error {
	var missingOutpoints []*externalapi.DomainOutpoint
	for _, input := range tx.Inputs {
		if input.UTXOEntry == nil {
			missingOutpoints = append(missingOutpoints, &input.PreviousOutpoint)
		}
	}
	if len(missingOutpoints) > 0 {
		return ruleerrors.NewErrMissingTxOut(missingOutpoints)
	}
	return nil
}
