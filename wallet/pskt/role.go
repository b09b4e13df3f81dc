package pskt

import (
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// handle owns a document until a stage transition moves it into the next
// stage's handle.
type handle struct {
	document *Inner
}

func newHandle(document *Inner) handle {
	return handle{document: document}
}

// mustInner returns the document, panicking if the handle was consumed.
func (h *handle) mustInner() *Inner {
	if h.document == nil {
		panic(ErrHandleConsumed)
	}
	return h.document
}

func (h *handle) inner() (*Inner, error) {
	if h.document == nil {
		return nil, errors.WithStack(ErrHandleConsumed)
	}
	return h.document, nil
}

// take moves the document out of the handle
func (h *handle) take() *Inner {
	document := h.mustInner()
	h.document = nil
	return document
}

// Inner returns the document. It must be treated as read only.
func (h *handle) Inner() *Inner {
	return h.mustInner()
}

// IsConsumed returns whether the handle was moved into another stage
func (h *handle) IsConsumed() bool {
	return h.document == nil
}

// Creator starts a new document
type Creator struct{ handle }

// NewCreator returns a Creator holding an empty document
func NewCreator() *Creator {
	return &Creator{handle: newHandle(NewInner())}
}

// FallbackLockTime sets the lock time used when no input asks for one
func (c *Creator) FallbackLockTime(lockTime uint64) *Creator {
	c.mustInner().Global.FallbackLockTime = &lockTime
	return c
}

// InputsModifiable allows inputs to be added
func (c *Creator) InputsModifiable() *Creator {
	c.mustInner().Global.InputsModifiable = true
	return c
}

// OutputsModifiable allows outputs to be added
func (c *Creator) OutputsModifiable() *Creator {
	c.mustInner().Global.OutputsModifiable = true
	return c
}

// Constructor moves the document into the Constructor stage
func (c *Creator) Constructor() *Constructor {
	return &Constructor{handle: newHandle(c.take())}
}

// Constructor adds inputs and outputs to a document
type Constructor struct{ handle }

// AddInput appends input to the document
func (c *Constructor) AddInput(input *Input) error {
	document, err := c.inner()
	if err != nil {
		return err
	}
	if !document.Global.InputsModifiable {
		return errors.WithStack(ErrInputsNotModifiable)
	}
	document.Inputs = append(document.Inputs, input)
	document.recount()
	return nil
}

// AddOutput appends output to the document
func (c *Constructor) AddOutput(output *Output) error {
	document, err := c.inner()
	if err != nil {
		return err
	}
	if !document.Global.OutputsModifiable {
		return errors.WithStack(ErrOutputsNotModifiable)
	}
	document.Outputs = append(document.Outputs, output)
	document.recount()
	return nil
}

// NoMoreInputs locks the inputs of the document
func (c *Constructor) NoMoreInputs() *Constructor {
	c.mustInner().Global.InputsModifiable = false
	return c
}

// NoMoreOutputs locks the outputs of the document
func (c *Constructor) NoMoreOutputs() *Constructor {
	c.mustInner().Global.OutputsModifiable = false
	return c
}

// Updater locks inputs and outputs and moves the document into the Updater
// stage.
func (c *Constructor) Updater() *Updater {
	c.NoMoreInputs().NoMoreOutputs()
	return &Updater{handle: newHandle(c.take())}
}

// Signer is the same as c.Updater().Signer()
func (c *Constructor) Signer() *Signer {
	return c.Updater().Signer()
}

// Updater adjusts the inputs of a document before signing
type Updater struct{ handle }

// SetSequence sets the sequence of the input at inputIndex
func (u *Updater) SetSequence(sequence uint64, inputIndex int) error {
	document, err := u.inner()
	if err != nil {
		return err
	}
	if inputIndex < 0 || inputIndex >= document.Global.InputCount {
		return errors.Wrapf(ErrOutOfBounds, "input index %d, input count %d", inputIndex,
			document.Global.InputCount)
	}
	document.Inputs[inputIndex].Sequence = &sequence
	return nil
}

// Signer moves the document into the Signer stage
func (u *Updater) Signer() *Signer {
	return &Signer{handle: newHandle(u.take())}
}

// Combiner moves the document into the Combiner stage
func (u *Updater) Combiner() *Combiner {
	return &Combiner{handle: newHandle(u.take())}
}

// Signer attaches partial signatures to a document
type Signer struct{ handle }

// CalculateID returns the id of the unsigned transaction. Parties may use it
// to refer to the transaction before it is finalized.
func (s *Signer) CalculateID() *externalapi.DomainTransactionID {
	return s.mustInner().calculateID()
}

// Finalizer moves the document into the Finalizer stage
func (s *Signer) Finalizer() *Finalizer {
	return &Finalizer{handle: newHandle(s.take())}
}

// Combiner moves the document into the Combiner stage
func (s *Signer) Combiner() *Combiner {
	return &Combiner{handle: newHandle(s.take())}
}

// Combiner merges documents built by different parties
type Combiner struct{ handle }

// Signer moves the document into the Signer stage
func (c *Combiner) Signer() *Signer {
	return &Signer{handle: newHandle(c.take())}
}

// Finalizer moves the document into the Finalizer stage
func (c *Combiner) Finalizer() *Finalizer {
	return &Finalizer{handle: newHandle(c.take())}
}

// Finalizer attaches the final signature scripts to a document
type Finalizer struct{ handle }

// ID returns the transaction id set by a successful finalize, or nil
func (f *Finalizer) ID() *externalapi.DomainTransactionID {
	return f.mustInner().Global.ID
}

// Combiner moves the document back into the Combiner stage
func (f *Finalizer) Combiner() *Combiner {
	return &Combiner{handle: newHandle(f.take())}
}

// Extractor moves a finalized document into the Extractor stage
func (f *Finalizer) Extractor() (*Extractor, error) {
	document, err := f.inner()
	if err != nil {
		return nil, err
	}
	if document.Global.ID == nil {
		return nil, errors.WithStack(ErrTxNotFinalized)
	}
	return &Extractor{handle: newHandle(f.take())}, nil
}

// Extractor produces the final transaction of a finalized document
type Extractor struct{ handle }

// The Resume functions wrap a document received from another party in the
// handle of the stage the receiver continues from.

// ResumeUpdater returns an Updater holding document
func ResumeUpdater(document *Inner) (*Updater, error) {
	err := checkResumable(document)
	if err != nil {
		return nil, err
	}
	return &Updater{handle: newHandle(document)}, nil
}

// ResumeSigner returns a Signer holding document
func ResumeSigner(document *Inner) (*Signer, error) {
	err := checkResumable(document)
	if err != nil {
		return nil, err
	}
	return &Signer{handle: newHandle(document)}, nil
}

// ResumeCombiner returns a Combiner holding document
func ResumeCombiner(document *Inner) (*Combiner, error) {
	err := checkResumable(document)
	if err != nil {
		return nil, err
	}
	return &Combiner{handle: newHandle(document)}, nil
}

// ResumeFinalizer returns a Finalizer holding document
func ResumeFinalizer(document *Inner) (*Finalizer, error) {
	err := checkResumable(document)
	if err != nil {
		return nil, err
	}
	return &Finalizer{handle: newHandle(document)}, nil
}

// ResumeExtractor returns an Extractor holding document, which must be
// finalized.
func ResumeExtractor(document *Inner) (*Extractor, error) {
	err := checkResumable(document)
	if err != nil {
		return nil, err
	}
	if document.Global.ID == nil {
		return nil, errors.WithStack(ErrTxNotFinalized)
	}
	return &Extractor{handle: newHandle(document)}, nil
}

func checkResumable(document *Inner) error {
	if document == nil {
		return errors.New("cannot resume a nil document")
	}
	if document.Global.Version != Version0 {
		return errors.Wrapf(ErrUnsupportedVersion, "version %s", document.Global.Version)
	}
	if document.Global.InputCount != len(document.Inputs) || document.Global.OutputCount != len(document.Outputs) {
		return errors.Errorf("document counts %d/%d do not match its %d inputs and %d outputs",
			document.Global.InputCount, document.Global.OutputCount, len(document.Inputs), len(document.Outputs))
	}
	return nil
}
