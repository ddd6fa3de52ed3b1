package gnnsom

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/turtacn/kcfgraph/pkg/errors"
)

// stateFormat identifies the envelope written by EncodeState.
const stateFormat = "kcfgraph.gnnsom.state/v1"

// StateFile is the on-disk envelope of a state dictionary.
type StateFile struct {
	Format         string       `msgpack:"format"`
	LibraryVersion string       `msgpack:"library_version,omitempty"`
	Model          *ModelConfig `msgpack:"model,omitempty"`
	Params         StateDict    `msgpack:"params"`
}

// EncodeState writes f to w.  Map keys are sorted so equal states encode to
// equal bytes.
func EncodeState(w io.Writer, f *StateFile) error {
	f.Format = stateFormat
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(f); err != nil {
		return errors.Wrap(err, errors.ErrCodeModelStateCodecError, "encode model state")
	}
	return nil
}

// DecodeState reads a state envelope from r and validates every tensor.
func DecodeState(r io.Reader) (*StateFile, error) {
	var f StateFile
	if err := msgpack.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeModelStateCodecError, "decode model state")
	}
	if f.Format != stateFormat {
		return nil, errors.New(errors.ErrCodeModelStateCodecError, "unknown model state format").
			WithDetailf("%q", f.Format)
	}
	if f.Params == nil {
		f.Params = StateDict{}
	}
	for _, name := range f.Params.Names() {
		if err := f.Params[name].Validate(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeModelStateInvalid, "invalid parameter "+name)
		}
	}
	return &f, nil
}

// ReadStateFile decodes the state file at path.
func ReadStateFile(path string) (*StateFile, error) {
	fh, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrCodeNotFound, "model state file not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "open model state file")
	}
	defer fh.Close()
	return DecodeState(bufio.NewReader(fh))
}

// WriteStateFile encodes f to path, replacing any existing file only once
// the new content is complete.
func WriteStateFile(path string, f *StateFile) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".state-*")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "create model state file")
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriter(tmp)
	if err := EncodeState(bw, f); err != nil {
		tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.ErrCodeInternal, "write model state file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "close model state file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "replace model state file")
	}
	return nil
}

//Personal.AI order the ending
