package source

import (
	"io"

	"github.com/shinji-kodama/merlin/internal/model"
)

// Driver retrieves and stores a configuration set from and to a stream.
//
// Read either fully succeeds or fails: on error no ConfigurationSet is
// returned. Neither method closes the stream it is given.
type Driver interface {
	// Read parses the source stream into a validated ConfigurationSet.
	Read(r io.Reader) (*model.ConfigurationSet, error)

	// Write serializes cs to the output stream.
	Write(w io.Writer, cs *model.ConfigurationSet) error
}
