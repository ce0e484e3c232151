// Package failures defines the error taxonomy shared by every otterpack stage.
//
// Each stage tags its errors with one of the exported sentinel markers so the
// pipeline, the history store, and the CLI can classify a failure with
// errors.Is without parsing messages. Wrap builds the human-readable chain;
// ExitCode digs the encoder's numeric exit status out of it.
package failures
