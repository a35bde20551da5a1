package speech

import "context"

// Provider defines the interface for speech-to-text backends. Any engine
// accepting raw audio plus an instruction and returning plain text is
// substitutable.
type Provider interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string, instruction string) (string, error)
}
