package submission

import (
	"errors"
	"fmt"
)

// ErrNoSlot indica que o envio foi admitido, mas não conseguiu vaga de chamada em voo.
var ErrNoSlot = errors.New("no in-flight slot available")

// EncodingError indica que o documento não pôde ser serializado.
// É erro de dado/programação: reenviar não resolve.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode document: %v", e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// TransportError indica falha de rede/conexão antes de existir resposta HTTP.
type TransportError struct {
	Target string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("post %s: %v", e.Target, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteRejectedError é retornado para qualquer status diferente de 200.
type RemoteRejectedError struct {
	Status int
	Body   string
}

func (e *RemoteRejectedError) Error() string {
	return fmt.Sprintf("failed to create document: status %d: %s", e.Status, e.Body)
}

// IsEncodingError checks if an error is an EncodingError.
func IsEncodingError(err error) bool {
	var e *EncodingError
	return errors.As(err, &e)
}

// IsTransportError checks if an error is a TransportError.
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// IsRemoteRejected returns the RemoteRejectedError wrapped in err, if any.
func IsRemoteRejected(err error) (*RemoteRejectedError, bool) {
	var e *RemoteRejectedError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
