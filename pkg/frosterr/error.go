// Package frosterr implements the error taxonomy spec.md §7 prescribes: every
// failure the protocol can report is tagged by Kind (and, for protocol
// failures, a Reason) and carries the offending addresses, if any.
package frosterr

import (
	"errors"
	"fmt"

	"github.com/thresholdlabs/frost25519/pkg/address"
)

// Kind classifies an Error at the top level.
type Kind int

const (
	// Config covers bad th/|members|, self not in members, inconsistent
	// group ids, and oversized message hashes.
	Config Kind = iota
	// Protocol covers every failure detected during DKG or signing; see
	// Reason for the specific sub-kind.
	Protocol
	// Derivation covers bad BIP32 path syntax or hardened-index requests.
	Derivation
	// Crypto covers AEAD failures and random-source failures.
	Crypto
	// Transport covers any Messenger failure, always fatal for the run.
	Transport
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "ConfigError"
	case Protocol:
		return "ProtocolError"
	case Derivation:
		return "DerivationError"
	case Crypto:
		return "CryptoError"
	case Transport:
		return "TransportError"
	default:
		return "UnknownError"
	}
}

// Reason further classifies a Protocol-kind Error.
type Reason int

const (
	// ReasonNone is used for non-Protocol errors.
	ReasonNone Reason = iota
	InvalidZKP
	InvalidShare
	InvalidResponse
	InvalidSignature
	ThresholdInflation
	DuplicateSigner
)

func (r Reason) String() string {
	switch r {
	case InvalidZKP:
		return "invalid ZKP"
	case InvalidShare:
		return "invalid share"
	case InvalidResponse:
		return "invalid response"
	case InvalidSignature:
		return "invalid signature"
	case ThresholdInflation:
		return "threshold inflation"
	case DuplicateSigner:
		return "duplicate signer"
	default:
		return ""
	}
}

// Error is the single concrete error type returned across every package
// boundary in this module.
type Error struct {
	Kind      Kind
	Reason    Reason
	Offenders []address.Address
	Context   string
	Err       error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Reason != ReasonNone {
		msg += ": " + e.Reason.String()
	}
	if e.Context != "" {
		msg += ": " + e.Context
	}
	if len(e.Offenders) > 0 {
		msg += fmt.Sprintf(" (offenders: %v)", e.Offenders)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on Kind+Reason alone, so callers can write
// errors.Is(err, frosterr.Sentinel(frosterr.Protocol, frosterr.InvalidShare)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Reason == ReasonNone || e.Reason == t.Reason)
}

// Sentinel builds a bare Error suitable only for errors.Is comparisons.
func Sentinel(kind Kind, reason Reason) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// ConfigErr builds a ConfigError.
func ConfigErr(context string, err error) *Error {
	return &Error{Kind: Config, Context: context, Err: err}
}

// ProtocolErr builds a ProtocolError with the given Reason and offenders.
func ProtocolErr(reason Reason, context string, offenders []address.Address, err error) *Error {
	return &Error{Kind: Protocol, Reason: reason, Context: context, Offenders: offenders, Err: err}
}

// DerivationErr builds a DerivationError.
func DerivationErr(context string, err error) *Error {
	return &Error{Kind: Derivation, Context: context, Err: err}
}

// CryptoErr builds a CryptoError.
func CryptoErr(context string, err error) *Error {
	return &Error{Kind: Crypto, Context: context, Err: err}
}

// TransportErr builds a TransportError, always fatal for the run.
func TransportErr(context string, err error) *Error {
	return &Error{Kind: Transport, Context: context, Err: err}
}

// As is a thin re-export of errors.As for callers that only import frosterr.
func As(err error, target any) bool { return errors.As(err, target) }
