package message

import (
	"github.com/onoffswitch/gocassa/internal/primitive"
	"github.com/onoffswitch/gocassa/internal/protocol"
	"github.com/onoffswitch/gocassa/internal/xerrors"
)

// DecodeError parses an ERROR body into a *xerrors.ServerError, reading
// the code-specific trailing fields only the codes that define them
// carry (CQL binary protocol v4 §8).
func DecodeError(body []byte) (*xerrors.ServerError, error) {
	r := primitive.NewReader(body)
	code, err := r.Int("error.code")
	if err != nil {
		return nil, err
	}
	msg, err := r.String("error.message")
	if err != nil {
		return nil, err
	}
	se := &xerrors.ServerError{Code: xerrors.ServerErrorCode(code), Message: msg}

	switch protocol.ErrorCode(code) {
	case protocol.ErrorCodeUnavailable:
		cl, err := r.Consistency("error.consistency")
		if err != nil {
			return nil, err
		}
		required, err := r.Int("error.required")
		if err != nil {
			return nil, err
		}
		alive, err := r.Int("error.alive")
		if err != nil {
			return nil, err
		}
		se.Consistency, se.Required, se.Alive = cl, required, alive

	case protocol.ErrorCodeWriteTimeout, protocol.ErrorCodeWriteFailure:
		cl, err := r.Consistency("error.consistency")
		if err != nil {
			return nil, err
		}
		received, err := r.Int("error.received")
		if err != nil {
			return nil, err
		}
		blockFor, err := r.Int("error.blockfor")
		if err != nil {
			return nil, err
		}
		if protocol.ErrorCode(code) == protocol.ErrorCodeWriteFailure {
			if _, err := r.Int("error.numfailures"); err != nil {
				return nil, err
			}
		}
		writeType, err := r.String("error.writetype")
		if err != nil {
			return nil, err
		}
		se.Consistency, se.Received, se.BlockFor, se.WriteType = cl, received, blockFor, writeType

	case protocol.ErrorCodeReadTimeout, protocol.ErrorCodeReadFailure:
		cl, err := r.Consistency("error.consistency")
		if err != nil {
			return nil, err
		}
		received, err := r.Int("error.received")
		if err != nil {
			return nil, err
		}
		blockFor, err := r.Int("error.blockfor")
		if err != nil {
			return nil, err
		}
		if protocol.ErrorCode(code) == protocol.ErrorCodeReadFailure {
			if _, err := r.Int("error.numfailures"); err != nil {
				return nil, err
			}
		}
		present, err := r.Byte("error.datapresent")
		if err != nil {
			return nil, err
		}
		se.Consistency, se.Received, se.BlockFor, se.DataPresent = cl, received, blockFor, present != 0

	case protocol.ErrorCodeAlreadyExists:
		ks, err := r.String("error.keyspace")
		if err != nil {
			return nil, err
		}
		table, err := r.String("error.table")
		if err != nil {
			return nil, err
		}
		se.Keyspace, se.Table = ks, table

	case protocol.ErrorCodeUnprepared:
		id, err := r.ShortBytes("error.unprepared_id")
		if err != nil {
			return nil, err
		}
		se.UnpreparedID = id

	case protocol.ErrorCodeFunctionFailure:
		if _, err := r.String("error.keyspace"); err != nil {
			return nil, err
		}
		if _, err := r.String("error.function"); err != nil {
			return nil, err
		}
		if _, err := r.StringList("error.argtypes"); err != nil {
			return nil, err
		}
	}

	return se, nil
}
