package protocol

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fe/internal/common"
	"github.com/dmitrijs2005/fe/internal/signature"
)

// FetchKey is the fixed operation key of the fetch endpoint.
const FetchKey = "FTCH"

const (
	messageKeyRunes = 32
	fileKeyRunes    = 16
)

// ErrMissingField is returned when a field an operation key is derived
// from is absent or a sentinel. File content may be empty.
var ErrMissingField = errors.New("operation key: missing field")

type keyRule func(Request) (string, error)

var operationKeys = map[Endpoint]keyRule{
	EndpointFetch: func(Request) (string, error) {
		return FetchKey, nil
	},
	EndpointRead: func(req Request) (string, error) {
		r, ok := req.(*ReadRequest)
		if !ok {
			return "", mismatch(req)
		}
		if common.IsMissingMessageID(r.MessageID.String()) {
			return "", ErrMissingField
		}
		return r.MessageID.String(), nil
	},
	EndpointSendMessage: func(req Request) (string, error) {
		r, ok := req.(*SendMessageRequest)
		if !ok {
			return "", mismatch(req)
		}
		if _, err := required(r.MessageText); err != nil {
			return "", err
		}
		return firstRunes(r.MessageText, messageKeyRunes), nil
	},
	EndpointSendFile: func(req Request) (string, error) {
		r, ok := req.(*SendFileRequest)
		if !ok {
			return "", mismatch(req)
		}
		if _, err := required(r.FileName); err != nil {
			return "", err
		}
		return firstRunes(r.FileName, fileKeyRunes) + firstRunes(r.FileContent, fileKeyRunes), nil
	},
}

// OperationKey derives the string folded into req's signature.
func OperationKey(req Request) (string, error) {
	rule, ok := operationKeys[req.Endpoint()]
	if !ok {
		return "", fmt.Errorf("operation key: unknown endpoint %q", req.Endpoint())
	}
	return rule(req)
}

// SignRequest sets req's signature for the identity already in req.
func SignRequest(req Request, secret string) error {
	key, err := OperationKey(req)
	if err != nil {
		return err
	}
	auth := req.Auth()
	auth.Signature = signature.Sign(auth.SenderID, key, secret)
	return nil
}

func required(v string) (string, error) {
	if common.IsSentinel(v) {
		return "", ErrMissingField
	}
	return v, nil
}

func mismatch(req Request) error {
	return fmt.Errorf("operation key: %T does not belong to endpoint %q", req, req.Endpoint())
}

func firstRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
