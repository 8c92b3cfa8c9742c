package load

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// signaturePayload is the canonical byte layout signed for a transition row.
// PrevSignature chains each row to its predecessor so the log cannot be
// truncated or reordered without detection.
type signaturePayload struct {
	LoadID         string         `json:"load_id"`
	FromStatus     string         `json:"from_status"`
	ToStatus       string         `json:"to_status"`
	ActorID        string         `json:"actor_id"`
	Reason         string         `json:"reason"`
	Meta           TransitionMeta `json:"meta"`
	TransitionedAt string         `json:"transitioned_at"`
	PrevSignature  string         `json:"prev_signature"`
}

func transitionPayload(tr *StateTransition, prevSignature string) signaturePayload {
	p := signaturePayload{
		LoadID:         tr.LoadID.String(),
		ToStatus:       string(tr.ToStatus),
		ActorID:        tr.ActorID.String(),
		Meta:           tr.Meta,
		TransitionedAt: tr.TransitionedAt.UTC().Format(time.RFC3339Nano),
		PrevSignature:  prevSignature,
	}
	if tr.FromStatus != nil {
		p.FromStatus = string(*tr.FromStatus)
	}
	if tr.Reason != nil {
		p.Reason = *tr.Reason
	}
	return p
}

// SignTransition computes the hex-encoded HMAC-SHA256 signature for a
// transition row. prevSignature is the signature of the load's previous
// log row, or empty for the first row.
func SignTransition(tr *StateTransition, prevSignature string, key []byte) (string, error) {
	data, err := json.Marshal(transitionPayload(tr, prevSignature))
	if err != nil {
		return "", fmt.Errorf("failed to marshal transition payload: %w", err)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// VerifyTransition checks a transition row's signature against the signing
// key and the previous row's signature.
func VerifyTransition(tr *StateTransition, prevSignature string, key []byte) (bool, error) {
	expected, err := SignTransition(tr, prevSignature, key)
	if err != nil {
		return false, err
	}
	return hmac.Equal([]byte(expected), []byte(tr.Signature)), nil
}

// VerifyTransitionChain walks rows oldest-first and verifies every
// signature against its predecessor. It returns the index of the first
// row that fails, or -1 when the whole chain is intact.
func VerifyTransitionChain(rows []*StateTransition, key []byte) (int, error) {
	prev := ""
	for i, tr := range rows {
		ok, err := VerifyTransition(tr, prev, key)
		if err != nil {
			return i, err
		}
		if !ok {
			return i, nil
		}
		prev = tr.Signature
	}
	return -1, nil
}
