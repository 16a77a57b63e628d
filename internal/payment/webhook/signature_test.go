package webhook

import (
	"testing"

	"github.com/smallbiznis/payhook/internal/payment/domain"
	"github.com/stretchr/testify/assert"
)

func TestSignKnownVector(t *testing.T) {
	// RFC 4231 test case 2.
	got := Sign("Jefe", []byte("what do ya want for nothing?"))
	assert.Equal(t, "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843", got)
}

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"id":"evt_1","event":"payment.captured"}`)
	sig := Sign(secret, body)

	tests := []struct {
		name      string
		secret    string
		body      []byte
		signature string
		wantErr   error
	}{
		{name: "valid", secret: secret, body: body, signature: sig},
		{name: "surrounding whitespace", secret: secret, body: body, signature: "  " + sig + " "},
		{name: "missing signature", secret: secret, body: body, signature: "", wantErr: domain.ErrAuthenticationMissing},
		{name: "missing secret", secret: "", body: body, signature: sig, wantErr: domain.ErrAuthenticationMissing},
		{name: "wrong secret", secret: "other", body: body, signature: sig, wantErr: domain.ErrInvalidSignature},
		{name: "tampered body", secret: secret, body: []byte(`{"id":"evt_2","event":"payment.captured"}`), signature: sig, wantErr: domain.ErrInvalidSignature},
		{name: "reordered keys", secret: secret, body: []byte(`{"event":"payment.captured","id":"evt_1"}`), signature: sig, wantErr: domain.ErrInvalidSignature},
		{name: "reformatted whitespace", secret: secret, body: []byte(`{"id": "evt_1", "event": "payment.captured"}`), signature: sig, wantErr: domain.ErrInvalidSignature},
		{name: "truncated signature", secret: secret, body: body, signature: sig[:10], wantErr: domain.ErrInvalidSignature},
		{name: "uppercase hex", secret: secret, body: body, signature: upper(sig), wantErr: domain.ErrInvalidSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifySignature(tt.secret, tt.body, tt.signature)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func upper(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'a' && c <= 'f' {
			out[i] = c - 'a' + 'A'
		}
	}
	return string(out)
}
