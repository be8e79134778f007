package service

import (
	"testing"

	"github.com/google/uuid"
)

func TestSessionKeys(t *testing.T) {
	id := uuid.MustParse("6f1c2d2e-7a7b-4b53-9c1e-2a6f0e0d9b11")
	if got := accessKey(id, "t1"); got != "access_token:6f1c2d2e-7a7b-4b53-9c1e-2a6f0e0d9b11:t1" {
		t.Errorf("unexpected access key %q", got)
	}
	if got := refreshKey(id, "t2"); got != "refresh_token:6f1c2d2e-7a7b-4b53-9c1e-2a6f0e0d9b11:t2" {
		t.Errorf("unexpected refresh key %q", got)
	}
}
