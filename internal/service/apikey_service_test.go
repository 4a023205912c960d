package service

import (
	"context"
	"strings"
	"testing"

	"ai-orchestrator-be/internal/dto"

	"github.com/google/uuid"
)

func newApiKeyFixture() (*fakeApiKeyRepo, IApiKeyService) {
	repo := newFakeApiKeyRepo()
	uow := &fakeUnitOfWork{apiKeys: repo}
	svc := NewApiKeyService(&fakeFactory{uow: uow}, nil, nopLogger{})
	return repo, svc
}

func TestCreateReturnsPlaintextOnce(t *testing.T) {
	repo, svc := newApiKeyFixture()

	res, err := svc.Create(context.Background(), &dto.CreateApiKeyRequest{Name: "ci"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if !strings.HasPrefix(res.Key, "sk-") {
		t.Errorf("Key = %q, want sk- prefix", res.Key)
	}
	stored := repo.keys[res.Id]
	if stored == nil {
		t.Fatal("key was not persisted")
	}
	if strings.Contains(res.Key, stored.SecretHash) {
		t.Error("plaintext must not embed the stored hash")
	}
	if stored.SecretHash == "" {
		t.Error("stored key must carry a secret hash")
	}
}

func TestValidateAcceptsIssuedKey(t *testing.T) {
	repo, svc := newApiKeyFixture()

	res, err := svc.Create(context.Background(), &dto.CreateApiKeyRequest{Name: "ci"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Validate(context.Background(), res.Key); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(repo.touched) != 1 {
		t.Errorf("expected last_used_at touch, got %d", len(repo.touched))
	}
}

func TestValidateRejectsTamperedSecret(t *testing.T) {
	_, svc := newApiKeyFixture()

	res, err := svc.Create(context.Background(), &dto.CreateApiKeyRequest{Name: "ci"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tampered := res.Key[:len(res.Key)-4] + "zzzz"
	if err := svc.Validate(context.Background(), tampered); err == nil {
		t.Error("Validate() should reject a tampered secret")
	}
}

func TestValidateRejectsRevokedKey(t *testing.T) {
	_, svc := newApiKeyFixture()

	res, err := svc.Create(context.Background(), &dto.CreateApiKeyRequest{Name: "ci"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := svc.Revoke(context.Background(), res.Id); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}

	if err := svc.Validate(context.Background(), res.Key); err == nil {
		t.Error("Validate() should reject a revoked key")
	}
}

func TestParseApiKeyRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{name: "empty", key: ""},
		{name: "wrong prefix", key: "pk-" + uuid.NewString() + ".secret"},
		{name: "no separator", key: "sk-" + uuid.NewString()},
		{name: "empty secret", key: "sk-" + uuid.NewString() + "."},
		{name: "bad uuid", key: "sk-not-a-uuid.secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := parseApiKey(tt.key); err == nil {
				t.Errorf("parseApiKey(%q) should fail", tt.key)
			}
		})
	}
}

func TestParseApiKeyRoundTrip(t *testing.T) {
	id := uuid.New()
	gotId, secret, err := parseApiKey("sk-" + id.String() + ".deadbeef")
	if err != nil {
		t.Fatalf("parseApiKey() error = %v", err)
	}
	if gotId != id {
		t.Errorf("id = %s, want %s", gotId, id)
	}
	if secret != "deadbeef" {
		t.Errorf("secret = %q, want deadbeef", secret)
	}
}
