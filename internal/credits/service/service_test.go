package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"vitelis_backend/internal/credits/repository"
	"vitelis_backend/platform/apperr"
	"vitelis_backend/platform/logger"
)

type account struct {
	credits int
	role    string
}

type fakeRepo struct {
	accounts map[uuid.UUID]*account
}

func (f *fakeRepo) Deduct(_ context.Context, id uuid.UUID, amount int) (bool, error) {
	a, ok := f.accounts[id]
	if !ok {
		return false, apperr.NotFound("user not found")
	}
	if a.role == "admin" {
		return true, nil
	}
	if a.credits < amount {
		return false, nil
	}
	a.credits -= amount
	return true, nil
}

func (f *fakeRepo) Add(_ context.Context, id uuid.UUID, amount int) (int, error) {
	a, ok := f.accounts[id]
	if !ok {
		return 0, apperr.NotFound("user not found")
	}
	a.credits += amount
	return a.credits, nil
}

func (f *fakeRepo) Set(_ context.Context, id uuid.UUID, credits int) (int, error) {
	a, ok := f.accounts[id]
	if !ok {
		return 0, apperr.NotFound("user not found")
	}
	a.credits = credits
	return a.credits, nil
}

func (f *fakeRepo) GetBalance(_ context.Context, id uuid.UUID) (repository.Balance, error) {
	a, ok := f.accounts[id]
	if !ok {
		return repository.Balance{}, apperr.NotFound("user not found")
	}
	return repository.Balance{Credits: a.credits, Role: a.role}, nil
}

func setup(credits int, role string) (*Service, *fakeRepo, uuid.UUID) {
	id := uuid.New()
	repo := &fakeRepo{accounts: map[uuid.UUID]*account{id: {credits: credits, role: role}}}
	return New(repo, nil, logger.Discard()), repo, id
}

func TestDeductCreditsDeclinesWhenInsufficient(t *testing.T) {
	svc, repo, id := setup(0, "user")

	ok, err := svc.DeductCredits(context.Background(), id, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected deduction to be declined")
	}
	if repo.accounts[id].credits != 0 {
		t.Fatalf("balance must be untouched, got %d", repo.accounts[id].credits)
	}
}

func TestDeductCreditsChargesUser(t *testing.T) {
	svc, repo, id := setup(3, "user")

	ok, err := svc.DeductCredits(context.Background(), id, 1)
	if err != nil || !ok {
		t.Fatalf("expected deduction, got ok=%v err=%v", ok, err)
	}
	if repo.accounts[id].credits != 2 {
		t.Fatalf("expected 2 credits, got %d", repo.accounts[id].credits)
	}
}

func TestDeductCreditsExemptsAdmins(t *testing.T) {
	svc, repo, id := setup(0, "admin")

	ok, err := svc.DeductCredits(context.Background(), id, 5)
	if err != nil || !ok {
		t.Fatalf("expected admin deduction to succeed, got ok=%v err=%v", ok, err)
	}
	if repo.accounts[id].credits != 0 {
		t.Fatalf("admin balance must not change, got %d", repo.accounts[id].credits)
	}
}

func TestDeductCreditsRejectsNonPositiveAmount(t *testing.T) {
	svc, _, id := setup(3, "user")
	if _, err := svc.DeductCredits(context.Background(), id, 0); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeductCreditsUnknownUser(t *testing.T) {
	svc, _, _ := setup(3, "user")
	if _, err := svc.DeductCredits(context.Background(), uuid.New(), 1); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestHandleStatusChangeRefund(t *testing.T) {
	cases := []struct {
		name     string
		old, new string
		refunded bool
	}{
		{"inProgress to error refunds", "inProgress", "error", true},
		{"started to error keeps credit", "started", "error", false},
		{"inProgress to finished keeps credit", "inProgress", "finished", false},
		{"error to error keeps credit", "error", "error", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, id := setup(0, "user")
			refunded, err := svc.HandleStatusChangeRefund(context.Background(), id, tc.old, tc.new)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if refunded != tc.refunded {
				t.Fatalf("expected refunded=%v, got %v", tc.refunded, refunded)
			}
			want := 0
			if tc.refunded {
				want = 1
			}
			if repo.accounts[id].credits != want {
				t.Fatalf("expected balance %d, got %d", want, repo.accounts[id].credits)
			}
		})
	}
}

func TestSetCreditsRejectsNegative(t *testing.T) {
	svc, _, id := setup(3, "user")
	if _, err := svc.SetCredits(context.Background(), id, -1); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
