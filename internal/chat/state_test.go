package chat

import "testing"

const testUUID = "550e8400-e29b-41d4-a716-446655440000"

func TestDeriveState_LabeledCustomerID(t *testing.T) {
	out := "Your identity is confirmed. Customer ID: " + testUUID + "."
	st := DeriveState(CustomerState{}, out)

	if !st.Verified {
		t.Fatal("expected verified state")
	}
	if st.CustomerID != testUUID {
		t.Errorf("customer id = %q, want %q", st.CustomerID, testUUID)
	}
	if st.Name != "Customer" {
		t.Errorf("name = %q, want default %q", st.Name, "Customer")
	}
}

func TestDeriveState_NameAfterVerified(t *testing.T) {
	out := "You're verified, Jane Doe! Customer ID: " + testUUID
	st := DeriveState(CustomerState{}, out)

	if !st.Verified || st.CustomerID != testUUID {
		t.Fatalf("unexpected state: %+v", st)
	}
	if st.Name != "Jane Doe" {
		t.Errorf("name = %q, want %q", st.Name, "Jane Doe")
	}
}

func TestDeriveState_NameBeforeVerified(t *testing.T) {
	out := "Jane Doe has been verified. Customer ID: " + testUUID
	st := DeriveState(CustomerState{}, out)

	if !st.Verified || st.CustomerID != testUUID {
		t.Fatalf("unexpected state: %+v", st)
	}
	if st.Name != "Jane Doe" {
		t.Errorf("name = %q, want %q", st.Name, "Jane Doe")
	}
}

func TestDeriveState_LooseIDFallback(t *testing.T) {
	out := "You are verified: your account " + testUUID + " is active."
	st := DeriveState(CustomerState{}, out)

	if !st.Verified {
		t.Fatal("expected loose pattern to verify")
	}
	if st.CustomerID != testUUID {
		t.Errorf("customer id = %q, want %q", st.CustomerID, testUUID)
	}
}

func TestDeriveState_NameAloneInsufficient(t *testing.T) {
	st := DeriveState(CustomerState{}, "Welcome Jane! How can I help today?")
	if st.Verified {
		t.Fatal("name without customer id must not verify")
	}
}

func TestDeriveState_NoEvidence(t *testing.T) {
	st := DeriveState(CustomerState{}, "We have three 27 inch monitors in stock.")
	if st.Verified || st.CustomerID != "" || st.Name != "" {
		t.Fatalf("expected zero state, got %+v", st)
	}
}

func TestDeriveState_VerifiedIsSticky(t *testing.T) {
	current := CustomerState{Verified: true, CustomerID: testUUID, Name: "Jane Doe"}
	out := "Bob Smith has been verified. Customer ID: 11111111-2222-3333-4444-555555555555"
	st := DeriveState(current, out)

	if st != current {
		t.Fatalf("verified state changed: %+v", st)
	}
}
