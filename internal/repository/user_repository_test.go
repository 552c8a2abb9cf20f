package repository

import "testing"

func TestRegistrationLockKeyIsStable(t *testing.T) {
	if registrationLockKey(5551234) != registrationLockKey(5551234) {
		t.Fatal("lock key must be deterministic for a mobile number")
	}

	seen := map[int32]int64{}
	for _, mobile := range []int64{0, 1, 42, 5551234, 919876543210} {
		key := registrationLockKey(mobile)
		if prev, dup := seen[key]; dup {
			t.Fatalf("mobile %d and %d collide on lock key %d", prev, mobile, key)
		}
		seen[key] = mobile
	}
}
