package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestCollections_BookingsHaveSweepIndex(t *testing.T) {
	def, ok := Collections()["Bookings"]
	if !ok {
		t.Fatal("Bookings collection is not migrated")
	}

	found := false
	for _, idx := range def.Indexes {
		keys, ok := idx.Keys.(bson.D)
		if !ok || len(keys) != 2 {
			continue
		}
		if keys[0].Key == "status" && keys[1].Key == "expires_at" {
			found = true
		}
	}
	if !found {
		t.Error("expected a (status, expires_at) index on Bookings")
	}
}

func TestCollections_AllHaveValidators(t *testing.T) {
	for _, name := range []string{"Workshops", "Bookings", "Comments"} {
		def, ok := Collections()[name]
		if !ok {
			t.Errorf("collection %s missing", name)
			continue
		}
		if def.Validator == nil {
			t.Errorf("collection %s has no validator", name)
		}
		if len(def.Indexes) == 0 {
			t.Errorf("collection %s has no indexes", name)
		}
	}
}
