package engine

import (
	"reflect"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	s := NewGame("snap")
	s, err := ResolveFaceoff(s, 1, 4)
	if err != nil {
		t.Fatalf("ResolveFaceoff: %v", err)
	}
	s, err = ApplyRoll(s, 2)
	if err != nil {
		t.Fatalf("ApplyRoll: %v", err)
	}

	data, err := Snapshot(s)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	got, err := RestoreSnapshot(data)
	if err != nil {
		t.Fatalf("RestoreSnapshot: %v", err)
	}
	if !reflect.DeepEqual(got, s) {
		t.Errorf("restored state differs:\ngot  %+v\nwant %+v", got, s)
	}
}

func TestRestoreSnapshotGarbage(t *testing.T) {
	if _, err := RestoreSnapshot([]byte("{not json")); err == nil {
		t.Error("RestoreSnapshot accepted garbage")
	}
}
