package storage

import (
	"encoding/json"
	"testing"
	"time"

	"Tunelist/config"
	"Tunelist/model"
)

func TestSnapshotKey(t *testing.T) {
	at := time.Date(2024, 3, 5, 7, 8, 9, 0, time.FixedZone("CST", 8*3600))

	key := SnapshotKey(at)
	if key != "snapshots/20240304T230809Z.json" {
		t.Errorf("unexpected key %s", key)
	}
	if !IsSnapshotKey(key) {
		t.Errorf("expected %s to be recognised as a snapshot key", key)
	}
	if IsSnapshotKey("other/file.txt") {
		t.Error("unexpected snapshot key match")
	}
}

func TestEncodeSnapshot(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	playlists := []*model.PlaylistWithTracks{{
		Playlist: model.Playlist{ID: 1, Name: "rock"},
		Tracks:   []*model.Track{{ID: 7, PlaylistID: 1, Title: "Song 1", Genre: "rock"}},
	}}

	body, err := EncodeSnapshot(playlists, at)
	if err != nil {
		t.Fatalf("failed to encode: %v", err)
	}

	var decoded Snapshot
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if !decoded.TakenAt.Equal(at) || len(decoded.Playlists) != 1 || decoded.Playlists[0].Tracks[0].Title != "Song 1" {
		t.Errorf("unexpected snapshot: %+v", decoded)
	}

	empty, err := EncodeSnapshot(nil, at)
	if err != nil {
		t.Fatalf("failed to encode empty snapshot: %v", err)
	}
	var raw map[string]json.RawMessage
	json.Unmarshal(empty, &raw)
	if string(raw["playlists"]) != "[]" {
		t.Errorf("expected empty array, got %s", raw["playlists"])
	}
}

func TestFormatSize(t *testing.T) {
	cases := map[int64]string{
		512:             "512 B",
		2048:            "2.0 KB",
		5 * 1024 * 1024: "5.0 MB",
	}
	for in, want := range cases {
		if got := FormatSize(in); got != want {
			t.Errorf("size %d: expected %s, got %s", in, want, got)
		}
	}
}

func TestNewBackupStore(t *testing.T) {
	cfg := &config.Config{
		MinioEndpoint: "127.0.0.1:9000",
		MinioBucket:   "tunelist-backups",
		MinioRegion:   "us-east-1",
	}
	store, err := NewBackupStore(cfg)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if store.Bucket() != "tunelist-backups" {
		t.Errorf("unexpected bucket %s", store.Bucket())
	}
}
