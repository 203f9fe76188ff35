package memory

import (
	"context"
	"reflect"
	"testing"
)

func TestKeyValueStore(t *testing.T) {
	ctx := context.Background()
	kv := NewKeyValueStore(NewStorage())

	if _, ok, err := kv.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("Get missing = ok=%v err=%v, want absent", ok, err)
	}

	if err := kv.Set(ctx, "gatherly:app_version", "2026.08.1"); err != nil {
		t.Fatal(err)
	}
	value, ok, err := kv.Get(ctx, "gatherly:app_version")
	if err != nil || !ok || value != "2026.08.1" {
		t.Fatalf("Get = %q/%v/%v", value, ok, err)
	}

	if err := kv.Delete(ctx, "gatherly:app_version"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := kv.Get(ctx, "gatherly:app_version"); ok {
		t.Error("key survived Delete")
	}
}

func TestKeyValueStoreKeysByPrefix(t *testing.T) {
	ctx := context.Background()
	kv := NewKeyValueStore(NewStorage())

	for _, key := range []string{"sb-token", "sb-refresh", "gatherly:flag", "other"} {
		if err := kv.Set(ctx, key, "v"); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := kv.Keys(ctx, "sb-")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"sb-refresh", "sb-token"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("Keys(sb-) = %v, want %v", keys, want)
	}
}

func TestSessionStoreClear(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessionStore(NewStorage())

	if err := sessions.Put(ctx, "draft", "v"); err != nil {
		t.Fatal(err)
	}
	if sessions.Len() != 1 {
		t.Fatalf("Len = %d, want 1", sessions.Len())
	}
	if err := sessions.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if sessions.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", sessions.Len())
	}
}

func TestObjectStores(t *testing.T) {
	ctx := context.Background()
	objects := NewObjectStores(NewStorage())

	if err := objects.Put(ctx, "activity-feed", "a1", `{"title":"hike"}`); err != nil {
		t.Fatal(err)
	}
	if err := objects.Put(ctx, "profiles", "u1", `{"name":"kim"}`); err != nil {
		t.Fatal(err)
	}

	names, err := objects.ListStores(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"activity-feed", "profiles"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("ListStores = %v, want %v", names, want)
	}

	if err := objects.DeleteStore(ctx, "activity-feed"); err != nil {
		t.Fatal(err)
	}
	names, _ = objects.ListStores(ctx)
	if !reflect.DeepEqual(names, []string{"profiles"}) {
		t.Errorf("ListStores after delete = %v", names)
	}
}

func TestContentCaches(t *testing.T) {
	ctx := context.Background()
	caches := NewContentCaches(NewStorage())

	if err := caches.Put(ctx, "avatars", "u1", []byte{0x1}); err != nil {
		t.Fatal(err)
	}

	names, err := caches.ListCaches(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"avatars"}) {
		t.Errorf("ListCaches = %v", names)
	}

	if err := caches.DeleteCache(ctx, "avatars"); err != nil {
		t.Fatal(err)
	}
	if names, _ := caches.ListCaches(ctx); len(names) != 0 {
		t.Errorf("ListCaches after delete = %v, want none", names)
	}
}
