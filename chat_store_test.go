package main

import "testing"

func TestChatStoreLifecycle(t *testing.T) {
	store, err := openChatStore(t.TempDir())
	if err != nil {
		t.Fatalf("openChatStore: %v", err)
	}
	defer store.Close()

	conv, err := store.Create("  ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if conv.Name != defaultConversationName || conv.ID == 0 {
		t.Fatalf("conv = %+v", conv)
	}
	if err := store.Append(conv.ID, chatMessage{Role: "user", Text: "你好"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Append(conv.ID, chatMessage{Role: "bot", Text: "嗨"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Rename(conv.ID, "配方問題"); err != nil {
		t.Fatal(err)
	}

	list, err := store.List()
	if err != nil || len(list) != 1 || list[0].Name != "配方問題" {
		t.Fatalf("List = %+v, %v", list, err)
	}
	msgs, err := store.Messages(conv.ID)
	if err != nil || len(msgs) != 2 || msgs[0].Text != "你好" || msgs[1].Role != "bot" {
		t.Fatalf("Messages = %+v, %v", msgs, err)
	}

	if err := store.Delete(conv.ID); err != nil {
		t.Fatal(err)
	}
	list, _ = store.List()
	msgs, _ = store.Messages(conv.ID)
	if len(list) != 0 || len(msgs) != 0 {
		t.Errorf("after delete: list=%v msgs=%v", list, msgs)
	}
}

func TestNilChatStore(t *testing.T) {
	var store *chatStore
	if list, err := store.List(); err != nil || list != nil {
		t.Errorf("List = %v, %v", list, err)
	}
	conv, err := store.Create("")
	if err != nil || conv.Name != defaultConversationName {
		t.Errorf("Create = %+v, %v", conv, err)
	}
	if err := store.Append(1, chatMessage{Role: "user", Text: "x"}); err != nil {
		t.Errorf("Append: %v", err)
	}
}
