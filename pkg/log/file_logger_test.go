package log

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileLoggerCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.tlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("log file was not created")
	}
}

func TestFileLoggerWritesCBOR(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.tlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	event := Event{
		Timestamp: time.Now(),
		FlowID:    "flow-123",
		Source:    SourceTagSession,
		Category:  CategoryTag,
		Tag:       &TagEvent{MemberID: "m-1", Size: 64},
	}

	logger.Log(event)
	logger.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("log file is empty")
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if decoded.FlowID != event.FlowID {
		t.Errorf("FlowID: got %q, want %q", decoded.FlowID, event.FlowID)
	}
	if decoded.Tag == nil {
		t.Error("Tag is nil")
	} else if decoded.Tag.MemberID != "m-1" {
		t.Errorf("Tag.MemberID: got %q, want %q", decoded.Tag.MemberID, "m-1")
	}
}

func TestFileLoggerAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.tlog")

	logger1, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger1.Log(Event{Timestamp: time.Now(), FlowID: "flow-1", Source: SourceFlow, Category: CategoryState})
	logger1.Close()

	info1, _ := os.Stat(path)
	size1 := info1.Size()

	logger2, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger2.Log(Event{Timestamp: time.Now(), FlowID: "flow-2", Source: SourceFlow, Category: CategoryState})
	logger2.Close()

	info2, _ := os.Stat(path)
	if info2.Size() <= size1 {
		t.Errorf("file did not grow: %d -> %d bytes", size1, info2.Size())
	}

	// Both events must be readable in order.
	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	first, err := reader.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	second, err := reader.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if first.FlowID != "flow-1" || second.FlowID != "flow-2" {
		t.Errorf("got flows %q, %q, want flow-1, flow-2", first.FlowID, second.FlowID)
	}
}

func TestFileLoggerIgnoresLogAfterClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.tlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	// Must not panic or write.
	logger.Log(Event{Timestamp: time.Now(), FlowID: "flow-x", Source: SourceFlow, Category: CategoryState})

	info, _ := os.Stat(path)
	if info.Size() != 0 {
		t.Errorf("closed logger wrote %d bytes", info.Size())
	}
}

func TestFileLoggerConcurrentUse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.tlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				logger.Log(Event{Timestamp: time.Now(), FlowID: "flow-c", Source: SourceFlow, Category: CategoryState})
			}
		}()
	}
	wg.Wait()
	logger.Close()

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		if _, err := reader.Next(); err != nil {
			break
		}
		count++
	}
	if count != 200 {
		t.Errorf("read %d events, want 200", count)
	}
}
