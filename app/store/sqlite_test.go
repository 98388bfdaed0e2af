package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func testCode(id, shortID, owner string) *Code {
	return &Code{ID: id, ShortID: shortID, Owner: owner, Name: "code " + id, Kind: "url", Token: "n$t$c$s-" + id}
}

func TestSQLite_SaveList(t *testing.T) {
	dbFile := filepath.Join(t.TempDir(), "codes.db")
	s, err := NewSQLite(dbFile, 0)
	require.NoError(t, err)
	defer s.Close()

	base := time.Now().Add(-time.Hour).Truncate(time.Millisecond)
	for i, owner := range []string{"alice", "bob", "alice"} {
		c := testCode(fmt.Sprintf("id-%d", i), fmt.Sprintf("AAAAA%d", i), owner)
		c.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.Save(t.Context(), c))
	}

	codes, err := s.List(t.Context(), "alice")
	require.NoError(t, err)
	require.Len(t, codes, 2)
	assert.Equal(t, "id-2", codes[0].ID, "newest first")
	assert.Equal(t, "id-0", codes[1].ID)
	assert.Equal(t, StatusActive, codes[1].Status)
	assert.Equal(t, "n$t$c$s-id-0", codes[1].Token)
	assert.Equal(t, "url", codes[1].Kind)
	assert.Equal(t, base.UnixMilli(), codes[1].CreatedAt.UnixMilli())

	codes, err = s.List(t.Context(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, codes)
	assert.NotNil(t, codes)
}

func TestSQLite_SaveDuplicate(t *testing.T) {
	s := NewInMemory(0)
	defer s.Close()

	require.NoError(t, s.Save(t.Context(), testCode("dup", "AAAAAA", "alice")))
	err := s.Save(t.Context(), testCode("dup", "AAAAAA", "alice"))
	assert.Equal(t, ErrSaveRejected, err)
}

func TestSQLite_LoadByShortID(t *testing.T) {
	s := NewInMemory(0)
	defer s.Close()

	require.NoError(t, s.Save(t.Context(), testCode("id1", "ABC123", "alice")))
	require.NoError(t, s.Save(t.Context(), testCode("id2", "DEF456", "bob")))
	require.NoError(t, s.Save(t.Context(), testCode("id3", "DEF456", "alice")))

	c, err := s.LoadByShortID(t.Context(), "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "id1", c.ID)
	assert.Equal(t, "alice", c.Owner)

	_, err = s.LoadByShortID(t.Context(), "ZZZZZZ")
	assert.Equal(t, ErrNotFound, err)

	_, err = s.LoadByShortID(t.Context(), "DEF456")
	assert.Equal(t, ErrAmbiguous, err)
}

func TestSQLite_Resolve(t *testing.T) {
	s := NewInMemory(0)
	defer s.Close()

	require.NoError(t, s.Save(t.Context(), testCode("id1", "ABC123", "alice")))

	token, err := s.Resolve(t.Context(), "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "n$t$c$s-id1", token)

	_, err = s.Resolve(t.Context(), "XYZ789")
	assert.Equal(t, ErrNotFound, err)

	assert.Equal(t, ErrNotFound, s.SetStatus(t.Context(), "bob", "id1", StatusArchived), "not an owner")
	require.NoError(t, s.SetStatus(t.Context(), "alice", "id1", StatusArchived))
	_, err = s.Resolve(t.Context(), "ABC123")
	assert.Equal(t, ErrNotFound, err, "archived codes are not resolvable")
}

func TestSQLite_IncScans(t *testing.T) {
	s := NewInMemory(0)
	defer s.Close()

	require.NoError(t, s.Save(t.Context(), testCode("scan", "AAAAAA", "alice")))

	for i := 1; i <= 3; i++ {
		cnt, err := s.IncScans(t.Context(), "scan")
		require.NoError(t, err)
		assert.Equal(t, i, cnt)
	}

	_, err := s.IncScans(t.Context(), "nokey")
	assert.Equal(t, ErrNotFound, err)
}

func TestSQLite_IncScans_Concurrent(t *testing.T) {
	dbFile := filepath.Join(t.TempDir(), "concurrent.db")
	s, err := NewSQLite(dbFile, 0)
	require.NoError(t, err)
	defer s.Close()

	ctx := t.Context()
	require.NoError(t, s.Save(ctx, testCode("conc", "AAAAAA", "alice")))

	const numGoroutines = 10
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for range numGoroutines {
		go func() {
			defer wg.Done()
			_, _ = s.IncScans(ctx, "conc")
		}()
	}
	wg.Wait()

	c, err := s.LoadByShortID(ctx, "AAAAAA")
	require.NoError(t, err)
	assert.Equal(t, numGoroutines, c.Scans)
}

func TestSQLite_Verifications(t *testing.T) {
	s := NewInMemory(0)
	defer s.Close()

	require.NoError(t, s.Save(t.Context(), testCode("a1", "AAAAAA", "alice")))
	require.NoError(t, s.Save(t.Context(), testCode("b1", "BBBBBB", "bob")))

	base := time.Now().Add(-time.Minute)
	events := []VerificationEvent{
		{CodeID: "a1", ShortID: "AAAAAA", Outcome: "success", Client: "h1", CreatedAt: base},
		{CodeID: "b1", ShortID: "BBBBBB", Outcome: "success", Client: "h2", CreatedAt: base.Add(time.Second)},
		{CodeID: "a1", ShortID: "AAAAAA", Outcome: "tampered", Client: "h3", CreatedAt: base.Add(2 * time.Second)},
		{Outcome: "invalid_structure", Client: "h4", CreatedAt: base.Add(3 * time.Second)},
	}
	for i := range events {
		require.NoError(t, s.LogVerification(t.Context(), &events[i]))
		assert.Positive(t, events[i].ID)
	}

	res, err := s.ListVerifications(t.Context(), "alice", 10)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "tampered", res[0].Outcome)
	assert.Equal(t, "h3", res[0].Client)
	assert.Equal(t, "success", res[1].Outcome)

	res, err = s.ListVerifications(t.Context(), "alice", 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "tampered", res[0].Outcome)

	res, err = s.ListVerifications(t.Context(), "bob", 0)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "b1", res[0].CodeID)
}

func TestSQLite_VerificationStats(t *testing.T) {
	s := NewInMemory(0)
	defer s.Close()

	require.NoError(t, s.Save(t.Context(), testCode("a1", "AAAAAA", "alice")))
	require.NoError(t, s.Save(t.Context(), testCode("a2", "AAAAAB", "alice")))
	require.NoError(t, s.Save(t.Context(), testCode("b1", "BBBBBB", "bob")))

	stats, err := s.VerificationStats(t.Context(), "alice")
	require.NoError(t, err)
	assert.Empty(t, stats)

	for _, ev := range []VerificationEvent{
		{CodeID: "a1", ShortID: "AAAAAA", Outcome: "success", Client: "h1"},
		{CodeID: "a2", ShortID: "AAAAAB", Outcome: "success", Client: "h1"},
		{CodeID: "a1", ShortID: "AAAAAA", Outcome: "tampered", Client: "h2"},
		{CodeID: "b1", ShortID: "BBBBBB", Outcome: "success", Client: "h3"},
		{Outcome: "invalid_structure", Client: "h4"},
	} {
		require.NoError(t, s.LogVerification(t.Context(), &ev))
	}

	stats, err = s.VerificationStats(t.Context(), "alice")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"success": 2, "tampered": 1}, stats)

	stats, err = s.VerificationStats(t.Context(), "bob")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"success": 1}, stats)

	stats, err = s.VerificationStats(t.Context(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestSQLite_Cleanup(t *testing.T) {
	s := NewInMemory(100 * time.Millisecond)
	defer s.Close()

	require.NoError(t, s.Save(t.Context(), testCode("c1", "CCCCCC", "alice")))
	require.NoError(t, s.LogVerification(t.Context(), &VerificationEvent{CodeID: "c1", Outcome: "success",
		CreatedAt: time.Now().Add(-time.Hour)}))
	require.NoError(t, s.LogVerification(t.Context(), &VerificationEvent{CodeID: "c1", Outcome: "tampered",
		CreatedAt: time.Now().Add(time.Hour)}))

	require.Eventually(t, func() bool {
		res, err := s.ListVerifications(t.Context(), "alice", 10)
		return err == nil && len(res) == 1 && res[0].Outcome == "tampered"
	}, 2*time.Second, 25*time.Millisecond, "old event should be cleaned up, fresh one kept")

	// codes are never pruned
	_, err := s.LoadByShortID(t.Context(), "CCCCCC")
	require.NoError(t, err)
}

func TestSQLite_CleanerStopsOnClose(t *testing.T) {
	s := NewInMemory(10 * time.Millisecond)
	require.NoError(t, s.Close())
	time.Sleep(50 * time.Millisecond)
}

func TestSQLite_BadFile(t *testing.T) {
	_, err := NewSQLite(filepath.Join(os.DevNull, "nope", "x.db"), 0)
	require.Error(t, err)
}

func TestInMemory_SharedAcrossConnections(t *testing.T) {
	s := NewInMemory(0)
	defer s.Close()

	ctx := t.Context()
	require.NoError(t, s.Save(ctx, testCode("mem", "MEMMEM", "alice")))

	const iterations = 10
	var wg sync.WaitGroup
	wg.Add(iterations)
	errCh := make(chan error, iterations)
	for range iterations {
		go func() {
			defer wg.Done()
			if _, err := s.Resolve(ctx, "MEMMEM"); err != nil {
				errCh <- err
			}
		}()
	}
	wg.Wait()
	close(errCh)

	loadErrors := make([]error, 0, iterations)
	for err := range errCh {
		loadErrors = append(loadErrors, err)
	}
	assert.Empty(t, loadErrors)
}
