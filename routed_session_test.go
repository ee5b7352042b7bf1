package plexus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arloliu/plexus/types"
	"github.com/stretchr/testify/require"
)

// mockSession is a hand-rolled Session used both as the bootstrap
// discovery channel and as pool connections handed out by mockConnector.
type mockSession struct {
	mu       sync.Mutex
	alias    string
	runFn    func(ctx context.Context, statements []types.Statement) ([]types.Result, error)
	runCalls [][]types.Statement
	tx       *mockTransaction
	beginErr error
	closeErr error
	closed   atomic.Bool
}

func (m *mockSession) Run(ctx context.Context, statements []types.Statement) ([]types.Result, error) {
	m.mu.Lock()
	m.runCalls = append(m.runCalls, statements)
	fn := m.runFn
	alias := m.alias
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, statements)
	}

	results := make([]types.Result, len(statements))
	for i, stmt := range statements {
		results[i] = types.Result{Records: []types.Record{{
			"echo":  stmt.Text,
			"alias": alias,
		}}}
	}

	return results, nil
}

func (m *mockSession) BeginTransaction(ctx context.Context) (Transaction, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tx == nil {
		m.tx = &mockTransaction{}
	}

	return m.tx, nil
}

func (m *mockSession) Close(ctx context.Context) error {
	m.closed.Store(true)

	return m.closeErr
}

func (m *mockSession) calls() [][]types.Statement {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([][]types.Statement(nil), m.runCalls...)
}

type mockTransaction struct {
	mu          sync.Mutex
	runCalls    [][]types.Statement
	runErr      error
	commitErr   error
	rollbackErr error
	committed   bool
	rolledBack  bool
}

func (m *mockTransaction) Run(ctx context.Context, statements []types.Statement) ([]types.Result, error) {
	m.mu.Lock()
	m.runCalls = append(m.runCalls, statements)
	m.mu.Unlock()

	if m.runErr != nil {
		return nil, m.runErr
	}

	return make([]types.Result, len(statements)), nil
}

func (m *mockTransaction) Commit(ctx context.Context, statements []types.Statement) ([]types.Result, error) {
	if m.commitErr != nil {
		return nil, m.commitErr
	}

	m.mu.Lock()
	m.committed = true
	m.mu.Unlock()

	return make([]types.Result, len(statements)), nil
}

func (m *mockTransaction) Rollback(ctx context.Context) error {
	if m.rollbackErr != nil {
		return m.rollbackErr
	}

	m.mu.Lock()
	m.rolledBack = true
	m.mu.Unlock()

	return nil
}

type connectCall struct {
	rawURL string
	cfg    ConnectConfig
}

type mockConnector struct {
	mu       sync.Mutex
	connects []connectCall
	errFor   map[string]error
	sessions map[string]*mockSession
	all      []*mockSession
}

func (m *mockConnector) Connect(ctx context.Context, rawURL string, cfg ConnectConfig) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connects = append(m.connects, connectCall{rawURL: rawURL, cfg: cfg})
	if err := m.errFor[cfg.Alias]; err != nil {
		return nil, err
	}

	sess := &mockSession{alias: cfg.Alias}
	if m.sessions == nil {
		m.sessions = make(map[string]*mockSession)
	}
	m.sessions[cfg.Alias] = sess
	m.all = append(m.all, sess)

	return sess, nil
}

func (m *mockConnector) session(alias string) *mockSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sessions[alias]
}

func (m *mockConnector) connectCalls() []connectCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]connectCall(nil), m.connects...)
}

// mockWatcher feeds topology updates straight into the session's
// watcher goroutine.
type mockWatcher struct {
	ch chan TopologyUpdate
}

func newMockWatcher() *mockWatcher {
	return &mockWatcher{ch: make(chan TopologyUpdate, 4)}
}

func (w *mockWatcher) Watch(ctx context.Context) <-chan TopologyUpdate {
	return w.ch
}

func discoveryResponse(ttl int64, leaders, followers []string) []types.Result {
	var servers []any
	if len(leaders) > 0 {
		servers = append(servers, map[string]any{"role": "LEADER", "addresses": leaders})
	}
	if len(followers) > 0 {
		servers = append(servers, map[string]any{"role": "FOLLOWER", "addresses": followers})
	}

	return []types.Result{{Records: []types.Record{{
		"ttl":     ttl,
		"servers": servers,
	}}}}
}

// newBootstrap returns a mock session that answers every Run call with
// the given routing table and counts discoveries.
func newBootstrap(ttl int64, leaders, followers []string) (*mockSession, *atomic.Int64) {
	var discoveries atomic.Int64
	bootstrap := &mockSession{
		runFn: func(ctx context.Context, statements []types.Statement) ([]types.Result, error) {
			discoveries.Add(1)

			return discoveryResponse(ttl, leaders, followers), nil
		},
	}

	return bootstrap, &discoveries
}

func TestNewRoutedSessionValidation(t *testing.T) {
	connector := &mockConnector{}
	bootstrap := &mockSession{}

	_, err := NewRoutedSession(nil, connector, "bolt://seed:7687")
	require.ErrorIs(t, err, types.ErrNilSession)

	_, err = NewRoutedSession(bootstrap, nil, "bolt://seed:7687")
	require.ErrorIs(t, err, types.ErrNilConnector)

	_, err = NewRoutedSession(bootstrap, connector, "bolt://seed:7687\x00")
	require.Error(t, err)
}

func TestRunRoutesAndPreservesOrder(t *testing.T) {
	bootstrap, discoveries := newBootstrap(300, []string{"l1:7687"}, []string{"f1:7687"})
	connector := &mockConnector{}

	session, err := NewRoutedSession(bootstrap, connector, "bolt://user:pw@seed:7687",
		WithIndexPicker(func(n int) int { return 0 }),
	)
	require.NoError(t, err)

	results, err := session.Run(context.Background(), []types.Statement{
		{Text: "MATCH (a) RETURN a"},
		{Text: "CREATE (b:Node)"},
		{Text: "MATCH (c) RETURN c"},
		{Text: "MERGE (d:Node)"},
	})
	require.NoError(t, err)
	require.Len(t, results, 4)

	// Results come back in input order even though reads and writes
	// were dispatched as separate batches.
	require.Equal(t, "MATCH (a) RETURN a", results[0].Records[0]["echo"])
	require.Equal(t, "CREATE (b:Node)", results[1].Records[0]["echo"])
	require.Equal(t, "MATCH (c) RETURN c", results[2].Records[0]["echo"])
	require.Equal(t, "MERGE (d:Node)", results[3].Records[0]["echo"])

	// Reads went to the follower, writes to the leader.
	require.Equal(t, "follower-0", results[0].Records[0]["alias"])
	require.Equal(t, "leader-0", results[1].Records[0]["alias"])

	follower := connector.session("follower-0")
	leader := connector.session("leader-0")
	require.Len(t, follower.calls(), 1)
	require.Len(t, leader.calls(), 1)
	require.Len(t, follower.calls()[0], 2)
	require.Len(t, leader.calls()[0], 2)

	require.Equal(t, int64(1), discoveries.Load())
}

func TestRunSkipsEmptySet(t *testing.T) {
	bootstrap, _ := newBootstrap(300, []string{"l1:7687"}, []string{"f1:7687"})
	connector := &mockConnector{}

	session, err := NewRoutedSession(bootstrap, connector, "bolt://seed:7687",
		WithIndexPicker(func(n int) int { return 0 }),
	)
	require.NoError(t, err)

	_, err = session.Run(context.Background(), []types.Statement{
		{Text: "MATCH (a) RETURN a"},
	})
	require.NoError(t, err)

	// A read-only batch never touches the leader connection.
	require.Empty(t, connector.session("leader-0").calls())
	require.Len(t, connector.session("follower-0").calls(), 1)

	_, err = session.Run(context.Background(), []types.Statement{
		{Text: "CREATE (b:Node)"},
	})
	require.NoError(t, err)

	require.Len(t, connector.session("leader-0").calls(), 1)
	require.Len(t, connector.session("follower-0").calls(), 1)
}

func TestRunEmptyBatch(t *testing.T) {
	bootstrap, discoveries := newBootstrap(300, []string{"l1:7687"}, []string{"f1:7687"})
	connector := &mockConnector{}

	session, err := NewRoutedSession(bootstrap, connector, "bolt://seed:7687")
	require.NoError(t, err)

	results, err := session.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, results)

	// The table is fetched even for an empty batch; only dispatch is skipped.
	require.Equal(t, int64(1), discoveries.Load())
}

func TestDiscoveryRunsOnceWithinTTL(t *testing.T) {
	bootstrap, discoveries := newBootstrap(300, []string{"l1:7687"}, []string{"f1:7687"})
	connector := &mockConnector{}

	session, err := NewRoutedSession(bootstrap, connector, "bolt://seed:7687")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err = session.Run(context.Background(), []types.Statement{{Text: "MATCH (n) RETURN n"}})
		require.NoError(t, err)
	}

	require.Equal(t, int64(1), discoveries.Load())
	require.Len(t, connector.connectCalls(), 2)
}

func TestDiscoveryStatementShape(t *testing.T) {
	bootstrap, _ := newBootstrap(300, []string{"l1:7687"}, []string{"f1:7687"})
	connector := &mockConnector{}

	session, err := NewRoutedSession(bootstrap, connector, "bolt://seed:7687",
		WithDatabase("movies"),
	)
	require.NoError(t, err)

	_, err = session.Run(context.Background(), []types.Statement{{Text: "MATCH (n) RETURN n"}})
	require.NoError(t, err)

	calls := bootstrap.calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0], 1)
	require.Equal(t, "CALL dbms.cluster.routing.getRoutingTable($context, $database)", calls[0][0].Text)
	require.Equal(t, map[string]any{
		"context":  map[string]any{},
		"database": "movies",
	}, calls[0][0].Parameters)
}

func TestTTLExpiryTriggersRefresh(t *testing.T) {
	bootstrap, discoveries := newBootstrap(300, []string{"l1:7687"}, []string{"f1:7687"})
	connector := &mockConnector{}

	var mu sync.Mutex
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()

		return now
	}

	session, err := NewRoutedSession(bootstrap, connector, "bolt://seed:7687",
		WithClock(clock),
	)
	require.NoError(t, err)

	_, err = session.Run(context.Background(), []types.Statement{{Text: "MATCH (n) RETURN n"}})
	require.NoError(t, err)
	require.Equal(t, int64(1), discoveries.Load())

	// Just before expiry the cached table is still served.
	mu.Lock()
	now = now.Add(299 * time.Second)
	mu.Unlock()

	_, err = session.Run(context.Background(), []types.Statement{{Text: "MATCH (n) RETURN n"}})
	require.NoError(t, err)
	require.Equal(t, int64(1), discoveries.Load())

	// At expiry the table refreshes and the pool is rebuilt.
	mu.Lock()
	now = now.Add(time.Second)
	mu.Unlock()

	_, err = session.Run(context.Background(), []types.Statement{{Text: "MATCH (n) RETURN n"}})
	require.NoError(t, err)
	require.Equal(t, int64(2), discoveries.Load())
	require.Len(t, connector.connectCalls(), 4)
}

func TestConcurrentRunsShareOneDiscovery(t *testing.T) {
	var discoveries atomic.Int64
	bootstrap := &mockSession{
		runFn: func(ctx context.Context, statements []types.Statement) ([]types.Result, error) {
			discoveries.Add(1)
			time.Sleep(10 * time.Millisecond)

			return discoveryResponse(300, []string{"l1:7687"}, []string{"f1:7687"}), nil
		},
	}
	connector := &mockConnector{}

	session, err := NewRoutedSession(bootstrap, connector, "bolt://seed:7687")
	require.NoError(t, err)

	errs := make(chan error, 8)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, rerr := session.Run(context.Background(), []types.Statement{{Text: "MATCH (n) RETURN n"}})
			errs <- rerr
		}()
	}
	wg.Wait()
	close(errs)

	for rerr := range errs {
		require.NoError(t, rerr)
	}

	require.Equal(t, int64(1), discoveries.Load())
}

func TestFailedDiscoveryWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	bootstrap := &mockSession{
		runFn: func(ctx context.Context, statements []types.Statement) ([]types.Result, error) {
			return nil, cause
		},
	}

	session, err := NewRoutedSession(bootstrap, &mockConnector{}, "bolt://seed:7687")
	require.NoError(t, err)

	_, err = session.Run(context.Background(), []types.Statement{{Text: "MATCH (n) RETURN n"}})
	require.ErrorIs(t, err, types.ErrDiscoveryFailed)
	require.ErrorIs(t, err, cause)
}

func TestFailedRefreshRetainsPreviousState(t *testing.T) {
	var fail atomic.Bool
	var discoveries atomic.Int64
	bootstrap := &mockSession{
		runFn: func(ctx context.Context, statements []types.Statement) ([]types.Result, error) {
			discoveries.Add(1)
			if fail.Load() {
				return nil, errors.New("seed unreachable")
			}

			return discoveryResponse(300, []string{"l1:7687"}, []string{"f1:7687"}), nil
		},
	}
	connector := &mockConnector{}

	var mu sync.Mutex
	now := time.Now()
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()

		return now
	}

	session, err := NewRoutedSession(bootstrap, connector, "bolt://seed:7687",
		WithClock(clock),
	)
	require.NoError(t, err)

	_, err = session.Run(context.Background(), []types.Statement{{Text: "MATCH (n) RETURN n"}})
	require.NoError(t, err)

	mu.Lock()
	now = now.Add(301 * time.Second)
	mu.Unlock()
	fail.Store(true)

	// Refresh fails and the error surfaces; the stale state stays
	// published so recovery needs no special handling.
	_, err = session.Run(context.Background(), []types.Statement{{Text: "MATCH (n) RETURN n"}})
	require.ErrorIs(t, err, types.ErrDiscoveryFailed)

	// Discovery is retried on the very next call once the seed recovers.
	fail.Store(false)
	_, err = session.Run(context.Background(), []types.Statement{{Text: "MATCH (n) RETURN n"}})
	require.NoError(t, err)
	require.Equal(t, int64(3), discoveries.Load())
}

func TestConnectorErrorPropagatesUnchanged(t *testing.T) {
	bootstrap, _ := newBootstrap(300, []string{"l1:7687"}, []string{"f1:7687"})
	connectErr := errors.New("dial tcp: connection refused")
	connector := &mockConnector{errFor: map[string]error{"follower-0": connectErr}}

	session, err := NewRoutedSession(bootstrap, connector, "bolt://seed:7687")
	require.NoError(t, err)

	_, err = session.Run(context.Background(), []types.Statement{{Text: "MATCH (n) RETURN n"}})
	require.ErrorIs(t, err, connectErr)
	require.NotErrorIs(t, err, types.ErrDiscoveryFailed)
}

func TestDispatchErrorAbortsBatch(t *testing.T) {
	bootstrap, _ := newBootstrap(300, []string{"l1:7687"}, []string{"f1:7687"})
	connector := &mockConnector{}

	session, err := NewRoutedSession(bootstrap, connector, "bolt://seed:7687",
		WithIndexPicker(func(n int) int { return 0 }),
	)
	require.NoError(t, err)

	// Warm up the pool, then make the leader fail.
	_, err = session.Run(context.Background(), []types.Statement{{Text: "MATCH (n) RETURN n"}})
	require.NoError(t, err)

	dispatchErr := errors.New("leader gone")
	leader := connector.session("leader-0")
	leader.mu.Lock()
	leader.runFn = func(ctx context.Context, statements []types.Statement) ([]types.Result, error) {
		return nil, dispatchErr
	}
	leader.mu.Unlock()

	results, err := session.Run(context.Background(), []types.Statement{
		{Text: "MATCH (a) RETURN a"},
		{Text: "CREATE (b:Node)"},
	})
	require.ErrorIs(t, err, dispatchErr)
	require.Nil(t, results)
}

func TestRunNoFollowerAvailable(t *testing.T) {
	bootstrap, _ := newBootstrap(300, []string{"l1:7687"}, nil)
	connector := &mockConnector{}

	session, err := NewRoutedSession(bootstrap, connector, "bolt://seed:7687")
	require.NoError(t, err)

	_, err = session.Run(context.Background(), []types.Statement{{Text: "MATCH (n) RETURN n"}})
	require.ErrorIs(t, err, types.ErrNoAvailableRole)

	var nre *types.NoRoleError
	require.ErrorAs(t, err, &nre)
	require.Equal(t, types.RoleFollower, nre.Role)

	// Writes still route fine with a leader present.
	_, err = session.Run(context.Background(), []types.Statement{{Text: "CREATE (n:Node)"}})
	require.NoError(t, err)
}

func TestPoolConnectionsAreLeaves(t *testing.T) {
	bootstrap, _ := newBootstrap(300, []string{"l1:7687", "l2:7688"}, []string{"f1:7689"})
	connector := &mockConnector{}

	session, err := NewRoutedSession(bootstrap, connector, "bolt://user:pw@seed:7687")
	require.NoError(t, err)

	_, err = session.Run(context.Background(), []types.Statement{{Text: "MATCH (n) RETURN n"}})
	require.NoError(t, err)

	calls := connector.connectCalls()
	require.Len(t, calls, 3)

	byAlias := map[string]connectCall{}
	for _, call := range calls {
		require.True(t, call.cfg.DisableRouting)
		byAlias[call.cfg.Alias] = call
	}

	// Scheme and credentials from the base URL carry over to every
	// discovered node; host and port come from discovery.
	require.Equal(t, "bolt://user:pw@l1:7687", byAlias["leader-0"].rawURL)
	require.Equal(t, "bolt://user:pw@l2:7688", byAlias["leader-1"].rawURL)
	require.Equal(t, "bolt://user:pw@f1:7689", byAlias["follower-0"].rawURL)
}

func TestWatcherInvalidationForcesRefresh(t *testing.T) {
	bootstrap, discoveries := newBootstrap(3600, []string{"l1:7687"}, []string{"f1:7687"})
	connector := &mockConnector{}
	watcher := newMockWatcher()

	session, err := NewRoutedSession(bootstrap, connector, "bolt://seed:7687",
		WithTopologyWatcher(watcher),
	)
	require.NoError(t, err)
	defer session.Close(context.Background())

	_, err = session.Run(context.Background(), []types.Statement{{Text: "MATCH (n) RETURN n"}})
	require.NoError(t, err)
	require.Equal(t, int64(1), discoveries.Load())

	watcher.ch <- TopologyUpdate{Generation: 1, Reason: "maintenance"}

	// The flag is set by the watcher goroutine; the next routed call
	// after it lands refreshes despite the TTL being nowhere near
	// expiry.
	require.Eventually(t, func() bool {
		_, rerr := session.Run(context.Background(), []types.Statement{{Text: "MATCH (n) RETURN n"}})

		return rerr == nil && discoveries.Load() == 2
	}, time.Second, 5*time.Millisecond)

	// The refresh cleared the flag; no further discovery happens.
	_, err = session.Run(context.Background(), []types.Statement{{Text: "MATCH (n) RETURN n"}})
	require.NoError(t, err)
	require.Equal(t, int64(2), discoveries.Load())
}

func TestBeginTransactionDefaultsToLeader(t *testing.T) {
	bootstrap, _ := newBootstrap(300, []string{"l1:7687"}, []string{"f1:7687"})
	connector := &mockConnector{}

	session, err := NewRoutedSession(bootstrap, connector, "bolt://seed:7687",
		WithIndexPicker(func(n int) int { return 0 }),
	)
	require.NoError(t, err)

	tx, err := session.BeginTransaction(context.Background())
	require.NoError(t, err)
	require.Equal(t, "leader-0", tx.Alias())
	require.NotEmpty(t, tx.ID())

	_, err = tx.Run(context.Background(), []types.Statement{{Text: "CREATE (n:Node)"}})
	require.NoError(t, err)

	_, err = tx.Commit(context.Background(), nil)
	require.NoError(t, err)

	leaderTx := connector.session("leader-0").tx
	require.True(t, leaderTx.committed)
	require.Len(t, leaderTx.runCalls, 1)
}

func TestBeginTransactionAliasOverride(t *testing.T) {
	bootstrap, _ := newBootstrap(300, []string{"l1:7687"}, []string{"f1:7687"})
	connector := &mockConnector{}

	session, err := NewRoutedSession(bootstrap, connector, "bolt://seed:7687")
	require.NoError(t, err)

	tx, err := session.BeginTransaction(context.Background(), WithTxAlias("follower-0"))
	require.NoError(t, err)
	require.Equal(t, "follower-0", tx.Alias())

	require.NoError(t, tx.Rollback(context.Background()))
	require.True(t, connector.session("follower-0").tx.rolledBack)

	_, err = session.BeginTransaction(context.Background(), WithTxAlias("leader-9"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown connection alias")
}

func TestBeginTransactionInitialStatements(t *testing.T) {
	bootstrap, _ := newBootstrap(300, []string{"l1:7687"}, []string{"f1:7687"})
	connector := &mockConnector{}

	session, err := NewRoutedSession(bootstrap, connector, "bolt://seed:7687",
		WithIndexPicker(func(n int) int { return 0 }),
	)
	require.NoError(t, err)

	initial := []types.Statement{{Text: "CREATE (n:Setup)"}}
	_, err = session.BeginTransaction(context.Background(), WithTxStatements(initial))
	require.NoError(t, err)

	leaderTx := connector.session("leader-0").tx
	require.Len(t, leaderTx.runCalls, 1)
	require.Equal(t, initial, leaderTx.runCalls[0])
}

func TestBeginTransactionCollaboratorErrors(t *testing.T) {
	bootstrap, _ := newBootstrap(300, []string{"l1:7687"}, []string{"f1:7687"})
	connector := &mockConnector{}

	session, err := NewRoutedSession(bootstrap, connector, "bolt://seed:7687",
		WithIndexPicker(func(n int) int { return 0 }),
	)
	require.NoError(t, err)

	_, err = session.Run(context.Background(), []types.Statement{{Text: "MATCH (n) RETURN n"}})
	require.NoError(t, err)

	beginErr := errors.New("server busy")
	connector.session("leader-0").beginErr = beginErr

	_, err = session.BeginTransaction(context.Background())
	require.ErrorIs(t, err, beginErr)
}

func TestCloseClosesPoolAndRejectsFurtherUse(t *testing.T) {
	bootstrap, _ := newBootstrap(300, []string{"l1:7687"}, []string{"f1:7687"})
	connector := &mockConnector{}

	session, err := NewRoutedSession(bootstrap, connector, "bolt://seed:7687")
	require.NoError(t, err)

	_, err = session.Run(context.Background(), []types.Statement{{Text: "MATCH (n) RETURN n"}})
	require.NoError(t, err)

	require.NoError(t, session.Close(context.Background()))
	require.True(t, connector.session("leader-0").closed.Load())
	require.True(t, connector.session("follower-0").closed.Load())

	// The bootstrap session is caller-owned and stays open.
	require.False(t, bootstrap.closed.Load())

	_, err = session.Run(context.Background(), []types.Statement{{Text: "MATCH (n) RETURN n"}})
	require.ErrorIs(t, err, types.ErrSessionClosed)

	_, err = session.BeginTransaction(context.Background())
	require.ErrorIs(t, err, types.ErrSessionClosed)

	// Idempotent.
	require.NoError(t, session.Close(context.Background()))
}

func TestCloseAggregatesErrors(t *testing.T) {
	bootstrap, _ := newBootstrap(300, []string{"l1:7687"}, []string{"f1:7687"})
	connector := &mockConnector{}

	session, err := NewRoutedSession(bootstrap, connector, "bolt://seed:7687")
	require.NoError(t, err)

	_, err = session.Run(context.Background(), []types.Statement{{Text: "MATCH (n) RETURN n"}})
	require.NoError(t, err)

	leaderErr := errors.New("leader close failed")
	followerErr := errors.New("follower close failed")
	connector.session("leader-0").closeErr = leaderErr
	connector.session("follower-0").closeErr = followerErr

	err = session.Close(context.Background())
	require.ErrorIs(t, err, leaderErr)
	require.ErrorIs(t, err, followerErr)
}

func TestCloseWithoutDiscovery(t *testing.T) {
	bootstrap, _ := newBootstrap(300, []string{"l1:7687"}, []string{"f1:7687"})

	session, err := NewRoutedSession(bootstrap, &mockConnector{}, "bolt://seed:7687")
	require.NoError(t, err)

	// Close before any routed call; there is no pool to tear down.
	require.NoError(t, session.Close(context.Background()))
}
