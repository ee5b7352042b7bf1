package plexus

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/arloliu/plexus/types"
)

// RoutedSession routes statements across a cluster on top of a
// role-unaware underlying client.
//
// Per call, each statement is classified as a read or a write, the read
// set is dispatched to a randomly chosen follower and the write set to
// a randomly chosen leader, and the per-connection results are woven
// back into the caller's original statement order.
//
// Cluster topology is discovered lazily through the bootstrap session
// and cached until its server-reported TTL expires; the connection pool
// is rebuilt together with the table as a single atomic transition.
//
// # Thread Safety
//
// RoutedSession is safe for concurrent use from multiple goroutines. A
// single instance can be shared across your application:
//
//	session, err := plexus.NewRoutedSession(bootstrap, connector, baseURL)
//	defer session.Close(ctx)
//
//	go func() { session.Run(ctx, readBatch) }()
//	go func() { session.Run(ctx, writeBatch) }()
//
// Refreshes are serialized by a mutex and the table+pool snapshot is
// published atomically; dispatching calls capture the snapshot once, so
// a concurrent refresh never swaps the pool mid-dispatch.
//
// # Lifecycle
//
// Create a session with NewRoutedSession() and clean up with Close().
// After Close() is called the session cannot be reused (operations
// return ErrSessionClosed). The bootstrap session is caller-owned and
// is not closed by plexus.
type RoutedSession struct {
	bootstrap Session
	connector Connector
	baseURL   *url.URL
	config    *ClientConfig

	state       atomic.Pointer[topologyState]
	refreshMu   sync.Mutex
	invalidated atomic.Bool
	closed      atomic.Bool

	watchCtx   context.Context
	watchClose context.CancelFunc
}

// NewRoutedSession creates a new auto-routed session.
//
// The bootstrap session is used purely as a discovery channel to any
// reachable cluster member; it must not itself be auto-routed. The
// connector builds the leaf connections of the routing pool from URLs
// derived from baseURL and the discovered server addresses.
//
// No discovery happens here: the routing table and pool are built
// lazily on the first routed call.
//
// If a TopologyWatcher is configured, it is started automatically and
// stopped when Close() is called. Updates from the watcher force the
// next routed call to refresh the routing table ahead of its TTL.
//
// Parameters:
//   - bootstrap: Session used for routing table discovery (required)
//   - connector: Builder for pool connections (required)
//   - baseURL: Connection URL whose scheme/credentials carry over to
//     every discovered node's URL
//   - opts: Optional configuration options
//
// Returns:
//   - *RoutedSession: A new routed session
//   - error: ErrNilSession/ErrNilConnector, or a baseURL parse error
func NewRoutedSession(bootstrap Session, connector Connector, baseURL string, opts ...Option) (*RoutedSession, error) {
	if bootstrap == nil {
		return nil, types.ErrNilSession
	}
	if connector == nil {
		return nil, types.ErrNilConnector
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}
	if config.Metrics == nil {
		config.Metrics = DefaultConfig().Metrics
	}
	if config.Logger == nil {
		config.Logger = DefaultConfig().Logger
	}
	if config.IndexPicker == nil {
		config.IndexPicker = DefaultIndexPicker
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())

	session := &RoutedSession{
		bootstrap:  bootstrap,
		connector:  connector,
		baseURL:    base,
		config:     config,
		watchCtx:   ctx,
		watchClose: cancel,
	}

	if config.TopologyWatcher != nil {
		go session.watchTopology()
	}

	return session, nil
}

// watchTopology monitors invalidation signals and marks the cached
// routing table stale.
func (s *RoutedSession) watchTopology() {
	updates := s.config.TopologyWatcher.Watch(s.watchCtx)
	for update := range updates {
		s.invalidated.Store(true)
		s.config.Metrics.IncTopologyInvalidated()
		s.config.Logger.Info("routing table invalidated",
			"generation", update.Generation,
			"reason", update.Reason,
		)
	}
}

// Run executes a batch of statements with per-statement routing.
//
// Statements containing a write keyword are sent to one randomly chosen
// leader connection, the rest to one randomly chosen follower
// connection; an empty set is skipped entirely. The returned results
// are ordered exactly as the input batch regardless of the internal
// read/write split.
//
// Any error - discovery, selection, or dispatch - aborts the whole call;
// partially dispatched results are never returned. Dispatch errors from
// the underlying sessions propagate unchanged.
//
// Parameters:
//   - ctx: Context passed through to discovery and dispatch
//   - statements: The batch to execute, in caller order
//
// Returns:
//   - []types.Result: One result per statement, in input order
//   - error: Discovery, selection, or dispatch error
func (s *RoutedSession) Run(ctx context.Context, statements []types.Statement) ([]types.Result, error) {
	if s.closed.Load() {
		return nil, types.ErrSessionClosed
	}

	st, err := s.ensureFresh(ctx)
	if err != nil {
		return nil, err
	}

	reads, writes := classifyStatements(statements)

	var readResults, writeResults []types.Result

	if len(reads) > 0 {
		readResults, err = s.dispatch(ctx, st, types.RoleFollower, reads)
		if err != nil {
			return nil, err
		}
	}

	if len(writes) > 0 {
		writeResults, err = s.dispatch(ctx, st, types.RoleLeader, writes)
		if err != nil {
			return nil, err
		}
	}

	return weaveResults(reads, writes, readResults, writeResults)
}

// dispatch sends an indexed statement set to one randomly selected
// connection of the given role.
func (s *RoutedSession) dispatch(ctx context.Context, st *topologyState, role types.Role, set []indexedStatement) ([]types.Result, error) {
	var alias string
	var err error

	if role == types.RoleLeader {
		alias, err = st.pickWriteAlias(s.config.IndexPicker)
	} else {
		alias, err = st.pickReadAlias(s.config.IndexPicker)
	}
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := st.pool[alias].Run(ctx, statementsOf(set))
	elapsed := time.Since(start).Seconds()

	s.config.Metrics.IncDispatchTotal(role)
	s.config.Metrics.ObserveDispatchDuration(role, elapsed)

	if err != nil {
		s.config.Metrics.IncDispatchError(role)
		s.config.Logger.Warn("dispatch failed",
			"alias", alias,
			"statements", len(set),
			"error", err.Error(),
		)

		return nil, err
	}

	return results, nil
}

// txConfig holds per-transaction settings.
type txConfig struct {
	alias      string
	statements []types.Statement
}

// TxOption configures an individual transaction.
type TxOption func(*txConfig)

// WithTxAlias pins the transaction to a specific pool alias instead of
// a randomly selected leader.
//
// Parameters:
//   - alias: A pool alias of the form "leader-{i}" or "follower-{i}"
//
// Returns:
//   - TxOption: Configuration option
func WithTxAlias(alias string) TxOption {
	return func(c *txConfig) {
		c.alias = alias
	}
}

// WithTxStatements runs an initial batch on the transaction right after
// it is opened. The batch's results are discarded.
//
// Parameters:
//   - statements: Statements to run on the freshly opened transaction
//
// Returns:
//   - TxOption: Configuration option
func WithTxStatements(statements []types.Statement) TxOption {
	return func(c *txConfig) {
		c.statements = statements
	}
}

// BeginTransaction opens an explicit transaction on a single cluster member.
//
// Without WithTxAlias the transaction opens on a randomly chosen leader:
// transactions default to write affinity because statements inside a
// transaction are not classified individually. All subsequent statements
// of the transaction run against the node fixed at open time.
//
// Parameters:
//   - ctx: Context passed through to discovery and the transaction open
//   - opts: Optional per-transaction settings
//
// Returns:
//   - *RoutedTransaction: The open transaction
//   - error: Discovery, selection, or collaborator error
func (s *RoutedSession) BeginTransaction(ctx context.Context, opts ...TxOption) (*RoutedTransaction, error) {
	if s.closed.Load() {
		return nil, types.ErrSessionClosed
	}

	st, err := s.ensureFresh(ctx)
	if err != nil {
		return nil, err
	}

	cfg := txConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	alias := cfg.alias
	if alias == "" {
		alias, err = st.pickWriteAlias(s.config.IndexPicker)
		if err != nil {
			return nil, err
		}
	}

	sess, ok := st.pool[alias]
	if !ok {
		return nil, fmt.Errorf("plexus: unknown connection alias %q", alias)
	}

	tx, err := sess.BeginTransaction(ctx)
	if err != nil {
		return nil, err
	}

	if len(cfg.statements) > 0 {
		if _, err := tx.Run(ctx, cfg.statements); err != nil {
			return nil, err
		}
	}

	s.config.Metrics.IncTxOpened()

	routed := &RoutedTransaction{
		id:      uuid.NewString(),
		alias:   alias,
		tx:      tx,
		metrics: s.config.Metrics,
		logger:  s.config.Logger,
	}

	s.config.Logger.Debug("transaction opened", "tx", routed.id, "alias", alias)

	return routed, nil
}

// Close stops the topology watcher and closes the current connection
// pool. Errors from individual pool connections are aggregated.
//
// The bootstrap session is caller-owned and left open. Close is
// idempotent; after the first call the session cannot be reused.
//
// Parameters:
//   - ctx: Context passed through to the pool connections' Close
//
// Returns:
//   - error: Aggregated close errors, or nil
func (s *RoutedSession) Close(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.watchClose()

	var result *multierror.Error
	if st := s.state.Load(); st != nil {
		for _, sess := range st.pool {
			if err := sess.Close(ctx); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}

	return result.ErrorOrNil()
}

// RoutedTransaction is a transaction opened through a RoutedSession.
//
// The target node was fixed when the transaction opened; Run, Commit and
// Rollback delegate to the underlying transaction with no additional
// routing logic.
type RoutedTransaction struct {
	id      string
	alias   string
	tx      Transaction
	metrics types.MetricsCollector
	logger  types.Logger
}

// ID returns the correlation identifier logged for this transaction.
func (t *RoutedTransaction) ID() string {
	return t.id
}

// Alias returns the pool alias the transaction runs against.
func (t *RoutedTransaction) Alias() string {
	return t.alias
}

// Run executes statements inside the transaction.
//
// Parameters:
//   - ctx: Context passed through to the underlying transaction
//   - statements: Statements to execute
//
// Returns:
//   - []types.Result: One result per statement, in input order
//   - error: Collaborator error, propagated unchanged
func (t *RoutedTransaction) Run(ctx context.Context, statements []types.Statement) ([]types.Result, error) {
	return t.tx.Run(ctx, statements)
}

// Commit runs the final statements, if any, and commits the transaction.
//
// Parameters:
//   - ctx: Context passed through to the underlying transaction
//   - statements: Statements to run before committing, may be empty
//
// Returns:
//   - []types.Result: Results of the final statements
//   - error: Collaborator error, propagated unchanged
func (t *RoutedTransaction) Commit(ctx context.Context, statements []types.Statement) ([]types.Result, error) {
	results, err := t.tx.Commit(ctx, statements)
	if err != nil {
		return nil, err
	}

	t.metrics.IncTxCommitted()
	t.logger.Debug("transaction committed", "tx", t.id, "alias", t.alias)

	return results, nil
}

// Rollback aborts the transaction.
//
// Parameters:
//   - ctx: Context passed through to the underlying transaction
//
// Returns:
//   - error: Collaborator error, propagated unchanged
func (t *RoutedTransaction) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil {
		return err
	}

	t.metrics.IncTxRolledBack()
	t.logger.Debug("transaction rolled back", "tx", t.id, "alias", t.alias)

	return nil
}
