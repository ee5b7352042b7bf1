package plexus

import (
	"context"

	"github.com/arloliu/plexus/types"
)

// Session is the wire-level session collaborator consumed by plexus.
//
// A Session sends statements to a single cluster member and returns one
// structured result per statement, in dispatch order. Plexus does not
// implement this interface itself; implementations wrap the actual
// graph-database driver.
//
// Implementations MUST be safe for concurrent use from multiple
// goroutines. The bootstrap session passed to NewRoutedSession is used
// for discovery queries concurrently with regular traffic.
type Session interface {
	// Run executes the statements on this session's node and returns
	// one result per statement, in the same order.
	//
	// Parameters:
	//   - ctx: Context passed through to the underlying transport
	//   - statements: Statements to execute
	//
	// Returns:
	//   - []types.Result: One result per statement, in input order
	//   - error: Any transport or server error
	Run(ctx context.Context, statements []types.Statement) ([]types.Result, error)

	// BeginTransaction opens an explicit transaction on this session's node.
	//
	// Parameters:
	//   - ctx: Context passed through to the underlying transport
	//
	// Returns:
	//   - Transaction: The open transaction
	//   - error: Any transport or server error
	BeginTransaction(ctx context.Context) (Transaction, error)

	// Close releases the session's underlying connection.
	//
	// Parameters:
	//   - ctx: Context passed through to the underlying transport
	//
	// Returns:
	//   - error: Any error releasing the connection
	Close(ctx context.Context) error
}

// Transaction is the transaction collaborator consumed by plexus.
//
// All statements of a transaction run against the node the transaction
// was opened on; plexus adds no routing once a transaction is open.
type Transaction interface {
	// Run executes statements inside the transaction.
	Run(ctx context.Context, statements []types.Statement) ([]types.Result, error)

	// Commit runs the final statements, if any, and commits.
	//
	// Parameters:
	//   - ctx: Context passed through to the underlying transport
	//   - statements: Statements to run before committing, may be empty
	//
	// Returns:
	//   - []types.Result: Results of the final statements
	//   - error: Any transport or server error
	Commit(ctx context.Context, statements []types.Statement) ([]types.Result, error)

	// Rollback aborts the transaction.
	Rollback(ctx context.Context) error
}

// ConnectConfig carries per-connection settings handed to a Connector.
type ConnectConfig struct {
	// Alias is the pool name the connection will be registered under,
	// of the form "leader-{i}" or "follower-{i}".
	Alias string

	// DisableRouting must be honored by the connector: connections
	// built for the routing pool are leaf connections and must not
	// perform their own topology resolution.
	DisableRouting bool
}

// Connector builds a usable Session from a connection URL.
//
// This is the connection-pool/client-builder collaborator: it owns the
// lifecycle of the connections it hands out. Plexus discards, but never
// closes, superseded pool connections on a routing table refresh;
// reclaiming those is the connector's responsibility.
type Connector interface {
	// Connect builds a session for the given URL.
	//
	// Parameters:
	//   - ctx: Context for connection establishment
	//   - rawURL: Full connection URL produced by merging the base URL
	//     with a discovered server address
	//   - cfg: Per-connection settings, always with DisableRouting set
	//
	// Returns:
	//   - Session: A usable session for the target node
	//   - error: Any connection establishment error
	Connect(ctx context.Context, rawURL string, cfg ConnectConfig) (Session, error)
}
