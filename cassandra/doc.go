// Package cassandra provides a high-level client for the Cassandra
// native binary protocol.
//
// Quick Start
//
//	conn, err := cassandra.Connect(context.Background(), "127.0.0.1:9042", cassandra.Options{
//	    Keyspace: "my_keyspace",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close(0)
//
//	res, err := conn.Query(context.Background(), "SELECT id, name FROM users WHERE id = ?",
//	    cassandra.Params{Values: []cassandra.Value{cassandra.Val(userID)}})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for i := 0; i < res.Rows.RowCount(); i++ {
//	    row := res.Rows.Row(i)
//	    fmt.Println(row.MustGet("name"))
//	}
//
// Prepared Statements
//
// Prepare returns a handle that Execute binds values against. The
// connection caches the (keyspace, query text) -> handle mapping
// itself, so calling Prepare repeatedly with the same query is cheap;
// Execute also recovers transparently from a server-side UNPREPARED
// response (e.g. after a node restart evicts its statement cache) by
// re-preparing once and retrying, unless Options.DisableUnpreparedRetry
// is set.
//
// Configuration
//
// Options is validated eagerly by Connect: a malformed value (a
// negative MaxStreams or timeout, an unknown compression name) is
// reported before any bytes reach the network, as a
// *xerrors.ValidationError.
//
// Error Handling
//
// Every error returned from this package is one of the concrete types
// in internal/xerrors (or a driver-internal io/context error), so
// callers can branch with errors.As:
//
//	var srvErr *xerrors.ServerError
//	if errors.As(err, &srvErr) {
//	    switch srvErr.Code {
//	    case ...
//	    }
//	}
//
//   - ValidationError: a caller-supplied value was invalid before any
//     request was built (bad Options, a batch statement with neither a
//     query string nor a prepared handle)
//   - EncodeError: a Go value could not be encoded as a CQL value
//     (Val or TypedVal got a value its type cannot hold)
//   - ServerError: the server answered with an ERROR frame
//   - TimeoutError: the request's context deadline elapsed first
//   - ConnectionClosedError: the connection was closed while the
//     request was outstanding
//   - IOError: the underlying socket read or write failed
//
// Concurrency
//
// A *Conn is safe for concurrent use: requests are multiplexed over
// one TCP connection via the native protocol's stream ids, and the
// connection itself serializes writes internally. Subscribe registers
// a channel that receives server-pushed schema and topology events
// until Unsubscribe or Close.
//
// Resource Management
//
// Close releases the connection's socket and background goroutine.
// Callers should always defer it; a grace period lets in-flight
// requests finish before the socket closes, at the cost of delaying
// shutdown.
//
// Tracing
//
// Setting Trace on Params or BatchSpec requests a server-side tracing
// session for that one statement; the session id comes back on
// Result.TraceID (success) or on the *xerrors.ServerError (failure),
// for lookup in the system_traces keyspace.
package cassandra
