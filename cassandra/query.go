package cassandra

import (
	"context"

	"github.com/onoffswitch/gocassa/internal/conn"
)

// Query executes a CQL statement directly, with no prepare step.
func (c *Conn) Query(ctx context.Context, cql string, params Params) (*Result, error) {
	r, err := c.inner.Query(ctx, cql, params.toInternal())
	if err != nil {
		return nil, err
	}
	return wrapResult(r), nil
}

// Prepare registers cql with the server, or returns the connection's
// cached handle from a previous call against the same keyspace.
func (c *Conn) Prepare(ctx context.Context, cql string) (*Prepared, error) {
	p, err := c.inner.Prepare(ctx, cql)
	if err != nil {
		return nil, err
	}
	return &Prepared{keyspace: p.Keyspace, query: p.Query, descriptor: p.Descriptor}, nil
}

func (p *Prepared) toInternal() *conn.Prepared {
	return &conn.Prepared{Keyspace: p.keyspace, Query: p.query, Descriptor: p.descriptor}
}

// Execute binds params against a previously prepared statement. If the
// server has forgotten the statement, Execute transparently re-prepares
// it once and retries, unless Options.DisableUnpreparedRetry was set.
func (c *Conn) Execute(ctx context.Context, p *Prepared, params Params) (*Result, error) {
	ip := p.toInternal()
	r, err := c.inner.Execute(ctx, ip, params.toInternal())
	if err != nil {
		return nil, err
	}
	// Execute may have refreshed the descriptor on an UNPREPARED retry;
	// propagate it back so a subsequent Execute reuses the fresh one.
	p.descriptor = ip.Descriptor
	return wrapResult(r), nil
}
