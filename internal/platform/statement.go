package platform

import (
	"context"
	"errors"
	"fmt"
)

const (
	statementsPath = "/api/2.0/sql/statements"

	// statementWaitTimeout bounds the synchronous wait on every warehouse
	// statement. Statements still running at the bound are canceled upstream
	// rather than polled.
	statementWaitTimeout = "30s"

	// StatementStateSucceeded is the terminal state of a successful statement.
	StatementStateSucceeded = "SUCCEEDED"
)

// ErrStatementFailed indicates the warehouse accepted the statement but it
// did not reach the SUCCEEDED state within the wait bound.
var ErrStatementFailed = errors.New("statement execution failed")

type (
	statementRequest struct {
		Statement     string `json:"statement"`
		WarehouseID   string `json:"warehouse_id"`
		WaitTimeout   string `json:"wait_timeout"`
		OnWaitTimeout string `json:"on_wait_timeout"`
	}

	// StatementError carries the failure detail reported by the warehouse.
	StatementError struct {
		ErrorCode string `json:"error_code"`
		Message   string `json:"message"`
	}

	// StatementStatus reports the execution state of a statement.
	StatementStatus struct {
		State string          `json:"state"`
		Error *StatementError `json:"error,omitempty"`
	}

	// StatementResult holds the tabular payload of a succeeded statement.
	// Cells arrive as string-or-null; column order is fixed by the issuing
	// statement and is the only schema contract the normalizer relies on.
	StatementResult struct {
		RowCount  int64       `json:"row_count"`
		DataArray [][]*string `json:"data_array"`
	}

	// StatementResponse is the synchronous statement execution response.
	StatementResponse struct {
		StatementID string           `json:"statement_id"`
		Status      StatementStatus  `json:"status"`
		Result      *StatementResult `json:"result,omitempty"`
	}
)

// ExecuteStatement runs a SQL statement against the given warehouse and waits
// up to 30 seconds for the result. There is no retry: a failed statement is
// the caller's error to surface.
func (c *Client) ExecuteStatement(ctx context.Context, warehouseID, statement string) (*StatementResponse, error) {
	req := statementRequest{
		Statement:     statement,
		WarehouseID:   warehouseID,
		WaitTimeout:   statementWaitTimeout,
		OnWaitTimeout: "CANCEL",
	}

	var out StatementResponse
	if err := c.post(ctx, statementsPath, req, &out); err != nil {
		return nil, err
	}

	if out.Status.State != StatementStateSucceeded {
		if out.Status.Error != nil {
			return nil, fmt.Errorf("%w: %s: %s", ErrStatementFailed, out.Status.State, out.Status.Error.Message)
		}

		return nil, fmt.Errorf("%w: state %s", ErrStatementFailed, out.Status.State)
	}

	return &out, nil
}
