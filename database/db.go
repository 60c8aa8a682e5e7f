package database

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/forwardfin/sweep/shared"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"github.com/rs/zerolog"
)

const (
	// SQL statements.
	createSignalTableSQL   = "CREATE TABLE IF NOT EXISTS signal (id TEXT PRIMARY KEY, market TEXT, direction INTEGER, entry REAL, stop REAL, target REAL, size REAL, riskamount REAL, confidence REAL, narrative TEXT, state INTEGER, outcome INTEGER, createdon INTEGER)"
	createMetadataTableSQL = "CREATE TABLE IF NOT EXISTS metadata (id TEXT PRIMARY KEY, total INTEGER, wins INTEGER, losses INTEGER, createdon INTEGER)"
	persistSignalSQL       = "INSERT INTO signal(id, market, direction, entry, stop, target, size, riskamount, confidence, narrative, state, outcome, createdon) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)"
	updateGradedSignalSQL  = "UPDATE signal SET state = ?, outcome = ? WHERE id = ?"
	findMetadataSQL        = "SELECT * FROM metadata WHERE id = ?"
	updateMetadataSQL      = "UPDATE metadata SET total = total + 1, wins = wins + ?, losses = losses + ? WHERE id = ?"
	persistMetadataSQL     = "INSERT INTO metadata(id, total, wins, losses, createdon) VALUES(?,?,?,?,?)"
)

// DatabaseConfig is the configuration for the database.
type DatabaseConfig struct {
	// Endpoint represents the database connection endpoint.
	Endpoint string
	// User is the database user.
	User string
	// Pass is the database user pass.
	Pass string
	// Logger is the database logger.
	Logger *zerolog.Logger
}

// Database represents the database connection.
type Database struct {
	cfg    *DatabaseConfig
	client *rqlitehttp.Client
}

// Ensure the database implements the SignalStorer interface.
var _ shared.SignalStorer = (*Database)(nil)

// NewDatabase initializes a new database connection.
func NewDatabase(ctx context.Context, cfg *DatabaseConfig) (*Database, error) {
	httpc := &http.Client{Timeout: time.Second * 5}
	client, err := rqlitehttp.NewClient(cfg.Endpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("creating database client: %w", err)
	}

	client.SetBasicAuth(cfg.User, cfg.Pass)

	db := &Database{
		cfg:    cfg,
		client: client,
	}

	err = db.bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping database: %w", err)
	}

	return db, nil
}

// bootstrap initializes the database.
func (db *Database) bootstrap(ctx context.Context) error {
	_, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{SQL: createSignalTableSQL},
		{SQL: createMetadataTableSQL},
	}, &rqlitehttp.ExecuteOptions{
		Transaction: true,
		Timings:     true,
	})
	if err != nil {
		return err
	}

	return nil
}

// generateMetadataID generates deterministic ids for metadata using the
// current month, week and market.
func generateMetadataID(currentTime time.Time, market string) string {
	month := currentTime.Month().String()
	week := currentTime.Day() / 7

	id := fmt.Sprintf("%s-Week-%d-%s", month, week, market)
	return id
}

// PersistSignal stores the provided emitted signal to the database.
func (db *Database) PersistSignal(ctx context.Context, signal *shared.Signal) error {
	resp, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{
			SQL: persistSignalSQL,
			PositionalParams: []any{signal.ID, signal.Market, signal.Direction, signal.Setup.Entry,
				signal.Setup.Stop, signal.Setup.Target, signal.Setup.Size, signal.Setup.RiskAmount,
				signal.Confidence, signal.Narrative, signal.State, signal.Outcome, signal.CreatedOn.Unix()},
		},
	}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
	if err != nil {
		return err
	}
	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("persisting signal %s: %d -> %s", signal.ID, idx, errStr)
	}

	return nil
}

// PersistGradedSignal updates the provided graded signal and its associated
// weekly metadata in the database.
func (db *Database) PersistGradedSignal(ctx context.Context, signal *shared.Signal) error {
	resp, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{
			SQL:              updateGradedSignalSQL,
			PositionalParams: []any{signal.State, signal.Outcome, signal.ID},
		},
	}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
	if err != nil {
		return err
	}
	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("updating graded signal %s: %d -> %s", signal.ID, idx, errStr)
	}

	var win, loss int
	switch signal.Outcome {
	case shared.Win:
		win++
	case shared.Loss:
		loss++
	default:
		db.cfg.Logger.Error().Msgf("unexpected graded signal state for metadata calculations: %s", spew.Sdump(signal))
	}

	now, _, err := shared.NewYorkTime()
	if err != nil {
		return err
	}

	id := generateMetadataID(now, signal.Market)
	queryResp, err := db.client.QuerySingle(ctx, findMetadataSQL, id)
	if err != nil {
		return err
	}

	exists := len(queryResp.GetQueryResultsAssoc()) > 0
	switch {
	case exists:
		resp, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
			{
				SQL:              updateMetadataSQL,
				PositionalParams: []any{win, loss, id},
			},
		}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
		if err != nil {
			return err
		}
		has, idx, errStr := resp.HasError()
		if has {
			return fmt.Errorf("updating metadata %s: %d -> %s", id, idx, errStr)
		}
	default:
		resp, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
			{
				SQL:              persistMetadataSQL,
				PositionalParams: []any{id, 1, win, loss, now.Unix()},
			},
		}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
		if err != nil {
			return err
		}
		has, idx, errStr := resp.HasError()
		if has {
			return fmt.Errorf("persisting metadata %s: %d -> %s", id, idx, errStr)
		}
	}

	return nil
}
