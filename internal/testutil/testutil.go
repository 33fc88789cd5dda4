package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/GoArmGo/TaskManager/internal/config"
	"github.com/GoArmGo/TaskManager/internal/database/client"
	"github.com/GoArmGo/TaskManager/internal/logger"
	"github.com/google/uuid"
)

// OpenSQLite opens a fresh in-memory SQLite database with migrations applied.
// Every call gets its own database; it is closed via t.Cleanup.
func OpenSQLite(t *testing.T) *client.Client {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared&_foreign_keys=on", name, uuid.NewString()[:8])

	c, err := client.Open(config.DriverSQLite, dsn, logger.NewNop())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}
