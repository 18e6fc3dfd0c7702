package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-orders/database"
	"github.com/yeremiapane/restaurant-orders/models"
	"github.com/yeremiapane/restaurant-orders/router"
	"github.com/yeremiapane/restaurant-orders/utils"
)

func TestParseLines(t *testing.T) {
	items, err := parseLines([]string{"1:2", "3"})
	require.NoError(t, err)
	assert.Equal(t, []models.LineItem{{ProductID: 1, Quantity: 2}, {ProductID: 3, Quantity: 1}}, items)

	for _, bad := range [][]string{nil, {"x:1"}, {"0:1"}, {"2:0"}, {"2:-1"}, {"2:a"}} {
		_, err := parseLines(bad)
		assert.Error(t, err, "%v", bad)
	}
}

func writeConfig(t *testing.T, serverURL string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "waiter.yaml")
	body := fmt.Sprintf("server_url: %s\nqueue_db: %s\nlog_level: panic\nrequest_timeout: 2s\n", serverURL, filepath.Join(dir, "queue.db"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func startServer(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()
	utils.InitLogger("panic")
	gin.SetMode(gin.TestMode)

	db, err := database.OpenSQLite(database.MemoryDSN(uuid.NewString()), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedCatalog(db))

	log, _ := test.NewNullLogger()
	srv := httptest.NewServer(router.SetupRouter(db, router.Options{Log: log}))
	t.Cleanup(srv.Close)
	return srv, db
}

func TestOrder_QueuesWhenOffline(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()
	cfg := writeConfig(t, url)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, run(ctx, []string{"-config", cfg, "order", "1:2"}, &out))
	assert.Contains(t, out.String(), "order queued as")

	out.Reset()
	require.NoError(t, run(ctx, []string{"-config", cfg, "queue"}, &out))
	assert.Contains(t, out.String(), "1:2")
	assert.Contains(t, out.String(), "pending")
}

func TestOrder_DropConflicts(t *testing.T) {
	srv, db := startServer(t)
	cfg := writeConfig(t, srv.URL)
	require.NoError(t, db.Model(&models.Ingredient{}).Where("name = ?", "Bacon Fatiado").Update("stock_quantity", 1).Error)

	var bacon, water models.Product
	require.NoError(t, db.Where("name = ?", "X-Bacon").First(&bacon).Error)
	require.NoError(t, db.Where("name = ?", "Água Mineral").First(&water).Error)
	lines := []string{fmt.Sprintf("%d:1", bacon.ID), fmt.Sprintf("%d:2", water.ID)}

	var out bytes.Buffer
	err := run(context.Background(), append([]string{"-config", cfg, "order"}, lines...), &out)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "Bacon Fatiado: need 3, have 1 (X-Bacon)")

	out.Reset()
	args := append([]string{"-config", cfg, "order", "-drop-conflicts"}, lines...)
	require.NoError(t, run(context.Background(), args, &out))
	assert.Contains(t, out.String(), "retrying with 1 remaining line(s)")
	assert.Contains(t, out.String(), "2 item(s), total R$ 6,00")
	assert.Contains(t, out.String(), fmt.Sprintf("2 x #%d", water.ID))
	assert.Regexp(t, `R\$ 3,00\s+R\$ 6,00`, out.String())
}

func TestSyncAndMenu(t *testing.T) {
	srv, _ := startServer(t)
	cfg := writeConfig(t, srv.URL)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, run(ctx, []string{"-config", cfg, "menu"}, &out))
	assert.Contains(t, out.String(), "X-Burger")
	assert.Contains(t, out.String(), "R$ 15,00")

	out.Reset()
	require.NoError(t, run(ctx, []string{"-config", cfg, "sync"}, &out))
	assert.Contains(t, out.String(), "sent 0")

	assert.Error(t, run(ctx, []string{"-config", cfg, "drop", "nope"}, &out))
	assert.Error(t, run(ctx, []string{"-config", cfg, "fly"}, &out))
}
